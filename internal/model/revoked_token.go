package model

import "time"

// RevokedToken marks a JWT id as no longer acceptable until the token's own
// expiry, after which the row can be pruned.
type RevokedToken struct {
	ID        uint      `gorm:"primaryKey"`
	JTI       string    `gorm:"column:jti;size:64;uniqueIndex:idx_blacklisted_tokens_jti;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;index:idx_blacklisted_tokens_expires_at;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (RevokedToken) TableName() string {
	return "blacklisted_tokens"
}
