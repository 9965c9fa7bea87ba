package model

import (
	"time"
)

// User is hard-deleted; there is no soft-delete column.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Email        string    `gorm:"column:email;size:255;uniqueIndex:idx_users_email;not null"`
	Name         string    `gorm:"column:name;size:120;not null"`
	PasswordHash string    `gorm:"column:password_hash;not null" json:"-"`
	ShortToken   *string   `gorm:"column:short_token;size:64;uniqueIndex:idx_users_short_token"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (User) TableName() string {
	return "users"
}

// ShortTokenValue returns the short token or "" when none has been assigned
func (u *User) ShortTokenValue() string {
	if u.ShortToken == nil {
		return ""
	}
	return *u.ShortToken
}
