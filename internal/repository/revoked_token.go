package repository

import (
	"context"
	"time"

	"github.com/looking-sharp/User-Authentication-Microservice/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevokedTokenRepository is the durable revocation list keyed by jti
type RevokedTokenRepository interface {
	// Insert records the jti. A jti that is already present is left untouched
	// and created is false.
	Insert(ctx context.Context, jti string, expiresAt time.Time) (created bool, err error)
	Find(ctx context.Context, jti string) (*model.RevokedToken, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
}

type revokedTokenRepository struct {
	db *gorm.DB
}

func NewRevokedTokenRepository(db *gorm.DB) RevokedTokenRepository {
	return &revokedTokenRepository{db: db}
}

func (r *revokedTokenRepository) Insert(ctx context.Context, jti string, expiresAt time.Time) (bool, error) {
	row := &model.RevokedToken{
		JTI:       jti,
		ExpiresAt: expiresAt.UTC(),
	}

	result := conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "jti"}},
			DoNothing: true,
		}).
		Create(row)
	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

func (r *revokedTokenRepository) Find(ctx context.Context, jti string) (*model.RevokedToken, error) {
	var row model.RevokedToken
	if err := conn(ctx, r.db).Where("jti = ?", jti).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// DeleteExpired removes every row whose expires_at is at or before now
func (r *revokedTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := conn(ctx, r.db).Where("expires_at <= ?", now.UTC()).Delete(&model.RevokedToken{})
	return result.RowsAffected, result.Error
}

func (r *revokedTokenRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := conn(ctx, r.db).Model(&model.RevokedToken{}).Count(&count).Error
	return count, err
}
