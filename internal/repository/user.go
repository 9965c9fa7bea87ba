package repository

import (
	"context"
	"strings"
	"time"

	"github.com/looking-sharp/User-Authentication-Microservice/internal/model"
	ctxutil "github.com/looking-sharp/User-Authentication-Microservice/pkg/context"
	"github.com/looking-sharp/User-Authentication-Microservice/pkg/logger"
	"gorm.io/gorm"
)

// UserRepository is the credential store. Errors are returned as the driver
// produced them; callers classify them with pkg/database.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByShortToken(ctx context.Context, shortToken string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	AssignShortToken(ctx context.Context, id uint, shortToken string) (bool, error)
	Delete(ctx context.Context, id uint) (int64, error)
	List(ctx context.Context, limit, offset int, search string) ([]model.User, int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	ctx = ctxutil.WithFunction(ctx, "repository", "CreateUser")

	start := time.Now()
	result := conn(ctx, r.db).Create(user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.DebugWithContext(ctx, "Failed to create user").
			Duration(duration).
			Err(result.Error).
			Log()
		return result.Error
	}

	logger.DebugWithContext(ctx, "User created").
		Uint("user_id", user.ID).
		Duration(duration).
		Log()

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail expects an already normalized email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "GetByEmail")

	start := time.Now()
	var user model.User

	result := conn(ctx, r.db).Where("email = ?", email).First(&user)
	duration := time.Since(start)

	if result.Error != nil {
		logger.DebugWithContext(ctx, "User lookup by email failed").
			Duration(duration).
			Err(result.Error).
			Log()
		return nil, result.Error
	}

	logger.DebugWithContext(ctx, "User retrieved by email").
		Uint("user_id", user.ID).
		Duration(duration).
		Log()

	return &user, nil
}

func (r *userRepository) GetByShortToken(ctx context.Context, shortToken string) (*model.User, error) {
	var user model.User
	if err := conn(ctx, r.db).Where("short_token = ?", shortToken).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&model.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// AssignShortToken sets the short token only when the user has none yet.
// It reports whether a row was updated.
func (r *userRepository) AssignShortToken(ctx context.Context, id uint, shortToken string) (bool, error) {
	result := conn(ctx, r.db).Model(&model.User{}).
		Where("id = ? AND short_token IS NULL", id).
		Update("short_token", shortToken)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Delete hard-deletes the user and returns the number of removed rows
func (r *userRepository) Delete(ctx context.Context, id uint) (int64, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "DeleteUser")

	result := conn(ctx, r.db).Where("id = ?", id).Delete(&model.User{})
	if result.Error != nil {
		logger.ErrorWithContext(ctx, "Failed to delete user").
			Uint("user_id", id).
			Err(result.Error).
			Log()
		return 0, result.Error
	}

	if result.RowsAffected == 0 {
		logger.WarnWithContext(ctx, "No user found to delete").
			Uint("user_id", id).
			Log()
	}

	return result.RowsAffected, nil
}

// List pages through users ordered by id, optionally filtering on email or name
func (r *userRepository) List(ctx context.Context, limit, offset int, search string) ([]model.User, int64, error) {
	ctx = ctxutil.WithFunction(ctx, "repository", "ListUsers")

	start := time.Now()
	var users []model.User
	var total int64

	query := conn(ctx, r.db).Model(&model.User{})

	if search = strings.TrimSpace(strings.ToLower(search)); search != "" {
		searchPattern := "%" + search + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", searchPattern, searchPattern)
	}

	if err := query.Count(&total).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to count users").
			Err(err).
			Log()
		return nil, 0, err
	}

	if err := query.Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		logger.ErrorWithContext(ctx, "Failed to fetch users").
			Int("limit", limit).
			Int("offset", offset).
			Err(err).
			Log()
		return nil, 0, err
	}

	logger.DebugWithContext(ctx, "Users retrieved").
		Int64("total", total).
		Int("returned_count", len(users)).
		Duration(time.Since(start)).
		Log()

	return users, total, nil
}
