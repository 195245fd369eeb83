// File: internal/user/repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"krishipredict_backend/internal/common"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines the interface for user data operations.
type Repository interface {
	Create(ctx context.Context, user *User) error
	FindByPhone(ctx context.Context, phone string) (*User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	Update(ctx context.Context, user *User) error
	Count(ctx context.Context) (int64, error)
	ListRecent(ctx context.Context, limit int) ([]User, error)
	Delete(ctx context.Context, id uuid.UUID) error
	FindPushTokens(ctx context.Context, district string) ([]string, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM user repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

// Create inserts a new user record into the database.
func (r *gormRepository) Create(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKey(err) {
			return common.ErrConflict.WithDetails("User with this phone already exists.")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByPhone retrieves a user by phone number.
func (r *gormRepository) FindByPhone(ctx context.Context, phone string) (*User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found")
		}
		return nil, fmt.Errorf("failed to find user by phone: %w", err)
	}
	return &userModel, nil
}

// FindByID retrieves a user by their ID.
func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	var userModel User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&userModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("User not found")
		}
		return nil, fmt.Errorf("failed to find user %s: %w", id, err)
	}
	return &userModel, nil
}

// Update writes every column of an existing user.
func (r *gormRepository) Update(ctx context.Context, user *User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		if isDuplicateKey(err) {
			return common.ErrConflict.WithDetails("Update failed: phone already taken.")
		}
		return fmt.Errorf("failed to update user %s: %w", user.ID, err)
	}
	return nil
}

// Count returns the total number of users.
func (r *gormRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&User{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("counting users failed: %w", err)
	}
	return total, nil
}

// ListRecent returns the newest users first.
func (r *gormRepository) ListRecent(ctx context.Context, limit int) ([]User, error) {
	users := []User{}
	if err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("listing users failed: %w", err)
	}
	return users, nil
}

// Delete removes a user by id. Related records are left untouched.
func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&User{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("User not found")
	}
	return nil
}

// FindPushTokens returns FCM tokens of users that accept notifications.
// An empty district or "All" selects every user.
func (r *gormRepository) FindPushTokens(ctx context.Context, district string) ([]string, error) {
	var tokens []string
	q := r.db.WithContext(ctx).Model(&User{}).
		Where("notifications_enabled = ? AND fcm_token IS NOT NULL AND fcm_token <> ''", true)
	if district != "" && !strings.EqualFold(district, "All") {
		q = q.Where("LOWER(district) = ?", strings.ToLower(district))
	}
	if err := q.Pluck("fcm_token", &tokens).Error; err != nil {
		return nil, fmt.Errorf("loading push tokens failed: %w", err)
	}
	return tokens, nil
}
