package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/accounts-backend/internal/app/model"
	apperrors "github.com/ikkim/accounts-backend/internal/errors"
	"github.com/ikkim/accounts-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrDuplicate is returned by Create when the email or username is taken.
var ErrDuplicate = errors.New("user already exists")

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id uint) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	UpdatePassword(ctx context.Context, userID uint, passwordHash string) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email":    user.Email,
		"username": user.Username,
	})

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if apperrors.IsDuplicateKey(err) {
			logger.Warn("User already exists in database", map[string]interface{}{
				"email":    user.Email,
				"username": user.Username,
			})
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return fmt.Errorf("create user: %w", err)
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		r.logLookupError("id", id, err)
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	logger.Debug("Finding user by email in database", map[string]interface{}{
		"email": email,
	})

	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		r.logLookupError("email", email, err)
		return nil, err
	}

	logger.Debug("User found by email in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return &user, nil
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		r.logLookupError("username", username, err)
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	if err != nil {
		logger.Error("Failed to check user existence in database", err, map[string]interface{}{
			"email":    email,
			"username": username,
		})
		return false, fmt.Errorf("check user existence: %w", err)
	}
	return count > 0, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	logger.Debug("Updating user password in database", map[string]interface{}{
		"user_id": userID,
	})

	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Update("password", passwordHash)
	if result.Error != nil {
		logger.Error("Failed to update user password in database", result.Error, map[string]interface{}{
			"user_id": userID,
		})
		return fmt.Errorf("update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	logger.Debug("User password updated in database", map[string]interface{}{
		"user_id": userID,
	})
	return nil
}

// logLookupError keeps misses at debug level; unknown emails are routine.
func (r *userRepository) logLookupError(field string, value interface{}, err error) {
	if apperrors.IsNotFound(err) {
		logger.Debug("User not found in database", map[string]interface{}{
			field: value,
		})
		return
	}
	logger.Error("Failed to find user in database", err, map[string]interface{}{
		field: value,
	})
}
