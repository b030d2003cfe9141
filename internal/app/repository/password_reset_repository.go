package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/accounts-backend/internal/app/model"
	apperrors "github.com/ikkim/accounts-backend/internal/errors"
	"github.com/ikkim/accounts-backend/pkg/logger"
	"gorm.io/gorm"
)

// ErrTokenAlreadyUsed is returned by MarkAsUsed when another redemption
// got there first or the token expired in the meantime.
var ErrTokenAlreadyUsed = errors.New("reset token already used")

type PasswordResetRepository interface {
	Create(ctx context.Context, reset *model.PasswordResetToken) error
	FindValidByToken(ctx context.Context, tokenHash string, now time.Time) (*model.PasswordResetToken, error)
	MarkAsUsed(ctx context.Context, id uint, now time.Time) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type passwordResetRepository struct {
	db *gorm.DB
}

func NewPasswordResetRepository(db *gorm.DB) PasswordResetRepository {
	return &passwordResetRepository{db: db}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *model.PasswordResetToken) error {
	logger.Debug("Creating password reset token in database", map[string]interface{}{
		"user_id": reset.UserID,
	})

	reset.ExpiresAt = reset.ExpiresAt.UTC()
	if err := r.db.WithContext(ctx).Create(reset).Error; err != nil {
		logger.Error("Failed to create password reset token in database", err, map[string]interface{}{
			"user_id": reset.UserID,
		})
		return fmt.Errorf("create reset token: %w", err)
	}

	logger.Debug("Password reset token created in database", map[string]interface{}{
		"id":         reset.ID,
		"user_id":    reset.UserID,
		"expires_at": reset.ExpiresAt,
	})
	return nil
}

// FindValidByToken returns the unused, unexpired record for tokenHash with
// its user loaded. Misses return gorm.ErrRecordNotFound.
func (r *passwordResetRepository) FindValidByToken(ctx context.Context, tokenHash string, now time.Time) (*model.PasswordResetToken, error) {
	var reset model.PasswordResetToken
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("token = ? AND used = ? AND expires_at > ?", tokenHash, false, now.UTC()).
		First(&reset).Error
	if err != nil {
		if apperrors.IsNotFound(err) {
			logger.Debug("No redeemable password reset token in database", nil)
		} else {
			logger.Error("Failed to find password reset token in database", err, nil)
		}
		return nil, err
	}

	logger.Debug("Password reset token found in database", map[string]interface{}{
		"id":      reset.ID,
		"user_id": reset.UserID,
	})
	return &reset, nil
}

// MarkAsUsed flips used only if the token is still unused and unexpired
// at now.
func (r *passwordResetRepository) MarkAsUsed(ctx context.Context, id uint, now time.Time) error {
	logger.Debug("Marking password reset token as used in database", map[string]interface{}{
		"id": id,
	})

	result := r.db.WithContext(ctx).Model(&model.PasswordResetToken{}).
		Where("id = ? AND used = ? AND expires_at > ?", id, false, now.UTC()).
		Update("used", true)
	if result.Error != nil {
		logger.Error("Failed to mark password reset token as used in database", result.Error, map[string]interface{}{
			"id": id,
		})
		return fmt.Errorf("mark reset token used: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		logger.Warn("Password reset token was already used or has expired", map[string]interface{}{
			"id": id,
		})
		return ErrTokenAlreadyUsed
	}

	return nil
}

func (r *passwordResetRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	logger.Debug("Deleting expired password reset tokens from database")

	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", now.UTC()).
		Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		logger.Error("Failed to delete expired password reset tokens from database", result.Error, nil)
		return 0, fmt.Errorf("delete expired reset tokens: %w", result.Error)
	}

	logger.Debug("Expired password reset tokens deleted from database", map[string]interface{}{
		"count": result.RowsAffected,
	})
	return result.RowsAffected, nil
}
