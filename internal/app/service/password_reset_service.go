package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ikkim/accounts-backend/internal/app/model"
	"github.com/ikkim/accounts-backend/internal/app/repository"
	apperrors "github.com/ikkim/accounts-backend/internal/errors"
	"github.com/ikkim/accounts-backend/pkg/logger"
	"github.com/ikkim/accounts-backend/pkg/mailer"
	"github.com/ikkim/accounts-backend/pkg/util"
)

const resetEmailSubject = "Password recovery"

type ResetPasswordInput struct {
	Token           string `form:"-" json:"-"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

type PasswordResetService interface {
	// ForgotPassword succeeds the same way whether or not the email is
	// registered.
	ForgotPassword(ctx context.Context, email string) error
	// CheckResetToken returns the record behind a redeemable token.
	CheckResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error)
	ResetPassword(ctx context.Context, input ResetPasswordInput) error
}

type passwordResetService struct {
	store   repository.Store
	hasher  util.PasswordHasher
	issuer  *util.ResetTokenIssuer
	mailer  mailer.Mailer
	baseURL string
	now     func() time.Time
}

func NewPasswordResetService(
	store repository.Store,
	hasher util.PasswordHasher,
	issuer *util.ResetTokenIssuer,
	m mailer.Mailer,
	baseURL string,
	now func() time.Time,
) PasswordResetService {
	if now == nil {
		now = time.Now
	}
	return &passwordResetService{
		store:   store,
		hasher:  hasher,
		issuer:  issuer,
		mailer:  m,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     now,
	}
}

func (s *passwordResetService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)

	logger.Info("Processing password reset request", map[string]interface{}{
		"email": email,
	})

	if email == "" {
		return ErrEmailRequired
	}

	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if apperrors.IsNotFound(err) {
			logger.Warn("Password reset requested for non-existent email", map[string]interface{}{
				"email": email,
			})
			return nil
		}
		return storageError(MsgRequestFailed, err)
	}

	issued, err := s.issuer.Issue(user.Email)
	if err != nil {
		logger.Error("Failed to issue reset token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return storageError(MsgRequestFailed, err)
	}

	record := &model.PasswordResetToken{
		UserID:    user.ID,
		Token:     util.HashToken(issued.Token),
		ExpiresAt: issued.ExpiresAt,
	}
	if err := s.store.Resets().Create(ctx, record); err != nil {
		return storageError(MsgRequestFailed, err)
	}

	subject, body := ResetEmail(user.Username, s.ResetURL(issued.Token), issued.ExpiresAt.Sub(issued.IssuedAt))
	if err := s.mailer.Send(ctx, user.Email, subject, body); err != nil {
		// the token stays valid; the user can ask again
		logger.Error("Failed to send reset email", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return mailError(err)
	}

	logger.Info("Password reset email sent", map[string]interface{}{
		"user_id":    user.ID,
		"expires_at": issued.ExpiresAt,
	})
	return nil
}

// ResetURL is the link mailed to the user.
func (s *passwordResetService) ResetURL(token string) string {
	return s.baseURL + "/reset-password/" + token
}

func (s *passwordResetService) CheckResetToken(ctx context.Context, token string) (*model.PasswordResetToken, error) {
	email, err := s.issuer.Redeem(token)
	if err != nil {
		return nil, ErrInvalidResetLink
	}

	now := s.now()
	record, err := s.store.Resets().FindValidByToken(ctx, util.HashToken(token), now)
	if err != nil {
		if apperrors.IsNotFound(err) {
			logger.Warn("Reset token has no redeemable record", nil)
			return nil, ErrInvalidResetLink
		}
		return nil, storageError(MsgRequestFailed, err)
	}

	if !record.IsRedeemableAt(now) {
		return nil, ErrInvalidResetLink
	}

	if record.User.Email != email {
		logger.Warn("Reset token subject does not match its record", map[string]interface{}{
			"user_id": record.UserID,
		})
		return nil, ErrInvalidResetLink
	}

	return record, nil
}

func (s *passwordResetService) ResetPassword(ctx context.Context, input ResetPasswordInput) error {
	logger.Info("Processing password reset with token")

	record, err := s.CheckResetToken(ctx, input.Token)
	if err != nil {
		return err
	}

	if anyBlank(input.Password, input.ConfirmPassword) {
		return ErrFieldsRequired
	}
	if err := ValidateNewPassword(input.Password, input.ConfirmPassword); err != nil {
		return err
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		logger.Error("Failed to hash new password", err, map[string]interface{}{
			"user_id": record.UserID,
		})
		return storageError(MsgPasswordUpdateFailed, err)
	}

	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Users().UpdatePassword(ctx, record.UserID, hashedPassword); err != nil {
			return err
		}
		return tx.Resets().MarkAsUsed(ctx, record.ID, s.now())
	})
	if err != nil {
		// another redemption won, or the link expired after the check
		if errors.Is(err, repository.ErrTokenAlreadyUsed) {
			return ErrResetLinkUsed
		}
		logger.Error("Failed to reset password", err, map[string]interface{}{
			"user_id": record.UserID,
		})
		return storageError(MsgPasswordUpdateFailed, err)
	}

	logger.Info("Password reset successfully", map[string]interface{}{
		"user_id": record.UserID,
	})
	return nil
}

// ResetEmail renders the recovery message.
func ResetEmail(username, resetURL string, validFor time.Duration) (subject, body string) {
	body = fmt.Sprintf(`Hello %s,

To reset your password, open the following link:

%s

The link expires in %s and can only be used once.

If you did not request a password reset, you can ignore this email.
`, username, resetURL, humanizeDuration(validFor))
	return resetEmailSubject, body
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d%time.Hour == 0 && d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	default:
		return d.String()
	}
}
