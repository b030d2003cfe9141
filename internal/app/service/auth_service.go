package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/ikkim/accounts-backend/internal/app/model"
	"github.com/ikkim/accounts-backend/internal/app/repository"
	apperrors "github.com/ikkim/accounts-backend/internal/errors"
	"github.com/ikkim/accounts-backend/internal/session"
	"github.com/ikkim/accounts-backend/pkg/logger"
	"github.com/ikkim/accounts-backend/pkg/util"
)

type RegisterInput struct {
	Username        string `form:"username" json:"username"`
	Email           string `form:"email" json:"email"`
	Password        string `form:"password" json:"password"`
	ConfirmPassword string `form:"confirm_password" json:"confirm_password"`
}

// LoginResult is a freshly established session.
type LoginResult struct {
	User      *model.User
	SessionID string
	Session   *session.Data
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
	Login(ctx context.Context, email, password, priorSessionID string) (*LoginResult, error)
	Logout(ctx context.Context, sessionID string) error
}

type authService struct {
	store    repository.Store
	hasher   util.PasswordHasher
	sessions *session.Manager

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	store repository.Store,
	hasher util.PasswordHasher,
	sessions *session.Manager,
) AuthService {
	return &authService{
		store:    store,
		hasher:   hasher,
		sessions: sessions,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	logger.Info("Attempting user registration", map[string]interface{}{
		"email":    email,
		"username": username,
	})

	if err := validateRegistration(username, email, input.Password, input.ConfirmPassword); err != nil {
		logger.Warn("Registration rejected", map[string]interface{}{
			"email":  email,
			"reason": err.Error(),
		})
		return nil, err
	}

	exists, err := s.store.Users().ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, storageError(MsgRegistrationFailed, err)
	}
	if exists {
		logger.Warn("Registration failed: account already exists", map[string]interface{}{
			"email":    email,
			"username": username,
		})
		return nil, ErrAccountExists
	}

	hashedPassword, err := s.hasher.Hash(input.Password)
	if err != nil {
		logger.Error("Failed to hash password", err, map[string]interface{}{
			"email": email,
		})
		return nil, storageError(MsgRegistrationFailed, err)
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAccountExists
		}
		return nil, storageError(MsgRegistrationFailed, err)
	}

	logger.Info("User registered successfully", map[string]interface{}{
		"user_id":  user.ID,
		"email":    email,
		"username": username,
	})
	return user, nil
}

func validateRegistration(username, email, password, confirm string) error {
	if anyBlank(username, email, password, confirm) {
		return ErrFieldsRequired
	}
	if err := ValidateUsername(username); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidateNewPassword(password, confirm)
}

func (s *authService) Login(ctx context.Context, email, password, priorSessionID string) (*LoginResult, error) {
	email = strings.TrimSpace(email)

	logger.Info("Login attempt", map[string]interface{}{
		"email": email,
	})

	if anyBlank(email, password) {
		return nil, ErrCredentialsRequired
	}

	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			return nil, storageError(MsgRequestFailed, err)
		}
		// burn the same bcrypt work as a real comparison
		s.hasher.Verify(password, s.dummyDigest())
		logger.Warn("Login failed: unknown email", map[string]interface{}{
			"email": email,
		})
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		logger.Warn("Login failed: wrong password", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrInvalidCredentials
	}

	if priorSessionID != "" {
		if err := s.sessions.Destroy(ctx, priorSessionID); err != nil {
			logger.Warn("Failed to clear previous session", map[string]interface{}{
				"user_id": user.ID,
				"error":   err.Error(),
			})
		}
	}

	sessionID, data, err := s.sessions.Create(ctx, user)
	if err != nil {
		logger.Error("Failed to create session", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, storageError(MsgRequestFailed, err)
	}

	logger.Info("User logged in successfully", map[string]interface{}{
		"user_id": user.ID,
	})
	return &LoginResult{User: user, SessionID: sessionID, Session: data}, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		logger.Error("Failed to destroy session", err, nil)
		return storageError(MsgRequestFailed, err)
	}
	logger.Info("User logged out", nil)
	return nil
}

func (s *authService) dummyDigest() string {
	s.dummyOnce.Do(func() {
		digest, err := s.hasher.Hash("not-a-real-password")
		if err == nil {
			s.dummyHash = digest
		}
	})
	return s.dummyHash
}
