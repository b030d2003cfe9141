package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that must change together.
type Store interface {
	Users() UserRepository
	Resets() PasswordResetRepository
	// Transaction runs fn against a Store bound to one database
	// transaction. A returned error rolls everything back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type store struct {
	db     *gorm.DB
	users  UserRepository
	resets PasswordResetRepository
}

func NewStore(db *gorm.DB) Store {
	return &store{
		db:     db,
		users:  NewUserRepository(db),
		resets: NewPasswordResetRepository(db),
	}
}

func (s *store) Users() UserRepository {
	return s.users
}

func (s *store) Resets() PasswordResetRepository {
	return s.resets
}

func (s *store) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
