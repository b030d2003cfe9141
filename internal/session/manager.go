package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ikkim/accounts-backend/internal/app/model"
	"github.com/ikkim/accounts-backend/pkg/logger"
	"github.com/ikkim/accounts-backend/pkg/util"
)

const (
	keyPrefix = "session:"
	idBytes   = 32
)

// Manager issues session ids and maps them to stored Data. Only a hash of
// the id is used as the storage key.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store Store, ttl time.Duration, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{store: store, ttl: ttl, now: now}
}

// Create starts a session for user and returns its id.
func (m *Manager) Create(ctx context.Context, user *model.User) (string, *Data, error) {
	id, err := util.GenerateRandomToken(idBytes)
	if err != nil {
		return "", nil, fmt.Errorf("generate session id: %w", err)
	}

	data := &Data{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: m.now().UTC(),
	}
	if err := m.store.Save(ctx, storageKey(id), data, m.ttl); err != nil {
		return "", nil, err
	}

	logger.Debug("Session created", map[string]interface{}{
		"user_id": user.ID,
	})
	return id, data, nil
}

// Get returns ErrNotFound for blank, unknown and expired ids.
func (m *Manager) Get(ctx context.Context, id string) (*Data, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return m.store.Load(ctx, storageKey(id))
}

// Destroy removes the session. Unknown ids are not an error.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	err := m.store.Delete(ctx, storageKey(id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	return nil
}

func storageKey(id string) string {
	return keyPrefix + util.HashToken(id)
}
