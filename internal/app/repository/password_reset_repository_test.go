package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/accounts-backend/internal/app/model"
	"github.com/ikkim/accounts-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func setupResetTest(t *testing.T) (Store, *model.User) {
	testDB, err := db.SetupTestDB(t)
	require.NoError(t, err)

	s := NewStore(testDB)
	user := createTestUser(t, s.Users(), "alice", "alice@x.com")
	return s, user
}

func createTestReset(t *testing.T, repo PasswordResetRepository, userID uint, token string, expiresAt time.Time) *model.PasswordResetToken {
	reset := &model.PasswordResetToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	require.NoError(t, repo.Create(context.Background(), reset))
	return reset
}

func TestPasswordResetRepository_FindValidByToken(t *testing.T) {
	s, user := setupResetTest(t)
	ctx := context.Background()
	repo := s.Resets()

	createTestReset(t, repo, user.ID, "valid", testNow.Add(time.Hour))
	createTestReset(t, repo, user.ID, "expired", testNow.Add(-time.Minute))
	used := createTestReset(t, repo, user.ID, "used", testNow.Add(time.Hour))
	require.NoError(t, repo.MarkAsUsed(ctx, used.ID, testNow))

	tests := []struct {
		name    string
		token   string
		now     time.Time
		wantErr bool
	}{
		{name: "Valid", token: "valid", now: testNow, wantErr: false},
		{name: "Valid in another zone", token: "valid", now: testNow.In(time.FixedZone("KST", 9*3600)), wantErr: false},
		{name: "At expiry", token: "valid", now: testNow.Add(time.Hour), wantErr: true},
		{name: "Expired", token: "expired", now: testNow, wantErr: true},
		{name: "Used", token: "used", now: testNow, wantErr: true},
		{name: "Unknown", token: "missing", now: testNow, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reset, err := repo.FindValidByToken(ctx, tt.token, tt.now)

			if tt.wantErr {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				assert.Nil(t, reset)
			} else {
				require.NoError(t, err)
				assert.Equal(t, user.ID, reset.UserID)
				assert.Equal(t, "alice@x.com", reset.User.Email)
				assert.False(t, reset.Used)
			}
		})
	}
}

func TestPasswordResetRepository_DuplicateToken(t *testing.T) {
	s, user := setupResetTest(t)
	createTestReset(t, s.Resets(), user.ID, "same", testNow.Add(time.Hour))

	err := s.Resets().Create(context.Background(), &model.PasswordResetToken{
		UserID:    user.ID,
		Token:     "same",
		ExpiresAt: testNow.Add(time.Hour),
	})
	assert.Error(t, err)
}

func TestPasswordResetRepository_MarkAsUsed(t *testing.T) {
	s, user := setupResetTest(t)
	ctx := context.Background()
	reset := createTestReset(t, s.Resets(), user.ID, "token", testNow.Add(time.Hour))

	require.NoError(t, s.Resets().MarkAsUsed(ctx, reset.ID, testNow))
	assert.ErrorIs(t, s.Resets().MarkAsUsed(ctx, reset.ID, testNow), ErrTokenAlreadyUsed)
	assert.ErrorIs(t, s.Resets().MarkAsUsed(ctx, 9999, testNow), ErrTokenAlreadyUsed)
}

func TestPasswordResetRepository_MarkAsUsed_Expired(t *testing.T) {
	s, user := setupResetTest(t)
	ctx := context.Background()
	reset := createTestReset(t, s.Resets(), user.ID, "token", testNow.Add(time.Hour))

	// expired between lookup and redemption
	assert.ErrorIs(t, s.Resets().MarkAsUsed(ctx, reset.ID, testNow.Add(time.Hour)), ErrTokenAlreadyUsed)
	assert.ErrorIs(t, s.Resets().MarkAsUsed(ctx, reset.ID, testNow.Add(2*time.Hour)), ErrTokenAlreadyUsed)

	found, err := s.Resets().FindValidByToken(ctx, "token", testNow)
	require.NoError(t, err)
	assert.False(t, found.Used)
}

func TestPasswordResetRepository_MarkAsUsedConcurrently(t *testing.T) {
	s, user := setupResetTest(t)
	ctx := context.Background()
	reset := createTestReset(t, s.Resets(), user.ID, "token", testNow.Add(time.Hour))

	const attempts = 5
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Transaction(ctx, func(tx Store) error {
				return tx.Resets().MarkAsUsed(ctx, reset.ID, testNow)
			})
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrTokenAlreadyUsed)
	}
	assert.Equal(t, 1, succeeded)
}

func TestPasswordResetRepository_DeleteExpired(t *testing.T) {
	s, user := setupResetTest(t)
	ctx := context.Background()

	createTestReset(t, s.Resets(), user.ID, "old", testNow.Add(-2*time.Hour))
	createTestReset(t, s.Resets(), user.ID, "edge", testNow)
	createTestReset(t, s.Resets(), user.ID, "live", testNow.Add(time.Hour))

	deleted, err := s.Resets().DeleteExpired(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	_, err = s.Resets().FindValidByToken(ctx, "live", testNow)
	assert.NoError(t, err)
}

func TestStore_TransactionRollback(t *testing.T) {
	s, user := setupResetTest(t)
	ctx := context.Background()
	reset := createTestReset(t, s.Resets(), user.ID, "token", testNow.Add(time.Hour))

	err := s.Transaction(ctx, func(tx Store) error {
		if err := tx.Users().UpdatePassword(ctx, user.ID, "newhash"); err != nil {
			return err
		}
		if err := tx.Resets().MarkAsUsed(ctx, reset.ID, testNow); err != nil {
			return err
		}
		return tx.Resets().MarkAsUsed(ctx, reset.ID, testNow)
	})
	require.ErrorIs(t, err, ErrTokenAlreadyUsed)

	found, err := s.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "hashedpassword", found.PasswordHash)

	_, err = s.Resets().FindValidByToken(ctx, "token", testNow)
	assert.NoError(t, err, "token should still be redeemable after rollback")
}

func TestStore_TransactionCommit(t *testing.T) {
	s, user := setupResetTest(t)
	ctx := context.Background()
	reset := createTestReset(t, s.Resets(), user.ID, "token", testNow.Add(time.Hour))

	err := s.Transaction(ctx, func(tx Store) error {
		if err := tx.Users().UpdatePassword(ctx, user.ID, "newhash"); err != nil {
			return err
		}
		return tx.Resets().MarkAsUsed(ctx, reset.ID, testNow)
	})
	require.NoError(t, err)

	found, err := s.Users().FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "newhash", found.PasswordHash)

	_, err = s.Resets().FindValidByToken(ctx, "token", testNow)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
