package scheduler

import (
	"context"
	"time"

	"github.com/ikkim/accounts-backend/internal/app/repository"
	"github.com/ikkim/accounts-backend/pkg/logger"
	"github.com/robfig/cron/v3"
)

const cleanupTimeout = time.Minute

// TokenCleanupScheduler periodically removes expired password reset tokens.
type TokenCleanupScheduler struct {
	cron   *cron.Cron
	resets repository.PasswordResetRepository
	spec   string
	now    func() time.Time
}

// NewTokenCleanupScheduler creates the scheduler. spec is a standard
// cron expression or descriptor such as "@hourly".
func NewTokenCleanupScheduler(resets repository.PasswordResetRepository, spec string, now func() time.Time) *TokenCleanupScheduler {
	if now == nil {
		now = time.Now
	}
	return &TokenCleanupScheduler{
		cron:   cron.New(),
		resets: resets,
		spec:   spec,
		now:    now,
	}
}

// Start registers the cleanup job and starts the cron runner.
func (s *TokenCleanupScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()

		if _, err := s.Cleanup(ctx); err != nil {
			logger.Error("Failed to clean up reset tokens from scheduler", err)
		}
	})
	if err != nil {
		logger.Error("Failed to add cron job for reset token cleanup", err, map[string]interface{}{
			"spec": s.spec,
		})
		return err
	}

	s.cron.Start()
	logger.Info("Reset token cleanup scheduler started", map[string]interface{}{
		"spec": s.spec,
	})

	return nil
}

// Cleanup deletes every token whose validity window has closed.
func (s *TokenCleanupScheduler) Cleanup(ctx context.Context) (int64, error) {
	deleted, err := s.resets.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}

	logger.Info("Expired reset tokens deleted", map[string]interface{}{
		"deleted": deleted,
	})
	return deleted, nil
}

// Stop waits for a running cleanup to finish.
func (s *TokenCleanupScheduler) Stop() {
	logger.Info("Stopping reset token cleanup scheduler...")
	<-s.cron.Stop().Done()
	logger.Info("Reset token cleanup scheduler stopped")
}
