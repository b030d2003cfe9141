package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ikkim/accounts-backend/internal/app/repository"
	"github.com/ikkim/accounts-backend/internal/db"
	"github.com/ikkim/accounts-backend/internal/session"
	"github.com/ikkim/accounts-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	testSecret  = "test-secret-key"
	testBaseURL = "http://localhost:8080"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type sentMail struct {
	To      string
	Subject string
	Body    string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

func (m *recordingMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *recordingMailer) last() sentMail {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type fixture struct {
	db           *gorm.DB
	store        repository.Store
	sessionStore *session.MemoryStore
	sessions     *session.Manager
	auth         AuthService
	resets       PasswordResetService
	mail         *recordingMailer
	clock        *fakeClock
	issuer       *util.ResetTokenIssuer
}

func setupServiceTest(t *testing.T) *fixture {
	testDB, err := db.SetupTestDB(t)
	require.NoError(t, err)

	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	store := repository.NewStore(testDB)
	hasher := util.NewBcryptHasher(bcrypt.MinCost)
	sessionStore := session.NewMemoryStore(clock.Now)
	sessions := session.NewManager(sessionStore, 24*time.Hour, clock.Now)
	issuer := util.NewResetTokenIssuer(testSecret, time.Hour, clock.Now)
	mail := &recordingMailer{}

	return &fixture{
		db:           testDB,
		store:        store,
		sessionStore: sessionStore,
		sessions:     sessions,
		auth:         NewAuthService(store, hasher, sessions),
		resets:       NewPasswordResetService(store, hasher, issuer, mail, testBaseURL, clock.Now),
		mail:         mail,
		clock:        clock,
		issuer:       issuer,
	}
}

func (f *fixture) registerAlice(t *testing.T) {
	_, err := f.auth.Register(context.Background(), RegisterInput{
		Username:        "alice",
		Email:           "alice@x.com",
		Password:        "Abcd1234",
		ConfirmPassword: "Abcd1234",
	})
	require.NoError(t, err)
}

// tokenFromMail pulls the reset token out of the last mailed link.
func (f *fixture) tokenFromMail(t *testing.T) string {
	body := f.mail.last().Body
	marker := testBaseURL + "/reset-password/"
	start := strings.Index(body, marker)
	require.NotEqual(t, -1, start, "reset link not found in mail body")

	rest := body[start+len(marker):]
	if end := strings.IndexAny(rest, " \r\n"); end >= 0 {
		rest = rest[:end]
	}
	return rest
}
