package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Aykachasanli/pascale-backend-server/internal/entity"
	"github.com/Aykachasanli/pascale-backend-server/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const superAdminEmail = "root@shop.test"

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00\x1f\x15\xc4\x89")

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Verify(hash string, password string) bool {
	return hash == "hashed:"+password
}

type fakeSessions struct{}

func (fakeSessions) IssueSessionToken(user entity.User) (string, time.Duration, error) {
	return "token-" + user.ID.String(), 7 * 24 * time.Hour, nil
}

type sequenceCodes struct {
	mu   sync.Mutex
	next int
}

func (g *sequenceCodes) Generate() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("%06d", g.next), nil
}

type sentCode struct {
	email string
	code  string
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sentCode
	err  error
}

func (s *recordingSender) SendCode(_ context.Context, email string, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, sentCode{email: email, code: code})
	return s.err
}

func (s *recordingSender) last() (sentCode, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return sentCode{}, false
	}
	return s.sent[len(s.sent)-1], true
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type MockMediaStore struct {
	mock.Mock
}

func (m *MockMediaStore) Upload(ctx context.Context, body io.ReadSeeker, contentType string, ext string, category string) (MediaObject, error) {
	args := m.Called(ctx, body, contentType, ext, category)
	return args.Get(0).(MediaObject), args.Error(1)
}

func (m *MockMediaStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockMediaStore) KeyFromURL(url string) (string, bool) {
	return keyFromURL("https://media.test", url)
}

type accountFixture struct {
	svc      *AccountService
	users    repository.UserRepository
	logs     repository.SecurityLogRepository
	sender   *recordingSender
	media    *MockMediaStore
	clock    *fakeClock
	logHook  *logtest.Hook
	settings AccountConfig
}

func newAccountFixture(t *testing.T, opts ...func(*AccountConfig)) *accountFixture {
	t.Helper()
	settings := AccountConfig{SuperAdminEmail: superAdminEmail, DeliveryTimeout: time.Second}
	for _, opt := range opts {
		opt(&settings)
	}
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &accountFixture{
		users:    repository.NewMemoryUserRepository(),
		logs:     repository.NewMemorySecurityLogRepository(),
		sender:   &recordingSender{},
		media:    &MockMediaStore{},
		clock:    &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		logHook:  hook,
		settings: settings,
	}
	f.svc = NewAccountService(
		f.users,
		f.logs,
		fakeHasher{},
		fakeSessions{},
		&sequenceCodes{},
		f.sender,
		f.media,
		f.clock,
		settings,
		logger,
	)
	return f
}

func (f *accountFixture) seedUser(t *testing.T, email string, password string, role entity.UserRole, active bool) *entity.User {
	t.Helper()
	user := &entity.User{
		ID:           uuid.New(),
		Name:         "Test",
		Surname:      "User",
		Email:        strings.ToLower(email),
		PasswordHash: "hashed:" + password,
		Role:         role,
		IsActive:     active,
		RegisteredAt: f.clock.Now(),
	}
	require.NoError(t, f.users.Create(context.Background(), user))
	return user
}

func (f *accountFixture) reload(t *testing.T, id uuid.UUID) *entity.User {
	t.Helper()
	user, err := f.users.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user
}

// pendingCode returns the code stored on the record, which is what the
// delivery goroutine is handed.
func (f *accountFixture) pendingCode(t *testing.T, id uuid.UUID) string {
	t.Helper()
	user := f.reload(t, id)
	require.NotNil(t, user.PendingCode)
	return *user.PendingCode
}
