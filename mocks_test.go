package auth_test

import (
	"context"
	"encoding/base64"
	"time"

	auth "github.com/greentrace/go-auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// testSigningKey is base64 encoded the way deployments provide it.
var testSigningKey = base64.StdEncoding.EncodeToString([]byte("test-signing-key-0123456789abcdef"))

// testConfig is a plain Config implementation for tests
type testConfig struct {
	signingKey    string
	signingMethod string
	tokenTTL      time.Duration
	resetTokenTTL time.Duration
	issuer        string
	audience      []string
	publicRoutes  []string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey:    testSigningKey,
		signingMethod: "HS256",
		tokenTTL:      time.Hour,
		resetTokenTTL: 24 * time.Hour,
		issuer:        "test-issuer",
		audience:      []string{"test:audience"},
	}
}

func (c *testConfig) GetSigningKey() string            { return c.signingKey }
func (c *testConfig) GetSigningMethod() string         { return c.signingMethod }
func (c *testConfig) GetContextKey() string            { return "user" }
func (c *testConfig) GetTokenTTL() time.Duration       { return c.tokenTTL }
func (c *testConfig) GetResetTokenTTL() time.Duration  { return c.resetTokenTTL }
func (c *testConfig) GetIssuer() string                { return c.issuer }
func (c *testConfig) GetAudience() []string            { return c.audience }
func (c *testConfig) GetTokenLookup() string           { return "header:Authorization" }
func (c *testConfig) GetAuthScheme() string            { return "Bearer" }
func (c *testConfig) GetPublicRoutes() []string        { return c.publicRoutes }

// MockUserStore implements auth.UserStore
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStore) GetByResetToken(ctx context.Context, token string) (*auth.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStore) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error {
	args := m.Called(ctx, id, token, expiry)
	return args.Error(0)
}

func (m *MockUserStore) ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserStore) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) UpdateActive(ctx context.Context, id uuid.UUID, active bool) (*auth.User, error) {
	args := m.Called(ctx, id, active)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

func (m *MockUserStore) UpdateNames(ctx context.Context, id uuid.UUID, firstName, lastName string) (*auth.User, error) {
	args := m.Called(ctx, id, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.User), args.Error(1)
}

// plainHasher avoids paying the bcrypt cost on every test case.
type plainHasher struct{}

func (plainHasher) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (plainHasher) ComparePasswordAndHash(password, hash string) error {
	if "hashed:"+password != hash {
		return auth.ErrMismatchedHashAndPassword
	}
	return nil
}

// noopLogger silences auth logging in tests
type noopLogger struct{}

func (noopLogger) Debug(format string, args ...any) {}
func (noopLogger) Info(format string, args ...any)  {}
func (noopLogger) Warn(format string, args ...any)  {}
func (noopLogger) Error(format string, args ...any) {}

func newTestUser(email, password string) *auth.User {
	return &auth.User{
		ID:           uuid.New(),
		FirstName:    "Pepe",
		LastName:     "Rone",
		Email:        auth.NormalizeEmail(email),
		PasswordHash: "hashed:" + password,
		Active:       true,
	}
}
