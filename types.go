package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Email() string
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	SignUp(ctx context.Context, msg RegisterUserMessage) (*User, error)
	Login(ctx context.Context, identifier, password string) (*User, error)
	IssueToken(user *User) (string, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName string) (*User, error)
	Deactivate(ctx context.Context, actor ActorRef, id uuid.UUID) (*User, error)
	Reinstate(ctx context.Context, actor ActorRef, id uuid.UUID) (*User, error)
}

// Config holds auth options
type Config interface {
	// GetSigningKey returns the base64 encoded symmetric signing key.
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenTTL() time.Duration
	GetResetTokenTTL() time.Duration
	GetIssuer() string
	GetAudience() []string
	GetTokenLookup() string
	GetAuthScheme() string
	// GetPublicRoutes returns the auditable list of routes that skip
	// authentication. Entries ending in "/" match as prefixes, the rest
	// match exactly.
	GetPublicRoutes() []string
}

// UserStore is the credential storage contract the core consumes. The bun
// backed Users repository implements it; tests swap in mocks.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByResetToken(ctx context.Context, token string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, user *User) (*User, error)
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiry time.Time) error
	ResetPassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	TrackAttemptedLogin(ctx context.Context, user *User) error
	TrackSuccessfulLogin(ctx context.Context, user *User) error
	UpdateActive(ctx context.Context, id uuid.UUID, active bool) (*User, error)
	UpdateNames(ctx context.Context, id uuid.UUID, firstName, lastName string) (*User, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// ActorRef identifies who/what triggered an account operation.
type ActorRef struct {
	ID   string
	Type string
}

type LoginPayload interface {
	GetIdentifier() string
	GetPassword() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
