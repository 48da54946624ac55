package auth

import (
	"context"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// DefaultResetTokenTTL is how long a password reset token stays redeemable.
const DefaultResetTokenTTL = 24 * time.Hour

// DefaultMaxLoginAttempts is how many consecutive failures trigger the
// login cool down.
const DefaultMaxLoginAttempts = 5

// DefaultLoginCooldown is the window during which a throttled account
// rejects further attempts.
const DefaultLoginCooldown = 15 * time.Minute

// RegisterUserMessage carries the attributes of a signup request.
type RegisterUserMessage struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	UseHashid bool   `json:"-"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate will run validation rules
func (e RegisterUserMessage) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&e.Password, PasswordRules()...),
	)
}

// Auther implements the Authenticator interface on top of a UserStore.
type Auther struct {
	store            UserStore
	hasher           PasswordAuthenticator
	tokenService     TokenService
	tokenValidator   TokenValidator
	logger           Logger
	now              func() time.Time
	resetTokenTTL    time.Duration
	maxLoginAttempts int
	loginCooldown    time.Duration
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(store UserStore, opts Config) (*Auther, error) {
	tokenService, err := NewTokenServiceFromConfig(opts, defLogger{})
	if err != nil {
		return nil, err
	}

	resetTTL := opts.GetResetTokenTTL()
	if resetTTL <= 0 {
		resetTTL = DefaultResetTokenTTL
	}

	return &Auther{
		store:            store,
		hasher:           BcryptHasher{},
		tokenService:     tokenService,
		logger:           defLogger{},
		now:              time.Now,
		resetTokenTTL:    resetTTL,
		maxLoginAttempts: DefaultMaxLoginAttempts,
		loginCooldown:    DefaultLoginCooldown,
	}, nil
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithHasher swaps the password hashing backend, mostly used by tests to
// avoid paying the bcrypt cost on every case.
func (s *Auther) WithHasher(hasher PasswordAuthenticator) *Auther {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// WithTokenService replaces the token backend built from Config.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// WithTokenValidator sets a custom token validator for externally issued tokens.
func (s *Auther) WithTokenValidator(validator TokenValidator) *Auther {
	s.tokenValidator = validator
	return s
}

// WithClock overrides the time source, used by tests.
func (s *Auther) WithClock(now func() time.Time) *Auther {
	if now != nil {
		s.now = now
	}
	return s
}

// WithLoginThrottle tunes the attempt ceiling and cool down window.
func (s *Auther) WithLoginThrottle(maxAttempts int, cooldown time.Duration) *Auther {
	if maxAttempts > 0 {
		s.maxLoginAttempts = maxAttempts
	}
	if cooldown > 0 {
		s.loginCooldown = cooldown
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// SignUp registers a new credential. Emails are stored normalized and must
// be unique; the password is checked against PasswordRules before hashing.
func (s *Auther) SignUp(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	if err := msg.Validate(); err != nil {
		s.logger.Error("SignUp validate payload", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid signup payload").
			WithCode(goerrors.CodeBadRequest)
	}

	email := NormalizeEmail(msg.Email)

	exists, err := s.store.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, WrapStoreUnavailable(err)
	}
	if exists {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.HashPassword(msg.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	// New accounts start active but unverified until the address is
	// confirmed out of band.
	user := &User{
		FirstName:     msg.FirstName,
		LastName:      msg.LastName,
		Email:         email,
		PasswordHash:  hash,
		Active:        true,
		EmailVerified: false,
	}

	if msg.UseHashid {
		if id, err := hashid.NewUUID(email); err == nil {
			user.ID = id
		}
	}

	created, err := s.store.Register(ctx, user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryConflict, "could not create user")
	}

	s.logger.Info("SignUp registered user", "email", email, "id", created.ID)

	return created, nil
}

// Login verifies the identifier and password pair. Unknown identifiers and
// bad passwords both return ErrInvalidCredentials so callers cannot tell
// which emails are registered.
func (s *Auther) Login(ctx context.Context, identifier, password string) (*User, error) {
	email := NormalizeEmail(identifier)

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if !goerrors.IsNotFound(err) {
			s.logger.Error("Login store failure", "error", err)
			return nil, WrapStoreUnavailable(err)
		}
		s.logger.Error("Login find identity", "error", err)
		return nil, ErrInvalidCredentials
	}

	if err := s.checkLoginThrottle(user); err != nil {
		s.logger.Warn("Login throttled", "email", email, "attempts", user.LoginAttempts)
		return nil, err
	}

	if err := s.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if trackErr := s.store.TrackAttemptedLogin(ctx, user); trackErr != nil {
			s.logger.Warn("Login track attempt", "error", trackErr)
		}
		s.logger.Error("Login password mismatch", "email", email)
		return nil, ErrInvalidCredentials
	}

	if !user.Active {
		s.logger.Warn("Login blocked, account deactivated", "email", email)
		return nil, ErrUserDeactivated
	}

	if err := s.store.TrackSuccessfulLogin(ctx, user); err != nil {
		s.logger.Warn("Login track success", "error", err)
	}

	return user, nil
}

// IssueToken mints a signed token for an authenticated credential.
func (s *Auther) IssueToken(user *User) (string, error) {
	if user == nil {
		return "", ErrIdentityNotFound
	}
	return s.tokenService.Generate(user)
}

// ValidateToken resolves claims from a raw bearer token, preferring the
// configured TokenValidator when one was installed.
func (s *Auther) ValidateToken(raw string) (AuthClaims, error) {
	validator := s.tokenValidator
	if validator == nil {
		validator = s.tokenService
	}
	return validator.Validate(raw)
}

// RequestPasswordReset stores a fresh reset token on the credential row and
// returns it for out of band delivery. A second request overwrites the
// previous token.
func (s *Auther) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.store.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !goerrors.IsNotFound(err) {
			s.logger.Error("RequestPasswordReset store failure", "error", err)
			return "", WrapStoreUnavailable(err)
		}
		s.logger.Error("RequestPasswordReset find identity", "error", err)
		return "", ErrIdentityNotFound
	}

	token, err := GenerateResetToken()
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	expiry := s.now().Add(s.resetTokenTTL)
	if err := s.store.SetResetToken(ctx, user.ID, token, expiry); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist reset token")
	}

	s.logger.Info("RequestPasswordReset token issued", "email", user.Email)

	return token, nil
}

// ResetPassword redeems a reset token. Expired tokens fail without being
// cleared; a successful reset removes the token so it is single use.
func (s *Auther) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" {
		return ErrInvalidResetToken
	}

	user, err := s.store.GetByResetToken(ctx, token)
	if err != nil {
		if !goerrors.IsNotFound(err) {
			s.logger.Error("ResetPassword store failure", "error", err)
			return WrapStoreUnavailable(err)
		}
		s.logger.Error("ResetPassword find token", "error", err)
		return ErrInvalidResetToken
	}

	if user.ResetTokenExpiry == nil || s.now().After(*user.ResetTokenExpiry) {
		return ErrResetTokenExpired
	}

	if err := ValidatePasswordStrength(password); err != nil {
		return err
	}

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	if err := s.store.ResetPassword(ctx, user.ID, hash); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
	}

	s.logger.Info("ResetPassword completed", "email", user.Email)

	return nil
}

// UpdateProfile changes the display names on a credential. Blank values
// leave the corresponding field unchanged so either name can be updated
// on its own.
func (s *Auther) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName string) (*User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)

	if err := validation.Validate(firstName, validation.Length(0, 200)); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid first name").
			WithCode(goerrors.CodeBadRequest)
	}

	if err := validation.Validate(lastName, validation.Length(0, 200)); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid last name").
			WithCode(goerrors.CodeBadRequest)
	}

	user, err := s.store.UpdateNames(ctx, id, firstName, lastName)
	if err != nil {
		if !goerrors.IsNotFound(err) {
			s.logger.Error("UpdateProfile store failure", "error", err)
			return nil, WrapStoreUnavailable(err)
		}
		return nil, ErrIdentityNotFound
	}

	s.logger.Info("UpdateProfile completed", "id", id)

	return user, nil
}

// Deactivate flips the credential to inactive so logins are rejected.
func (s *Auther) Deactivate(ctx context.Context, actor ActorRef, id uuid.UUID) (*User, error) {
	user, err := s.store.UpdateActive(ctx, id, false)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Deactivate account", "id", id, "actor", actor.ID, "actor_type", actor.Type)

	return user, nil
}

// Reinstate re-enables a previously deactivated credential.
func (s *Auther) Reinstate(ctx context.Context, actor ActorRef, id uuid.UUID) (*User, error) {
	user, err := s.store.UpdateActive(ctx, id, true)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Reinstate account", "id", id, "actor", actor.ID, "actor_type", actor.Type)

	return user, nil
}

func (s *Auther) checkLoginThrottle(user *User) error {
	if user.LoginAttempts < s.maxLoginAttempts {
		return nil
	}

	if user.LoginAttemptAt == nil {
		return nil
	}

	if IsWithinThresholdPeriod(s.now(), *user.LoginAttemptAt, s.loginCooldown) {
		return ErrTooManyLoginAttempts
	}

	return nil
}

var _ Authenticator = (*Auther)(nil)
