package jwtware_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/greentrace/go-auth/middleware/jwtware"
)

// By default we set an expiration time 1 hour from now
func generateToken(t *testing.T, method jwt.SigningMethod, key []byte, claims jwt.MapClaims) string {
	t.Helper()

	if claims["exp"] == nil {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}

	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

type stubClaims struct {
	subject string
	userID  string
}

func (s stubClaims) Subject() string     { return s.subject }
func (s stubClaims) UserID() string      { return s.userID }
func (s stubClaims) Expires() time.Time  { return time.Now().Add(time.Hour) }
func (s stubClaims) IssuedAt() time.Time { return time.Now() }

type identityStub struct {
	id    string
	email string
}

func (i identityStub) ID() string    { return i.id }
func (i identityStub) Email() string { return i.email }

type stubValidator struct {
	claims jwtware.AuthClaims
	err    error
}

func (s stubValidator) Validate(token string) (jwtware.AuthClaims, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.claims, nil
}

func runMiddleware(cfg jwtware.Config, ctx router.Context) error {
	handler := jwtware.New(cfg)(func(c router.Context) error {
		return c.Next()
	})
	return handler(ctx)
}

func TestJWTWare_ValidTokenAttachesClaims(t *testing.T) {
	claims := stubClaims{subject: "user@example.com", userID: "user-1"}

	cfg := jwtware.Config{
		TokenValidator: stubValidator{claims: claims},
	}

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer sometoken"
	ctx.On("GetString", "Authorization", "").Return("Bearer sometoken")
	ctx.On("Locals", "user", mock.Anything).Return(nil)

	err := runMiddleware(cfg, ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
	ctx.AssertCalled(t, "Locals", "user", claims)
}

func TestJWTWare_MissingTokenContinuesAnonymously(t *testing.T) {
	cfg := jwtware.Config{
		TokenValidator: stubValidator{claims: stubClaims{}},
	}

	ctx := router.NewMockContext()
	ctx.On("GetString", "Authorization", "").Return("")

	err := runMiddleware(cfg, ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled, "request should continue without an identity")
	ctx.AssertNotCalled(t, "Locals", "user", mock.Anything)
}

func TestJWTWare_InvalidTokenContinuesAnonymously(t *testing.T) {
	cfg := jwtware.Config{
		TokenValidator: stubValidator{err: jwt.ErrTokenExpired},
	}

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer expiredtoken"
	ctx.On("GetString", "Authorization", "").Return("Bearer expiredtoken")

	err := runMiddleware(cfg, ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled, "request should continue without an identity")
	ctx.AssertNotCalled(t, "Locals", "user", mock.Anything)
}

func TestJWTWare_CustomErrorHandlerCanReject(t *testing.T) {
	cfg := jwtware.Config{
		TokenValidator: stubValidator{err: jwt.ErrTokenExpired},
		ErrorHandler: func(c router.Context, err error) error {
			return err
		},
	}

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer expiredtoken"
	ctx.On("GetString", "Authorization", "").Return("Bearer expiredtoken")

	err := runMiddleware(cfg, ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	assert.False(t, ctx.NextCalled)
}

func TestJWTWare_PublicRouteSkipsValidation(t *testing.T) {
	cfg := jwtware.Config{
		TokenValidator: stubValidator{err: jwt.ErrTokenMalformed},
		Filter: func(ctx router.Context) bool {
			return ctx.Path() == "/api/auth/login"
		},
	}

	ctx := router.NewMockContext()
	ctx.On("Path").Return("/api/auth/login")

	err := runMiddleware(cfg, ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
	ctx.AssertNotCalled(t, "GetString", "Authorization", "")
}

func TestJWTWare_KeyfuncValidatorHS256(t *testing.T) {
	signingKey := []byte("test-secret")

	validToken := generateToken(t, jwt.SigningMethodHS256, signingKey, jwt.MapClaims{
		"sub":    "12345@example.com",
		"userId": "12345",
	})

	cfg := jwtware.Config{
		SigningKey: jwtware.SigningKey{
			Key:    signingKey,
			JWTAlg: jwt.SigningMethodHS256.Alg(),
		},
	}

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer " + validToken
	ctx.On("GetString", "Authorization", "").Return("Bearer " + validToken)

	var stored jwtware.AuthClaims
	ctx.On("Locals", "user", mock.Anything).Run(func(args mock.Arguments) {
		stored = args.Get(1).(jwtware.AuthClaims)
	}).Return(nil)

	err := runMiddleware(cfg, ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "12345@example.com", stored.Subject())
	assert.Equal(t, "12345", stored.UserID())
}

func TestJWTWare_KeyfuncValidatorRejectsWrongAlg(t *testing.T) {
	signingKey := []byte("test-secret")

	validToken := generateToken(t, jwt.SigningMethodHS512, signingKey, jwt.MapClaims{
		"sub": "12345",
	})

	var handled error
	cfg := jwtware.Config{
		SigningKey: jwtware.SigningKey{
			Key:    signingKey,
			JWTAlg: jwt.SigningMethodHS256.Alg(),
		},
		ErrorHandler: func(c router.Context, err error) error {
			handled = err
			return c.Next()
		},
	}

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer " + validToken
	ctx.On("GetString", "Authorization", "").Return("Bearer " + validToken)

	err := runMiddleware(cfg, ctx)
	require.NoError(t, err)
	assert.Error(t, handled)
	assert.True(t, ctx.NextCalled)
}

func TestJWTWare_IdentityResolver(t *testing.T) {
	claims := stubClaims{subject: "resolve@example.com", userID: "user-9"}

	cfg := jwtware.Config{
		TokenValidator: stubValidator{claims: claims},
		IdentityResolver: func(ctx context.Context, c jwtware.AuthClaims) (jwtware.Identity, error) {
			return identityStub{id: "user-9", email: c.Subject()}, nil
		},
	}

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer sometoken"
	ctx.On("GetString", "Authorization", "").Return("Bearer sometoken")
	ctx.On("Locals", "user", mock.Anything).Return(nil)
	ctx.On("Locals", "identity", mock.Anything).Return(nil)
	ctx.On("Context").Return(context.Background())

	err := runMiddleware(cfg, ctx)
	require.NoError(t, err)
	ctx.AssertCalled(t, "Locals", "identity", identityStub{id: "user-9", email: "resolve@example.com"})
}

// A valid token whose credential cannot be resolved must leave the request
// exactly as anonymous as a missing token: no claims, no identity.
func TestJWTWare_IdentityResolverFailureContinuesAnonymously(t *testing.T) {
	cfg := jwtware.Config{
		TokenValidator: stubValidator{claims: stubClaims{subject: "gone@example.com"}},
		IdentityResolver: func(ctx context.Context, c jwtware.AuthClaims) (jwtware.Identity, error) {
			return nil, assert.AnError
		},
	}

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer sometoken"
	ctx.On("GetString", "Authorization", "").Return("Bearer sometoken")
	ctx.On("Context").Return(context.Background())

	err := runMiddleware(cfg, ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled)
	ctx.AssertNotCalled(t, "Locals", "user", mock.Anything)
	ctx.AssertNotCalled(t, "Locals", "identity", mock.Anything)
}

// End to end through both layers: a token for a deactivated or deleted
// credential fails identity resolution, so the interceptor attaches nothing
// and RequireIdentity rejects the request.
func TestJWTWare_UnresolvableTokenRejectedByGuard(t *testing.T) {
	locals := map[string]any{}

	cfg := jwtware.Config{
		TokenValidator: stubValidator{claims: stubClaims{subject: "deleted@example.com", userID: "user-7"}},
		IdentityResolver: func(ctx context.Context, c jwtware.AuthClaims) (jwtware.Identity, error) {
			return nil, assert.AnError
		},
	}

	ctx := router.NewMockContext()
	ctx.HeadersM["Authorization"] = "Bearer sometoken"
	ctx.On("GetString", "Authorization", "").Return("Bearer sometoken")
	ctx.On("Context").Return(context.Background())
	ctx.On("Locals", mock.Anything, mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		locals[args.Get(0).(string)] = args.Get(1)
	})

	err := runMiddleware(cfg, ctx)
	require.NoError(t, err)
	assert.True(t, ctx.NextCalled, "interceptor stays fail-open")
	assert.Empty(t, locals, "nothing may be attached for an unresolvable token")

	// the guard sees what the interceptor left behind: nothing
	guardCtx := router.NewMockContext()
	for k, v := range locals {
		guardCtx.LocalsMock[k] = v
	}
	guardCtx.On("Status", router.StatusUnauthorized).Return(guardCtx)
	guardCtx.On("SendString", "Unauthorized").Return(nil)

	guard := jwtware.RequireIdentity("user")
	handler := guard(func(c router.Context) error { return c.Next() })
	require.NoError(t, handler(guardCtx))
	assert.False(t, guardCtx.NextCalled, "guard must reject the request")
	guardCtx.AssertCalled(t, "Status", router.StatusUnauthorized)
}

func TestRequireIdentity(t *testing.T) {
	guard := jwtware.RequireIdentity("user")

	t.Run("passes through with claims present", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = stubClaims{subject: "ok@example.com"}

		handler := guard(func(c router.Context) error { return c.Next() })
		err := handler(ctx)
		require.NoError(t, err)
		assert.True(t, ctx.NextCalled)
	})

	t.Run("rejects anonymous requests", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.On("Status", router.StatusUnauthorized).Return(ctx)
		ctx.On("SendString", "Unauthorized").Return(nil)

		handler := guard(func(c router.Context) error { return c.Next() })
		err := handler(ctx)
		require.NoError(t, err)
		assert.False(t, ctx.NextCalled)
		ctx.AssertCalled(t, "Status", router.StatusUnauthorized)
	})

	t.Run("rejects wrong local type", func(t *testing.T) {
		ctx := router.NewMockContext()
		ctx.LocalsMock["user"] = "not-claims"
		ctx.On("Status", router.StatusUnauthorized).Return(ctx)
		ctx.On("SendString", "Unauthorized").Return(nil)

		handler := guard(func(c router.Context) error { return c.Next() })
		err := handler(ctx)
		require.NoError(t, err)
		assert.False(t, ctx.NextCalled)
	})
}

func TestGetExtractors(t *testing.T) {
	extractors := jwtware.GetExtractors("header:Authorization,query:auth_token,cookie:jwt")
	assert.Len(t, extractors, 3)

	extractors = jwtware.GetExtractors("header:Authorization")
	assert.Len(t, extractors, 1)
}
