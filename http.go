package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/greentrace/go-auth/middleware/jwtware"
)

// RouteAuthenticator wires the token service and credential store into the
// request interception middleware.
type RouteAuthenticator struct {
	auth         *Auther
	cfg          Config
	store        UserStore
	routes       *PublicRoutes
	Logger       Logger
	ErrorHandler func(c router.Context, err error) error
}

func NewHTTPAuthenticator(auther *Auther, store UserStore, cfg Config) (*RouteAuthenticator, error) {
	if auther == nil {
		return nil, errors.New("http authenticator requires an Auther", errors.CategoryInternal)
	}

	a := &RouteAuthenticator{
		cfg:    cfg,
		auth:   auther,
		store:  store,
		routes: NewPublicRoutes(cfg.GetPublicRoutes()),
		Logger: defLogger{},
	}

	a.ErrorHandler = a.defaultErrHandler

	return a, nil
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

// TokenInterceptor validates bearer tokens on every request that is not a
// public route. Requests with no token, or a token that fails validation,
// continue anonymously; RequireAuthenticated guards the routes that need
// an identity.
func (a *RouteAuthenticator) TokenInterceptor() router.MiddlewareFunc {
	return jwtware.New(jwtware.Config{
		Filter:           a.routes.Filter(),
		TokenValidator:   claimsValidator{a.auth},
		IdentityResolver: a.resolveIdentity,
		ContextKey:       a.cfg.GetContextKey(),
		TokenLookup:      a.cfg.GetTokenLookup(),
		AuthScheme:       a.cfg.GetAuthScheme(),
		ErrorHandler: func(ctx router.Context, err error) error {
			a.Logger.Debug("Token interception continues unauthenticated", "path", ctx.Path(), "error", err)
			return ctx.Next()
		},
		ContextEnricher: func(c context.Context, claims jwtware.AuthClaims, identity jwtware.Identity) context.Context {
			if ac, ok := claims.(AuthClaims); ok {
				c = WithClaimsContext(c, ac)
			}
			if id, ok := identity.(Identity); ok && id != nil {
				c = WithIdentityContext(c, id)
			}
			return c
		},
	})
}

// RequireAuthenticated rejects any request that reached it without validated
// claims. Layer it on routes that must not run anonymously.
func (a *RouteAuthenticator) RequireAuthenticated() router.MiddlewareFunc {
	return jwtware.RequireIdentity(a.cfg.GetContextKey(), func(ctx router.Context, err error) error {
		a.Logger.Warn("Rejected unauthenticated request", "path", ctx.Path())
		return a.ErrorHandler(ctx, errors.Wrap(err, errors.CategoryAuth, "authentication required").
			WithCode(errors.CodeUnauthorized))
	})
}

// PublicRoutes exposes the matcher so applications can audit what is open.
func (a *RouteAuthenticator) PublicRoutes() *PublicRoutes {
	return a.routes
}

func (a *RouteAuthenticator) resolveIdentity(ctx context.Context, claims jwtware.AuthClaims) (jwtware.Identity, error) {
	if a.store == nil {
		return nil, nil
	}

	user, err := a.store.GetByEmail(ctx, claims.Subject())
	if err != nil {
		a.Logger.Warn("Identity resolution failed", "subject", claims.Subject(), "error", err)
		return nil, err
	}

	if !user.Active {
		return nil, ErrUserDeactivated
	}

	return IdentityFromUser(user), nil
}

// claimsValidator adapts the auth token validation into the middleware's
// local interface.
type claimsValidator struct {
	auth *Auther
}

func (v claimsValidator) Validate(tokenString string) (jwtware.AuthClaims, error) {
	claims, err := v.auth.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func (a *RouteAuthenticator) defaultErrHandler(c router.Context, err error) error {
	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		richErr = errors.Wrap(err, errors.CategoryInternal, "An unexpected server error occurred").
			WithCode(errors.CodeInternal)
	}

	status := richErr.Code
	if status == 0 {
		status = router.StatusInternalServerError
	}

	return c.JSON(status, map[string]any{
		"error": map[string]any{
			"message":   richErr.Message,
			"text_code": richErr.TextCode,
		},
	})
}
