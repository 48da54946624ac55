package auth

import (
	"strings"

	"github.com/goliatone/go-router"
)

// DefaultPublicRoutes are the paths that skip token validation out of the
// box. Entries ending in "/" match as prefixes, the rest match exactly.
var DefaultPublicRoutes = []string{
	"/api/auth/",
	"/api/public/",
	"/error",
	"/favicon.ico",
	"/health",
}

// PublicRoutes decides which request paths bypass authentication.
type PublicRoutes struct {
	Prefixes []string
	Exact    []string
}

// NewPublicRoutes splits the configured entries into prefix and exact
// matchers. A nil or empty list falls back to DefaultPublicRoutes.
func NewPublicRoutes(routes []string) *PublicRoutes {
	if len(routes) == 0 {
		routes = DefaultPublicRoutes
	}

	pr := &PublicRoutes{}
	for _, route := range routes {
		if route == "" {
			continue
		}
		if strings.HasSuffix(route, "/") {
			pr.Prefixes = append(pr.Prefixes, route)
			continue
		}
		pr.Exact = append(pr.Exact, route)
	}

	return pr
}

// Matches reports whether the path is public.
func (p *PublicRoutes) Matches(path string) bool {
	for _, exact := range p.Exact {
		if path == exact {
			return true
		}
	}

	for _, prefix := range p.Prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// Filter adapts the matcher into the middleware skip predicate.
func (p *PublicRoutes) Filter() func(router.Context) bool {
	return func(ctx router.Context) bool {
		return p.Matches(ctx.Path())
	}
}
