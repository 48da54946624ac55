// Package auth provides stateless bearer-token authentication for the
// GreenTrace API: JWT issuance and validation, credential storage with a
// password-reset lifecycle, and request-interception middleware that
// attaches the authenticated identity to the request context.
//
// Token handling:
//   - TokenService signs and validates compact HS256 JWTs whose subject is
//     the user's normalized email and whose claims carry the user id. Claims
//     are only reachable through a successful Validate call; nothing in this
//     package projects fields out of an unverified token.
//   - The signing secret is decoded once at construction and shared
//     read-only across requests.
//
// Request interception:
//   - middleware/jwtware inspects the bearer header on protected routes and
//     attaches identity on success. It never rejects a request itself; every
//     failure mode degrades to "no identity attached". RequireIdentity is
//     the fail-closed guard that downstream routes opt into.
//
// Credential lifecycle:
//   - Auther covers signup, login, reset-token issuance, and password reset.
//     Reset tokens live on the user row with a 24h expiry and are cleared in
//     the same statement that swaps the password hash.
package auth
