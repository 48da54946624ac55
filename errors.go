package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeUserDeactivated    = "USER_DEACTIVATED"
	TextCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	TextCodeInvalidResetToken  = "INVALID_RESET_TOKEN"
	TextCodeResetTokenExpired  = "RESET_TOKEN_EXPIRED"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenSignature     = "TOKEN_BAD_SIGNATURE"
	TextCodeTooManyAttempts    = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeWeakPassword       = "WEAK_PASSWORD"
	TextCodeStoreUnavailable   = "STORE_UNAVAILABLE"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithTextCode("IDENTITY_NOT_FOUND").
	WithCode(goerrors.CodeNotFound)

// ErrInvalidCredentials is returned for unknown emails and for password
// mismatches alike; callers must not be able to tell which one happened.
var ErrInvalidCredentials = goerrors.New("invalid email or password", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeUnauthorized)

// ErrUserDeactivated blocks login for deactivated accounts.
var ErrUserDeactivated = goerrors.New("account is deactivated", goerrors.CategoryAuth).
	WithTextCode(TextCodeUserDeactivated).
	WithCode(goerrors.CodeUnauthorized)

// ErrDuplicateEmail is returned when a signup email is already registered.
var ErrDuplicateEmail = goerrors.New("email is already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(goerrors.CodeConflict)

// ErrInvalidResetToken is returned when no credential holds the reset token.
var ErrInvalidResetToken = goerrors.New("invalid reset token", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidResetToken).
	WithCode(goerrors.CodeBadRequest)

// ErrResetTokenExpired is returned when the stored reset token is past its
// expiry. The token stays on the row until the next reset overwrites it.
var ErrResetTokenExpired = goerrors.New("reset token has expired", goerrors.CategoryValidation).
	WithTextCode(TextCodeResetTokenExpired).
	WithCode(goerrors.CodeBadRequest)

// ErrTooManyLoginAttempts enforces the login cool down window.
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryAuth).
	WithTextCode(TextCodeTooManyAttempts).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned by Validate for tokens past their exp claim.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed covers structurally invalid tokens.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenSignature covers signature mismatches on structurally valid tokens.
var ErrTokenSignature = goerrors.New("token signature is invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenSignature).
	WithCode(goerrors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the low level bcrypt mismatch error.
var ErrMismatchedHashAndPassword = goerrors.New("mismatched hash and password", goerrors.CategoryAuth).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString rejects empty inputs where a secret is required.
var ErrNoEmptyString = goerrors.New("string should not be empty", goerrors.CategoryBadInput)

// WrapWeakPassword wraps a validation failure so callers can surface the
// per rule message while keeping a stable text code.
func WrapWeakPassword(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
		WithTextCode(TextCodeWeakPassword).
		WithCode(goerrors.CodeBadRequest)
}

// WrapStoreUnavailable marks an infrastructure failure from the credential
// store. Only not-found lookups collapse into the uniform auth errors;
// everything else keeps its cause and surfaces as an internal error.
func WrapStoreUnavailable(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryInternal, "credential store unavailable").
		WithTextCode(TextCodeStoreUnavailable).
		WithCode(goerrors.CodeInternal)
}

// IsStoreUnavailableError reports whether the error is an infrastructure
// failure rather than a domain outcome.
func IsStoreUnavailableError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == TextCodeStoreUnavailable
	}
	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsSignatureError will check for signature mismatches
func IsSignatureError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenSignature) {
		return true
	}
	return strings.Contains(err.Error(), "signature is invalid")
}
