package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
)

var (
	lowercaseRe = regexp.MustCompile(`[a-z]`)
	uppercaseRe = regexp.MustCompile(`[A-Z]`)
	digitRe     = regexp.MustCompile(`[0-9]`)
	symbolRe    = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>/?]`)
)

// PasswordRules returns the validation rules applied to any new password.
// A password needs at least 8 characters with one lowercase letter, one
// uppercase letter, one number, and one special character. The upper bound
// keeps inputs within what bcrypt actually hashes.
func PasswordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Length(8, 72).Error("Password must be at least 8 characters long"),
		validation.Match(lowercaseRe).Error("Password must contain at least one lowercase letter"),
		validation.Match(uppercaseRe).Error("Password must contain at least one uppercase letter"),
		validation.Match(digitRe).Error("Password must contain at least one number"),
		validation.Match(symbolRe).Error("Password must contain at least one special character"),
	}
}

// ValidatePasswordStrength checks a cleartext password against PasswordRules.
func ValidatePasswordStrength(password string) error {
	if err := validation.Validate(password, PasswordRules()...); err != nil {
		return WrapWeakPassword(err)
	}
	return nil
}

// ValidateStringEquals will check that both values match
func ValidateStringEquals(str string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if s != str {
			return errors.New("values must match")
		}
		return nil
	}
}

// FormatValidationErrorToMap flattens ozzo validation errors into a
// field to message map suitable for response envelopes.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			if ferr != nil {
				out[field] = ferr.Error()
			}
		}
		return out
	}

	out["error"] = err.Error()
	return out
}

const resetTokenBytes = 32

// GenerateResetToken returns a URL safe random token used for the
// password reset handshake.
func GenerateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
