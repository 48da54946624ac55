package auth_test

import (
	"testing"
	"time"

	auth "github.com/greentrace/go-auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"User@Example.com", "user@example.com"},
		{"  padded@example.com  ", "padded@example.com"},
		{"ALLCAPS@EXAMPLE.COM", "allcaps@example.com"},
		{"fine@example.com", "fine@example.com"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, auth.NormalizeEmail(tt.input))
	}
}

func TestUserFullName(t *testing.T) {
	user := &auth.User{FirstName: "Pepe", LastName: "Rone"}
	assert.Equal(t, "Pepe Rone", user.FullName())

	user = &auth.User{FirstName: "Cher"}
	assert.Equal(t, "Cher", user.FullName())

	user = &auth.User{}
	assert.Equal(t, "", user.FullName())
}

func TestUserHasPendingReset(t *testing.T) {
	user := &auth.User{}
	assert.False(t, user.HasPendingReset())

	token := "sometoken"
	expiry := time.Now().Add(time.Hour)
	user.ResetToken = &token
	user.ResetTokenExpiry = &expiry
	assert.True(t, user.HasPendingReset())

	empty := ""
	user.ResetToken = &empty
	assert.False(t, user.HasPendingReset())
}

func TestIdentityFromUser(t *testing.T) {
	id := uuid.New()
	user := &auth.User{ID: id, Email: "ident@example.com"}

	identity := auth.IdentityFromUser(user)
	assert.Equal(t, id.String(), identity.ID())
	assert.Equal(t, "ident@example.com", identity.Email())
}
