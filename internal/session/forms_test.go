package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateLogin(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     FieldErrors
	}{
		{"Valid", "a@x.io", "secret1", FieldErrors{}},
		{"Empty", "", "", FieldErrors{FieldEmail: "Email is required.", FieldPassword: "Password is required."}},
		{"Blank Email", "   ", "secret1", FieldErrors{FieldEmail: "Email is required."}},
		{"Malformed Email", "a@x", "secret1", FieldErrors{FieldEmail: "Enter a valid email address."}},
		{"Email With Space", "a b@x.io", "secret1", FieldErrors{FieldEmail: "Enter a valid email address."}},
		{"Short Password", "a@x.io", "12345", FieldErrors{FieldPassword: "Password must be at least 6 characters."}},
		{"Exactly Six", "a@x.io", "123456", FieldErrors{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ValidateLogin(tc.email, tc.password)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, len(tc.want) == 0, got.OK())
		})
	}
}

func TestValidateSignup(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		assert.True(t, ValidateSignup("Ada", "a@x.io", "secret1", "secret1").OK())
	})

	t.Run("Name Required", func(t *testing.T) {
		errs := ValidateSignup("  ", "a@x.io", "secret1", "secret1")
		assert.Equal(t, FieldErrors{FieldName: "Name is required."}, errs)
	})

	t.Run("Confirm Required", func(t *testing.T) {
		errs := ValidateSignup("Ada", "a@x.io", "secret1", "")
		assert.Equal(t, "Confirm your password.", errs[FieldConfirm])
	})

	t.Run("Confirm Must Match", func(t *testing.T) {
		errs := ValidateSignup("Ada", "a@x.io", "secret1", "secret2")
		assert.Equal(t, "Passwords do not match.", errs[FieldConfirm])
	})

	t.Run("Reports Every Field", func(t *testing.T) {
		errs := ValidateSignup("", "nope", "123", "456")
		assert.Len(t, errs, 4)
		for _, msg := range errs {
			assert.True(t, strings.HasSuffix(msg, "."))
		}
	})
}
