package session

import (
	"regexp"
	"strings"
)

// MinPasswordLength is the shortest password the sign-in and sign-up forms accept.
const MinPasswordLength = 6

// Form field names used as [FieldErrors] keys.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldConfirm  = "confirm"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// FieldErrors maps a form field to the message shown under it.
type FieldErrors map[string]string

// OK reports whether no field failed validation.
func (f FieldErrors) OK() bool {
	return len(f) == 0
}

// ValidateLogin checks the sign-in form.
func ValidateLogin(email, password string) FieldErrors {
	errs := FieldErrors{}
	validateEmail(errs, email)
	validatePassword(errs, password)
	return errs
}

// ValidateSignup checks the sign-up form.
func ValidateSignup(name, email, password, confirm string) FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(name) == "" {
		errs[FieldName] = "Name is required."
	}
	validateEmail(errs, email)
	validatePassword(errs, password)

	switch {
	case confirm == "":
		errs[FieldConfirm] = "Confirm your password."
	case confirm != password:
		errs[FieldConfirm] = "Passwords do not match."
	}
	return errs
}

func validateEmail(errs FieldErrors, email string) {
	email = strings.TrimSpace(email)
	switch {
	case email == "":
		errs[FieldEmail] = "Email is required."
	case !emailPattern.MatchString(email):
		errs[FieldEmail] = "Enter a valid email address."
	}
}

func validatePassword(errs FieldErrors, password string) {
	switch {
	case password == "":
		errs[FieldPassword] = "Password is required."
	case len(password) < MinPasswordLength:
		errs[FieldPassword] = "Password must be at least 6 characters."
	}
}
