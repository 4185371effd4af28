package middleware

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits.
const (
	// MaxEmailLength is the maximum accepted email address length.
	MaxEmailLength = 254

	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 6

	// MaxPasswordLength caps passwords to bound hashing cost.
	MaxPasswordLength = 128

	// MaxNameLength is the maximum accepted display name length.
	MaxNameLength = 100

	// MaxInputTextLength is the maximum text accepted by a tool run,
	// in runes.
	MaxInputTextLength = 20000
)

// Validation errors.
var (
	ErrEmailRequired    = errors.New("email is required")
	ErrEmailInvalid     = errors.New("email address is invalid")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrNameTooLong      = errors.New("name exceeds maximum length")
	ErrTextRequired     = errors.New("input text is required")
	ErrTextTooLong      = errors.New("input text exceeds maximum length")
)

// emailPattern is a pragmatic format check; deliverability is the
// mail server's problem.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail checks an email address for registration or login.
func ValidateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > MaxEmailLength || !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	return nil
}

// ValidatePassword checks a plaintext password before hashing.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// ValidateName checks an optional display name.
func ValidateName(name string) error {
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}

// ValidateInputText checks the text submitted to a tool run.
func ValidateInputText(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrTextRequired
	}
	if utf8.RuneCountInString(text) > MaxInputTextLength {
		return ErrTextTooLong
	}
	return nil
}
