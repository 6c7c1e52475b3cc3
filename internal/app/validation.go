package app

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const minPasswordLength = 10

var (
	emailPattern       = regexp.MustCompile(`^[_a-zA-Z0-9-]+(\.[_a-zA-Z0-9-]+)*@[a-zA-Z0-9-]+(\.[a-zA-Z0-9-]+)*(\.[a-zA-Z]{2,})$`)
	letterPattern      = regexp.MustCompile(`[a-zA-Z]`)
	digitPattern       = regexp.MustCompile(`[0-9]`)
	passwordSpecialSet = "!@#$%^&*()"
)

// IsValidEmail accepts local@domain.tld where the last domain label has at
// least two letters.
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// IsValidPassword requires at least 10 characters including a letter, a
// digit and one of !@#$%^&*().
func IsValidPassword(password string) bool {
	return utf8.RuneCountInString(password) >= minPasswordLength &&
		letterPattern.MatchString(password) &&
		digitPattern.MatchString(password) &&
		strings.ContainsAny(password, passwordSpecialSet)
}

func validateEmail(email string) error {
	if email == "" {
		return ErrMissingEmail
	}
	if !IsValidEmail(email) {
		return ErrBadEmailFormat
	}
	return nil
}
