package validation

import (
	"regexp"
	"strings"
)

// Validation rule patterns
var (
	// EmailPattern accepts word characters with optional dot/dash separated parts
	EmailPattern = `^\w+([\.-]?\w+)*@\w+([\.-]?\w+)*(\.\w{2,3})+$`

	PasswordMinLength = 6
	PasswordMaxLength = 20

	// ResetPasswordMinLength and ResetPasswordMaxLength bound passwords set
	// through the reset flow. The maximum is in bytes, the bcrypt input limit.
	ResetPasswordMinLength = 8
	ResetPasswordMaxLength = 72

	NameMinLength = 2
	NameMaxLength = 100
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Email *regexp.Regexp
}{
	Email: regexp.MustCompile(EmailPattern),
}

// IsValidEmail reports whether email matches the address grammar
func IsValidEmail(email string) bool {
	return CompiledPatterns.Email.MatchString(strings.TrimSpace(email))
}

// IsStrongPassword enforces 6-20 characters with at least one ASCII digit,
// one ASCII lowercase and one ASCII uppercase letter.
func IsStrongPassword(password string) bool {
	length := len([]rune(password))
	if length < PasswordMinLength || length > PasswordMaxLength {
		return false
	}

	var hasDigit, hasLower, hasUpper bool
	for _, r := range password {
		switch {
		case '0' <= r && r <= '9':
			hasDigit = true
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		}
	}
	return hasDigit && hasLower && hasUpper
}

// IsValidName checks the trimmed length of a display name
func IsValidName(name string) bool {
	length := len([]rune(strings.TrimSpace(name)))
	return length >= NameMinLength && length <= NameMaxLength
}
