package identity

import "strings"

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// PasswordSymbols is the set of special characters the policy accepts.
const PasswordSymbols = "@$!%*#?&"

// ValidatePasswordPolicy checks password composition: at least
// MinPasswordLength characters, one letter, one digit, and one symbol from
// PasswordSymbols. Characters outside letters, digits, and PasswordSymbols are
// rejected outright.
func ValidatePasswordPolicy(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordPolicy
	}

	var hasLetter, hasDigit, hasSymbol bool
	for _, r := range password {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		case r >= '0' && r <= '9':
			hasDigit = true
		case strings.ContainsRune(PasswordSymbols, r):
			hasSymbol = true
		default:
			return ErrPasswordPolicy
		}
	}

	if !hasLetter || !hasDigit || !hasSymbol {
		return ErrPasswordPolicy
	}

	return nil
}
