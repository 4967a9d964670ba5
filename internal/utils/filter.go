package utils

import (
	"unicode"
)

// IsSeparator checks if a rune is a separator character
func IsSeparator(r rune) bool {
	return r == ' ' || r == '_' || r == '-' || r == '.' || r == '/' || r == '\''
}

// IsOnlyNumbers checks if a string consists entirely of numeric digits
func IsOnlyNumbers(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ContainsSpecialChars checks for anything that is not a letter, digit or separator
func ContainsSpecialChars(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !IsSeparator(r) {
			return true
		}
	}
	return false
}

// IsRepetitive checks for one character repeated 3+ times ("aaa", "www")
func IsRepetitive(s string) bool {
	if len(s) <= 2 {
		return false
	}
	firstChar := s[0]
	for i := 1; i < len(s); i++ {
		if s[i] != firstChar {
			return false
		}
	}
	return true
}

// IsValidInput checks if a prefix is worth completing.
// Repetitive input is always rejected; numbers only and special chars only when strict.
func IsValidInput(s string, strict bool) bool {
	if len(s) == 0 {
		return false
	}
	if IsRepetitive(s) {
		return false
	}
	if strict && (IsOnlyNumbers(s) || ContainsSpecialChars(s)) {
		return false
	}
	return true
}
