package utils

import (
	"strconv"
	"strings"
)

// CapitalPositions marks which byte positions of s are ASCII capitals.
func CapitalPositions(s string) []bool {
	positions := make([]bool, len(s))
	for i, r := range s {
		positions[i] = r >= 'A' && r <= 'Z'
	}
	return positions
}

// ApplyCapitalization copies the capital pattern of the typed prefix onto word.
func ApplyCapitalization(word string, capitalPositions []bool) string {
	if len(capitalPositions) == 0 {
		return word
	}

	wordRunes := []rune(word)
	for i := 0; i < len(wordRunes) && i < len(capitalPositions); i++ {
		if capitalPositions[i] && wordRunes[i] >= 'a' && wordRunes[i] <= 'z' {
			wordRunes[i] = wordRunes[i] - 'a' + 'A'
		}
	}
	return string(wordRunes)
}

// FormatWithCommas renders n with thousands separators.
func FormatWithCommas(n int) string {
	s := strconv.Itoa(n)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Truncate shortens s to at most max runes, adding an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
