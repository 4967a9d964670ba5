package utils

import (
	"strings"
)

// SuggestionFilter drops duplicate suggestions, case insensitively
type SuggestionFilter struct {
	seenWords map[string]bool
}

// NewSuggestionFilter creates a filter that also excludes the typed input itself
func NewSuggestionFilter(input string) *SuggestionFilter {
	seenWords := make(map[string]bool)
	if lowerInput := strings.ToLower(strings.TrimSpace(input)); lowerInput != "" {
		seenWords[lowerInput] = true
	}
	return &SuggestionFilter{seenWords: seenWords}
}

// ShouldInclude reports whether word is new and records it
func (f *SuggestionFilter) ShouldInclude(word string) bool {
	lowerWord := strings.ToLower(word)
	if f.seenWords[lowerWord] {
		return false
	}
	f.seenWords[lowerWord] = true
	return true
}
