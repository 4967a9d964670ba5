package suggest

import "strings"

// EntryType classifies a context entry.
type EntryType string

const (
	EntryQuery      EntryType = "QUERY"
	EntryNavigation EntryType = "NAVIGATION"
)

// ContextEntry is the optional side metadata of one suggestion.
type ContextEntry struct {
	Type          EntryType `json:"type" msgpack:"type"`
	Title         string    `json:"title,omitempty" msgpack:"title,omitempty"`
	Description   string    `json:"description,omitempty" msgpack:"description,omitempty"`
	URL           string    `json:"url,omitempty" msgpack:"url,omitempty"`
	ImageURL      string    `json:"imageUrl,omitempty" msgpack:"imageUrl,omitempty"`
	ImpressionURL string    `json:"impressionUrl,omitempty" msgpack:"impressionUrl,omitempty"`
	ClickURL      string    `json:"clickUrl,omitempty" msgpack:"clickUrl,omitempty"`
	Provider      string    `json:"provider,omitempty" msgpack:"provider,omitempty"`
}

// SuggestionSet holds index-aligned suggestions and their context entries.
// len(Suggestions) == len(ContextData) always holds for sets produced by this package.
type SuggestionSet struct {
	Suggestions []string        `json:"suggestions" msgpack:"suggestions"`
	ContextData []*ContextEntry `json:"contextData" msgpack:"contextData"`
}

// EmptySet returns a set with non-nil, zero length slices.
func EmptySet() SuggestionSet {
	return SuggestionSet{Suggestions: []string{}, ContextData: []*ContextEntry{}}
}

// Len returns the number of suggestions.
func (s SuggestionSet) Len() int {
	return len(s.Suggestions)
}

// IsEmpty reports whether the set has no suggestions.
func (s SuggestionSet) IsEmpty() bool {
	return len(s.Suggestions) == 0
}

// aligned pads or truncates ContextData so it matches Suggestions.
func (s SuggestionSet) aligned() SuggestionSet {
	if s.Suggestions == nil {
		s.Suggestions = []string{}
	}
	n := len(s.Suggestions)
	ctx := make([]*ContextEntry, n)
	copy(ctx, s.ContextData)
	return SuggestionSet{Suggestions: s.Suggestions, ContextData: ctx}
}

// clone copies the slices and the entries so callers can't mutate store
// or cache state.
func (s SuggestionSet) clone() SuggestionSet {
	out := SuggestionSet{
		Suggestions: make([]string, len(s.Suggestions)),
		ContextData: make([]*ContextEntry, len(s.ContextData)),
	}
	copy(out.Suggestions, s.Suggestions)
	for i, e := range s.ContextData {
		if e != nil {
			cp := *e
			out.ContextData[i] = &cp
		}
	}
	return out
}

// AISuggestion overrides the regular suggestion as the selected one.
type AISuggestion struct {
	Type  string `json:"type" msgpack:"type"`
	URL   string `json:"url" msgpack:"url"`
	Title string `json:"title" msgpack:"title"`
}

// SelectionKind tells a Selection's origin apart.
type SelectionKind int

const (
	SelectionRegular SelectionKind = iota
	SelectionAISlot
	SelectionAIOverride
)

// Selection is the currently highlighted suggestion.
type Selection struct {
	Kind    SelectionKind
	Index   int
	Text    string
	Context *ContextEntry
	AI      *AISuggestion
}

// Direction is a keyboard navigation step.
type Direction int

const (
	Up Direction = iota
	Down
	Escape
)

// ParseDirection maps key names used by the adapters to a Direction.
func ParseDirection(key string) (Direction, bool) {
	switch strings.ToLower(key) {
	case "up", "arrowup":
		return Up, true
	case "down", "arrowdown":
		return Down, true
	case "esc", "escape":
		return Escape, true
	}
	return 0, false
}

// NormalizeQuery trims the query. No other normalization is applied.
func NormalizeQuery(q string) string {
	return strings.TrimSpace(q)
}
