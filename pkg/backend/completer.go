// Package backend is a development suggestion endpoint. It completes
// prefixes from a dictionary and answers with the JSON body the suggest
// package consumes.
package backend

import (
	"sort"
	"strings"

	"github.com/bastiangx/suggestbox/internal/utils"
	"github.com/bastiangx/suggestbox/pkg/dictionary"
	"github.com/bastiangx/suggestbox/pkg/suggest"
)

// Suggestion is one completion with its source entry.
type Suggestion struct {
	Word      string
	Frequency int
	Entry     dictionary.Entry
}

// CompleterOptions tune result filtering.
type CompleterOptions struct {
	MinFrequency      int
	MinFrequencyShort int // applied to prefixes of 2 chars or less
	StrictInput       bool
}

// Completer runs prefix lookups against a dictionary.
type Completer struct {
	dict *dictionary.Dictionary
	opts CompleterOptions
}

func NewCompleter(dict *dictionary.Dictionary, opts CompleterOptions) *Completer {
	if dict == nil {
		dict = dictionary.New()
	}
	return &Completer{dict: dict, opts: opts}
}

// Complete returns up to limit suggestions for prefix, most frequent first.
// The typed capitalization is carried over to query suggestions.
func (c *Completer) Complete(prefix string, limit int) []Suggestion {
	prefix = strings.TrimSpace(prefix)
	if !utils.IsValidInput(prefix, c.opts.StrictInput) {
		return nil
	}

	lowerPrefix := strings.ToLower(prefix)
	capitals := utils.CapitalPositions(prefix)

	threshold := c.opts.MinFrequency
	if len(lowerPrefix) <= 2 && c.opts.MinFrequencyShort > threshold {
		threshold = c.opts.MinFrequencyShort
	}

	filter := utils.NewSuggestionFilter("")
	var suggestions []Suggestion
	_ = c.dict.Visit(lowerPrefix, func(e dictionary.Entry) error {
		if e.Frequency < threshold {
			return nil
		}
		word := e.Word
		if !e.IsNavigation() {
			word = utils.ApplyCapitalization(strings.ToLower(word), capitals)
		}
		if !filter.ShouldInclude(word) {
			return nil
		}
		suggestions = append(suggestions, Suggestion{Word: word, Frequency: e.Frequency, Entry: e})
		return nil
	})

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Frequency == suggestions[j].Frequency {
			return suggestions[i].Word < suggestions[j].Word
		}
		return suggestions[i].Frequency > suggestions[j].Frequency
	})

	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// SuggestionSet converts completions into the wire shape.
func SuggestionSet(items []Suggestion) suggest.SuggestionSet {
	set := suggest.SuggestionSet{
		Suggestions: make([]string, len(items)),
		ContextData: make([]*suggest.ContextEntry, len(items)),
	}
	for i, s := range items {
		set.Suggestions[i] = s.Word
		set.ContextData[i] = contextEntry(s.Entry)
	}
	return set
}

func contextEntry(e dictionary.Entry) *suggest.ContextEntry {
	if !e.IsNavigation() {
		return &suggest.ContextEntry{Type: suggest.EntryQuery}
	}
	title := e.Title
	if title == "" {
		title = e.Word
	}
	return &suggest.ContextEntry{
		Type:        suggest.EntryNavigation,
		Title:       title,
		Description: e.Description,
		URL:         e.URL,
	}
}

// Stats returns dictionary counters.
func (c *Completer) Stats() map[string]int {
	st := c.dict.GetStats()
	return map[string]int{
		"totalWords":   st.TotalWords,
		"navigations":  st.Navigations,
		"loadedFiles":  st.LoadedFiles,
		"maxFrequency": st.MaxFrequency,
	}
}
