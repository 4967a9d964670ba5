// Package suggest is the autocomplete core: it turns queries into cancellable,
// cached fetches and keeps the keyboard selection state a search box renders from.
//
// A Store owns one pending request at a time. Every new query cancels the
// previous request before anything else happens, so a late response for an
// older query is never applied. Results that contain suggestions are cached
// per trimmed query for the lifetime of the Store.
package suggest

import (
	"context"
	"net/url"
)

// ISuggester is what the driving adapters need from a Store.
type ISuggester interface {
	// Begin runs the synchronous part of a fetch and returns the blocking remainder
	Begin(ctx context.Context, endpoint string, params url.Values) (func() error, error)

	// GetSuggestions fetches or serves from cache and updates state
	GetSuggestions(ctx context.Context, endpoint string, params url.Values) error

	// Dispatch is the non blocking form of GetSuggestions
	Dispatch(ctx context.Context, endpoint string, params url.Values, reporter ErrorReporter) error

	// MoveSelection applies one navigation step and returns the new index
	MoveSelection(dir Direction) int

	// SelectedSuggestion returns the highlighted entry, false when none
	SelectedSuggestion() (Selection, bool)

	// SetAISuggestion sets or clears the AI override
	SetAISuggestion(ai *AISuggestion)

	// MarkImpression records one impression URL, true when it was new
	MarkImpression(url string) bool

	// ReportImpressions fires each unseen impression URL of the rendered rows once
	ReportImpressions(rendered int, fire func(url string)) int

	// Snapshot returns the state to render
	Snapshot() Snapshot

	ActiveDescendant() string
	Expanded() bool
	Stats() map[string]int
}

var _ ISuggester = (*Store)(nil)
