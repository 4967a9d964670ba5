package suggest

import (
	"context"
	"errors"
	"net/url"
	"sync"

	"github.com/charmbracelet/log"
)

// DefaultQueryParam carries the query term in request params.
const DefaultQueryParam = "q"

// ErrorReporter receives fatal fetch errors from Dispatch.
type ErrorReporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to ErrorReporter.
type ReporterFunc func(err error)

func (f ReporterFunc) Report(err error) { f(err) }

// Store owns the suggestion state of one search box: the current result,
// the highlighted index, the AI override, the pending request, the result
// cache and the impression ledger.
type Store struct {
	fetcher    Fetcher
	cache      *ResultCache
	ledger     *ImpressionLedger
	queryParam string

	mu         sync.Mutex
	query      string
	set        SuggestionSet
	selected   int
	ai         *AISuggestion
	cancel     context.CancelFunc
	generation uint64
}

// StoreOption customizes a Store.
type StoreOption func(*Store)

// WithQueryParam changes the param name that carries the query term.
func WithQueryParam(name string) StoreOption {
	return func(s *Store) {
		if name != "" {
			s.queryParam = name
		}
	}
}

// WithCache shares a cache between stores.
func WithCache(c *ResultCache) StoreOption {
	return func(s *Store) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithLedger shares an impression ledger between stores.
func WithLedger(l *ImpressionLedger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.ledger = l
		}
	}
}

// NewStore creates a store that fetches through f.
func NewStore(f Fetcher, opts ...StoreOption) *Store {
	s := &Store{
		fetcher:    f,
		cache:      NewResultCache(),
		ledger:     NewImpressionLedger(),
		queryParam: DefaultQueryParam,
		set:        EmptySet(),
		selected:   -1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetSuggestions updates the store for the query in params and blocks until
// the fetch settles. Superseded fetches return nil without touching state.
// Only configuration errors and fatal transport errors are returned.
func (s *Store) GetSuggestions(ctx context.Context, endpoint string, params url.Values) error {
	run, err := s.Begin(ctx, endpoint, params)
	if err != nil || run == nil {
		return err
	}
	if err := run(); !errors.Is(err, ErrSuperseded) {
		return err
	}
	return nil
}

// Dispatch is the fire-and-forget form of GetSuggestions. Configuration
// errors, mock mode, empty queries and cache hits are handled before it
// returns; a network fetch runs on its own goroutine and fatal errors go
// to reporter.
func (s *Store) Dispatch(ctx context.Context, endpoint string, params url.Values, reporter ErrorReporter) error {
	run, err := s.Begin(ctx, endpoint, params)
	if err != nil || run == nil {
		return err
	}
	go func() {
		if err := run(); err != nil && !errors.Is(err, ErrSuperseded) && reporter != nil {
			reporter.Report(err)
		}
	}()
	return nil
}

// Begin does every synchronous step: mock fixtures, the endpoint check,
// clearing on an empty query, cancelling the pending request and serving
// cache hits. It returns a non-nil run func only when a network fetch is
// needed; run blocks until the fetch settles and returns ErrSuperseded when
// its result was dropped. Callers that need ordering
// across goroutines call Begin in order and run concurrently.
func (s *Store) Begin(ctx context.Context, endpoint string, params url.Values) (func() error, error) {
	query := NormalizeQuery(params.Get(s.queryParam))

	if mode := MockModeOf(params); mode != MockNone {
		set := Fixture(mode)
		s.mu.Lock()
		s.query = query
		s.applyLocked(set)
		s.mu.Unlock()
		log.Debugf("Serving mock fixture %d for '%s'", mode, query)
		return nil, nil
	}

	if endpoint == "" {
		return nil, ErrNoEndpoint
	}

	s.mu.Lock()
	s.supersedeLocked()

	if query == "" {
		s.clearLocked()
		s.mu.Unlock()
		return nil, nil
	}

	if cached, ok := s.cache.Get(query); ok {
		s.query = query
		s.applyLocked(cached)
		s.mu.Unlock()
		log.Debugf("Cache hit for '%s'", query)
		return nil, nil
	}

	reqCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	gen := s.generation
	s.query = query
	s.mu.Unlock()

	reqParams := cloneParams(params)
	reqParams.Set(s.queryParam, query)

	return func() error {
		set, err := s.fetcher.FetchResults(reqCtx, endpoint, reqParams)
		return s.settle(gen, reqCtx, cancel, query, set, err)
	}, nil
}

// settle applies a finished fetch if it still belongs to the newest query.
func (s *Store) settle(gen uint64, reqCtx context.Context, cancel context.CancelFunc, query string, set SuggestionSet, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer cancel()

	if s.generation != gen {
		log.Debugf("Dropping superseded result for '%s'", query)
		return ErrSuperseded
	}
	s.cancel = nil
	if reqCtx.Err() != nil {
		return ErrSuperseded
	}
	if err != nil {
		s.applyLocked(EmptySet())
		log.Errorf("Fetching suggestions for '%s': %v", query, err)
		return err
	}
	s.applyLocked(set)
	s.cache.Put(query, set)
	return nil
}

// supersedeLocked cancels the pending request and invalidates its result.
func (s *Store) supersedeLocked() {
	s.generation++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *Store) clearLocked() {
	s.query = ""
	s.set = EmptySet()
	s.selected = -1
	s.ai = nil
}

// applyLocked replaces the result. A new result always drops the highlight.
func (s *Store) applyLocked(set SuggestionSet) {
	s.set = set.aligned().clone()
	s.selected = -1
}

// SetSuggestionSet replaces the current result directly.
func (s *Store) SetSuggestionSet(set SuggestionSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(set)
}

// SetAISuggestion sets or, with nil, clears the AI override.
func (s *Store) SetAISuggestion(ai *AISuggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ai == nil {
		s.ai = nil
		return
	}
	cp := *ai
	s.ai = &cp
}

// Cancel aborts the pending request, if any.
func (s *Store) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersedeLocked()
}

// Pending reports whether a fetch is in flight.
func (s *Store) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// Query returns the query the current state belongs to.
func (s *Store) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Suggestions returns a copy of the current suggestions.
func (s *Store) Suggestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.clone().Suggestions
}

// ContextData returns a copy of the current context entries.
func (s *Store) ContextData() []*ContextEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.clone().ContextData
}

// Result returns a copy of the current SuggestionSet.
func (s *Store) Result() SuggestionSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.clone()
}

// AISuggestion returns a copy of the override, or nil.
func (s *Store) AISuggestion() *AISuggestion {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ai == nil {
		return nil
	}
	cp := *s.ai
	return &cp
}

// Cache exposes the result cache.
func (s *Store) Cache() *ResultCache { return s.cache }

// Ledger exposes the impression ledger.
func (s *Store) Ledger() *ImpressionLedger { return s.ledger }

// IsCached reports whether query has a cached result.
func (s *Store) IsCached(query string) bool {
	return s.cache.IsCached(NormalizeQuery(query))
}

// ReportImpressions calls fire once for every impression URL of the first
// rendered rows of the current result that was not reported before. A
// negative rendered count means every row is shown.
func (s *Store) ReportImpressions(rendered int, fire func(url string)) int {
	s.mu.Lock()
	entries := s.set.clone().ContextData
	s.mu.Unlock()
	if rendered >= 0 && rendered < len(entries) {
		entries = entries[:rendered]
	}

	fired := 0
	for _, e := range entries {
		if e == nil || e.ImpressionURL == "" {
			continue
		}
		if s.ledger.markIfNew(e.ImpressionURL) {
			fired++
			if fire != nil {
				fire(e.ImpressionURL)
			}
		}
	}
	return fired
}

// MarkImpression records url in the ledger and reports whether it was new.
func (s *Store) MarkImpression(url string) bool {
	if url == "" {
		return false
	}
	return s.ledger.markIfNew(url)
}

// Snapshot is a point in time copy of the store for rendering.
type Snapshot struct {
	Query         string
	Result        SuggestionSet
	SelectedIndex int
	AI            *AISuggestion
	Pending       bool
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Query:         s.query,
		Result:        s.set.clone(),
		SelectedIndex: s.selected,
		Pending:       s.cancel != nil,
	}
	if s.ai != nil {
		cp := *s.ai
		snap.AI = &cp
	}
	return snap
}

// Stats merges cache and ledger counters.
func (s *Store) Stats() map[string]int {
	stats := s.cache.Stats()
	stats["impressionsSent"] = s.ledger.Len()
	s.mu.Lock()
	stats["suggestions"] = s.set.Len()
	s.mu.Unlock()
	return stats
}

func cloneParams(params url.Values) url.Values {
	out := make(url.Values, len(params))
	for k, v := range params {
		out[k] = append([]string(nil), v...)
	}
	return out
}
