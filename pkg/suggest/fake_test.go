package suggest

import (
	"context"
	"net/url"
	"sync"
)

const testEndpoint = "http://suggest.test/v1"

var berlinSet = SuggestionSet{
	Suggestions: []string{"berlin", "berlin wall"},
	ContextData: []*ContextEntry{{Type: EntryQuery}, {Type: EntryNavigation, Title: "Wall", URL: "https://wall.example.com"}},
}

var bernSet = SuggestionSet{
	Suggestions: []string{"bern"},
	ContextData: []*ContextEntry{{Type: EntryQuery}},
}

// stubFetcher answers immediately from fixed tables and counts calls per query.
type stubFetcher struct {
	mu      sync.Mutex
	results map[string]SuggestionSet
	errs    map[string]error
	calls   map[string]int
}

func newStubFetcher() *stubFetcher {
	return &stubFetcher{
		results: map[string]SuggestionSet{"berlin": berlinSet, "bern": bernSet},
		errs:    map[string]error{},
		calls:   map[string]int{},
	}
}

func (f *stubFetcher) FetchResults(ctx context.Context, endpoint string, params url.Values) (SuggestionSet, error) {
	q := params.Get(DefaultQueryParam)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[q]++
	if err, ok := f.errs[q]; ok {
		return EmptySet(), err
	}
	if set, ok := f.results[q]; ok {
		return set, nil
	}
	return EmptySet(), nil
}

func (f *stubFetcher) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *stubFetcher) count(q string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[q]
}

type fetchReply struct {
	set SuggestionSet
	err error
}

// gatedCall is one fetch waiting for the test to answer it.
type gatedCall struct {
	query string
	ctx   context.Context
	reply chan fetchReply
}

// gatedFetcher blocks every fetch until the test sends a reply. It ignores
// cancellation the way a slow server that still answers would.
type gatedFetcher struct {
	started chan *gatedCall
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{started: make(chan *gatedCall, 16)}
}

func (f *gatedFetcher) FetchResults(ctx context.Context, endpoint string, params url.Values) (SuggestionSet, error) {
	c := &gatedCall{query: params.Get(DefaultQueryParam), ctx: ctx, reply: make(chan fetchReply, 1)}
	f.started <- c
	r := <-c.reply
	return r.set, r.err
}

func queryParams(q string) url.Values {
	return url.Values{DefaultQueryParam: []string{q}}
}

// runAsync runs a fetch remainder on its own goroutine.
func runAsync(run func() error) <-chan error {
	done := make(chan error, 1)
	go func() { done <- run() }()
	return done
}
