package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// maxBodyBytes caps how much of a suggestion response is read.
const maxBodyBytes = 1 << 20

var (
	// ErrNoEndpoint is returned when a fetch is attempted without an endpoint.
	ErrNoEndpoint = errors.New("suggest: no endpoint configured")
	// ErrFetch wraps transport failures that are not cancellations.
	ErrFetch = errors.New("suggest: fetch failed")
	// ErrSuperseded is returned by a Begin run func whose result was dropped
	// because a newer request or a cancellation took over.
	ErrSuperseded = errors.New("suggest: request superseded")
)

// DefaultBenignErrors are transport error messages treated like a cancellation.
var DefaultBenignErrors = []string{"load failed"}

// Fetcher retrieves a SuggestionSet for the given params.
// Expected failures resolve to an empty set and a nil error.
type Fetcher interface {
	FetchResults(ctx context.Context, endpoint string, params url.Values) (SuggestionSet, error)
}

// FetcherOptions configures an HTTPFetcher.
type FetcherOptions struct {
	Client       *http.Client
	Headers      map[string]string
	BenignErrors []string
	Timeout      time.Duration
}

// HTTPFetcher issues credentialed GET requests against a suggestion endpoint.
type HTTPFetcher struct {
	client  *http.Client
	headers map[string]string
	benign  []string
}

// NewHTTPFetcher builds a fetcher. Without a client one is created with a
// cookie jar so cookies set by the endpoint are sent back.
func NewHTTPFetcher(opts FetcherOptions) *HTTPFetcher {
	client := opts.Client
	if client == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			log.Warnf("Failed to create cookie jar: %v", err)
		}
		client = &http.Client{Jar: jar, Timeout: opts.Timeout}
	}
	benign := opts.BenignErrors
	if benign == nil {
		benign = DefaultBenignErrors
	}
	lowered := make([]string, 0, len(benign))
	for _, b := range benign {
		if b = strings.ToLower(strings.TrimSpace(b)); b != "" {
			lowered = append(lowered, b)
		}
	}
	return &HTTPFetcher{client: client, headers: opts.Headers, benign: lowered}
}

// BuildURL joins endpoint and the encoded params.
func BuildURL(endpoint string, params url.Values) string {
	enc := params.Encode()
	if enc == "" {
		return endpoint
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + enc
}

// FetchResults implements Fetcher.
func (f *HTTPFetcher) FetchResults(ctx context.Context, endpoint string, params url.Values) (SuggestionSet, error) {
	if endpoint == "" {
		return EmptySet(), ErrNoEndpoint
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, BuildURL(endpoint, params), nil)
	if err != nil {
		return EmptySet(), fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if f.IsExpectedError(ctx, err) {
			log.Debugf("Suggestion request ended quietly: %v", err)
			return EmptySet(), nil
		}
		return EmptySet(), fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Debugf("Suggestion endpoint answered %d", resp.StatusCode)
		return EmptySet(), nil
	}
	if !isJSON(resp.Header.Get("Content-Type")) {
		log.Debugf("Suggestion endpoint sent non JSON content: %q", resp.Header.Get("Content-Type"))
		return EmptySet(), nil
	}

	return decodeSet(io.LimitReader(resp.Body, maxBodyBytes)), nil
}

// IsExpectedError reports whether err is a cancellation or one of the
// benign transport failures.
func (f *HTTPFetcher) IsExpectedError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, b := range f.benign {
		if strings.Contains(msg, b) {
			return true
		}
	}
	return false
}

// Beacon fires a GET at url and discards the body. Used for impression pixels.
func (f *HTTPFetcher) Beacon(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	return nil
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// decodeSet parses a wire body. Anything malformed becomes an empty set.
func decodeSet(r io.Reader) SuggestionSet {
	var body struct {
		Suggestions []string        `json:"suggestions"`
		ContextData []*ContextEntry `json:"contextData"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		log.Debugf("Malformed suggestion body: %v", err)
		return EmptySet()
	}
	return SuggestionSet{Suggestions: body.Suggestions, ContextData: body.ContextData}.aligned()
}
