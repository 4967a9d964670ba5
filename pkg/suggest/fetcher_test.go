package suggest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonHandler(status int, contentType, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestHTTPFetcherResponses(t *testing.T) {
	testCases := []struct {
		name        string
		status      int
		contentType string
		body        string
		want        []string
		wantContext int
	}{
		{"ok", 200, "application/json", `{"suggestions":["a","b"],"contextData":[{"type":"QUERY"},null]}`, []string{"a", "b"}, 2},
		{"charset", 200, "application/json; charset=utf-8", `{"suggestions":["a"],"contextData":[{"type":"QUERY"}]}`, []string{"a"}, 1},
		{"vendor json", 200, "application/vnd.suggest+json", `{"suggestions":["a"]}`, []string{"a"}, 1},
		{"missing context", 200, "application/json", `{"suggestions":["a","b","c"]}`, []string{"a", "b", "c"}, 3},
		{"extra context", 200, "application/json", `{"suggestions":["a"],"contextData":[{},{}]}`, []string{"a"}, 1},
		{"server error", 503, "application/json", `{"suggestions":["a"]}`, []string{}, 0},
		{"not found", 404, "text/plain", "nope", []string{}, 0},
		{"html", 200, "text/html", "<html></html>", []string{}, 0},
		{"no content type", 200, "", `{"suggestions":["a"]}`, []string{}, 0},
		{"malformed", 200, "application/json", `{"suggestions":`, []string{}, 0},
		{"wrong shape", 200, "application/json", `{"suggestions":"a"}`, []string{}, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ts := httptest.NewServer(jsonHandler(tc.status, tc.contentType, tc.body))
			defer ts.Close()

			f := NewHTTPFetcher(FetcherOptions{})
			set, err := f.FetchResults(context.Background(), ts.URL, queryParams("a"))
			require.NoError(t, err)
			assert.Equal(t, tc.want, set.Suggestions)
			assert.Len(t, set.ContextData, tc.wantContext)
		})
	}
}

func TestHTTPFetcherRequest(t *testing.T) {
	var got *http.Request
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "abc", Path: "/"})
		jsonHandler(200, "application/json", `{"suggestions":[]}`)(w, r)
	}))
	defer ts.Close()

	f := NewHTTPFetcher(FetcherOptions{Headers: map[string]string{"X-Client": "suggestbox"}})
	p := url.Values{"q": []string{"new york"}, "limit": []string{"8"}}

	_, err := f.FetchResults(context.Background(), ts.URL+"/suggest", p)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/suggest", got.URL.Path)
	assert.Equal(t, "new york", got.URL.Query().Get("q"))
	assert.Equal(t, "8", got.URL.Query().Get("limit"))
	assert.Equal(t, "suggestbox", got.Header.Get("X-Client"))
	assert.Empty(t, got.Header.Get("Cookie"))

	// cookies set by the endpoint go back on the next request
	_, err = f.FetchResults(context.Background(), ts.URL+"/suggest", p)
	require.NoError(t, err)
	assert.Contains(t, got.Header.Get("Cookie"), "session=abc")
}

func TestHTTPFetcherCancellation(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	f := NewHTTPFetcher(FetcherOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	set, err := f.FetchResults(ctx, ts.URL, queryParams("a"))
	require.NoError(t, err)
	assert.True(t, set.IsEmpty())
}

type failingTransport struct{ err error }

func (ft failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, ft.err
}

func TestHTTPFetcherTransportErrors(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		benign []string
		fatal  bool
	}{
		{"load failed", errors.New("Load failed"), nil, false},
		{"failed to fetch", errors.New("Failed to fetch"), nil, true},
		{"canceled", context.Canceled, nil, false},
		{"custom benign", errors.New("NetworkError when attempting to fetch resource"), []string{"networkerror"}, false},
		{"benign list replaced", errors.New("Load failed"), []string{"networkerror"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewHTTPFetcher(FetcherOptions{
				Client:       &http.Client{Transport: failingTransport{err: tc.err}},
				BenignErrors: tc.benign,
			})
			set, err := f.FetchResults(context.Background(), "http://suggest.test", queryParams("a"))
			assert.True(t, set.IsEmpty())
			if tc.fatal {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrFetch)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestIsExpectedError(t *testing.T) {
	f := NewHTTPFetcher(FetcherOptions{})
	live := context.Background()
	done, cancel := context.WithCancel(context.Background())
	cancel()

	testCases := []struct {
		name     string
		ctx      context.Context
		err      error
		expected bool
	}{
		{"nil", live, nil, false},
		{"canceled", live, context.Canceled, true},
		{"own ctx done", done, errors.New("connection reset"), true},
		{"client timeout", live, context.DeadlineExceeded, false},
		{"benign message", nil, errors.New("TypeError: Load failed"), true},
		{"real failure", live, errors.New("Failed to fetch"), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, f.IsExpectedError(tc.ctx, tc.err))
		})
	}
}

func TestHTTPFetcherNoEndpoint(t *testing.T) {
	f := NewHTTPFetcher(FetcherOptions{})
	_, err := f.FetchResults(context.Background(), "", queryParams("a"))
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestStoreWithHTTPFetcher(t *testing.T) {
	hits := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		jsonHandler(200, "application/json", `{"suggestions":["berlin"],"contextData":[{"type":"QUERY"}]}`)(w, r)
	}))
	defer ts.Close()

	s := NewStore(NewHTTPFetcher(FetcherOptions{}))
	ctx := context.Background()
	require.NoError(t, s.GetSuggestions(ctx, ts.URL, queryParams("berlin")))
	require.NoError(t, s.GetSuggestions(ctx, ts.URL, queryParams("berlin")))

	assert.Equal(t, 1, hits)
	assert.Equal(t, []string{"berlin"}, s.Suggestions())
}

func TestBuildURL(t *testing.T) {
	p := url.Values{"q": []string{"a b"}}
	assert.Equal(t, "http://x/s?q=a+b", BuildURL("http://x/s", p))
	assert.Equal(t, "http://x/s?v=1&q=a+b", BuildURL("http://x/s?v=1", p))
	assert.Equal(t, "http://x/s", BuildURL("http://x/s", url.Values{}))
}

func TestBeacon(t *testing.T) {
	got := make(chan string, 1)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got <- r.URL.RawQuery
	}))
	defer ts.Close()

	f := NewHTTPFetcher(FetcherOptions{})
	require.NoError(t, f.Beacon(context.Background(), ts.URL+"/imp?id=1"))
	assert.Equal(t, "id=1", <-got)
}
