package backend

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bastiangx/suggestbox/pkg/dictionary"
	"github.com/bastiangx/suggestbox/pkg/suggest"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDictionary() *dictionary.Dictionary {
	d := dictionary.New()
	d.Add(dictionary.Entry{Word: "berlin", Frequency: 900, Type: "QUERY"})
	d.Add(dictionary.Entry{Word: "berlin wall", Frequency: 300, Type: "QUERY"})
	d.Add(dictionary.Entry{Word: "bern", Frequency: 300, Type: "QUERY"})
	d.Add(dictionary.Entry{Word: "berghain", Frequency: 5, Type: "QUERY"})
	d.Add(dictionary.Entry{Word: "berlin airport", Frequency: 500, Type: "NAVIGATION",
		Title: "BER Airport", URL: "https://ber.example.com", Description: "Official site"})
	return d
}

func TestComplete(t *testing.T) {
	c := NewCompleter(testDictionary(), CompleterOptions{})

	got := c.Complete("ber", 10)
	words := make([]string, len(got))
	for i, s := range got {
		words[i] = s.Word
	}
	assert.Equal(t, []string{"berlin", "berlin airport", "berlin wall", "bern", "berghain"}, words)

	assert.Len(t, c.Complete("ber", 2), 2)
	assert.Empty(t, c.Complete("xyz", 10))
	assert.Empty(t, c.Complete("", 10))
	assert.Empty(t, c.Complete("eee", 10))
}

func TestCompleteThresholdAndCapitals(t *testing.T) {
	c := NewCompleter(testDictionary(), CompleterOptions{MinFrequency: 10, MinFrequencyShort: 400})

	long := c.Complete("Ber", 10)
	require.NotEmpty(t, long)
	assert.Equal(t, "Berlin", long[0].Word)
	for _, s := range long {
		assert.NotEqual(t, "Berghain", s.Word)
	}

	// short prefixes use the stricter threshold
	short := c.Complete("be", 10)
	require.Len(t, short, 2)
	assert.Equal(t, "berlin", short[0].Word)
	assert.Equal(t, "berlin airport", short[1].Word)
}

func TestSuggestionSet(t *testing.T) {
	c := NewCompleter(testDictionary(), CompleterOptions{})
	set := SuggestionSet(c.Complete("berlin a", 5))

	require.Equal(t, 1, set.Len())
	require.Len(t, set.ContextData, 1)
	entry := set.ContextData[0]
	assert.Equal(t, suggest.EntryNavigation, entry.Type)
	assert.Equal(t, "BER Airport", entry.Title)
	assert.Equal(t, "https://ber.example.com", entry.URL)
}

func decodeBody(t *testing.T, resp *http.Response) suggest.SuggestionSet {
	t.Helper()
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var set suggest.SuggestionSet
	require.NoError(t, json.Unmarshal(data, &set))
	return set
}

func TestHandleSuggest(t *testing.T) {
	srv := NewServer(NewCompleter(testDictionary(), CompleterOptions{}), Options{MaxLimit: 3, DefaultLimit: 2})

	testCases := []struct {
		name  string
		path  string
		count int
	}{
		{"default limit", "/suggest?q=ber", 2},
		{"explicit limit", "/suggest?q=ber&limit=1", 1},
		{"clamped limit", "/suggest?q=ber&limit=50", 3},
		{"no match", "/suggest?q=zzz", 0},
		{"empty query", "/suggest?q=", 0},
		{"blank query", "/suggest?q=%20%20", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, tc.path, nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

			set := decodeBody(t, resp)
			assert.Len(t, set.Suggestions, tc.count)
			assert.Len(t, set.ContextData, tc.count)
		})
	}
}

func TestHandleSuggestForcedStatus(t *testing.T) {
	srv := NewServer(NewCompleter(testDictionary(), CompleterOptions{}), Options{})

	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/suggest?q=ber&status=503", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	// out of range values are ignored
	resp, err = srv.App().Test(httptest.NewRequest(http.MethodGet, "/suggest?q=ber&status=200", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHandleSuggestCORS(t *testing.T) {
	srv := NewServer(NewCompleter(testDictionary(), CompleterOptions{}), Options{AllowOrigins: "https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/suggest?q=ber", nil)
	req.Header.Set("Origin", "https://app.example.com")
	resp, err := srv.App().Test(req)
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/suggest?q=ber", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	resp, err = srv.App().Test(req)
	require.NoError(t, err)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	srv := NewServer(NewCompleter(testDictionary(), CompleterOptions{}), Options{})
	resp, err := srv.App().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, float64(5), body["words"])
}

func TestFetcherAgainstBackend(t *testing.T) {
	srv := NewServer(NewCompleter(testDictionary(), CompleterOptions{}), Options{})
	ts := httptest.NewServer(adaptor.FiberApp(srv.App()))
	defer ts.Close()

	store := suggest.NewStore(suggest.NewHTTPFetcher(suggest.FetcherOptions{}))
	err := store.GetSuggestions(t.Context(), ts.URL+"/suggest", suggest.Params("bern", suggest.ParamOptions{}))
	require.NoError(t, err)
	assert.Equal(t, []string{"bern"}, store.Suggestions())
}
