/*
Package server implements msgpack IPC around one suggestion store.

A host (editor plugin, launcher, web view bridge) writes msgpack encoded
requests to stdin and reads msgpack encoded responses from stdout. Every
request carries an ID that is echoed back. Messages are a plain stream of
msgpack values with no framing.

Suggest requests run concurrently so a newer query can cancel an older one.
The older request is still answered, flagged as stale and without suggestions:

	{"id": "1", "a": "suggest", "q": "ber"}
	{"id": "2", "a": "suggest", "q": "berlin"}

	{"id": "1", "st": true, "s": [], "c": 0}
	{"id": "2", "s": [{"w": "berlin", "r": 1, "x": {"type": "QUERY"}}], "c": 1, "i": -1}

Navigation and impressions are answered in order:

	{"id": "3", "a": "nav", "k": "down"}
	{"id": "4", "a": "impression", "u": "https://imp.example.com/p?id=1"}

# Actions

suggest, nav, ai, impression, stats and health. Errors are answered with
CompletionError; fatal fetch errors use code 502, bad requests 400.
*/
package server

import "github.com/bastiangx/suggestbox/pkg/suggest"

// Request is the union of all request shapes, keyed by Action.
type Request struct {
	ID     string                `msgpack:"id"`
	Action string                `msgpack:"a"`
	Query  string                `msgpack:"q,omitempty"`
	Mocked string                `msgpack:"m,omitempty"`
	Key    string                `msgpack:"k,omitempty"`
	URL    string                `msgpack:"u,omitempty"`
	AI     *suggest.AISuggestion `msgpack:"ai,omitempty"`
}

// CompletionSuggestion - one suggestion with its rank and context
type CompletionSuggestion struct {
	Word    string                `msgpack:"w"`
	Rank    uint16                `msgpack:"r"`
	Context *suggest.ContextEntry `msgpack:"x,omitempty"`
}

// CompletionResponse - suggest response
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	Selected    int                    `msgpack:"i"`
	Stale       bool                   `msgpack:"st,omitempty"`
	TimeTaken   int64                  `msgpack:"t"`
}

// SelectionResponse - nav and ai response
type SelectionResponse struct {
	ID         string                `msgpack:"id"`
	Index      int                   `msgpack:"i"`
	Selected   bool                  `msgpack:"ok"`
	Kind       string                `msgpack:"kind,omitempty"`
	Text       string                `msgpack:"text,omitempty"`
	Context    *suggest.ContextEntry `msgpack:"x,omitempty"`
	AI         *suggest.AISuggestion `msgpack:"ai,omitempty"`
	Descendant string                `msgpack:"d"`
	Expanded   bool                  `msgpack:"e"`
}

// ImpressionResponse - impression response
type ImpressionResponse struct {
	ID   string `msgpack:"id"`
	Sent bool   `msgpack:"sent"`
}

// StatsResponse - stats response
type StatsResponse struct {
	ID    string         `msgpack:"id"`
	Stats map[string]int `msgpack:"stats"`
}

// StatusResponse - ready and health
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// CompletionError holds basic error information for failed requests
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
