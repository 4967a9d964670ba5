package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/bastiangx/suggestbox/internal/utils"
	"github.com/bastiangx/suggestbox/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles msgpack IPC for one suggestion store
type Server struct {
	store    suggest.ISuggester
	endpoint string
	params   suggest.ParamOptions

	decoder *msgpack.Decoder
	writer  io.Writer
	writeMu sync.Mutex
	wg      sync.WaitGroup

	requestCount int
}

// NewServer creates a server reading requests from r and writing responses to w
func NewServer(store suggest.ISuggester, endpoint string, params suggest.ParamOptions, r io.Reader, w io.Writer) *Server {
	return &Server{
		store:    store,
		endpoint: endpoint,
		params:   params,
		decoder:  msgpack.NewDecoder(bufio.NewReader(r)),
		writer:   w,
	}
}

// Start processes requests until EOF or ctx is done. In flight suggest
// requests are answered before it returns.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting IPC server.")
	defer s.wg.Wait()

	s.send(StatusResponse{Status: "ready"})

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		var req Request
		if err := s.decoder.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug("Client disconnected (EOF)")
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			s.sendError("", "invalid msgpack request", 400)
			return err
		}
		s.requestCount++
		s.handleRequest(ctx, req)
	}
}

// handleRequest routes one request by action
func (s *Server) handleRequest(ctx context.Context, req Request) {
	switch req.Action {
	case "suggest":
		s.handleSuggest(ctx, req)
	case "nav":
		s.handleNav(req)
	case "ai":
		s.store.SetAISuggestion(req.AI)
		s.sendSelection(req.ID)
	case "impression":
		if req.URL == "" {
			s.sendError(req.ID, "missing 'u' parameter", 400)
			return
		}
		s.send(ImpressionResponse{ID: req.ID, Sent: s.store.MarkImpression(req.URL)})
	case "stats":
		stats := s.store.Stats()
		stats["requests"] = s.requestCount
		s.send(StatsResponse{ID: req.ID, Stats: stats})
	case "health":
		s.send(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("unknown action: %s", req.Action), 400)
	}
}

// handleSuggest starts one suggest request in order and finishes a network
// fetch on its own goroutine, so the next request can supersede it.
func (s *Server) handleSuggest(ctx context.Context, req Request) {
	opts := s.params
	if req.Mocked != "" {
		opts.Mocked = req.Mocked
	}
	query := suggest.NormalizeQuery(req.Query)

	start := time.Now()
	run, err := s.store.Begin(ctx, s.endpoint, suggest.Params(query, opts))
	if err != nil || run == nil {
		s.answerSuggest(req.ID, query, start, err)
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.answerSuggest(req.ID, query, start, run())
	}()
}

// answerSuggest reports the resulting state, or a stale marker when the
// fetch was superseded or a newer query took over meanwhile.
func (s *Server) answerSuggest(id, query string, start time.Time, err error) {
	elapsed := time.Since(start)
	if errors.Is(err, suggest.ErrSuperseded) {
		s.sendStale(id, elapsed)
		return
	}
	if err != nil {
		code := 502
		if errors.Is(err, suggest.ErrNoEndpoint) {
			code = 500
		}
		s.sendError(id, err.Error(), code)
		return
	}

	snap := s.store.Snapshot()
	if snap.Query != query {
		s.sendStale(id, elapsed)
		return
	}

	ranks := utils.CreateRankList(snap.Result.Len())
	items := make([]CompletionSuggestion, snap.Result.Len())
	for i, w := range snap.Result.Suggestions {
		items[i] = CompletionSuggestion{Word: w, Rank: ranks[i], Context: snap.Result.ContextData[i]}
	}
	s.send(CompletionResponse{
		ID:          id,
		Suggestions: items,
		Count:       len(items),
		Selected:    snap.SelectedIndex,
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) sendStale(id string, elapsed time.Duration) {
	s.send(CompletionResponse{
		ID:          id,
		Suggestions: []CompletionSuggestion{},
		Selected:    -1,
		Stale:       true,
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (s *Server) handleNav(req Request) {
	dir, ok := suggest.ParseDirection(req.Key)
	if !ok {
		s.sendError(req.ID, fmt.Sprintf("unknown key: %s", req.Key), 400)
		return
	}
	s.store.MoveSelection(dir)
	s.sendSelection(req.ID)
}

func (s *Server) sendSelection(id string) {
	resp := SelectionResponse{
		ID:         id,
		Index:      -1,
		Descendant: s.store.ActiveDescendant(),
		Expanded:   s.store.Expanded(),
	}
	if sel, ok := s.store.SelectedSuggestion(); ok {
		resp.Index = sel.Index
		resp.Selected = true
		resp.Kind = kindName(sel.Kind)
		resp.Text = sel.Text
		resp.Context = sel.Context
		resp.AI = sel.AI
	}
	s.send(resp)
}

func kindName(k suggest.SelectionKind) string {
	switch k {
	case suggest.SelectionAISlot:
		return "ai_slot"
	case suggest.SelectionAIOverride:
		return "ai"
	default:
		return "suggestion"
	}
}

// send marshals the response and writes it to the server's writer
func (s *Server) send(response any) {
	data, err := msgpack.Marshal(response)
	if err != nil {
		log.Errorf("Marshaling response: %v", err)
		return
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if _, err := s.writer.Write(data); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.send(CompletionError{ID: id, Error: message, Code: code})
}
