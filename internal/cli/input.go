// Package cli handles line based input against a suggestion store for DBG and testing
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/bastiangx/suggestbox/internal/utils"
	"github.com/bastiangx/suggestbox/pkg/suggest"
	"github.com/charmbracelet/log"
)

// InputHandler reads one query per line and prints the store state.
// Lines starting with ':' are commands: :up, :down, :esc, :sel, :stats.
type InputHandler struct {
	store        suggest.ISuggester
	endpoint     string
	params       suggest.ParamOptions
	showContext  bool
	in           io.Reader
	out          io.Writer
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(store suggest.ISuggester, endpoint string, params suggest.ParamOptions, showContext bool, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{
		store:       store,
		endpoint:    endpoint,
		params:      params,
		showContext: showContext,
		in:          in,
		out:         out,
	}
}

// Start begins the interface loop. It returns nil on EOF.
func (h *InputHandler) Start(ctx context.Context) error {
	fmt.Fprintln(h.out, "SuggestBox CLI [BETA]")
	fmt.Fprintln(h.out, "type a query and press Enter, :down/:up/:esc to move, :sel to show the selection (Ctrl+D to exit):")
	scanner := bufio.NewScanner(h.in)

	for {
		fmt.Fprint(h.out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return nil
		}
		h.handleInput(ctx, scanner.Text())
	}
}

func (h *InputHandler) handleInput(ctx context.Context, line string) {
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, ":") {
		h.handleCommand(strings.TrimPrefix(trimmed, ":"))
		return
	}

	h.requestCount++
	start := time.Now()
	err := h.store.GetSuggestions(ctx, h.endpoint, suggest.Params(trimmed, h.params))
	elapsed := time.Since(start)
	if err != nil {
		log.Errorf("Fetching suggestions: %v", err)
		return
	}
	log.Debugf("Took [ %v ] for query '%s'", elapsed, trimmed)
	h.printSuggestions()
}

func (h *InputHandler) handleCommand(cmd string) {
	name, _, _ := strings.Cut(cmd, " ")
	switch name {
	case "sel":
		h.printSelection()
	case "stats":
		stats := h.store.Stats()
		stats["requests"] = h.requestCount
		for _, k := range []string{"requests", "cachedQueries", "cacheHits", "cacheMisses", "impressionsSent", "suggestions"} {
			fmt.Fprintf(h.out, "%-16s %8s\n", k, utils.FormatWithCommas(stats[k]))
		}
	default:
		dir, ok := suggest.ParseDirection(name)
		if !ok {
			log.Warnf("Unknown command: ':%s'", name)
			return
		}
		h.store.MoveSelection(dir)
		h.printSuggestions()
	}
}

func (h *InputHandler) printSuggestions() {
	snap := h.store.Snapshot()
	if snap.Result.IsEmpty() {
		if snap.Query != "" {
			log.Warnf("No suggestions found for query: '%s'", snap.Query)
		}
		return
	}

	fmt.Fprintf(h.out, "Found %d suggestions for '%s':\n", snap.Result.Len(), snap.Query)
	for i, s := range snap.Result.Suggestions {
		marker := " "
		if i == snap.SelectedIndex {
			marker = ">"
		}
		line := fmt.Sprintf("%s%2d. %s", marker, i+1, s)
		if e := snap.Result.ContextData[i]; h.showContext && e != nil && e.Type == suggest.EntryNavigation {
			line += "  (" + utils.Truncate(e.URL, 50) + ")"
		}
		fmt.Fprintln(h.out, line)
	}
	marker := " "
	if snap.SelectedIndex == snap.Result.Len() {
		marker = ">"
	}
	fmt.Fprintf(h.out, "%s  *  ask AI about '%s'\n", marker, snap.Query)
}

func (h *InputHandler) printSelection() {
	sel, ok := h.store.SelectedSuggestion()
	if !ok {
		fmt.Fprintln(h.out, "nothing selected")
		return
	}
	switch sel.Kind {
	case suggest.SelectionAIOverride:
		fmt.Fprintf(h.out, "ai: %s %s\n", sel.Text, sel.AI.URL)
	case suggest.SelectionAISlot:
		fmt.Fprintf(h.out, "ai slot: %s\n", sel.Text)
	default:
		fmt.Fprintf(h.out, "%d: %s\n", sel.Index, sel.Text)
	}
}
