// Package tui is a terminal search box driving a suggestion store.
//
// Keystrokes are debounced with tea.Tick. Each tick carries a sequence number
// and only the newest one starts a fetch. The store call itself is made from
// Update so that requests reach the store in typing order; only the network
// part runs inside a tea.Cmd.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bastiangx/suggestbox/internal/utils"
	"github.com/bastiangx/suggestbox/pkg/suggest"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
)

// Options configures the search box.
type Options struct {
	Endpoint    string
	Params      suggest.ParamOptions
	Debounce    time.Duration
	MaxRows     int
	ShowContext bool
	// Beacon fires an impression pixel. Impressions are only recorded when nil.
	Beacon func(ctx context.Context, url string) error
}

// Model is the bubbletea model of the search box.
type Model struct {
	ctx    context.Context
	store  suggest.ISuggester
	opts   Options
	styles Styles

	input  textinput.Model
	seq    int
	last   string
	snap   suggest.Snapshot
	err    error
	chosen *suggest.Selection
	width  int
}

// New creates a search box bound to store.
func New(ctx context.Context, store suggest.ISuggester, opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "search..."
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Width = 60
	ti.Focus()

	if opts.MaxRows <= 0 {
		opts.MaxRows = 10
	}

	return Model{
		ctx:    ctx,
		store:  store,
		opts:   opts,
		styles: DefaultStyles(),
		input:  ti,
		snap:   store.Snapshot(),
	}
}

// Chosen returns the selection accepted with Enter, nil when the box was left
// without one.
func (m Model) Chosen() *suggest.Selection {
	return m.chosen
}

// Err returns the last fatal fetch error.
func (m Model) Err() error {
	return m.err
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > 4 {
			m.input.Width = msg.Width - 4
		}
		return m, nil

	case debounceMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m.fetch(msg.query)

	case resultMsg:
		if msg.err != nil && !errors.Is(msg.err, suggest.ErrSuperseded) {
			m.err = msg.err
		}
		m.snap = m.store.Snapshot()
		return m, m.reportImpressions()

	case beaconMsg:
		if msg.err != nil {
			log.Debugf("Impression beacon failed for %s: %v", msg.url, msg.err)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "up", "ctrl+p":
		m.store.MoveSelection(suggest.Up)
		m.snap = m.store.Snapshot()
		return m, nil
	case "down", "ctrl+n":
		// nothing is drawn to land on
		if !m.aiSlotVisible() {
			return m, nil
		}
		m.store.MoveSelection(suggest.Down)
		m.snap = m.store.Snapshot()
		return m, nil
	case "esc":
		if m.snap.SelectedIndex < 0 {
			return m, tea.Quit
		}
		m.store.MoveSelection(suggest.Escape)
		m.snap = m.store.Snapshot()
		return m, nil
	case "enter":
		if sel, ok := m.store.SelectedSuggestion(); ok {
			m.chosen = &sel
		} else if q := suggest.NormalizeQuery(m.input.Value()); q != "" {
			m.chosen = &suggest.Selection{Kind: suggest.SelectionRegular, Index: -1, Text: q}
		}
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	value := m.input.Value()
	if value == m.last {
		return m, cmd
	}
	m.last = value
	m.seq++

	if m.opts.Debounce <= 0 {
		next, fetch := m.fetch(value)
		return next, tea.Batch(cmd, fetch)
	}
	seq := m.seq
	tick := tea.Tick(m.opts.Debounce, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq, query: value}
	})
	return m, tea.Batch(cmd, tick)
}

// fetch hands query to the store. Sync outcomes (mock, empty query, cache
// hit) are rendered right away; a network fetch finishes in a command.
func (m Model) fetch(query string) (Model, tea.Cmd) {
	params := suggest.Params(suggest.NormalizeQuery(query), m.opts.Params)
	run, err := m.store.Begin(m.ctx, m.opts.Endpoint, params)
	if err != nil {
		m.err = err
		log.Errorf("Requesting suggestions: %v", err)
		return m, nil
	}
	m.err = nil
	m.snap = m.store.Snapshot()
	if run == nil {
		return m, m.reportImpressions()
	}
	return m, func() tea.Msg {
		return resultMsg{query: query, err: run()}
	}
}

// reportImpressions fires a beacon for every rendered impression URL not
// sent yet.
func (m Model) reportImpressions() tea.Cmd {
	rows := m.visibleRows()
	if m.opts.Beacon == nil {
		m.store.ReportImpressions(rows, nil)
		return nil
	}
	var cmds []tea.Cmd
	beacon := m.opts.Beacon
	ctx := m.ctx
	m.store.ReportImpressions(rows, func(url string) {
		cmds = append(cmds, func() tea.Msg {
			return beaconMsg{url: url, err: beacon(ctx, url)}
		})
	})
	return tea.Batch(cmds...)
}

// View renders the input, the suggestion rows and the AI slot.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Prompt.Render("SuggestBox"))
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	set := m.snap.Result
	for i := 0; i < m.visibleRows(); i++ {
		b.WriteString(m.renderRow(i, set.Suggestions[i], set.ContextData[i]))
		b.WriteString("\n")
	}
	if m.aiSlotVisible() {
		b.WriteString(m.renderAISlot(set.Len()))
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	case m.snap.Pending:
		b.WriteString(m.styles.Dim.Render("  ..."))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Help.Render("↑/↓ select • enter accept • esc clear/quit • ctrl+c quit"))
	return b.String()
}

func (m Model) visibleRows() int {
	return min(m.snap.Result.Len(), m.opts.MaxRows)
}

// aiSlotVisible reports whether the AI row is drawn. It follows any
// non-empty query, even one without suggestions.
func (m Model) aiSlotVisible() bool {
	return m.snap.Result.Len() > 0 || m.snap.Query != ""
}

func (m Model) renderRow(i int, text string, entry *suggest.ContextEntry) string {
	line := text
	if m.opts.ShowContext && entry != nil {
		if entry.Type == suggest.EntryNavigation {
			detail := entry.URL
			if entry.Title != "" {
				detail = entry.Title + " " + entry.URL
			}
			line += "  " + m.styles.Dim.Render(utils.Truncate(detail, 60))
		}
		if entry.Provider != "" {
			line += "  " + m.styles.Sponsored.Render("sponsored")
		}
	}
	if i == m.snap.SelectedIndex {
		return m.styles.Selected.Render(line)
	}
	return m.styles.Row.Render(line)
}

func (m Model) renderAISlot(slot int) string {
	label := fmt.Sprintf("✦ Ask AI about %q", m.snap.Query)
	if m.snap.AI != nil && m.snap.AI.Title != "" {
		label = "✦ " + m.snap.AI.Title
	}
	if m.snap.SelectedIndex == slot {
		return m.styles.Selected.Render(m.styles.AI.Render(label))
	}
	return m.styles.Row.Render(m.styles.AI.Render(label))
}
