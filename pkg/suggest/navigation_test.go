package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoveSelection(t *testing.T) {
	// berlinSet has two suggestions, the AI slot sits at index 2
	testCases := []struct {
		name  string
		steps []Direction
		want  int
	}{
		{"no steps", nil, -1},
		{"up floors at -1", []Direction{Up, Up}, -1},
		{"down once", []Direction{Down}, 0},
		{"down to ai slot", []Direction{Down, Down, Down}, 2},
		{"down ceils at ai slot", []Direction{Down, Down, Down, Down, Down}, 2},
		{"no wraparound from top", []Direction{Down, Up, Up}, -1},
		{"escape resets", []Direction{Down, Down, Escape}, -1},
		{"up from ai slot", []Direction{Down, Down, Down, Up}, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewStore(newStubFetcher())
			s.SetSuggestionSet(berlinSet)
			got := -1
			for _, d := range tc.steps {
				got = s.MoveSelection(d)
			}
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.want, s.SelectedIndex())
		})
	}
}

func TestSelectedSuggestion(t *testing.T) {
	s := NewStore(newStubFetcher())
	s.mu.Lock()
	s.query = "berlin"
	s.mu.Unlock()
	s.SetSuggestionSet(berlinSet)

	_, ok := s.SelectedSuggestion()
	assert.False(t, ok)

	s.MoveSelection(Down)
	sel, ok := s.SelectedSuggestion()
	require.True(t, ok)
	assert.Equal(t, SelectionRegular, sel.Kind)
	assert.Equal(t, "berlin", sel.Text)
	assert.Equal(t, EntryQuery, sel.Context.Type)

	s.MoveSelection(Down)
	sel, ok = s.SelectedSuggestion()
	require.True(t, ok)
	assert.Equal(t, "https://wall.example.com", sel.Context.URL)

	s.MoveSelection(Down)
	sel, ok = s.SelectedSuggestion()
	require.True(t, ok)
	assert.Equal(t, SelectionAISlot, sel.Kind)
	assert.Equal(t, 2, sel.Index)
	assert.Equal(t, "berlin", sel.Text)
	assert.Nil(t, sel.AI)
}

func TestSelectedSuggestionAIOverrideWins(t *testing.T) {
	ai := &AISuggestion{Type: "chat", URL: "https://ai.example.com/?q=berlin", Title: "Ask about berlin"}

	for _, steps := range []int{1, 2, 3} {
		s := NewStore(newStubFetcher())
		s.SetSuggestionSet(berlinSet)
		s.SetAISuggestion(ai)
		for i := 0; i < steps; i++ {
			s.MoveSelection(Down)
		}

		sel, ok := s.SelectedSuggestion()
		require.True(t, ok)
		assert.Equal(t, SelectionAIOverride, sel.Kind)
		assert.Equal(t, steps-1, sel.Index)
		assert.Equal(t, ai, sel.AI)
		assert.Equal(t, "Ask about berlin", sel.Text)
	}

	s := NewStore(newStubFetcher())
	s.SetSuggestionSet(berlinSet)
	s.SetAISuggestion(ai)
	_, ok := s.SelectedSuggestion()
	assert.False(t, ok, "override needs a highlight")

	s.MoveSelection(Down)
	s.SetAISuggestion(nil)
	sel, ok := s.SelectedSuggestion()
	require.True(t, ok)
	assert.Equal(t, SelectionRegular, sel.Kind)
}

func TestSetAISuggestionCopies(t *testing.T) {
	s := NewStore(newStubFetcher())
	ai := &AISuggestion{Title: "before"}
	s.SetAISuggestion(ai)
	ai.Title = "after"
	assert.Equal(t, "before", s.AISuggestion().Title)
}

func TestAccessibilityState(t *testing.T) {
	s := NewStore(newStubFetcher())
	assert.False(t, s.Expanded())
	assert.Equal(t, "", s.ActiveDescendant())
	assert.Equal(t, 0, s.AISlot())

	s.SetSuggestionSet(berlinSet)
	assert.True(t, s.Expanded())
	assert.Equal(t, 2, s.AISlot())

	testCases := []struct {
		dir  Direction
		want string
	}{
		{Down, "suggestion-0"},
		{Down, "suggestion-1"},
		{Down, "suggestion-ai"},
		{Down, "suggestion-ai"},
		{Up, "suggestion-1"},
		{Escape, ""},
	}
	for _, tc := range testCases {
		s.MoveSelection(tc.dir)
		assert.Equal(t, tc.want, s.ActiveDescendant())
	}
}

func TestParseDirection(t *testing.T) {
	testCases := []struct {
		key  string
		want Direction
		ok   bool
	}{
		{"up", Up, true},
		{"ArrowUp", Up, true},
		{"down", Down, true},
		{"ArrowDown", Down, true},
		{"esc", Escape, true},
		{"Escape", Escape, true},
		{"tab", 0, false},
		{"", 0, false},
	}
	for _, tc := range testCases {
		got, ok := ParseDirection(tc.key)
		assert.Equal(t, tc.ok, ok, tc.key)
		if tc.ok {
			assert.Equal(t, tc.want, got, tc.key)
		}
	}
}
