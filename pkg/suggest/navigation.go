package suggest

import "strconv"

// MoveSelection moves the highlight. Up stops at -1, Down stops at the AI
// slot (index len(suggestions)), Escape drops the highlight. There is no
// wraparound.
func (s *Store) MoveSelection(dir Direction) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch dir {
	case Up:
		if s.selected > -1 {
			s.selected--
		}
	case Down:
		if s.selected < s.set.Len() {
			s.selected++
		}
	case Escape:
		s.selected = -1
	}
	return s.selected
}

// SelectedIndex returns the highlighted index, -1 when nothing is highlighted.
func (s *Store) SelectedIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// AISlot returns the index of the synthetic AI entry.
func (s *Store) AISlot() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Len()
}

// SelectedSuggestion returns the highlighted suggestion. The bool is false
// only when nothing is highlighted. A set AI override wins over whatever sits
// at the index.
func (s *Store) SelectedSuggestion() (Selection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.selected
	if idx < 0 {
		return Selection{}, false
	}
	if s.ai != nil {
		cp := *s.ai
		return Selection{Kind: SelectionAIOverride, Index: idx, Text: cp.Title, AI: &cp}, true
	}
	if idx < s.set.Len() {
		sel := Selection{Kind: SelectionRegular, Index: idx, Text: s.set.Suggestions[idx]}
		if e := s.set.ContextData[idx]; e != nil {
			cp := *e
			sel.Context = &cp
		}
		return sel, true
	}
	return Selection{Kind: SelectionAISlot, Index: idx, Text: s.query}, true
}

// Expanded reports whether the suggestion list is open (aria-expanded).
func (s *Store) Expanded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Len() > 0
}

// ActiveDescendant returns the DOM id of the highlighted row
// (aria-activedescendant), or "" when none.
func (s *Store) ActiveDescendant() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.selected < 0:
		return ""
	case s.selected == s.set.Len():
		return "suggestion-ai"
	default:
		return "suggestion-" + strconv.Itoa(s.selected)
	}
}
