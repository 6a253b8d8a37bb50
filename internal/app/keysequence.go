package app

import (
	"slices"
	"strings"
)

// AdminSequence is the home-row sweep that reveals the admin editor.
var AdminSequence = []string{"a", "s", "d", "f", "g", "h", "j", "k", "l"}

// KeySequence watches a stream of key names for a fixed sequence.
//
// It keeps the last len(target) keys in a ring. Keys are compared
// case-insensitively and every key counts, including named keys such as
// "Shift" or "Enter", so any interruption restarts the match. A KeySequence
// is not safe for concurrent use.
type KeySequence struct {
	target []string
	ring   []string
	next   int
	filled int
}

// NewKeySequence returns a matcher for target.
func NewKeySequence(target []string) *KeySequence {
	t := make([]string, len(target))
	for i, k := range target {
		t[i] = strings.ToLower(k)
	}

	return &KeySequence{
		target: t,
		ring:   make([]string, len(t)),
	}
}

// Push records key and reports whether the window now matches the target.
// On a match the window is cleared, so the next match needs the full
// sequence again.
func (s *KeySequence) Push(key string) bool {
	n := len(s.ring)
	if n == 0 {
		return false
	}

	s.ring[s.next] = strings.ToLower(key)
	s.next = (s.next + 1) % n

	if s.filled < n {
		s.filled++
	}

	if s.filled < n || !slices.Equal(s.Window(), s.target) {
		return false
	}

	s.Reset()

	return true
}

// Window returns the recorded keys, oldest first.
func (s *KeySequence) Window() []string {
	n := len(s.ring)
	out := make([]string, 0, s.filled)

	for i := n - s.filled; i < n; i++ {
		out = append(out, s.ring[(s.next+i)%n])
	}

	return out
}

// Reset clears the window.
func (s *KeySequence) Reset() {
	clear(s.ring)
	s.next = 0
	s.filled = 0
}
