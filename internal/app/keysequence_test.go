package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pushAll(s *KeySequence, keys ...string) []bool {
	out := make([]bool, len(keys))
	for i, k := range keys {
		out[i] = s.Push(k)
	}

	return out
}

func TestKeySequence_MatchesOnlyTheLastNineKeys(t *testing.T) {
	tests := []struct {
		name    string
		keys    string
		matched bool
	}{
		{name: "exact", keys: "asdfghjkl", matched: true},
		{name: "upper case", keys: "ASDFGHJKL", matched: true},
		{name: "mixed case", keys: "aSdFgHjKl", matched: true},
		{name: "prefix noise", keys: "qwertyasdfghjkl", matched: true},
		{name: "too short", keys: "sdfghjkl", matched: false},
		{name: "out of order", keys: "asdfghjlk", matched: false},
		{name: "interrupted", keys: "asdfgxhjkl", matched: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewKeySequence(AdminSequence)
			results := pushAll(s, strings.Split(tt.keys, "")...)

			matched := false
			for _, r := range results {
				matched = matched || r
			}

			assert.Equal(t, tt.matched, matched)
			assert.Equal(t, tt.matched, results[len(results)-1])
		})
	}
}

func TestKeySequence_NamedKeysBreakTheWindow(t *testing.T) {
	s := NewKeySequence(AdminSequence)

	results := pushAll(s, "a", "s", "d", "f", "Shift", "g", "h", "j", "k", "l")

	assert.NotContains(t, results, true)
	assert.Equal(t, []string{"s", "d", "f", "shift", "g", "h", "j", "k", "l"}, s.Window())
}

func TestKeySequence_ResetsAfterMatch(t *testing.T) {
	s := NewKeySequence(AdminSequence)

	assert.True(t, pushAll(s, strings.Split("asdfghjkl", "")...)[8])
	assert.Empty(t, s.Window())

	// The tail of the previous sweep must not count towards the next one.
	assert.False(t, s.Push("l"))
	assert.True(t, pushAll(s, strings.Split("asdfghjkl", "")...)[8])
}

func TestKeySequence_WindowIsBounded(t *testing.T) {
	s := NewKeySequence(AdminSequence)

	pushAll(s, strings.Split("abcdefghijklmnop", "")...)

	assert.Len(t, s.Window(), 9)
	assert.Equal(t, "h", s.Window()[0])
	assert.Equal(t, "p", s.Window()[8])
}

func TestKeySequence_EmptyTargetNeverMatches(t *testing.T) {
	s := NewKeySequence(nil)

	assert.False(t, s.Push("a"))
	assert.Empty(t, s.Window())
}
