package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/standardbeagle/flatq/internal/tree"
)

func TestExistsInExact(t *testing.T) {
	m := NewMatcher(".")

	tests := []struct {
		name          string
		candidate     any
		query         any
		caseSensitive bool
		want          bool
	}{
		{"substring", "hello world", "hello", true, true},
		{"case mismatch", "hello world", "Hello", true, false},
		{"case folded", "hello world", "Hello", false, true},
		{"absent", "hello world", "xyz", false, false},
		{"number node", tree.Int(1047), "04", true, true},
		{"bool node", tree.Bool(true), "true", true, true},
		{"null node", tree.Null(), "null", true, true},
		{"go value", 3.5, ".5", true, true},
		{"numeric query", "version 42", 42, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.ExistsIn(tt.candidate, tt.query, tt.caseSensitive, false))
		})
	}
}

func TestExistsInFuzzy(t *testing.T) {
	m := NewMatcher(".")

	tests := []struct {
		name          string
		candidate     string
		query         string
		caseSensitive bool
		want          bool
	}{
		{"path segment typo", "user.address.city", "adress", true, true},
		{"path no match", "user.address.city", "zip", true, false},
		{"compound token", "firstName", "Name", true, true},
		{"compound case sensitive", "firstName", "nam", true, false},
		{"case flag ignored", "firstName", "nam", false, false},
		{"upper query against lower token", "hello", "HELLO", false, false},
		{"whitespace fallback", "big red dog", "dgo", true, true},
		{"whitespace no match", "big red dog", "cat", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.ExistsIn(tt.candidate, tt.query, tt.caseSensitive, true))
		})
	}
}

func TestExistsInFuzzyFoldCase(t *testing.T) {
	m := NewMatcher(".")
	assert.False(t, m.ExistsIn("HELLO", "hello", false, true))
	assert.False(t, m.ExistsIn("HELLO", "hello", true, true))

	m.FoldCase = true
	assert.True(t, m.ExistsIn("HELLO", "hello", true, true))
	assert.True(t, m.ExistsIn("firstName", "nam", false, true))
}

func TestFuzzyTokens(t *testing.T) {
	m := NewMatcher(".")
	assert.Equal(t, []string{"a", "b", "c"}, m.FuzzyTokens("a.b.c"))
	assert.Equal(t, []string{"The", "NASA"}, m.FuzzyTokens("TheNASA"))
	assert.Equal(t, []string{"plain", "words"}, m.FuzzyTokens("plain words"))

	slash := NewMatcher("/")
	assert.Equal(t, []string{"a.b"}, slash.FuzzyTokens("a.b"))

	// callers may fold tokens in place without corrupting the splitter cache
	tokens := m.FuzzyTokens("TheNASA")
	tokens[0] = "changed"
	assert.Equal(t, []string{"The", "NASA"}, m.FuzzyTokens("TheNASA"))
}

func TestMatchToken(t *testing.T) {
	m := NewMatcher(".")

	assert.True(t, m.MatchToken("hello", "say-hello", true, false, false))
	assert.False(t, m.MatchToken("Hello", "hello", true, false, false))
	assert.True(t, m.MatchToken("Hello", "hello", false, false, false))
	assert.True(t, m.MatchToken("helo", "hello", true, true, false))
	assert.False(t, m.MatchToken("runs", "running", false, false, false))
	assert.True(t, m.MatchToken("runs", "running", false, false, true))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "null", Stringify(nil))
	assert.Equal(t, "x", Stringify("x"))
	assert.Equal(t, "2.50", Stringify(tree.Number("2.50")))
	assert.Equal(t, "12", Stringify(12))
}
