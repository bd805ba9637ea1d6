package semantic

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/flatq/internal/tree"
)

// Matcher decides whether a query is found in a candidate string, either
// as a substring or, in fuzzy mode, as a close match of one of the
// candidate's tokens.
type Matcher struct {
	// Separator is the path separator; fuzzy mode splits candidates on it first.
	Separator string
	Splitter  *WordSplitter
	Fuzzy     *FuzzyMatcher
	Stemmer   *Stemmer
	// FoldCase lower-cases both sides in fuzzy ExistsIn. Off by default.
	FoldCase bool
}

// NewMatcher creates a matcher with the default fuzzy configuration
func NewMatcher(separator string) *Matcher {
	return &Matcher{
		Separator: separator,
		Splitter:  NewWordSplitter(),
		Fuzzy:     NewFuzzyMatcher(DefaultFuzzyThreshold, AlgorithmRatio),
		Stemmer:   NewStemmer(StemmerOptions{Enabled: true, Algorithm: StemPorter2, MinLength: 3}),
	}
}

// Stringify renders any value the way matching sees it. Tree nodes use
// their scalar text.
func Stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case *tree.Node:
		return x.Text()
	case nil:
		return "null"
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

// ExistsIn reports whether query is found in candidate.
//
// Exact mode is a substring test, case-folded unless caseSensitive. Fuzzy
// mode tokenizes candidate (see FuzzyTokens) and looks for a token close to
// query. Fuzzy comparison ignores caseSensitive and folds only when
// FoldCase is set.
func (m *Matcher) ExistsIn(candidate, query any, caseSensitive, fuzzy bool) bool {
	c, q := Stringify(candidate), Stringify(query)

	if fuzzy {
		tokens := m.FuzzyTokens(c)
		if m.FoldCase {
			q = strings.ToLower(q)
			for i, tok := range tokens {
				tokens[i] = strings.ToLower(tok)
			}
		}
		return m.Fuzzy.HasCloseMatch(q, tokens)
	}
	if caseSensitive {
		return strings.Contains(c, q)
	}
	return strings.Contains(strings.ToLower(c), strings.ToLower(q))
}

// FuzzyTokens picks the token set fuzzy matching compares against: the
// separator-delimited pieces of a path, else the compound-word tokens,
// else the whitespace-delimited words. The returned slice is a fresh copy.
func (m *Matcher) FuzzyTokens(candidate string) []string {
	if m.Separator != "" {
		if pieces := strings.Split(candidate, m.Separator); len(pieces) > 1 {
			return pieces
		}
	}
	if words := m.Splitter.Split(candidate); len(words) > 1 {
		return append([]string(nil), words...)
	}
	return strings.Fields(candidate)
}

// MatchToken compares one query word with one token. Exact mode is a
// substring test; fuzzy mode uses the similarity threshold. With stem set,
// words that share a porter2 stem also match.
func (m *Matcher) MatchToken(word, token string, caseSensitive, fuzzy, stem bool) bool {
	if !caseSensitive {
		word, token = strings.ToLower(word), strings.ToLower(token)
	}
	if fuzzy {
		if m.Fuzzy.Match(word, token) {
			return true
		}
	} else if strings.Contains(token, word) {
		return true
	}
	return stem && m.Stemmer != nil && m.Stemmer.SameStem(word, token)
}
