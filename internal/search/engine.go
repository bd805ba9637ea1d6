// Package search answers keyword and multi-word queries over a flat map.
package search

import (
	"errors"
	"sort"
	"strings"

	"github.com/standardbeagle/flatq/internal/debug"
	flqerrors "github.com/standardbeagle/flatq/internal/errors"
	"github.com/standardbeagle/flatq/internal/flat"
	"github.com/standardbeagle/flatq/internal/semantic"
	"github.com/standardbeagle/flatq/internal/tree"
)

var errKeysAndValuesOnly = errors.New("keys-only and values-only cannot both be set")

// Engine runs searches over flat maps produced with one separator.
type Engine struct {
	separator string
	matcher   *semantic.Matcher
}

// NewEngine creates an engine for paths joined with sep, using matcher for
// word comparisons. A nil matcher gets the defaults.
func NewEngine(sep string, matcher *semantic.Matcher) *Engine {
	if matcher == nil {
		matcher = semantic.NewMatcher(sep)
	}
	return &Engine{separator: sep, matcher: matcher}
}

// Matcher returns the engine's matcher.
func (e *Engine) Matcher() *semantic.Matcher { return e.matcher }

// KeywordOptions controls SearchByKeyword.
type KeywordOptions struct {
	CaseSensitive bool
	Fuzzy         bool
	KeysOnly      bool
	ValuesOnly    bool
	Filter        Filter
}

// KeywordResult buckets entries by where the keyword was found. An entry
// lands in at most one bucket.
type KeywordResult struct {
	ByKey   *flat.FlatMap
	ByValue *flat.FlatMap
}

// Len is the total number of matched entries.
func (r *KeywordResult) Len() int {
	return r.ByKey.Len() + r.ByValue.Len()
}

// SearchByKeyword tests each entry's path against keyword and, only when
// the path does not match, its value.
func (e *Engine) SearchByKeyword(fm *flat.FlatMap, keyword string, opts KeywordOptions) (*KeywordResult, error) {
	if opts.KeysOnly && opts.ValuesOnly {
		return nil, flqerrors.NewSearchError(keyword, errKeysAndValuesOnly)
	}
	filter, err := opts.Filter.compile(e.separator)
	if err != nil {
		return nil, err
	}

	res := &KeywordResult{ByKey: flat.NewFlatMap(0), ByValue: flat.NewFlatMap(0)}
	for path, value := range fm.All() {
		ok, err := filter.allow(path, value)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		if !opts.ValuesOnly && e.matcher.ExistsIn(path, keyword, opts.CaseSensitive, opts.Fuzzy) {
			res.ByKey.Set(path, value)
		} else if !opts.KeysOnly && e.matcher.ExistsIn(value, keyword, opts.CaseSensitive, opts.Fuzzy) {
			res.ByValue.Set(path, value)
		}
	}

	debug.LogSearch("keyword %q: %d by key, %d by value\n", keyword, res.ByKey.Len(), res.ByValue.Len())
	return res, nil
}

// QueryOptions controls SearchByQuery and RankByQuery.
type QueryOptions struct {
	Fuzzy         bool
	CaseSensitive bool
	// Stem also counts a word as found when it shares a porter2 stem with a token.
	Stem bool
	// MaxResults caps the result; zero or less means unlimited.
	MaxResults int
	Filter     Filter
}

// Ranked is one scored entry.
type Ranked struct {
	Path  string
	Value *tree.Node
	Score int
}

// RankByQuery scores each entry by how many of the query's whitespace
// separated words it contains, drops entries scoring zero and sorts by
// descending score. Ties keep flat map order.
func (e *Engine) RankByQuery(query string, fm *flat.FlatMap, opts QueryOptions) ([]Ranked, error) {
	words := strings.Fields(query)
	if len(words) == 0 {
		return nil, nil
	}
	filter, err := opts.Filter.compile(e.separator)
	if err != nil {
		return nil, err
	}

	var ranked []Ranked
	for path, value := range fm.All() {
		ok, err := filter.allow(path, value)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		tokens := e.EntryTokens(path, value)
		score := 0
		for _, w := range words {
			if e.wordInTokens(w, tokens, opts) {
				score++
			}
		}
		if score > 0 {
			ranked = append(ranked, Ranked{Path: path, Value: value, Score: score})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	if opts.MaxResults > 0 && len(ranked) > opts.MaxResults {
		ranked = ranked[:opts.MaxResults]
	}

	debug.LogSearch("query %q: %d ranked entries\n", query, len(ranked))
	return ranked, nil
}

// SearchByQuery is RankByQuery reduced to path -> value in rank order.
func (e *Engine) SearchByQuery(query string, fm *flat.FlatMap, opts QueryOptions) (*flat.FlatMap, error) {
	ranked, err := e.RankByQuery(query, fm, opts)
	if err != nil {
		return nil, err
	}
	out := flat.NewFlatMap(len(ranked))
	for _, r := range ranked {
		out.Set(r.Path, r.Value)
	}
	return out, nil
}

// EntryTokens is the token set a query word is looked up in: the path
// segments, the whitespace-separated words of the value text, and the
// compound-word pieces of both.
func (e *Engine) EntryTokens(path string, value *tree.Node) []string {
	var base []string
	if e.separator != "" {
		base = strings.Split(path, e.separator)
	} else {
		base = []string{path}
	}
	base = append(base, strings.Fields(semantic.Stringify(value))...)

	tokens := make([]string, 0, len(base)*2)
	seen := make(map[string]bool, len(base)*2)
	add := func(tok string) {
		if tok != "" && !seen[tok] {
			seen[tok] = true
			tokens = append(tokens, tok)
		}
	}
	for _, tok := range base {
		add(tok)
		if pieces := e.matcher.Splitter.Split(tok); len(pieces) > 1 {
			for _, p := range pieces {
				add(p)
			}
		}
	}
	return tokens
}

func (e *Engine) wordInTokens(word string, tokens []string, opts QueryOptions) bool {
	for _, tok := range tokens {
		if e.matcher.MatchToken(word, tok, opts.CaseSensitive, opts.Fuzzy, opts.Stem) {
			return true
		}
	}
	return false
}
