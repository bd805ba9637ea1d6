package semantic

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/surgebase/porter2"
)

const (
	StemPorter2 = "porter2"
	StemNone    = "none"
)

// StemmerOptions configures a Stemmer. The zero value stems nothing.
type StemmerOptions struct {
	Enabled    bool
	Algorithm  string // porter2 (default) or none
	MinLength  int    // shorter words are left alone
	Exclusions []string
}

// ValidateStemmer checks opts without building a stemmer.
func ValidateStemmer(opts StemmerOptions) error {
	if opts.MinLength < 0 {
		return fmt.Errorf("invalid min length: %d (must be >= 0)", opts.MinLength)
	}
	switch opts.Algorithm {
	case "", StemPorter2, StemNone:
		return nil
	}
	return errors.New("invalid algorithm: " + opts.Algorithm + " (must be porter2 or none)")
}

// Stemmer reduces words to porter2 stems so that "running" finds "runs".
// Words are lower-cased first, and stems are memoized.
type Stemmer struct {
	active     bool
	minLength  int
	exclusions map[string]struct{}
	cache      *LRUCache[string, string]
}

func NewStemmer(opts StemmerOptions) *Stemmer {
	s := &Stemmer{
		active:     opts.Enabled && opts.Algorithm != StemNone,
		minLength:  opts.MinLength,
		exclusions: make(map[string]struct{}, len(opts.Exclusions)),
		cache:      NewLRUCache[string, string](DefaultCacheSize),
	}
	for _, w := range opts.Exclusions {
		s.exclusions[strings.ToLower(w)] = struct{}{}
	}
	return s
}

// Active reports whether Stem does more than lower-case.
func (s *Stemmer) Active() bool { return s.active }

func (s *Stemmer) IsExcluded(word string) bool {
	_, ok := s.exclusions[strings.ToLower(word)]
	return ok
}

// Stem returns the lower-cased stem of word. Excluded words and words
// under the minimum length come back lower-cased only.
func (s *Stemmer) Stem(word string) string {
	lower := strings.ToLower(word)
	if !s.active || utf8.RuneCountInString(lower) < s.minLength {
		return lower
	}
	if _, skip := s.exclusions[lower]; skip {
		return lower
	}
	return s.cache.GetOrCompute(lower, porter2.Stem)
}

func (s *Stemmer) StemAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = s.Stem(w)
	}
	return out
}

// SameStem reports whether a and b reduce to the same stem.
func (s *Stemmer) SameStem(a, b string) bool {
	return s.Stem(a) == s.Stem(b)
}
