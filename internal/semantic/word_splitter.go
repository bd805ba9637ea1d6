package semantic

import (
	"unicode"
)

// WordSplitter splits compound strings into word tokens, keeping acronyms
// together and treating digit runs joined by punctuation ("1.1", "3-4") as
// a single number. Case is preserved.
//
// Thread-safe: results are memoized in a bounded LRU cache.
type WordSplitter struct {
	cache *LRUCache[string, []string]
}

// Default cache size limits
const (
	DefaultCacheSize = 1000 // Maximum number of cached split results
)

// NewWordSplitter creates a new word splitter with cache
func NewWordSplitter() *WordSplitter {
	return NewWordSplitterWithSize(DefaultCacheSize)
}

// NewWordSplitterWithSize creates a new word splitter with custom cache size
func NewWordSplitterWithSize(cacheSize int) *WordSplitter {
	return &WordSplitter{cache: NewLRUCache[string, []string](cacheSize)}
}

// charClass is the category the splitting rules reason about.
type charClass uint8

const (
	classOther charClass = iota
	classLower
	classUpper
	classDigit
	classJoiner
)

func classify(r rune) charClass {
	switch {
	case unicode.IsLower(r):
		return classLower
	case unicode.IsUpper(r):
		return classUpper
	case unicode.IsDigit(r):
		return classDigit
	}
	switch r {
	case '.', ':', ';', '-':
		return classJoiner
	}
	return classOther
}

func isAlpha(c charClass) bool { return c == classLower || c == classUpper }

// boundaryAfter reports whether a token ends between cls[i] and cls[i+1].
// The rules are ordered; the first one that applies decides.
func boundaryAfter(cls []charClass, i int) bool {
	a, b := cls[i], cls[i+1]
	hasThird := i+2 < len(cls)
	var c charClass
	if hasThird {
		c = cls[i+2]
	}

	switch {
	case hasThird && a == classDigit && b == classJoiner && c == classDigit:
		// 1.1 stays one number
		return false
	case hasThird && a == classUpper && b == classUpper && c == classLower:
		// NASAIs: the I begins the next word
		return true
	case a == classDigit && isAlpha(b):
		return true
	case a == classUpper && b == classUpper:
		return false
	case a == classLower && b == classUpper:
		return true
	case isAlpha(a) && b == classDigit:
		return true
	}
	return false
}

// Split splits s into tokens in a single left-to-right pass. Empty input
// yields one empty token. Callers must not modify the returned slice.
func (ws *WordSplitter) Split(s string) []string {
	if s == "" {
		return []string{""}
	}

	return ws.cache.GetOrCompute(s, split)
}

// CacheStats reports how often Split was answered from the cache.
func (ws *WordSplitter) CacheStats() CacheStats {
	return ws.cache.Stats()
}

func split(s string) []string {
	runes := []rune(s)
	cls := make([]charClass, len(runes))
	for i, r := range runes {
		cls[i] = classify(r)
	}

	words := make([]string, 0, 4)
	start := 0
	for i := 0; i < len(runes)-1; i++ {
		if boundaryAfter(cls, i) {
			words = append(words, string(runes[start:i+1]))
			start = i + 1
		}
	}
	return append(words, string(runes[start:]))
}

// SplitToSet splits s and returns the unique tokens as a set
func (ws *WordSplitter) SplitToSet(s string) map[string]bool {
	words := ws.Split(s)
	set := make(map[string]bool, len(words))
	for _, word := range words {
		if word != "" {
			set[word] = true
		}
	}
	return set
}
