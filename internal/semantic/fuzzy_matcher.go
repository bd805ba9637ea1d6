package semantic

import (
	"math"
	"sort"

	"github.com/hbollon/go-edlib"
	"github.com/pmezard/go-difflib/difflib"
)

const (
	AlgorithmRatio       = "ratio"
	AlgorithmJaroWinkler = "jaro-winkler"
	AlgorithmLevenshtein = "levenshtein"
	AlgorithmCosine      = "cosine"
)

// DefaultFuzzyThreshold is the close-match cutoff used when none is configured
const DefaultFuzzyThreshold = 0.6

// SimilarityFunc scores two non-empty, unequal strings in [0, 1].
type SimilarityFunc func(a, b string) float64

var similarityFuncs = map[string]SimilarityFunc{
	AlgorithmRatio:       blockRatio,
	AlgorithmJaroWinkler: edlibScore(edlib.JaroWinkler),
	AlgorithmLevenshtein: edlibScore(edlib.Levenshtein),
	AlgorithmCosine:      bigramCosine,
}

// IsValidAlgorithm reports whether name is a supported similarity algorithm
func IsValidAlgorithm(name string) bool {
	_, ok := similarityFuncs[name]
	return ok
}

// Algorithms lists the supported algorithm names in sorted order.
func Algorithms() []string {
	names := make([]string, 0, len(similarityFuncs))
	for name := range similarityFuncs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FuzzyMatcher decides whether two words are close enough to count as the
// same word. Comparison is exact; callers fold case beforehand if needed.
type FuzzyMatcher struct {
	threshold float64
	algorithm string
	score     SimilarityFunc
}

// NewFuzzyMatcher returns a matcher for algorithm with the given cutoff.
// An out-of-range threshold falls back to DefaultFuzzyThreshold and an
// unknown algorithm to "ratio"; config validation rejects both earlier.
func NewFuzzyMatcher(threshold float64, algorithm string) *FuzzyMatcher {
	if threshold < 0 || threshold > 1 {
		threshold = DefaultFuzzyThreshold
	}
	score, ok := similarityFuncs[algorithm]
	if !ok {
		algorithm, score = AlgorithmRatio, blockRatio
	}
	return &FuzzyMatcher{threshold: threshold, algorithm: algorithm, score: score}
}

func (fm *FuzzyMatcher) Threshold() float64 { return fm.threshold }
func (fm *FuzzyMatcher) Algorithm() string  { return fm.algorithm }

// Similarity scores a against b. Equal strings score 1 and a string against
// the empty string scores 0.
func (fm *FuzzyMatcher) Similarity(a, b string) float64 {
	switch {
	case a == b:
		return 1
	case a == "" || b == "":
		return 0
	}
	return fm.score(a, b)
}

// Match reports whether a and b reach the threshold.
func (fm *FuzzyMatcher) Match(a, b string) bool {
	return fm.Similarity(a, b) >= fm.threshold
}

// HasCloseMatch reports whether any candidate matches target.
func (fm *FuzzyMatcher) HasCloseMatch(target string, candidates []string) bool {
	for _, c := range candidates {
		if fm.Match(target, c) {
			return true
		}
	}
	return false
}

// FuzzyMatch is one candidate that reached the threshold.
type FuzzyMatch struct {
	Term       string
	Similarity float64
}

// FindMatches returns the candidates that match target, best first. Ties
// keep input order.
func (fm *FuzzyMatcher) FindMatches(target string, candidates []string) []FuzzyMatch {
	var matches []FuzzyMatch
	for _, c := range candidates {
		if s := fm.Similarity(target, c); s >= fm.threshold {
			matches = append(matches, FuzzyMatch{Term: c, Similarity: s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	return matches
}

// blockRatio is difflib's Ratcliff/Obershelp ratio 2*M/T over runes, M
// being the characters in matching blocks and T the combined rune count.
// It is not always symmetric.
func blockRatio(a, b string) float64 {
	return difflib.NewMatcher(runeStrings(a), runeStrings(b)).Ratio()
}

func runeStrings(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func edlibScore(algo edlib.Algorithm) SimilarityFunc {
	return func(a, b string) float64 {
		score, err := edlib.StringsSimilarity(a, b, algo)
		if err != nil {
			return 0
		}
		return float64(score)
	}
}

// bigramCosine treats each string as a set of rune bigrams.
func bigramCosine(a, b string) float64 {
	ba, bb := bigrams(a), bigrams(b)
	shared := 0
	for g := range ba {
		if _, ok := bb[g]; ok {
			shared++
		}
	}
	return float64(shared) / math.Sqrt(float64(len(ba))*float64(len(bb)))
}

// bigrams of a one-rune string is the string itself.
func bigrams(s string) map[string]struct{} {
	runes := []rune(s)
	set := make(map[string]struct{}, len(runes))
	if len(runes) < 2 {
		set[s] = struct{}{}
		return set
	}
	for i := 0; i+1 < len(runes); i++ {
		set[string(runes[i:i+2])] = struct{}{}
	}
	return set
}
