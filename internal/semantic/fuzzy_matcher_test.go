package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFuzzyMatcherDefaults(t *testing.T) {
	tests := []struct {
		name          string
		threshold     float64
		algorithm     string
		wantThreshold float64
		wantAlgorithm string
	}{
		{"configured", 0.85, AlgorithmJaroWinkler, 0.85, AlgorithmJaroWinkler},
		{"empty algorithm", 0.7, "", 0.7, AlgorithmRatio},
		{"unknown algorithm", 0.7, "soundex", 0.7, AlgorithmRatio},
		{"negative threshold", -1, AlgorithmCosine, DefaultFuzzyThreshold, AlgorithmCosine},
		{"threshold above one", 1.5, AlgorithmLevenshtein, DefaultFuzzyThreshold, AlgorithmLevenshtein},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm := NewFuzzyMatcher(tt.threshold, tt.algorithm)
			assert.Equal(t, tt.wantThreshold, fm.Threshold())
			assert.Equal(t, tt.wantAlgorithm, fm.Algorithm())
		})
	}
}

func TestAlgorithms(t *testing.T) {
	assert.Equal(t, []string{"cosine", "jaro-winkler", "levenshtein", "ratio"}, Algorithms())
	assert.True(t, IsValidAlgorithm("ratio"))
	assert.False(t, IsValidAlgorithm("Ratio"))
}

func TestRatioSimilarity(t *testing.T) {
	fm := NewFuzzyMatcher(DefaultFuzzyThreshold, AlgorithmRatio)

	tests := []struct {
		a, b string
		want float64
	}{
		{"hello", "hello", 1},
		{"helo", "hello", 8.0 / 9.0},
		{"apple", "ape", 0.75},
		{"abc", "xyz", 0},
		{"", "", 1},
		{"", "abc", 0},
		{"héllo", "hello", 0.8},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, fm.Similarity(tt.a, tt.b), 1e-9, "%q vs %q", tt.a, tt.b)
	}

	assert.True(t, fm.Match("wrld", "world"))
	assert.True(t, fm.Match("adress", "address"))
	assert.False(t, fm.Match("xyz", "world"))
	assert.False(t, fm.Match("Hello", "hello world"), "comparison is case sensitive")
}

func TestRatioCountsMatchingBlocks(t *testing.T) {
	fm := NewFuzzyMatcher(DefaultFuzzyThreshold, AlgorithmRatio)

	// the single block "da" gives 4/9; the common subsequence "ada" would give 6/9
	assert.InDelta(t, 4.0/9.0, fm.Similarity("adda", "dacda"), 1e-9)
	assert.False(t, fm.Match("adda", "dacda"))
}

func TestAlgorithmSimilarity(t *testing.T) {
	tests := []struct {
		algorithm string
		a, b      string
		min, max  float64
	}{
		{AlgorithmJaroWinkler, "martha", "marhta", 0.95, 0.97},
		{AlgorithmJaroWinkler, "authenticate", "authentication", 0.90, 1},
		{AlgorithmJaroWinkler, "abc", "xyz", 0, 0.01},
		{AlgorithmLevenshtein, "kitten", "sitting", 0.55, 0.60},
		{AlgorithmLevenshtein, "flaw", "lawn", 0.45, 0.55},
		{AlgorithmCosine, "night", "nacht", 0.24, 0.26},
		{AlgorithmCosine, "abab", "baba", 0.99, 1},
		{AlgorithmCosine, "a", "ab", 0, 0.01},
	}
	for _, tt := range tests {
		t.Run(tt.algorithm+"/"+tt.a+"/"+tt.b, func(t *testing.T) {
			got := NewFuzzyMatcher(0.5, tt.algorithm).Similarity(tt.a, tt.b)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestSimilarityBounds(t *testing.T) {
	words := []string{"", "a", "user", "users", "userName", "email", "héllo", "日本語"}
	for _, algo := range Algorithms() {
		fm := NewFuzzyMatcher(DefaultFuzzyThreshold, algo)
		for _, a := range words {
			assert.Equal(t, 1.0, fm.Similarity(a, a), "%s: %q against itself", algo, a)
			for _, b := range words {
				s := fm.Similarity(a, b)
				assert.True(t, s >= 0 && s <= 1, "%s: %q vs %q = %f", algo, a, b, s)
				if algo == AlgorithmLevenshtein || algo == AlgorithmCosine {
					assert.InDelta(t, s, fm.Similarity(b, a), 1e-9, "%s is symmetric", algo)
				}
			}
		}
	}
}

func TestFindMatches(t *testing.T) {
	fm := NewFuzzyMatcher(DefaultFuzzyThreshold, AlgorithmRatio)

	matches := fm.FindMatches("name", []string{"email", "names", "title", "nam", "username"})
	terms := make([]string, len(matches))
	for i, m := range matches {
		terms[i] = m.Term
		assert.GreaterOrEqual(t, m.Similarity, fm.Threshold())
	}
	// names 8/9, nam 6/7, username 2/3
	assert.Equal(t, []string{"names", "nam", "username"}, terms)

	assert.Empty(t, fm.FindMatches("zzz", []string{"name", "email"}))
	assert.Empty(t, NewFuzzyMatcher(0.99, AlgorithmRatio).FindMatches("nam", []string{"name"}))
}

func TestHasCloseMatch(t *testing.T) {
	fm := NewFuzzyMatcher(DefaultFuzzyThreshold, "")

	assert.True(t, fm.HasCloseMatch("helo", []string{"goodbye", "hello"}))
	assert.False(t, fm.HasCloseMatch("helo", nil))
}

func TestBigrams(t *testing.T) {
	assert.Len(t, bigrams("hello"), 4)
	assert.Len(t, bigrams("aaaa"), 1)
	assert.Len(t, bigrams("日本語"), 2)
	assert.Equal(t, map[string]struct{}{"x": {}}, bigrams("x"))
}

func BenchmarkSimilarity(b *testing.B) {
	for _, algo := range Algorithms() {
		fm := NewFuzzyMatcher(DefaultFuzzyThreshold, algo)
		b.Run(algo, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				fm.Similarity("authentication", "authenticate")
			}
		})
	}
}
