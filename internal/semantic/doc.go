// Package semantic provides the word-level matching used by flatq search.
//
// # Core Components
//
// WordSplitter: splits compound strings into word tokens with a single
// left-to-right character-class pass. Acronyms stay together
// ("TheNASAIsFromUSA" gives The, NASA, Is, From, USA), digit runs become
// their own tokens and numbers joined by ". : ; -" stay whole ("v1.2" gives
// v, 1.2).
//
// FuzzyMatcher: similarity scoring with a configurable algorithm. The
// default "ratio" is difflib's matching-block ratio with a 0.6 cutoff; jaro-winkler,
// levenshtein and cosine are also available.
//
// Stemmer: porter2 stems so that query words match other forms of the same
// word.
//
// Matcher: ExistsIn combines the three. Exact mode is a substring test,
// fuzzy mode looks for a close match among the candidate's tokens.
//
// # Usage Example
//
//	m := semantic.NewMatcher(".")
//	m.ExistsIn("user.address.city", "adress", true, true) // true
//	m.ExistsIn("hello world", "HELLO", false, false)      // true
package semantic
