package config

import (
	"os"
	"path/filepath"
	"time"

	flqerrors "github.com/standardbeagle/flatq/internal/errors"
	"github.com/standardbeagle/flatq/internal/flat"
	"github.com/standardbeagle/flatq/internal/search"
	"github.com/standardbeagle/flatq/internal/semantic"
)

// FileName is the config file looked up in the home and working directories.
const FileName = ".flatq.kdl"

type Config struct {
	Version   int
	Codec     Codec
	Search    Search
	Fuzzy     Fuzzy
	Stemming  Stemming
	Tokenizer Tokenizer
	Watch     Watch
}

type Codec struct {
	Separator       string
	PreserveEmpty   bool // Emit {} and [] leaves instead of dropping them
	Strict          bool // Fail instead of dropping fields during coercion
	MaxIndex        int  // Largest array index accepted while inflating
	LoadConcurrency int  // Files loaded in parallel by multi-file commands
}

type Search struct {
	CaseSensitive bool
	Fuzzy         bool
	Stem          bool
	MaxResults    int // 0 = unlimited
}

type Fuzzy struct {
	Threshold float64
	Algorithm string // ratio, jaro-winkler, levenshtein, cosine
	FoldCase  bool
}

type Stemming struct {
	Enabled    bool
	Algorithm  string // porter2, none
	MinLength  int
	Exclusions []string
}

func (s Stemming) options() semantic.StemmerOptions {
	return semantic.StemmerOptions{
		Enabled:    s.Enabled,
		Algorithm:  s.Algorithm,
		MinLength:  s.MinLength,
		Exclusions: s.Exclusions,
	}
}

type Tokenizer struct {
	CacheSize int // WordSplitter LRU size
}

type Watch struct {
	DebounceMs int
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Codec: Codec{
			Separator:       flat.DefaultSeparator,
			MaxIndex:        flat.DefaultMaxIndex,
			LoadConcurrency: 8,
		},
		Search: Search{
			CaseSensitive: true,
		},
		Fuzzy: Fuzzy{
			Threshold: semantic.DefaultFuzzyThreshold,
			Algorithm: semantic.AlgorithmRatio,
		},
		Stemming: Stemming{
			Enabled:   true,
			Algorithm: semantic.StemPorter2,
			MinLength: 3,
		},
		Tokenizer: Tokenizer{
			CacheSize: semantic.DefaultCacheSize,
		},
		Watch: Watch{
			DebounceMs: 100,
		},
	}
}

// Load builds the effective configuration: defaults, then ~/.flatq.kdl,
// then .flatq.kdl in the working directory, then path when non-empty.
// Later files override earlier ones key by key.
func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	cfg := Default()

	// Step 1: global config from the home directory (if exists)
	if homeDir, err := os.UserHomeDir(); err == nil {
		home, err := LoadKDL(homeDir, cfg)
		if err != nil {
			return nil, err
		}
		if home != nil {
			cfg = home
		}
	}

	// Step 2: project config
	absSearch, _ := filepath.Abs(searchDir)
	absHome, _ := os.UserHomeDir()
	if absSearch != absHome {
		project, err := LoadKDL(searchDir, cfg)
		if err != nil {
			return nil, err
		}
		if project != nil {
			cfg = project
		}
	}

	// Step 3: explicit file, which must exist
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, flqerrors.NewFileError("read", path, err)
		}
		if cfg, err = parseKDL(string(content), cfg); err != nil {
			return nil, err
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Stemming.Exclusions = append([]string(nil), c.Stemming.Exclusions...)
	return &out
}

// CodecOptions maps the codec section onto flat.Options.
func (c *Config) CodecOptions() flat.Options {
	return flat.Options{
		Separator:     c.Codec.Separator,
		PreserveEmpty: c.Codec.PreserveEmpty,
		Strict:        c.Codec.Strict,
		MaxIndex:      c.Codec.MaxIndex,
	}
}

// NewMatcher builds a matcher from the tokenizer, fuzzy and stemming sections.
func (c *Config) NewMatcher() *semantic.Matcher {
	m := semantic.NewMatcher(c.Codec.Separator)
	m.Splitter = semantic.NewWordSplitterWithSize(c.Tokenizer.CacheSize)
	m.Fuzzy = semantic.NewFuzzyMatcher(c.Fuzzy.Threshold, c.Fuzzy.Algorithm)
	m.FoldCase = c.Fuzzy.FoldCase
	m.Stemmer = semantic.NewStemmer(c.Stemming.options())
	return m
}

// NewEngine builds a search engine for the configured separator.
func (c *Config) NewEngine() *search.Engine {
	return search.NewEngine(c.Codec.Separator, c.NewMatcher())
}

// KeywordOptions returns the search section defaults for keyword search.
func (c *Config) KeywordOptions() search.KeywordOptions {
	return search.KeywordOptions{
		CaseSensitive: c.Search.CaseSensitive,
		Fuzzy:         c.Search.Fuzzy,
	}
}

// QueryOptions returns the search section defaults for query search.
func (c *Config) QueryOptions() search.QueryOptions {
	return search.QueryOptions{
		CaseSensitive: c.Search.CaseSensitive,
		Fuzzy:         c.Search.Fuzzy,
		Stem:          c.Search.Stem,
		MaxResults:    c.Search.MaxResults,
	}
}

// WatchDebounce is the watch debounce as a duration.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}
