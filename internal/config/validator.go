package config

import (
	"errors"
	"fmt"

	flqerrors "github.com/standardbeagle/flatq/internal/errors"
	"github.com/standardbeagle/flatq/internal/flat"
	"github.com/standardbeagle/flatq/internal/semantic"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and fills zero values
// that mean "use the default". Every bad field is reported; the result
// unwraps to one *ConfigError per field.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	var errs []error
	bad := func(field string, value any, err error) {
		errs = append(errs, flqerrors.NewConfigError(field, fmt.Sprint(value), err))
	}
	negative := func(field string, n int) {
		if n < 0 {
			bad(field, n, errNegative)
		}
	}

	if err := flat.ValidateSeparator(cfg.Codec.Separator); err != nil {
		bad("codec.separator", cfg.Codec.Separator, err)
	}
	negative("codec.max_index", cfg.Codec.MaxIndex)
	negative("codec.load_concurrency", cfg.Codec.LoadConcurrency)
	negative("search.max_results", cfg.Search.MaxResults)

	if cfg.Fuzzy.Threshold < 0 || cfg.Fuzzy.Threshold > 1 {
		bad("fuzzy.threshold", cfg.Fuzzy.Threshold, errors.New("must be between 0 and 1"))
	}
	if cfg.Fuzzy.Algorithm != "" && !semantic.IsValidAlgorithm(cfg.Fuzzy.Algorithm) {
		bad("fuzzy.algorithm", cfg.Fuzzy.Algorithm, fmt.Errorf("unknown algorithm (want one of %v)", semantic.Algorithms()))
	}

	negative("stemming.min_length", cfg.Stemming.MinLength)
	if err := semantic.ValidateStemmer(semantic.StemmerOptions{Algorithm: cfg.Stemming.Algorithm}); err != nil {
		bad("stemming.algorithm", cfg.Stemming.Algorithm, err)
	}

	negative("tokenizer.cache_size", cfg.Tokenizer.CacheSize)
	negative("watch.debounce_ms", cfg.Watch.DebounceMs)

	if err := flqerrors.NewMultiError(errs).ErrOrNil(); err != nil {
		return err
	}
	v.setSmartDefaults(cfg)
	return nil
}

var errNegative = errors.New("must not be negative")

// setSmartDefaults replaces zero values with the built-in defaults
func (v *Validator) setSmartDefaults(cfg *Config) {
	def := Default()
	if cfg.Codec.MaxIndex == 0 {
		cfg.Codec.MaxIndex = def.Codec.MaxIndex
	}
	if cfg.Codec.LoadConcurrency == 0 {
		cfg.Codec.LoadConcurrency = def.Codec.LoadConcurrency
	}
	if cfg.Fuzzy.Algorithm == "" {
		cfg.Fuzzy.Algorithm = def.Fuzzy.Algorithm
	}
	if cfg.Stemming.Algorithm == "" {
		cfg.Stemming.Algorithm = def.Stemming.Algorithm
	}
	if cfg.Tokenizer.CacheSize == 0 {
		cfg.Tokenizer.CacheSize = def.Tokenizer.CacheSize
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = def.Watch.DebounceMs
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
