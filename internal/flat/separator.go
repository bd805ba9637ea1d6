package flat

import (
	"slices"
	"unicode/utf8"

	flqerrors "github.com/standardbeagle/flatq/internal/errors"
)

// DefaultSeparator joins path segments unless configured otherwise.
const DefaultSeparator = "."

// ValidateSeparator rejects separators that would collide with typical
// scalar content: the reserved set, the empty string, and anything longer
// than one character.
func ValidateSeparator(sep string) error {
	if slices.Contains(flqerrors.ReservedSeparators, sep) {
		return flqerrors.NewSeparatorError(sep, "reserved character")
	}
	if sep == "" {
		return flqerrors.NewSeparatorError(sep, "empty separator")
	}
	if utf8.RuneCountInString(sep) != 1 {
		return flqerrors.NewSeparatorError(sep, "separator must be a single character")
	}
	return nil
}
