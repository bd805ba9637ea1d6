package security

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
)

// FileValidator screens document files before they are decoded. Files at
// or below ValidationThreshold are trusted; larger ones have their header
// checked so a binary file with a .json or .yaml name is rejected without
// reading it whole.
type FileValidator struct {
	ValidationThreshold int64 // Files larger than this are validated first
	HeaderSize          int64 // Size of header to read for validation
	MaxSize             int64 // Files larger than this are refused; 0 for no limit
}

// NewFileValidator creates a validator with a threshold in KB.
func NewFileValidator(thresholdKB int64) *FileValidator {
	return &FileValidator{
		ValidationThreshold: thresholdKB * 1024,
		HeaderSize:          64 * 1024,
	}
}

var (
	ErrBinary   = errors.New("file appears to be binary")
	ErrTooLarge = errors.New("file exceeds the maximum document size")
)

// Validate checks path for the given format ("json", "yaml" or "toml").
func (fv *FileValidator) Validate(path, format string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if fv.MaxSize > 0 && info.Size() > fv.MaxSize {
		return fmt.Errorf("%w (%d bytes, limit %d)", ErrTooLarge, info.Size(), fv.MaxSize)
	}
	if info.Size() <= fv.ValidationThreshold {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	header := make([]byte, fv.HeaderSize)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return fmt.Errorf("failed to read header: %w", err)
	}
	return fv.ValidateHeader(header[:n], format)
}

// ValidateHeader applies the content checks to the first bytes of a file.
func (fv *FileValidator) ValidateHeader(header []byte, format string) error {
	if kind := magicKind(header); kind != "" {
		return fmt.Errorf("%w: looks like %s, not %s", ErrBinary, kind, format)
	}
	if isBinaryData(header) {
		return ErrBinary
	}
	if format == "json" {
		return validateJSONStart(header)
	}
	return nil
}

var magicBytes = []struct {
	kind  string
	magic []byte
}{
	{"a PNG image", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	{"a JPEG image", []byte{0xFF, 0xD8, 0xFF}},
	{"a GIF image", []byte("GIF8")},
	{"a PDF", []byte("%PDF-")},
	{"a zip archive", []byte{0x50, 0x4B, 0x03, 0x04}},
	{"a gzip archive", []byte{0x1F, 0x8B}},
	{"an ELF executable", []byte{0x7F, 'E', 'L', 'F'}},
	{"a PE executable", []byte{0x4D, 0x5A}},
}

func magicKind(header []byte) string {
	for _, m := range magicBytes {
		if bytes.HasPrefix(header, m.magic) {
			return m.kind
		}
	}
	return ""
}

// isBinaryData reports whether more than 30% of data is control bytes.
func isBinaryData(data []byte) bool {
	if len(data) == 0 {
		return false
	}

	nonPrintable := 0
	for _, b := range data {
		if b < 9 || (b > 13 && b < 32) || b == 127 {
			nonPrintable++
		}
	}

	ratio := float64(nonPrintable) / float64(len(data))
	return ratio > 0.3
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// validateJSONStart checks that the first significant byte can begin a JSON value.
func validateJSONStart(header []byte) error {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(header, utf8BOM), " \t\r\n")
	if len(trimmed) == 0 {
		return nil
	}
	switch c := trimmed[0]; {
	case c == '{', c == '[', c == '"', c == '-', c >= '0' && c <= '9', c == 't', c == 'f', c == 'n':
		return nil
	default:
		return fmt.Errorf("content does not start like JSON (found %q)", c)
	}
}
