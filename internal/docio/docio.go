// Package docio reads and writes the documents flatq operates on. JSON
// keeps key order, YAML keeps mapping order, and TOML tables come back with
// sorted keys since the decoder does not expose their order.
package docio

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/flatq/internal/debug"
	flqerrors "github.com/standardbeagle/flatq/internal/errors"
	"github.com/standardbeagle/flatq/internal/security"
	"github.com/standardbeagle/flatq/internal/tree"
)

// Format is a document serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// DefaultLoadConcurrency bounds LoadAll when no limit is given.
const DefaultLoadConcurrency = 8

// ParseFormat maps a user-supplied name onto a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unknown format %q (want json, yaml or toml)", name)
}

// DetectFormat picks a format from the file extension, defaulting to JSON.
func DetectFormat(path string) Format {
	if f, err := ParseFormat(filepath.Ext(path)); err == nil {
		return f
	}
	return FormatJSON
}

// Document is a decoded file.
type Document struct {
	Path   string
	Format Format
	Root   *tree.Node
}

// Decode parses data in the given format.
func Decode(data []byte, format Format) (*tree.Node, error) {
	switch format {
	case FormatJSON, "":
		return tree.ParseJSON(data)
	case FormatYAML:
		var v any
		if err := yaml.UnmarshalWithOptions(data, &v, yaml.UseOrderedMap()); err != nil {
			return nil, err
		}
		return fromYAML(v)
	case FormatTOML:
		var v map[string]any
		if err := toml.Unmarshal(data, &v); err != nil {
			return nil, err
		}
		return tree.FromAny(v)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// fromYAML converts goccy's ordered decoding into a tree.
func fromYAML(v any) (*tree.Node, error) {
	switch x := v.(type) {
	case yaml.MapSlice:
		obj := tree.NewObject()
		for _, item := range x {
			child, err := fromYAML(item.Value)
			if err != nil {
				return nil, fmt.Errorf("key %v: %w", item.Key, err)
			}
			obj.Set(fmt.Sprint(item.Key), child)
		}
		return obj, nil
	case []any:
		arr := tree.NewArray()
		for i, e := range x {
			child, err := fromYAML(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			arr.Append(child)
		}
		return arr, nil
	case map[string]any:
		obj := tree.NewObject()
		for _, k := range slices.Sorted(maps.Keys(x)) {
			child, err := fromYAML(x[k])
			if err != nil {
				return nil, fmt.Errorf("key %s: %w", k, err)
			}
			obj.Set(k, child)
		}
		return obj, nil
	}
	return tree.FromAny(v)
}

// Load reads and decodes one file. The format comes from the extension.
func Load(path string) (*Document, error) {
	return LoadAs(path, DetectFormat(path))
}

// DefaultValidationThresholdKB is the size above which a file's header is
// screened before the whole file is read.
const DefaultValidationThresholdKB = 256

// Validator screens files before LoadAs reads them.
var Validator = security.NewFileValidator(DefaultValidationThresholdKB)

// LoadAs reads and decodes one file in an explicit format.
func LoadAs(path string, format Format) (*Document, error) {
	if err := Validator.Validate(path, string(format)); err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, flqerrors.NewFileError("read", path, err)
		}
		return nil, flqerrors.NewDecodeError(path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, flqerrors.NewFileError("read", path, err)
	}
	root, err := Decode(data, format)
	if err != nil {
		return nil, flqerrors.NewDecodeError(path, err)
	}
	debug.LogDocIO("loaded %s as %s", path, format)
	return &Document{Path: path, Format: format, Root: root}, nil
}

// LoadAll loads paths concurrently, at most limit at a time, and returns
// the documents in argument order. The first failure cancels the rest.
func LoadAll(ctx context.Context, paths []string, limit int) ([]*Document, error) {
	if limit <= 0 {
		limit = DefaultLoadConcurrency
	}
	docs := make([]*Document, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			doc, err := Load(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}
