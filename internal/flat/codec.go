package flat

import (
	"errors"
	"strconv"
	"strings"

	"github.com/standardbeagle/flatq/internal/debug"
	flqerrors "github.com/standardbeagle/flatq/internal/errors"
	"github.com/standardbeagle/flatq/internal/tree"
)

var (
	errScalarRoot = errors.New("root must be an object or array")
	errEmptyKey   = errors.New("empty object key")
	errKeyHasSep  = errors.New("object key contains the separator")
)

// Options configures a Codec.
type Options struct {
	// Separator joins path segments. Defaults to DefaultSeparator.
	Separator string
	// PreserveEmpty emits empty objects and arrays as leaves instead of dropping them.
	PreserveEmpty bool
	// Strict turns silent information loss into errors: keys containing the
	// separator while flattening, and fields dropped by array coercion while
	// inflating.
	Strict bool
	// MaxIndex bounds array indices accepted by Inflate. Defaults to DefaultMaxIndex.
	MaxIndex int
}

// DefaultOptions returns the options the package-level helpers use.
func DefaultOptions() Options {
	return Options{Separator: DefaultSeparator, MaxIndex: DefaultMaxIndex}
}

// Codec converts between nested trees and flat maps.
type Codec struct {
	opts Options
}

// New validates opts and returns a Codec.
func New(opts Options) (*Codec, error) {
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}
	if err := ValidateSeparator(opts.Separator); err != nil {
		return nil, err
	}
	if opts.MaxIndex <= 0 {
		opts.MaxIndex = DefaultMaxIndex
	}
	return &Codec{opts: opts}, nil
}

// Separator returns the separator in effect.
func (c *Codec) Separator() string { return c.opts.Separator }

// Options returns a copy of the codec's options.
func (c *Codec) Options() Options { return c.opts }

// Flatten walks root depth-first and records one entry per scalar leaf.
// Entries appear in document order.
func (c *Codec) Flatten(root *tree.Node) (*FlatMap, error) {
	if !root.IsContainer() {
		return nil, flqerrors.NewPathError("", -1, errScalarRoot)
	}
	out := NewFlatMap(0)
	if err := c.flatten(root, nil, out); err != nil {
		return nil, err
	}
	debug.LogCodec("flattened %d entries\n", out.Len())
	return out, nil
}

func (c *Codec) flatten(node *tree.Node, prefix []string, out *FlatMap) error {
	if node == nil {
		node = tree.Null()
	}
	switch node.Kind {
	case tree.ObjectKind:
		if len(node.Fields) == 0 {
			c.emitEmpty(node, prefix, out)
			return nil
		}
		for _, f := range node.Fields {
			if f.Key == "" {
				return flqerrors.NewPathError(strings.Join(prefix, c.opts.Separator), len(prefix), errEmptyKey)
			}
			if c.opts.Strict && strings.Contains(f.Key, c.opts.Separator) {
				return flqerrors.NewPathError(strings.Join(append(prefix, f.Key), c.opts.Separator), len(prefix), errKeyHasSep)
			}
			if err := c.flatten(f.Value, append(prefix, f.Key), out); err != nil {
				return err
			}
		}
	case tree.ArrayKind:
		if len(node.Values) == 0 {
			c.emitEmpty(node, prefix, out)
			return nil
		}
		for i, v := range node.Values {
			if err := c.flatten(v, append(prefix, strconv.Itoa(i)), out); err != nil {
				return err
			}
		}
	default:
		out.Set(strings.Join(prefix, c.opts.Separator), node)
	}
	return nil
}

func (c *Codec) emitEmpty(node *tree.Node, prefix []string, out *FlatMap) {
	if !c.opts.PreserveEmpty || len(prefix) == 0 {
		return
	}
	out.Set(strings.Join(prefix, c.opts.Separator), node.Clone())
}

// InflateResult carries the rebuilt tree and any fields that array
// coercion had to drop.
type InflateResult struct {
	Tree    *tree.Node
	Dropped []DroppedField
}

// Inflate rebuilds a nested tree from m, applying entries in order.
func (c *Codec) Inflate(m *FlatMap) (*tree.Node, error) {
	res, err := c.InflateReport(m)
	if err != nil {
		return nil, err
	}
	return res.Tree, nil
}

// InflateReport is Inflate that also returns what coercion dropped.
// In strict mode any drop is a CoercionError.
func (c *Codec) InflateReport(m *FlatMap) (*InflateResult, error) {
	b := &Builder{Separator: c.opts.Separator, MaxIndex: c.opts.MaxIndex}
	root := tree.NewObject()

	for path, value := range m.All() {
		segs := strings.Split(path, c.opts.Separator)
		next, err := b.SetPath(root, segs, value)
		if err != nil {
			return nil, err
		}
		root = next
	}

	if len(b.Dropped) > 0 {
		debug.LogCodec("inflate dropped %d fields during array coercion\n", len(b.Dropped))
		if c.opts.Strict {
			d := b.Dropped[0]
			keys := make([]string, 0, len(b.Dropped))
			for _, f := range b.Dropped {
				if f.Path == d.Path {
					keys = append(keys, f.Key)
				}
			}
			return nil, flqerrors.NewCoercionError(d.Path, keys)
		}
	}
	return &InflateResult{Tree: root, Dropped: b.Dropped}, nil
}

// Flatten flattens root with sep and default options.
func Flatten(root *tree.Node, sep string) (*FlatMap, error) {
	if err := ValidateSeparator(sep); err != nil {
		return nil, err
	}
	c, err := New(Options{Separator: sep})
	if err != nil {
		return nil, err
	}
	return c.Flatten(root)
}

// Inflate rebuilds a tree from m with sep and default options.
func Inflate(m *FlatMap, sep string) (*tree.Node, error) {
	if err := ValidateSeparator(sep); err != nil {
		return nil, err
	}
	c, err := New(Options{Separator: sep})
	if err != nil {
		return nil, err
	}
	return c.Inflate(m)
}
