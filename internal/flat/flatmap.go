package flat

import (
	"fmt"
	"iter"

	"github.com/standardbeagle/flatq/internal/tree"
)

// Entry is one path -> scalar pair of a FlatMap.
type Entry struct {
	Path  string
	Value *tree.Node
}

// FlatMap is an insertion-ordered mapping of serialized paths to scalars.
// Order matters: ranking breaks ties by it.
type FlatMap struct {
	entries []Entry
	index   map[string]int
}

// NewFlatMap creates an empty map with room for capacity entries.
func NewFlatMap(capacity int) *FlatMap {
	return &FlatMap{
		entries: make([]Entry, 0, capacity),
		index:   make(map[string]int, capacity),
	}
}

// FlatMapOf builds a map from alternating path/value pairs, for tests and literals.
func FlatMapOf(pairs ...any) *FlatMap {
	if len(pairs)%2 != 0 {
		panic("flat.FlatMapOf: odd number of arguments")
	}
	m := NewFlatMap(len(pairs) / 2)
	for i := 0; i < len(pairs); i += 2 {
		path, ok := pairs[i].(string)
		if !ok {
			panic(fmt.Sprintf("flat.FlatMapOf: path %v is %T, not string", pairs[i], pairs[i]))
		}
		m.Set(path, tree.MustFromAny(pairs[i+1]))
	}
	return m
}

// Set stores value under path. An existing path keeps its position.
func (m *FlatMap) Set(path string, value *tree.Node) {
	if value == nil {
		value = tree.Null()
	}
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[path]; ok {
		m.entries[i].Value = value
		return
	}
	m.index[path] = len(m.entries)
	m.entries = append(m.entries, Entry{Path: path, Value: value})
}

func (m *FlatMap) Get(path string) (*tree.Node, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[path]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Delete removes path, preserving the order of the remaining entries.
func (m *FlatMap) Delete(path string) bool {
	if m == nil {
		return false
	}
	i, ok := m.index[path]
	if !ok {
		return false
	}
	m.entries = append(m.entries[:i], m.entries[i+1:]...)
	delete(m.index, path)
	for j := i; j < len(m.entries); j++ {
		m.index[m.entries[j].Path] = j
	}
	return true
}

func (m *FlatMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Keys returns the paths in order.
func (m *FlatMap) Keys() []string {
	keys := make([]string, 0, m.Len())
	for path := range m.All() {
		keys = append(keys, path)
	}
	return keys
}

// Entries returns a copy of the entries in order.
func (m *FlatMap) Entries() []Entry {
	if m == nil {
		return nil
	}
	return append([]Entry(nil), m.entries...)
}

// At returns the i-th entry.
func (m *FlatMap) At(i int) Entry {
	return m.entries[i]
}

// All iterates entries in order.
func (m *FlatMap) All() iter.Seq2[string, *tree.Node] {
	return func(yield func(string, *tree.Node) bool) {
		if m == nil {
			return
		}
		for _, e := range m.entries {
			if !yield(e.Path, e.Value) {
				return
			}
		}
	}
}

// Clone copies the map; values are shared since scalars are immutable by convention.
func (m *FlatMap) Clone() *FlatMap {
	out := NewFlatMap(m.Len())
	for path, v := range m.All() {
		out.Set(path, v)
	}
	return out
}

// Equal reports whether both maps hold the same entries in the same order.
func (m *FlatMap) Equal(o *FlatMap) bool {
	if m.Len() != o.Len() {
		return false
	}
	for i := 0; i < m.Len(); i++ {
		a, b := m.entries[i], o.entries[i]
		if a.Path != b.Path || !a.Value.Equal(b.Value) {
			return false
		}
	}
	return true
}

// Tree returns the map as a single-level object node.
func (m *FlatMap) Tree() *tree.Node {
	obj := tree.NewObject()
	for path, v := range m.All() {
		obj.Fields = append(obj.Fields, tree.Field{Key: path, Value: v})
	}
	return obj
}

// FromObject reads a flat document: an object whose members are path -> value.
func FromObject(obj *tree.Node) (*FlatMap, error) {
	if obj == nil || obj.Kind != tree.ObjectKind {
		return nil, fmt.Errorf("flat document must be an object")
	}
	m := NewFlatMap(len(obj.Fields))
	for _, f := range obj.Fields {
		m.Set(f.Key, f.Value)
	}
	return m, nil
}

// MarshalJSON encodes the map as a JSON object in entry order.
func (m *FlatMap) MarshalJSON() ([]byte, error) {
	return tree.AppendJSON(nil, m.Tree()), nil
}

// UnmarshalJSON decodes a JSON object into the map, keeping member order.
func (m *FlatMap) UnmarshalJSON(data []byte) error {
	n, err := tree.ParseJSON(data)
	if err != nil {
		return err
	}
	parsed, err := FromObject(n)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}
