// Package tree is the in-memory document model shared by the codec and the
// search engine: a tagged Node that is a scalar, an ordered object, or an
// array. Object fields keep insertion order because flattening, and therefore
// search tie-breaking, follows it.
package tree

import (
	"fmt"
	"math"
	"strconv"
)

// Kind tags what a Node holds.
type Kind uint8

const (
	NullKind Kind = iota
	BoolKind
	NumberKind
	StringKind
	ArrayKind
	ObjectKind
)

var kindNames = [...]string{
	NullKind:   "null",
	BoolKind:   "bool",
	NumberKind: "number",
	StringKind: "string",
	ArrayKind:  "array",
	ObjectKind: "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Field is one key/value entry of an object.
type Field struct {
	Key   string
	Value *Node
}

// Node is a tree node. Only the members matching Kind are meaningful.
// Number holds the literal text so that formatting survives a round trip.
type Node struct {
	Kind   Kind
	Bool   bool
	Number string
	String string
	Fields []Field
	Values []*Node
}

func Null() *Node { return &Node{Kind: NullKind} }

func Bool(v bool) *Node { return &Node{Kind: BoolKind, Bool: v} }

func String(v string) *Node { return &Node{Kind: StringKind, String: v} }

// Number creates a number node from its literal text.
func Number(literal string) *Node { return &Node{Kind: NumberKind, Number: literal} }

func Int(v int64) *Node { return Number(strconv.FormatInt(v, 10)) }

// Float creates a number node using the shortest representation of v.
// NaN and infinities have no literal form and become null.
func Float(v float64) *Node {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Null()
	}
	return Number(strconv.FormatFloat(v, 'g', -1, 64))
}

// NewObject creates an object from fields in order.
func NewObject(fields ...Field) *Node {
	n := &Node{Kind: ObjectKind, Fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		n.Set(f.Key, f.Value)
	}
	return n
}

func NewArray(values ...*Node) *Node {
	return &Node{Kind: ArrayKind, Values: append([]*Node{}, values...)}
}

// F is shorthand for building object fields.
func F(key string, value *Node) Field { return Field{Key: key, Value: value} }

func (n *Node) IsContainer() bool {
	return n != nil && (n.Kind == ObjectKind || n.Kind == ArrayKind)
}

func (n *Node) IsScalar() bool { return !n.IsContainer() }

// Len returns the number of fields or elements; scalars have length 0.
func (n *Node) Len() int {
	if n == nil {
		return 0
	}
	switch n.Kind {
	case ObjectKind:
		return len(n.Fields)
	case ArrayKind:
		return len(n.Values)
	}
	return 0
}

// Lookup returns the position of key in an object, or -1.
func (n *Node) Lookup(key string) int {
	for i := range n.Fields {
		if n.Fields[i].Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value of key in an object.
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind != ObjectKind {
		return nil, false
	}
	if i := n.Lookup(key); i >= 0 {
		return n.Fields[i].Value, true
	}
	return nil, false
}

// Set replaces the value of an existing key in place or appends a new field.
func (n *Node) Set(key string, value *Node) {
	if value == nil {
		value = Null()
	}
	if i := n.Lookup(key); i >= 0 {
		n.Fields[i].Value = value
		return
	}
	n.Fields = append(n.Fields, Field{Key: key, Value: value})
}

// Index returns element i of an array.
func (n *Node) Index(i int) (*Node, bool) {
	if n.Kind != ArrayKind || i < 0 || i >= len(n.Values) {
		return nil, false
	}
	return n.Values[i], true
}

func (n *Node) Append(values ...*Node) {
	n.Values = append(n.Values, values...)
}

// Text stringifies a scalar for matching and display. Containers render as
// their compact JSON form.
func (n *Node) Text() string {
	if n == nil {
		return "null"
	}
	switch n.Kind {
	case NullKind:
		return "null"
	case BoolKind:
		return strconv.FormatBool(n.Bool)
	case NumberKind:
		return n.Number
	case StringKind:
		return n.String
	}
	return compactJSON(n)
}

// Float64 parses the number literal.
func (n *Node) Float64() (float64, bool) {
	if n.Kind != NumberKind {
		return 0, false
	}
	f, err := strconv.ParseFloat(n.Number, 64)
	return f, err == nil
}

// Equal reports deep structural equality. Object field order is significant.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case NullKind:
		return true
	case BoolKind:
		return n.Bool == o.Bool
	case NumberKind:
		if n.Number == o.Number {
			return true
		}
		a, okA := n.Float64()
		b, okB := o.Float64()
		return okA && okB && a == b
	case StringKind:
		return n.String == o.String
	case ArrayKind:
		if len(n.Values) != len(o.Values) {
			return false
		}
		for i := range n.Values {
			if !n.Values[i].Equal(o.Values[i]) {
				return false
			}
		}
		return true
	case ObjectKind:
		if len(n.Fields) != len(o.Fields) {
			return false
		}
		for i := range n.Fields {
			if n.Fields[i].Key != o.Fields[i].Key || !n.Fields[i].Value.Equal(o.Fields[i].Value) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	dst := &Node{Kind: n.Kind, Bool: n.Bool, Number: n.Number, String: n.String}
	if n.Fields != nil {
		dst.Fields = make([]Field, len(n.Fields))
		for i, f := range n.Fields {
			dst.Fields[i] = Field{Key: f.Key, Value: f.Value.Clone()}
		}
	}
	if n.Values != nil {
		dst.Values = make([]*Node, len(n.Values))
		for i, v := range n.Values {
			dst.Values[i] = v.Clone()
		}
	}
	return dst
}

// Interface converts the node to plain Go values: nil, bool, float64 (or
// int64 when the literal is integral), string, []any and map[string]any.
// Object order is lost.
func (n *Node) Interface() any {
	switch n.Kind {
	case BoolKind:
		return n.Bool
	case NumberKind:
		if i, err := strconv.ParseInt(n.Number, 10, 64); err == nil {
			return i
		}
		f, _ := n.Float64()
		return f
	case StringKind:
		return n.String
	case ArrayKind:
		out := make([]any, len(n.Values))
		for i, v := range n.Values {
			out[i] = v.Interface()
		}
		return out
	case ObjectKind:
		out := make(map[string]any, len(n.Fields))
		for _, f := range n.Fields {
			out[f.Key] = f.Value.Interface()
		}
		return out
	}
	return nil
}

// GoString renders the node for test failure messages.
func (n *Node) GoString() string {
	return fmt.Sprintf("tree.Node(%s)", n.Text())
}
