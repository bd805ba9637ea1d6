package tree

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrInvalidJSON is returned by ParseJSON for malformed input.
var ErrInvalidJSON = errors.New("invalid JSON")

// ParseJSON decodes a JSON document, keeping object keys in document order
// and number literals verbatim.
func ParseJSON(data []byte) (*Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	return fromResult(gjson.ParseBytes(data)), nil
}

// MustParseJSON is ParseJSON for test fixtures.
func MustParseJSON(s string) *Node {
	n, err := ParseJSON([]byte(s))
	if err != nil {
		panic(fmt.Sprintf("tree.MustParseJSON(%q): %v", s, err))
	}
	return n
}

func fromResult(r gjson.Result) *Node {
	switch {
	case r.IsObject():
		obj := NewObject()
		r.ForEach(func(key, value gjson.Result) bool {
			// duplicate keys keep the first position and the last value
			obj.Set(key.String(), fromResult(value))
			return true
		})
		return obj
	case r.IsArray():
		arr := NewArray()
		r.ForEach(func(_, value gjson.Result) bool {
			arr.Append(fromResult(value))
			return true
		})
		return arr
	}
	switch r.Type {
	case gjson.True:
		return Bool(true)
	case gjson.False:
		return Bool(false)
	case gjson.Number:
		return Number(r.Raw)
	case gjson.String:
		return String(r.Str)
	}
	return Null()
}

// MarshalJSON encodes the node with object fields in order.
func (n *Node) MarshalJSON() ([]byte, error) {
	return AppendJSON(nil, n), nil
}

// UnmarshalJSON decodes into n, preserving key order.
func (n *Node) UnmarshalJSON(data []byte) error {
	parsed, err := ParseJSON(data)
	if err != nil {
		return err
	}
	*n = *parsed
	return nil
}

// AppendJSON appends the compact JSON encoding of n to dst.
func AppendJSON(dst []byte, n *Node) []byte {
	if n == nil {
		return append(dst, "null"...)
	}
	switch n.Kind {
	case BoolKind:
		if n.Bool {
			return append(dst, "true"...)
		}
		return append(dst, "false"...)
	case NumberKind:
		if n.Number == "" {
			return append(dst, '0')
		}
		return append(dst, n.Number...)
	case StringKind:
		return AppendString(dst, n.String)
	case ArrayKind:
		dst = append(dst, '[')
		for i, v := range n.Values {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendJSON(dst, v)
		}
		return append(dst, ']')
	case ObjectKind:
		dst = append(dst, '{')
		for i, f := range n.Fields {
			if i > 0 {
				dst = append(dst, ',')
			}
			dst = AppendString(dst, f.Key)
			dst = append(dst, ':')
			dst = AppendJSON(dst, f.Value)
		}
		return append(dst, '}')
	}
	return append(dst, "null"...)
}

// AppendString appends s as a quoted JSON string.
func AppendString(dst []byte, s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return append(dst, bytes.TrimSuffix(buf.Bytes(), []byte("\n"))...)
}

func compactJSON(n *Node) string {
	return string(AppendJSON(nil, n))
}
