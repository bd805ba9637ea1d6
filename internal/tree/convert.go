package tree

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"time"
)

// FromAny converts plain Go values into a tree. Maps are emitted with
// sorted keys since Go maps carry no order; use []Field or *Node to keep an
// explicit order.
func FromAny(v any) (*Node, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case *Node:
		if x == nil {
			return Null(), nil
		}
		return x, nil
	case Node:
		return &x, nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x), nil
	case json.Number:
		return Number(x.String()), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Number(strconv.FormatUint(uint64(x), 10)), nil
	case uint8:
		return Number(strconv.FormatUint(uint64(x), 10)), nil
	case uint16:
		return Number(strconv.FormatUint(uint64(x), 10)), nil
	case uint32:
		return Number(strconv.FormatUint(uint64(x), 10)), nil
	case uint64:
		return Number(strconv.FormatUint(x, 10)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case time.Time:
		return String(x.Format(time.RFC3339Nano)), nil
	case []Field:
		obj := NewObject()
		for _, f := range x {
			obj.Set(f.Key, f.Value)
		}
		return obj, nil
	case []any:
		arr := NewArray()
		for i, e := range x {
			child, err := FromAny(e)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			arr.Append(child)
		}
		return arr, nil
	case map[string]any:
		obj := NewObject()
		for _, k := range slices.Sorted(maps.Keys(x)) {
			child, err := FromAny(x[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			obj.Set(k, child)
		}
		return obj, nil
	case []string:
		arr := NewArray()
		for _, s := range x {
			arr.Append(String(s))
		}
		return arr, nil
	case fmt.Stringer:
		return String(x.String()), nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

// MustFromAny is FromAny for literals in tests and examples.
func MustFromAny(v any) *Node {
	n, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return n
}
