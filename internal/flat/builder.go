package flat

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	flqerrors "github.com/standardbeagle/flatq/internal/errors"
	"github.com/standardbeagle/flatq/internal/tree"
)

// DefaultMaxIndex bounds the array index a single path may address so a
// hostile key like "a.999999999" cannot allocate an enormous array.
const DefaultMaxIndex = 1 << 20

var (
	errEmptySegment  = errors.New("empty segment")
	errIndexTooLarge = errors.New("array index too large")
)

// isIndex reports whether seg is made only of ASCII decimal digits.
func isIndex(seg string) bool {
	if seg == "" {
		return false
	}
	for i := 0; i < len(seg); i++ {
		if seg[i] < '0' || seg[i] > '9' {
			return false
		}
	}
	return true
}

// placeholder fills array slots that no path has written yet. Slots on the
// way to a deeper key start as empty objects, terminal slots as null.
func placeholder(terminal bool) *tree.Node {
	if terminal {
		return tree.Null()
	}
	return tree.NewObject()
}

// emptyContainerFor returns the container shape implied by the next segment.
func emptyContainerFor(next string) *tree.Node {
	if isIndex(next) {
		return tree.NewArray()
	}
	return tree.NewObject()
}

// Coercion is the outcome of turning an object into an array.
type Coercion struct {
	Array   *tree.Node
	Dropped []tree.Field
}

// CoerceToArray converts obj into an array long enough to hold index.
// Fields whose key is an array index move to that slot; every other field
// is dropped and reported. This is the one lossy step of inflation.
func CoerceToArray(obj *tree.Node, index int, terminal bool) Coercion {
	size := max(index+1, obj.Len())
	arr := &tree.Node{Kind: tree.ArrayKind, Values: make([]*tree.Node, size)}
	for i := range arr.Values {
		arr.Values[i] = placeholder(terminal)
	}

	var dropped []tree.Field
	for _, f := range obj.Fields {
		if !isIndex(f.Key) {
			dropped = append(dropped, f)
			continue
		}
		i, err := strconv.Atoi(f.Key)
		if err != nil || i > DefaultMaxIndex {
			dropped = append(dropped, f)
			continue
		}
		for len(arr.Values) <= i {
			arr.Values = append(arr.Values, placeholder(terminal))
		}
		arr.Values[i] = f.Value
	}
	return Coercion{Array: arr, Dropped: dropped}
}

// CoerceToObject converts arr into an object keyed by each element's index.
// Nothing is lost.
func CoerceToObject(arr *tree.Node) *tree.Node {
	obj := &tree.Node{Kind: tree.ObjectKind, Fields: make([]tree.Field, len(arr.Values))}
	for i, v := range arr.Values {
		obj.Fields[i] = tree.Field{Key: strconv.Itoa(i), Value: v}
	}
	return obj
}

// DroppedField records an object field lost to CoerceToArray.
type DroppedField struct {
	// Path of the object that was coerced.
	Path  string
	Key   string
	Value *tree.Node
}

// Builder inserts path/value pairs into a working tree, deciding lazily
// whether each container is an object or an array.
type Builder struct {
	Separator string
	MaxIndex  int
	Dropped   []DroppedField
}

// NewBuilder creates a builder that reports paths joined with sep.
func NewBuilder(sep string) *Builder {
	return &Builder{Separator: sep, MaxIndex: DefaultMaxIndex}
}

// SetPath writes value at segments below node and returns the node to bind
// in its parent. The returned node may differ from the one passed in when
// a coercion replaced it.
func (b *Builder) SetPath(node *tree.Node, segments []string, value *tree.Node) (*tree.Node, error) {
	if len(segments) == 0 {
		return nil, flqerrors.NewPathError("", -1, errEmptySegment)
	}
	for i, seg := range segments {
		if seg == "" {
			return nil, flqerrors.NewPathError(strings.Join(segments, b.Separator), i, errEmptySegment)
		}
	}
	if node == nil {
		node = tree.NewObject()
	}
	return b.setPath(node, segments, 0, value)
}

func (b *Builder) setPath(node *tree.Node, segs []string, i int, value *tree.Node) (*tree.Node, error) {
	seg := segs[i]
	terminal := i == len(segs)-1

	if isIndex(seg) {
		idx, err := strconv.Atoi(seg)
		if err != nil || idx > b.maxIndex() {
			return nil, flqerrors.NewPathError(strings.Join(segs, b.Separator), i, errIndexTooLarge)
		}

		switch node.Kind {
		case tree.ArrayKind:
			for len(node.Values) <= idx {
				node.Values = append(node.Values, placeholder(terminal))
			}
		case tree.ObjectKind:
			c := CoerceToArray(node, idx, terminal)
			b.recordDrops(segs[:i], c.Dropped)
			node = c.Array
		default:
			node = CoerceToArray(tree.NewObject(), idx, terminal).Array
		}

		if terminal {
			node.Values[idx] = ownValue(value)
			return node, nil
		}
		child := prepareChild(node.Values[idx], segs[i+1])
		child, err = b.setPath(child, segs, i+1, value)
		if err != nil {
			return nil, err
		}
		node.Values[idx] = child
		return node, nil
	}

	switch node.Kind {
	case tree.ObjectKind:
	case tree.ArrayKind:
		node = CoerceToObject(node)
	default:
		node = tree.NewObject()
	}

	if terminal {
		node.Set(seg, ownValue(value))
		return node, nil
	}
	existing, _ := node.Get(seg)
	child, err := b.setPath(prepareChild(existing, segs[i+1]), segs, i+1, value)
	if err != nil {
		return nil, err
	}
	node.Set(seg, child)
	return node, nil
}

// ownValue copies container values so later paths that descend into them
// never write through to the caller's map.
func ownValue(v *tree.Node) *tree.Node {
	if v.IsContainer() {
		return v.Clone()
	}
	return v
}

// prepareChild keeps an existing container (the recursion coerces its shape
// if needed) and replaces anything else with the shape next implies.
func prepareChild(child *tree.Node, next string) *tree.Node {
	if child.IsContainer() {
		return child
	}
	return emptyContainerFor(next)
}

func (b *Builder) recordDrops(prefix []string, dropped []tree.Field) {
	if len(dropped) == 0 {
		return
	}
	path := strings.Join(prefix, b.Separator)
	for _, f := range dropped {
		b.Dropped = append(b.Dropped, DroppedField{Path: path, Key: f.Key, Value: f.Value})
	}
}

func (b *Builder) maxIndex() int {
	if b.MaxIndex <= 0 {
		return DefaultMaxIndex
	}
	return b.MaxIndex
}

func (d DroppedField) String() string {
	if d.Path == "" {
		return fmt.Sprintf("%s (root)", d.Key)
	}
	return d.Path + " -> " + d.Key
}
