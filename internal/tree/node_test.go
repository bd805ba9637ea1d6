package tree

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSONKeepsOrder(t *testing.T) {
	n, err := ParseJSON([]byte(`{"zeta": 1, "alpha": [true, null, "x"], "mid": {"b": 2.50, "a": -1e3}}`))
	require.NoError(t, err)

	require.Equal(t, ObjectKind, n.Kind)
	keys := make([]string, 0, len(n.Fields))
	for _, f := range n.Fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, keys)

	mid, ok := n.Get("mid")
	require.True(t, ok)
	b, _ := mid.Get("b")
	assert.Equal(t, "2.50", b.Number, "number literal kept verbatim")

	assert.Equal(t, `{"zeta":1,"alpha":[true,null,"x"],"mid":{"b":2.50,"a":-1e3}}`, n.Text())
}

func TestParseJSONInvalid(t *testing.T) {
	_, err := ParseJSON([]byte(`{"a":`))
	assert.ErrorIs(t, err, ErrInvalidJSON)
}

func TestTextScalars(t *testing.T) {
	tests := []struct {
		node *Node
		want string
	}{
		{Null(), "null"},
		{Bool(true), "true"},
		{Bool(false), "false"},
		{Int(42), "42"},
		{Float(1.5), "1.5"},
		{String("hello world"), "hello world"},
		{NewArray(Int(1), String("a")), `[1,"a"]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.node.Text())
	}
}

func TestEqual(t *testing.T) {
	a := MustParseJSON(`{"a": [1, {"b": "x"}], "c": null}`)
	b := MustParseJSON(`{"a": [1.0, {"b": "x"}], "c": null}`)
	reordered := MustParseJSON(`{"c": null, "a": [1, {"b": "x"}]}`)

	assert.True(t, a.Equal(b), "numerically equal literals compare equal")
	assert.False(t, a.Equal(reordered), "field order is significant")
	assert.False(t, a.Equal(MustParseJSON(`{"a": [1], "c": null}`)))
	assert.True(t, (*Node)(nil).Equal(nil))
	assert.False(t, a.Equal(nil))

	// go-cmp picks up the Equal method
	assert.Empty(t, cmp.Diff(a, b))
}

func TestFingerprint(t *testing.T) {
	a := MustParseJSON(`{"a": [1, {"b": "x"}], "c": null}`)
	b := MustParseJSON(`{"a": [1.0, {"b": "x"}], "c": null}`)
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	tests := []string{
		`{"c": null, "a": [1, {"b": "x"}]}`,
		`{"a": [1, {"b": "y"}], "c": null}`,
		`{"a": [1, {"b": "x"}], "c": false}`,
		`{"a": ["1", {"b": "x"}], "c": null}`,
	}
	for _, src := range tests {
		assert.NotEqual(t, a.Fingerprint(), MustParseJSON(src).Fingerprint(), src)
	}

	// adjacent strings cannot collide by shifting bytes between them
	assert.NotEqual(t,
		NewArray(String("ab"), String("c")).Fingerprint(),
		NewArray(String("a"), String("bc")).Fingerprint())
}

func TestSetReplacesInPlace(t *testing.T) {
	obj := NewObject(F("a", Int(1)), F("b", Int(2)))
	obj.Set("a", String("x"))
	obj.Set("c", Bool(true))

	assert.Equal(t, `{"a":"x","b":2,"c":true}`, obj.Text())
	assert.Equal(t, 3, obj.Len())
	assert.Equal(t, -1, obj.Lookup("missing"))
}

func TestClone(t *testing.T) {
	orig := MustParseJSON(`{"a": {"b": [1, 2]}}`)
	cp := orig.Clone()
	require.True(t, orig.Equal(cp))

	a, _ := cp.Get("a")
	bArr, _ := a.Get("b")
	bArr.Values[0] = String("changed")
	assert.False(t, orig.Equal(cp), "clone must not share children")
}

func TestFromAny(t *testing.T) {
	n, err := FromAny(map[string]any{
		"b": []any{1, 2.5, "x", nil},
		"a": json.Number("10"),
		"c": map[string]any{"z": true},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"a":10,"b":[1,2.5,"x",null],"c":{"z":true}}`, n.Text())

	ordered, err := FromAny([]Field{F("z", Int(1)), F("a", Int(2))})
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":2}`, ordered.Text())

	_, err = FromAny(struct{}{})
	assert.Error(t, err)
}

func TestInterface(t *testing.T) {
	n := MustParseJSON(`{"a": [1, 2.5, "s", true, null]}`)
	assert.Equal(t, map[string]any{
		"a": []any{int64(1), 2.5, "s", true, nil},
	}, n.Interface())
}

func TestMarshalUnmarshalJSON(t *testing.T) {
	var n Node
	require.NoError(t, json.Unmarshal([]byte(`{"y": "bee", "x": [1]}`), &n))

	out, err := json.Marshal(&n)
	require.NoError(t, err)
	assert.Equal(t, `{"y":"bee","x":[1]}`, string(out))
}
