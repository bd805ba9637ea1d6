package docio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flqerrors "github.com/standardbeagle/flatq/internal/errors"
	"github.com/standardbeagle/flatq/internal/security"
	"github.com/standardbeagle/flatq/internal/tree"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFormats(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		want    string
	}{
		{
			name:    "json keeps order",
			file:    "doc.json",
			content: `{"zeta": 1, "alpha": {"b": [true, null]}}`,
			want:    `{"zeta":1,"alpha":{"b":[true,null]}}`,
		},
		{
			name:    "yaml keeps order",
			file:    "doc.yaml",
			content: "b: 1\na:\n  - x\n  - true\n  - null\nc:\n  z: 2.5\n",
			want:    `{"b":1,"a":["x",true,null],"c":{"z":2.5}}`,
		},
		{
			name:    "yml extension",
			file:    "doc.yml",
			content: "list:\n  - name: ann\n    age: -3\n",
			want:    `{"list":[{"name":"ann","age":-3}]}`,
		},
		{
			name:    "toml sorts keys",
			file:    "doc.toml",
			content: "title = \"t\"\n[owner]\nname = \"ann\"\nage = 3\n",
			want:    `{"owner":{"age":3,"name":"ann"},"title":"t"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Load(writeFile(t, dir, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Root.Text())
			assert.Equal(t, DetectFormat(tt.file), doc.Format)
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.json"))
	var fe *flqerrors.FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, flqerrors.ErrorTypeFileNotFound, fe.Type)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = Load(writeFile(t, dir, "bad.json", `{"a":`))
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, flqerrors.ErrorTypeDecode, fe.Type)
	assert.ErrorIs(t, err, tree.ErrInvalidJSON)

	_, err = Load(writeFile(t, dir, "bad.toml", "= nope"))
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, flqerrors.ErrorTypeDecode, fe.Type)
}

func TestLoadRejectsBinary(t *testing.T) {
	dir := t.TempDir()
	blob := append([]byte{0x1F, 0x8B, 0x08}, make([]byte, (DefaultValidationThresholdKB+1)*1024)...)
	path := filepath.Join(dir, "archive.json")
	require.NoError(t, os.WriteFile(path, blob, 0o644))

	_, err := Load(path)
	var fe *flqerrors.FileError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, flqerrors.ErrorTypeDecode, fe.Type)
	assert.ErrorIs(t, err, security.ErrBinary)
}

func TestLoadAllKeepsArgumentOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := 0; i < 6; i++ {
		paths = append(paths, writeFile(t, dir, fmt.Sprintf("f%d.json", i), fmt.Sprintf(`{"n": %d}`, i)))
	}

	docs, err := LoadAll(context.Background(), paths, 2)
	require.NoError(t, err)
	require.Len(t, docs, len(paths))
	for i, doc := range docs {
		assert.Equal(t, paths[i], doc.Path)
		assert.Equal(t, fmt.Sprintf(`{"n":%d}`, i), doc.Root.Text())
	}

	_, err = LoadAll(context.Background(), append(paths, filepath.Join(dir, "nope.json")), 0)
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	for name, want := range map[string]Format{"json": FormatJSON, ".YML": FormatYAML, "yaml": FormatYAML, "toml": FormatTOML} {
		got, err := ParseFormat(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
	assert.Equal(t, FormatJSON, DetectFormat("noext"))
}

func TestEncodeJSON(t *testing.T) {
	n := tree.MustParseJSON(`{"b": 1, "a": [true]}`)

	assert.Equal(t, `{"b":1,"a":[true]}`, string(EncodeJSON(n, EncodeOptions{})))
	assert.Equal(t, "{\n  \"b\": 1,\n  \"a\": [true]\n}\n", string(EncodeJSON(n, EncodeOptions{Pretty: true})))
	assert.Contains(t, string(EncodeJSON(n, EncodeOptions{Color: true})), "\x1b[")
}

func TestEncodeYAMLRoundTrip(t *testing.T) {
	n := tree.MustParseJSON(`{"zeta": 1, "alpha": {"list": [true, null, "x"]}, "f": 2.5}`)

	out, err := EncodeYAML(n)
	require.NoError(t, err)

	back, err := Decode(out, FormatYAML)
	require.NoError(t, err)
	assert.True(t, n.Equal(back), "yaml:\n%s\ngot %s", out, back.Text())
}

func TestWrite(t *testing.T) {
	n := tree.MustParseJSON(`{"a": 1}`)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, n, FormatJSON, EncodeOptions{}))
	assert.Equal(t, "{\"a\":1}\n", buf.String())

	buf.Reset()
	require.NoError(t, Write(&buf, n, FormatYAML, EncodeOptions{}))
	assert.Equal(t, "a: 1\n", buf.String())

	assert.Error(t, Write(&buf, n, FormatTOML, EncodeOptions{}))
}
