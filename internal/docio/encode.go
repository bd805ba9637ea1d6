package docio

import (
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/pretty"

	"github.com/standardbeagle/flatq/internal/tree"
)

// EncodeOptions controls JSON output.
type EncodeOptions struct {
	Pretty bool
	// Color adds ANSI colors; implies Pretty.
	Color bool
}

// EncodeJSON renders n as JSON, keeping object order.
func EncodeJSON(n *tree.Node, opts EncodeOptions) []byte {
	out := tree.AppendJSON(nil, n)
	if opts.Pretty || opts.Color {
		out = pretty.Pretty(out)
	}
	if opts.Color {
		out = pretty.Color(out, nil)
	}
	return out
}

// EncodeYAML renders n as YAML, keeping mapping order.
func EncodeYAML(n *tree.Node) ([]byte, error) {
	return yaml.Marshal(toYAML(n))
}

func toYAML(n *tree.Node) any {
	switch n.Kind {
	case tree.ObjectKind:
		ms := make(yaml.MapSlice, 0, len(n.Fields))
		for _, f := range n.Fields {
			ms = append(ms, yaml.MapItem{Key: f.Key, Value: toYAML(f.Value)})
		}
		return ms
	case tree.ArrayKind:
		out := make([]any, len(n.Values))
		for i, v := range n.Values {
			out[i] = toYAML(v)
		}
		return out
	}
	return n.Interface()
}

// Write encodes n in format to w. TOML output is not supported since TOML
// has no null and no top-level arrays.
func Write(w io.Writer, n *tree.Node, format Format, opts EncodeOptions) error {
	var out []byte
	switch format {
	case FormatJSON, "":
		out = EncodeJSON(n, opts)
		if !opts.Pretty && !opts.Color {
			out = append(out, '\n')
		}
	case FormatYAML:
		var err error
		if out, err = EncodeYAML(n); err != nil {
			return err
		}
	default:
		return fmt.Errorf("cannot write %s output", format)
	}
	_, err := w.Write(out)
	return err
}
