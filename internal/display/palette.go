package display

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/standardbeagle/flatq/internal/tree"
)

// Palette colors the parts of a rendered entry. A disabled palette returns
// its input unchanged.
type Palette struct {
	key, str, num, boolean, null, punct, score *color.Color
}

// NewPalette builds a palette. Colors are forced on or off per palette so
// the package-level NoColor detection does not apply.
func NewPalette(enabled bool) *Palette {
	p := &Palette{
		key:     color.RGB(128, 168, 196),
		str:     color.RGB(8, 196, 16),
		num:     color.RGB(128, 216, 236),
		boolean: color.New(color.FgCyan),
		null:    color.RGB(168, 0, 196),
		punct:   color.New(color.Faint),
		score:   color.New(color.FgYellow, color.Bold),
	}
	for _, c := range []*color.Color{p.key, p.str, p.num, p.boolean, p.null, p.punct, p.score} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Palette) Key(s string) string   { return p.key.Sprint(s) }
func (p *Palette) Punct(s string) string { return p.punct.Sprint(s) }
func (p *Palette) Score(s string) string { return p.score.Sprint(s) }

// Value renders a scalar: strings quoted, containers as compact JSON.
func (p *Palette) Value(n *tree.Node) string {
	switch n.Kind {
	case tree.StringKind:
		return p.str.Sprint(string(tree.AppendString(nil, n.String)))
	case tree.NumberKind:
		return p.num.Sprint(n.Number)
	case tree.BoolKind:
		return p.boolean.Sprint(n.Text())
	case tree.NullKind:
		return p.null.Sprint("null")
	}
	return n.Text()
}

// ShouldColor reports whether output to w should be colored: w must be a
// terminal, NO_COLOR unset and noColor false.
func ShouldColor(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
