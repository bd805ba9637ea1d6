package display

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/flatq/internal/docio"
	"github.com/standardbeagle/flatq/internal/tree"
)

// TreeFormatter formats documents for display
type TreeFormatter struct {
	options FormatterOptions
	palette *Palette
}

// FormatterOptions controls tree formatting
type FormatterOptions struct {
	Format   string // "text", "json", "compact"
	MaxDepth int    // Maximum depth to display, 0 for all
	Indent   string // Indentation string
	Color    bool   // ANSI colors
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(options FormatterOptions) *TreeFormatter {
	if options.Indent == "" {
		options.Indent = "  "
	}
	return &TreeFormatter{options: options, palette: NewPalette(options.Color)}
}

// Format formats a document for display
func (tf *TreeFormatter) Format(root *tree.Node) string {
	if root == nil {
		return "No document data available"
	}

	switch tf.options.Format {
	case "json":
		return string(docio.EncodeJSON(root, docio.EncodeOptions{Pretty: true, Color: tf.options.Color}))
	case "compact":
		return tf.formatCompact(root)
	default:
		return tf.formatText(root)
	}
}

// formatText formats the document as ASCII art
func (tf *TreeFormatter) formatText(root *tree.Node) string {
	var sb strings.Builder

	leaves, depth := measure(root, 0)
	sb.WriteString(fmt.Sprintf("Document: %s, %d leaves, max depth %d\n", root.Kind, leaves, depth))
	sb.WriteString("\n")

	tf.formatNode(&sb, "$", root, "", 0, true, true)

	return sb.String()
}

func measure(n *tree.Node, depth int) (leaves, maxDepth int) {
	maxDepth = depth
	if !n.IsContainer() || n.Len() == 0 {
		return 1, depth
	}
	visit := func(child *tree.Node) {
		l, d := measure(child, depth+1)
		leaves += l
		maxDepth = max(maxDepth, d)
	}
	for _, f := range n.Fields {
		visit(f.Value)
	}
	for _, v := range n.Values {
		visit(v)
	}
	return leaves, maxDepth
}

// formatNode recursively formats a tree node
func (tf *TreeFormatter) formatNode(sb *strings.Builder, key string, node *tree.Node, prefix string, depth int, isLast, isRoot bool) {
	if tf.options.MaxDepth > 0 && depth > tf.options.MaxDepth {
		return
	}

	var branch string
	if isRoot {
		branch = "→ "
	} else if isLast {
		branch = "└─→ "
	} else {
		branch = "├─→ "
	}

	sb.WriteString(prefix)
	sb.WriteString(tf.palette.Punct(branch))
	sb.WriteString(tf.label(key, node))
	if tf.options.MaxDepth > 0 && depth == tf.options.MaxDepth && node.IsContainer() && node.Len() > 0 {
		sb.WriteString(tf.palette.Punct(" …"))
	}
	sb.WriteString("\n")

	var childPrefix string
	if isRoot || isLast {
		childPrefix = prefix + tf.options.Indent
	} else {
		childPrefix = prefix + "│" + tf.options.Indent[1:]
	}

	count := node.Len()
	switch node.Kind {
	case tree.ObjectKind:
		for i, f := range node.Fields {
			tf.formatNode(sb, f.Key, f.Value, childPrefix, depth+1, i == count-1, false)
		}
	case tree.ArrayKind:
		for i, v := range node.Values {
			tf.formatNode(sb, fmt.Sprintf("[%d]", i), v, childPrefix, depth+1, i == count-1, false)
		}
	}
}

// label renders "key: scalar" or "key {n}" / "key [n]" for containers.
func (tf *TreeFormatter) label(key string, node *tree.Node) string {
	k := tf.palette.Key(key)
	switch node.Kind {
	case tree.ObjectKind:
		return k + tf.palette.Punct(fmt.Sprintf(" {%d}", node.Len()))
	case tree.ArrayKind:
		return k + tf.palette.Punct(fmt.Sprintf(" [%d]", node.Len()))
	}
	return k + tf.palette.Punct(": ") + tf.palette.Value(node)
}

// formatCompact follows the first child at each level on a single line
func (tf *TreeFormatter) formatCompact(root *tree.Node) string {
	var parts []string
	tf.collectCompactParts("$", root, &parts)
	return strings.Join(parts, " → ")
}

// collectCompactParts collects labels for compact format
func (tf *TreeFormatter) collectCompactParts(key string, node *tree.Node, parts *[]string) {
	if !node.IsContainer() || node.Len() == 0 {
		*parts = append(*parts, tf.label(key, node))
		return
	}
	*parts = append(*parts, tf.palette.Key(key))

	// Only follow first child for linear representation
	if node.Kind == tree.ObjectKind {
		tf.collectCompactParts(node.Fields[0].Key, node.Fields[0].Value, parts)
	} else {
		tf.collectCompactParts("[0]", node.Values[0], parts)
	}
	if node.Len() > 1 {
		*parts = append(*parts, fmt.Sprintf("(+%d more)", node.Len()-1))
	}
}
