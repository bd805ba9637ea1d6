package display

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/flatq/internal/flat"
	"github.com/standardbeagle/flatq/internal/search"
)

// FormatFlat renders one "path = value" line per entry.
func (tf *TreeFormatter) FormatFlat(fm *flat.FlatMap) string {
	var sb strings.Builder
	for path, value := range fm.All() {
		sb.WriteString(tf.palette.Key(path))
		sb.WriteString(tf.palette.Punct(" = "))
		sb.WriteString(tf.palette.Value(value))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatRanked renders query results with their scores, best first.
func (tf *TreeFormatter) FormatRanked(ranked []search.Ranked) string {
	if len(ranked) == 0 {
		return "No matches\n"
	}
	width := len(fmt.Sprint(ranked[0].Score))

	var sb strings.Builder
	for _, r := range ranked {
		sb.WriteString(tf.palette.Score(fmt.Sprintf("%*d", width, r.Score)))
		sb.WriteString(tf.options.Indent)
		sb.WriteString(tf.palette.Key(r.Path))
		sb.WriteString(tf.palette.Punct(" = "))
		sb.WriteString(tf.palette.Value(r.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatKeyword renders the two keyword buckets. Empty buckets are omitted.
func (tf *TreeFormatter) FormatKeyword(res *search.KeywordResult) string {
	if res == nil || res.Len() == 0 {
		return "No matches\n"
	}
	var sb strings.Builder
	section := func(title string, fm *flat.FlatMap) {
		if fm.Len() == 0 {
			return
		}
		sb.WriteString(fmt.Sprintf("%s (%d):\n", title, fm.Len()))
		for _, line := range strings.SplitAfter(strings.TrimSuffix(tf.FormatFlat(fm), "\n"), "\n") {
			sb.WriteString(tf.options.Indent)
			sb.WriteString(line)
		}
		sb.WriteString("\n")
	}
	section("Matched by key", res.ByKey)
	section("Matched by value", res.ByValue)
	return sb.String()
}

// FormatDropped lists the object fields lost while inflating.
func (tf *TreeFormatter) FormatDropped(dropped []flat.DroppedField) string {
	var sb strings.Builder
	for _, d := range dropped {
		sb.WriteString("dropped ")
		sb.WriteString(tf.palette.Key(d.String()))
		sb.WriteString(tf.palette.Punct(" = "))
		sb.WriteString(tf.palette.Value(d.Value))
		sb.WriteString("\n")
	}
	return sb.String()
}
