package flat

import (
	"strings"

	jsonpatch "github.com/evanphx/json-patch"
	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
	"github.com/tidwall/pretty"

	"github.com/standardbeagle/flatq/internal/tree"
)

// VerifyReport describes one flatten -> inflate round trip.
type VerifyReport struct {
	OK       bool
	Original *tree.Node
	Restored *tree.Node
	Flat     *FlatMap
	Dropped  []DroppedField
	// Diff is a line diff of the pretty-printed trees, empty when OK.
	Diff string
	// MergePatch is the RFC 7386 patch that turns Restored back into
	// Original. Only set for object roots that differ.
	MergePatch []byte
}

// Verify flattens root, inflates the result and compares it with root.
// Object key order is significant: a round trip that reorders keys fails.
func (c *Codec) Verify(root *tree.Node) (*VerifyReport, error) {
	m, err := c.Flatten(root)
	if err != nil {
		return nil, err
	}
	res, err := c.InflateReport(m)
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{
		Original: root,
		Restored: res.Tree,
		Flat:     m,
		Dropped:  res.Dropped,
	}

	// an empty root flattens to nothing and always inflates as {}
	if m.Len() == 0 && root.Len() == 0 {
		report.Restored = root.Clone()
	}

	report.OK = sameTree(root, report.Restored)
	if report.OK {
		return report, nil
	}

	origJSON := tree.AppendJSON(nil, root)
	restJSON := tree.AppendJSON(nil, report.Restored)

	report.Diff = LineDiff(string(pretty.Pretty(origJSON)), string(pretty.Pretty(restJSON)))
	if root.Kind == tree.ObjectKind && report.Restored.Kind == tree.ObjectKind {
		if patch, err := jsonpatch.CreateMergePatch(restJSON, origJSON); err == nil {
			report.MergePatch = patch
		}
	}
	return report, nil
}

func sameTree(orig, restored *tree.Node) bool {
	return orig.Equal(restored)
}

// LineDiff renders a unified-style line diff of a and b: removed lines are
// prefixed with "-", added lines with "+", unchanged lines with a space.
func LineDiff(a, b string) string {
	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	var sb strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffpatch.DiffInsert:
			prefix = "+"
		case diffpatch.DiffDelete:
			prefix = "-"
		case diffpatch.DiffEqual:
			prefix = " "
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			sb.WriteString(prefix)
			sb.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}
