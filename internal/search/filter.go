package search

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	flqerrors "github.com/standardbeagle/flatq/internal/errors"
	"github.com/standardbeagle/flatq/internal/tree"
)

// Filter narrows the entries a search looks at. The zero value admits all.
type Filter struct {
	// PathGlob is a doublestar pattern matched against the entry path with
	// its segments joined by "/", e.g. "users/*/email" or "**/id".
	PathGlob string
	// Where is an expr-lang boolean expression evaluated per entry with
	// key, value, text, kind, segments and depth in scope.
	Where string
}

// IsZero reports whether the filter admits every entry.
func (f Filter) IsZero() bool {
	return f.PathGlob == "" && f.Where == ""
}

// entryEnv is what a Where expression sees.
type entryEnv struct {
	Key      string   `expr:"key"`
	Value    any      `expr:"value"`
	Text     string   `expr:"text"`
	Kind     string   `expr:"kind"`
	Segments []string `expr:"segments"`
	Depth    int      `expr:"depth"`
}

// compiledFilter is a Filter ready to evaluate against one separator.
type compiledFilter struct {
	sep     string
	glob    string
	where   string
	program *vm.Program
}

func (f Filter) compile(sep string) (*compiledFilter, error) {
	cf := &compiledFilter{sep: sep, glob: f.PathGlob, where: f.Where}
	if f.PathGlob != "" && !doublestar.ValidatePattern(f.PathGlob) {
		return nil, flqerrors.NewSearchError(f.PathGlob, fmt.Errorf("invalid path glob"))
	}
	if f.Where != "" {
		program, err := expr.Compile(f.Where, expr.Env(entryEnv{}), expr.AsBool())
		if err != nil {
			return nil, flqerrors.NewSearchError(f.Where, err)
		}
		cf.program = program
	}
	return cf, nil
}

// allow reports whether the entry passes both the glob and the predicate.
func (cf *compiledFilter) allow(path string, value *tree.Node) (bool, error) {
	segments := strings.Split(path, cf.sep)

	if cf.glob != "" {
		ok, err := doublestar.Match(cf.glob, strings.Join(segments, "/"))
		if err != nil {
			return false, flqerrors.NewSearchError(cf.glob, err)
		}
		if !ok {
			return false, nil
		}
	}

	if cf.program == nil {
		return true, nil
	}
	env := entryEnv{
		Key:      path,
		Value:    value.Interface(),
		Text:     value.Text(),
		Kind:     value.Kind.String(),
		Segments: segments,
		Depth:    len(segments),
	}
	out, err := expr.Run(cf.program, env)
	if err != nil {
		return false, flqerrors.NewSearchError(cf.where, err)
	}
	ok, _ := out.(bool)
	return ok, nil
}
