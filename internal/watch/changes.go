package watch

import "github.com/standardbeagle/flatq/internal/flat"

// Changes lists the flat paths that differ between two versions of a
// document. Added and Modified follow the new map's order, Removed the old's.
type Changes struct {
	Added    []string
	Removed  []string
	Modified []string
}

// IsEmpty reports whether nothing changed.
func (c Changes) IsEmpty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Modified) == 0
}

// Diff compares two flat maps. Either may be nil.
func Diff(old, cur *flat.FlatMap) Changes {
	var c Changes
	for path, v := range cur.All() {
		prev, ok := old.Get(path)
		switch {
		case !ok:
			c.Added = append(c.Added, path)
		case !prev.Equal(v):
			c.Modified = append(c.Modified, path)
		}
	}
	for path := range old.All() {
		if _, ok := cur.Get(path); !ok {
			c.Removed = append(c.Removed, path)
		}
	}
	return c
}
