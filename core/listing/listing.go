// Package listing provides the ordered directory-entry value type handed to
// listing renderers: directories precede files, ties break lexicographically
// by name.
package listing

import "sort"

// EntryKind distinguishes directories from files. Directories order first.
type EntryKind int

const (
	Dir EntryKind = iota
	File
)

// String returns the kind's name as used by renderers.
func (k EntryKind) String() string {
	if k == Dir {
		return "dir"
	}
	return "file"
}

// Entry is a single directory entry.
type Entry struct {
	Name string
	Kind EntryKind
}

// Less implements the total order over entries: kind first (directories
// before files), then name.
func (e Entry) Less(o Entry) bool {
	if e.Kind != o.Kind {
		return e.Kind < o.Kind
	}
	return e.Name < o.Name
}

// Listing is an ordered sequence of entries.
type Listing []Entry

// Sort orders the listing in place per Entry.Less. The sort is stable so
// duplicate names keep their relative positions.
func (l Listing) Sort() {
	sort.SliceStable(l, func(i, j int) bool { return l[i].Less(l[j]) })
}

// Sorted returns a sorted copy, leaving l untouched.
func (l Listing) Sorted() Listing {
	out := make(Listing, len(l))
	copy(out, l)
	out.Sort()
	return out
}
