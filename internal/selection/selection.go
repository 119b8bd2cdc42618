// Package selection holds the ordered set of documents queued for merging.
//
// Filtering is silent by policy: a path with the wrong suffix or one that is
// already queued is ignored without an error, because drops routinely carry
// stray files and repeats. Callers that want feedback compare lengths.
package selection

import (
	"slices"

	"docmerge/internal/model"
)

// List is an ordered sequence of document paths, unique by path.
// The zero value is an empty list ready to use.
type List struct {
	paths []string
}

// New returns an empty list.
func New() *List {
	return &List{}
}

// Add appends path when it names a document and is not already present.
// It returns the resulting sequence.
func (l *List) Add(path string) []string {
	if !model.IsDocument(path) || slices.Contains(l.paths, path) {
		return l.Paths()
	}
	l.paths = append(l.paths, path)
	return l.Paths()
}

// AddAll adds each path in order and reports how many were accepted.
func (l *List) AddAll(paths []string) int {
	before := len(l.paths)
	for _, p := range paths {
		l.Add(p)
	}
	return len(l.paths) - before
}

// Remove deletes the entry at index. An index outside the list means nothing
// is selected and leaves the list unchanged.
func (l *List) Remove(index int) []string {
	if index < 0 || index >= len(l.paths) {
		return l.Paths()
	}
	l.paths = slices.Delete(l.paths, index, index+1)
	return l.Paths()
}

// Move shifts the entry at from to position to, keeping the relative order of
// the others. Out-of-range indices leave the list unchanged.
func (l *List) Move(from, to int) []string {
	n := len(l.paths)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return l.Paths()
	}
	p := l.paths[from]
	l.paths = slices.Delete(l.paths, from, from+1)
	l.paths = slices.Insert(l.paths, to, p)
	return l.Paths()
}

// Clear empties the list.
func (l *List) Clear() []string {
	l.paths = nil
	return l.Paths()
}

// Paths returns a copy of the sequence in merge order.
func (l *List) Paths() []string {
	return slices.Clone(l.paths)
}

// Len returns the number of queued documents.
func (l *List) Len() int {
	return len(l.paths)
}

// At returns the path at index and whether index was valid.
func (l *List) At(index int) (string, bool) {
	if index < 0 || index >= len(l.paths) {
		return "", false
	}
	return l.paths[index], true
}
