package catalog

import (
	"strings"
	"sync"

	"github.com/oukeidos/dbyview/internal/apperrors"
)

// Library owns the current Catalog for one root and extension. Refresh
// always swaps in a whole new snapshot; selections carry the generation they
// were made against so a selection from before a refresh is rejected.
type Library struct {
	mu         sync.RWMutex
	root       string
	ext        string
	scan       func(root, ext string) (*Catalog, error)
	generation uint64
	current    *Catalog
}

func NewLibrary(root, ext string) *Library {
	return &Library{
		root:    root,
		ext:     ext,
		scan:    Scan,
		current: &Catalog{root: root},
	}
}

// SetRoot changes the directory used by the next Refresh.
func (l *Library) SetRoot(root string) {
	l.mu.Lock()
	l.root = root
	l.mu.Unlock()
}

// Refresh rescans the root and replaces the current catalog. On failure the
// empty catalog returned by Scan is installed, so no old index stays valid.
func (l *Library) Refresh() (*Catalog, error) {
	l.mu.RLock()
	root := l.root
	l.mu.RUnlock()

	cat, err := l.scan(root, l.ext)
	if cat == nil {
		cat = &Catalog{root: root}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.generation++
	cat.generation = l.generation
	l.current = cat
	return cat, err
}

func (l *Library) Current() *Catalog {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Select returns the entry at index in the catalog of the given generation.
// Any mismatch is reported as StaleSelection rather than resolved to a
// different file.
func (l *Library) Select(generation uint64, index int) (Entry, error) {
	l.mu.RLock()
	cur := l.current
	l.mu.RUnlock()

	if generation != cur.generation {
		return Entry{}, apperrors.StaleSelection(index, cur.Len())
	}
	return cur.At(index)
}

// Lookup finds the first entry whose display name matches name, ignoring case.
func (l *Library) Lookup(name string) (Entry, int, bool) {
	cur := l.Current()
	needle := strings.TrimSpace(name)
	for i, e := range cur.entries {
		if strings.EqualFold(e.Name, needle) {
			return e, i, true
		}
	}
	return Entry{}, -1, false
}
