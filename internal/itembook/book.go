package itembook

import (
	"sync"

	"github.com/hyeonso/EnhanceBot_Go/internal/domain"
)

// IDSet is a set of tree ids.
type IDSet map[int]struct{}

// NewIDSet builds a set from the given ids.
func NewIDSet(ids ...int) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Clone returns an independent copy. A nil set stays nil.
func (s IDSet) Clone() IDSet {
	if s == nil {
		return nil
	}
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// Contains reports membership.
func (s IDSet) Contains(id int) bool {
	_, ok := s[id]
	return ok
}

// Intersect returns the intersection of both sets.
func (s IDSet) Intersect(o IDSet) IDSet {
	out := make(IDSet)
	for id := range s {
		if o.Contains(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sole returns the single member when the set is a singleton, else nil.
func (s IDSet) Sole() *int {
	if len(s) != 1 {
		return nil
	}
	for id := range s {
		v := id
		return &v
	}
	return nil
}

// Key addresses one (name, level) entry of the tree index.
type Key struct {
	Name  string
	Level int
}

// Hierarchy is one upgrade tree: its id, the special flag, and the item at
// each level of the path.
type Hierarchy struct {
	ID      int
	Special bool
	ByLevel map[int]domain.Item
}

// Book is the item reference oracle: (name, level) -> candidate tree ids plus
// the set of special trees. It is read-mostly; Reload replaces the whole
// content atomically. Concurrent resolution runs against the same book need a
// single-writer discipline for Reload, which the RWMutex provides.
type Book struct {
	mu          sync.RWMutex
	index       map[Key]IDSet
	special     IDSet
	hierarchies map[int]Hierarchy
	loader      LoaderFunc
}

// LoaderFunc produces a fresh snapshot of the book's content. File loaders
// and (externally implemented) crawlers both fit this shape.
type LoaderFunc func() (map[Key]IDSet, IDSet, map[int]Hierarchy, error)

// New creates a book that reloads through the given loader. The initial
// content is empty until the first Reload.
func New(loader LoaderFunc) *Book {
	return &Book{
		index:       map[Key]IDSet{},
		special:     IDSet{},
		hierarchies: map[int]Hierarchy{},
		loader:      loader,
	}
}

// NewStatic creates a book with fixed content and no reload source. Reload
// is a no-op; useful for tests and for batch runs against a known snapshot.
func NewStatic(index map[Key]IDSet, special IDSet) *Book {
	return NewStaticWithHierarchies(index, special, nil)
}

// NewStaticWithHierarchies is NewStatic plus hierarchy path data.
func NewStaticWithHierarchies(index map[Key]IDSet, special IDSet, hierarchies map[int]Hierarchy) *Book {
	if index == nil {
		index = map[Key]IDSet{}
	}
	if special == nil {
		special = IDSet{}
	}
	if hierarchies == nil {
		hierarchies = map[int]Hierarchy{}
	}
	return &Book{index: index, special: special, hierarchies: hierarchies}
}

// Lookup returns the candidate tree ids for a (name, level) pair, or nil when
// the pair is not indexed. The returned set is a copy.
func (b *Book) Lookup(name string, level int) IDSet {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.index[Key{Name: name, Level: level}].Clone()
}

// SpecialIDs returns a copy of the special tree id set.
func (b *Book) SpecialIDs() IDSet {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.special.Clone()
}

// NodeAt returns the item at the given level of a tree, when known.
func (b *Book) NodeAt(treeID, level int) (domain.Item, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	h, ok := b.hierarchies[treeID]
	if !ok {
		return domain.Item{}, false
	}
	item, ok := h.ByLevel[level]
	return item, ok
}

// Reload refreshes index, special set, and hierarchies together from the
// loader. Without a loader it is a no-op. Subsequent lookups see the new data.
func (b *Book) Reload() error {
	if b.loader == nil {
		return nil
	}
	index, special, hierarchies, err := b.loader()
	if err != nil {
		return err
	}
	if hierarchies == nil {
		hierarchies = map[int]Hierarchy{}
	}

	b.mu.Lock()
	b.index = index
	b.special = special
	b.hierarchies = hierarchies
	b.mu.Unlock()
	return nil
}
