package repo

import (
	"fmt"
	"os"
	"sort"

	"github.com/pocketvcs/pocket/pkg/object"
)

// PileStatus classifies a staged entry relative to the pile's base shove.
type PileStatus string

const (
	PileAdded    PileStatus = "added"
	PileModified PileStatus = "modified"
	PileDeleted  PileStatus = "deleted"
	PileRenamed  PileStatus = "renamed"
)

// PileEntry is one staged change. ObjectID is the staged content for added,
// modified, and renamed entries; for deleted entries it is the id the file
// had in the base snapshot.
type PileEntry struct {
	Status       PileStatus `toml:"status"`
	ObjectID     object.ID  `toml:"object_id,omitempty"`
	OriginalPath string     `toml:"original_path"`
	RenamedFrom  string     `toml:"renamed_from,omitempty"`
}

// Pile is the staging area: a set of changes queued for the next shove,
// keyed by slash-separated repository-relative path. BaseShove records the
// timeline head at the moment staging began, so a head moved underneath the
// pile is detected at shove time instead of silently committed over.
type Pile struct {
	BaseShove ShoveId              `toml:"base_shove,omitempty"`
	Entries   map[string]PileEntry `toml:"entries"`
}

// NewPile returns an empty pile.
func NewPile() *Pile {
	return &Pile{Entries: make(map[string]PileEntry)}
}

// IsEmpty reports whether nothing is staged.
func (p *Pile) IsEmpty() bool {
	return len(p.Entries) == 0
}

// Len returns the number of staged entries.
func (p *Pile) Len() int {
	return len(p.Entries)
}

// Set stages or replaces the entry for a path.
func (p *Pile) Set(path string, e PileEntry) {
	p.Entries[path] = e
}

// Remove unstages a path, reporting whether it was staged.
func (p *Pile) Remove(path string) bool {
	if _, ok := p.Entries[path]; !ok {
		return false
	}
	delete(p.Entries, path)
	if len(p.Entries) == 0 {
		p.BaseShove = ""
	}
	return true
}

// Clear drops every staged entry and the base marker.
func (p *Pile) Clear() {
	p.BaseShove = ""
	p.Entries = make(map[string]PileEntry)
}

// Paths returns the staged paths in sorted order.
func (p *Pile) Paths() []string {
	paths := make([]string, 0, len(p.Entries))
	for path := range p.Entries {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// LoadPile reads the pile file at path. A missing file is an empty pile.
func LoadPile(path string) (*Pile, error) {
	var p Pile
	if err := readTOMLFile(path, &p); err != nil {
		if os.IsNotExist(err) {
			return NewPile(), nil
		}
		return nil, fmt.Errorf("load pile: %w", err)
	}
	if p.Entries == nil {
		p.Entries = make(map[string]PileEntry)
	}
	return &p, nil
}

// Save writes the pile atomically.
func (p *Pile) Save(path string) error {
	if err := writeTOMLFile(path, p); err != nil {
		return fmt.Errorf("save pile: %w", err)
	}
	return nil
}
