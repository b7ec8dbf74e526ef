package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// ID is a 64-character hex-encoded SHA-256 digest of an object's exact bytes.
type ID string

// IDFromContent computes the content id for a byte sequence. Identical
// content always yields the identical id.
func IDFromContent(data []byte) ID {
	sum := sha256.Sum256(data)
	return ID(hex.EncodeToString(sum[:]))
}

// Short returns an abbreviated form of the id for display.
func (id ID) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// Valid reports whether the id looks like a well-formed SHA-256 hex digest.
func (id ID) Valid() bool {
	if len(id) != 64 {
		return false
	}
	_, err := hex.DecodeString(string(id))
	return err == nil
}

// EntryType identifies what a tree entry points at.
type EntryType string

const (
	EntryFile EntryType = "file"
	EntryTree EntryType = "tree"
)

// DefaultFilePermissions is used for entries staged without explicit mode bits.
const DefaultFilePermissions uint32 = 0o644

// TreeEntry is one named slot in a Tree. Subtrees are referenced by id, not
// by pointer, so the whole structure is addressed through the store.
type TreeEntry struct {
	Name        string    `toml:"name"`
	ID          ID        `toml:"id"`
	Type        EntryType `toml:"entry_type"`
	Permissions uint32    `toml:"permissions"`
}

// Tree is a directory snapshot: an ordered list of entries, sorted by name.
type Tree struct {
	Entries []TreeEntry `toml:"entries"`
}

// NewTree builds a Tree from entries, sorting them by name so the serialized
// form (and therefore the content id) is deterministic.
func NewTree(entries []TreeEntry) *Tree {
	sorted := make([]TreeEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return &Tree{Entries: sorted}
}

// Lookup returns the entry with the given name, if present.
func (t *Tree) Lookup(name string) (TreeEntry, bool) {
	for _, e := range t.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return TreeEntry{}, false
}

func (e TreeEntry) String() string {
	return fmt.Sprintf("%s %s %s", e.Type, e.ID.Short(), e.Name)
}
