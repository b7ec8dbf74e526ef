package repo

import (
	"time"

	"github.com/google/uuid"
	"github.com/pocketvcs/pocket/pkg/object"
)

// ShoveId is the unique identifier of a shove. Unlike object ids it is not
// content-derived: two shoves with identical trees and messages are still
// distinct history events.
type ShoveId string

// NewShoveId returns a fresh random shove id.
func NewShoveId() ShoveId {
	return ShoveId(uuid.NewString())
}

// Short returns an abbreviated form of the id for display.
func (id ShoveId) Short() string {
	if len(id) <= 8 {
		return string(id)
	}
	return string(id[:8])
}

// Author records who created a shove and when.
type Author struct {
	Name      string    `toml:"name"`
	Email     string    `toml:"email"`
	Timestamp time.Time `toml:"timestamp"`
}

// Shove is one immutable history record. Once written its fields never
// change; history moves by creating new shoves and advancing timeline heads.
type Shove struct {
	ID         ShoveId   `toml:"id"`
	ParentIDs  []ShoveId `toml:"parent_ids"`
	Timestamp  time.Time `toml:"timestamp"`
	Message    string    `toml:"message"`
	RootTreeID object.ID `toml:"root_tree_id"`
	Author     Author    `toml:"author"`
}

// NewShove builds a shove record. Zero parents marks a root shove, one a
// normal shove, two a merge.
func NewShove(parents []ShoveId, author Author, message string, root object.ID) *Shove {
	return &Shove{
		ID:         NewShoveId(),
		ParentIDs:  append([]ShoveId(nil), parents...),
		Timestamp:  author.Timestamp,
		Message:    message,
		RootTreeID: root,
		Author:     author,
	}
}

// IsRoot reports whether the shove has no parents.
func (s *Shove) IsRoot() bool {
	return len(s.ParentIDs) == 0
}

// IsMerge reports whether the shove joins two or more histories.
func (s *Shove) IsMerge() bool {
	return len(s.ParentIDs) > 1
}

// ChangeType classifies a single file change between two snapshots.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeModified ChangeType = "modified"
	ChangeDeleted  ChangeType = "deleted"
	ChangeRenamed  ChangeType = "renamed"
)

// FileChange is one entry of a snapshot-to-snapshot diff.
type FileChange struct {
	Path    string
	Type    ChangeType
	OldPath string
	OldID   object.ID
	NewID   object.ID
}
