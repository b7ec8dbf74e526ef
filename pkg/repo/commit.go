package repo

import (
	"fmt"

	"github.com/pocketvcs/pocket/pkg/object"
)

// CreateShove turns the pile into a new shove on the current timeline. The
// snapshot is the head tree overlaid with the staged changes, so files
// committed earlier and untouched since stay in the snapshot. The pile must
// be non-empty and based on the current head.
func (r *Repository) CreateShove(message string) (*Shove, error) {
	release, err := r.Lock()
	if err != nil {
		return nil, err
	}
	defer release()

	tl, err := r.CurrentTimeline()
	if err != nil {
		return nil, err
	}
	pile, err := r.LoadCurrentPile()
	if err != nil {
		return nil, err
	}
	if pile.IsEmpty() {
		return nil, ErrEmptyPile
	}
	if pile.BaseShove != tl.Head {
		return nil, fmt.Errorf("pile is based on %s but timeline %q is at %s: %w",
			pile.BaseShove.Short(), tl.Name, tl.Head.Short(), ErrStalePile)
	}

	files, err := r.headTreeFiles()
	if err != nil {
		return nil, err
	}
	for path, e := range pile.Entries {
		switch e.Status {
		case PileDeleted:
			delete(files, path)
		case PileRenamed:
			if e.RenamedFrom != "" {
				delete(files, e.RenamedFrom)
			}
			files[path] = object.TreeFile{Path: path, ID: e.ObjectID, Permissions: object.DefaultFilePermissions}
		default:
			perms := object.DefaultFilePermissions
			if old, ok := files[path]; ok {
				perms = old.Permissions
			}
			files[path] = object.TreeFile{Path: path, ID: e.ObjectID, Permissions: perms}
		}
	}

	root, err := r.BuildTree(files)
	if err != nil {
		return nil, err
	}

	var parents []ShoveId
	if tl.HasHead() {
		parents = []ShoveId{tl.Head}
	}
	shove, err := r.CommitTree(tl, parents, message, root)
	if err != nil {
		return nil, err
	}

	pile.Clear()
	if err := r.SaveCurrentPile(pile); err != nil {
		return nil, err
	}
	if err := r.ClearConflicts(); err != nil {
		return nil, err
	}

	r.log.Info("shove created",
		"id", shove.ID.Short(), "timeline", tl.Name, "files", len(files))
	return shove, nil
}

// CommitTree records a new shove with the given parents and tree root and
// advances the timeline head to it. The shove file is written before the
// timeline moves, so a crash in between leaves a reachable-from-nowhere
// shove rather than a dangling head.
func (r *Repository) CommitTree(tl *Timeline, parents []ShoveId, message string, root object.ID) (*Shove, error) {
	shove := NewShove(parents, r.NewAuthor(), message, root)
	if err := r.SaveShove(shove); err != nil {
		return nil, err
	}
	tl.UpdateHead(shove.ID)
	if err := r.SaveTimeline(tl); err != nil {
		return nil, err
	}
	return shove, nil
}
