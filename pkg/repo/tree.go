package repo

import (
	"sort"
	"strings"

	"github.com/pocketvcs/pocket/pkg/object"
)

// BuildTree writes a tree hierarchy for the given flat file set and returns
// the root tree id. Paths are slash-separated; intermediate directories
// become nested trees. An empty set yields a valid empty tree.
func (r *Repository) BuildTree(files map[string]object.TreeFile) (object.ID, error) {
	return r.buildTreeDir(files, "")
}

func (r *Repository) buildTreeDir(files map[string]object.TreeFile, prefix string) (object.ID, error) {
	type dirGroup map[string]object.TreeFile

	var entries []object.TreeEntry
	subdirs := make(map[string]dirGroup)

	for path, f := range files {
		rest := path
		if prefix != "" {
			rest = strings.TrimPrefix(path, prefix+"/")
		}
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			dir := rest[:i]
			g, ok := subdirs[dir]
			if !ok {
				g = make(dirGroup)
				subdirs[dir] = g
			}
			g[path] = f
		} else {
			entries = append(entries, object.TreeEntry{
				Name:        rest,
				ID:          f.ID,
				Type:        object.EntryFile,
				Permissions: f.Permissions,
			})
		}
	}

	names := make([]string, 0, len(subdirs))
	for name := range subdirs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		childPrefix := name
		if prefix != "" {
			childPrefix = prefix + "/" + name
		}
		id, err := r.buildTreeDir(subdirs[name], childPrefix)
		if err != nil {
			return "", err
		}
		entries = append(entries, object.TreeEntry{
			Name: name,
			ID:   id,
			Type: object.EntryTree,
		})
	}

	return r.Store.PutTree(object.NewTree(entries))
}

// TreeChanges computes the file-level difference between two tree roots.
// Either root may be empty, meaning an empty snapshot. Results are sorted by
// path.
func (r *Repository) TreeChanges(oldRoot, newRoot object.ID) ([]FileChange, error) {
	oldFiles, err := r.Store.FlattenTree(oldRoot)
	if err != nil {
		return nil, err
	}
	newFiles, err := r.Store.FlattenTree(newRoot)
	if err != nil {
		return nil, err
	}

	paths := make(map[string]struct{}, len(oldFiles)+len(newFiles))
	for p := range oldFiles {
		paths[p] = struct{}{}
	}
	for p := range newFiles {
		paths[p] = struct{}{}
	}

	var changes []FileChange
	for p := range paths {
		oldFile, inOld := oldFiles[p]
		newFile, inNew := newFiles[p]
		switch {
		case inOld && !inNew:
			changes = append(changes, FileChange{Path: p, Type: ChangeDeleted, OldID: oldFile.ID})
		case !inOld && inNew:
			changes = append(changes, FileChange{Path: p, Type: ChangeAdded, NewID: newFile.ID})
		case oldFile.ID != newFile.ID:
			changes = append(changes, FileChange{Path: p, Type: ChangeModified, OldID: oldFile.ID, NewID: newFile.ID})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	return changes, nil
}

// ShoveChanges computes what a shove changed relative to its first parent.
// For a root shove every file is reported as added.
func (r *Repository) ShoveChanges(s *Shove) ([]FileChange, error) {
	var parentRoot object.ID
	if !s.IsRoot() {
		parent, err := r.LoadShove(s.ParentIDs[0])
		if err != nil {
			return nil, err
		}
		parentRoot = parent.RootTreeID
	}
	return r.TreeChanges(parentRoot, s.RootTreeID)
}
