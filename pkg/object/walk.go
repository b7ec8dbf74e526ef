package object

import (
	"fmt"
	"path"
)

// TreeFile is a single file reachable from a tree root, keyed by its
// slash-separated path relative to that root.
type TreeFile struct {
	Path        string
	ID          ID
	Permissions uint32
}

// FlattenTree walks the tree rooted at root and returns every file it
// references, keyed by path. An empty root id yields an empty map, which is
// the shape of an unborn timeline's snapshot.
func (s *Store) FlattenTree(root ID) (map[string]TreeFile, error) {
	files := make(map[string]TreeFile)
	if root == "" {
		return files, nil
	}
	if err := s.flattenInto(root, "", files); err != nil {
		return nil, err
	}
	return files, nil
}

func (s *Store) flattenInto(id ID, prefix string, files map[string]TreeFile) error {
	tree, err := s.GetTree(id)
	if err != nil {
		return err
	}
	for _, e := range tree.Entries {
		p := path.Join(prefix, e.Name)
		switch e.Type {
		case EntryFile:
			files[p] = TreeFile{Path: p, ID: e.ID, Permissions: e.Permissions}
		case EntryTree:
			if err := s.flattenInto(e.ID, p, files); err != nil {
				return err
			}
		default:
			return fmt.Errorf("tree %s: entry %q has unknown type %q", id.Short(), p, e.Type)
		}
	}
	return nil
}

// TreeObjects returns every object id reachable from the tree rooted at
// root, including root itself: subtree ids and file content ids. Shared
// subtrees are reported once.
func (s *Store) TreeObjects(root ID) ([]ID, error) {
	seen := make(map[ID]struct{})
	var out []ID
	var walk func(id ID) error
	walk = func(id ID) error {
		if _, ok := seen[id]; ok {
			return nil
		}
		seen[id] = struct{}{}
		out = append(out, id)
		tree, err := s.GetTree(id)
		if err != nil {
			return err
		}
		for _, e := range tree.Entries {
			switch e.Type {
			case EntryTree:
				if err := walk(e.ID); err != nil {
					return err
				}
			case EntryFile:
				if _, ok := seen[e.ID]; !ok {
					seen[e.ID] = struct{}{}
					out = append(out, e.ID)
				}
			}
		}
		return nil
	}
	if err := walk(root); err != nil {
		return nil, err
	}
	return out, nil
}
