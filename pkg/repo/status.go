package repo

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pocketvcs/pocket/pkg/object"
)

// PiledFile is a staged entry together with its path, for display.
type PiledFile struct {
	Path  string
	Entry PileEntry
}

// RepoStatus is a point-in-time classification of the repository: what is
// staged, what differs from the head snapshot, what is untracked, and which
// merge conflicts remain unresolved. It is recomputed on every query, never
// cached.
type RepoStatus struct {
	Timeline string
	Head     ShoveId

	Piled     []PiledFile
	Modified  []string
	Untracked []string
	Conflicts []string
}

// IsClean reports whether nothing is staged, modified, or conflicted.
// Untracked files do not make a repository dirty.
func (s *RepoStatus) IsClean() bool {
	return len(s.Piled) == 0 && len(s.Modified) == 0 && len(s.Conflicts) == 0
}

// Status computes the current repository status.
func (r *Repository) Status() (*RepoStatus, error) {
	return r.status()
}

func (r *Repository) status() (*RepoStatus, error) {
	tl, err := r.CurrentTimeline()
	if err != nil {
		return nil, err
	}
	headFiles, err := r.headTreeFiles()
	if err != nil {
		return nil, err
	}
	pile, err := r.LoadCurrentPile()
	if err != nil {
		return nil, err
	}
	matcher, err := r.IgnoreMatcher()
	if err != nil {
		return nil, err
	}

	status := &RepoStatus{Timeline: tl.Name, Head: tl.Head}

	onDisk := make(map[string]struct{})
	err = filepath.WalkDir(r.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == r.Root {
			return nil
		}
		rel, err := filepath.Rel(r.Root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel == pocketDirName || matcher.Matches(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.Matches(rel) {
			return nil
		}
		onDisk[rel] = struct{}{}

		if _, piled := pile.Entries[rel]; piled {
			return nil
		}
		headFile, tracked := headFiles[rel]
		if !tracked {
			status.Untracked = append(status.Untracked, rel)
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("status read %q: %w", rel, err)
		}
		if object.IDFromContent(data) != headFile.ID {
			status.Modified = append(status.Modified, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("status walk: %w", err)
	}

	// Tracked files missing from disk and not staged as deleted count as
	// modified: the working directory disagrees with the head snapshot.
	for p := range headFiles {
		if _, ok := onDisk[p]; ok {
			continue
		}
		if _, piled := pile.Entries[p]; piled {
			continue
		}
		if matcher.Matches(p) {
			continue
		}
		status.Modified = append(status.Modified, p)
	}

	for _, p := range pile.Paths() {
		status.Piled = append(status.Piled, PiledFile{Path: p, Entry: pile.Entries[p]})
	}

	conflicts, err := r.ConflictPaths()
	if err != nil {
		return nil, err
	}
	status.Conflicts = conflicts

	sort.Strings(status.Modified)
	sort.Strings(status.Untracked)
	return status, nil
}
