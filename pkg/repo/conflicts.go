package repo

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pocketvcs/pocket/pkg/object"
)

// ConflictRecord is one unresolved merge conflict persisted under
// .pocket/conflicts. An empty id means the file was absent on that side.
type ConflictRecord struct {
	Path     string    `toml:"path"`
	BaseID   object.ID `toml:"base_id,omitempty"`
	OursID   object.ID `toml:"ours_id,omitempty"`
	TheirsID object.ID `toml:"theirs_id,omitempty"`
}

func (r *Repository) conflictsDir() string {
	return filepath.Join(r.pocketDir, conflictsDirName)
}

func (r *Repository) conflictPath(path string) string {
	// Path separators are escaped so each conflict maps to one flat file.
	return filepath.Join(r.conflictsDir(), url.PathEscape(path)+".toml")
}

// RecordConflicts persists a set of merge conflicts for later inspection.
func (r *Repository) RecordConflicts(records []ConflictRecord) error {
	if err := os.MkdirAll(r.conflictsDir(), 0o755); err != nil {
		return fmt.Errorf("record conflicts: %w", err)
	}
	for _, rec := range records {
		if err := writeTOMLFile(r.conflictPath(rec.Path), rec); err != nil {
			return fmt.Errorf("record conflict %q: %w", rec.Path, err)
		}
	}
	return nil
}

// ConflictPaths returns the paths of all unresolved conflicts, sorted.
func (r *Repository) ConflictPaths() ([]string, error) {
	entries, err := os.ReadDir(r.conflictsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list conflicts: %w", err)
	}
	var paths []string
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".toml")
		if !ok || e.IsDir() {
			continue
		}
		path, err := url.PathUnescape(name)
		if err != nil {
			return nil, fmt.Errorf("conflict file %q: %w", e.Name(), err)
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}

// ResolveConflict removes the conflict record for a path.
func (r *Repository) ResolveConflict(path string) error {
	if err := os.Remove(r.conflictPath(path)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no recorded conflict for %q", path)
		}
		return fmt.Errorf("resolve conflict %q: %w", path, err)
	}
	return nil
}

// ClearConflicts removes every recorded conflict.
func (r *Repository) ClearConflicts() error {
	paths, err := r.ConflictPaths()
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := os.Remove(r.conflictPath(p)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("clear conflicts: %w", err)
		}
	}
	return nil
}
