package repo

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// StagePath stages a single file into the pile, classifying it against the
// current head snapshot: added when untracked, modified when tracked with
// different content, deleted when tracked but gone from the working
// directory. Staging a file identical to its head version unstages it.
func (r *Repository) StagePath(relPath string) error {
	release, err := r.Lock()
	if err != nil {
		return err
	}
	defer release()

	pile, err := r.LoadCurrentPile()
	if err != nil {
		return err
	}
	if err := r.stagePath(pile, relPath); err != nil {
		return err
	}
	return r.SaveCurrentPile(pile)
}

// StageAll stages every modified, missing, and untracked file. It returns
// the staged paths.
func (r *Repository) StageAll() ([]string, error) {
	return r.stageMatching(func(string) bool { return true })
}

// StagePattern stages the changed files whose path matches the glob pattern.
func (r *Repository) StagePattern(pattern string) ([]string, error) {
	return r.stageMatching(func(p string) bool {
		if ok, err := path.Match(pattern, p); err == nil && ok {
			return true
		}
		// Also match against the basename, so "*.txt" works in subdirectories.
		ok, err := path.Match(pattern, path.Base(p))
		return err == nil && ok
	})
}

func (r *Repository) stageMatching(match func(string) bool) ([]string, error) {
	release, err := r.Lock()
	if err != nil {
		return nil, err
	}
	defer release()

	status, err := r.status()
	if err != nil {
		return nil, err
	}
	pile, err := r.LoadCurrentPile()
	if err != nil {
		return nil, err
	}

	var staged []string
	for _, p := range append(append([]string{}, status.Modified...), status.Untracked...) {
		if !match(p) {
			continue
		}
		if err := r.stagePath(pile, p); err != nil {
			return nil, err
		}
		staged = append(staged, p)
	}
	if len(staged) == 0 {
		return nil, nil
	}
	return staged, r.SaveCurrentPile(pile)
}

// stagePath does the classification and pile mutation; callers hold the lock
// and persist the pile.
func (r *Repository) stagePath(pile *Pile, relPath string) error {
	relPath = normalizeRelPath(relPath)
	if relPath == "" || relPath == "." {
		return fmt.Errorf("stage: empty path")
	}
	if strings.HasPrefix(relPath, "..") {
		return fmt.Errorf("stage %q: path escapes the repository", relPath)
	}
	if relPath == pocketDirName || strings.HasPrefix(relPath, pocketDirName+"/") {
		return fmt.Errorf("stage %q: repository metadata cannot be staged", relPath)
	}

	headFiles, err := r.headTreeFiles()
	if err != nil {
		return err
	}
	headFile, tracked := headFiles[relPath]

	tl, err := r.CurrentTimeline()
	if err != nil {
		return err
	}

	absPath := filepath.Join(r.Root, filepath.FromSlash(relPath))
	info, statErr := os.Stat(absPath)

	switch {
	case statErr == nil && info.IsDir():
		return fmt.Errorf("stage %q: is a directory, stage files individually", relPath)

	case os.IsNotExist(statErr):
		if !tracked {
			return fmt.Errorf("stage %q: no such file", relPath)
		}
		r.pileSet(pile, tl, relPath, PileEntry{
			Status:       PileDeleted,
			ObjectID:     headFile.ID,
			OriginalPath: relPath,
		})

	case statErr != nil:
		return fmt.Errorf("stage %q: %w", relPath, statErr)

	default:
		id, err := r.Store.PutFile(absPath)
		if err != nil {
			return err
		}
		if tracked && headFile.ID == id {
			// Back to the head content: nothing left to stage.
			pile.Remove(relPath)
			return nil
		}
		status := PileAdded
		if tracked {
			status = PileModified
		}
		r.pileSet(pile, tl, relPath, PileEntry{
			Status:       status,
			ObjectID:     id,
			OriginalPath: relPath,
		})
	}

	r.log.Debug("staged", "path", relPath)
	return nil
}

func (r *Repository) pileSet(pile *Pile, tl *Timeline, relPath string, e PileEntry) {
	if pile.IsEmpty() {
		pile.BaseShove = tl.Head
	}
	pile.Set(relPath, e)
}

// Unpile removes a path from the pile.
func (r *Repository) Unpile(relPath string) error {
	release, err := r.Lock()
	if err != nil {
		return err
	}
	defer release()

	pile, err := r.LoadCurrentPile()
	if err != nil {
		return err
	}
	relPath = normalizeRelPath(relPath)
	if !pile.Remove(relPath) {
		return fmt.Errorf("unpile %q: %w", relPath, ErrNotPiled)
	}
	return r.SaveCurrentPile(pile)
}

// UnpileAll empties the pile.
func (r *Repository) UnpileAll() error {
	release, err := r.Lock()
	if err != nil {
		return err
	}
	defer release()

	pile, err := r.LoadCurrentPile()
	if err != nil {
		return err
	}
	pile.Clear()
	return r.SaveCurrentPile(pile)
}

// normalizeRelPath cleans a user-supplied path into the slash-separated
// repository-relative form used as pile and tree keys.
func normalizeRelPath(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
