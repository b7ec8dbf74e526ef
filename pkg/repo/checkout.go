package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pocketvcs/pocket/pkg/object"
)

// CreateTimeline creates a new timeline pointing at the current head.
func (r *Repository) CreateTimeline(name string) (*Timeline, error) {
	release, err := r.Lock()
	if err != nil {
		return nil, err
	}
	defer release()

	if name == "" {
		return nil, fmt.Errorf("timeline name is empty")
	}
	if r.TimelineExists(name) {
		return nil, fmt.Errorf("timeline %q: %w", name, ErrTimelineExists)
	}
	current, err := r.CurrentTimeline()
	if err != nil {
		return nil, err
	}

	tl := NewTimeline(name)
	tl.Head = current.Head
	if err := r.SaveTimeline(tl); err != nil {
		return nil, err
	}
	r.log.Info("timeline created", "name", name, "head", tl.Head.Short())
	return tl, nil
}

// SwitchTimeline points HEAD at another timeline and makes the working
// directory match its head snapshot. The working tree must be clean;
// untracked files survive the switch unless the target would overwrite them
// with different content, which is refused.
func (r *Repository) SwitchTimeline(name string) error {
	release, err := r.Lock()
	if err != nil {
		return err
	}
	defer release()

	target, err := r.LoadTimeline(name)
	if err != nil {
		return err
	}

	status, err := r.status()
	if err != nil {
		return err
	}
	if !status.IsClean() {
		return fmt.Errorf("switch to %q: %w", name, ErrDirtyWorktree)
	}

	currentRoot, err := r.headRootTree()
	if err != nil {
		return err
	}
	var targetRoot object.ID
	if target.HasHead() {
		head, err := r.LoadShove(target.Head)
		if err != nil {
			return err
		}
		targetRoot = head.RootTreeID
	}

	if err := r.CheckoutTree(currentRoot, targetRoot); err != nil {
		return fmt.Errorf("switch to %q: %w", name, err)
	}
	if err := r.setHeadTimeline(name); err != nil {
		return err
	}
	if err := NewPile().Save(r.pilePath()); err != nil {
		return err
	}

	r.log.Info("switched timeline", "name", name, "head", target.Head.Short())
	return nil
}

// CheckoutTree makes the working directory match the tree rooted at newRoot.
// Files tracked by oldRoot but absent from newRoot are removed and their
// empty parent directories pruned; every write goes through a temp file and
// rename so an interrupted checkout never leaves a half-written file. A path
// not tracked by oldRoot that exists on disk with content differing from its
// newRoot entry is refused with ErrUntrackedCollision.
func (r *Repository) CheckoutTree(oldRoot, newRoot object.ID) error {
	oldFiles, err := r.Store.FlattenTree(oldRoot)
	if err != nil {
		return err
	}
	newFiles, err := r.Store.FlattenTree(newRoot)
	if err != nil {
		return err
	}

	// Collision scan first: refuse before touching anything.
	for p, f := range newFiles {
		if _, tracked := oldFiles[p]; tracked {
			continue
		}
		existing, err := os.ReadFile(filepath.Join(r.Root, filepath.FromSlash(p)))
		if err != nil {
			continue
		}
		if object.IDFromContent(existing) != f.ID {
			return fmt.Errorf("checkout %q: %w", p, ErrUntrackedCollision)
		}
	}

	for p, f := range newFiles {
		abs := filepath.Join(r.Root, filepath.FromSlash(p))
		if existing, err := os.ReadFile(abs); err == nil {
			if object.IDFromContent(existing) == f.ID {
				continue
			}
		}
		data, err := r.Store.Get(f.ID)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
			return fmt.Errorf("checkout %q: %w", p, err)
		}
		perm := os.FileMode(f.Permissions)
		if perm == 0 {
			perm = os.FileMode(object.DefaultFilePermissions)
		}
		if err := writeFileAtomic(abs, data, perm); err != nil {
			return fmt.Errorf("checkout %q: %w", p, err)
		}
	}

	for p := range oldFiles {
		if _, ok := newFiles[p]; ok {
			continue
		}
		abs := filepath.Join(r.Root, filepath.FromSlash(p))
		if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("checkout remove %q: %w", p, err)
		}
		r.pruneEmptyDirs(filepath.Dir(abs))
	}
	return nil
}

// headRootTree returns the current head's tree root, or "" when unborn.
func (r *Repository) headRootTree() (object.ID, error) {
	head, err := r.HeadShove()
	if err != nil {
		return "", err
	}
	if head == nil {
		return "", nil
	}
	return head.RootTreeID, nil
}

// pruneEmptyDirs removes now-empty directories from dir up to the repository
// root. Remove fails on non-empty directories, which ends the walk.
func (r *Repository) pruneEmptyDirs(dir string) {
	for dir != r.Root && len(dir) > len(r.Root) {
		if err := os.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}
