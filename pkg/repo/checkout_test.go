package repo

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestCreateTimeline(t *testing.T) {
	r := newTestRepo(t)
	base := stageAndShove(t, r, "base", map[string]string{"a.txt": "one"})

	tl, err := r.CreateTimeline("feature")
	if err != nil {
		t.Fatalf("CreateTimeline: %v", err)
	}
	if tl.Head != base.ID {
		t.Errorf("new timeline head: got %s, want %s", tl.Head, base.ID)
	}

	if _, err := r.CreateTimeline("feature"); !errors.Is(err, ErrTimelineExists) {
		t.Errorf("duplicate CreateTimeline: got %v, want ErrTimelineExists", err)
	}

	timelines, err := r.ListTimelines()
	if err != nil {
		t.Fatalf("ListTimelines: %v", err)
	}
	if len(timelines) != 2 || timelines[0].Name != "feature" || timelines[1].Name != "main" {
		t.Errorf("timelines: got %v", timelines)
	}
}

// Branch, edit, and come back: the working directory must reflect each
// timeline's own head snapshot.
func TestSwitchTimelineRestoresContent(t *testing.T) {
	r := newTestRepo(t)
	stageAndShove(t, r, "base", map[string]string{
		"a.txt":       "main content",
		"sub/b.txt":   "shared",
		"main-only.md": "kept on main",
	})

	if _, err := r.CreateTimeline("feature"); err != nil {
		t.Fatalf("CreateTimeline: %v", err)
	}
	if err := r.SwitchTimeline("feature"); err != nil {
		t.Fatalf("SwitchTimeline feature: %v", err)
	}

	stageAndShove(t, r, "feature work", map[string]string{
		"a.txt":           "feature content",
		"feature-only.txt": "new on feature",
	})

	if err := r.SwitchTimeline("main"); err != nil {
		t.Fatalf("SwitchTimeline main: %v", err)
	}

	if got := readWorkFile(t, r, "a.txt"); got != "main content" {
		t.Errorf("a.txt after switch back: got %q, want main content", got)
	}
	if got := readWorkFile(t, r, "sub/b.txt"); got != "shared" {
		t.Errorf("sub/b.txt: got %q", got)
	}
	if _, err := os.Stat(filepath.Join(r.Root, "feature-only.txt")); !os.IsNotExist(err) {
		t.Errorf("feature-only.txt should be gone on main, stat err = %v", err)
	}

	if err := r.SwitchTimeline("feature"); err != nil {
		t.Fatalf("SwitchTimeline feature again: %v", err)
	}
	if got := readWorkFile(t, r, "a.txt"); got != "feature content" {
		t.Errorf("a.txt on feature: got %q, want feature content", got)
	}
	if got := readWorkFile(t, r, "feature-only.txt"); got != "new on feature" {
		t.Errorf("feature-only.txt: got %q", got)
	}
}

func TestSwitchTimelineRefusesDirtyWorktree(t *testing.T) {
	r := newTestRepo(t)
	stageAndShove(t, r, "base", map[string]string{"a.txt": "one"})
	if _, err := r.CreateTimeline("feature"); err != nil {
		t.Fatalf("CreateTimeline: %v", err)
	}

	writeWorkFile(t, r, "a.txt", "uncommitted edit")
	if err := r.SwitchTimeline("feature"); !errors.Is(err, ErrDirtyWorktree) {
		t.Errorf("SwitchTimeline: got %v, want ErrDirtyWorktree", err)
	}
}

func TestSwitchTimelineMissing(t *testing.T) {
	r := newTestRepo(t)
	if err := r.SwitchTimeline("nope"); !errors.Is(err, ErrTimelineNotFound) {
		t.Errorf("SwitchTimeline: got %v, want ErrTimelineNotFound", err)
	}
}

func TestSwitchTimelineProtectsUntrackedCollisions(t *testing.T) {
	r := newTestRepo(t)
	stageAndShove(t, r, "base", map[string]string{"a.txt": "one"})

	if _, err := r.CreateTimeline("feature"); err != nil {
		t.Fatalf("CreateTimeline: %v", err)
	}
	if err := r.SwitchTimeline("feature"); err != nil {
		t.Fatalf("SwitchTimeline: %v", err)
	}
	stageAndShove(t, r, "add b", map[string]string{"b.txt": "feature version"})

	if err := r.SwitchTimeline("main"); err != nil {
		t.Fatalf("SwitchTimeline main: %v", err)
	}
	// b.txt is untracked on main with content the feature head does not have.
	writeWorkFile(t, r, "b.txt", "local scribbles")

	if err := r.SwitchTimeline("feature"); !errors.Is(err, ErrUntrackedCollision) {
		t.Errorf("got %v, want ErrUntrackedCollision", err)
	}
	if got := readWorkFile(t, r, "b.txt"); got != "local scribbles" {
		t.Errorf("b.txt = %q, the untracked file was overwritten", got)
	}
}

func TestSwitchPrunesEmptyDirectories(t *testing.T) {
	r := newTestRepo(t)
	stageAndShove(t, r, "base", map[string]string{"a.txt": "one"})
	if _, err := r.CreateTimeline("feature"); err != nil {
		t.Fatalf("CreateTimeline: %v", err)
	}
	if err := r.SwitchTimeline("feature"); err != nil {
		t.Fatalf("SwitchTimeline: %v", err)
	}
	stageAndShove(t, r, "deep", map[string]string{"deep/nested/file.txt": "x"})

	if err := r.SwitchTimeline("main"); err != nil {
		t.Fatalf("SwitchTimeline main: %v", err)
	}
	if _, err := os.Stat(filepath.Join(r.Root, "deep")); !os.IsNotExist(err) {
		t.Errorf("deep/ should be pruned after switch, stat err = %v", err)
	}
}
