package repo

import (
	"testing"

	"github.com/pocketvcs/pocket/pkg/object"
)

func TestBuildTreeNested(t *testing.T) {
	r := newTestRepo(t)

	aID, err := r.Store.Put([]byte("a"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	bID, err := r.Store.Put([]byte("b"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	files := map[string]object.TreeFile{
		"a.txt":           {Path: "a.txt", ID: aID, Permissions: object.DefaultFilePermissions},
		"src/lib/b.txt":   {Path: "src/lib/b.txt", ID: bID, Permissions: object.DefaultFilePermissions},
		"src/lib/c.txt":   {Path: "src/lib/c.txt", ID: aID, Permissions: object.DefaultFilePermissions},
	}
	root, err := r.BuildTree(files)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	flat, err := r.Store.FlattenTree(root)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	if len(flat) != 3 {
		t.Fatalf("flattened files: got %d, want 3", len(flat))
	}
	for p, f := range files {
		if flat[p].ID != f.ID {
			t.Errorf("%s: got %s, want %s", p, flat[p].ID, f.ID)
		}
	}

	// Same input builds the same root id.
	again, err := r.BuildTree(files)
	if err != nil {
		t.Fatalf("BuildTree again: %v", err)
	}
	if again != root {
		t.Errorf("tree id not deterministic: %s vs %s", again, root)
	}
}

func TestBuildTreeEmpty(t *testing.T) {
	r := newTestRepo(t)
	root, err := r.BuildTree(map[string]object.TreeFile{})
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	flat, err := r.Store.FlattenTree(root)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	if len(flat) != 0 {
		t.Errorf("empty tree should flatten to nothing, got %v", flat)
	}
}

func TestReachableStopsAtFrontier(t *testing.T) {
	r := newTestRepo(t)
	first := stageAndShove(t, r, "one", map[string]string{"a.txt": "1"})
	second := stageAndShove(t, r, "two", map[string]string{"a.txt": "2"})
	third := stageAndShove(t, r, "three", map[string]string{"b.txt": "3"})

	full, err := r.Reachable([]ShoveId{third.ID}, nil)
	if err != nil {
		t.Fatalf("Reachable: %v", err)
	}
	if len(full.Shoves) != 3 {
		t.Errorf("full walk shoves: got %d, want 3", len(full.Shoves))
	}
	if len(full.Objects) == 0 {
		t.Error("full walk collected no objects")
	}

	partial, err := r.Reachable([]ShoveId{third.ID}, map[ShoveId]struct{}{first.ID: {}})
	if err != nil {
		t.Fatalf("Reachable with stop: %v", err)
	}
	if len(partial.Shoves) != 2 {
		t.Errorf("partial walk shoves: got %d, want 2", len(partial.Shoves))
	}
	if _, ok := partial.Shoves[first.ID]; ok {
		t.Error("stop shove should be excluded")
	}
	if _, ok := partial.Shoves[second.ID]; !ok {
		t.Error("second shove missing from partial walk")
	}
}

func TestReachableMissingShove(t *testing.T) {
	r := newTestRepo(t)
	if _, err := r.Reachable([]ShoveId{NewShoveId()}, nil); err == nil {
		t.Error("walking from an unknown shove should fail")
	}
}
