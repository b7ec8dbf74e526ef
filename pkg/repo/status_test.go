package repo

import (
	"testing"
)

func TestStatusFreshRepo(t *testing.T) {
	r := newTestRepo(t)
	status, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Timeline != "main" {
		t.Errorf("timeline: got %q, want main", status.Timeline)
	}
	if status.Head != "" {
		t.Errorf("head: got %s, want unborn", status.Head)
	}
	if !status.IsClean() {
		t.Errorf("fresh repo should be clean: %+v", status)
	}
}

func TestStatusClassification(t *testing.T) {
	r := newTestRepo(t)
	stageAndShove(t, r, "base", map[string]string{
		"clean.txt":   "same",
		"edited.txt":  "v1",
		"missing.txt": "was here",
	})

	writeWorkFile(t, r, "edited.txt", "v2")
	writeWorkFile(t, r, "untracked.txt", "new")
	writeWorkFile(t, r, "piled.txt", "staged")
	if err := removeWorkFile(r, "missing.txt"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := r.StagePath("piled.txt"); err != nil {
		t.Fatalf("StagePath: %v", err)
	}

	status, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}

	if len(status.Piled) != 1 || status.Piled[0].Path != "piled.txt" {
		t.Errorf("piled: got %+v, want piled.txt", status.Piled)
	}
	wantModified := []string{"edited.txt", "missing.txt"}
	if len(status.Modified) != len(wantModified) {
		t.Fatalf("modified: got %v, want %v", status.Modified, wantModified)
	}
	for i, p := range status.Modified {
		if p != wantModified[i] {
			t.Errorf("modified[%d]: got %q, want %q", i, p, wantModified[i])
		}
	}
	if len(status.Untracked) != 1 || status.Untracked[0] != "untracked.txt" {
		t.Errorf("untracked: got %v, want [untracked.txt]", status.Untracked)
	}
	if status.IsClean() {
		t.Error("status should be dirty")
	}
}

func TestStatusHonorsIgnoreRules(t *testing.T) {
	r := newTestRepo(t)
	writeWorkFile(t, r, ".pocketignore", "*.log\nbuild/\n")
	writeWorkFile(t, r, "app.log", "noise")
	writeWorkFile(t, r, "build/out.bin", "artifact")
	writeWorkFile(t, r, "main.go", "package main")

	status, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}

	want := map[string]bool{".pocketignore": true, "main.go": true}
	if len(status.Untracked) != len(want) {
		t.Fatalf("untracked: got %v, want %v", status.Untracked, want)
	}
	for _, p := range status.Untracked {
		if !want[p] {
			t.Errorf("ignored file %q reported untracked", p)
		}
	}
}

func TestStatusIgnorePatternsFromConfig(t *testing.T) {
	r := newTestRepo(t)
	r.Config.Core.IgnorePatterns = []string{"*.tmp"}
	writeWorkFile(t, r, "scratch.tmp", "x")
	writeWorkFile(t, r, "real.txt", "y")

	status, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(status.Untracked) != 1 || status.Untracked[0] != "real.txt" {
		t.Errorf("untracked: got %v, want [real.txt]", status.Untracked)
	}
}

func TestIgnoreFileEditing(t *testing.T) {
	r := newTestRepo(t)

	if err := r.AddIgnorePattern("*.log"); err != nil {
		t.Fatalf("AddIgnorePattern: %v", err)
	}
	if err := r.AddIgnorePattern("*.log"); err != nil {
		t.Fatalf("AddIgnorePattern duplicate: %v", err)
	}
	if err := r.AddIgnorePattern("tmp/"); err != nil {
		t.Fatalf("AddIgnorePattern: %v", err)
	}

	patterns, err := r.IgnorePatterns()
	if err != nil {
		t.Fatalf("IgnorePatterns: %v", err)
	}
	if len(patterns) != 2 {
		t.Fatalf("patterns: got %v, want 2 entries", patterns)
	}

	if err := r.RemoveIgnorePattern("*.log"); err != nil {
		t.Fatalf("RemoveIgnorePattern: %v", err)
	}
	if err := r.RemoveIgnorePattern("*.log"); err == nil {
		t.Error("removing an absent pattern should fail")
	}

	patterns, err = r.IgnorePatterns()
	if err != nil {
		t.Fatalf("IgnorePatterns: %v", err)
	}
	if len(patterns) != 1 || patterns[0] != "tmp/" {
		t.Errorf("patterns after remove: got %v, want [tmp/]", patterns)
	}
}

func TestConflictRecords(t *testing.T) {
	r := newTestRepo(t)

	records := []ConflictRecord{
		{Path: "src/main.go", OursID: "aa", TheirsID: "bb"},
		{Path: "doc.txt", BaseID: "cc", OursID: "dd", TheirsID: "ee"},
	}
	if err := r.RecordConflicts(records); err != nil {
		t.Fatalf("RecordConflicts: %v", err)
	}

	status, err := r.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(status.Conflicts) != 2 {
		t.Fatalf("conflicts: got %v, want 2", status.Conflicts)
	}
	if status.Conflicts[0] != "doc.txt" || status.Conflicts[1] != "src/main.go" {
		t.Errorf("conflicts order: got %v", status.Conflicts)
	}
	if status.IsClean() {
		t.Error("conflicted repo should not be clean")
	}

	if err := r.ResolveConflict("doc.txt"); err != nil {
		t.Fatalf("ResolveConflict: %v", err)
	}
	paths, err := r.ConflictPaths()
	if err != nil {
		t.Fatalf("ConflictPaths: %v", err)
	}
	if len(paths) != 1 || paths[0] != "src/main.go" {
		t.Errorf("after resolve: got %v", paths)
	}

	if err := r.ClearConflicts(); err != nil {
		t.Fatalf("ClearConflicts: %v", err)
	}
	paths, err = r.ConflictPaths()
	if err != nil {
		t.Fatalf("ConflictPaths: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("after clear: got %v", paths)
	}
}
