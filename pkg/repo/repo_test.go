package repo

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	r, err := New(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func writeWorkFile(t *testing.T, r *Repository, rel, content string) {
	t.Helper()
	abs := filepath.Join(r.Root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func removeWorkFile(r *Repository, rel string) error {
	return os.Remove(filepath.Join(r.Root, filepath.FromSlash(rel)))
}

func readWorkFile(t *testing.T, r *Repository, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.Root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

// stageAndShove is the common "edit, stage, commit" step used across tests.
func stageAndShove(t *testing.T, r *Repository, message string, files map[string]string) *Shove {
	t.Helper()
	for rel, content := range files {
		writeWorkFile(t, r, rel, content)
		if err := r.StagePath(rel); err != nil {
			t.Fatalf("StagePath %s: %v", rel, err)
		}
	}
	s, err := r.CreateShove(message)
	if err != nil {
		t.Fatalf("CreateShove %q: %v", message, err)
	}
	return s
}

func TestNewCreatesLayout(t *testing.T) {
	r := newTestRepo(t)

	for _, rel := range []string{
		".pocket/config.toml",
		".pocket/HEAD",
		".pocket/objects",
		".pocket/shoves",
		".pocket/timelines/main.toml",
		".pocket/piles",
	} {
		if _, err := os.Stat(filepath.Join(r.Root, rel)); err != nil {
			t.Errorf("missing %s: %v", rel, err)
		}
	}

	name, err := r.HeadTimelineName()
	if err != nil {
		t.Fatalf("HeadTimelineName: %v", err)
	}
	if name != "main" {
		t.Errorf("HEAD timeline: got %q, want main", name)
	}

	tl, err := r.CurrentTimeline()
	if err != nil {
		t.Fatalf("CurrentTimeline: %v", err)
	}
	if tl.HasHead() {
		t.Errorf("fresh timeline should be unborn, head = %s", tl.Head)
	}
}

func TestNewRefusesExisting(t *testing.T) {
	r := newTestRepo(t)
	if _, err := New(r.Root, testLogger()); !errors.Is(err, ErrRepositoryExists) {
		t.Errorf("second New: got %v, want ErrRepositoryExists", err)
	}
}

func TestOpenFromSubdirectory(t *testing.T) {
	r := newTestRepo(t)
	sub := filepath.Join(r.Root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	opened, err := Open(sub, testLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened.Root != r.Root {
		t.Errorf("Open root: got %s, want %s", opened.Root, r.Root)
	}
}

func TestOpenOutsideRepository(t *testing.T) {
	if _, err := Open(t.TempDir(), testLogger()); !errors.Is(err, ErrNotARepository) {
		t.Errorf("Open: got %v, want ErrNotARepository", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	r := newTestRepo(t)
	r.Config.User.Name = "Ada"
	r.Config.User.Email = "ada@example.com"
	r.Config.Remotes["origin"] = RemoteConfig{
		URL:  "https://pocket.example.com/repo",
		Auth: RemoteAuth{Kind: AuthToken, Token: "secret"},
	}
	r.Config.Remote.DefaultRemote = "origin"
	if err := r.SaveConfig(); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	opened, err := Open(r.Root, testLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if opened.Config.User.Name != "Ada" {
		t.Errorf("user name: got %q", opened.Config.User.Name)
	}
	name, rc, err := opened.Config.LookupRemote("")
	if err != nil {
		t.Fatalf("LookupRemote: %v", err)
	}
	if name != "origin" || rc.Auth.Token != "secret" {
		t.Errorf("default remote: got %q auth %+v", name, rc.Auth)
	}
}

func TestLockExcludesSecondHolder(t *testing.T) {
	r := newTestRepo(t)
	release, err := r.Lock()
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer release()

	if _, err := os.Stat(filepath.Join(r.Root, ".pocket", "LOCK")); err != nil {
		t.Errorf("lock file missing while held: %v", err)
	}
	if _, err := r.Lock(); !errors.Is(err, ErrLockHeld) {
		t.Errorf("second Lock: got %v, want ErrLockHeld", err)
	}
}
