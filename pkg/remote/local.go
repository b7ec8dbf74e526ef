package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pocketvcs/pocket/pkg/object"
	"github.com/pocketvcs/pocket/pkg/repo"
)

// localTransport serves a remote stored as a plain directory: objects/ in
// the same fan-out layout as a repository, shoves/*.toml, timelines/*.toml.
// Opening a path that does not exist yet creates an empty remote, which is
// how a first push to a fresh directory works.
type localTransport struct {
	root  string
	store *object.Store
}

func newLocalTransport(root string) (*localTransport, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("remote path %q: %w", root, err)
	}
	for _, dir := range []string{
		root,
		filepath.Join(root, "objects"),
		filepath.Join(root, "shoves"),
		filepath.Join(root, "timelines"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("open remote %q: %w", root, err)
		}
	}
	return &localTransport{
		root:  root,
		store: object.NewStore(filepath.Join(root, "objects")),
	}, nil
}

func (t *localTransport) timelinePath(name string) string {
	return filepath.Join(t.root, "timelines", name+".toml")
}

func (t *localTransport) shovePath(id repo.ShoveId) string {
	return filepath.Join(t.root, "shoves", string(id)+".toml")
}

func (t *localTransport) Timeline(_ context.Context, name string) (TimelineRef, error) {
	var tl repo.Timeline
	data, err := os.ReadFile(t.timelinePath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return TimelineRef{}, fmt.Errorf("timeline %q: %w", name, ErrRemoteTimelineNotFound)
		}
		return TimelineRef{}, fmt.Errorf("remote timeline %q: %w", name, err)
	}
	if err := toml.Unmarshal(data, &tl); err != nil {
		return TimelineRef{}, fmt.Errorf("remote timeline %q: %w", name, err)
	}
	return TimelineRef{Name: tl.Name, Head: tl.Head}, nil
}

func (t *localTransport) ListTimelines(ctx context.Context) ([]TimelineRef, error) {
	entries, err := os.ReadDir(filepath.Join(t.root, "timelines"))
	if err != nil {
		return nil, fmt.Errorf("list remote timelines: %w", err)
	}
	var refs []TimelineRef
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".toml")
		if !ok || e.IsDir() {
			continue
		}
		ref, err := t.Timeline(ctx, name)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (t *localTransport) HasObject(_ context.Context, id object.ID) (bool, error) {
	return t.store.Has(id), nil
}

func (t *localTransport) GetObject(_ context.Context, id object.ID) ([]byte, error) {
	return t.store.Get(id)
}

func (t *localTransport) PutObject(_ context.Context, data []byte) (object.ID, error) {
	return t.store.Put(data)
}

func (t *localTransport) HasShove(_ context.Context, id repo.ShoveId) (bool, error) {
	_, err := os.Stat(t.shovePath(id))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (t *localTransport) GetShove(_ context.Context, id repo.ShoveId) (*repo.Shove, error) {
	data, err := os.ReadFile(t.shovePath(id))
	if err != nil {
		return nil, fmt.Errorf("remote shove %s: %w", id.Short(), err)
	}
	var s repo.Shove
	if err := toml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("remote shove %s: %w", id.Short(), err)
	}
	return &s, nil
}

func (t *localTransport) PutShove(ctx context.Context, s *repo.Shove) error {
	if ok, err := t.HasShove(ctx, s.ID); err != nil {
		return err
	} else if ok {
		return nil
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(s); err != nil {
		return fmt.Errorf("remote shove %s: %w", s.ID.Short(), err)
	}
	return t.writeAtomic(t.shovePath(s.ID), buf.Bytes())
}

func (t *localTransport) UpdateTimeline(ctx context.Context, name string, oldHead, newHead repo.ShoveId) error {
	unlock, err := t.lock()
	if err != nil {
		return err
	}
	defer unlock()

	var current repo.ShoveId
	ref, err := t.Timeline(ctx, name)
	switch {
	case err == nil:
		current = ref.Head
	case errors.Is(err, ErrRemoteTimelineNotFound):
		// Unborn on the remote; oldHead must be empty.
	default:
		return err
	}
	if current != oldHead {
		return fmt.Errorf("timeline %q is at %s, expected %s: %w",
			name, current.Short(), oldHead.Short(), ErrRemoteRejected)
	}

	tl := repo.Timeline{Name: name, Head: newHead}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(&tl); err != nil {
		return fmt.Errorf("remote timeline %q: %w", name, err)
	}
	return t.writeAtomic(t.timelinePath(name), buf.Bytes())
}

func (t *localTransport) Close() error { return nil }

func (t *localTransport) lock() (func(), error) {
	path := filepath.Join(t.root, "LOCK")
	for attempt := 0; attempt < 50; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("lock remote: %w", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	return nil, fmt.Errorf("lock remote %s: held by another process", t.root)
}

func (t *localTransport) writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
