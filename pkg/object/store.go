package object

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ErrObjectNotFound is returned when a requested id has no backing file.
// A missing object is always a hard error for callers: skipping one would
// silently corrupt the shove graph.
var ErrObjectNotFound = errors.New("object not found")

// Store is a content-addressed object store with a 2-character fan-out
// directory layout: <root>/ab/cdef0123...
//
// Objects are written once and never mutated. Content is stored raw, so
// Get(Put(x)) returns x byte-exact.
type Store struct {
	root string
}

// NewStore creates a Store rooted at the given directory. Fan-out
// subdirectories are created lazily on first write.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// objectPath returns the filesystem path for a given id.
func (s *Store) objectPath(id ID) string {
	return filepath.Join(s.root, string(id[:2]), string(id[2:]))
}

// Has reports whether the store contains an object with the given id.
func (s *Store) Has(id ID) bool {
	if !id.Valid() {
		return false
	}
	_, err := os.Stat(s.objectPath(id))
	return err == nil
}

// Put stores raw content and returns its content id. Storing the same bytes
// twice is a no-op: the backing file is written at most once, and concurrent
// writers of the same content are safe because the final rename lands the
// identical bytes.
func (s *Store) Put(data []byte) (ID, error) {
	id := IDFromContent(data)

	// Fast path: already exists.
	if s.Has(id) {
		return id, nil
	}

	dir := filepath.Join(s.root, string(id[:2]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("object write mkdir: %w", err)
	}

	// Atomic write via temp + rename.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return "", fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write close: %w", err)
	}

	if err := os.Rename(tmpName, s.objectPath(id)); err != nil {
		os.Remove(tmpName)
		return "", fmt.Errorf("object write rename: %w", err)
	}

	return id, nil
}

// PutFile stores the current content of the file at path.
func (s *Store) PutFile(path string) (ID, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("object store file %q: %w", path, err)
	}
	return s.Put(data)
}

// Get retrieves an object's raw bytes by id.
func (s *Store) Get(id ID) ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("object %q: malformed id", id)
	}
	data, err := os.ReadFile(s.objectPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("object %s: %w", id, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("object read %s: %w", id, err)
	}
	return data, nil
}

// PutTree serializes a Tree and stores it as a regular object.
func (s *Store) PutTree(t *Tree) (ID, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(t); err != nil {
		return "", fmt.Errorf("tree encode: %w", err)
	}
	return s.Put(buf.Bytes())
}

// GetTree reads and deserializes a Tree object. A tree that fails to decode
// is reported as corrupt rather than treated as empty.
func (s *Store) GetTree(id ID) (*Tree, error) {
	data, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	var t Tree
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("tree %s: decode: %w", id, err)
	}
	return &t, nil
}
