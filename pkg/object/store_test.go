package object

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "objects"))
}

func TestPutGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	cases := []struct {
		name string
		data []byte
	}{
		{"text", []byte("hello pocket\n")},
		{"empty", []byte{}},
		{"binary", []byte{0x00, 0xff, 0x10, 0x00, 0x7f}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := s.Put(tc.data)
			if err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, err := s.Get(id)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if !bytes.Equal(got, tc.data) {
				t.Errorf("round trip mismatch: got %q want %q", got, tc.data)
			}
		})
	}
}

func TestPutIsDeterministic(t *testing.T) {
	s := newTestStore(t)

	data := []byte("same content")
	id1, err := s.Put(data)
	if err != nil {
		t.Fatalf("first Put: %v", err)
	}
	id2, err := s.Put(data)
	if err != nil {
		t.Fatalf("second Put: %v", err)
	}
	if id1 != id2 {
		t.Errorf("same content produced different ids: %s vs %s", id1, id2)
	}

	other, err := s.Put([]byte("different content"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if other == id1 {
		t.Error("different content produced the same id")
	}
}

func TestPutFanout(t *testing.T) {
	s := newTestStore(t)

	id, err := s.Put([]byte("fanout check"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	want := filepath.Join(s.root, string(id[:2]), string(id[2:]))
	if _, err := os.Stat(want); err != nil {
		t.Errorf("object not at fan-out path %s: %v", want, err)
	}
}

func TestGetMissing(t *testing.T) {
	s := newTestStore(t)

	missing := IDFromContent([]byte("never stored"))
	if _, err := s.Get(missing); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("Get missing: got %v, want ErrObjectNotFound", err)
	}
	if s.Has(missing) {
		t.Error("Has reported true for a missing object")
	}
}

func TestGetMalformedID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get("nothex"); err == nil {
		t.Error("Get with malformed id should fail")
	}
}

func TestTreeRoundTrip(t *testing.T) {
	s := newTestStore(t)

	blobID, err := s.Put([]byte("file body"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	tree := NewTree([]TreeEntry{
		{Name: "b.txt", ID: blobID, Type: EntryFile, Permissions: DefaultFilePermissions},
		{Name: "a.txt", ID: blobID, Type: EntryFile, Permissions: DefaultFilePermissions},
	})
	id, err := s.PutTree(tree)
	if err != nil {
		t.Fatalf("PutTree: %v", err)
	}

	got, err := s.GetTree(id)
	if err != nil {
		t.Fatalf("GetTree: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(got.Entries))
	}
	if got.Entries[0].Name != "a.txt" || got.Entries[1].Name != "b.txt" {
		t.Errorf("entries not sorted by name: %v", got.Entries)
	}
}

func TestTreeIDIndependentOfEntryOrder(t *testing.T) {
	s := newTestStore(t)

	blobID, err := s.Put([]byte("x"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	e1 := TreeEntry{Name: "one", ID: blobID, Type: EntryFile, Permissions: DefaultFilePermissions}
	e2 := TreeEntry{Name: "two", ID: blobID, Type: EntryFile, Permissions: DefaultFilePermissions}

	id1, err := s.PutTree(NewTree([]TreeEntry{e1, e2}))
	if err != nil {
		t.Fatalf("PutTree: %v", err)
	}
	id2, err := s.PutTree(NewTree([]TreeEntry{e2, e1}))
	if err != nil {
		t.Fatalf("PutTree: %v", err)
	}
	if id1 != id2 {
		t.Errorf("entry order changed the tree id: %s vs %s", id1, id2)
	}
}

func TestFlattenTree(t *testing.T) {
	s := newTestStore(t)

	aID, _ := s.Put([]byte("a"))
	bID, _ := s.Put([]byte("b"))

	sub, err := s.PutTree(NewTree([]TreeEntry{
		{Name: "deep.txt", ID: bID, Type: EntryFile, Permissions: DefaultFilePermissions},
	}))
	if err != nil {
		t.Fatalf("PutTree: %v", err)
	}
	root, err := s.PutTree(NewTree([]TreeEntry{
		{Name: "a.txt", ID: aID, Type: EntryFile, Permissions: DefaultFilePermissions},
		{Name: "src", ID: sub, Type: EntryTree},
	}))
	if err != nil {
		t.Fatalf("PutTree: %v", err)
	}

	files, err := s.FlattenTree(root)
	if err != nil {
		t.Fatalf("FlattenTree: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files: got %d, want 2", len(files))
	}
	if files["a.txt"].ID != aID {
		t.Errorf("a.txt id: got %s, want %s", files["a.txt"].ID, aID)
	}
	if files["src/deep.txt"].ID != bID {
		t.Errorf("src/deep.txt id: got %s, want %s", files["src/deep.txt"].ID, bID)
	}

	empty, err := s.FlattenTree("")
	if err != nil {
		t.Fatalf("FlattenTree empty: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("empty root should flatten to no files, got %d", len(empty))
	}
}

func TestTreeObjects(t *testing.T) {
	s := newTestStore(t)

	// Two files with the same content share one object.
	blob, _ := s.Put([]byte("shared"))
	sub, _ := s.PutTree(NewTree([]TreeEntry{
		{Name: "copy.txt", ID: blob, Type: EntryFile, Permissions: DefaultFilePermissions},
	}))
	root, _ := s.PutTree(NewTree([]TreeEntry{
		{Name: "orig.txt", ID: blob, Type: EntryFile, Permissions: DefaultFilePermissions},
		{Name: "dir", ID: sub, Type: EntryTree},
	}))

	ids, err := s.TreeObjects(root)
	if err != nil {
		t.Fatalf("TreeObjects: %v", err)
	}
	if len(ids) != 3 {
		t.Fatalf("ids: got %d, want 3 (root, sub, blob)", len(ids))
	}
	want := map[ID]bool{root: true, sub: true, blob: true}
	for _, id := range ids {
		if !want[id] {
			t.Errorf("unexpected id %s", id)
		}
	}
}
