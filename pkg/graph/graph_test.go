package graph

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pocketvcs/pocket/pkg/repo"
)

func newTestRepo(t *testing.T) *repo.Repository {
	t.Helper()
	r, err := repo.New(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return r
}

func commitFile(t *testing.T, r *repo.Repository, rel, content, message string) *repo.Shove {
	t.Helper()
	abs := filepath.Join(r.Root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	require.NoError(t, r.StagePath(rel))
	s, err := r.CreateShove(message)
	require.NoError(t, err)
	return s
}

func TestBuildInvertsParentEdges(t *testing.T) {
	r := newTestRepo(t)
	first := commitFile(t, r, "a.txt", "v1", "first")
	second := commitFile(t, r, "a.txt", "v2", "second")
	_, err := r.CreateTimeline("feature")
	require.NoError(t, err)
	require.NoError(t, r.SwitchTimeline("feature"))
	third := commitFile(t, r, "b.txt", "b", "third")

	g, err := Build(r)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 3)

	assert.Empty(t, g.Nodes[first.ID].Parents)
	assert.ElementsMatch(t, []repo.ShoveId{second.ID}, g.Nodes[first.ID].Children)
	assert.ElementsMatch(t, []repo.ShoveId{third.ID}, g.Nodes[second.ID].Children)
	assert.Empty(t, g.Nodes[third.ID].Children)

	assert.Equal(t, second.ID, g.Heads["main"])
	assert.Equal(t, third.ID, g.Heads["feature"])
	assert.Equal(t, []string{"main"}, g.Nodes[second.ID].Timelines)
	assert.Equal(t, []string{"feature"}, g.Nodes[third.ID].Timelines)
	assert.Equal(t, []repo.ShoveId{first.ID}, g.Roots())
}

func TestAncestors(t *testing.T) {
	r := newTestRepo(t)
	first := commitFile(t, r, "a.txt", "v1", "first")
	second := commitFile(t, r, "a.txt", "v2", "second")
	third := commitFile(t, r, "a.txt", "v3", "third")

	g, err := Build(r)
	require.NoError(t, err)

	anc := g.Ancestors(third.ID)
	assert.Len(t, anc, 2)
	assert.Contains(t, anc, first.ID)
	assert.Contains(t, anc, second.ID)

	assert.Empty(t, g.Ancestors(first.ID))
	assert.True(t, g.IsAncestor(first.ID, third.ID))
	assert.False(t, g.IsAncestor(third.ID, first.ID))
	assert.False(t, g.IsAncestor(third.ID, third.ID))
	assert.Empty(t, g.Ancestors(repo.ShoveId("unknown")))
}

func TestBuildMissingParent(t *testing.T) {
	r := newTestRepo(t)
	s := commitFile(t, r, "a.txt", "v1", "first")

	// Hand-craft a shove whose parent was never persisted.
	orphan := repo.NewShove([]repo.ShoveId{repo.NewShoveId()}, r.NewAuthor(), "broken", s.RootTreeID)
	require.NoError(t, r.SaveShove(orphan))

	_, err := Build(r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing parent")
}

func TestRenderNewestFirst(t *testing.T) {
	r := newTestRepo(t)
	commitFile(t, r, "a.txt", "v1", "first change")
	second := commitFile(t, r, "a.txt", "v2", "second change")

	g, err := Build(r)
	require.NoError(t, err)
	out := g.Render()

	assert.Contains(t, out, "main -> "+second.ID.Short())
	assert.Contains(t, out, "(main) second change")
	assert.Contains(t, out, "first change")
	// Children render before parents.
	assert.Less(t, strings.Index(out, "second change"), strings.Index(out, "first change"))
}

func TestRenderEmptyRepository(t *testing.T) {
	r := newTestRepo(t)
	g, err := Build(r)
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Heads)
	assert.Empty(t, g.Render())
}
