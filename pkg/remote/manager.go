package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync/atomic"

	"github.com/BurntSushi/toml"
	"golang.org/x/sync/errgroup"

	"github.com/pocketvcs/pocket/pkg/merge"
	"github.com/pocketvcs/pocket/pkg/object"
	"github.com/pocketvcs/pocket/pkg/repo"
)

// transferWorkers bounds parallel object transfers. Correctness does not
// depend on the bound; object writes are idempotent on both sides.
const transferWorkers = 4

// Manager moves history between the local repository and configured remotes.
type Manager struct {
	repo *repo.Repository
	log  *slog.Logger

	// openTransport is swappable for tests.
	openTransport func(rc repo.RemoteConfig) (Transport, error)
}

// NewManager returns a Manager. A nil logger falls back to slog.Default.
func NewManager(r *repo.Repository, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{repo: r, log: logger, openTransport: OpenTransport}
}

// PushResult summarizes a completed push.
type PushResult struct {
	Remote      string
	Timeline    string
	Head        repo.ShoveId
	ShovesSent  int
	ObjectsSent int
}

// FetchResult summarizes a completed fetch.
type FetchResult struct {
	Remote          string
	Timeline        string
	Head            repo.ShoveId
	ShovesReceived  int
	ObjectsReceived int
}

// PullResult is a fetch followed by a merge of the fetched head.
type PullResult struct {
	Fetch *FetchResult
	Merge *merge.Result
}

// Push uploads the named timeline's history to a remote and advances the
// remote head. The remote head must be an ancestor of ours; diverged
// histories are rejected, never overwritten. The head update is the final
// step and is compare-and-swap, so a concurrent push loses cleanly with
// ErrRemoteRejected.
func (m *Manager) Push(ctx context.Context, remoteName, timelineName string) (*PushResult, error) {
	remoteName, rc, err := m.repo.Config.LookupRemote(remoteName)
	if err != nil {
		return nil, err
	}
	tl, err := m.resolveTimeline(timelineName)
	if err != nil {
		return nil, err
	}
	if !tl.HasHead() {
		return nil, fmt.Errorf("push: timeline %q has no shoves", tl.Name)
	}

	remoteTimeline := tl.Name
	if tl.Remote != nil && tl.Remote.RemoteTimeline != "" {
		remoteTimeline = tl.Remote.RemoteTimeline
	}

	t, err := m.openTransport(rc)
	if err != nil {
		return nil, err
	}
	defer t.Close()

	var remoteHead repo.ShoveId
	if ref, err := t.Timeline(ctx, remoteTimeline); err == nil {
		remoteHead = ref.Head
	} else if !isNotFound(err) {
		return nil, err
	}

	stop := make(map[repo.ShoveId]struct{})
	if remoteHead != "" {
		if remoteHead != tl.Head {
			ok, err := m.isAncestor(remoteHead, tl.Head)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("push %q: remote is ahead or diverged, fetch and merge first: %w",
					remoteTimeline, ErrRemoteRejected)
			}
		}
		stop[remoteHead] = struct{}{}
	}

	set, err := m.repo.Reachable([]repo.ShoveId{tl.Head}, stop)
	if err != nil {
		return nil, err
	}

	objectsSent, err := m.uploadObjects(ctx, t, set)
	if err != nil {
		return nil, err
	}

	shovesSent := 0
	for _, s := range set.Shoves {
		ok, err := t.HasShove(ctx, s.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			continue
		}
		if err := t.PutShove(ctx, s); err != nil {
			return nil, err
		}
		shovesSent++
	}

	if err := t.UpdateTimeline(ctx, remoteTimeline, remoteHead, tl.Head); err != nil {
		return nil, err
	}

	tl.SetRemoteTracking(remoteName, remoteTimeline)
	tl.Remote.LastKnownShove = tl.Head
	if err := m.repo.SaveTimeline(tl); err != nil {
		return nil, err
	}

	m.log.Info("push complete",
		"remote", remoteName, "timeline", remoteTimeline,
		"head", tl.Head.Short(), "shoves", shovesSent, "objects", objectsSent)
	return &PushResult{
		Remote:      remoteName,
		Timeline:    remoteTimeline,
		Head:        tl.Head,
		ShovesSent:  shovesSent,
		ObjectsSent: objectsSent,
	}, nil
}

// Fetch downloads the named remote timeline's history into the local store
// without touching any existing local head. A local timeline of the same
// name is created when absent; otherwise only its remote tracking state is
// updated.
func (m *Manager) Fetch(ctx context.Context, remoteName, timelineName string) (*FetchResult, error) {
	remoteName, rc, err := m.repo.Config.LookupRemote(remoteName)
	if err != nil {
		return nil, err
	}
	if timelineName == "" {
		current, err := m.repo.CurrentTimeline()
		if err != nil {
			return nil, err
		}
		timelineName = current.Name
	}

	t, err := m.openTransport(rc)
	if err != nil {
		return nil, err
	}
	defer t.Close()

	ref, err := t.Timeline(ctx, timelineName)
	if err != nil {
		return nil, err
	}

	// Walk the remote DAG collecting shoves we miss, then record them
	// parents-first so the local set of shoves is always ancestry-closed.
	var missing []*repo.Shove
	objectsReceived := 0
	visited := make(map[repo.ShoveId]struct{})
	queue := []repo.ShoveId{ref.Head}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == "" {
			continue
		}
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		if m.repo.HasShove(id) {
			continue
		}
		s, err := t.GetShove(ctx, id)
		if err != nil {
			return nil, err
		}
		n, err := m.fetchTree(ctx, t, s.RootTreeID)
		if err != nil {
			return nil, err
		}
		objectsReceived += n
		missing = append(missing, s)
		queue = append(queue, s.ParentIDs...)
	}
	for i := len(missing) - 1; i >= 0; i-- {
		if err := m.repo.SaveShove(missing[i]); err != nil {
			return nil, err
		}
	}

	if err := m.recordTracking(remoteName, timelineName, ref.Head); err != nil {
		return nil, err
	}

	m.log.Info("fetch complete",
		"remote", remoteName, "timeline", timelineName,
		"head", ref.Head.Short(), "shoves", len(missing), "objects", objectsReceived)
	return &FetchResult{
		Remote:          remoteName,
		Timeline:        timelineName,
		Head:            ref.Head,
		ShovesReceived:  len(missing),
		ObjectsReceived: objectsReceived,
	}, nil
}

// Pull fetches a remote timeline and merges its head into the current
// timeline.
func (m *Manager) Pull(ctx context.Context, remoteName, timelineName string, strategy merge.Strategy) (*PullResult, error) {
	fetched, err := m.Fetch(ctx, remoteName, timelineName)
	if err != nil {
		return nil, err
	}

	merger := merge.NewMerger(m.repo, m.log)
	label := fetched.Remote + "/" + fetched.Timeline
	res, err := merger.MergeShove(label, fetched.Head, strategy)
	if err != nil {
		return nil, err
	}
	return &PullResult{Fetch: fetched, Merge: res}, nil
}

// uploadObjects sends every missing object through a bounded worker pool.
func (m *Manager) uploadObjects(ctx context.Context, t Transport, set *repo.ReachableSet) (int, error) {
	ids := make([]object.ID, 0, len(set.Objects))
	for id := range set.Objects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var sent atomic.Int64
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(transferWorkers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			ok, err := t.HasObject(ctx, id)
			if err != nil {
				return err
			}
			if ok {
				return nil
			}
			data, err := m.repo.Store.Get(id)
			if err != nil {
				return err
			}
			if _, err := t.PutObject(ctx, data); err != nil {
				return err
			}
			sent.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return int(sent.Load()), nil
}

// fetchTree downloads the tree rooted at id plus every blob and subtree it
// references, skipping content the local store already has. Blobs of one
// tree download in parallel. The tree object itself is stored only after
// all of its children, so a stored tree always implies a resolvable
// subtree and the Has fast path can never skip missing children after an
// interrupted fetch.
func (m *Manager) fetchTree(ctx context.Context, t Transport, id object.ID) (int, error) {
	if m.repo.Store.Has(id) {
		return 0, nil
	}
	data, err := t.GetObject(ctx, id)
	if err != nil {
		return 0, err
	}
	received := 0

	var tree object.Tree
	if err := toml.Unmarshal(data, &tree); err != nil {
		return 0, fmt.Errorf("fetch tree %s: decode: %w", id.Short(), err)
	}

	var blobs []object.ID
	for _, e := range tree.Entries {
		switch e.Type {
		case object.EntryTree:
			n, err := m.fetchTree(ctx, t, e.ID)
			if err != nil {
				return 0, err
			}
			received += n
		case object.EntryFile:
			if !m.repo.Store.Has(e.ID) {
				blobs = append(blobs, e.ID)
			}
		}
	}

	var got atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(transferWorkers)
	for _, blobID := range blobs {
		blobID := blobID
		g.Go(func() error {
			if m.repo.Store.Has(blobID) {
				return nil
			}
			data, err := t.GetObject(gctx, blobID)
			if err != nil {
				return err
			}
			if _, err := m.repo.Store.Put(data); err != nil {
				return err
			}
			got.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if _, err := m.repo.Store.Put(data); err != nil {
		return 0, err
	}
	return received + int(got.Load()) + 1, nil
}

// isAncestor reports whether candidate is reachable from head.
func (m *Manager) isAncestor(candidate, head repo.ShoveId) (bool, error) {
	if !m.repo.HasShove(candidate) {
		return false, nil
	}
	visited := make(map[repo.ShoveId]struct{})
	queue := []repo.ShoveId{head}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if id == candidate {
			return true, nil
		}
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		s, err := m.repo.LoadShove(id)
		if err != nil {
			return false, err
		}
		queue = append(queue, s.ParentIDs...)
	}
	return false, nil
}

func (m *Manager) resolveTimeline(name string) (*repo.Timeline, error) {
	if name == "" {
		return m.repo.CurrentTimeline()
	}
	return m.repo.LoadTimeline(name)
}

// recordTracking stores the fetched remote head. A missing local timeline is
// created pointing at the fetched head; an existing one keeps its head.
func (m *Manager) recordTracking(remoteName, timelineName string, head repo.ShoveId) error {
	release, err := m.repo.Lock()
	if err != nil {
		return err
	}
	defer release()

	var tl *repo.Timeline
	if m.repo.TimelineExists(timelineName) {
		tl, err = m.repo.LoadTimeline(timelineName)
		if err != nil {
			return err
		}
	} else {
		tl = repo.NewTimeline(timelineName)
		tl.Head = head
	}
	tl.SetRemoteTracking(remoteName, timelineName)
	tl.Remote.LastKnownShove = head
	return m.repo.SaveTimeline(tl)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrRemoteTimelineNotFound)
}
