// Package merge joins two lines of history: fast-forward when one head
// already contains the other, otherwise a three-way merge against the
// nearest common ancestor, conflicting paths reported rather than guessed.
package merge

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/pocketvcs/pocket/pkg/object"
	"github.com/pocketvcs/pocket/pkg/repo"
)

// Strategy selects how a merge is allowed to complete.
type Strategy string

const (
	// StrategyAuto fast-forwards when possible, otherwise merges three-way.
	StrategyAuto Strategy = "auto"
	// StrategyFastForwardOnly refuses any merge that needs a merge shove.
	StrategyFastForwardOnly Strategy = "ff-only"
	// StrategyAlwaysCreateShove records a merge shove even when a
	// fast-forward would do.
	StrategyAlwaysCreateShove Strategy = "always-shove"
	// StrategyOurs resolves every conflict to the current timeline's side.
	StrategyOurs Strategy = "ours"
	// StrategyTheirs resolves every conflict to the incoming side.
	StrategyTheirs Strategy = "theirs"
)

// ParseStrategy maps a command-line strategy name to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyAuto, StrategyFastForwardOnly, StrategyAlwaysCreateShove, StrategyOurs, StrategyTheirs:
		return Strategy(s), nil
	case "":
		return StrategyAuto, nil
	}
	return "", fmt.Errorf("unknown merge strategy %q", s)
}

// ErrFastForwardOnly is returned when ff-only meets diverged histories.
var ErrFastForwardOnly = errors.New("fast-forward not possible")

// ErrNothingToMerge is returned when the merge source has no shoves.
var ErrNothingToMerge = errors.New("source has no shoves")

// Resolution marks how a conflicted path was settled.
type Resolution string

const (
	ResolutionOurs   Resolution = "ours"
	ResolutionTheirs Resolution = "theirs"
)

// Conflict is one path the three-way merge could not settle. An empty id
// means the file was absent on that side. Resolution is set only when a
// side-taking strategy settled it automatically.
type Conflict struct {
	Path       string
	BaseID     object.ID
	OursID     object.ID
	TheirsID   object.ID
	Resolution Resolution
}

// Result describes the outcome of a merge attempt.
type Result struct {
	// Success is false exactly when unresolved conflicts remain.
	Success bool
	// AlreadyUpToDate is set when the source is fully contained in the target.
	AlreadyUpToDate bool
	// FastForward is set when the head simply moved forward.
	FastForward bool
	// Shove is the shove the head points at after the merge: the new
	// merge shove, or the adopted head on a fast-forward.
	Shove *repo.Shove
	// Conflicts lists every conflicted path, resolved or not.
	Conflicts []Conflict
}

// Merger merges histories within one repository.
type Merger struct {
	repo *repo.Repository
	log  *slog.Logger
}

// NewMerger returns a Merger. A nil logger falls back to slog.Default.
func NewMerger(r *repo.Repository, logger *slog.Logger) *Merger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Merger{repo: r, log: logger}
}

// MergeTimeline merges the named source timeline into the current one.
// A conflicted merge creates no shove, leaves the working directory alone,
// and records the conflicts for status; a successful merge updates both the
// timeline head and the working directory.
func (m *Merger) MergeTimeline(source string, strategy Strategy) (*Result, error) {
	release, err := m.repo.Lock()
	if err != nil {
		return nil, err
	}
	defer release()

	ours, err := m.repo.CurrentTimeline()
	if err != nil {
		return nil, err
	}
	theirs, err := m.repo.LoadTimeline(source)
	if err != nil {
		return nil, err
	}
	if !theirs.HasHead() {
		return nil, fmt.Errorf("merge %q: %w", source, ErrNothingToMerge)
	}
	return m.merge(ours, source, theirs.Head, strategy)
}

// MergeShove merges an arbitrary local shove, typically a fetched remote
// head, into the current timeline. label names the source in messages and
// logs, e.g. "origin/main".
func (m *Merger) MergeShove(label string, theirsHead repo.ShoveId, strategy Strategy) (*Result, error) {
	release, err := m.repo.Lock()
	if err != nil {
		return nil, err
	}
	defer release()

	ours, err := m.repo.CurrentTimeline()
	if err != nil {
		return nil, err
	}
	if theirsHead == "" {
		return nil, fmt.Errorf("merge %q: %w", label, ErrNothingToMerge)
	}
	return m.merge(ours, label, theirsHead, strategy)
}

// merge runs under the repository lock.
func (m *Merger) merge(ours *repo.Timeline, label string, theirsHead repo.ShoveId, strategy Strategy) (*Result, error) {
	status, err := m.repo.Status()
	if err != nil {
		return nil, err
	}
	if !status.IsClean() {
		return nil, fmt.Errorf("merge %q: %w", label, repo.ErrDirtyWorktree)
	}

	// An unborn target adopts the source history outright.
	if !ours.HasHead() {
		return m.fastForward(ours, label, theirsHead, strategy)
	}
	// Equal heads: a trivial fast-forward of zero distance.
	if ours.Head == theirsHead {
		m.log.Info("merge: already up to date", "source", label)
		return &Result{Success: true, AlreadyUpToDate: true, FastForward: true}, nil
	}

	base, err := commonAncestor(m.repo, ours.Head, theirsHead)
	if err != nil {
		if errors.Is(err, ErrNoCommonAncestor) {
			return nil, fmt.Errorf("merge %q: %w", label, err)
		}
		return nil, err
	}

	if base == theirsHead {
		m.log.Info("merge: already up to date", "source", label)
		return &Result{Success: true, AlreadyUpToDate: true}, nil
	}
	if base == ours.Head {
		return m.fastForward(ours, label, theirsHead, strategy)
	}

	if strategy == StrategyFastForwardOnly {
		return nil, fmt.Errorf("merge %q: histories diverged: %w", label, ErrFastForwardOnly)
	}
	return m.threeWay(ours, label, theirsHead, base, strategy)
}

// fastForward moves the current head to the source head. Under
// always-shove it records a merge shove instead of just moving the pointer.
func (m *Merger) fastForward(ours *repo.Timeline, label string, theirsID repo.ShoveId, strategy Strategy) (*Result, error) {
	theirsHead, err := m.repo.LoadShove(theirsID)
	if err != nil {
		return nil, err
	}
	oursRoot, err := m.currentRoot(ours)
	if err != nil {
		return nil, err
	}

	if strategy == StrategyAlwaysCreateShove && ours.HasHead() {
		return m.commitMerge(ours, label, theirsID, theirsHead.RootTreeID, oursRoot, nil)
	}

	if err := m.repo.CheckoutTree(oursRoot, theirsHead.RootTreeID); err != nil {
		return nil, err
	}
	ours.UpdateHead(theirsID)
	if err := m.repo.SaveTimeline(ours); err != nil {
		return nil, err
	}

	m.log.Info("merge: fast-forward",
		"timeline", ours.Name, "source", label, "head", theirsID.Short())
	return &Result{Success: true, FastForward: true, Shove: theirsHead}, nil
}

// threeWay merges both heads against their common ancestor path by path.
func (m *Merger) threeWay(ours *repo.Timeline, label string, theirsID, baseID repo.ShoveId, strategy Strategy) (*Result, error) {
	base, err := m.repo.LoadShove(baseID)
	if err != nil {
		return nil, err
	}
	oursHead, err := m.repo.LoadShove(ours.Head)
	if err != nil {
		return nil, err
	}
	theirsHead, err := m.repo.LoadShove(theirsID)
	if err != nil {
		return nil, err
	}

	baseFiles, err := m.repo.Store.FlattenTree(base.RootTreeID)
	if err != nil {
		return nil, err
	}
	oursFiles, err := m.repo.Store.FlattenTree(oursHead.RootTreeID)
	if err != nil {
		return nil, err
	}
	theirsFiles, err := m.repo.Store.FlattenTree(theirsHead.RootTreeID)
	if err != nil {
		return nil, err
	}

	paths := make(map[string]struct{}, len(baseFiles)+len(oursFiles)+len(theirsFiles))
	for p := range baseFiles {
		paths[p] = struct{}{}
	}
	for p := range oursFiles {
		paths[p] = struct{}{}
	}
	for p := range theirsFiles {
		paths[p] = struct{}{}
	}

	merged := make(map[string]object.TreeFile)
	var conflicts []Conflict
	unresolved := 0

	for p := range paths {
		baseFile, inBase := baseFiles[p]
		oursFile, inOurs := oursFiles[p]
		theirsFile, inTheirs := theirsFiles[p]

		keep := func(f object.TreeFile, ok bool) {
			if ok {
				merged[p] = f
			}
		}

		switch {
		// Both sides agree, including both deleting.
		case inOurs == inTheirs && (!inOurs || oursFile.ID == theirsFile.ID):
			keep(oursFile, inOurs)

		// Only theirs moved away from the base.
		case sideEqualsBase(inOurs, oursFile, inBase, baseFile):
			keep(theirsFile, inTheirs)

		// Only ours moved away from the base.
		case sideEqualsBase(inTheirs, theirsFile, inBase, baseFile):
			keep(oursFile, inOurs)

		default:
			c := Conflict{Path: p}
			if inBase {
				c.BaseID = baseFile.ID
			}
			if inOurs {
				c.OursID = oursFile.ID
			}
			if inTheirs {
				c.TheirsID = theirsFile.ID
			}
			switch strategy {
			case StrategyOurs:
				c.Resolution = ResolutionOurs
				keep(oursFile, inOurs)
			case StrategyTheirs:
				c.Resolution = ResolutionTheirs
				keep(theirsFile, inTheirs)
			default:
				unresolved++
			}
			conflicts = append(conflicts, c)
		}
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Path < conflicts[j].Path })

	if unresolved > 0 {
		records := make([]repo.ConflictRecord, 0, unresolved)
		for _, c := range conflicts {
			if c.Resolution != "" {
				continue
			}
			records = append(records, repo.ConflictRecord{
				Path:     c.Path,
				BaseID:   c.BaseID,
				OursID:   c.OursID,
				TheirsID: c.TheirsID,
			})
		}
		if err := m.repo.RecordConflicts(records); err != nil {
			return nil, err
		}
		m.log.Warn("merge: conflicts",
			"timeline", ours.Name, "source", label, "conflicts", unresolved)
		return &Result{Success: false, Conflicts: conflicts}, nil
	}

	root, err := m.repo.BuildTree(merged)
	if err != nil {
		return nil, err
	}
	return m.commitMerge(ours, label, theirsID, root, oursHead.RootTreeID, conflicts)
}

// commitMerge applies the merged tree to the worktree, then records the
// merge shove. Checkout goes first so a refused checkout, an untracked
// collision for one, never leaves the head pointing past the worktree.
func (m *Merger) commitMerge(ours *repo.Timeline, label string, theirsID repo.ShoveId, mergedRoot, oursRoot object.ID, conflicts []Conflict) (*Result, error) {
	if err := m.repo.CheckoutTree(oursRoot, mergedRoot); err != nil {
		return nil, err
	}
	message := fmt.Sprintf("Merge %q into %q", label, ours.Name)
	shove, err := m.repo.CommitTree(ours, []repo.ShoveId{ours.Head, theirsID}, message, mergedRoot)
	if err != nil {
		return nil, err
	}
	m.log.Info("merge: created shove",
		"id", shove.ID.Short(), "timeline", ours.Name, "source", label)
	return &Result{Success: true, Shove: shove, Conflicts: conflicts}, nil
}

func (m *Merger) currentRoot(tl *repo.Timeline) (object.ID, error) {
	if !tl.HasHead() {
		return "", nil
	}
	head, err := m.repo.LoadShove(tl.Head)
	if err != nil {
		return "", err
	}
	return head.RootTreeID, nil
}

// sideEqualsBase reports whether one side is unchanged from the base,
// treating absent-on-both as equal.
func sideEqualsBase(inSide bool, side object.TreeFile, inBase bool, base object.TreeFile) bool {
	if inSide != inBase {
		return false
	}
	return !inSide || side.ID == base.ID
}
