package repo

import (
	"github.com/pocketvcs/pocket/pkg/object"
)

// ReachableSet is the closure of shoves and objects reachable from a set of
// heads, used to decide what a push or fetch must transfer.
type ReachableSet struct {
	Shoves  map[ShoveId]*Shove
	Objects map[object.ID]struct{}
}

// Reachable walks shove ancestry from the given heads and collects every
// shove plus every tree and file object their snapshots reference. Ids in
// stop (and everything behind them) are excluded: the caller uses the other
// side's known heads as the frontier.
func (r *Repository) Reachable(heads []ShoveId, stop map[ShoveId]struct{}) (*ReachableSet, error) {
	set := &ReachableSet{
		Shoves:  make(map[ShoveId]*Shove),
		Objects: make(map[object.ID]struct{}),
	}

	visited := make(map[ShoveId]struct{})
	queue := make([]ShoveId, 0, len(heads))
	for _, h := range heads {
		if h != "" {
			queue = append(queue, h)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		if _, ok := stop[id]; ok {
			continue
		}

		s, err := r.LoadShove(id)
		if err != nil {
			return nil, err
		}
		set.Shoves[id] = s

		ids, err := r.Store.TreeObjects(s.RootTreeID)
		if err != nil {
			return nil, err
		}
		for _, oid := range ids {
			set.Objects[oid] = struct{}{}
		}

		queue = append(queue, s.ParentIDs...)
	}
	return set, nil
}
