package merge

import (
	"errors"

	"github.com/pocketvcs/pocket/pkg/repo"
)

// ErrNoCommonAncestor is returned when two shoves share no history at all.
var ErrNoCommonAncestor = errors.New("no common ancestor")

// commonAncestor finds the nearest shove reachable from both a and b. The
// search walks all parents breadth-first, so merge shoves contribute both
// histories; the first ancestor of a encountered while walking back from b
// is the closest by generation distance.
func commonAncestor(r *repo.Repository, a, b repo.ShoveId) (repo.ShoveId, error) {
	ancestorsOfA := make(map[repo.ShoveId]struct{})
	queue := []repo.ShoveId{a}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := ancestorsOfA[id]; ok {
			continue
		}
		ancestorsOfA[id] = struct{}{}
		s, err := r.LoadShove(id)
		if err != nil {
			return "", err
		}
		queue = append(queue, s.ParentIDs...)
	}

	visited := make(map[repo.ShoveId]struct{})
	queue = []repo.ShoveId{b}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if _, ok := visited[id]; ok {
			continue
		}
		visited[id] = struct{}{}
		if _, ok := ancestorsOfA[id]; ok {
			return id, nil
		}
		s, err := r.LoadShove(id)
		if err != nil {
			return "", err
		}
		queue = append(queue, s.ParentIDs...)
	}
	return "", ErrNoCommonAncestor
}
