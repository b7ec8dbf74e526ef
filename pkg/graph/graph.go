// Package graph builds an in-memory view of the shove DAG for ancestry
// queries and rendering. Everything it reads comes from disk, so parent
// links are treated as untrusted: every walk carries a visited set and a
// dangling or cyclic parent reference never loops or panics.
package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pocketvcs/pocket/pkg/repo"
)

// Node is one shove plus its inverted edges and the timelines whose head
// currently resolves to it.
type Node struct {
	Shove     *repo.Shove
	Parents   []repo.ShoveId
	Children  []repo.ShoveId
	Timelines []string
}

// Graph holds every persisted shove keyed by id.
type Graph struct {
	Nodes map[repo.ShoveId]*Node

	// Heads maps timeline name to head id. Unborn timelines are absent.
	Heads map[string]repo.ShoveId
}

// Build loads every shove and timeline in the repository and inverts the
// parent edges into child lists.
func Build(r *repo.Repository) (*Graph, error) {
	shoves, err := r.ListShoves()
	if err != nil {
		return nil, err
	}

	g := &Graph{
		Nodes: make(map[repo.ShoveId]*Node, len(shoves)),
		Heads: make(map[string]repo.ShoveId),
	}
	for _, s := range shoves {
		g.Nodes[s.ID] = &Node{Shove: s, Parents: s.ParentIDs}
	}
	for id, n := range g.Nodes {
		for _, parent := range n.Parents {
			p, ok := g.Nodes[parent]
			if !ok {
				return nil, fmt.Errorf("graph: shove %s references missing parent %s", id.Short(), parent.Short())
			}
			p.Children = append(p.Children, id)
		}
	}
	for _, n := range g.Nodes {
		sort.Slice(n.Children, func(i, j int) bool { return n.Children[i] < n.Children[j] })
	}

	timelines, err := r.ListTimelines()
	if err != nil {
		return nil, err
	}
	for _, tl := range timelines {
		if !tl.HasHead() {
			continue
		}
		g.Heads[tl.Name] = tl.Head
		if n, ok := g.Nodes[tl.Head]; ok {
			n.Timelines = append(n.Timelines, tl.Name)
		}
	}
	for _, n := range g.Nodes {
		sort.Strings(n.Timelines)
	}
	return g, nil
}

// Ancestors returns every shove reachable from id through parent edges,
// id excluded. Unknown ids yield an empty set.
func (g *Graph) Ancestors(id repo.ShoveId) map[repo.ShoveId]struct{} {
	out := make(map[repo.ShoveId]struct{})
	visited := map[repo.ShoveId]struct{}{id: {}}
	queue := []repo.ShoveId{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		n, ok := g.Nodes[cur]
		if !ok {
			continue
		}
		for _, parent := range n.Parents {
			if _, seen := visited[parent]; seen {
				continue
			}
			visited[parent] = struct{}{}
			out[parent] = struct{}{}
			queue = append(queue, parent)
		}
	}
	return out
}

// IsAncestor reports whether ancestor is reachable from descendant.
func (g *Graph) IsAncestor(ancestor, descendant repo.ShoveId) bool {
	_, ok := g.Ancestors(descendant)[ancestor]
	return ok
}

// Roots returns the ids of all parentless shoves, sorted.
func (g *Graph) Roots() []repo.ShoveId {
	var roots []repo.ShoveId
	for id, n := range g.Nodes {
		if len(n.Parents) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })
	return roots
}

// Render writes a text view of the DAG: each shove newest-first with its
// parents and any timeline heads pointing at it.
func (g *Graph) Render() string {
	order := g.topoOrder()

	var b strings.Builder
	if len(g.Heads) > 0 {
		names := make([]string, 0, len(g.Heads))
		for name := range g.Heads {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("Timelines:\n")
		for _, name := range names {
			fmt.Fprintf(&b, "  %s -> %s\n", name, g.Heads[name].Short())
		}
		b.WriteString("\n")
	}

	for _, id := range order {
		n := g.Nodes[id]
		fmt.Fprintf(&b, "* %s", id.Short())
		if len(n.Timelines) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(n.Timelines, ", "))
		}
		fmt.Fprintf(&b, " %s\n", firstLine(n.Shove.Message))
		for _, parent := range n.Parents {
			fmt.Fprintf(&b, "  parent %s\n", parent.Short())
		}
	}
	return b.String()
}

// topoOrder lists shoves children-before-parents, newest first within a
// generation. A cycle on disk cannot stall the sort; whatever remains
// after the main pass is appended in timestamp order.
func (g *Graph) topoOrder() []repo.ShoveId {
	pending := make(map[repo.ShoveId]int, len(g.Nodes))
	for id, n := range g.Nodes {
		pending[id] = len(n.Children)
	}

	var ready []repo.ShoveId
	for id, n := range pending {
		if n == 0 {
			ready = append(ready, id)
		}
	}
	g.sortByTime(ready)

	var order []repo.ShoveId
	emitted := make(map[repo.ShoveId]struct{}, len(g.Nodes))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		order = append(order, id)
		emitted[id] = struct{}{}

		var next []repo.ShoveId
		for _, parent := range g.Nodes[id].Parents {
			pending[parent]--
			if pending[parent] == 0 {
				next = append(next, parent)
			}
		}
		g.sortByTime(next)
		ready = append(ready, next...)
	}

	if len(order) < len(g.Nodes) {
		var rest []repo.ShoveId
		for id := range g.Nodes {
			if _, ok := emitted[id]; !ok {
				rest = append(rest, id)
			}
		}
		g.sortByTime(rest)
		order = append(order, rest...)
	}
	return order
}

func (g *Graph) sortByTime(ids []repo.ShoveId) {
	sort.Slice(ids, func(i, j int) bool {
		a, b := g.Nodes[ids[i]].Shove, g.Nodes[ids[j]].Shove
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return ids[i] < ids[j]
	})
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
