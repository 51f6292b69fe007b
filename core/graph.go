package core

import (
	"os"
	"sort"

	"github.com/pkg/errors"

	"github.com/Phantom1003/ptm/internal/logging"
)

var log = logging.Log

// Node is a per-build-request copy of a Recipe, augmented with the depth
// at which it was discovered and its resolved children. Nodes are keyed by
// Target within a single Graph; they do not outlive the build() call that
// created them.
type Node struct {
	*Recipe
	Depth    int
	Children []*Node
}

// Graph is the DAG rooted at one requested Target, built fresh for each
// build() call from the process-wide Registry.
type Graph struct {
	registry *Registry
	nodes    map[Target]*Node
	// visited records nodes in first-seen DFS order, which is also the
	// within-bucket order buildOrder wants.
	visited []*Node
	// order is the depth-bucket build order, deepest first, computed once
	// construction finishes.
	order []*Node
}

// NewGraph constructs the dependency graph rooted at root by depth-first
// traversal of reg, per spec §4.C.
func NewGraph(reg *Registry, root Target) (*Graph, error) {
	g := &Graph{registry: reg, nodes: map[Target]*Node{}}
	if _, err := g.build(root, nil, 0); err != nil {
		return nil, err
	}
	g.order = g.buildOrder()
	return g, nil
}

// build is the recursive DFS step. history is the set of targets on the
// current path, used to detect and drop cycle-closing edges.
func (g *Graph) build(t Target, history []Target, depth int) (*Node, error) {
	recipe, ok := g.registry.Lookup(t)
	if !ok {
		if t.IsFile() && fileExists(t.ID()) {
			// An existing file with no recipe is a leaf input, not a node.
			return nil, nil
		}
		return nil, errors.Errorf("target not found: %s", t)
	}

	if existing, ok := g.nodes[t]; ok {
		if depth > existing.Depth {
			g.raiseDepth(existing, depth)
		}
		return existing, nil
	}

	node := &Node{Recipe: recipe, Depth: depth}
	g.nodes[t] = node
	g.visited = append(g.visited, node)

	for _, dep := range recipe.Dependencies {
		if dep == t || contains(history, dep) {
			depDesc := dep.String()
			if depRecipe, ok := g.registry.Lookup(dep); ok {
				depDesc = depRecipe.Location()
			}
			log.Info("Circular dependency %s <- %s dropped.", recipe.Location(), depDesc)
			continue
		}
		child, err := g.build(dep, append(append([]Target{}, history...), t), depth+1)
		if err != nil {
			return nil, err
		}
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node, nil
}

// raiseDepth propagates a depth increase to every descendant of node so the
// invariant depth(child) >= depth(parent)+1 is restored after a diamond
// dependency is reached at a greater depth than first seen.
func (g *Graph) raiseDepth(node *Node, parentDepth int) {
	newDepth := parentDepth
	if newDepth <= node.Depth {
		return
	}
	node.Depth = newDepth
	for _, child := range node.Children {
		g.raiseDepth(child, newDepth+1)
	}
}

// buildOrder buckets nodes by their final depth and concatenates buckets
// deepest-first, preserving first-seen (DFS construction) order within a
// bucket. Because every edge decreases depth by at least 1 after fix-up,
// this is a valid reverse-topological order: for edge u->v, position(v) <
// position(u).
func (g *Graph) buildOrder() []*Node {
	buckets := map[int][]*Node{}
	var depths []int
	for _, n := range g.visited {
		if _, ok := buckets[n.Depth]; !ok {
			depths = append(depths, n.Depth)
		}
		buckets[n.Depth] = append(buckets[n.Depth], n)
	}

	sort.Sort(sort.Reverse(sort.IntSlice(depths)))
	var order []*Node
	for _, d := range depths {
		order = append(order, buckets[d]...)
	}
	return order
}

// Order returns the linearized build order, deepest dependency first.
func (g *Graph) Order() []*Node { return g.order }

func contains(ts []Target, t Target) bool {
	for _, x := range ts {
		if x == t {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
