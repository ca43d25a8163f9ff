package compiler

import (
	"strconv"
	"strings"
)

type color int

const (
	white color = iota
	gray
	black
)

// stepNode is a plan step reduced to its graph edges. Edges point from a
// step to each of its dependencies.
type stepNode struct {
	id   int64
	deps []int64
}

// findCycle returns the first dependency cycle found by a depth-first
// traversal with three-colour marking, or nil when the graph is acyclic.
// Steps are visited in plan order and dependencies in listed order, so the
// result is deterministic. The returned path starts and ends at the same
// step, e.g. [2 3 2]. Every dependency must name a step in the graph.
func findCycle(steps []stepNode) []int64 {
	adj := make(map[int64][]int64, len(steps))
	var order []int64
	for _, s := range steps {
		if _, ok := adj[s.id]; !ok {
			order = append(order, s.id)
		}
		adj[s.id] = append(adj[s.id], s.deps...)
	}

	colors := make(map[int64]color, len(adj))
	var path []int64
	var cycle []int64

	var visit func(id int64) bool
	visit = func(id int64) bool {
		colors[id] = gray
		path = append(path, id)
		for _, dep := range adj[id] {
			switch colors[dep] {
			case gray:
				for i, p := range path {
					if p == dep {
						cycle = append(append([]int64{}, path[i:]...), dep)
						break
					}
				}
				return true
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		path = path[:len(path)-1]
		colors[id] = black
		return false
	}

	for _, id := range order {
		if colors[id] == white && visit(id) {
			return cycle
		}
	}
	return nil
}

func formatCycle(cycle []int64) string {
	parts := make([]string, len(cycle))
	for i, id := range cycle {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, " -> ")
}
