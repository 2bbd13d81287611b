package dag

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrCyclicGraph = errors.New("graph contains a cycle")

// Adjacency maps a node to the nodes it depends on. An edge n -> d means
// d has to come before n in a topological order. Duplicate entries are
// allowed and model parallel edges of different kinds.
type Adjacency map[string][]string

// CyclicGraphError lists the nodes Kahn's algorithm could not release.
type CyclicGraphError struct {
	Remaining []string
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf("%v: %s", ErrCyclicGraph, strings.Join(e.Remaining, ", "))
}

func (e *CyclicGraphError) Unwrap() error { return ErrCyclicGraph }

func IsAcyclic(nodes []string, adj Adjacency) bool {
	known := nodeSet(nodes)
	visited := make(map[string]bool)
	stack := make(map[string]bool)
	var visit func(string) bool
	visit = func(n string) bool {
		if stack[n] {
			return true // サイクル
		}
		if visited[n] {
			return false
		}
		visited[n] = true
		stack[n] = true
		for _, dep := range adj[n] {
			if known[dep] && visit(dep) {
				return true
			}
		}
		stack[n] = false
		return false
	}
	for _, n := range sortedCopy(nodes) {
		if visit(n) {
			return false
		}
	}
	return true
}

// FindSCCs runs Tarjan's algorithm in O(V+E). Members of each component are
// sorted; components come out in reverse topological order, so a component
// is emitted after everything it depends on. Nodes and neighbours are visited
// in ascending order, which makes the result independent of map iteration.
func FindSCCs(nodes []string, adj Adjacency) [][]string {
	known := nodeSet(nodes)
	var (
		index   int
		indices = make(map[string]int, len(nodes))
		lowlink = make(map[string]int, len(nodes))
		onStack = make(map[string]bool, len(nodes))
		stack   []string
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range sortedCopy(adj[v]) {
			if !known[w] {
				continue
			}
			if _, seen := indices[w]; !seen {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	for _, n := range sortedCopy(nodes) {
		if _, seen := indices[n]; !seen {
			strongConnect(n)
		}
	}
	return sccs
}

// Cyclic returns the components of sccs with more than one member.
func Cyclic(sccs [][]string) [][]string {
	var out [][]string
	for _, scc := range sccs {
		if len(scc) > 1 {
			out = append(out, scc)
		}
	}
	return out
}

// TopologicalOrder is Kahn's algorithm. Dependencies come first and ties
// among ready nodes go to the smallest id.
func TopologicalOrder(nodes []string, adj Adjacency) ([]string, error) {
	known := nodeSet(nodes)
	inDegree := make(map[string]int, len(nodes))
	children := make(map[string][]string)
	for n := range known {
		inDegree[n] = 0
	}
	for n := range known {
		for _, dep := range adj[n] {
			if !known[dep] {
				continue
			}
			inDegree[n]++
			children[dep] = append(children[dep], n)
		}
	}

	var ready []string
	for n, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, n)
		}
	}
	sort.Strings(ready)

	order := make([]string, 0, len(known))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, child := range children[n] {
			inDegree[child]--
			if inDegree[child] == 0 {
				ready = insertSorted(ready, child)
			}
		}
	}

	if len(order) != len(known) {
		var remaining []string
		for n, deg := range inDegree {
			if deg > 0 {
				remaining = append(remaining, n)
			}
		}
		sort.Strings(remaining)
		return nil, &CyclicGraphError{Remaining: remaining}
	}
	return order, nil
}

func insertSorted(s []string, v string) []string {
	i := sort.SearchStrings(s, v)
	s = append(s, "")
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

func nodeSet(nodes []string) map[string]bool {
	set := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		set[n] = true
	}
	return set
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
