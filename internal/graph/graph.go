// Package graph holds the Object Relation Diagram a test order is computed
// from: components and the typed relationships between them.
//
// A DependencyGraph is filled once through AddComponent and AddRelationship
// and is read-only afterwards. Generators share one instance across
// goroutines and never write to it; when they need to drop edges they work
// on their own copy of Relationships().
package graph

import (
	"errors"
	"fmt"
	"sort"

	"itorder/internal"
	"itorder/internal/dag"
)

var (
	ErrDuplicateComponent    = errors.New("duplicate component")
	ErrUnknownComponent      = errors.New("unknown component")
	ErrSelfLoop              = errors.New("self-referencing relationship")
	ErrUnknownKind           = errors.New("unknown relationship kind")
	ErrNegativeWeight        = errors.New("negative relationship weight")
	ErrDuplicateRelationship = errors.New("duplicate relationship")
)

// ConstructionError reports a record rejected by AddComponent or
// AddRelationship. The graph is left exactly as it was before the call.
type ConstructionError struct {
	Op     string
	Record string
	Err    error
}

func (e *ConstructionError) Error() string {
	return e.Op + " " + e.Record + ": " + e.Err.Error()
}

func (e *ConstructionError) Unwrap() error { return e.Err }

type edgeKey struct {
	source, target string
	kind           internal.RelationKind
}

type DependencyGraph struct {
	components []internal.Component
	index      map[string]int
	rels       []internal.Relationship
	keys       map[edgeKey]bool
	out        map[string][]int
	in         map[string][]int
}

func New() *DependencyGraph {
	return &DependencyGraph{
		index: map[string]int{},
		keys:  map[edgeKey]bool{},
		out:   map[string][]int{},
		in:    map[string][]int{},
	}
}

func (g *DependencyGraph) AddComponent(c internal.Component) error {
	if c.ID == "" {
		return &ConstructionError{Op: "add_component", Record: "<empty id>", Err: ErrUnknownComponent}
	}
	if _, ok := g.index[c.ID]; ok {
		return &ConstructionError{Op: "add_component", Record: c.ID, Err: ErrDuplicateComponent}
	}
	if c.Attributes != nil {
		attrs := make(map[string]string, len(c.Attributes))
		for k, v := range c.Attributes {
			attrs[k] = v
		}
		c.Attributes = attrs
	}
	g.index[c.ID] = len(g.components)
	g.components = append(g.components, c)
	return nil
}

// AddRelationship validates r completely before touching any state.
func (g *DependencyGraph) AddRelationship(r internal.Relationship) error {
	fail := func(err error) error {
		return &ConstructionError{Op: "add_relationship", Record: r.String(), Err: err}
	}
	if _, ok := g.index[r.SourceID]; !ok {
		return fail(fmt.Errorf("%w: %q", ErrUnknownComponent, r.SourceID))
	}
	if _, ok := g.index[r.TargetID]; !ok {
		return fail(fmt.Errorf("%w: %q", ErrUnknownComponent, r.TargetID))
	}
	if r.SourceID == r.TargetID {
		return fail(ErrSelfLoop)
	}
	if !r.Kind.Valid() {
		return fail(fmt.Errorf("%w: %q", ErrUnknownKind, r.Kind))
	}
	if r.Weight < 0 {
		return fail(ErrNegativeWeight)
	}
	key := edgeKey{r.SourceID, r.TargetID, r.Kind}
	if g.keys[key] {
		return fail(ErrDuplicateRelationship)
	}

	g.keys[key] = true
	i := len(g.rels)
	g.rels = append(g.rels, r)
	g.out[r.SourceID] = append(g.out[r.SourceID], i)
	g.in[r.TargetID] = append(g.in[r.TargetID], i)
	return nil
}

func (g *DependencyGraph) Len() int { return len(g.components) }

func (g *DependencyGraph) Has(id string) bool {
	_, ok := g.index[id]
	return ok
}

func (g *DependencyGraph) Component(id string) (internal.Component, bool) {
	i, ok := g.index[id]
	if !ok {
		return internal.Component{}, false
	}
	return g.components[i], true
}

// IDs returns every component id in ascending order.
func (g *DependencyGraph) IDs() []string {
	ids := make([]string, 0, len(g.components))
	for _, c := range g.components {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	return ids
}

// Components returns the components sorted by id.
func (g *DependencyGraph) Components() []internal.Component {
	out := make([]internal.Component, 0, len(g.components))
	for _, id := range g.IDs() {
		out = append(out, g.components[g.index[id]])
	}
	return out
}

// Relationships returns the relationships of the given kinds (all kinds when
// none are given) sorted by (source, target, kind).
func (g *DependencyGraph) Relationships(kinds ...internal.RelationKind) []internal.Relationship {
	match := kindFilter(kinds)
	out := make([]internal.Relationship, 0, len(g.rels))
	for _, r := range g.rels {
		if match(r.Kind) {
			out = append(out, r)
		}
	}
	sortRelationships(out)
	return out
}

// OutEdges returns the relationships leaving id, i.e. what id depends on.
func (g *DependencyGraph) OutEdges(id string, kinds ...internal.RelationKind) []internal.Relationship {
	return g.edges(g.out[id], kinds)
}

// InEdges returns the relationships arriving at id, i.e. what depends on id.
func (g *DependencyGraph) InEdges(id string, kinds ...internal.RelationKind) []internal.Relationship {
	return g.edges(g.in[id], kinds)
}

// Successors returns the distinct ids id depends on in one hop, ascending.
func (g *DependencyGraph) Successors(id string, kinds ...internal.RelationKind) []string {
	var ids []string
	for _, r := range g.OutEdges(id, kinds...) {
		ids = append(ids, r.TargetID)
	}
	return uniqueSorted(ids)
}

// Predecessors returns the distinct ids depending on id in one hop, ascending.
func (g *DependencyGraph) Predecessors(id string, kinds ...internal.RelationKind) []string {
	var ids []string
	for _, r := range g.InEdges(id, kinds...) {
		ids = append(ids, r.SourceID)
	}
	return uniqueSorted(ids)
}

// Subgraph returns a new graph with every component but only the
// relationships of the given kinds.
func (g *DependencyGraph) Subgraph(kinds ...internal.RelationKind) *DependencyGraph {
	sub := New()
	for _, c := range g.components {
		_ = sub.AddComponent(c)
	}
	match := kindFilter(kinds)
	for _, r := range g.rels {
		if match(r.Kind) {
			_ = sub.AddRelationship(r)
		}
	}
	return sub
}

// Adjacency exposes the relationships of the given kinds as plain
// adjacency data for the dag package. One entry is produced per
// relationship, so parallel edges of different kinds stay visible.
func (g *DependencyGraph) Adjacency(kinds ...internal.RelationKind) dag.Adjacency {
	return AdjacencyOf(g.Relationships(kinds...))
}

// AdjacencyOf builds adjacency data from an arbitrary relationship list.
func AdjacencyOf(rels []internal.Relationship) dag.Adjacency {
	adj := dag.Adjacency{}
	for _, r := range rels {
		adj[r.SourceID] = append(adj[r.SourceID], r.TargetID)
	}
	return adj
}

func (g *DependencyGraph) edges(idx []int, kinds []internal.RelationKind) []internal.Relationship {
	match := kindFilter(kinds)
	var out []internal.Relationship
	for _, i := range idx {
		if match(g.rels[i].Kind) {
			out = append(out, g.rels[i])
		}
	}
	sortRelationships(out)
	return out
}

func kindFilter(kinds []internal.RelationKind) func(internal.RelationKind) bool {
	if len(kinds) == 0 {
		return func(internal.RelationKind) bool { return true }
	}
	set := make(map[internal.RelationKind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return func(k internal.RelationKind) bool { return set[k] }
}

func sortRelationships(rels []internal.Relationship) {
	sort.Slice(rels, func(i, j int) bool { return rels[i].Less(rels[j]) })
}

func uniqueSorted(ids []string) []string {
	sort.Strings(ids)
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}
