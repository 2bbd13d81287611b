package generator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"itorder/internal"
	"itorder/internal/dag"
	"itorder/internal/graph"
)

// TaiDaniels orders components by major level (depth along inheritance and
// aggregation edges) and, inside a major level, by minor level (a local
// topological pass over association edges between siblings).
//
// TD does not try to minimise stubs. Once the order is fixed, every
// relationship whose target is tested after its source is reported as a
// generic stub.
type TaiDaniels struct {
	Logger *slog.Logger
}

func NewTaiDaniels(logger *slog.Logger) *TaiDaniels {
	return &TaiDaniels{Logger: logger}
}

func (td *TaiDaniels) Name() string { return NameTD }

func (td *TaiDaniels) Generate(ctx context.Context, g *graph.DependencyGraph) (*internal.TestOrderResult, error) {
	logger := loggerOrDefault(td.Logger)

	major, err := MajorLevels(g)
	if err != nil {
		return nil, err
	}

	byLevel := map[int][]string{}
	for _, id := range g.IDs() {
		byLevel[major[id]] = append(byLevel[major[id]], id)
	}
	var majors []int
	for lvl := range byLevel {
		majors = append(majors, lvl)
	}
	sort.Ints(majors)

	assoc := g.Relationships(internal.Association)
	levels := make(map[string]internal.Level, g.Len())
	var (
		notes     []string
		decisions []internal.BreakDecision
	)
	for _, lvl := range majors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		siblings := byLevel[lvl]
		local, removed, err := localOrder(siblings, internalEdges(siblings, assoc))
		if err != nil {
			return nil, fmt.Errorf("%s: major level %d: %w", NameTD, lvl, err)
		}
		for minor, id := range local {
			levels[id] = internal.Level{Major: lvl, Minor: minor}
		}
		for _, r := range removed {
			decisions = append(decisions, internal.BreakDecision{
				Edge:   r,
				Reason: fmt.Sprintf("local association cycle at major level %d, greatest source id", lvl),
			})
			logger.DebugContext(ctx, "local association edge ignored",
				slog.String("algorithm", NameTD),
				slog.Int("major", lvl),
				slog.String("edge", r.String()),
			)
		}
		notes = append(notes, fmt.Sprintf("major level %d: %s", lvl, strings.Join(local, ", ")))
	}

	order := g.IDs()
	sort.Slice(order, func(i, j int) bool {
		a, b := levels[order[i]], levels[order[j]]
		if a.Major != b.Major {
			return a.Major < b.Major
		}
		if a.Minor != b.Minor {
			return a.Minor < b.Minor
		}
		return order[i] < order[j]
	})

	res := newResult(NameTD, order, stubScan(g, order), 0)
	res.Levels = levels
	res.Justification = internal.Justification{
		Summary: fmt.Sprintf("%d components over %d major levels", len(order), len(majors)),
		Breaks:  decisions,
		Notes:   notes,
	}
	return res, nil
}

// MajorLevels assigns each component its TD major level: 0 without
// inheritance or aggregation dependencies, otherwise one more than the
// deepest such dependency. A cyclic major subgraph is malformed input.
func MajorLevels(g *graph.DependencyGraph) (map[string]int, error) {
	ids := g.IDs()
	adj := g.Subgraph(internal.Inheritance, internal.Aggregation).Adjacency()
	if cyc := dag.Cyclic(dag.FindSCCs(ids, adj)); len(cyc) > 0 {
		return nil, &Error{Algorithm: NameTD, Cycle: cyc[0], Err: ErrInvalidGraph}
	}
	order, err := dag.TopologicalOrder(ids, adj)
	if err != nil {
		return nil, &Error{Algorithm: NameTD, Err: fmt.Errorf("%w: %v", ErrInvalidGraph, err)}
	}
	level := make(map[string]int, len(ids))
	for _, id := range order {
		lvl := 0
		for _, dep := range adj[id] {
			lvl = max(lvl, level[dep]+1)
		}
		level[id] = lvl
	}
	return level, nil
}

// localOrder orders siblings along their mutual association edges. While a
// local cycle remains, the edge with the greatest (source, target) inside
// it is ignored. The ignored edges are returned.
func localOrder(siblings []string, edges []internal.Relationship) ([]string, []internal.Relationship, error) {
	var removed []internal.Relationship
	for {
		cyclic := dag.Cyclic(dag.FindSCCs(siblings, graph.AdjacencyOf(edges)))
		if len(cyclic) == 0 {
			break
		}
		var drop *internal.Relationship
		for _, scc := range cyclic {
			for _, r := range internalEdges(scc, edges) {
				if drop == nil || drop.Less(r) {
					r := r
					drop = &r
				}
			}
		}
		edges = without(edges, *drop)
		removed = append(removed, *drop)
	}
	order, err := dag.TopologicalOrder(siblings, graph.AdjacencyOf(edges))
	if err != nil {
		return nil, nil, err
	}
	return order, removed, nil
}

// stubScan reports every relationship whose target comes after its source.
func stubScan(g *graph.DependencyGraph, order []string) []internal.BrokenEdge {
	pos := positions(order)
	var broken []internal.BrokenEdge
	for _, r := range g.Relationships() {
		if pos[r.TargetID] > pos[r.SourceID] {
			broken = append(broken, internal.NewBrokenEdge(r, internal.GenericStub))
		}
	}
	return broken
}
