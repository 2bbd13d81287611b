package generator

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"itorder/internal"
	"itorder/internal/dag"
	"itorder/internal/graph"
)

// scoreFunc rates removing cand from the working edge set of one SCC.
// Lower is better.
type scoreFunc func(nodes []string, edges []internal.Relationship, cand internal.Relationship) int

type cycleBreaker struct {
	algorithm string
	reason    string
	score     scoreFunc
	logger    *slog.Logger
}

type breakOutcome struct {
	order     []string
	removed   []internal.Relationship
	decisions []internal.BreakDecision
	cyclic    [][]string
}

// run removes association edges from every cyclic SCC until the graph is
// acyclic, then orders the residual graph. Structural edges are never
// removed.
func (b *cycleBreaker) run(ctx context.Context, g *graph.DependencyGraph) (*breakOutcome, error) {
	ids := g.IDs()
	rels := g.Relationships()
	out := &breakOutcome{
		cyclic: dag.Cyclic(dag.FindSCCs(ids, graph.AdjacencyOf(rels))),
	}

	for _, scc := range out.cyclic {
		if err := b.breakSCC(ctx, scc, internalEdges(scc, rels), out); err != nil {
			return nil, err
		}
	}

	dropped := make(map[internal.Relationship]bool, len(out.removed))
	for _, r := range out.removed {
		dropped[r] = true
	}
	residual := make([]internal.Relationship, 0, len(rels)-len(out.removed))
	for _, r := range rels {
		if !dropped[r] {
			residual = append(residual, r)
		}
	}

	order, err := dag.TopologicalOrder(ids, graph.AdjacencyOf(residual))
	if err != nil {
		return nil, fmt.Errorf("%s: residual graph: %w", b.algorithm, err)
	}
	out.order = order
	return out, nil
}

func (b *cycleBreaker) breakSCC(ctx context.Context, scc []string, edges []internal.Relationship, out *breakOutcome) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var candidates []internal.Relationship
		for _, sub := range dag.Cyclic(dag.FindSCCs(scc, graph.AdjacencyOf(edges))) {
			inner := internalEdges(sub, edges)
			assoc := 0
			for _, r := range inner {
				if r.Kind == internal.Association {
					candidates = append(candidates, r)
					assoc++
				}
			}
			if assoc == 0 {
				return &Error{Algorithm: b.algorithm, Cycle: sub, Err: ErrUnbreakableCycle}
			}
		}
		if len(candidates) == 0 {
			return nil
		}
		sortRelationships(candidates)

		best, bestScore := candidates[0], b.score(scc, edges, candidates[0])
		for _, cand := range candidates[1:] {
			if s := b.score(scc, edges, cand); s < bestScore {
				best, bestScore = cand, s
			}
		}

		edges = without(edges, best)
		out.removed = append(out.removed, best)
		out.decisions = append(out.decisions, internal.BreakDecision{
			Edge:       best,
			Reason:     b.reason,
			Score:      bestScore,
			Candidates: len(candidates),
		})
		b.logger.DebugContext(ctx, "cycle edge removed",
			slog.String("algorithm", b.algorithm),
			slog.String("edge", best.String()),
			slog.Int("score", bestScore),
			slog.Int("candidates", len(candidates)),
		)
	}
}

// cyclicEdgeCount counts the edges whose endpoints share a non-trivial SCC.
func cyclicEdgeCount(nodes []string, edges []internal.Relationship) int {
	comp := map[string]int{}
	size := map[int]int{}
	for i, scc := range dag.FindSCCs(nodes, graph.AdjacencyOf(edges)) {
		size[i] = len(scc)
		for _, id := range scc {
			comp[id] = i
		}
	}
	n := 0
	for _, r := range edges {
		c, ok := comp[r.SourceID]
		if ok && size[c] > 1 && comp[r.TargetID] == c {
			n++
		}
	}
	return n
}

// internalEdges keeps the relationships with both endpoints in members.
func internalEdges(members []string, rels []internal.Relationship) []internal.Relationship {
	in := make(map[string]bool, len(members))
	for _, id := range members {
		in[id] = true
	}
	var out []internal.Relationship
	for _, r := range rels {
		if in[r.SourceID] && in[r.TargetID] {
			out = append(out, r)
		}
	}
	return out
}

func without(edges []internal.Relationship, drop internal.Relationship) []internal.Relationship {
	out := make([]internal.Relationship, 0, len(edges))
	for _, r := range edges {
		if r != drop {
			out = append(out, r)
		}
	}
	return out
}

func sortRelationships(rels []internal.Relationship) {
	sort.Slice(rels, func(i, j int) bool { return rels[i].Less(rels[j]) })
}
