package generator

import (
	"context"
	"fmt"
	"log/slog"

	"itorder/internal"
	"itorder/internal/graph"
)

// TJJM breaks each cycle by removing the association edge whose removal
// leaves the fewest edges on any remaining cycle (one step lookahead on the
// total stub count). Ties go to the smallest (source, target).
type TJJM struct {
	Logger *slog.Logger
}

func NewTJJM(logger *slog.Logger) *TJJM {
	return &TJJM{Logger: logger}
}

func (t *TJJM) Name() string { return NameTJJM }

func (t *TJJM) Generate(ctx context.Context, g *graph.DependencyGraph) (*internal.TestOrderResult, error) {
	b := &cycleBreaker{
		algorithm: NameTJJM,
		reason:    "fewest edges left on a cycle after removal",
		score: func(nodes []string, edges []internal.Relationship, cand internal.Relationship) int {
			return cyclicEdgeCount(nodes, without(edges, cand))
		},
		logger: loggerOrDefault(t.Logger),
	}
	out, err := b.run(ctx, g)
	if err != nil {
		return nil, err
	}
	return breakResult(NameTJJM, internal.GenericStub, out), nil
}

// breakResult turns a cycle breaking run into a result. Every removed edge
// is one stub; SpecificStubCount sums their weights.
func breakResult(algorithm string, st internal.StubType, out *breakOutcome) *internal.TestOrderResult {
	broken := make([]internal.BrokenEdge, 0, len(out.removed))
	specific := 0
	for _, r := range out.removed {
		broken = append(broken, internal.NewBrokenEdge(r, st))
		specific += r.Weight
	}
	res := newResult(algorithm, out.order, broken, specific)
	res.Justification = internal.Justification{
		CyclicSCCs: out.cyclic,
		Breaks:     out.decisions,
	}
	if len(out.cyclic) == 0 {
		res.Justification.Summary = "graph is acyclic, components follow a plain topological order"
		return res
	}
	res.Justification.Summary = fmt.Sprintf("removed %d association edges to break %d cycles", len(out.removed), len(out.cyclic))
	for _, d := range out.decisions {
		res.Justification.Notes = append(res.Justification.Notes,
			fmt.Sprintf("%s stubbed for %s (score %d of %d candidates)", d.Edge.TargetID, d.Edge.SourceID, d.Score, d.Candidates))
	}
	return res
}
