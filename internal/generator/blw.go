package generator

import (
	"context"
	"log/slog"

	"itorder/internal"
	"itorder/internal/graph"
)

// BLW breaks each cycle by removing the association edge with the smallest
// weight, i.e. the cheapest specific stub. Ties go to the smallest
// (source, target).
type BLW struct {
	Logger *slog.Logger
}

func NewBLW(logger *slog.Logger) *BLW {
	return &BLW{Logger: logger}
}

func (b *BLW) Name() string { return NameBLW }

func (b *BLW) Generate(ctx context.Context, g *graph.DependencyGraph) (*internal.TestOrderResult, error) {
	cb := &cycleBreaker{
		algorithm: NameBLW,
		reason:    "smallest specific stub weight",
		score: func(_ []string, _ []internal.Relationship, cand internal.Relationship) int {
			return cand.Weight
		},
		logger: loggerOrDefault(b.Logger),
	}
	out, err := cb.run(ctx, g)
	if err != nil {
		return nil, err
	}
	return breakResult(NameBLW, internal.SpecificStub, out), nil
}
