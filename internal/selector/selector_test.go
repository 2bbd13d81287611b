package selector

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itorder/internal"
	"itorder/internal/config"
	"itorder/internal/generator"
	"itorder/internal/graph"
)

func buildGraph(t *testing.T, ids []string, rels ...internal.Relationship) *graph.DependencyGraph {
	t.Helper()
	var comps []internal.Component
	for _, id := range ids {
		comps = append(comps, internal.Component{ID: id, Name: id, Kind: "class"})
	}
	g, rejected := graph.FromRecords(comps, rels)
	require.Empty(t, rejected)
	return g
}

func edge(src, dst string, kind internal.RelationKind, weight int) internal.Relationship {
	return internal.Relationship{SourceID: src, TargetID: dst, Kind: kind, Weight: weight}
}

func referenceGraph(t *testing.T) *graph.DependencyGraph {
	return buildGraph(t, []string{"A", "B", "C", "D", "E", "F"},
		edge("B", "A", internal.Inheritance, 0),
		edge("C", "B", internal.Aggregation, 0),
		edge("D", "C", internal.Association, 1),
		edge("E", "D", internal.Association, 1),
		edge("E", "B", internal.Association, 1),
		edge("F", "E", internal.Inheritance, 0),
	)
}

func sharedEdgeGraph(t *testing.T) *graph.DependencyGraph {
	return buildGraph(t, []string{"A", "B", "C"},
		edge("A", "B", internal.Association, 5),
		edge("B", "A", internal.Association, 1),
		edge("B", "C", internal.Association, 1),
		edge("C", "A", internal.Association, 1),
	)
}

type fakeGenerator struct {
	name   string
	err    error
	block  bool
	result *internal.TestOrderResult
}

func (f *fakeGenerator) Name() string { return f.name }

func (f *fakeGenerator) Generate(ctx context.Context, g *graph.DependencyGraph) (*internal.TestOrderResult, error) {
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.result, f.err
}

func newSelector(t *testing.T, cfg config.Config, opts ...Option) *Selector {
	t.Helper()
	s, err := New(cfg, opts...)
	require.NoError(t, err)
	return s
}

func TestCompareReferenceScenario(t *testing.T) {
	report, err := newSelector(t, config.Default()).Compare(context.Background(), referenceGraph(t))
	require.NoError(t, err)

	require.Len(t, report.Results, 3)
	assert.Empty(t, report.Failures)
	assert.InDelta(t, 1.0, report.Clustering[generator.NameTD], 1e-9)
	assert.InDelta(t, 1.0/3, report.Clustering[generator.NameTJJM], 1e-9)
	assert.InDelta(t, 1.5, report.Scores[generator.NameTD], 1e-9)
	assert.Equal(t, report.Scores[generator.NameTJJM], report.Scores[generator.NameBLW])
	assert.Equal(t, generator.NameBLW, report.Chosen, "ties go to BLW")
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F"}, report.ChosenResult().Order)
	assert.Contains(t, report.Rationale, "chose blw with the lowest score")
}

func TestCompareSharedEdge(t *testing.T) {
	g := sharedEdgeGraph(t)

	t.Run("default weights", func(t *testing.T) {
		report, err := newSelector(t, config.Default()).Compare(context.Background(), g)
		require.NoError(t, err)
		assert.InDelta(t, 1.5, report.Scores[generator.NameTD], 1e-9)
		assert.InDelta(t, 1.75, report.Scores[generator.NameTJJM], 1e-9)
		assert.InDelta(t, 2.0, report.Scores[generator.NameBLW], 1e-9)
		assert.Equal(t, generator.NameTD, report.Chosen)
	})

	t.Run("zero specific weight", func(t *testing.T) {
		cfg := config.Default()
		cfg.Weights = config.Weights{Total: 1, Specific: 0, Quality: 0.9}
		report, err := newSelector(t, cfg).Compare(context.Background(), g)
		require.NoError(t, err)
		blw, tjjm := report.Results[generator.NameBLW], report.Results[generator.NameTJJM]
		require.Greater(t, blw.TotalStubCount, tjjm.TotalStubCount)
		assert.Greater(t, report.Scores[generator.NameBLW], report.Scores[generator.NameTJJM])
		assert.NotEqual(t, generator.NameBLW, report.Chosen)
	})
}

func TestComparePartialFailure(t *testing.T) {
	boom := &generator.Error{Algorithm: generator.NameTD, Err: generator.ErrInvalidGraph}
	s := newSelector(t, config.Default(), WithGenerators(
		&fakeGenerator{name: generator.NameTD, err: boom},
		generator.NewTJJM(nil),
		generator.NewBLW(nil),
	))
	report, err := s.Compare(context.Background(), sharedEdgeGraph(t))
	require.NoError(t, err)
	assert.Len(t, report.Results, 2)
	assert.NotContains(t, report.Results, generator.NameTD)
	assert.Equal(t, boom.Error(), report.Failures[generator.NameTD])
	assert.Equal(t, generator.NameTJJM, report.Chosen)
	assert.Contains(t, report.Rationale[len(report.Rationale)-1], "td did not produce an order")
}

func TestCompareTimeout(t *testing.T) {
	cfg := config.Default()
	cfg.Timeout = 20 * time.Millisecond
	s := newSelector(t, cfg, WithGenerators(
		&fakeGenerator{name: generator.NameBLW, block: true},
		generator.NewTJJM(nil),
	))
	report, err := s.Compare(context.Background(), sharedEdgeGraph(t))
	require.NoError(t, err)
	assert.Contains(t, report.Failures[generator.NameBLW], context.DeadlineExceeded.Error())
	assert.Equal(t, generator.NameTJJM, report.Chosen)
}

func TestCompareRejectsIncompleteOrder(t *testing.T) {
	short := &internal.TestOrderResult{Algorithm: generator.NameBLW, Order: []string{"A", "B"}, BrokenEdges: []internal.BrokenEdge{}}
	s := newSelector(t, config.Default(), WithGenerators(
		&fakeGenerator{name: generator.NameBLW, result: short},
		generator.NewTJJM(nil),
	))
	report, err := s.Compare(context.Background(), sharedEdgeGraph(t))
	require.NoError(t, err)
	assert.NotContains(t, report.Results, generator.NameBLW)
	assert.Contains(t, report.Failures[generator.NameBLW], internal.ErrOrderMissing.Error())
	assert.Equal(t, generator.NameTJJM, report.Chosen)
}

func TestCompareNoViableOrder(t *testing.T) {
	g := buildGraph(t, []string{"A", "B"},
		edge("A", "B", internal.Inheritance, 0),
		edge("B", "A", internal.Aggregation, 0),
	)
	report, err := newSelector(t, config.Default()).Compare(context.Background(), g)
	assert.Nil(t, report)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoViableOrder))

	var nv *NoViableOrderError
	require.True(t, errors.As(err, &nv))
	require.Len(t, nv.Failures, 3)
	assert.True(t, errors.Is(nv.Failures[generator.NameTD], generator.ErrInvalidGraph))
	assert.True(t, errors.Is(nv.Failures[generator.NameTJJM], generator.ErrUnbreakableCycle))
	assert.True(t, errors.Is(nv.Failures[generator.NameBLW], generator.ErrUnbreakableCycle))
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.MaxParallel = 0
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestPick(t *testing.T) {
	assert.Equal(t, generator.NameBLW, pick(map[string]float64{"td": 1, "tjjm": 1, "blw": 1}))
	assert.Equal(t, generator.NameTJJM, pick(map[string]float64{"td": 0, "tjjm": 0}))
	assert.Equal(t, generator.NameTD, pick(map[string]float64{"td": -1, "tjjm": 0, "blw": 0}))
}

func TestClustering(t *testing.T) {
	levels := map[string]int{"a": 0, "b": 0, "c": 1, "d": 1}
	tests := []struct {
		name   string
		order  []string
		levels map[string]int
		want   float64
	}{
		{"contiguous levels", []string{"a", "b", "c", "d"}, levels, 1},
		{"interleaved levels", []string{"a", "c", "b", "d"}, levels, 0},
		{"all distinct but one pair", []string{"a", "b", "d", "x"}, map[string]int{"a": 0, "b": 0, "d": 1, "x": 2}, 1},
		{"one level split", []string{"a", "c", "d", "b"}, levels, 0.5},
		{"no levels", []string{"a", "b"}, nil, 0},
		{"empty order", nil, levels, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clustering(tt.order, tt.levels)
			assert.True(t, math.Abs(got-tt.want) < 1e-9, "got %v want %v", got, tt.want)
		})
	}
}

func TestReportJSONShape(t *testing.T) {
	report, err := newSelector(t, config.Default()).Compare(context.Background(), sharedEdgeGraph(t))
	require.NoError(t, err)
	raw, err := json.Marshal(report)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"results", "chosen", "scores"} {
		assert.Contains(t, doc, key)
	}

	var results map[string]struct {
		Order       []string `json:"order"`
		BrokenEdges []struct {
			SourceID string `json:"source_id"`
			TargetID string `json:"target_id"`
			Kind     string `json:"kind"`
			StubType string `json:"stub_type"`
			Weight   int    `json:"weight"`
		} `json:"broken_edges"`
		TotalStubCount    int `json:"total_stub_count"`
		SpecificStubCount int `json:"specific_stub_count"`
	}
	require.NoError(t, json.Unmarshal(doc["results"], &results))
	blw := results[generator.NameBLW]
	assert.Equal(t, []string{"B", "A", "C"}, blw.Order)
	require.Len(t, blw.BrokenEdges, 2)
	assert.Equal(t, "specific", blw.BrokenEdges[0].StubType)
	assert.Equal(t, "association", blw.BrokenEdges[0].Kind)
	assert.Equal(t, 2, blw.SpecificStubCount)
}
