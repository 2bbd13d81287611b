// Package generator computes integration test orders from a dependency
// graph. Three strategies are provided: TaiDaniels (major/minor levels),
// TJJM (cycle breaking that minimises the number of stubs) and BLW (cycle
// breaking that minimises specific stub weight).
//
// All generators are pure functions of the graph they receive: the same
// graph always yields the same result, and the graph is never modified.
package generator

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"itorder/internal"
)

const (
	NameTD   = "td"
	NameTJJM = "tjjm"
	NameBLW  = "blw"
)

var (
	ErrInvalidGraph     = errors.New("inheritance/aggregation subgraph is cyclic")
	ErrUnbreakableCycle = errors.New("cycle has no association edge to remove")
)

// Error is returned when a generator cannot produce an order. Cycle holds
// the members of the offending strongly connected component.
type Error struct {
	Algorithm string
	Cycle     []string
	Err       error
}

func (e *Error) Error() string {
	msg := e.Algorithm + ": " + e.Err.Error()
	if len(e.Cycle) > 0 {
		msg += " [" + strings.Join(e.Cycle, ", ") + "]"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

// newResult fills the derived fields shared by every generator: stub map,
// counts and order metrics.
func newResult(algorithm string, order []string, broken []internal.BrokenEdge, specific int) *internal.TestOrderResult {
	if broken == nil {
		broken = []internal.BrokenEdge{}
	}
	stubs := stubMap(broken)

	res := &internal.TestOrderResult{
		Algorithm:         algorithm,
		Order:             order,
		BrokenEdges:       broken,
		TotalStubCount:    len(broken),
		SpecificStubCount: specific,
		Stubs:             stubs,
	}
	if n := len(order); n > 0 {
		res.Metrics = internal.OrderMetrics{
			ComponentsWithStubs:      len(stubs),
			AverageStubsPerComponent: float64(len(broken)) / float64(n),
			StubComponentRatio:       float64(len(stubs)) / float64(n),
		}
	}
	return res
}

// stubMap lists, per component, the dependencies that have to be stubbed
// when that component is tested.
func stubMap(broken []internal.BrokenEdge) map[string][]string {
	if len(broken) == 0 {
		return nil
	}
	set := map[string]map[string]bool{}
	for _, b := range broken {
		if set[b.SourceID] == nil {
			set[b.SourceID] = map[string]bool{}
		}
		set[b.SourceID][b.TargetID] = true
	}
	out := make(map[string][]string, len(set))
	for src, targets := range set {
		ids := make([]string, 0, len(targets))
		for id := range targets {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		out[src] = ids
	}
	return out
}

func positions(order []string) map[string]int {
	pos := make(map[string]int, len(order))
	for i, id := range order {
		pos[id] = i
	}
	return pos
}
