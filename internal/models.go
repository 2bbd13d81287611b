package internal

import (
	"errors"
	"fmt"
)

type RelationKind string

const (
	Inheritance RelationKind = "inheritance"
	Aggregation RelationKind = "aggregation"
	Association RelationKind = "association"
)

// Valid reports whether k is one of the three ORD relationship kinds.
func (k RelationKind) Valid() bool {
	switch k {
	case Inheritance, Aggregation, Association:
		return true
	}
	return false
}

// Major reports whether k is a structural (inheritance or aggregation) edge.
func (k RelationKind) Major() bool {
	return k == Inheritance || k == Aggregation
}

type StubType string

const (
	GenericStub  StubType = "generic"
	SpecificStub StubType = "specific"
)

type Component struct {
	ID         string            `yaml:"id" json:"id" validate:"required"`
	Name       string            `yaml:"name" json:"name"`
	Kind       string            `yaml:"kind" json:"kind"`
	Attributes map[string]string `yaml:"attributes,omitempty" json:"attributes,omitempty"`
}

// Relationship is a directed dependency: SourceID depends on TargetID.
// Weight counts distinct concrete usages and only matters for association edges.
type Relationship struct {
	SourceID string       `yaml:"source_id" json:"source_id" validate:"required"`
	TargetID string       `yaml:"target_id" json:"target_id" validate:"required"`
	Kind     RelationKind `yaml:"kind" json:"kind" validate:"required,oneof=inheritance aggregation association"`
	Weight   int          `yaml:"weight" json:"weight" validate:"gte=0"`
}

func (r Relationship) String() string {
	return fmt.Sprintf("%s-[%s]->%s", r.SourceID, r.Kind, r.TargetID)
}

// Less orders relationships by (source, target, kind).
func (r Relationship) Less(o Relationship) bool {
	if r.SourceID != o.SourceID {
		return r.SourceID < o.SourceID
	}
	if r.TargetID != o.TargetID {
		return r.TargetID < o.TargetID
	}
	return r.Kind < o.Kind
}

type BrokenEdge struct {
	SourceID string       `json:"source_id"`
	TargetID string       `json:"target_id"`
	Kind     RelationKind `json:"kind"`
	StubType StubType     `json:"stub_type"`
	Weight   int          `json:"weight"`
}

func NewBrokenEdge(r Relationship, st StubType) BrokenEdge {
	return BrokenEdge{
		SourceID: r.SourceID,
		TargetID: r.TargetID,
		Kind:     r.Kind,
		StubType: st,
		Weight:   r.Weight,
	}
}

type Level struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
}

// BreakDecision records one edge removed while breaking a cycle.
type BreakDecision struct {
	Edge       Relationship `json:"edge"`
	Reason     string       `json:"reason"`
	Score      int          `json:"score"`
	Candidates int          `json:"candidates"`
}

type Justification struct {
	Summary    string          `json:"summary"`
	CyclicSCCs [][]string      `json:"cyclic_sccs,omitempty"`
	Breaks     []BreakDecision `json:"breaks,omitempty"`
	Notes      []string        `json:"notes,omitempty"`
}

type OrderMetrics struct {
	ComponentsWithStubs      int     `json:"components_with_stubs"`
	AverageStubsPerComponent float64 `json:"average_stubs_per_component"`
	StubComponentRatio       float64 `json:"stub_component_ratio"`
}

// TestOrderResult is produced once per generator run and is not mutated afterwards.
type TestOrderResult struct {
	Algorithm         string              `json:"algorithm"`
	Order             []string            `json:"order"`
	BrokenEdges       []BrokenEdge        `json:"broken_edges"`
	TotalStubCount    int                 `json:"total_stub_count"`
	SpecificStubCount int                 `json:"specific_stub_count"`
	Stubs             map[string][]string `json:"stubs,omitempty"`
	Metrics           OrderMetrics        `json:"metrics"`
	Levels            map[string]Level    `json:"levels,omitempty"`
	Justification     Justification       `json:"justification"`
}

type ComparisonReport struct {
	Results    map[string]*TestOrderResult `json:"results"`
	Chosen     string                      `json:"chosen"`
	Scores     map[string]float64          `json:"scores"`
	Clustering map[string]float64          `json:"clustering"`
	Failures   map[string]string           `json:"failures,omitempty"`
	Rationale  []string                    `json:"rationale"`
}

// ChosenResult returns the result of the selected algorithm.
func (r *ComparisonReport) ChosenResult() *TestOrderResult {
	return r.Results[r.Chosen]
}

var (
	ErrOrderMissing   = errors.New("order is missing a component")
	ErrOrderDuplicate = errors.New("order lists a component twice")
	ErrOrderUnknown   = errors.New("order lists an unknown component")
)

// ValidateOrder checks that order is a permutation of ids.
func ValidateOrder(order, ids []string) error {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		if !want[id] {
			return fmt.Errorf("%w: %s", ErrOrderUnknown, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: %s", ErrOrderDuplicate, id)
		}
		seen[id] = true
	}
	for _, id := range ids {
		if !seen[id] {
			return fmt.Errorf("%w: %s", ErrOrderMissing, id)
		}
	}
	return nil
}
