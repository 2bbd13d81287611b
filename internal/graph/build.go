package graph

import "itorder/internal"

// FromRecords builds a graph from scanner output. Records that violate the
// construction contract are skipped and returned; everything else is added.
func FromRecords(components []internal.Component, relationships []internal.Relationship) (*DependencyGraph, []error) {
	g := New()
	var rejected []error
	for _, c := range components {
		if err := g.AddComponent(c); err != nil {
			rejected = append(rejected, err)
		}
	}
	for _, r := range relationships {
		if err := g.AddRelationship(r); err != nil {
			rejected = append(rejected, err)
		}
	}
	return g, rejected
}
