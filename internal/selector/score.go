package selector

import (
	"fmt"
	"sort"

	"itorder/internal"
	"itorder/internal/generator"
	"itorder/internal/graph"
)

// score fills Scores, Clustering, Chosen and Rationale of report.
func (s *Selector) score(g *graph.DependencyGraph, report *internal.ComparisonReport) {
	w := s.cfg.Weights
	levels, err := generator.MajorLevels(g)
	if err != nil {
		report.Rationale = append(report.Rationale, "major levels unavailable, clustering scored as 0: "+err.Error())
	}

	for _, name := range resultNames(report) {
		res := report.Results[name]
		c := Clustering(res.Order, levels)
		report.Clustering[name] = c
		report.Scores[name] = w.Total*float64(res.TotalStubCount) + w.Specific*float64(res.SpecificStubCount) - w.Quality*c
		report.Rationale = append(report.Rationale, fmt.Sprintf(
			"%s: score %.4f = %.4g*%d total + %.4g*%d specific - %.4g*%.4f clustering",
			name, report.Scores[name], w.Total, res.TotalStubCount, w.Specific, res.SpecificStubCount, w.Quality, c))
	}

	report.Chosen = pick(report.Scores)
	report.Rationale = append(report.Rationale, fmt.Sprintf("chose %s with the lowest score", report.Chosen))

	failed := make([]string, 0, len(report.Failures))
	for name := range report.Failures {
		failed = append(failed, name)
	}
	sort.Slice(failed, func(i, j int) bool { return byPreference(failed[i], failed[j]) })
	for _, name := range failed {
		report.Rationale = append(report.Rationale, fmt.Sprintf("%s did not produce an order: %s", name, report.Failures[name]))
	}
}

// pick returns the lowest score; ties follow Preference, then name.
func pick(scores map[string]float64) string {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := names[i], names[j]
		if scores[a] != scores[b] {
			return scores[a] < scores[b]
		}
		return byPreference(a, b)
	})
	return names[0]
}

func byPreference(a, b string) bool {
	if pa, pb := preferenceRank(a), preferenceRank(b); pa != pb {
		return pa < pb
	}
	return a < b
}

func preferenceRank(name string) int {
	for i, p := range Preference {
		if p == name {
			return i
		}
	}
	return len(Preference)
}

// Clustering measures how contiguous same-major-level components are in
// order: the share of adjacent pairs on the same level out of the most such
// pairs possible. 1 means every level forms one block. Without levels the
// score is 0.
func Clustering(order []string, levels map[string]int) float64 {
	if levels == nil {
		return 0
	}
	distinct := map[int]bool{}
	for _, id := range order {
		distinct[levels[id]] = true
	}
	best := len(order) - len(distinct)
	if best <= 0 {
		return 1
	}
	same := 0
	for i := 1; i < len(order); i++ {
		if levels[order[i]] == levels[order[i-1]] {
			same++
		}
	}
	return float64(same) / float64(best)
}

func resultNames(report *internal.ComparisonReport) []string {
	names := make([]string, 0, len(report.Results))
	for name := range report.Results {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return byPreference(names[i], names[j]) })
	return names
}
