package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"itorder/internal"
	"itorder/internal/graph"
	"itorder/internal/loader"
	"itorder/internal/selector"
	"itorder/internal/util"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chosenStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	plainStyle  = lipgloss.NewStyle()
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

var columnWidths = []int{8, 10, 7, 10, 12}

// buildGraph loads path and builds the graph from every record it accepts.
// Each rejected record gets a FAIL line.
func buildGraph(path string) (*graph.DependencyGraph, []error, error) {
	gf, err := loader.LoadGraph(path)
	if err != nil {
		return nil, nil, err
	}
	g, rejected := graph.FromRecords(gf.Components, gf.Relationships)
	for _, err := range rejected {
		util.Fail("レコードをスキップ: %v", err)
	}
	return g, rejected, nil
}

func row(style lipgloss.Style, cells ...string) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		st := style
		if i < len(columnWidths) {
			st = st.Width(columnWidths[i])
		}
		parts[i] = st.Render(c)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderReport draws one row per algorithm, chosen one highlighted.
func renderReport(r *internal.ComparisonReport) string {
	lines := []string{row(headerStyle, "algo", "score", "stubs", "specific", "clustering", "order")}
	for _, name := range selector.Preference {
		res, ok := r.Results[name]
		if !ok {
			continue
		}
		style := plainStyle
		label := name
		if name == r.Chosen {
			style = chosenStyle
			label = name + " *"
		}
		lines = append(lines, row(style,
			label,
			fmt.Sprintf("%.4f", r.Scores[name]),
			fmt.Sprint(res.TotalStubCount),
			fmt.Sprint(res.SpecificStubCount),
			fmt.Sprintf("%.3f", r.Clustering[name]),
			strings.Join(res.Order, " "),
		))
	}
	for _, name := range selector.Preference {
		if msg, ok := r.Failures[name]; ok {
			lines = append(lines, row(failStyle, name, "-", "-", "-", "-", msg))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderResult(res *internal.TestOrderResult) string {
	lines := []string{
		headerStyle.Render(res.Algorithm) + " " + strings.Join(res.Order, " → "),
		fmt.Sprintf("stubs: %d total, %d specific", res.TotalStubCount, res.SpecificStubCount),
	}
	for _, e := range res.BrokenEdges {
		lines = append(lines, fmt.Sprintf("  %s -> %s (%s, %s stub, weight %d)", e.SourceID, e.TargetID, e.Kind, e.StubType, e.Weight))
	}
	if res.Justification.Summary != "" {
		lines = append(lines, mutedStyle.Render(res.Justification.Summary))
	}
	return strings.Join(lines, "\n")
}
