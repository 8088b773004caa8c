package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"

	"startup_valuation/pkg/models"
)

// RenderMarkdown produces a human-readable valuation report for a hybrid
// result, optionally including the Monte Carlo risk section. The output is
// pure Markdown; no file or network I/O happens here.
func RenderMarkdown(hybrid *models.HybridResult, sim *models.SimulationResult) string {
	var b strings.Builder

	b.WriteString("# Valuation Report\n\n")
	fmt.Fprintf(&b, "- **Stage**: %s\n", hybrid.Stage)
	fmt.Fprintf(&b, "- **Weighted valuation**: %s\n", formatCurrency(hybrid.WeightedAverage))
	fmt.Fprintf(&b, "- **Overall confidence**: %.0f/100\n", hybrid.OverallConfidence)
	fmt.Fprintf(&b, "- **Request**: %s\n\n", hybrid.RequestID)

	b.WriteString("## Method Results\n\n")
	b.WriteString("| Method | Equity Value | Confidence | Weight |\n")
	b.WriteString("|--------|-------------:|-----------:|-------:|\n")
	for _, method := range sortedMethods(hybrid) {
		r := hybrid.MethodResults[method]
		fmt.Fprintf(&b, "| %s | %s | %.0f | %.1f%% |\n",
			method, formatCurrency(r.EquityValue), r.Confidence, 100*hybrid.Weights[method])
	}
	b.WriteString("\n")

	if len(hybrid.FailedMethods) > 0 {
		b.WriteString("## Excluded Methods\n\n")
		for _, method := range sortedFailures(hybrid) {
			fmt.Fprintf(&b, "- **%s**: %s\n", method, hybrid.FailedMethods[method])
		}
		b.WriteString("\n")
	}

	b.WriteString("## Scenarios\n\n")
	fmt.Fprintf(&b, "- Conservative: %s\n", formatCurrency(hybrid.Scenarios.Conservative))
	fmt.Fprintf(&b, "- Base: %s\n", formatCurrency(hybrid.Scenarios.Base))
	fmt.Fprintf(&b, "- Optimistic: %s\n\n", formatCurrency(hybrid.Scenarios.Optimistic))

	if len(hybrid.SanityFlags) > 0 {
		b.WriteString("## Warnings\n\n")
		for _, f := range hybrid.SanityFlags {
			fmt.Fprintf(&b, "- `%s`: %s\n", f.Code, f.Message)
		}
		b.WriteString("\n")
	}

	for _, method := range sortedMethods(hybrid) {
		r := hybrid.MethodResults[method]
		if len(r.Insights) == 0 {
			continue
		}
		fmt.Fprintf(&b, "### %s insights\n\n", method)
		for _, insight := range r.Insights {
			fmt.Fprintf(&b, "- %s\n", insight)
		}
		b.WriteString("\n")
	}

	if sim != nil {
		b.WriteString("## Monte Carlo Risk Analysis\n\n")
		fmt.Fprintf(&b, "- Iterations: %d (seed %d)\n", sim.Iterations, sim.Seed)
		fmt.Fprintf(&b, "- Expected value: %s\n", formatCurrency(sim.ExpectedValue))
		fmt.Fprintf(&b, "- P10 / P50 / P90: %s / %s / %s\n",
			formatCurrency(sim.Percentiles.P10),
			formatCurrency(sim.Percentiles.P50),
			formatCurrency(sim.Percentiles.P90))
		fmt.Fprintf(&b, "- %.0f%% interval: %s – %s\n\n",
			100*sim.Interval.Level,
			formatCurrency(sim.Interval.Low),
			formatCurrency(sim.Interval.High))

		b.WriteString("| Variable | Correlation | Impact |\n")
		b.WriteString("|----------|------------:|-------:|\n")
		for _, s := range sim.Sensitivity {
			fmt.Fprintf(&b, "| %s | %+.3f | %.3f |\n", s.Variable, s.Correlation, s.Impact)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// ValidateMarkdown checks that the rendered report parses as Markdown.
// Goldmark is very permissive, so this is a basic structural check.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	doc := parser.Parse(reader)
	return doc != nil
}

func sortedMethods(hybrid *models.HybridResult) []models.Method {
	methods := make([]models.Method, 0, len(hybrid.MethodResults))
	for m := range hybrid.MethodResults {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	return methods
}

func sortedFailures(hybrid *models.HybridResult) []models.Method {
	methods := make([]models.Method, 0, len(hybrid.FailedMethods))
	for m := range hybrid.FailedMethods {
		methods = append(methods, m)
	}
	sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
	return methods
}

func formatCurrency(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}
