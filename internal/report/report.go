package report

import (
	"fmt"
	"sort"
	"strings"

	"labflow/domain/experiment"
	"labflow/domain/project"
	"labflow/internal/analysis"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// AnalysisReport bundles everything a rendered experiment report needs
type AnalysisReport struct {
	Project      *project.Project
	Experiment   *experiment.Experiment
	Statistics   map[string]*analysis.ParameterStatistics
	Correlations map[string]*analysis.Correlation
}

// BuildMarkdown renders the report as a markdown document
func BuildMarkdown(r *AnalysisReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Analysis Report: %s\n\n", r.Experiment.Name)
	fmt.Fprintf(&b, "**Project:** %s  \n", r.Project.Name)
	fmt.Fprintf(&b, "**Status:** %s  \n", r.Experiment.Status)
	fmt.Fprintf(&b, "**Rows:** %d\n\n", len(r.Experiment.Data))

	if r.Experiment.Result != "" {
		fmt.Fprintf(&b, "**Result:** %s\n\n", r.Experiment.Result)
	}

	b.WriteString("## Descriptive Statistics\n\n")
	if len(r.Statistics) == 0 {
		b.WriteString("No numeric data available.\n\n")
	} else {
		b.WriteString("| Parameter | n | Mean | Median | Std Dev | CV % | Trend |\n")
		b.WriteString("|---|---|---|---|---|---|---|\n")
		for _, name := range sortedStatNames(r.Statistics) {
			s := r.Statistics[name]
			fmt.Fprintf(&b, "| %s | %d | %.3f | %.3f | %.3f | %.1f | %s |\n",
				name, s.N, s.Mean, s.Median, s.StdDev, s.CV, analysis.TrendDirection(s.Trend))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Correlations\n\n")
	if len(r.Correlations) == 0 {
		b.WriteString("No parameter pairs had enough data to correlate.\n")
	} else {
		keys := make([]string, 0, len(r.Correlations))
		for key := range r.Correlations {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			c := r.Correlations[key]
			fmt.Fprintf(&b, "- **%s vs %s**: r = %.3f (%s)\n", c.Param1, c.Param2, c.Value, c.Strength)
		}
	}

	if len(r.Experiment.Deviations) > 0 {
		b.WriteString("\n## Protocol Deviations\n\n")
		for _, d := range r.Experiment.Deviations {
			fmt.Fprintf(&b, "- Step %d: %s\n", d.Step, d.Deviation)
		}
	}

	if r.Experiment.Signed {
		fmt.Fprintf(&b, "\n---\nSigned by %s", r.Experiment.SignedBy)
		if r.Experiment.WitnessName != "" {
			fmt.Fprintf(&b, ", witnessed by %s", r.Experiment.WitnessName)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderHTML converts the report markdown into a standalone HTML fragment
func RenderHTML(r *AnalysisReport) []byte {
	md := BuildMarkdown(r)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}

func sortedStatNames(stats map[string]*analysis.ParameterStatistics) []string {
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
