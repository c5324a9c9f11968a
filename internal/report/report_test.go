package report

import (
	"strings"
	"testing"

	"labflow/domain/experiment"
	"labflow/domain/project"
	"labflow/internal/analysis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *AnalysisReport {
	p := project.New("Catalyst Study", "Chem Lab")
	e := experiment.New(p.ID, "Run 1", []experiment.Parameter{
		{Name: "Temperature", Unit: "C"},
		{Name: "Yield", Unit: "%"},
	})
	e.Data = []experiment.DataRow{
		{"Temperature": 20.0, "Yield": 40.0},
		{"Temperature": 25.0, "Yield": 50.0},
		{"Temperature": 30.0, "Yield": 60.0},
	}
	e.Result = "Yield improves with temperature"

	engine := analysis.NewEngine()
	stats := engine.ComputeStatistics(e.Parameters, e.Data)
	correlations := engine.ComputeCorrelations(e.Parameters, stats)

	return &AnalysisReport{
		Project:      p,
		Experiment:   e,
		Statistics:   stats,
		Correlations: correlations,
	}
}

func TestBuildMarkdownSections(t *testing.T) {
	md := BuildMarkdown(sampleReport())

	assert.Contains(t, md, "# Analysis Report: Run 1")
	assert.Contains(t, md, "**Project:** Catalyst Study")
	assert.Contains(t, md, "## Descriptive Statistics")
	assert.Contains(t, md, "| Temperature | 3 | 25.000 |")
	assert.Contains(t, md, "## Correlations")
	assert.Contains(t, md, "**Temperature vs Yield**: r = 1.000 (strong)")
}

func TestBuildMarkdownEmptyData(t *testing.T) {
	r := sampleReport()
	r.Experiment.Data = nil
	r.Statistics = nil
	r.Correlations = nil

	md := BuildMarkdown(r)
	assert.Contains(t, md, "No numeric data available.")
	assert.Contains(t, md, "No parameter pairs had enough data to correlate.")
}

func TestBuildMarkdownSignatureAndDeviations(t *testing.T) {
	r := sampleReport()
	r.Experiment.Deviations = []experiment.Deviation{{Step: 2, Deviation: "Held at 24C instead of 25C"}}
	require.NoError(t, r.Experiment.Sign("Dr. Kim", "Dr. Osei"))

	md := BuildMarkdown(r)
	assert.Contains(t, md, "## Protocol Deviations")
	assert.Contains(t, md, "- Step 2: Held at 24C instead of 25C")
	assert.Contains(t, md, "Signed by Dr. Kim, witnessed by Dr. Osei")
}

func TestRenderHTML(t *testing.T) {
	out := string(RenderHTML(sampleReport()))

	assert.Contains(t, out, "<h1")
	assert.True(t, strings.Contains(out, "<table>") || strings.Contains(out, "<table"), "stats table should render")
	assert.Contains(t, out, "Temperature")
}
