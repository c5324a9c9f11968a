package app

import (
	"context"
	"log"

	"labflow/domain/audit"
	"labflow/domain/core"
	"labflow/domain/experiment"
	"labflow/internal/analysis"
	"labflow/internal/chart"
	"labflow/internal/errors"
	"labflow/internal/report"
	"labflow/ports"
)

// AnalysisService computes statistics, correlations, charts and reports
// for a single experiment's data table.
type AnalysisService struct {
	experiments ports.ExperimentRepository
	projects    ports.ProjectRepository
	audits      ports.AuditRepository
	engine      *analysis.Engine
	renderer    *chart.Renderer
}

// NewAnalysisService creates an analysis service
func NewAnalysisService(experiments ports.ExperimentRepository, projects ports.ProjectRepository, audits ports.AuditRepository) *AnalysisService {
	return &AnalysisService{
		experiments: experiments,
		projects:    projects,
		audits:      audits,
		engine:      analysis.NewEngine(),
		renderer:    chart.NewRenderer(),
	}
}

// AnalysisResult bundles the statistics and correlations for one experiment
type AnalysisResult struct {
	ExperimentID core.ExperimentID                         `json:"experiment_id"`
	RowCount     int                                       `json:"row_count"`
	Statistics   map[string]*analysis.ParameterStatistics  `json:"statistics"`
	Correlations map[string]*analysis.Correlation          `json:"correlations"`
}

// Analyze computes descriptive statistics and pairwise correlations over
// the experiment's current data
func (s *AnalysisService) Analyze(ctx context.Context, id core.ExperimentID, actor Actor) (*AnalysisResult, error) {
	e, err := s.experiments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats := s.engine.ComputeStatistics(e.Parameters, e.Data)
	correlations := s.engine.ComputeCorrelations(e.Parameters, stats)

	s.logAction(ctx, e, audit.ActionAnalyze, actor)
	return &AnalysisResult{
		ExperimentID: e.ID,
		RowCount:     len(e.Data),
		Statistics:   stats,
		Correlations: correlations,
	}, nil
}

// RenderChartSVG renders the experiment's data as a vector chart.
// An empty parameter selection means all parameters.
func (s *AnalysisService) RenderChartSVG(ctx context.Context, id core.ExperimentID, chartType chart.Type, paramNames []string) (string, error) {
	e, selected, err := s.loadSelection(ctx, id, paramNames)
	if err != nil {
		return "", err
	}

	stats := s.engine.ComputeStatistics(selected, e.Data)
	scene := s.renderer.Render(e.Data, selected, stats, chartType)
	return chart.EncodeSVG(scene), nil
}

// RenderChartPNG renders the experiment's data as a raster chart for export
func (s *AnalysisService) RenderChartPNG(ctx context.Context, id core.ExperimentID, chartType chart.Type, paramNames []string, actor Actor) ([]byte, error) {
	e, selected, err := s.loadSelection(ctx, id, paramNames)
	if err != nil {
		return nil, err
	}

	png, err := chart.ExportPNG(e.Data, selected, chartType, e.Name)
	if err != nil {
		return nil, errors.Wrap(err, "chart export failed")
	}

	s.logAction(ctx, e, audit.ActionExport, actor)
	return png, nil
}

// BuildReportHTML renders a full analysis report for an experiment
func (s *AnalysisService) BuildReportHTML(ctx context.Context, id core.ExperimentID, actor Actor) ([]byte, error) {
	e, err := s.experiments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	p, err := s.projects.GetByID(ctx, e.ProjectID)
	if err != nil {
		return nil, err
	}

	stats := s.engine.ComputeStatistics(e.Parameters, e.Data)
	correlations := s.engine.ComputeCorrelations(e.Parameters, stats)

	html := report.RenderHTML(&report.AnalysisReport{
		Project:      p,
		Experiment:   e,
		Statistics:   stats,
		Correlations: correlations,
	})

	s.logAction(ctx, e, audit.ActionExport, actor)
	return html, nil
}

// loadSelection resolves the requested parameter names against the
// experiment's parameters, preserving experiment parameter order
func (s *AnalysisService) loadSelection(ctx context.Context, id core.ExperimentID, paramNames []string) (*experiment.Experiment, []experiment.Parameter, error) {
	e, err := s.experiments.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if len(paramNames) == 0 {
		return e, e.Parameters, nil
	}

	wanted := make(map[string]bool, len(paramNames))
	for _, name := range paramNames {
		wanted[name] = true
	}
	selected := make([]experiment.Parameter, 0, len(paramNames))
	for _, p := range e.Parameters {
		if wanted[p.Name] {
			selected = append(selected, p)
		}
	}
	if len(selected) == 0 {
		return nil, nil, errors.InvalidInput("none of the requested parameters exist on this experiment")
	}
	return e, selected, nil
}

func (s *AnalysisService) logAction(ctx context.Context, e *experiment.Experiment, action audit.Action, actor Actor) {
	actor = actor.orAnonymous()
	entry := audit.NewEntry(e.ProjectID, action, "experiment", core.ID(e.ID), e.Name, actor.Name)
	entry.UserRole = actor.Role
	entry.UserIP = actor.IP

	if err := s.audits.Append(ctx, entry); err != nil {
		log.Printf("[AnalysisService] Failed to append audit entry: %v", err)
	}
}
