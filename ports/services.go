package ports

import (
	"context"

	"labflow/domain/experiment"
	"labflow/domain/insight"
	"labflow/domain/literature"
)

// ExperimentSummary is the compact experiment view handed to AI generators
type ExperimentSummary struct {
	Name          string                 `json:"name"`
	Parameters    []experiment.Parameter `json:"parameters"`
	Data          []experiment.DataRow   `json:"data"`
	Result        string                 `json:"result,omitempty"`
	Status        experiment.Status      `json:"status"`
	Success       *bool                  `json:"success,omitempty"`
	FailureReason string                 `json:"failure_reason,omitempty"`
}

// InsightGenerator produces insights and suggestions from project context
type InsightGenerator interface {
	GenerateInsights(ctx context.Context, description, field string, experiments []ExperimentSummary) ([]*insight.Insight, error)
	GenerateSuggestions(ctx context.Context, description, field string, experiments []ExperimentSummary) ([]*insight.Suggestion, error)
}

// PaperSearcher finds candidate literature for a project
type PaperSearcher interface {
	Search(ctx context.Context, description, field string, limit int) ([]literature.SearchResult, error)
}
