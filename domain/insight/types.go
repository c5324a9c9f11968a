package insight

import (
	"labflow/domain/core"
)

// Type classifies what kind of pattern an insight describes
type Type string

const (
	TypePattern      Type = "pattern"
	TypeOptimization Type = "optimization"
	TypeCorrelation  Type = "correlation"
	TypeAnomaly      Type = "anomaly"
)

// Insight is an AI-generated observation about a project's experiments.
// Insights are replaced wholesale on each analyze run, never edited.
type Insight struct {
	ID                 core.ID        `json:"id"`
	ProjectID          core.ProjectID `json:"project_id"`
	Content            string         `json:"content"`
	InsightType        Type           `json:"insight_type,omitempty"`
	Confidence         float64        `json:"confidence,omitempty"` // 0-1
	RelatedExperiments []string       `json:"related_experiments,omitempty"`
	CreatedAt          core.Timestamp `json:"created_at"`
}

// Suggestion is an AI-generated actionable recommendation
type Suggestion struct {
	ID             core.ID        `json:"id"`
	ProjectID      core.ProjectID `json:"project_id"`
	Title          string         `json:"title"`
	Description    string         `json:"description,omitempty"`
	SuggestionType string         `json:"suggestion_type,omitempty"` // optimization, troubleshooting, next_step
	Priority       string         `json:"priority,omitempty"`
	Implemented    bool           `json:"implemented"`
	CreatedAt      core.Timestamp `json:"created_at"`
}
