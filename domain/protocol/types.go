package protocol

import (
	"labflow/domain/core"
	"labflow/domain/experiment"
)

// Step is a single ordered instruction in a protocol
type Step struct {
	Order           int    `json:"order"`
	Title           string `json:"title"`
	Details         string `json:"details,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// Material is a consumable required by a protocol
type Material struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
}

// Protocol is a reusable experiment template
type Protocol struct {
	ID          core.ProtocolID `json:"id"`
	ProjectID   core.ProjectID  `json:"project_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"` // sample_prep, analysis, synthesis, ...

	Steps              []Step                 `json:"steps"`
	RequiredEquipment  []string               `json:"required_equipment,omitempty"`
	RequiredMaterials  []Material             `json:"required_materials,omitempty"`
	ParametersTemplate []experiment.Parameter `json:"parameters_template,omitempty"`

	SafetyNotes string   `json:"safety_notes,omitempty"`
	Hazards     []string `json:"hazards,omitempty"`
	PPERequired []string `json:"ppe_required,omitempty"`

	EstimatedDurationMinutes int     `json:"estimated_duration_minutes,omitempty"`
	DifficultyLevel          string  `json:"difficulty_level,omitempty"` // beginner, intermediate, advanced
	Version                  string  `json:"version"`

	TimesUsed   int      `json:"times_used"`
	SuccessRate *float64 `json:"success_rate,omitempty"` // from linked experiments, nil until computed

	SourcePaperID      *core.PaperID `json:"source_paper_id,omitempty"`
	ExtractedFromPaper bool          `json:"extracted_from_paper"`

	CreatedBy string         `json:"created_by,omitempty"`
	CreatedAt core.Timestamp `json:"created_at"`
	UpdatedAt core.Timestamp `json:"updated_at"`
}

// New creates a protocol with defaults
func New(projectID core.ProjectID, name string) *Protocol {
	now := core.Now()
	return &Protocol{
		ID:        core.ProtocolID(core.NewID()),
		ProjectID: projectID,
		Name:      name,
		Steps:     []Step{},
		Version:   "1.0",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TotalDuration sums step durations in minutes
func (p *Protocol) TotalDuration() int {
	total := 0
	for _, s := range p.Steps {
		total += s.DurationMinutes
	}
	return total
}
