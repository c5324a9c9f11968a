package project

import (
	"labflow/domain/core"
)

// Stage tracks where a project sits in its research lifecycle
type Stage string

const (
	StageBrainstorm Stage = "brainstorm"
	StagePlanning   Stage = "planning"
	StageActive     Stage = "active"
	StageWriting    Stage = "writing"
	StageArchived   Stage = "archived"
)

// Project is the root aggregate: everything else hangs off a project
type Project struct {
	ID          core.ProjectID `json:"id"`
	Name        string         `json:"name"`
	LabName     string         `json:"lab_name"`
	Description string         `json:"description,omitempty"`
	Field       string         `json:"field,omitempty"`
	Stage       Stage          `json:"stage"`
	CreatedAt   core.Timestamp `json:"created_at"`
	UpdatedAt   core.Timestamp `json:"updated_at"`
}

// New creates a project with defaults matching the UI's create form
func New(name, labName string) *Project {
	if labName == "" {
		labName = "My Lab"
	}
	now := core.Now()
	return &Project{
		ID:        core.ProjectID(core.NewID()),
		Name:      name,
		LabName:   labName,
		Stage:     StageBrainstorm,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Member is a lab roster entry. Members are records, not auth principals.
type Member struct {
	ID          core.ID        `json:"id"`
	ProjectID   core.ProjectID `json:"project_id"`
	Name        string         `json:"name"`
	Email       string         `json:"email,omitempty"`
	Role        string         `json:"role,omitempty"` // PI, researcher, technician, student
	Permissions []string       `json:"permissions,omitempty"`
	JoinedAt    core.Timestamp `json:"joined_at"`
}

// EquipmentStatus tracks instrument availability
type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "available"
	EquipmentInUse       EquipmentStatus = "in_use"
	EquipmentMaintenance EquipmentStatus = "maintenance"
	EquipmentBroken      EquipmentStatus = "broken"
)

// Equipment is a tracked lab instrument with calibration dates
type Equipment struct {
	ID              core.ID         `json:"id"`
	ProjectID       core.ProjectID  `json:"project_id"`
	Name            string          `json:"name"`
	Status          EquipmentStatus `json:"status"`
	SerialNumber    string          `json:"serial_number,omitempty"`
	CalibrationDate string          `json:"calibration_date,omitempty"` // YYYY-MM-DD
	NextCalibration string          `json:"next_calibration,omitempty"`
	Location        string          `json:"location,omitempty"`
	Notes           string          `json:"notes,omitempty"`
}

// SuccessRate summarizes experiment outcomes for a project
type SuccessRate struct {
	Total         int                `json:"total"`
	Succeeded     int                `json:"succeeded"`
	Failed        int                `json:"failed"`
	Pending       int                `json:"pending"`
	Rate          float64            `json:"rate"` // succeeded / (succeeded + failed), 0 when no outcomes
	ByCategory    map[string]int     `json:"failures_by_category"`
}
