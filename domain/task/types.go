package task

import (
	"labflow/domain/core"
)

// Priority levels for tasks
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Task is a checklist item scoped to a project
type Task struct {
	ID          core.ID        `json:"id"`
	ProjectID   core.ProjectID `json:"project_id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Checked     bool           `json:"checked"`
	Priority    Priority       `json:"priority"`
	AssignedTo  string         `json:"assigned_to,omitempty"`
	DueDate     string         `json:"due_date,omitempty"` // YYYY-MM-DD
	CreatedAt   core.Timestamp `json:"created_at"`
	CompletedAt core.Timestamp `json:"completed_at,omitempty"`
}

// Toggle flips the checked state and stamps/clears CompletedAt
func (t *Task) Toggle() {
	t.Checked = !t.Checked
	if t.Checked {
		t.CompletedAt = core.Now()
	} else {
		t.CompletedAt = core.Timestamp{}
	}
}

// ScheduledExperiment is a calendar entry for planned lab work
type ScheduledExperiment struct {
	ID            core.ID          `json:"id"`
	ProjectID     core.ProjectID   `json:"project_id"`
	Title         string           `json:"title"`
	ScheduledDate string           `json:"scheduled_date"` // YYYY-MM-DD
	Time          string           `json:"time,omitempty"` // HH:MM
	Location      string           `json:"location,omitempty"`
	Description   string           `json:"description,omitempty"`
	ProtocolID    *core.ProtocolID `json:"protocol_id,omitempty"`
	AssignedTo    string           `json:"assigned_to,omitempty"`
	CreatedAt     core.Timestamp   `json:"created_at"`
}
