package audit

import (
	"labflow/domain/core"
)

// Action enumerates audited operations
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionSign    Action = "sign"
	ActionRestore Action = "restore"
	ActionAnalyze Action = "analyze"
	ActionExport  Action = "export"
)

// Entry is an append-only audit record. The checksum covers the identifying
// fields so after-the-fact tampering is detectable.
type Entry struct {
	ID        core.ID        `json:"id"`
	ProjectID core.ProjectID `json:"project_id"`

	Action     Action  `json:"action"`
	EntityType string  `json:"entity_type"` // experiment, protocol, paper, ...
	EntityID   core.ID `json:"entity_id,omitempty"`
	EntityName string  `json:"entity_name,omitempty"`

	UserName string `json:"user_name"`
	UserRole string `json:"user_role,omitempty"`
	UserIP   string `json:"user_ip,omitempty"`

	OldValue      string `json:"old_value,omitempty"` // JSON snapshot
	NewValue      string `json:"new_value,omitempty"`
	ChangeSummary string `json:"change_summary,omitempty"`
	FieldChanged  string `json:"field_changed,omitempty"`
	Reason        string `json:"reason,omitempty"` // mandatory for update/delete

	Timestamp core.Timestamp `json:"timestamp"`
	Checksum  core.Hash      `json:"checksum"`
}

// NewEntry builds an entry and seals it with a checksum
func NewEntry(projectID core.ProjectID, action Action, entityType string, entityID core.ID, entityName, userName string) *Entry {
	e := &Entry{
		ID:         core.NewID(),
		ProjectID:  projectID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		EntityName: entityName,
		UserName:   userName,
		Timestamp:  core.Now(),
	}
	e.Checksum = e.computeChecksum()
	return e
}

func (e *Entry) computeChecksum() core.Hash {
	return core.ComputeRecordChecksum(map[string]interface{}{
		"project_id":  e.ProjectID,
		"action":      e.Action,
		"entity_type": e.EntityType,
		"entity_id":   e.EntityID,
		"entity_name": e.EntityName,
		"user_name":   e.UserName,
		"timestamp":   e.Timestamp.Time().UnixNano(),
	})
}

// Verify recomputes the checksum against the stored one
func (e *Entry) Verify() bool {
	return e.computeChecksum().Equals(e.Checksum)
}
