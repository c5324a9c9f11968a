package experiment

import (
	"encoding/json"
	"fmt"

	"labflow/domain/core"
)

// Status tracks the lifecycle of an experiment
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusAbandoned  Status = "abandoned"
)

// FailureCategory classifies why an experiment failed
type FailureCategory string

const (
	FailureEquipment     FailureCategory = "equipment"
	FailureProtocol      FailureCategory = "protocol"
	FailureContamination FailureCategory = "contamination"
	FailureHumanError    FailureCategory = "human_error"
	FailureUnknown       FailureCategory = "unknown"
)

// Parameter defines a measured column in an experiment's data table.
// Name is unique within an experiment; Unit is optional display metadata.
type Parameter struct {
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

// DataRow maps parameter names to raw cell values. Cells arrive from the
// client as strings or numbers; numeric parsing happens at analysis time.
// Row order is significant: the row index is the x-axis for trend analysis.
type DataRow map[string]interface{}

// Deviation records a departure from the linked protocol
type Deviation struct {
	Step      int    `json:"step"`
	Deviation string `json:"deviation"`
}

// Experiment is a versioned, signable record of a single lab experiment
type Experiment struct {
	ID        core.ExperimentID `json:"id"`
	ProjectID core.ProjectID    `json:"project_id"`
	Name      string            `json:"name"`

	Parameters []Parameter `json:"parameters"`
	Data       []DataRow   `json:"data"`
	Result     string      `json:"result,omitempty"`

	Status          Status          `json:"status"`
	Success         *bool           `json:"success,omitempty"` // nil = pending
	FailureReason   string          `json:"failure_reason,omitempty"`
	FailureCategory FailureCategory `json:"failure_category,omitempty"`

	Version    int               `json:"version"`
	IsLatest   bool              `json:"is_latest"`
	ProtocolID *core.ProtocolID  `json:"protocol_id,omitempty"`
	Deviations []Deviation       `json:"protocol_deviations,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Metadata   map[string]string `json:"extracted_metadata,omitempty"`

	Signed          bool           `json:"signed"`
	SignedBy        string         `json:"signed_by,omitempty"`
	SignedAt        core.Timestamp `json:"signed_at,omitempty"`
	SignatureHash   core.Hash      `json:"signature_hash,omitempty"`
	WitnessName     string         `json:"witness_name,omitempty"`
	WitnessSignedAt core.Timestamp `json:"witness_signed_at,omitempty"`

	CreatedAt   core.Timestamp `json:"created_at"`
	UpdatedAt   core.Timestamp `json:"updated_at"`
	CompletedAt core.Timestamp `json:"completed_at,omitempty"`
}

// Version snapshots support restore and diff of experiment history
type Version struct {
	ID            core.ID           `json:"id"`
	ExperimentID  core.ExperimentID `json:"experiment_id"`
	VersionNumber int               `json:"version_number"`
	Name          string            `json:"name"`
	Parameters    []Parameter       `json:"parameters"`
	Data          []DataRow         `json:"data"`
	Result        string            `json:"result,omitempty"`
	ChangedBy     string            `json:"changed_by,omitempty"`
	ChangeReason  string            `json:"change_reason,omitempty"`
	CreatedAt     core.Timestamp    `json:"created_at"`
}

// New creates an experiment with the initial version
func New(projectID core.ProjectID, name string, params []Parameter) *Experiment {
	now := core.Now()
	return &Experiment{
		ID:         core.ExperimentID(core.NewID()),
		ProjectID:  projectID,
		Name:       name,
		Parameters: params,
		Data:       []DataRow{},
		Status:     StatusInProgress,
		Version:    1,
		IsLatest:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Snapshot captures the current content as a Version record
func (e *Experiment) Snapshot(changedBy, reason string) *Version {
	return &Version{
		ID:            core.NewID(),
		ExperimentID:  e.ID,
		VersionNumber: e.Version,
		Name:          e.Name,
		Parameters:    e.Parameters,
		Data:          e.Data,
		Result:        e.Result,
		ChangedBy:     changedBy,
		ChangeReason:  reason,
		CreatedAt:     core.Now(),
	}
}

// ContentHash computes the SHA-256 hash over the signable content. The
// encoding is canonical JSON of (name, parameters, data, result) so the same
// content always produces the same hash.
func (e *Experiment) ContentHash() (core.Hash, error) {
	payload := struct {
		Name       string      `json:"name"`
		Parameters []Parameter `json:"parameters"`
		Data       []DataRow   `json:"data"`
		Result     string      `json:"result"`
	}{e.Name, e.Parameters, e.Data, e.Result}

	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode signable content: %w", err)
	}
	return core.NewHash(raw), nil
}

// Sign applies an electronic signature over the current content.
// Signing an already-signed experiment is rejected.
func (e *Experiment) Sign(signer, witness string) error {
	if e.Signed {
		return fmt.Errorf("experiment %s is already signed", e.ID)
	}
	if signer == "" {
		return fmt.Errorf("signer name is required")
	}

	hash, err := e.ContentHash()
	if err != nil {
		return err
	}

	now := core.Now()
	e.Signed = true
	e.SignedBy = signer
	e.SignedAt = now
	e.SignatureHash = hash
	if witness != "" {
		e.WitnessName = witness
		e.WitnessSignedAt = now
	}
	return nil
}

// VerifySignature recomputes the content hash and compares it against the
// stored signature hash. Returns false when content changed after signing.
func (e *Experiment) VerifySignature() (bool, error) {
	if !e.Signed {
		return false, fmt.Errorf("experiment %s is not signed", e.ID)
	}
	hash, err := e.ContentHash()
	if err != nil {
		return false, err
	}
	return hash.Equals(e.SignatureHash), nil
}

// Comment is a threaded discussion entry attached to an experiment
type Comment struct {
	ID           core.ID           `json:"id"`
	ExperimentID core.ExperimentID `json:"experiment_id"`
	Content      string            `json:"content"`
	AuthorName   string            `json:"author_name"`
	AuthorRole   string            `json:"author_role,omitempty"`
	ParentID     *core.ID          `json:"parent_id,omitempty"`
	IsResolved   bool              `json:"is_resolved"`
	CommentType  string            `json:"comment_type"` // general, question, suggestion, issue, approval
	CreatedAt    core.Timestamp    `json:"created_at"`
	UpdatedAt    core.Timestamp    `json:"updated_at"`
}
