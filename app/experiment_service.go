package app

import (
	"context"
	"log"

	"labflow/domain/audit"
	"labflow/domain/core"
	"labflow/domain/experiment"
	"labflow/domain/project"
	"labflow/internal/errors"
	"labflow/ports"
)

// ExperimentService orchestrates the experiment lifecycle: CRUD with
// version snapshots, restore, electronic signatures and audit logging.
type ExperimentService struct {
	experiments ports.ExperimentRepository
	audits      ports.AuditRepository
}

// NewExperimentService creates an experiment service
func NewExperimentService(experiments ports.ExperimentRepository, audits ports.AuditRepository) *ExperimentService {
	return &ExperimentService{experiments: experiments, audits: audits}
}

// ExperimentUpdate carries the mutable experiment fields for an update.
// Nil pointers mean "leave unchanged".
type ExperimentUpdate struct {
	Name       *string
	Parameters []experiment.Parameter
	Data       []experiment.DataRow
	Result     *string
	Deviations []experiment.Deviation
	Tags       []string
	ProtocolID *core.ProtocolID
	Reason     string
}

// StatusUpdate carries an experiment outcome change
type StatusUpdate struct {
	Status          experiment.Status
	Success         *bool
	FailureReason   string
	FailureCategory experiment.FailureCategory
}

// Create creates an experiment and records the audit entry
func (s *ExperimentService) Create(ctx context.Context, projectID core.ProjectID, name string, params []experiment.Parameter, data []experiment.DataRow, protocolID *core.ProtocolID, actor Actor) (*experiment.Experiment, error) {
	if name == "" {
		return nil, errors.InvalidInput("experiment name is required")
	}

	e := experiment.New(projectID, name, params)
	if data != nil {
		e.Data = data
	}
	e.ProtocolID = protocolID

	if err := s.experiments.Create(ctx, e); err != nil {
		return nil, errors.Wrap(err, "failed to create experiment")
	}

	s.logAction(ctx, projectID, audit.ActionCreate, e, actor, "")
	return e, nil
}

// Get loads a single experiment
func (s *ExperimentService) Get(ctx context.Context, id core.ExperimentID) (*experiment.Experiment, error) {
	return s.experiments.GetByID(ctx, id)
}

// List returns a project's experiments in creation order
func (s *ExperimentService) List(ctx context.Context, projectID core.ProjectID) ([]*experiment.Experiment, error) {
	return s.experiments.ListByProject(ctx, projectID)
}

// Update applies changes to an experiment. The pre-update content is
// snapshotted as a version first so the change can be diffed or restored.
// Signed experiments cannot be edited; sign-off freezes content.
func (s *ExperimentService) Update(ctx context.Context, id core.ExperimentID, update ExperimentUpdate, actor Actor) (*experiment.Experiment, error) {
	if update.Reason == "" {
		return nil, errors.InvalidInput("a change reason is required for updates")
	}

	e, err := s.experiments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Signed {
		return nil, errors.Conflict("signed experiments cannot be modified")
	}

	snapshot := e.Snapshot(actor.orAnonymous().Name, update.Reason)
	if err := s.experiments.SaveVersion(ctx, snapshot); err != nil {
		return nil, errors.Wrap(err, "failed to snapshot experiment version")
	}

	if update.Name != nil {
		e.Name = *update.Name
	}
	if update.Parameters != nil {
		e.Parameters = update.Parameters
	}
	if update.Data != nil {
		e.Data = update.Data
	}
	if update.Result != nil {
		e.Result = *update.Result
	}
	if update.Deviations != nil {
		e.Deviations = update.Deviations
	}
	if update.Tags != nil {
		e.Tags = update.Tags
	}
	if update.ProtocolID != nil {
		e.ProtocolID = update.ProtocolID
	}
	e.Version++
	e.UpdatedAt = core.Now()

	if err := s.experiments.Update(ctx, e); err != nil {
		return nil, errors.Wrap(err, "failed to update experiment")
	}

	s.logAction(ctx, e.ProjectID, audit.ActionUpdate, e, actor, update.Reason)
	return e, nil
}

// Delete removes an experiment. Deletion requires a reason for the audit
// trail; the audit entry itself survives the delete.
func (s *ExperimentService) Delete(ctx context.Context, id core.ExperimentID, reason string, actor Actor) error {
	if reason == "" {
		return errors.InvalidInput("a reason is required for deletion")
	}

	e, err := s.experiments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.experiments.Delete(ctx, id); err != nil {
		return errors.Wrap(err, "failed to delete experiment")
	}

	s.logAction(ctx, e.ProjectID, audit.ActionDelete, e, actor, reason)
	return nil
}

// Versions lists the snapshot history, newest first
func (s *ExperimentService) Versions(ctx context.Context, id core.ExperimentID) ([]*experiment.Version, error) {
	return s.experiments.ListVersions(ctx, id)
}

// Restore rolls an experiment's content back to a stored version. The
// current content is snapshotted first, so a restore is itself undoable,
// and the version counter keeps increasing rather than rewinding.
func (s *ExperimentService) Restore(ctx context.Context, id core.ExperimentID, versionNumber int, actor Actor) (*experiment.Experiment, error) {
	e, err := s.experiments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Signed {
		return nil, errors.Conflict("signed experiments cannot be modified")
	}

	v, err := s.experiments.GetVersion(ctx, id, versionNumber)
	if err != nil {
		return nil, err
	}

	snapshot := e.Snapshot(actor.orAnonymous().Name, "pre-restore snapshot")
	if err := s.experiments.SaveVersion(ctx, snapshot); err != nil {
		return nil, errors.Wrap(err, "failed to snapshot experiment version")
	}

	e.Name = v.Name
	e.Parameters = v.Parameters
	e.Data = v.Data
	e.Result = v.Result
	e.Version++
	e.UpdatedAt = core.Now()

	if err := s.experiments.Update(ctx, e); err != nil {
		return nil, errors.Wrap(err, "failed to restore experiment")
	}

	s.logAction(ctx, e.ProjectID, audit.ActionRestore, e, actor, "")
	return e, nil
}

// UpdateStatus records an experiment outcome
func (s *ExperimentService) UpdateStatus(ctx context.Context, id core.ExperimentID, update StatusUpdate, actor Actor) (*experiment.Experiment, error) {
	e, err := s.experiments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	e.Status = update.Status
	e.Success = update.Success
	e.FailureReason = update.FailureReason
	e.FailureCategory = update.FailureCategory
	if update.Status == experiment.StatusCompleted || update.Status == experiment.StatusFailed {
		e.CompletedAt = core.Now()
	}
	e.UpdatedAt = core.Now()

	if err := s.experiments.Update(ctx, e); err != nil {
		return nil, errors.Wrap(err, "failed to update experiment status")
	}

	s.logAction(ctx, e.ProjectID, audit.ActionUpdate, e, actor, "status change")
	return e, nil
}

// Sign applies an electronic signature over the current content
func (s *ExperimentService) Sign(ctx context.Context, id core.ExperimentID, signer, witness string, actor Actor) (*experiment.Experiment, error) {
	e, err := s.experiments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.Sign(signer, witness); err != nil {
		return nil, errors.Wrap(err, "signing failed")
	}
	e.UpdatedAt = core.Now()

	if err := s.experiments.Update(ctx, e); err != nil {
		return nil, errors.Wrap(err, "failed to persist signature")
	}

	s.logAction(ctx, e.ProjectID, audit.ActionSign, e, actor, "")
	return e, nil
}

// VerifySignature recomputes the content hash against the stored signature
func (s *ExperimentService) VerifySignature(ctx context.Context, id core.ExperimentID) (bool, error) {
	e, err := s.experiments.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return e.VerifySignature()
}

// AddComment attaches a discussion comment to an experiment
func (s *ExperimentService) AddComment(ctx context.Context, c *experiment.Comment) error {
	if c.Content == "" {
		return errors.InvalidInput("comment content is required")
	}
	if c.AuthorName == "" {
		return errors.InvalidInput("comment author is required")
	}
	if c.CommentType == "" {
		c.CommentType = "general"
	}
	c.ID = core.NewID()
	now := core.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	return s.experiments.AddComment(ctx, c)
}

// Comments lists an experiment's comments in creation order
func (s *ExperimentService) Comments(ctx context.Context, id core.ExperimentID) ([]*experiment.Comment, error) {
	return s.experiments.ListComments(ctx, id)
}

// ResolveComment marks a comment thread resolved
func (s *ExperimentService) ResolveComment(ctx context.Context, commentID core.ID) error {
	return s.experiments.ResolveComment(ctx, commentID)
}

// DeleteComment removes a comment
func (s *ExperimentService) DeleteComment(ctx context.Context, commentID core.ID) error {
	return s.experiments.DeleteComment(ctx, commentID)
}

// SuccessRate summarizes a project's experiment outcomes. Pending
// experiments are excluded from the rate denominator.
func (s *ExperimentService) SuccessRate(ctx context.Context, projectID core.ProjectID) (*project.SuccessRate, error) {
	experiments, err := s.experiments.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	rate := &project.SuccessRate{
		Total:      len(experiments),
		ByCategory: make(map[string]int),
	}
	for _, e := range experiments {
		switch {
		case e.Success == nil:
			rate.Pending++
		case *e.Success:
			rate.Succeeded++
		default:
			rate.Failed++
			if e.FailureCategory != "" {
				rate.ByCategory[string(e.FailureCategory)]++
			}
		}
	}
	if decided := rate.Succeeded + rate.Failed; decided > 0 {
		rate.Rate = float64(rate.Succeeded) / float64(decided)
	}
	return rate, nil
}

// logAction appends an audit entry. Audit failures are logged, not
// propagated: the primary operation already succeeded.
func (s *ExperimentService) logAction(ctx context.Context, projectID core.ProjectID, action audit.Action, e *experiment.Experiment, actor Actor, reason string) {
	actor = actor.orAnonymous()
	entry := audit.NewEntry(projectID, action, "experiment", core.ID(e.ID), e.Name, actor.Name)
	entry.UserRole = actor.Role
	entry.UserIP = actor.IP
	entry.Reason = reason

	if err := s.audits.Append(ctx, entry); err != nil {
		log.Printf("[ExperimentService] Failed to append audit entry: %v", err)
	}
}
