package ports

import (
	"context"

	"labflow/domain/audit"
	"labflow/domain/core"
	"labflow/domain/experiment"
	"labflow/domain/insight"
	"labflow/domain/literature"
	"labflow/domain/project"
	"labflow/domain/protocol"
	"labflow/domain/task"
)

// ProjectRepository persists projects plus their roster and equipment
type ProjectRepository interface {
	Create(ctx context.Context, p *project.Project) error
	GetByID(ctx context.Context, id core.ProjectID) (*project.Project, error)
	List(ctx context.Context) ([]*project.Project, error)
	Update(ctx context.Context, p *project.Project) error
	Delete(ctx context.Context, id core.ProjectID) error

	AddMember(ctx context.Context, m *project.Member) error
	ListMembers(ctx context.Context, projectID core.ProjectID) ([]*project.Member, error)
	DeleteMember(ctx context.Context, id core.ID) error

	AddEquipment(ctx context.Context, e *project.Equipment) error
	ListEquipment(ctx context.Context, projectID core.ProjectID) ([]*project.Equipment, error)
	DeleteEquipment(ctx context.Context, id core.ID) error
}

// ExperimentRepository persists experiments, version snapshots and comments
type ExperimentRepository interface {
	Create(ctx context.Context, e *experiment.Experiment) error
	GetByID(ctx context.Context, id core.ExperimentID) (*experiment.Experiment, error)
	ListByProject(ctx context.Context, projectID core.ProjectID) ([]*experiment.Experiment, error)
	ListLatestByProject(ctx context.Context, projectID core.ProjectID) ([]*experiment.Experiment, error)
	Update(ctx context.Context, e *experiment.Experiment) error
	Delete(ctx context.Context, id core.ExperimentID) error

	SaveVersion(ctx context.Context, v *experiment.Version) error
	ListVersions(ctx context.Context, id core.ExperimentID) ([]*experiment.Version, error)
	GetVersion(ctx context.Context, id core.ExperimentID, versionNumber int) (*experiment.Version, error)

	AddComment(ctx context.Context, c *experiment.Comment) error
	ListComments(ctx context.Context, id core.ExperimentID) ([]*experiment.Comment, error)
	ResolveComment(ctx context.Context, commentID core.ID) error
	DeleteComment(ctx context.Context, commentID core.ID) error
}

// ProtocolRepository persists protocol templates
type ProtocolRepository interface {
	Create(ctx context.Context, p *protocol.Protocol) error
	GetByID(ctx context.Context, id core.ProtocolID) (*protocol.Protocol, error)
	ListByProject(ctx context.Context, projectID core.ProjectID) ([]*protocol.Protocol, error)
	Update(ctx context.Context, p *protocol.Protocol) error
	Delete(ctx context.Context, id core.ProtocolID) error
	IncrementUsage(ctx context.Context, id core.ProtocolID) error
}

// PlannerRepository persists tasks and scheduled experiments
type PlannerRepository interface {
	CreateTask(ctx context.Context, t *task.Task) error
	GetTask(ctx context.Context, id core.ID) (*task.Task, error)
	ListTasks(ctx context.Context, projectID core.ProjectID) ([]*task.Task, error)
	UpdateTask(ctx context.Context, t *task.Task) error
	DeleteTask(ctx context.Context, id core.ID) error

	CreateScheduled(ctx context.Context, s *task.ScheduledExperiment) error
	ListScheduled(ctx context.Context, projectID core.ProjectID) ([]*task.ScheduledExperiment, error)
	DeleteScheduled(ctx context.Context, id core.ID) error
}

// LiteratureRepository persists papers and annotations
type LiteratureRepository interface {
	Create(ctx context.Context, p *literature.Paper) error
	ListByProject(ctx context.Context, projectID core.ProjectID) ([]*literature.Paper, error)
	DeleteByProject(ctx context.Context, projectID core.ProjectID) error
	Delete(ctx context.Context, id core.PaperID) error

	AddAnnotation(ctx context.Context, a *literature.Annotation) error
	ListAnnotations(ctx context.Context, paperID core.PaperID) ([]*literature.Annotation, error)
}

// InsightRepository persists AI-generated insights and suggestions
type InsightRepository interface {
	CreateInsight(ctx context.Context, i *insight.Insight) error
	ListInsights(ctx context.Context, projectID core.ProjectID) ([]*insight.Insight, error)
	DeleteInsightsByProject(ctx context.Context, projectID core.ProjectID) error

	CreateSuggestion(ctx context.Context, s *insight.Suggestion) error
	ListSuggestions(ctx context.Context, projectID core.ProjectID) ([]*insight.Suggestion, error)
	DeleteSuggestionsByProject(ctx context.Context, projectID core.ProjectID) error
}

// AuditRepository is append-only: entries are never updated or deleted
type AuditRepository interface {
	Append(ctx context.Context, e *audit.Entry) error
	ListByProject(ctx context.Context, projectID core.ProjectID, limit int) ([]*audit.Entry, error)
	ListByEntity(ctx context.Context, entityType string, entityID core.ID, limit int) ([]*audit.Entry, error)
}
