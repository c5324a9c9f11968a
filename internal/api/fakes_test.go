package api

import (
	"context"
	"fmt"
	"sync"

	"labflow/domain/audit"
	"labflow/domain/core"
	"labflow/domain/experiment"
	"labflow/domain/insight"
	"labflow/domain/literature"
	"labflow/domain/project"
	"labflow/domain/protocol"
	"labflow/domain/task"
	"labflow/ports"
)

// In-memory repository fakes backing the handler tests.

type memExperimentRepo struct {
	mu          sync.Mutex
	experiments map[core.ExperimentID]*experiment.Experiment
	versions    map[core.ExperimentID][]*experiment.Version
	comments    map[core.ExperimentID][]*experiment.Comment
}

func newMemExperimentRepo() *memExperimentRepo {
	return &memExperimentRepo{
		experiments: make(map[core.ExperimentID]*experiment.Experiment),
		versions:    make(map[core.ExperimentID][]*experiment.Version),
		comments:    make(map[core.ExperimentID][]*experiment.Comment),
	}
}

func (m *memExperimentRepo) Create(_ context.Context, e *experiment.Experiment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *e
	m.experiments[e.ID] = &copied
	return nil
}

func (m *memExperimentRepo) GetByID(_ context.Context, id core.ExperimentID) (*experiment.Experiment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.experiments[id]
	if !ok {
		return nil, fmt.Errorf("experiment not found: %s", id)
	}
	copied := *e
	return &copied, nil
}

func (m *memExperimentRepo) ListByProject(_ context.Context, projectID core.ProjectID) ([]*experiment.Experiment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*experiment.Experiment{}
	for _, e := range m.experiments {
		if e.ProjectID == projectID {
			copied := *e
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (m *memExperimentRepo) ListLatestByProject(ctx context.Context, projectID core.ProjectID) ([]*experiment.Experiment, error) {
	return m.ListByProject(ctx, projectID)
}

func (m *memExperimentRepo) Update(_ context.Context, e *experiment.Experiment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.experiments[e.ID]; !ok {
		return fmt.Errorf("experiment not found: %s", e.ID)
	}
	copied := *e
	m.experiments[e.ID] = &copied
	return nil
}

func (m *memExperimentRepo) Delete(_ context.Context, id core.ExperimentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.experiments[id]; !ok {
		return fmt.Errorf("experiment not found: %s", id)
	}
	delete(m.experiments, id)
	return nil
}

func (m *memExperimentRepo) SaveVersion(_ context.Context, v *experiment.Version) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.versions[v.ExperimentID] = append(m.versions[v.ExperimentID], v)
	return nil
}

func (m *memExperimentRepo) ListVersions(_ context.Context, id core.ExperimentID) ([]*experiment.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[id], nil
}

func (m *memExperimentRepo) GetVersion(_ context.Context, id core.ExperimentID, versionNumber int) (*experiment.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.versions[id] {
		if v.VersionNumber == versionNumber {
			return v, nil
		}
	}
	return nil, fmt.Errorf("version %d not found for experiment %s", versionNumber, id)
}

func (m *memExperimentRepo) AddComment(_ context.Context, c *experiment.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[c.ExperimentID] = append(m.comments[c.ExperimentID], c)
	return nil
}

func (m *memExperimentRepo) ListComments(_ context.Context, id core.ExperimentID) ([]*experiment.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.comments[id], nil
}

func (m *memExperimentRepo) ResolveComment(_ context.Context, commentID core.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, list := range m.comments {
		for _, c := range list {
			if c.ID == commentID {
				c.IsResolved = true
				return nil
			}
		}
	}
	return fmt.Errorf("comment not found: %s", commentID)
}

func (m *memExperimentRepo) DeleteComment(_ context.Context, commentID core.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, list := range m.comments {
		for i, c := range list {
			if c.ID == commentID {
				m.comments[id] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("comment not found: %s", commentID)
}

var _ ports.ExperimentRepository = (*memExperimentRepo)(nil)

type memProjectRepo struct {
	mu       sync.Mutex
	projects map[core.ProjectID]*project.Project
	members  map[core.ID]*project.Member
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{
		projects: make(map[core.ProjectID]*project.Project),
		members:  make(map[core.ID]*project.Member),
	}
}

func (m *memProjectRepo) Create(_ context.Context, p *project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projects[p.ID] = p
	return nil
}

func (m *memProjectRepo) GetByID(_ context.Context, id core.ProjectID) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, fmt.Errorf("project not found: %s", id)
	}
	return p, nil
}

func (m *memProjectRepo) List(_ context.Context) ([]*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*project.Project{}
	for _, p := range m.projects {
		result = append(result, p)
	}
	return result, nil
}

func (m *memProjectRepo) Update(_ context.Context, p *project.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[p.ID]; !ok {
		return fmt.Errorf("project not found: %s", p.ID)
	}
	m.projects[p.ID] = p
	return nil
}

func (m *memProjectRepo) Delete(_ context.Context, id core.ProjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.projects, id)
	return nil
}

func (m *memProjectRepo) AddMember(_ context.Context, mb *project.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[mb.ID] = mb
	return nil
}

func (m *memProjectRepo) ListMembers(_ context.Context, projectID core.ProjectID) ([]*project.Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*project.Member{}
	for _, mb := range m.members {
		if mb.ProjectID == projectID {
			result = append(result, mb)
		}
	}
	return result, nil
}

func (m *memProjectRepo) DeleteMember(_ context.Context, id core.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.members, id)
	return nil
}

func (m *memProjectRepo) AddEquipment(_ context.Context, _ *project.Equipment) error { return nil }
func (m *memProjectRepo) ListEquipment(_ context.Context, _ core.ProjectID) ([]*project.Equipment, error) {
	return nil, nil
}
func (m *memProjectRepo) DeleteEquipment(_ context.Context, _ core.ID) error { return nil }

var _ ports.ProjectRepository = (*memProjectRepo)(nil)

type memAuditRepo struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

func (m *memAuditRepo) Append(_ context.Context, e *audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

func (m *memAuditRepo) ListByProject(_ context.Context, projectID core.ProjectID, limit int) ([]*audit.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*audit.Entry{}
	for _, e := range m.entries {
		if e.ProjectID == projectID {
			result = append(result, e)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *memAuditRepo) ListByEntity(_ context.Context, entityType string, entityID core.ID, limit int) ([]*audit.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*audit.Entry{}
	for _, e := range m.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			result = append(result, e)
		}
	}
	return result, nil
}

var _ ports.AuditRepository = (*memAuditRepo)(nil)

type memPlannerRepo struct {
	mu        sync.Mutex
	tasks     map[core.ID]*task.Task
	scheduled map[core.ID]*task.ScheduledExperiment
}

func newMemPlannerRepo() *memPlannerRepo {
	return &memPlannerRepo{
		tasks:     make(map[core.ID]*task.Task),
		scheduled: make(map[core.ID]*task.ScheduledExperiment),
	}
}

func (m *memPlannerRepo) CreateTask(_ context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks[t.ID] = t
	return nil
}

func (m *memPlannerRepo) GetTask(_ context.Context, id core.ID) (*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task not found: %s", id)
	}
	return t, nil
}

func (m *memPlannerRepo) ListTasks(_ context.Context, projectID core.ProjectID) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*task.Task{}
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *memPlannerRepo) UpdateTask(_ context.Context, t *task.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; !ok {
		return fmt.Errorf("task not found: %s", t.ID)
	}
	m.tasks[t.ID] = t
	return nil
}

func (m *memPlannerRepo) DeleteTask(_ context.Context, id core.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	return nil
}

func (m *memPlannerRepo) CreateScheduled(_ context.Context, s *task.ScheduledExperiment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled[s.ID] = s
	return nil
}

func (m *memPlannerRepo) ListScheduled(_ context.Context, projectID core.ProjectID) ([]*task.ScheduledExperiment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*task.ScheduledExperiment{}
	for _, s := range m.scheduled {
		if s.ProjectID == projectID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *memPlannerRepo) DeleteScheduled(_ context.Context, id core.ID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scheduled, id)
	return nil
}

var _ ports.PlannerRepository = (*memPlannerRepo)(nil)

type memProtocolRepo struct {
	mu        sync.Mutex
	protocols map[core.ProtocolID]*protocol.Protocol
}

func newMemProtocolRepo() *memProtocolRepo {
	return &memProtocolRepo{protocols: make(map[core.ProtocolID]*protocol.Protocol)}
}

func (m *memProtocolRepo) Create(_ context.Context, p *protocol.Protocol) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.protocols[p.ID] = p
	return nil
}

func (m *memProtocolRepo) GetByID(_ context.Context, id core.ProtocolID) (*protocol.Protocol, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.protocols[id]
	if !ok {
		return nil, fmt.Errorf("protocol not found: %s", id)
	}
	return p, nil
}

func (m *memProtocolRepo) ListByProject(_ context.Context, projectID core.ProjectID) ([]*protocol.Protocol, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*protocol.Protocol{}
	for _, p := range m.protocols {
		if p.ProjectID == projectID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *memProtocolRepo) Update(_ context.Context, p *protocol.Protocol) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.protocols[p.ID]; !ok {
		return fmt.Errorf("protocol not found: %s", p.ID)
	}
	m.protocols[p.ID] = p
	return nil
}

func (m *memProtocolRepo) Delete(_ context.Context, id core.ProtocolID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.protocols, id)
	return nil
}

func (m *memProtocolRepo) IncrementUsage(_ context.Context, id core.ProtocolID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.protocols[id]
	if !ok {
		return fmt.Errorf("protocol not found: %s", id)
	}
	p.TimesUsed++
	return nil
}

var _ ports.ProtocolRepository = (*memProtocolRepo)(nil)

type memLiteratureRepo struct {
	mu     sync.Mutex
	papers map[core.PaperID]*literature.Paper
}

func newMemLiteratureRepo() *memLiteratureRepo {
	return &memLiteratureRepo{papers: make(map[core.PaperID]*literature.Paper)}
}

func (m *memLiteratureRepo) Create(_ context.Context, p *literature.Paper) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.papers[p.ID] = p
	return nil
}

func (m *memLiteratureRepo) ListByProject(_ context.Context, projectID core.ProjectID) ([]*literature.Paper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*literature.Paper{}
	for _, p := range m.papers {
		if p.ProjectID == projectID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *memLiteratureRepo) DeleteByProject(_ context.Context, projectID core.ProjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.papers {
		if p.ProjectID == projectID {
			delete(m.papers, id)
		}
	}
	return nil
}

func (m *memLiteratureRepo) Delete(_ context.Context, id core.PaperID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.papers, id)
	return nil
}

func (m *memLiteratureRepo) AddAnnotation(_ context.Context, _ *literature.Annotation) error {
	return nil
}

func (m *memLiteratureRepo) ListAnnotations(_ context.Context, _ core.PaperID) ([]*literature.Annotation, error) {
	return nil, nil
}

var _ ports.LiteratureRepository = (*memLiteratureRepo)(nil)

type memInsightRepo struct {
	mu          sync.Mutex
	insights    []*insight.Insight
	suggestions []*insight.Suggestion
}

func (m *memInsightRepo) CreateInsight(_ context.Context, i *insight.Insight) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.insights = append(m.insights, i)
	return nil
}

func (m *memInsightRepo) ListInsights(_ context.Context, projectID core.ProjectID) ([]*insight.Insight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*insight.Insight{}
	for _, i := range m.insights {
		if i.ProjectID == projectID {
			result = append(result, i)
		}
	}
	return result, nil
}

func (m *memInsightRepo) DeleteInsightsByProject(_ context.Context, projectID core.ProjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.insights[:0]
	for _, i := range m.insights {
		if i.ProjectID != projectID {
			kept = append(kept, i)
		}
	}
	m.insights = kept
	return nil
}

func (m *memInsightRepo) CreateSuggestion(_ context.Context, s *insight.Suggestion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suggestions = append(m.suggestions, s)
	return nil
}

func (m *memInsightRepo) ListSuggestions(_ context.Context, projectID core.ProjectID) ([]*insight.Suggestion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []*insight.Suggestion{}
	for _, s := range m.suggestions {
		if s.ProjectID == projectID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (m *memInsightRepo) DeleteSuggestionsByProject(_ context.Context, projectID core.ProjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.suggestions[:0]
	for _, s := range m.suggestions {
		if s.ProjectID != projectID {
			kept = append(kept, s)
		}
	}
	m.suggestions = kept
	return nil
}

var _ ports.InsightRepository = (*memInsightRepo)(nil)

type stubGenerator struct {
	insights    []*insight.Insight
	suggestions []*insight.Suggestion
}

func (g *stubGenerator) GenerateInsights(_ context.Context, _, _ string, _ []ports.ExperimentSummary) ([]*insight.Insight, error) {
	return g.insights, nil
}

func (g *stubGenerator) GenerateSuggestions(_ context.Context, _, _ string, _ []ports.ExperimentSummary) ([]*insight.Suggestion, error) {
	return g.suggestions, nil
}

var _ ports.InsightGenerator = (*stubGenerator)(nil)

type stubSearcher struct {
	results []literature.SearchResult
}

func (s *stubSearcher) Search(_ context.Context, _, _ string, _ int) ([]literature.SearchResult, error) {
	return s.results, nil
}

var _ ports.PaperSearcher = (*stubSearcher)(nil)
