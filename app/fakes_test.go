package app

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
	"labflow/ports"
)

// In-memory repository fakes shared by the service tests.

type fakeExperimentRepo struct {
	mu          sync.Mutex
	experiments map[core.ExperimentID]*experiment.Experiment
	versions    map[core.ExperimentID][]*experiment.Version
	comments    map[core.ExperimentID][]*experiment.Comment
}

func newFakeExperimentRepo() *fakeExperimentRepo {
	return &fakeExperimentRepo{
		experiments: make(map[core.ExperimentID]*experiment.Experiment),
		versions:    make(map[core.ExperimentID][]*experiment.Version),
		comments:    make(map[core.ExperimentID][]*experiment.Comment),
	}
}

func (f *fakeExperimentRepo) Create(_ context.Context, e *experiment.Experiment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *e
	f.experiments[e.ID] = &copied
	return nil
}

func (f *fakeExperimentRepo) GetByID(_ context.Context, id core.ExperimentID) (*experiment.Experiment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.experiments[id]
	if !ok {
		return nil, fmt.Errorf("experiment not found: %s", id)
	}
	copied := *e
	return &copied, nil
}

func (f *fakeExperimentRepo) ListByProject(_ context.Context, projectID core.ProjectID) ([]*experiment.Experiment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*experiment.Experiment
	for _, e := range f.experiments {
		if e.ProjectID == projectID {
			copied := *e
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *fakeExperimentRepo) ListLatestByProject(ctx context.Context, projectID core.ProjectID) ([]*experiment.Experiment, error) {
	return f.ListByProject(ctx, projectID)
}

func (f *fakeExperimentRepo) Update(_ context.Context, e *experiment.Experiment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.experiments[e.ID]; !ok {
		return fmt.Errorf("experiment not found: %s", e.ID)
	}
	copied := *e
	f.experiments[e.ID] = &copied
	return nil
}

func (f *fakeExperimentRepo) Delete(_ context.Context, id core.ExperimentID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.experiments[id]; !ok {
		return fmt.Errorf("experiment not found: %s", id)
	}
	delete(f.experiments, id)
	return nil
}

func (f *fakeExperimentRepo) SaveVersion(_ context.Context, v *experiment.Version) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.versions[v.ExperimentID] = append(f.versions[v.ExperimentID], v)
	return nil
}

func (f *fakeExperimentRepo) ListVersions(_ context.Context, id core.ExperimentID) ([]*experiment.Version, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.versions[id], nil
}

func (f *fakeExperimentRepo) GetVersion(_ context.Context, id core.ExperimentID, versionNumber int) (*experiment.Version, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.versions[id] {
		if v.VersionNumber == versionNumber {
			return v, nil
		}
	}
	return nil, fmt.Errorf("version %d not found for experiment %s", versionNumber, id)
}

func (f *fakeExperimentRepo) AddComment(_ context.Context, c *experiment.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments[c.ExperimentID] = append(f.comments[c.ExperimentID], c)
	return nil
}

func (f *fakeExperimentRepo) ListComments(_ context.Context, id core.ExperimentID) ([]*experiment.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.comments[id], nil
}

func (f *fakeExperimentRepo) ResolveComment(_ context.Context, commentID core.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, list := range f.comments {
		for _, c := range list {
			if c.ID == commentID {
				c.IsResolved = true
				return nil
			}
		}
	}
	return fmt.Errorf("comment not found: %s", commentID)
}

func (f *fakeExperimentRepo) DeleteComment(_ context.Context, commentID core.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, list := range f.comments {
		for i, c := range list {
			if c.ID == commentID {
				f.comments[id] = append(list[:i], list[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("comment not found: %s", commentID)
}

var _ ports.ExperimentRepository = (*fakeExperimentRepo)(nil)

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*audit.Entry
}

func (f *fakeAuditRepo) Append(_ context.Context, e *audit.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAuditRepo) ListByProject(_ context.Context, projectID core.ProjectID, limit int) ([]*audit.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*audit.Entry
	for _, e := range f.entries {
		if e.ProjectID == projectID {
			result = append(result, e)
		}
	}
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (f *fakeAuditRepo) ListByEntity(_ context.Context, entityType string, entityID core.ID, limit int) ([]*audit.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*audit.Entry
	for _, e := range f.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			result = append(result, e)
		}
	}
	return result, nil
}

var _ ports.AuditRepository = (*fakeAuditRepo)(nil)

type fakeProjectRepo struct {
	mu       sync.Mutex
	projects map[core.ProjectID]*project.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[core.ProjectID]*project.Project)}
}

func (f *fakeProjectRepo) Create(_ context.Context, p *project.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects[p.ID] = p
	return nil
}

func (f *fakeProjectRepo) GetByID(_ context.Context, id core.ProjectID) (*project.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.projects[id]
	if !ok {
		return nil, fmt.Errorf("project not found: %s", id)
	}
	return p, nil
}

func (f *fakeProjectRepo) List(_ context.Context) ([]*project.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*project.Project
	for _, p := range f.projects {
		result = append(result, p)
	}
	return result, nil
}

func (f *fakeProjectRepo) Update(_ context.Context, p *project.Project) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.projects[p.ID]; !ok {
		return fmt.Errorf("project not found: %s", p.ID)
	}
	f.projects[p.ID] = p
	return nil
}

func (f *fakeProjectRepo) Delete(_ context.Context, id core.ProjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.projects, id)
	return nil
}

func (f *fakeProjectRepo) AddMember(_ context.Context, _ *project.Member) error { return nil }
func (f *fakeProjectRepo) ListMembers(_ context.Context, _ core.ProjectID) ([]*project.Member, error) {
	return nil, nil
}
func (f *fakeProjectRepo) DeleteMember(_ context.Context, _ core.ID) error { return nil }
func (f *fakeProjectRepo) AddEquipment(_ context.Context, _ *project.Equipment) error {
	return nil
}
func (f *fakeProjectRepo) ListEquipment(_ context.Context, _ core.ProjectID) ([]*project.Equipment, error) {
	return nil, nil
}
func (f *fakeProjectRepo) DeleteEquipment(_ context.Context, _ core.ID) error { return nil }

var _ ports.ProjectRepository = (*fakeProjectRepo)(nil)

type fakeInsightRepo struct {
	mu          sync.Mutex
	insights    []*insight.Insight
	suggestions []*insight.Suggestion
}

func (f *fakeInsightRepo) CreateInsight(_ context.Context, i *insight.Insight) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.insights = append(f.insights, i)
	return nil
}

func (f *fakeInsightRepo) ListInsights(_ context.Context, projectID core.ProjectID) ([]*insight.Insight, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*insight.Insight
	for _, i := range f.insights {
		if i.ProjectID == projectID {
			result = append(result, i)
		}
	}
	return result, nil
}

func (f *fakeInsightRepo) DeleteInsightsByProject(_ context.Context, projectID core.ProjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.insights[:0]
	for _, i := range f.insights {
		if i.ProjectID != projectID {
			kept = append(kept, i)
		}
	}
	f.insights = kept
	return nil
}

func (f *fakeInsightRepo) CreateSuggestion(_ context.Context, s *insight.Suggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestions = append(f.suggestions, s)
	return nil
}

func (f *fakeInsightRepo) ListSuggestions(_ context.Context, projectID core.ProjectID) ([]*insight.Suggestion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*insight.Suggestion
	for _, s := range f.suggestions {
		if s.ProjectID == projectID {
			result = append(result, s)
		}
	}
	return result, nil
}

func (f *fakeInsightRepo) DeleteSuggestionsByProject(_ context.Context, projectID core.ProjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.suggestions[:0]
	for _, s := range f.suggestions {
		if s.ProjectID != projectID {
			kept = append(kept, s)
		}
	}
	f.suggestions = kept
	return nil
}

var _ ports.InsightRepository = (*fakeInsightRepo)(nil)

type fakeLiteratureRepo struct {
	mu     sync.Mutex
	papers []*literature.Paper
}

func (f *fakeLiteratureRepo) Create(_ context.Context, p *literature.Paper) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.papers = append(f.papers, p)
	return nil
}

func (f *fakeLiteratureRepo) ListByProject(_ context.Context, projectID core.ProjectID) ([]*literature.Paper, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []*literature.Paper
	for _, p := range f.papers {
		if p.ProjectID == projectID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeLiteratureRepo) DeleteByProject(_ context.Context, projectID core.ProjectID) error {
	return nil
}

func (f *fakeLiteratureRepo) Delete(_ context.Context, _ core.PaperID) error { return nil }

func (f *fakeLiteratureRepo) AddAnnotation(_ context.Context, _ *literature.Annotation) error {
	return nil
}

func (f *fakeLiteratureRepo) ListAnnotations(_ context.Context, _ core.PaperID) ([]*literature.Annotation, error) {
	return nil, nil
}

var _ ports.LiteratureRepository = (*fakeLiteratureRepo)(nil)

type fakeGenerator struct {
	insights    []*insight.Insight
	suggestions []*insight.Suggestion
	err         error
}

func (f *fakeGenerator) GenerateInsights(_ context.Context, _, _ string, _ []ports.ExperimentSummary) ([]*insight.Insight, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.insights, nil
}

func (f *fakeGenerator) GenerateSuggestions(_ context.Context, _, _ string, _ []ports.ExperimentSummary) ([]*insight.Suggestion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.suggestions, nil
}

type fakeSearcher struct {
	results []literature.SearchResult
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, _, _ string, _ int) ([]literature.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}
