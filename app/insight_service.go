package app

import (
	"context"
	"log"

	"labflow/domain/audit"
	"labflow/domain/core"
	"labflow/domain/insight"
	"labflow/domain/literature"
	"labflow/internal/errors"
	"labflow/ports"

	"golang.org/x/sync/errgroup"
)

// InsightService runs the project-level AI analysis: insights,
// suggestions and a literature search, fanned out concurrently.
type InsightService struct {
	projects    ports.ProjectRepository
	experiments ports.ExperimentRepository
	insights    ports.InsightRepository
	papers      ports.LiteratureRepository
	audits      ports.AuditRepository
	generator   ports.InsightGenerator
	searcher    ports.PaperSearcher
	paperLimit  int
}

// NewInsightService creates the AI analysis orchestrator
func NewInsightService(
	projects ports.ProjectRepository,
	experiments ports.ExperimentRepository,
	insights ports.InsightRepository,
	papers ports.LiteratureRepository,
	audits ports.AuditRepository,
	generator ports.InsightGenerator,
	searcher ports.PaperSearcher,
	paperLimit int,
) *InsightService {
	return &InsightService{
		projects:    projects,
		experiments: experiments,
		insights:    insights,
		papers:      papers,
		audits:      audits,
		generator:   generator,
		searcher:    searcher,
		paperLimit:  paperLimit,
	}
}

// AnalyzeResult is what one analyze run produced
type AnalyzeResult struct {
	Insights    []*insight.Insight    `json:"insights"`
	Suggestions []*insight.Suggestion `json:"suggestions"`
	Papers      []*literature.Paper   `json:"papers"`
}

// Analyze generates fresh insights, suggestions and literature matches for
// a project. Results replace the previous run wholesale: stored insights
// are a cache of the latest run, not an accumulating history.
func (s *InsightService) Analyze(ctx context.Context, projectID core.ProjectID, actor Actor) (*AnalyzeResult, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	experiments, err := s.experiments.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if len(experiments) == 0 {
		return nil, errors.InvalidInput("project has no experiments to analyze")
	}

	summaries := make([]ports.ExperimentSummary, 0, len(experiments))
	for _, e := range experiments {
		summaries = append(summaries, ports.ExperimentSummary{
			Name:          e.Name,
			Parameters:    e.Parameters,
			Data:          e.Data,
			Result:        e.Result,
			Status:        e.Status,
			Success:       e.Success,
			FailureReason: e.FailureReason,
		})
	}

	var (
		newInsights    []*insight.Insight
		newSuggestions []*insight.Suggestion
		searchResults  []literature.SearchResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		newInsights, err = s.generator.GenerateInsights(gctx, p.Description, p.Field, summaries)
		return err
	})
	g.Go(func() error {
		var err error
		newSuggestions, err = s.generator.GenerateSuggestions(gctx, p.Description, p.Field, summaries)
		return err
	})
	g.Go(func() error {
		results, err := s.searcher.Search(gctx, p.Description, p.Field, s.paperLimit)
		if err != nil {
			// Literature search is best-effort; insights are the payload
			log.Printf("[InsightService] Paper search failed: %v", err)
			return nil
		}
		searchResults = results
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "AI analysis failed")
	}

	result := &AnalyzeResult{
		Insights:    s.stampInsights(projectID, newInsights),
		Suggestions: s.stampSuggestions(projectID, newSuggestions),
		Papers:      s.buildPapers(projectID, searchResults),
	}

	if err := s.replaceStored(ctx, projectID, result); err != nil {
		return nil, err
	}

	entry := audit.NewEntry(projectID, audit.ActionAnalyze, "project", core.ID(projectID), p.Name, actor.orAnonymous().Name)
	entry.UserRole = actor.Role
	entry.UserIP = actor.IP
	if err := s.audits.Append(ctx, entry); err != nil {
		log.Printf("[InsightService] Failed to append audit entry: %v", err)
	}

	return result, nil
}

func (s *InsightService) stampInsights(projectID core.ProjectID, items []*insight.Insight) []*insight.Insight {
	now := core.Now()
	for _, i := range items {
		i.ID = core.NewID()
		i.ProjectID = projectID
		i.CreatedAt = now
	}
	return items
}

func (s *InsightService) stampSuggestions(projectID core.ProjectID, items []*insight.Suggestion) []*insight.Suggestion {
	now := core.Now()
	for _, sg := range items {
		sg.ID = core.NewID()
		sg.ProjectID = projectID
		sg.CreatedAt = now
	}
	return items
}

func (s *InsightService) buildPapers(projectID core.ProjectID, results []literature.SearchResult) []*literature.Paper {
	now := core.Now()
	papers := make([]*literature.Paper, 0, len(results))
	for _, r := range results {
		papers = append(papers, &literature.Paper{
			ID:              core.PaperID(core.NewID()),
			ProjectID:       projectID,
			Title:           r.Title,
			Date:            r.Date,
			URL:             r.URL,
			DOI:             r.DOI,
			Description:     r.Abstract,
			Source:          r.Source,
			Authors:         r.Authors,
			Citations:       r.Citations,
			MatchPercentage: r.MatchPercent,
			MatchReasons:    r.MatchReasons,
			CreatedAt:       now,
		})
	}
	return papers
}

// replaceStored swaps the previous run's results for the new ones
func (s *InsightService) replaceStored(ctx context.Context, projectID core.ProjectID, result *AnalyzeResult) error {
	if err := s.insights.DeleteInsightsByProject(ctx, projectID); err != nil {
		return errors.Wrap(err, "failed to clear previous insights")
	}
	for _, i := range result.Insights {
		if err := s.insights.CreateInsight(ctx, i); err != nil {
			return errors.Wrap(err, "failed to store insight")
		}
	}

	if err := s.insights.DeleteSuggestionsByProject(ctx, projectID); err != nil {
		return errors.Wrap(err, "failed to clear previous suggestions")
	}
	for _, sg := range result.Suggestions {
		if err := s.insights.CreateSuggestion(ctx, sg); err != nil {
			return errors.Wrap(err, "failed to store suggestion")
		}
	}

	// Papers accumulate; the DOI unique index dedupes re-discovered ones
	for _, p := range result.Papers {
		if err := s.papers.Create(ctx, p); err != nil {
			return errors.Wrap(err, "failed to store paper")
		}
	}
	return nil
}
