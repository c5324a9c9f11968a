package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"labflow/domain/core"
	"labflow/domain/insight"
	"labflow/ports"

	"github.com/jmoiron/sqlx"
)

// insightRepository implements ports.InsightRepository
type insightRepository struct {
	db *sqlx.DB
}

// NewInsightRepository creates a new insight repository
func NewInsightRepository(db *sqlx.DB) ports.InsightRepository {
	return &insightRepository{db: db}
}

func (r *insightRepository) CreateInsight(ctx context.Context, i *insight.Insight) error {
	relatedJSON, _ := json.Marshal(i.RelatedExperiments)
	query := `INSERT INTO insights (id, project_id, content, insight_type, confidence,
		related_experiments, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		i.ID, i.ProjectID, i.Content, nullString(string(i.InsightType)),
		i.Confidence, relatedJSON, i.CreatedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to create insight: %w", err)
	}
	return nil
}

func (r *insightRepository) ListInsights(ctx context.Context, projectID core.ProjectID) ([]*insight.Insight, error) {
	query := `SELECT id, project_id, content, COALESCE(insight_type, '') as insight_type,
		COALESCE(confidence, 0) as confidence, related_experiments, created_at
	FROM insights WHERE project_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer rows.Close()

	var result []*insight.Insight
	for rows.Next() {
		var i insight.Insight
		var relatedJSON []byte
		var createdAt sql.NullTime
		if err := rows.Scan(&i.ID, &i.ProjectID, &i.Content, &i.InsightType,
			&i.Confidence, &relatedJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		_ = json.Unmarshal(relatedJSON, &i.RelatedExperiments)
		i.CreatedAt = core.NewTimestamp(createdAt.Time)
		result = append(result, &i)
	}
	return result, rows.Err()
}

func (r *insightRepository) DeleteInsightsByProject(ctx context.Context, projectID core.ProjectID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM insights WHERE project_id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project insights: %w", err)
	}
	return nil
}

func (r *insightRepository) CreateSuggestion(ctx context.Context, s *insight.Suggestion) error {
	query := `INSERT INTO suggestions (id, project_id, title, description,
		suggestion_type, priority, implemented, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ProjectID, s.Title, s.Description,
		nullString(s.SuggestionType), nullString(s.Priority), s.Implemented, s.CreatedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to create suggestion: %w", err)
	}
	return nil
}

func (r *insightRepository) ListSuggestions(ctx context.Context, projectID core.ProjectID) ([]*insight.Suggestion, error) {
	query := `SELECT id, project_id, title, COALESCE(description, '') as description,
		COALESCE(suggestion_type, '') as suggestion_type, COALESCE(priority, '') as priority,
		implemented, created_at
	FROM suggestions WHERE project_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list suggestions: %w", err)
	}
	defer rows.Close()

	var result []*insight.Suggestion
	for rows.Next() {
		var s insight.Suggestion
		var createdAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.Title, &s.Description,
			&s.SuggestionType, &s.Priority, &s.Implemented, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan suggestion: %w", err)
		}
		s.CreatedAt = core.NewTimestamp(createdAt.Time)
		result = append(result, &s)
	}
	return result, rows.Err()
}

func (r *insightRepository) DeleteSuggestionsByProject(ctx context.Context, projectID core.ProjectID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM suggestions WHERE project_id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project suggestions: %w", err)
	}
	return nil
}
