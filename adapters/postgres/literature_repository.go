package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"labflow/domain/core"
	"labflow/domain/literature"
	"labflow/ports"

	"github.com/jmoiron/sqlx"
)

// literatureRepository implements ports.LiteratureRepository
type literatureRepository struct {
	db *sqlx.DB
}

// NewLiteratureRepository creates a new literature repository
func NewLiteratureRepository(db *sqlx.DB) ports.LiteratureRepository {
	return &literatureRepository{db: db}
}

func (r *literatureRepository) Create(ctx context.Context, p *literature.Paper) error {
	authorsJSON, _ := json.Marshal(p.Authors)
	reasonsJSON, _ := json.Marshal(p.MatchReasons)
	findingsJSON, _ := json.Marshal(p.KeyFindings)

	query := `INSERT INTO papers (
		id, project_id, title, date, url, doi, description, source, authors,
		citations, match_percentage, match_reasons, verified, key_findings, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	ON CONFLICT (doi) WHERE doi IS NOT NULL DO NOTHING`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.ProjectID, p.Title, p.Date, p.URL, nullString(p.DOI), p.Description,
		p.Source, authorsJSON, p.Citations, p.MatchPercentage, reasonsJSON,
		p.Verified, findingsJSON, p.CreatedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to create paper: %w", err)
	}
	return nil
}

func (r *literatureRepository) ListByProject(ctx context.Context, projectID core.ProjectID) ([]*literature.Paper, error) {
	query := `SELECT id, project_id, title, COALESCE(date, '') as date,
		COALESCE(url, '') as url, COALESCE(doi, '') as doi,
		COALESCE(description, '') as description, COALESCE(source, '') as source,
		authors, COALESCE(citations, 0) as citations, match_percentage,
		match_reasons, verified, key_findings, created_at
	FROM papers WHERE project_id = $1 ORDER BY match_percentage DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}
	defer rows.Close()

	var result []*literature.Paper
	for rows.Next() {
		var p literature.Paper
		var authorsJSON, reasonsJSON, findingsJSON []byte
		var createdAt sql.NullTime
		if err := rows.Scan(&p.ID, &p.ProjectID, &p.Title, &p.Date, &p.URL, &p.DOI,
			&p.Description, &p.Source, &authorsJSON, &p.Citations, &p.MatchPercentage,
			&reasonsJSON, &p.Verified, &findingsJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan paper: %w", err)
		}
		_ = json.Unmarshal(authorsJSON, &p.Authors)
		_ = json.Unmarshal(reasonsJSON, &p.MatchReasons)
		_ = json.Unmarshal(findingsJSON, &p.KeyFindings)
		p.CreatedAt = core.NewTimestamp(createdAt.Time)
		result = append(result, &p)
	}
	return result, rows.Err()
}

func (r *literatureRepository) DeleteByProject(ctx context.Context, projectID core.ProjectID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM papers WHERE project_id = $1`, projectID)
	if err != nil {
		return fmt.Errorf("failed to delete project papers: %w", err)
	}
	return nil
}

func (r *literatureRepository) Delete(ctx context.Context, id core.PaperID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM papers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("paper not found: %s", id)
	}
	return nil
}

func (r *literatureRepository) AddAnnotation(ctx context.Context, a *literature.Annotation) error {
	query := `INSERT INTO annotations (id, paper_id, user_name, snippet_text,
		linked_entity_type, linked_entity_id, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.PaperID, a.UserName, a.SnippetText,
		nullString(a.LinkedEntityType), nullString(a.LinkedEntityID.String()), a.CreatedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to add annotation: %w", err)
	}
	return nil
}

func (r *literatureRepository) ListAnnotations(ctx context.Context, paperID core.PaperID) ([]*literature.Annotation, error) {
	query := `SELECT id, paper_id, COALESCE(user_name, '') as user_name, snippet_text,
		COALESCE(linked_entity_type, '') as linked_entity_type,
		COALESCE(linked_entity_id, '') as linked_entity_id, created_at
	FROM annotations WHERE paper_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to list annotations: %w", err)
	}
	defer rows.Close()

	var result []*literature.Annotation
	for rows.Next() {
		var a literature.Annotation
		var createdAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.PaperID, &a.UserName, &a.SnippetText,
			&a.LinkedEntityType, &a.LinkedEntityID, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		a.CreatedAt = core.NewTimestamp(createdAt.Time)
		result = append(result, &a)
	}
	return result, rows.Err()
}
