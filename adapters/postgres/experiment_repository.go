package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"labflow/domain/core"
	"labflow/domain/experiment"
	"labflow/ports"

	"github.com/jmoiron/sqlx"
)

// experimentRepository implements ports.ExperimentRepository
type experimentRepository struct {
	db *sqlx.DB
}

// NewExperimentRepository creates a new experiment repository
func NewExperimentRepository(db *sqlx.DB) ports.ExperimentRepository {
	return &experimentRepository{db: db}
}

const experimentColumns = `
	id, project_id, name, parameters, data, COALESCE(result, '') as result,
	status, success, COALESCE(failure_reason, '') as failure_reason,
	COALESCE(failure_category, '') as failure_category,
	version, is_latest, protocol_id, deviations, tags,
	signed, COALESCE(signed_by, '') as signed_by, signed_at,
	COALESCE(signature_hash, '') as signature_hash,
	COALESCE(witness_name, '') as witness_name, witness_signed_at,
	created_at, updated_at, completed_at`

func (r *experimentRepository) Create(ctx context.Context, e *experiment.Experiment) error {
	paramsJSON, err := json.Marshal(e.Parameters)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}
	dataJSON, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal data rows: %w", err)
	}
	deviationsJSON, _ := json.Marshal(e.Deviations)
	tagsJSON, _ := json.Marshal(e.Tags)

	query := `INSERT INTO experiments (
		id, project_id, name, parameters, data, result, status, success,
		failure_reason, failure_category, version, is_latest, protocol_id,
		deviations, tags, signed, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
	)`

	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.ProjectID, e.Name, paramsJSON, dataJSON, e.Result, e.Status, e.Success,
		e.FailureReason, e.FailureCategory, e.Version, e.IsLatest, protocolIDOrNil(e.ProtocolID),
		deviationsJSON, tagsJSON, e.Signed, e.CreatedAt.Time(), e.UpdatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to create experiment: %w", err)
	}
	return nil
}

func (r *experimentRepository) GetByID(ctx context.Context, id core.ExperimentID) (*experiment.Experiment, error) {
	query := `SELECT ` + experimentColumns + ` FROM experiments WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	e, err := scanExperiment(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("experiment not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}
	return e, nil
}

func (r *experimentRepository) ListByProject(ctx context.Context, projectID core.ProjectID) ([]*experiment.Experiment, error) {
	return r.list(ctx, `SELECT `+experimentColumns+` FROM experiments WHERE project_id = $1 ORDER BY created_at`, projectID)
}

func (r *experimentRepository) ListLatestByProject(ctx context.Context, projectID core.ProjectID) ([]*experiment.Experiment, error) {
	return r.list(ctx, `SELECT `+experimentColumns+` FROM experiments WHERE project_id = $1 AND is_latest ORDER BY created_at`, projectID)
}

func (r *experimentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*experiment.Experiment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	defer rows.Close()

	var result []*experiment.Experiment
	for rows.Next() {
		e, err := scanExperiment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan experiment: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *experimentRepository) Update(ctx context.Context, e *experiment.Experiment) error {
	paramsJSON, err := json.Marshal(e.Parameters)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}
	dataJSON, err := json.Marshal(e.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal data rows: %w", err)
	}
	deviationsJSON, _ := json.Marshal(e.Deviations)
	tagsJSON, _ := json.Marshal(e.Tags)

	query := `UPDATE experiments SET
		name = $2, parameters = $3, data = $4, result = $5, status = $6,
		success = $7, failure_reason = $8, failure_category = $9, version = $10,
		is_latest = $11, protocol_id = $12, deviations = $13, tags = $14,
		signed = $15, signed_by = $16, signed_at = $17, signature_hash = $18,
		witness_name = $19, witness_signed_at = $20, updated_at = $21, completed_at = $22
	WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		e.ID, e.Name, paramsJSON, dataJSON, e.Result, e.Status,
		e.Success, e.FailureReason, e.FailureCategory, e.Version,
		e.IsLatest, protocolIDOrNil(e.ProtocolID), deviationsJSON, tagsJSON,
		e.Signed, nullString(e.SignedBy), nullTime(e.SignedAt), nullString(e.SignatureHash.String()),
		nullString(e.WitnessName), nullTime(e.WitnessSignedAt), e.UpdatedAt.Time(), nullTime(e.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to update experiment: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("experiment not found: %s", e.ID)
	}
	return nil
}

func (r *experimentRepository) Delete(ctx context.Context, id core.ExperimentID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM experiments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete experiment: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("experiment not found: %s", id)
	}
	return nil
}

func (r *experimentRepository) SaveVersion(ctx context.Context, v *experiment.Version) error {
	paramsJSON, _ := json.Marshal(v.Parameters)
	dataJSON, err := json.Marshal(v.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal version data: %w", err)
	}

	query := `INSERT INTO experiment_versions (
		id, experiment_id, version_number, name, parameters, data, result,
		changed_by, change_reason, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = r.db.ExecContext(ctx, query,
		v.ID, v.ExperimentID, v.VersionNumber, v.Name, paramsJSON, dataJSON,
		v.Result, v.ChangedBy, v.ChangeReason, v.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save experiment version: %w", err)
	}
	return nil
}

func (r *experimentRepository) ListVersions(ctx context.Context, id core.ExperimentID) ([]*experiment.Version, error) {
	query := `SELECT id, experiment_id, version_number, name, parameters, data,
		COALESCE(result, '') as result, COALESCE(changed_by, '') as changed_by,
		COALESCE(change_reason, '') as change_reason, created_at
	FROM experiment_versions WHERE experiment_id = $1 ORDER BY version_number DESC`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var result []*experiment.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan version: %w", err)
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (r *experimentRepository) GetVersion(ctx context.Context, id core.ExperimentID, versionNumber int) (*experiment.Version, error) {
	query := `SELECT id, experiment_id, version_number, name, parameters, data,
		COALESCE(result, '') as result, COALESCE(changed_by, '') as changed_by,
		COALESCE(change_reason, '') as change_reason, created_at
	FROM experiment_versions WHERE experiment_id = $1 AND version_number = $2`

	v, err := scanVersion(r.db.QueryRowContext(ctx, query, id, versionNumber))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("version %d not found for experiment %s", versionNumber, id)
		}
		return nil, fmt.Errorf("failed to get version: %w", err)
	}
	return v, nil
}

func (r *experimentRepository) AddComment(ctx context.Context, c *experiment.Comment) error {
	query := `INSERT INTO comments (
		id, experiment_id, content, author_name, author_role, parent_id,
		is_resolved, comment_type, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var parentID interface{}
	if c.ParentID != nil {
		parentID = *c.ParentID
	}
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.ExperimentID, c.Content, c.AuthorName, c.AuthorRole, parentID,
		c.IsResolved, c.CommentType, c.CreatedAt.Time(), c.UpdatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return nil
}

func (r *experimentRepository) ListComments(ctx context.Context, id core.ExperimentID) ([]*experiment.Comment, error) {
	query := `SELECT id, experiment_id, content, author_name,
		COALESCE(author_role, '') as author_role, parent_id, is_resolved,
		comment_type, created_at, updated_at
	FROM comments WHERE experiment_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var result []*experiment.Comment
	for rows.Next() {
		var c experiment.Comment
		var parentID sql.NullString
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.ExperimentID, &c.Content, &c.AuthorName,
			&c.AuthorRole, &parentID, &c.IsResolved, &c.CommentType, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		if parentID.Valid {
			pid := core.ID(parentID.String)
			c.ParentID = &pid
		}
		c.CreatedAt = core.NewTimestamp(createdAt.Time)
		c.UpdatedAt = core.NewTimestamp(updatedAt.Time)
		result = append(result, &c)
	}
	return result, rows.Err()
}

func (r *experimentRepository) ResolveComment(ctx context.Context, commentID core.ID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE comments SET is_resolved = TRUE, updated_at = NOW() WHERE id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("failed to resolve comment: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("comment not found: %s", commentID)
	}
	return nil
}

func (r *experimentRepository) DeleteComment(ctx context.Context, commentID core.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, commentID)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("comment not found: %s", commentID)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanExperiment(row scanner) (*experiment.Experiment, error) {
	var e experiment.Experiment
	var paramsJSON, dataJSON, deviationsJSON, tagsJSON []byte
	var protocolID sql.NullString
	var signedAt, witnessSignedAt, completedAt sql.NullTime
	var createdAt, updatedAt sql.NullTime
	var signatureHash string

	err := row.Scan(
		&e.ID, &e.ProjectID, &e.Name, &paramsJSON, &dataJSON, &e.Result,
		&e.Status, &e.Success, &e.FailureReason, &e.FailureCategory,
		&e.Version, &e.IsLatest, &protocolID, &deviationsJSON, &tagsJSON,
		&e.Signed, &e.SignedBy, &signedAt, &signatureHash,
		&e.WitnessName, &witnessSignedAt, &createdAt, &updatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(paramsJSON, &e.Parameters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal parameters: %w", err)
	}
	if err := json.Unmarshal(dataJSON, &e.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal data rows: %w", err)
	}
	if len(deviationsJSON) > 0 {
		_ = json.Unmarshal(deviationsJSON, &e.Deviations)
	}
	if len(tagsJSON) > 0 {
		_ = json.Unmarshal(tagsJSON, &e.Tags)
	}

	if protocolID.Valid {
		pid := core.ProtocolID(protocolID.String)
		e.ProtocolID = &pid
	}
	e.SignatureHash = core.Hash(signatureHash)
	if signedAt.Valid {
		e.SignedAt = core.NewTimestamp(signedAt.Time)
	}
	if witnessSignedAt.Valid {
		e.WitnessSignedAt = core.NewTimestamp(witnessSignedAt.Time)
	}
	if completedAt.Valid {
		e.CompletedAt = core.NewTimestamp(completedAt.Time)
	}
	e.CreatedAt = core.NewTimestamp(createdAt.Time)
	e.UpdatedAt = core.NewTimestamp(updatedAt.Time)

	return &e, nil
}

func scanVersion(row scanner) (*experiment.Version, error) {
	var v experiment.Version
	var paramsJSON, dataJSON []byte
	var createdAt sql.NullTime

	err := row.Scan(&v.ID, &v.ExperimentID, &v.VersionNumber, &v.Name,
		&paramsJSON, &dataJSON, &v.Result, &v.ChangedBy, &v.ChangeReason, &createdAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(paramsJSON, &v.Parameters); err != nil {
		return nil, fmt.Errorf("failed to unmarshal version parameters: %w", err)
	}
	if err := json.Unmarshal(dataJSON, &v.Data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal version data: %w", err)
	}
	v.CreatedAt = core.NewTimestamp(createdAt.Time)
	return &v, nil
}

func protocolIDOrNil(id *core.ProtocolID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t core.Timestamp) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Time()
}
