package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"labflow/domain/audit"
	"labflow/domain/core"
	"labflow/ports"

	"github.com/jmoiron/sqlx"
)

// auditRepository implements ports.AuditRepository. Append-only by
// construction: no update or delete statements exist here.
type auditRepository struct {
	db *sqlx.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sqlx.DB) ports.AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Append(ctx context.Context, e *audit.Entry) error {
	query := `INSERT INTO audit_logs (
		id, project_id, action, entity_type, entity_id, entity_name,
		user_name, user_role, user_ip, old_value, new_value, change_summary,
		field_changed, reason, timestamp, checksum
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.ProjectID, e.Action, e.EntityType, nullString(e.EntityID.String()),
		e.EntityName, e.UserName, e.UserRole, e.UserIP,
		nullString(e.OldValue), nullString(e.NewValue), e.ChangeSummary,
		e.FieldChanged, e.Reason, e.Timestamp.Time(), e.Checksum.String())
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

const auditColumns = `
	id, project_id, action, entity_type, COALESCE(entity_id, '') as entity_id,
	COALESCE(entity_name, '') as entity_name, user_name,
	COALESCE(user_role, '') as user_role, COALESCE(user_ip, '') as user_ip,
	COALESCE(old_value, '') as old_value, COALESCE(new_value, '') as new_value,
	COALESCE(change_summary, '') as change_summary,
	COALESCE(field_changed, '') as field_changed, COALESCE(reason, '') as reason,
	timestamp, checksum`

func (r *auditRepository) ListByProject(ctx context.Context, projectID core.ProjectID, limit int) ([]*audit.Entry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_logs
		WHERE project_id = $1 ORDER BY timestamp DESC LIMIT $2`
	return r.list(ctx, query, projectID, limit)
}

func (r *auditRepository) ListByEntity(ctx context.Context, entityType string, entityID core.ID, limit int) ([]*audit.Entry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_logs
		WHERE entity_type = $1 AND entity_id = $2 ORDER BY timestamp DESC LIMIT $3`
	return r.list(ctx, query, entityType, entityID, limit)
}

func (r *auditRepository) list(ctx context.Context, query string, args ...interface{}) ([]*audit.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var result []*audit.Entry
	for rows.Next() {
		var e audit.Entry
		var checksum string
		var ts sql.NullTime
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Action, &e.EntityType, &e.EntityID,
			&e.EntityName, &e.UserName, &e.UserRole, &e.UserIP,
			&e.OldValue, &e.NewValue, &e.ChangeSummary, &e.FieldChanged, &e.Reason,
			&ts, &checksum); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		e.Timestamp = core.NewTimestamp(ts.Time)
		e.Checksum = core.Hash(checksum)
		result = append(result, &e)
	}
	return result, rows.Err()
}
