package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"labflow/domain/core"
	"labflow/domain/project"
	"labflow/ports"

	"github.com/jmoiron/sqlx"
)

// projectRepository implements ports.ProjectRepository
type projectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sqlx.DB) ports.ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, p *project.Project) error {
	query := `INSERT INTO projects (id, name, lab_name, description, field, stage, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.LabName, p.Description, p.Field, p.Stage, p.CreatedAt.Time(), p.UpdatedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id core.ProjectID) (*project.Project, error) {
	query := `SELECT id, name, lab_name, COALESCE(description, '') as description,
		COALESCE(field, '') as field, stage, created_at, updated_at
	FROM projects WHERE id = $1`

	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("project not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

func (r *projectRepository) List(ctx context.Context) ([]*project.Project, error) {
	query := `SELECT id, name, lab_name, COALESCE(description, '') as description,
		COALESCE(field, '') as field, stage, created_at, updated_at
	FROM projects ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var result []*project.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *projectRepository) Update(ctx context.Context, p *project.Project) error {
	query := `UPDATE projects SET name = $2, lab_name = $3, description = $4,
		field = $5, stage = $6, updated_at = $7 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.LabName, p.Description, p.Field, p.Stage, p.UpdatedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("project not found: %s", p.ID)
	}
	return nil
}

func (r *projectRepository) Delete(ctx context.Context, id core.ProjectID) error {
	// Child rows cascade via FK constraints
	result, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("project not found: %s", id)
	}
	return nil
}

func (r *projectRepository) AddMember(ctx context.Context, m *project.Member) error {
	permissionsJSON, _ := json.Marshal(m.Permissions)
	query := `INSERT INTO members (id, project_id, name, email, role, permissions, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.ProjectID, m.Name, m.Email, m.Role, permissionsJSON, m.JoinedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

func (r *projectRepository) ListMembers(ctx context.Context, projectID core.ProjectID) ([]*project.Member, error) {
	query := `SELECT id, project_id, name, COALESCE(email, '') as email,
		COALESCE(role, '') as role, permissions, joined_at
	FROM members WHERE project_id = $1 ORDER BY joined_at`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var result []*project.Member
	for rows.Next() {
		var m project.Member
		var permissionsJSON []byte
		var joinedAt sql.NullTime
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Name, &m.Email, &m.Role, &permissionsJSON, &joinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		if len(permissionsJSON) > 0 {
			_ = json.Unmarshal(permissionsJSON, &m.Permissions)
		}
		m.JoinedAt = core.NewTimestamp(joinedAt.Time)
		result = append(result, &m)
	}
	return result, rows.Err()
}

func (r *projectRepository) DeleteMember(ctx context.Context, id core.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("member not found: %s", id)
	}
	return nil
}

func (r *projectRepository) AddEquipment(ctx context.Context, e *project.Equipment) error {
	query := `INSERT INTO equipment (id, project_id, name, status, serial_number,
		calibration_date, next_calibration, location, notes)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.ProjectID, e.Name, e.Status, e.SerialNumber,
		nullString(e.CalibrationDate), nullString(e.NextCalibration), e.Location, e.Notes)
	if err != nil {
		return fmt.Errorf("failed to add equipment: %w", err)
	}
	return nil
}

func (r *projectRepository) ListEquipment(ctx context.Context, projectID core.ProjectID) ([]*project.Equipment, error) {
	query := `SELECT id, project_id, name, status, COALESCE(serial_number, '') as serial_number,
		COALESCE(calibration_date::text, '') as calibration_date,
		COALESCE(next_calibration::text, '') as next_calibration,
		COALESCE(location, '') as location, COALESCE(notes, '') as notes
	FROM equipment WHERE project_id = $1 ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	defer rows.Close()

	var result []*project.Equipment
	for rows.Next() {
		var e project.Equipment
		if err := rows.Scan(&e.ID, &e.ProjectID, &e.Name, &e.Status, &e.SerialNumber,
			&e.CalibrationDate, &e.NextCalibration, &e.Location, &e.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		result = append(result, &e)
	}
	return result, rows.Err()
}

func (r *projectRepository) DeleteEquipment(ctx context.Context, id core.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete equipment: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("equipment not found: %s", id)
	}
	return nil
}

func scanProject(row scanner) (*project.Project, error) {
	var p project.Project
	var createdAt, updatedAt sql.NullTime
	err := row.Scan(&p.ID, &p.Name, &p.LabName, &p.Description, &p.Field, &p.Stage, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	p.CreatedAt = core.NewTimestamp(createdAt.Time)
	p.UpdatedAt = core.NewTimestamp(updatedAt.Time)
	return &p, nil
}
