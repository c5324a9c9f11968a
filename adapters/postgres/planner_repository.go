package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"labflow/domain/core"
	"labflow/domain/task"
	"labflow/ports"

	"github.com/jmoiron/sqlx"
)

// plannerRepository implements ports.PlannerRepository for tasks and
// scheduled experiments
type plannerRepository struct {
	db *sqlx.DB
}

// NewPlannerRepository creates a new planner repository
func NewPlannerRepository(db *sqlx.DB) ports.PlannerRepository {
	return &plannerRepository{db: db}
}

func (r *plannerRepository) CreateTask(ctx context.Context, t *task.Task) error {
	query := `INSERT INTO tasks (id, project_id, title, description, checked, priority,
		assigned_to, due_date, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.ProjectID, t.Title, t.Description, t.Checked, t.Priority,
		t.AssignedTo, nullString(t.DueDate), t.CreatedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *plannerRepository) GetTask(ctx context.Context, id core.ID) (*task.Task, error) {
	query := `SELECT id, project_id, title, COALESCE(description, '') as description,
		checked, priority, COALESCE(assigned_to, '') as assigned_to,
		COALESCE(due_date::text, '') as due_date, created_at, completed_at
	FROM tasks WHERE id = $1`

	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

func (r *plannerRepository) ListTasks(ctx context.Context, projectID core.ProjectID) ([]*task.Task, error) {
	query := `SELECT id, project_id, title, COALESCE(description, '') as description,
		checked, priority, COALESCE(assigned_to, '') as assigned_to,
		COALESCE(due_date::text, '') as due_date, created_at, completed_at
	FROM tasks WHERE project_id = $1 ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var result []*task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		result = append(result, t)
	}
	return result, rows.Err()
}

func (r *plannerRepository) UpdateTask(ctx context.Context, t *task.Task) error {
	query := `UPDATE tasks SET title = $2, description = $3, checked = $4, priority = $5,
		assigned_to = $6, due_date = $7, completed_at = $8 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		t.ID, t.Title, t.Description, t.Checked, t.Priority,
		t.AssignedTo, nullString(t.DueDate), nullTime(t.CompletedAt))
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("task not found: %s", t.ID)
	}
	return nil
}

func (r *plannerRepository) DeleteTask(ctx context.Context, id core.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("task not found: %s", id)
	}
	return nil
}

func (r *plannerRepository) CreateScheduled(ctx context.Context, s *task.ScheduledExperiment) error {
	query := `INSERT INTO scheduled_experiments (id, project_id, title, scheduled_date,
		time, location, description, protocol_id, assigned_to, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var protocolID interface{}
	if s.ProtocolID != nil {
		protocolID = *s.ProtocolID
	}
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.ProjectID, s.Title, s.ScheduledDate, s.Time, s.Location,
		s.Description, protocolID, s.AssignedTo, s.CreatedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to create scheduled experiment: %w", err)
	}
	return nil
}

func (r *plannerRepository) ListScheduled(ctx context.Context, projectID core.ProjectID) ([]*task.ScheduledExperiment, error) {
	query := `SELECT id, project_id, title, scheduled_date::text,
		COALESCE(time, '') as time, COALESCE(location, '') as location,
		COALESCE(description, '') as description, protocol_id,
		COALESCE(assigned_to, '') as assigned_to, created_at
	FROM scheduled_experiments WHERE project_id = $1 ORDER BY scheduled_date, time`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scheduled experiments: %w", err)
	}
	defer rows.Close()

	var result []*task.ScheduledExperiment
	for rows.Next() {
		var s task.ScheduledExperiment
		var protocolID sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.ProjectID, &s.Title, &s.ScheduledDate,
			&s.Time, &s.Location, &s.Description, &protocolID, &s.AssignedTo, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled experiment: %w", err)
		}
		if protocolID.Valid {
			pid := core.ProtocolID(protocolID.String)
			s.ProtocolID = &pid
		}
		s.CreatedAt = core.NewTimestamp(createdAt.Time)
		result = append(result, &s)
	}
	return result, rows.Err()
}

func (r *plannerRepository) DeleteScheduled(ctx context.Context, id core.ID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_experiments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete scheduled experiment: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("scheduled experiment not found: %s", id)
	}
	return nil
}

func scanTask(row scanner) (*task.Task, error) {
	var t task.Task
	var createdAt, completedAt sql.NullTime
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.Checked,
		&t.Priority, &t.AssignedTo, &t.DueDate, &createdAt, &completedAt)
	if err != nil {
		return nil, err
	}
	t.CreatedAt = core.NewTimestamp(createdAt.Time)
	if completedAt.Valid {
		t.CompletedAt = core.NewTimestamp(completedAt.Time)
	}
	return &t, nil
}
