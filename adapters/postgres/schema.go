package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migrate applies the schema. Statements are idempotent so running the
// migration against an existing database is safe.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration statement %d failed: %w", i+1, err)
		}
	}
	return nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lab_name TEXT NOT NULL DEFAULT 'My Lab',
		description TEXT,
		field TEXT,
		stage TEXT NOT NULL DEFAULT 'brainstorm',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		email TEXT,
		role TEXT,
		permissions JSONB NOT NULL DEFAULT '[]',
		joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS equipment (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'available',
		serial_number TEXT,
		calibration_date DATE,
		next_calibration DATE,
		location TEXT,
		notes TEXT
	)`,

	`CREATE TABLE IF NOT EXISTS protocols (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		description TEXT,
		category TEXT,
		steps JSONB NOT NULL DEFAULT '[]',
		required_equipment JSONB NOT NULL DEFAULT '[]',
		required_materials JSONB NOT NULL DEFAULT '[]',
		parameters_template JSONB NOT NULL DEFAULT '[]',
		safety_notes TEXT,
		hazards JSONB NOT NULL DEFAULT '[]',
		ppe_required JSONB NOT NULL DEFAULT '[]',
		estimated_duration_minutes INTEGER,
		difficulty_level TEXT,
		version TEXT NOT NULL DEFAULT '1.0',
		times_used INTEGER NOT NULL DEFAULT 0,
		success_rate DOUBLE PRECISION,
		source_paper_id TEXT,
		extracted_from_paper BOOLEAN NOT NULL DEFAULT FALSE,
		created_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS experiments (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		parameters JSONB NOT NULL DEFAULT '[]',
		data JSONB NOT NULL DEFAULT '[]',
		result TEXT,
		status TEXT NOT NULL DEFAULT 'in_progress',
		success BOOLEAN,
		failure_reason TEXT,
		failure_category TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		is_latest BOOLEAN NOT NULL DEFAULT TRUE,
		protocol_id TEXT REFERENCES protocols(id) ON DELETE SET NULL,
		deviations JSONB NOT NULL DEFAULT '[]',
		tags JSONB NOT NULL DEFAULT '[]',
		signed BOOLEAN NOT NULL DEFAULT FALSE,
		signed_by TEXT,
		signed_at TIMESTAMPTZ,
		signature_hash TEXT,
		witness_name TEXT,
		witness_signed_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS experiment_versions (
		id TEXT PRIMARY KEY,
		experiment_id TEXT NOT NULL REFERENCES experiments(id) ON DELETE CASCADE,
		version_number INTEGER NOT NULL,
		name TEXT NOT NULL,
		parameters JSONB NOT NULL DEFAULT '[]',
		data JSONB NOT NULL DEFAULT '[]',
		result TEXT,
		changed_by TEXT,
		change_reason TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (experiment_id, version_number)
	)`,

	`CREATE TABLE IF NOT EXISTS comments (
		id TEXT PRIMARY KEY,
		experiment_id TEXT NOT NULL REFERENCES experiments(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		author_name TEXT NOT NULL,
		author_role TEXT,
		parent_id TEXT REFERENCES comments(id) ON DELETE CASCADE,
		is_resolved BOOLEAN NOT NULL DEFAULT FALSE,
		comment_type TEXT NOT NULL DEFAULT 'general',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT,
		checked BOOLEAN NOT NULL DEFAULT FALSE,
		priority TEXT NOT NULL DEFAULT 'medium',
		assigned_to TEXT,
		due_date DATE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	)`,

	`CREATE TABLE IF NOT EXISTS scheduled_experiments (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		scheduled_date DATE NOT NULL,
		time TEXT,
		location TEXT,
		description TEXT,
		protocol_id TEXT REFERENCES protocols(id) ON DELETE SET NULL,
		assigned_to TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS papers (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		date TEXT,
		url TEXT,
		doi TEXT,
		description TEXT,
		source TEXT,
		authors JSONB NOT NULL DEFAULT '[]',
		citations INTEGER NOT NULL DEFAULT 0,
		match_percentage INTEGER NOT NULL DEFAULT 0,
		match_reasons JSONB NOT NULL DEFAULT '[]',
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		key_findings JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE UNIQUE INDEX IF NOT EXISTS papers_doi_unique ON papers (doi) WHERE doi IS NOT NULL`,

	`CREATE TABLE IF NOT EXISTS annotations (
		id TEXT PRIMARY KEY,
		paper_id TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
		user_name TEXT,
		snippet_text TEXT NOT NULL,
		linked_entity_type TEXT,
		linked_entity_id TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS insights (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		content TEXT NOT NULL,
		insight_type TEXT,
		confidence DOUBLE PRECISION,
		related_experiments JSONB NOT NULL DEFAULT '[]',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS suggestions (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title TEXT NOT NULL,
		description TEXT,
		suggestion_type TEXT,
		priority TEXT,
		implemented BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// No FK to projects: audit history outlives the records it describes
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		action TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id TEXT,
		entity_name TEXT,
		user_name TEXT NOT NULL,
		user_role TEXT,
		user_ip TEXT,
		old_value TEXT,
		new_value TEXT,
		change_summary TEXT,
		field_changed TEXT,
		reason TEXT,
		timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		checksum TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_experiments_project ON experiments (project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_experiment_versions_experiment ON experiment_versions (experiment_id)`,
	`CREATE INDEX IF NOT EXISTS idx_comments_experiment ON comments (experiment_id)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_project ON audit_logs (project_id, timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs (entity_type, entity_id)`,
}
