package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"labflow/domain/core"
	"labflow/domain/protocol"
	"labflow/ports"

	"github.com/jmoiron/sqlx"
)

// protocolRepository implements ports.ProtocolRepository
type protocolRepository struct {
	db *sqlx.DB
}

// NewProtocolRepository creates a new protocol repository
func NewProtocolRepository(db *sqlx.DB) ports.ProtocolRepository {
	return &protocolRepository{db: db}
}

const protocolColumns = `
	id, project_id, name, COALESCE(description, '') as description,
	COALESCE(category, '') as category, steps, required_equipment,
	required_materials, parameters_template, COALESCE(safety_notes, '') as safety_notes,
	hazards, ppe_required, COALESCE(estimated_duration_minutes, 0) as estimated_duration_minutes,
	COALESCE(difficulty_level, '') as difficulty_level, version, times_used,
	success_rate, source_paper_id, extracted_from_paper,
	COALESCE(created_by, '') as created_by, created_at, updated_at`

func (r *protocolRepository) Create(ctx context.Context, p *protocol.Protocol) error {
	stepsJSON, err := json.Marshal(p.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}
	equipmentJSON, _ := json.Marshal(p.RequiredEquipment)
	materialsJSON, _ := json.Marshal(p.RequiredMaterials)
	templateJSON, _ := json.Marshal(p.ParametersTemplate)
	hazardsJSON, _ := json.Marshal(p.Hazards)
	ppeJSON, _ := json.Marshal(p.PPERequired)

	query := `INSERT INTO protocols (
		id, project_id, name, description, category, steps, required_equipment,
		required_materials, parameters_template, safety_notes, hazards, ppe_required,
		estimated_duration_minutes, difficulty_level, version, times_used,
		source_paper_id, extracted_from_paper, created_by, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`

	var sourcePaperID interface{}
	if p.SourcePaperID != nil {
		sourcePaperID = *p.SourcePaperID
	}

	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.ProjectID, p.Name, p.Description, p.Category, stepsJSON, equipmentJSON,
		materialsJSON, templateJSON, p.SafetyNotes, hazardsJSON, ppeJSON,
		p.EstimatedDurationMinutes, p.DifficultyLevel, p.Version, p.TimesUsed,
		sourcePaperID, p.ExtractedFromPaper, p.CreatedBy, p.CreatedAt.Time(), p.UpdatedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to create protocol: %w", err)
	}
	return nil
}

func (r *protocolRepository) GetByID(ctx context.Context, id core.ProtocolID) (*protocol.Protocol, error) {
	query := `SELECT ` + protocolColumns + ` FROM protocols WHERE id = $1`
	p, err := scanProtocol(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("protocol not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get protocol: %w", err)
	}
	return p, nil
}

func (r *protocolRepository) ListByProject(ctx context.Context, projectID core.ProjectID) ([]*protocol.Protocol, error) {
	query := `SELECT ` + protocolColumns + ` FROM protocols WHERE project_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list protocols: %w", err)
	}
	defer rows.Close()

	var result []*protocol.Protocol
	for rows.Next() {
		p, err := scanProtocol(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan protocol: %w", err)
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *protocolRepository) Update(ctx context.Context, p *protocol.Protocol) error {
	stepsJSON, err := json.Marshal(p.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal steps: %w", err)
	}
	equipmentJSON, _ := json.Marshal(p.RequiredEquipment)
	materialsJSON, _ := json.Marshal(p.RequiredMaterials)
	templateJSON, _ := json.Marshal(p.ParametersTemplate)
	hazardsJSON, _ := json.Marshal(p.Hazards)
	ppeJSON, _ := json.Marshal(p.PPERequired)

	query := `UPDATE protocols SET
		name = $2, description = $3, category = $4, steps = $5, required_equipment = $6,
		required_materials = $7, parameters_template = $8, safety_notes = $9,
		hazards = $10, ppe_required = $11, estimated_duration_minutes = $12,
		difficulty_level = $13, version = $14, success_rate = $15, updated_at = $16
	WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Description, p.Category, stepsJSON, equipmentJSON,
		materialsJSON, templateJSON, p.SafetyNotes, hazardsJSON, ppeJSON,
		p.EstimatedDurationMinutes, p.DifficultyLevel, p.Version, p.SuccessRate, p.UpdatedAt.Time())
	if err != nil {
		return fmt.Errorf("failed to update protocol: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("protocol not found: %s", p.ID)
	}
	return nil
}

func (r *protocolRepository) Delete(ctx context.Context, id core.ProtocolID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM protocols WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete protocol: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("protocol not found: %s", id)
	}
	return nil
}

func (r *protocolRepository) IncrementUsage(ctx context.Context, id core.ProtocolID) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE protocols SET times_used = times_used + 1, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to increment protocol usage: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("protocol not found: %s", id)
	}
	return nil
}

func scanProtocol(row scanner) (*protocol.Protocol, error) {
	var p protocol.Protocol
	var stepsJSON, equipmentJSON, materialsJSON, templateJSON, hazardsJSON, ppeJSON []byte
	var successRate sql.NullFloat64
	var sourcePaperID sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(&p.ID, &p.ProjectID, &p.Name, &p.Description, &p.Category,
		&stepsJSON, &equipmentJSON, &materialsJSON, &templateJSON, &p.SafetyNotes,
		&hazardsJSON, &ppeJSON, &p.EstimatedDurationMinutes, &p.DifficultyLevel,
		&p.Version, &p.TimesUsed, &successRate, &sourcePaperID, &p.ExtractedFromPaper,
		&p.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(stepsJSON, &p.Steps); err != nil {
		return nil, fmt.Errorf("failed to unmarshal steps: %w", err)
	}
	_ = json.Unmarshal(equipmentJSON, &p.RequiredEquipment)
	_ = json.Unmarshal(materialsJSON, &p.RequiredMaterials)
	_ = json.Unmarshal(templateJSON, &p.ParametersTemplate)
	_ = json.Unmarshal(hazardsJSON, &p.Hazards)
	_ = json.Unmarshal(ppeJSON, &p.PPERequired)

	if successRate.Valid {
		p.SuccessRate = &successRate.Float64
	}
	if sourcePaperID.Valid {
		pid := core.PaperID(sourcePaperID.String)
		p.SourcePaperID = &pid
	}
	p.CreatedAt = core.NewTimestamp(createdAt.Time)
	p.UpdatedAt = core.NewTimestamp(updatedAt.Time)
	return &p, nil
}
