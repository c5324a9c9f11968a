package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	ProjectID    ID
	ExperimentID ID
	ProtocolID   ID
	PaperID      ID
)

func (id ProjectID) String() string    { return ID(id).String() }
func (id ExperimentID) String() string { return ID(id).String() }
func (id ProtocolID) String() string   { return ID(id).String() }
func (id PaperID) String() string      { return ID(id).String() }

// ParseID validates a non-empty identifier
func ParseID(s string) (ID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("ID cannot be empty")
	}
	return ID(s), nil
}

// ParseProjectID parses a string into ProjectID
func ParseProjectID(s string) (ProjectID, error) {
	id, err := ParseID(s)
	if err != nil {
		return "", fmt.Errorf("project %w", err)
	}
	return ProjectID(id), nil
}

// ParseExperimentID parses a string into ExperimentID
func ParseExperimentID(s string) (ExperimentID, error) {
	id, err := ParseID(s)
	if err != nil {
		return "", fmt.Errorf("experiment %w", err)
	}
	return ExperimentID(id), nil
}
