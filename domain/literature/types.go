package literature

import (
	"labflow/domain/core"
)

// Paper is a tracked literature reference with relevance scoring
type Paper struct {
	ID          core.PaperID   `json:"id"`
	ProjectID   core.ProjectID `json:"project_id"`
	Title       string         `json:"title"`
	Date        string         `json:"date,omitempty"`
	URL         string         `json:"url,omitempty"`
	DOI         string         `json:"doi,omitempty"`
	Description string         `json:"description,omitempty"`
	Source      string         `json:"source,omitempty"` // crossref, arxiv, manual
	Authors     []string       `json:"authors,omitempty"`
	Citations   int            `json:"citations"`

	MatchPercentage int      `json:"match_percentage"`
	MatchReasons    []string `json:"match_reasons,omitempty"`
	Verified        bool     `json:"verified"`

	KeyFindings []string `json:"key_findings,omitempty"`

	CreatedAt core.Timestamp `json:"created_at"`
}

// Annotation links a highlighted paper snippet to an internal entity
type Annotation struct {
	ID               core.ID        `json:"id"`
	PaperID          core.PaperID   `json:"paper_id"`
	UserName         string         `json:"user_name,omitempty"`
	SnippetText      string         `json:"snippet_text"`
	LinkedEntityType string         `json:"linked_entity_type,omitempty"` // experiment, protocol, project
	LinkedEntityID   core.ID        `json:"linked_entity_id,omitempty"`
	CreatedAt        core.Timestamp `json:"created_at"`
}

// SearchResult is a candidate paper returned by an external search backend
// before it is persisted as a Paper.
type SearchResult struct {
	Title        string   `json:"title"`
	Date         string   `json:"date,omitempty"`
	URL          string   `json:"url,omitempty"`
	DOI          string   `json:"doi,omitempty"`
	Abstract     string   `json:"abstract,omitempty"`
	Source       string   `json:"source"`
	Authors      []string `json:"authors,omitempty"`
	Citations    int      `json:"citations"`
	MatchPercent int      `json:"match_percentage"`
	MatchReasons []string `json:"match_reasons,omitempty"`
}
