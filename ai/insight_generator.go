package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"labflow/domain/insight"
	"labflow/internal/config"
	"labflow/ports"
)

const insightSystemMessage = `You are a research assistant analyzing laboratory experiment data.
Respond with a JSON object of the form {"insights": [{"content": "...", "insight_type": "pattern|optimization|correlation|anomaly", "confidence": 0.0, "related_experiments": ["..."]}]}.
Base every insight on the data provided, cite experiment names in related_experiments, and keep each insight to one or two sentences.`

const suggestionSystemMessage = `You are a research assistant recommending next steps for a laboratory project.
Respond with a JSON object of the form {"suggestions": [{"title": "...", "description": "...", "suggestion_type": "optimization|troubleshooting|next_step", "priority": "high|medium|low"}]}.
Ground every suggestion in the experiments provided and keep descriptions actionable.`

type insightPayload struct {
	Insights []struct {
		Content            string  `json:"content"`
		InsightType        string  `json:"insight_type"`
		Confidence         float64 `json:"confidence"`
		RelatedExperiments []string `json:"related_experiments"`
	} `json:"insights"`
}

type suggestionPayload struct {
	Suggestions []struct {
		Title          string `json:"title"`
		Description    string `json:"description"`
		SuggestionType string `json:"suggestion_type"`
		Priority       string `json:"priority"`
	} `json:"suggestions"`
}

// InsightGenerator produces project insights and suggestions via OpenAI
type InsightGenerator struct {
	insights    *StructuredClient[insightPayload]
	suggestions *StructuredClient[suggestionPayload]
}

// NewInsightGenerator creates a generator backed by the configured model
func NewInsightGenerator(cfg config.AIConfig) *InsightGenerator {
	return &InsightGenerator{
		insights:    NewStructuredClient[insightPayload](cfg),
		suggestions: NewStructuredClient[suggestionPayload](cfg),
	}
}

var _ ports.InsightGenerator = (*InsightGenerator)(nil)

// GenerateInsights asks the model for patterns across the project's experiments
func (g *InsightGenerator) GenerateInsights(ctx context.Context, description, field string, experiments []ports.ExperimentSummary) ([]*insight.Insight, error) {
	prompt, err := buildProjectPrompt(description, field, experiments)
	if err != nil {
		return nil, err
	}

	payload, err := g.insights.GetJSONResponse(ctx, insightSystemMessage, prompt)
	if err != nil {
		return nil, fmt.Errorf("insight generation failed: %w", err)
	}

	result := make([]*insight.Insight, 0, len(payload.Insights))
	for _, item := range payload.Insights {
		if item.Content == "" {
			continue
		}
		result = append(result, &insight.Insight{
			Content:            item.Content,
			InsightType:        insight.Type(item.InsightType),
			Confidence:         clampConfidence(item.Confidence),
			RelatedExperiments: item.RelatedExperiments,
		})
	}
	log.Printf("[InsightGenerator] Generated %d insights", len(result))
	return result, nil
}

// GenerateSuggestions asks the model for next-step recommendations
func (g *InsightGenerator) GenerateSuggestions(ctx context.Context, description, field string, experiments []ports.ExperimentSummary) ([]*insight.Suggestion, error) {
	prompt, err := buildProjectPrompt(description, field, experiments)
	if err != nil {
		return nil, err
	}

	payload, err := g.suggestions.GetJSONResponse(ctx, suggestionSystemMessage, prompt)
	if err != nil {
		return nil, fmt.Errorf("suggestion generation failed: %w", err)
	}

	result := make([]*insight.Suggestion, 0, len(payload.Suggestions))
	for _, item := range payload.Suggestions {
		if item.Title == "" {
			continue
		}
		result = append(result, &insight.Suggestion{
			Title:          item.Title,
			Description:    item.Description,
			SuggestionType: item.SuggestionType,
			Priority:       item.Priority,
		})
	}
	log.Printf("[InsightGenerator] Generated %d suggestions", len(result))
	return result, nil
}

func buildProjectPrompt(description, field string, experiments []ports.ExperimentSummary) (string, error) {
	experimentsJSON, err := json.MarshalIndent(experiments, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal experiment summaries: %w", err)
	}
	return fmt.Sprintf("Project description: %s\nResearch field: %s\n\nExperiments:\n%s",
		description, field, experimentsJSON), nil
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
