package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"labflow/internal/config"
	"labflow/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleResult struct {
	Answer string `json:"answer"`
	Score  int    `json:"score"`
}

func testConfig() config.AIConfig {
	return config.AIConfig{
		OpenAIKey:   "test-key",
		OpenAIModel: "gpt-4o-mini",
		MaxTokens:   500,
		Temperature: 0.2,
		Timeout:     5 * time.Second,
	}
}

func openAIEnvelope(content string) string {
	envelope := map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	}
	b, _ := json.Marshal(envelope)
	return string(b)
}

func newTestClient[T any](t *testing.T, handler http.HandlerFunc) *StructuredClient[T] {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewStructuredClient[T](testConfig())
	client.BaseURL = server.URL
	return client
}

func TestGetJSONResponseParsesTypedResult(t *testing.T) {
	client := newTestClient[sampleResult](t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "gpt-4o-mini", reqBody["model"])

		w.Write([]byte(openAIEnvelope(`{"answer": "yes", "score": 42}`)))
	})

	result, err := client.GetJSONResponse(context.Background(), "Respond in JSON.", "test prompt")
	require.NoError(t, err)
	assert.Equal(t, "yes", result.Answer)
	assert.Equal(t, 42, result.Score)
}

func TestGetJSONResponseStripsMarkdownFence(t *testing.T) {
	client := newTestClient[sampleResult](t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(openAIEnvelope("```json\n{\"answer\": \"fenced\", \"score\": 7}\n```")))
	})

	result, err := client.GetJSONResponse(context.Background(), "Respond in JSON.", "test prompt")
	require.NoError(t, err)
	assert.Equal(t, "fenced", result.Answer)
}

func TestGetJSONResponseAPIError(t *testing.T) {
	client := newTestClient[sampleResult](t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited"}}`))
	})

	_, err := client.GetJSONResponse(context.Background(), "Respond in JSON.", "test prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestGetJSONResponseMissingKey(t *testing.T) {
	cfg := testConfig()
	cfg.OpenAIKey = ""
	client := NewStructuredClient[sampleResult](cfg)

	_, err := client.GetJSONResponse(context.Background(), "Respond in JSON.", "test prompt")
	assert.Error(t, err)
}

func TestCleanJSONContent(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, cleanJSONContent("```json\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, cleanJSONContent("```\n{\"a\": 1}\n```"))
	assert.Equal(t, `{"a": 1}`, cleanJSONContent(`  {"a": 1}  `))
}

func TestGenerateInsightsMapsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := `{"insights": [
			{"content": "Yield rises with temperature", "insight_type": "correlation", "confidence": 0.9, "related_experiments": ["Run 1"]},
			{"content": "", "insight_type": "pattern", "confidence": 0.5},
			{"content": "Outlier in run 3", "insight_type": "anomaly", "confidence": 1.7}
		]}`
		w.Write([]byte(openAIEnvelope(content)))
	}))
	t.Cleanup(server.Close)

	gen := NewInsightGenerator(testConfig())
	gen.insights.BaseURL = server.URL

	insights, err := gen.GenerateInsights(context.Background(), "catalyst study", "chemistry", []ports.ExperimentSummary{{Name: "Run 1"}})
	require.NoError(t, err)

	require.Len(t, insights, 2)
	assert.Equal(t, "Yield rises with temperature", insights[0].Content)
	assert.Equal(t, []string{"Run 1"}, insights[0].RelatedExperiments)
	assert.Equal(t, 1.0, insights[1].Confidence)
}
