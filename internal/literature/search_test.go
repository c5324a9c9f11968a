package literature

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"labflow/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const crossrefResponse = `{
	"message": {
		"items": [
			{
				"title": ["Catalyst efficiency under thermal stress"],
				"DOI": "10.1000/cat.1",
				"URL": "https://doi.org/10.1000/cat.1",
				"abstract": "<jats:p>We study catalyst degradation at high temperature.</jats:p>",
				"author": [{"given": "Ada", "family": "Byron"}],
				"issued": {"date-parts": [[2023, 5]]},
				"is-referenced-by-count": 12
			},
			{
				"title": ["Unrelated soil chemistry"],
				"DOI": "10.1000/soil.1",
				"URL": "https://doi.org/10.1000/soil.1",
				"issued": {"date-parts": [[2019]]}
			}
		]
	}
}`

const arxivResponse = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
	<entry>
		<id>http://arxiv.org/abs/2301.00001</id>
		<title>Thermal catalyst modelling</title>
		<summary>A model of catalyst behaviour.</summary>
		<published>2023-01-02T00:00:00Z</published>
		<author><name>Grace Hopper</name></author>
	</entry>
</feed>`

func testSearcher(t *testing.T, crossrefBody, arxivBody string) *Searcher {
	t.Helper()
	crossref := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(crossrefBody))
	}))
	t.Cleanup(crossref.Close)
	arxiv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(arxivBody))
	}))
	t.Cleanup(arxiv.Close)

	return NewSearcher(config.LiteratureConfig{
		CrossrefURL: crossref.URL,
		ArxivURL:    arxiv.URL,
		MaxResults:  10,
		Timeout:     5 * time.Second,
	})
}

func TestSearchMergesAndScoresBackends(t *testing.T) {
	s := testSearcher(t, crossrefResponse, arxivResponse)

	results, err := s.Search(context.Background(), "catalyst thermal degradation", "chemistry", 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// Best keyword overlap sorts first
	assert.Equal(t, "Catalyst efficiency under thermal stress", results[0].Title)
	assert.Equal(t, "crossref", results[0].Source)
	assert.Greater(t, results[0].MatchPercent, results[2].MatchPercent)
	assert.NotEmpty(t, results[0].MatchReasons)

	// JATS markup stripped from abstract
	assert.Equal(t, "We study catalyst degradation at high temperature.", results[0].Abstract)
	assert.Equal(t, "2023", results[0].Date)
	assert.Equal(t, []string{"Ada Byron"}, results[0].Authors)
	assert.Equal(t, 12, results[0].Citations)
}

func TestSearchArxivEntryFields(t *testing.T) {
	s := testSearcher(t, `{"message": {"items": []}}`, arxivResponse)

	results, err := s.Search(context.Background(), "catalyst modelling", "chemistry", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)

	assert.Equal(t, "arxiv", results[0].Source)
	assert.Equal(t, "Thermal catalyst modelling", results[0].Title)
	assert.Equal(t, "http://arxiv.org/abs/2301.00001", results[0].URL)
	assert.Equal(t, "2023", results[0].Date)
	assert.Equal(t, []string{"Grace Hopper"}, results[0].Authors)
}

func TestSearchSurvivesOneBackendFailure(t *testing.T) {
	crossref := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(crossref.Close)
	arxiv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(arxivResponse))
	}))
	t.Cleanup(arxiv.Close)

	s := NewSearcher(config.LiteratureConfig{
		CrossrefURL: crossref.URL,
		ArxivURL:    arxiv.URL,
		MaxResults:  10,
		Timeout:     5 * time.Second,
	})

	results, err := s.Search(context.Background(), "catalyst modelling", "chemistry", 10)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchAllBackendsEmpty(t *testing.T) {
	s := testSearcher(t, `{"message": {"items": []}}`, `<?xml version="1.0"?><feed xmlns="http://www.w3.org/2005/Atom"></feed>`)

	_, err := s.Search(context.Background(), "catalyst", "chemistry", 10)
	assert.Error(t, err)
}

func TestSearchEmptyQuery(t *testing.T) {
	s := NewSearcher(config.LiteratureConfig{MaxResults: 5, Timeout: time.Second})
	_, err := s.Search(context.Background(), "  ", "", 5)
	assert.Error(t, err)
}

func TestSearchRespectsLimit(t *testing.T) {
	s := testSearcher(t, crossrefResponse, arxivResponse)

	results, err := s.Search(context.Background(), "catalyst thermal", "chemistry", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestExtractKeywords(t *testing.T) {
	kws := extractKeywords("The catalyst degradation study, with heating.", "chemistry")
	assert.Contains(t, kws, "catalyst")
	assert.Contains(t, kws, "degradation")
	assert.Contains(t, kws, "chemistry")
	assert.NotContains(t, kws, "the")
	assert.NotContains(t, kws, "with")
	assert.NotContains(t, kws, "study")
}
