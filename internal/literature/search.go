package literature

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"labflow/domain/literature"
	"labflow/internal/config"
	"labflow/ports"

	"golang.org/x/sync/errgroup"
)

// Searcher queries CrossRef and arXiv for candidate papers and scores
// them against the project description.
type Searcher struct {
	cfg    config.LiteratureConfig
	client *http.Client
}

// NewSearcher creates a paper searcher from literature config
func NewSearcher(cfg config.LiteratureConfig) *Searcher {
	return &Searcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

var _ ports.PaperSearcher = (*Searcher)(nil)

// Search queries both backends concurrently, scores the merged results
// against the description keywords and returns the best matches.
func (s *Searcher) Search(ctx context.Context, description, field string, limit int) ([]literature.SearchResult, error) {
	if limit <= 0 {
		limit = s.cfg.MaxResults
	}
	query := strings.TrimSpace(description + " " + field)
	if query == "" {
		return nil, fmt.Errorf("search query is empty")
	}

	var crossrefResults, arxivResults []literature.SearchResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		results, err := s.searchCrossref(gctx, query, limit)
		if err != nil {
			// One backend failing should not sink the whole search
			log.Printf("[PaperSearch] CrossRef search failed: %v", err)
			return nil
		}
		crossrefResults = results
		return nil
	})
	g.Go(func() error {
		results, err := s.searchArxiv(gctx, query, limit)
		if err != nil {
			log.Printf("[PaperSearch] arXiv search failed: %v", err)
			return nil
		}
		arxivResults = results
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := append(crossrefResults, arxivResults...)
	if len(merged) == 0 {
		return nil, fmt.Errorf("no results from any search backend")
	}

	keywords := extractKeywords(description, field)
	for i := range merged {
		merged[i].MatchPercent, merged[i].MatchReasons = scoreResult(&merged[i], keywords)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].MatchPercent > merged[j].MatchPercent
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}

	log.Printf("[PaperSearch] Returning %d results (crossref=%d, arxiv=%d)",
		len(merged), len(crossrefResults), len(arxivResults))
	return merged, nil
}

func (s *Searcher) searchCrossref(ctx context.Context, query string, limit int) ([]literature.SearchResult, error) {
	endpoint := fmt.Sprintf("%s?query=%s&rows=%d&select=title,author,DOI,URL,abstract,issued,is-referenced-by-count",
		s.cfg.CrossrefURL, url.QueryEscape(query), limit)

	body, err := s.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Message struct {
			Items []struct {
				Title    []string `json:"title"`
				DOI      string   `json:"DOI"`
				URL      string   `json:"URL"`
				Abstract string   `json:"abstract"`
				Author   []struct {
					Given  string `json:"given"`
					Family string `json:"family"`
				} `json:"author"`
				Issued struct {
					DateParts [][]int `json:"date-parts"`
				} `json:"issued"`
				ReferencedBy int `json:"is-referenced-by-count"`
			} `json:"items"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse CrossRef response: %w", err)
	}

	results := make([]literature.SearchResult, 0, len(payload.Message.Items))
	for _, item := range payload.Message.Items {
		if len(item.Title) == 0 || item.Title[0] == "" {
			continue
		}
		authors := make([]string, 0, len(item.Author))
		for _, a := range item.Author {
			name := strings.TrimSpace(a.Given + " " + a.Family)
			if name != "" {
				authors = append(authors, name)
			}
		}
		date := ""
		if len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
			date = fmt.Sprintf("%d", item.Issued.DateParts[0][0])
		}
		results = append(results, literature.SearchResult{
			Title:     item.Title[0],
			Date:      date,
			URL:       item.URL,
			DOI:       item.DOI,
			Abstract:  stripJATS(item.Abstract),
			Source:    "crossref",
			Authors:   authors,
			Citations: item.ReferencedBy,
		})
	}
	return results, nil
}

func (s *Searcher) searchArxiv(ctx context.Context, query string, limit int) ([]literature.SearchResult, error) {
	endpoint := fmt.Sprintf("%s?search_query=all:%s&max_results=%d",
		s.cfg.ArxivURL, url.QueryEscape(query), limit)

	body, err := s.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var feed struct {
		Entries []struct {
			Title     string `xml:"title"`
			Summary   string `xml:"summary"`
			Published string `xml:"published"`
			ID        string `xml:"id"`
			Authors   []struct {
				Name string `xml:"name"`
			} `xml:"author"`
			DOI string `xml:"doi"`
		} `xml:"entry"`
	}
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("failed to parse arXiv response: %w", err)
	}

	results := make([]literature.SearchResult, 0, len(feed.Entries))
	for _, entry := range feed.Entries {
		title := strings.Join(strings.Fields(entry.Title), " ")
		if title == "" {
			continue
		}
		authors := make([]string, 0, len(entry.Authors))
		for _, a := range entry.Authors {
			if a.Name != "" {
				authors = append(authors, a.Name)
			}
		}
		date := entry.Published
		if len(date) >= 4 {
			date = date[:4]
		}
		results = append(results, literature.SearchResult{
			Title:    title,
			Date:     date,
			URL:      entry.ID,
			DOI:      entry.DOI,
			Abstract: strings.TrimSpace(entry.Summary),
			Source:   "arxiv",
			Authors:  authors,
		})
	}
	return results, nil
}

func (s *Searcher) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "labflow/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search backend returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "from": true, "are": true, "was": true, "were": true,
	"using": true, "based": true, "study": true, "effect": true,
}

// extractKeywords pulls scoring terms from the description and field
func extractKeywords(description, field string) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, word := range strings.Fields(strings.ToLower(description + " " + field)) {
		word = strings.Trim(word, ".,;:()[]\"'")
		if len(word) <= 3 || stopwords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}
	return keywords
}

// scoreResult computes a keyword-overlap match percentage with reasons
func scoreResult(r *literature.SearchResult, keywords []string) (int, []string) {
	if len(keywords) == 0 {
		return 0, nil
	}
	haystack := strings.ToLower(r.Title + " " + r.Abstract)

	matched := 0
	var reasons []string
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			matched++
			if len(reasons) < 3 {
				reasons = append(reasons, fmt.Sprintf("Mentions %q", kw))
			}
		}
	}
	return matched * 100 / len(keywords), reasons
}

// stripJATS removes the XML markup CrossRef abstracts are wrapped in
func stripJATS(abstract string) string {
	if abstract == "" {
		return ""
	}
	var b strings.Builder
	inTag := false
	for _, r := range abstract {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
