package api

import (
	"net/http"

	"labflow/domain/core"
	"labflow/domain/literature"

	"github.com/gin-gonic/gin"
)

func (s *Server) listPapers(c *gin.Context) {
	papers, err := s.papers.ListByProject(c.Request.Context(), core.ProjectID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, papers)
}

// addPaper stores a manually tracked reference, as opposed to the
// search-discovered ones the analyze run persists
func (s *Server) addPaper(c *gin.Context) {
	var req struct {
		Title       string   `json:"title" binding:"required"`
		Date        string   `json:"date"`
		URL         string   `json:"url"`
		DOI         string   `json:"doi"`
		Description string   `json:"description"`
		Authors     []string `json:"authors"`
		Citations   int      `json:"citations"`
		KeyFindings []string `json:"key_findings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := &literature.Paper{
		ID:          core.PaperID(core.NewID()),
		ProjectID:   core.ProjectID(c.Param("id")),
		Title:       req.Title,
		Date:        req.Date,
		URL:         req.URL,
		DOI:         req.DOI,
		Description: req.Description,
		Source:      "manual",
		Authors:     req.Authors,
		Citations:   req.Citations,
		Verified:    true,
		KeyFindings: req.KeyFindings,
		CreatedAt:   core.Now(),
	}
	if err := s.papers.Create(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) deletePaper(c *gin.Context) {
	if err := s.papers.Delete(c.Request.Context(), core.PaperID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) listAnnotations(c *gin.Context) {
	annotations, err := s.papers.ListAnnotations(c.Request.Context(), core.PaperID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, annotations)
}

func (s *Server) addAnnotation(c *gin.Context) {
	var req struct {
		UserName         string `json:"user_name"`
		SnippetText      string `json:"snippet_text" binding:"required"`
		LinkedEntityType string `json:"linked_entity_type"`
		LinkedEntityID   string `json:"linked_entity_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a := &literature.Annotation{
		ID:               core.NewID(),
		PaperID:          core.PaperID(c.Param("id")),
		UserName:         req.UserName,
		SnippetText:      req.SnippetText,
		LinkedEntityType: req.LinkedEntityType,
		LinkedEntityID:   core.ID(req.LinkedEntityID),
		CreatedAt:        core.Now(),
	}
	if err := s.papers.AddAnnotation(c.Request.Context(), a); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (s *Server) analyzeProject(c *gin.Context) {
	result, err := s.insights.Analyze(c.Request.Context(), core.ProjectID(c.Param("id")), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) listInsights(c *gin.Context) {
	insights, err := s.insightRepo.ListInsights(c.Request.Context(), core.ProjectID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, insights)
}

func (s *Server) listSuggestions(c *gin.Context) {
	suggestions, err := s.insightRepo.ListSuggestions(c.Request.Context(), core.ProjectID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestions)
}
