package api

import (
	"net/http"
	"strconv"
	"strings"

	"labflow/app"
	"labflow/domain/core"
	"labflow/domain/experiment"
	"labflow/internal/chart"

	"github.com/gin-gonic/gin"
)

func (s *Server) listExperiments(c *gin.Context) {
	experiments, err := s.experiments.List(c.Request.Context(), core.ProjectID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, experiments)
}

func (s *Server) createExperiment(c *gin.Context) {
	var req struct {
		Name       string                 `json:"name" binding:"required"`
		Parameters []experiment.Parameter `json:"parameters"`
		Data       []experiment.DataRow   `json:"data"`
		ProtocolID string                 `json:"protocol_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var protocolID *core.ProtocolID
	if req.ProtocolID != "" {
		pid := core.ProtocolID(req.ProtocolID)
		protocolID = &pid
	}

	e, err := s.experiments.Create(c.Request.Context(), core.ProjectID(c.Param("id")),
		req.Name, req.Parameters, req.Data, protocolID, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (s *Server) getExperiment(c *gin.Context) {
	e, err := s.experiments.Get(c.Request.Context(), core.ExperimentID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) updateExperiment(c *gin.Context) {
	var req struct {
		Name       *string                `json:"name"`
		Parameters []experiment.Parameter `json:"parameters"`
		Data       []experiment.DataRow   `json:"data"`
		Result     *string                `json:"result"`
		Deviations []experiment.Deviation `json:"protocol_deviations"`
		Tags       []string               `json:"tags"`
		Reason     string                 `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := s.experiments.Update(c.Request.Context(), core.ExperimentID(c.Param("id")), app.ExperimentUpdate{
		Name:       req.Name,
		Parameters: req.Parameters,
		Data:       req.Data,
		Result:     req.Result,
		Deviations: req.Deviations,
		Tags:       req.Tags,
		Reason:     req.Reason,
	}, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) deleteExperiment(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req)

	if err := s.experiments.Delete(c.Request.Context(), core.ExperimentID(c.Param("id")), req.Reason, actor(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) updateExperimentStatus(c *gin.Context) {
	var req struct {
		Status          experiment.Status          `json:"status" binding:"required"`
		Success         *bool                      `json:"success"`
		FailureReason   string                     `json:"failure_reason"`
		FailureCategory experiment.FailureCategory `json:"failure_category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := s.experiments.UpdateStatus(c.Request.Context(), core.ExperimentID(c.Param("id")), app.StatusUpdate{
		Status:          req.Status,
		Success:         req.Success,
		FailureReason:   req.FailureReason,
		FailureCategory: req.FailureCategory,
	}, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) listExperimentVersions(c *gin.Context) {
	versions, err := s.experiments.Versions(c.Request.Context(), core.ExperimentID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, versions)
}

func (s *Server) restoreExperimentVersion(c *gin.Context) {
	versionNumber, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid version number"})
		return
	}

	e, err := s.experiments.Restore(c.Request.Context(), core.ExperimentID(c.Param("id")), versionNumber, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) signExperiment(c *gin.Context) {
	var req struct {
		SignedBy string `json:"signed_by" binding:"required"`
		Witness  string `json:"witness"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	e, err := s.experiments.Sign(c.Request.Context(), core.ExperimentID(c.Param("id")), req.SignedBy, req.Witness, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) verifySignature(c *gin.Context) {
	valid, err := s.experiments.VerifySignature(c.Request.Context(), core.ExperimentID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

func (s *Server) experimentAuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := s.audits.ListByEntity(c.Request.Context(), "experiment", core.ID(c.Param("id")), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) analyzeExperiment(c *gin.Context) {
	result, err := s.analysis.Analyze(c.Request.Context(), core.ExperimentID(c.Param("id")), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// chartParams reads the chart type and parameter selection query values
func chartParams(c *gin.Context) (chart.Type, []string) {
	chartType := chart.Type(c.DefaultQuery("type", string(chart.TypeLine)))
	var names []string
	if raw := c.Query("params"); raw != "" {
		for _, name := range strings.Split(raw, ",") {
			if name = strings.TrimSpace(name); name != "" {
				names = append(names, name)
			}
		}
	}
	return chartType, names
}

func (s *Server) chartSVG(c *gin.Context) {
	chartType, names := chartParams(c)
	svg, err := s.analysis.RenderChartSVG(c.Request.Context(), core.ExperimentID(c.Param("id")), chartType, names)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", []byte(svg))
}

func (s *Server) chartPNG(c *gin.Context) {
	chartType, names := chartParams(c)
	png, err := s.analysis.RenderChartPNG(c.Request.Context(), core.ExperimentID(c.Param("id")), chartType, names, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) experimentReport(c *gin.Context) {
	html, err := s.analysis.BuildReportHTML(c.Request.Context(), core.ExperimentID(c.Param("id")), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", html)
}

func (s *Server) listComments(c *gin.Context) {
	comments, err := s.experiments.Comments(c.Request.Context(), core.ExperimentID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

func (s *Server) addComment(c *gin.Context) {
	var req struct {
		Content     string `json:"content" binding:"required"`
		AuthorName  string `json:"author_name" binding:"required"`
		AuthorRole  string `json:"author_role"`
		ParentID    string `json:"parent_id"`
		CommentType string `json:"comment_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := &experiment.Comment{
		ExperimentID: core.ExperimentID(c.Param("id")),
		Content:      req.Content,
		AuthorName:   req.AuthorName,
		AuthorRole:   req.AuthorRole,
		CommentType:  req.CommentType,
	}
	if req.ParentID != "" {
		pid := core.ID(req.ParentID)
		comment.ParentID = &pid
	}

	if err := s.experiments.AddComment(c.Request.Context(), comment); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (s *Server) resolveComment(c *gin.Context) {
	if err := s.experiments.ResolveComment(c.Request.Context(), core.ID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resolved": true})
}

func (s *Server) deleteComment(c *gin.Context) {
	if err := s.experiments.DeleteComment(c.Request.Context(), core.ID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
