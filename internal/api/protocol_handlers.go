package api

import (
	"fmt"
	"net/http"

	"labflow/domain/core"
	"labflow/domain/experiment"
	"labflow/domain/protocol"

	"github.com/gin-gonic/gin"
)

type protocolRequest struct {
	Name                     string                 `json:"name" binding:"required"`
	Description              string                 `json:"description"`
	Category                 string                 `json:"category"`
	Steps                    []protocol.Step        `json:"steps"`
	RequiredEquipment        []string               `json:"required_equipment"`
	RequiredMaterials        []protocol.Material    `json:"required_materials"`
	ParametersTemplate       []experiment.Parameter `json:"parameters_template"`
	SafetyNotes              string                 `json:"safety_notes"`
	Hazards                  []string               `json:"hazards"`
	PPERequired              []string               `json:"ppe_required"`
	EstimatedDurationMinutes int                    `json:"estimated_duration_minutes"`
	DifficultyLevel          string                 `json:"difficulty_level"`
	SourcePaperID            string                 `json:"source_paper_id"`
	ExtractedFromPaper       bool                   `json:"extracted_from_paper"`
	CreatedBy                string                 `json:"created_by"`
}

func (s *Server) listProtocols(c *gin.Context) {
	protocols, err := s.protocols.ListByProject(c.Request.Context(), core.ProjectID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, protocols)
}

func (s *Server) createProtocol(c *gin.Context) {
	var req protocolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := protocol.New(core.ProjectID(c.Param("id")), req.Name)
	applyProtocolRequest(p, &req)

	if err := s.protocols.Create(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getProtocol(c *gin.Context) {
	p, err := s.protocols.GetByID(c.Request.Context(), core.ProtocolID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updateProtocol(c *gin.Context) {
	p, err := s.protocols.GetByID(c.Request.Context(), core.ProtocolID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}

	var req protocolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p.Name = req.Name
	applyProtocolRequest(p, &req)
	p.Version = bumpVersion(p.Version)
	p.UpdatedAt = core.Now()

	if err := s.protocols.Update(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProtocol(c *gin.Context) {
	if err := s.protocols.Delete(c.Request.Context(), core.ProtocolID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// useProtocol bumps the protocol's usage counter when an experiment
// starts from it
func (s *Server) useProtocol(c *gin.Context) {
	if err := s.protocols.IncrementUsage(c.Request.Context(), core.ProtocolID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"used": true})
}

// bumpVersion increments the minor part of a "major.minor" version
func bumpVersion(v string) string {
	var major, minor int
	if _, err := fmt.Sscanf(v, "%d.%d", &major, &minor); err != nil {
		return "1.1"
	}
	return fmt.Sprintf("%d.%d", major, minor+1)
}

func applyProtocolRequest(p *protocol.Protocol, req *protocolRequest) {
	p.Description = req.Description
	p.Category = req.Category
	p.Steps = req.Steps
	p.RequiredEquipment = req.RequiredEquipment
	p.RequiredMaterials = req.RequiredMaterials
	p.ParametersTemplate = req.ParametersTemplate
	p.SafetyNotes = req.SafetyNotes
	p.Hazards = req.Hazards
	p.PPERequired = req.PPERequired
	p.EstimatedDurationMinutes = req.EstimatedDurationMinutes
	p.DifficultyLevel = req.DifficultyLevel
	p.ExtractedFromPaper = req.ExtractedFromPaper
	p.CreatedBy = req.CreatedBy
	if req.SourcePaperID != "" {
		pid := core.PaperID(req.SourcePaperID)
		p.SourcePaperID = &pid
	}
}
