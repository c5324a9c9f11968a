package api

import (
	"net/http"
	"strconv"

	"labflow/domain/core"
	"labflow/domain/project"

	"github.com/gin-gonic/gin"
)

func (s *Server) listProjects(c *gin.Context) {
	projects, err := s.projects.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, projects)
}

func (s *Server) createProject(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		LabName     string `json:"lab_name"`
		Description string `json:"description"`
		Field       string `json:"field"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p := project.New(req.Name, req.LabName)
	p.Description = req.Description
	p.Field = req.Field

	if err := s.projects.Create(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (s *Server) getProject(c *gin.Context) {
	p, err := s.projects.GetByID(c.Request.Context(), core.ProjectID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) updateProject(c *gin.Context) {
	p, err := s.projects.GetByID(c.Request.Context(), core.ProjectID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Name        *string        `json:"name"`
		LabName     *string        `json:"lab_name"`
		Description *string        `json:"description"`
		Field       *string        `json:"field"`
		Stage       *project.Stage `json:"stage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.LabName != nil {
		p.LabName = *req.LabName
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Field != nil {
		p.Field = *req.Field
	}
	if req.Stage != nil {
		p.Stage = *req.Stage
	}
	p.UpdatedAt = core.Now()

	if err := s.projects.Update(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) deleteProject(c *gin.Context) {
	if err := s.projects.Delete(c.Request.Context(), core.ProjectID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) projectSuccessRate(c *gin.Context) {
	rate, err := s.experiments.SuccessRate(c.Request.Context(), core.ProjectID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rate)
}

func (s *Server) projectAuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := s.audits.ListByProject(c.Request.Context(), core.ProjectID(c.Param("id")), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) listMembers(c *gin.Context) {
	members, err := s.projects.ListMembers(c.Request.Context(), core.ProjectID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (s *Server) addMember(c *gin.Context) {
	var req struct {
		Name        string   `json:"name" binding:"required"`
		Email       string   `json:"email"`
		Role        string   `json:"role"`
		Permissions []string `json:"permissions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m := &project.Member{
		ID:          core.NewID(),
		ProjectID:   core.ProjectID(c.Param("id")),
		Name:        req.Name,
		Email:       req.Email,
		Role:        req.Role,
		Permissions: req.Permissions,
		JoinedAt:    core.Now(),
	}
	if err := s.projects.AddMember(c.Request.Context(), m); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (s *Server) deleteMember(c *gin.Context) {
	if err := s.projects.DeleteMember(c.Request.Context(), core.ID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) listEquipment(c *gin.Context) {
	equipment, err := s.projects.ListEquipment(c.Request.Context(), core.ProjectID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, equipment)
}

func (s *Server) addEquipment(c *gin.Context) {
	var req struct {
		Name            string `json:"name" binding:"required"`
		Status          string `json:"status"`
		SerialNumber    string `json:"serial_number"`
		CalibrationDate string `json:"calibration_date"`
		NextCalibration string `json:"next_calibration"`
		Location        string `json:"location"`
		Notes           string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := project.EquipmentStatus(req.Status)
	if status == "" {
		status = project.EquipmentAvailable
	}
	e := &project.Equipment{
		ID:              core.NewID(),
		ProjectID:       core.ProjectID(c.Param("id")),
		Name:            req.Name,
		Status:          status,
		SerialNumber:    req.SerialNumber,
		CalibrationDate: req.CalibrationDate,
		NextCalibration: req.NextCalibration,
		Location:        req.Location,
		Notes:           req.Notes,
	}
	if err := s.projects.AddEquipment(c.Request.Context(), e); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (s *Server) deleteEquipment(c *gin.Context) {
	if err := s.projects.DeleteEquipment(c.Request.Context(), core.ID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
