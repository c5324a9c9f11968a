package api

import (
	"net/http"

	"labflow/domain/core"
	"labflow/domain/task"

	"github.com/gin-gonic/gin"
)

func (s *Server) listTasks(c *gin.Context) {
	tasks, err := s.planner.ListTasks(c.Request.Context(), core.ProjectID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) createTask(c *gin.Context) {
	var req struct {
		Title       string        `json:"title" binding:"required"`
		Description string        `json:"description"`
		Priority    task.Priority `json:"priority"`
		AssignedTo  string        `json:"assigned_to"`
		DueDate     string        `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	priority := req.Priority
	if priority == "" {
		priority = task.PriorityMedium
	}
	t := &task.Task{
		ID:          core.NewID(),
		ProjectID:   core.ProjectID(c.Param("id")),
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		AssignedTo:  req.AssignedTo,
		DueDate:     req.DueDate,
		CreatedAt:   core.Now(),
	}
	if err := s.planner.CreateTask(c.Request.Context(), t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) updateTask(c *gin.Context) {
	t, err := s.planner.GetTask(c.Request.Context(), core.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}

	var req struct {
		Title       *string        `json:"title"`
		Description *string        `json:"description"`
		Priority    *task.Priority `json:"priority"`
		AssignedTo  *string        `json:"assigned_to"`
		DueDate     *string        `json:"due_date"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.AssignedTo != nil {
		t.AssignedTo = *req.AssignedTo
	}
	if req.DueDate != nil {
		t.DueDate = *req.DueDate
	}

	if err := s.planner.UpdateTask(c.Request.Context(), t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) deleteTask(c *gin.Context) {
	if err := s.planner.DeleteTask(c.Request.Context(), core.ID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) toggleTask(c *gin.Context) {
	t, err := s.planner.GetTask(c.Request.Context(), core.ID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}

	t.Toggle()
	if err := s.planner.UpdateTask(c.Request.Context(), t); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) listScheduled(c *gin.Context) {
	scheduled, err := s.planner.ListScheduled(c.Request.Context(), core.ProjectID(c.Param("id")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, scheduled)
}

func (s *Server) createScheduled(c *gin.Context) {
	var req struct {
		Title         string `json:"title" binding:"required"`
		ScheduledDate string `json:"scheduled_date" binding:"required"`
		Time          string `json:"time"`
		Location      string `json:"location"`
		Description   string `json:"description"`
		ProtocolID    string `json:"protocol_id"`
		AssignedTo    string `json:"assigned_to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry := &task.ScheduledExperiment{
		ID:            core.NewID(),
		ProjectID:     core.ProjectID(c.Param("id")),
		Title:         req.Title,
		ScheduledDate: req.ScheduledDate,
		Time:          req.Time,
		Location:      req.Location,
		Description:   req.Description,
		AssignedTo:    req.AssignedTo,
		CreatedAt:     core.Now(),
	}
	if req.ProtocolID != "" {
		pid := core.ProtocolID(req.ProtocolID)
		entry.ProtocolID = &pid
	}

	if err := s.planner.CreateScheduled(c.Request.Context(), entry); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (s *Server) deleteScheduled(c *gin.Context) {
	if err := s.planner.DeleteScheduled(c.Request.Context(), core.ID(c.Param("id"))); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
