package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"labflow/adapters/excel"
	"labflow/domain/core"

	"github.com/gin-gonic/gin"
)

// uploadExperiment imports a CSV or Excel data file as a new experiment.
// The uploaded file is staged on disk for the reader, then removed.
func (s *Server) uploadExperiment(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	maxBytes := int64(s.cfg.Upload.MaxSizeMB) * 1024 * 1024
	if file.Size > maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file exceeds %dMB limit", s.cfg.Upload.MaxSizeMB),
		})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext != ".csv" && ext != ".xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only .csv and .xlsx files are supported"})
		return
	}

	if err := os.MkdirAll(s.cfg.Upload.Dir, 0o755); err != nil {
		respondError(c, err)
		return
	}
	staged := filepath.Join(s.cfg.Upload.Dir, core.NewID().String()+ext)
	if err := c.SaveUploadedFile(file, staged); err != nil {
		respondError(c, err)
		return
	}
	defer os.Remove(staged)

	dataset, err := excel.NewDataReader(staged).ReadData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = strings.TrimSuffix(file.Filename, ext)
	}

	e, err := s.experiments.Create(c.Request.Context(), core.ProjectID(c.Param("id")),
		name, dataset.Parameters, dataset.Rows, nil, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}
