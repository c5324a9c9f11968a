package api

import (
	"log"

	"labflow/app"
	"labflow/internal/config"
	"labflow/ports"

	"github.com/gin-gonic/gin"
)

// Server is the REST API for the lab research manager
type Server struct {
	router *gin.Engine
	cfg    *config.Config

	experiments *app.ExperimentService
	analysis    *app.AnalysisService
	insights    *app.InsightService

	projects    ports.ProjectRepository
	protocols   ports.ProtocolRepository
	planner     ports.PlannerRepository
	papers      ports.LiteratureRepository
	insightRepo ports.InsightRepository
	audits      ports.AuditRepository
}

// Deps bundles everything the API server needs
type Deps struct {
	Experiments *app.ExperimentService
	Analysis    *app.AnalysisService
	Insights    *app.InsightService

	Projects    ports.ProjectRepository
	Protocols   ports.ProtocolRepository
	Planner     ports.PlannerRepository
	Papers      ports.LiteratureRepository
	InsightRepo ports.InsightRepository
	Audits      ports.AuditRepository
}

// NewServer creates the API server and registers all routes
func NewServer(cfg *config.Config, deps Deps) *Server {
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:      gin.Default(),
		cfg:         cfg,
		experiments: deps.Experiments,
		analysis:    deps.Analysis,
		insights:    deps.Insights,
		projects:    deps.Projects,
		protocols:   deps.Protocols,
		planner:     deps.Planner,
		papers:      deps.Papers,
		insightRepo: deps.InsightRepo,
		audits:      deps.Audits,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")

	api.GET("/projects", s.listProjects)
	api.POST("/projects", s.createProject)
	api.GET("/projects/:id", s.getProject)
	api.PUT("/projects/:id", s.updateProject)
	api.DELETE("/projects/:id", s.deleteProject)
	api.GET("/projects/:id/success-rate", s.projectSuccessRate)
	api.GET("/projects/:id/audit-log", s.projectAuditLog)

	api.GET("/projects/:id/members", s.listMembers)
	api.POST("/projects/:id/members", s.addMember)
	api.DELETE("/members/:id", s.deleteMember)

	api.GET("/projects/:id/equipment", s.listEquipment)
	api.POST("/projects/:id/equipment", s.addEquipment)
	api.DELETE("/equipment/:id", s.deleteEquipment)

	api.GET("/projects/:id/experiments", s.listExperiments)
	api.POST("/projects/:id/experiments", s.createExperiment)
	api.POST("/projects/:id/upload", s.uploadExperiment)
	api.GET("/experiments/:id", s.getExperiment)
	api.PUT("/experiments/:id", s.updateExperiment)
	api.DELETE("/experiments/:id", s.deleteExperiment)
	api.POST("/experiments/:id/status", s.updateExperimentStatus)
	api.GET("/experiments/:id/versions", s.listExperimentVersions)
	api.POST("/experiments/:id/restore/:version", s.restoreExperimentVersion)
	api.POST("/experiments/:id/sign", s.signExperiment)
	api.GET("/experiments/:id/verify-signature", s.verifySignature)
	api.GET("/experiments/:id/audit-log", s.experimentAuditLog)

	api.GET("/experiments/:id/analysis", s.analyzeExperiment)
	api.GET("/experiments/:id/chart.svg", s.chartSVG)
	api.GET("/experiments/:id/chart.png", s.chartPNG)
	api.GET("/experiments/:id/report", s.experimentReport)

	api.GET("/experiments/:id/comments", s.listComments)
	api.POST("/experiments/:id/comments", s.addComment)
	api.POST("/comments/:id/resolve", s.resolveComment)
	api.DELETE("/comments/:id", s.deleteComment)

	api.GET("/projects/:id/protocols", s.listProtocols)
	api.POST("/projects/:id/protocols", s.createProtocol)
	api.GET("/protocols/:id", s.getProtocol)
	api.PUT("/protocols/:id", s.updateProtocol)
	api.DELETE("/protocols/:id", s.deleteProtocol)
	api.POST("/protocols/:id/use", s.useProtocol)

	api.GET("/projects/:id/tasks", s.listTasks)
	api.POST("/projects/:id/tasks", s.createTask)
	api.PUT("/tasks/:id", s.updateTask)
	api.DELETE("/tasks/:id", s.deleteTask)
	api.POST("/tasks/:id/toggle", s.toggleTask)

	api.GET("/projects/:id/schedule", s.listScheduled)
	api.POST("/projects/:id/schedule", s.createScheduled)
	api.DELETE("/schedule/:id", s.deleteScheduled)

	api.GET("/projects/:id/papers", s.listPapers)
	api.POST("/projects/:id/papers", s.addPaper)
	api.DELETE("/papers/:id", s.deletePaper)
	api.GET("/papers/:id/annotations", s.listAnnotations)
	api.POST("/papers/:id/annotations", s.addAnnotation)

	api.POST("/projects/:id/analyze", s.analyzeProject)
	api.GET("/projects/:id/insights", s.listInsights)
	api.GET("/projects/:id/suggestions", s.listSuggestions)
}

// Run starts the HTTP server on the configured port
func (s *Server) Run() error {
	addr := ":" + s.cfg.Server.Port
	log.Printf("[API] Listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the gin engine, for tests and embedding
func (s *Server) Router() *gin.Engine {
	return s.router
}

// actor extracts the self-reported acting user from request headers
func actor(c *gin.Context) app.Actor {
	return app.Actor{
		Name: c.GetHeader("X-User-Name"),
		Role: c.GetHeader("X-User-Role"),
		IP:   c.ClientIP(),
	}
}
