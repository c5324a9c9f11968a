package main

import (
	"log"

	"labflow/adapters/postgres"
	"labflow/ai"
	"labflow/app"
	"labflow/internal/api"
	"labflow/internal/config"
	"labflow/internal/literature"
	"labflow/internal/ops"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[Main] No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] Configuration error: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("[Main] Failed to connect to database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	projects := postgres.NewProjectRepository(db)
	experiments := postgres.NewExperimentRepository(db)
	protocols := postgres.NewProtocolRepository(db)
	planner := postgres.NewPlannerRepository(db)
	papers := postgres.NewLiteratureRepository(db)
	insights := postgres.NewInsightRepository(db)
	audits := postgres.NewAuditRepository(db)

	experimentSvc := app.NewExperimentService(experiments, audits)
	analysisSvc := app.NewAnalysisService(experiments, projects, audits)
	insightSvc := app.NewInsightService(projects, experiments, insights, papers, audits,
		ai.NewInsightGenerator(cfg.AI),
		literature.NewSearcher(cfg.Literature),
		cfg.Literature.MaxResults)

	server := api.NewServer(cfg, api.Deps{
		Experiments: experimentSvc,
		Analysis:    analysisSvc,
		Insights:    insightSvc,
		Projects:    projects,
		Protocols:   protocols,
		Planner:     planner,
		Papers:      papers,
		InsightRepo: insights,
		Audits:      audits,
	})

	go func() {
		if err := ops.NewServer(cfg.Server.OpsPort, db).Run(); err != nil {
			log.Printf("[Main] Ops server stopped: %v", err)
		}
	}()

	if err := server.Run(); err != nil {
		log.Fatalf("[Main] Server failed: %v", err)
	}
}
