package ops

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
)

// Server is the operational sidecar: health probes and profiling on a
// separate port so they never share the public API surface.
type Server struct {
	router *chi.Mux
	db     *sqlx.DB
	port   string
}

func NewServer(port string, db *sqlx.DB) *Server {
	s := &Server{
		router: chi.NewRouter(),
		db:     db,
		port:   port,
	}
	s.router.Use(middleware.Recoverer)
	s.router.Get("/healthz", s.health)
	s.router.Get("/readyz", s.ready)
	s.router.Mount("/debug", middleware.Profiler())
	return s
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// ready reports 503 until the database answers a ping
func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ready"))
}

func (s *Server) Run() error {
	addr := ":" + s.port
	log.Printf("[Ops] Listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}
