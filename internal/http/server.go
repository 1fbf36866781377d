// Package http exposes the ledger and report operations as a JSON API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/config"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/log"
	"github.com/maiconda/sistema-financeiro-auxiliar-apae-sv/internal/services"
)

type Server struct {
	httpServer *http.Server
	logger     *log.Logger
}

func NewServer(cfg *config.Config, ledgerSvc *services.LedgerService, reportSvc *services.ReportService, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	h := &handlers{ledger: ledgerSvc, reports: reportSvc, logger: logger}

	r := chi.NewRouter()
	r.Use(traceMiddleware(logger))

	r.Route("/api", func(r chi.Router) {
		r.Post("/entries", h.createEntries)
		r.Get("/entries", h.listEntries)
		r.Patch("/entries/{id}", h.updateEntry)
		r.Delete("/entries/{id}", h.deleteEntry)

		r.Get("/summary", h.summary)

		r.Get("/export", h.export)
		r.Post("/import", h.importSnapshot)
		r.Post("/reset", h.reset)

		r.Get("/integrity", h.integrity)
		r.Get("/stats", h.stats)

		r.Get("/reports/all", h.allTimeReport)
		r.Get("/reports/year/{year}", h.annualReport)
		r.Get("/reports/month/{year}/{month}", h.monthlyReport)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks serving requests until Shutdown is called or the
// listener fails.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening",
		log.FieldOperation, log.OpStartup,
		"addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down", log.FieldOperation, log.OpShutdown)
	return s.httpServer.Shutdown(ctx)
}
