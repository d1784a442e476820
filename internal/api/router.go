package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"safetyshare/internal/api/handlers/http/admin"
	"safetyshare/internal/api/handlers/http/public"
	"safetyshare/internal/api/handlers/http/system"
	"safetyshare/internal/config"
	"safetyshare/internal/middleware"
	"safetyshare/internal/service"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

func NewServer(cfg *config.Config, logger *slog.Logger, svc *service.Service) *Server {
	adminHandler := admin.NewHandler(logger, svc.AdminHazardService, svc.StatsService)
	publicHandler := public.NewHandler(logger, svc.DetectionService, svc.HazardService, svc.ValidationService)
	systemHandler := system.NewHandler(logger)

	r := InitRouter(cfg, adminHandler, publicHandler, systemHandler, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(cfg *config.Config, adminHandler *admin.Handler, publicHandler *public.Handler, systemHandler *system.Handler, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	r.Route("/api/v1", func(api chi.Router) {
		// ADMIN
		api.Route("/admin", func(ar chi.Router) {
			ar.Use(middleware.APIKey(cfg.APIKey, logger))
			ar.Use(middleware.Limit(2, 5, 10*time.Minute, logger))

			ar.Get("/stats", adminHandler.DetectionStats)

			ar.Route("/hazards", func(hr chi.Router) {
				hr.Get("/", adminHandler.HazardList)

				hr.Route("/{id}", func(rr chi.Router) {
					rr.Get("/", adminHandler.HazardGet)
					rr.Put("/", adminHandler.HazardUpdate)
					rr.Delete("/", adminHandler.HazardDelete)
				})
			})
		})

		// PUBLIC
		api.Route("/hazards", func(pr chi.Router) {
			pr.Use(middleware.Limit(10, 20, 5*time.Minute, logger))

			pr.Post("/detect", publicHandler.Detect)
			pr.Get("/nearby", publicHandler.Nearby)
			pr.Get("/{id}/validations", publicHandler.ValidationHistory)

			pr.Group(func(gr chi.Router) {
				gr.Use(middleware.Identity)
				gr.Post("/report", publicHandler.Report)
				gr.Post("/{id}/validate", publicHandler.Validate)
			})
		})

		// SYSTEM
		api.Get("/health", systemHandler.SystemHealth)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (s *Server) Run(ctx context.Context) error {
	port := s.cfg.Http.Port
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	srv := &http.Server{
		Addr:         port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Http.ReadTimeout,
		WriteTimeout: s.cfg.Http.WriteTimeout,
		IdleTimeout:  30 * time.Second,
	}

	errChan := make(chan error, 1)

	go func() {
		s.logger.Info("🚀 Starting HTTP server",
			slog.String("addr", srv.Addr),
			slog.Duration("read_timeout", s.cfg.Http.ReadTimeout),
			slog.Duration("write_timeout", s.cfg.Http.WriteTimeout),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("ListenAndServe error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("🛑 Shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Http.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Server shutdown failed", slog.Any("error", err))
			return err
		}
		return nil

	case err := <-errChan:
		return err
	}
}
