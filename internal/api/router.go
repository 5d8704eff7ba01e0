package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/divyanshu-1/RoadX/internal/api/handlers/http/incidents"
	"github.com/divyanshu-1/RoadX/internal/api/handlers/http/system"
	"github.com/divyanshu-1/RoadX/internal/config"
	"github.com/divyanshu-1/RoadX/internal/middleware"
	"github.com/divyanshu-1/RoadX/internal/service"
)

type Server struct {
	logger *slog.Logger
	router *chi.Mux
	cfg    config.Config
}

func NewServer(cfg *config.Config, logger *slog.Logger, svc *service.Service, tokens middleware.TokenResolver) *Server {
	incidentHandler := incidents.NewHandler(logger, svc.IncidentService)
	systemHandler := system.NewHandler(logger)

	r := InitRouter(cfg, incidentHandler, systemHandler, tokens, logger)

	return &Server{
		logger: logger,
		router: r,
		cfg:    *cfg,
	}
}

func InitRouter(cfg *config.Config, incidentHandler *incidents.Handler, systemHandler *system.Handler, tokens middleware.TokenResolver, logger *slog.Logger) *chi.Mux {
	r := chi.NewMux()

	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Logger)

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/incidents", func(ir chi.Router) {
			ir.Use(middleware.Authenticate(tokens, logger))

			ir.With(middleware.Limit(10, 20, 5*time.Minute, logger)).
				Post("/", incidentHandler.Report)
			ir.Get("/", incidentHandler.List)

			ir.Route("/{id}", func(rr chi.Router) {
				rr.Get("/", incidentHandler.Get)
				rr.Post("/acknowledge", incidentHandler.Acknowledge)
				rr.Patch("/status", incidentHandler.UpdateStatus)
			})
		})

		api.Get("/health", systemHandler.SystemHealth)
	})

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
		s.logger.Info("Starting HTTP server",
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
		s.logger.Info("Shutting down HTTP server", slog.String("reason", ctx.Err().Error()))

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
