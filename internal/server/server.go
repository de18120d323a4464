// Package server exposes the analysis pipeline, selective regeneration and
// the follow-up agent over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"ideaforge/internal/config"
	"ideaforge/internal/edit"
	"ideaforge/internal/logging"
	"ideaforge/internal/pipeline"
	"ideaforge/internal/store"
	"ideaforge/internal/stream"
	"ideaforge/internal/types"
)

// Analyzer runs one analysis, streaming events to out.
type Analyzer interface {
	Run(ctx context.Context, idea string, out stream.Emitter) (*pipeline.Result, error)
}

// Executor regenerates sections in dependency order.
type Executor interface {
	Execute(ctx context.Context, sections []types.SectionName, current *types.Report, rec *types.ResearchRecord, instruction string) (map[types.SectionName]types.SectionPayload, error)
}

// Agent answers or plans follow-up messages.
type Agent interface {
	Handle(ctx context.Context, req edit.Request) (*edit.Response, error)
}

// ReportStore is the persisted report API the server reads and updates.
type ReportStore interface {
	Get(ctx context.Context, id string) (*store.StoredReport, error)
	List(ctx context.Context, limit int) ([]store.ReportSummary, error)
	ApplyUpdates(ctx context.Context, id string, updates map[types.SectionName]types.SectionPayload) (*types.Report, error)
}

// Runtime is everything built from one configuration snapshot.
type Runtime struct {
	Analyzer Analyzer
	Executor Executor
	Agent    Agent
	Timeouts config.Timeouts
	Model    string
}

// Server is the HTTP transport. Each request uses the Runtime current when
// it arrived.
type Server struct {
	echo    *echo.Echo
	store   ReportStore
	runtime atomic.Pointer[Runtime]
}

// New creates a Server. store may be nil, which disables the report API.
func New(rt *Runtime, store ReportStore, allowedOrigins []string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{echo: e, store: store}
	s.runtime.Store(rt)

	e.Use(middleware.Recover())
	e.Use(requestLogger())
	if len(allowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		}))
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/healthz", s.health)

	api := s.echo.Group("/api")
	api.POST("/analyze", s.analyze)
	api.POST("/regenerate", s.regenerate)
	api.POST("/agent", s.agent)
	api.GET("/reports", s.listReports)
	api.GET("/reports/:id", s.getReport)
}

// Swap installs rt for requests that arrive from now on.
func (s *Server) Swap(rt *Runtime) {
	s.runtime.Store(rt)
	logging.Server("runtime reloaded (model=%s)", rt.Model)
}

func (s *Server) current() *Runtime {
	return s.runtime.Load()
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Server("listening on %s", addr)
		errCh <- s.echo.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	logging.Server("shutting down")
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-errCh
	return nil
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			logging.Server("%s %s -> %d (%v)", req.Method, req.URL.Path, c.Response().Status, time.Since(start))
			return nil
		}
	}
}
