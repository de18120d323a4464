package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"ideaforge/internal/edit"
	"ideaforge/internal/logging"
	"ideaforge/internal/store"
	"ideaforge/internal/stream"
	"ideaforge/internal/types"
)

type analyzeRequest struct {
	Idea string `json:"idea"`
}

type regenerateRequest struct {
	Sections        []string      `json:"sections"`
	CurrentData     *types.Report `json:"currentData"`
	EditInstruction string        `json:"editInstruction"`
	ReportID        string        `json:"reportId,omitempty"`
}

type regenerateResponse struct {
	Updates map[types.SectionName]types.SectionPayload `json:"updates"`
}

type partialResponse struct {
	Updates       map[types.SectionName]types.SectionPayload `json:"updates"`
	Error         string                                     `json:"error"`
	FailedSection types.SectionName                          `json:"failedSection"`
	Remaining     []types.SectionName                        `json:"remaining"`
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "model": s.current().Model})
}

// analyze streams one pipeline run as NDJSON.
func (s *Server) analyze(c echo.Context) error {
	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	if strings.TrimSpace(req.Idea) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "idea is required")
	}

	rt := s.current()
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("X-Accel-Buffering", "no")
	res.WriteHeader(http.StatusOK)

	w := stream.NewWriter(res)
	if _, err := rt.Analyzer.Run(c.Request().Context(), req.Idea, w); err != nil {
		logging.ServerDebug("analysis ended with error: %v", err)
	}
	// The analyzer always ends the stream; this only matters if it could not.
	if !w.Closed() {
		w.Fail("The analysis ended unexpectedly. Please try again.")
	}
	return nil
}

func (s *Server) regenerate(c echo.Context) error {
	var req regenerateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}
	if req.CurrentData == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "currentData is required")
	}
	if strings.TrimSpace(req.EditInstruction) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "editInstruction is required")
	}
	if len(req.Sections) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "sections is required")
	}
	sections := make([]types.SectionName, 0, len(req.Sections))
	for _, raw := range req.Sections {
		sec, err := types.ParseSectionName(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		sections = append(sections, sec)
	}

	rt := s.current()
	ctx, cancel := withTimeout(c.Request().Context(), rt.Timeouts.Regen)
	defer cancel()

	rec := s.research(ctx, req.ReportID)
	updates, err := rt.Executor.Execute(ctx, sections, req.CurrentData, rec, req.EditInstruction)
	var partial *edit.PartialError
	switch {
	case errors.As(err, &partial):
		s.writeBack(ctx, req.ReportID, partial.Updates)
		return c.JSON(http.StatusBadGateway, partialResponse{
			Updates:       partial.Updates,
			Error:         partial.Error(),
			FailedSection: partial.Failed,
			Remaining:     partial.Remaining,
		})
	case errors.Is(err, types.ErrUnknownSection):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	s.writeBack(ctx, req.ReportID, updates)
	return c.JSON(http.StatusOK, regenerateResponse{Updates: updates})
}

// research loads the stored research record for extra regeneration context.
func (s *Server) research(ctx context.Context, reportID string) *types.ResearchRecord {
	if reportID == "" || s.store == nil {
		return nil
	}
	sr, err := s.store.Get(ctx, reportID)
	if err != nil {
		logging.Get(logging.CategoryServer).Warn("research for report %s unavailable: %v", reportID, err)
		return nil
	}
	return sr.Research
}

// writeBack merges updates into a stored report. Failure is logged only.
func (s *Server) writeBack(ctx context.Context, reportID string, updates map[types.SectionName]types.SectionPayload) {
	if reportID == "" || s.store == nil || len(updates) == 0 {
		return
	}
	if _, err := s.store.ApplyUpdates(context.WithoutCancel(ctx), reportID, updates); err != nil {
		logging.Get(logging.CategoryStore).Warn("failed to write regenerated sections to %s: %v", reportID, err)
	}
}

func (s *Server) agent(c echo.Context) error {
	var req edit.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}

	rt := s.current()
	ctx, cancel := withTimeout(c.Request().Context(), rt.Timeouts.FollowUp)
	defer cancel()

	resp, err := rt.Agent.Handle(ctx, req)
	if errors.Is(err, edit.ErrEmptyMessage) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) listReports(c echo.Context) error {
	if s.store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "report storage disabled")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	items, err := s.store.List(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, items)
}

func (s *Server) getReport(c echo.Context) error {
	if s.store == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "report storage disabled")
	}
	sr, err := s.store.Get(c.Request().Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sr)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
