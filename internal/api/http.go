package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bunasiem/internal/ingest"
	"bunasiem/internal/store"
)

// Server exposes the detection core over HTTP: log ingestion, filtered
// queries and buffer statistics, plus health and metrics endpoints.
type Server struct {
	echo *echo.Echo
	pipe *ingest.Pipeline
}

// NewServer builds the HTTP server around an ingestion pipeline.
func NewServer(pipe *ingest.Pipeline) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{echo: e, pipe: pipe}

	e.POST("/api/logs", s.handleIngest)
	e.GET("/api/logs", s.handleGetLogs)
	e.GET("/api/stats", s.handleGetStats)
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return s
}

// Start begins serving on the given address. It blocks until shutdown.
func (s *Server) Start(addr string) error {
	return s.echo.Start(addr)
}

// Close shuts the server down.
func (s *Server) Close() error {
	return s.echo.Close()
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleIngest(c echo.Context) error {
	var payload map[string]interface{}
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "invalid JSON payload",
		})
	}

	result, err := s.pipe.Ingest(payload)
	if err != nil {
		status := http.StatusInternalServerError
		var normErr *ingest.NormalizationError
		if errors.As(err, &normErr) {
			status = http.StatusBadRequest
		}
		return c.JSON(status, result)
	}
	return c.JSON(http.StatusCreated, result)
}

func (s *Server) handleGetLogs(c echo.Context) error {
	filter := store.Filter{
		Source:   c.QueryParam("source"),
		Severity: c.QueryParam("severity"),
	}
	if raw := c.QueryParam("has_alert"); raw != "" {
		hasAlert, err := strconv.ParseBool(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "has_alert must be a boolean"})
		}
		filter.HasAlert = &hasAlert
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be a non-negative integer"})
		}
		filter.Limit = limit
	}

	logs, total, err := s.pipe.GetLogs(filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
	})
}

func (s *Server) handleGetStats(c echo.Context) error {
	stats, err := s.pipe.GetStats()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
