// Package server exposes the HTTP API: pipeline triggers, cron entry points,
// source management and the draft post workflow.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"newsdesk/internal/crawler"
	"newsdesk/internal/pipeline"
	"newsdesk/internal/publisher"
	"newsdesk/internal/storage"
)

// Server wires the HTTP layer over the pipeline stages and the store.
type Server struct {
	echo         *echo.Echo
	store        storage.Storage
	crawler      *crawler.Crawler
	summarizer   *pipeline.Summarizer
	analyzer     *pipeline.Analyzer
	ranker       *pipeline.Ranker
	generator    *pipeline.Generator
	orchestrator *pipeline.Orchestrator
	publisher    *publisher.Publisher
	cronSecret   string
	log          *slog.Logger
}

// Deps carries everything the server needs.
type Deps struct {
	Store        storage.Storage
	Crawler      *crawler.Crawler
	Summarizer   *pipeline.Summarizer
	Analyzer     *pipeline.Analyzer
	Ranker       *pipeline.Ranker
	Generator    *pipeline.Generator
	Orchestrator *pipeline.Orchestrator
	Publisher    *publisher.Publisher
	CronSecret   string
	Log          *slog.Logger
}

// New builds the server and registers all routes.
func New(deps Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:         e,
		store:        deps.Store,
		crawler:      deps.Crawler,
		summarizer:   deps.Summarizer,
		analyzer:     deps.Analyzer,
		ranker:       deps.Ranker,
		generator:    deps.Generator,
		orchestrator: deps.Orchestrator,
		publisher:    deps.Publisher,
		cronSecret:   deps.CronSecret,
		log:          deps.Log,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.GET("/health", s.handleHealth)

	api := s.echo.Group("/api")
	api.POST("/crawl", s.handleCrawl)
	api.POST("/process/summarize", s.handleSummarize)
	api.POST("/process/analyze", s.handleAnalyze)
	api.POST("/process/ranking", s.handleRanking)
	api.POST("/process/generate", s.handleGenerate)

	cron := api.Group("/cron", s.requireCronSecret)
	cron.GET("/daily", s.handleCronDaily)
	cron.GET("/generate-top", s.handleCronGenerateTop)

	api.GET("/sources", s.handleListSources)
	api.POST("/sources", s.handleCreateSource)
	api.GET("/sources/:id", s.handleGetSource)
	api.PUT("/sources/:id", s.handleUpdateSource)
	api.DELETE("/sources/:id", s.handleDeleteSource)
	api.GET("/sources/:id/filters", s.handleListFilters)
	api.POST("/sources/:id/filters", s.handleCreateFilter)
	api.DELETE("/filters/:id", s.handleDeleteFilter)

	api.GET("/posts", s.handleListPosts)
	api.GET("/posts/:id", s.handleGetPost)
	api.POST("/posts/:id/approve", s.handleApprovePost)
	api.POST("/posts/:id/publish", s.handlePublishPost)
	api.GET("/posts/:id/insights", s.handlePostInsights)
	api.DELETE("/posts/:id", s.handleDeletePost)
}

// Start serves HTTP until the listener fails or Shutdown is called.
func (s *Server) Start(addr string) error {
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// requireCronSecret guards the cron routes with a bearer token so only the
// external scheduler can hit them.
func (s *Server) requireCronSecret(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.cronSecret)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid cron secret")
		}
		return next(c)
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
