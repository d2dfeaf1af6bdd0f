package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"newsdesk/internal/model"
)

const cronRunTimeout = 15 * time.Minute

func (s *Server) handleCrawl(c echo.Context) error {
	res, err := s.crawler.Run(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleSummarize(c echo.Context) error {
	res, err := s.summarizer.Run(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleAnalyze(c echo.Context) error {
	res, err := s.analyzer.Run(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleRanking(c echo.Context) error {
	res, err := s.ranker.Run(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleGenerate(c echo.Context) error {
	var variants []string
	if v := c.QueryParam("variant"); v != "" {
		variants = []string{v}
	}
	res, err := s.generator.Run(c.Request().Context(), variants...)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleCronDaily(c echo.Context) error {
	// Full runs make many throttled model calls; bound them rather than
	// trusting the caller's connection to stay open.
	ctx, cancel := context.WithTimeout(c.Request().Context(), cronRunTimeout)
	defer cancel()

	report := s.orchestrator.Run(ctx)
	status := http.StatusOK
	if !report.Success {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, report)
}

func (s *Server) handleCronGenerateTop(c echo.Context) error {
	res, err := s.generator.Run(c.Request().Context(), model.VariantDailyTop)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, res)
}
