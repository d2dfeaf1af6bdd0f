package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"newsdesk/internal/filter"
	"newsdesk/internal/model"
	"newsdesk/internal/storage"
)

type sourceRequest struct {
	Kind     model.SourceKind `json:"kind"`
	Name     string           `json:"name"`
	Endpoint string           `json:"endpoint"`
	IsActive *bool            `json:"is_active"`
}

func (r *sourceRequest) validate() error {
	if r.Kind != model.SourceRSS && r.Kind != model.SourceSocialPage {
		return errors.New("kind must be rss or social_page")
	}
	if r.Name == "" {
		return errors.New("name is required")
	}
	if r.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	return nil
}

func (s *Server) handleListSources(c echo.Context) error {
	sources, err := s.store.ListSources(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sources)
}

func (s *Server) handleCreateSource(c echo.Context) error {
	var req sourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	src := &model.Source{
		Kind:     req.Kind,
		Name:     req.Name,
		Endpoint: req.Endpoint,
		IsActive: true,
	}
	if req.IsActive != nil {
		src.IsActive = *req.IsActive
	}
	if err := s.store.CreateSource(c.Request().Context(), src); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, src)
}

func (s *Server) handleGetSource(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	src, err := s.store.GetSource(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "source not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, src)
}

func (s *Server) handleUpdateSource(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	src, err := s.store.GetSource(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "source not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req sourceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	src.Kind = req.Kind
	src.Name = req.Name
	src.Endpoint = req.Endpoint
	if req.IsActive != nil {
		src.IsActive = *req.IsActive
	}
	if err := s.store.UpdateSource(c.Request().Context(), src); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, src)
}

func (s *Server) handleDeleteSource(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.store.DeleteSource(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "source not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type filterRequest struct {
	Kind  model.FilterKind  `json:"kind"`
	Scope model.FilterScope `json:"scope"`
	Value string            `json:"value"`
}

func (r *filterRequest) validate() error {
	switch r.Kind {
	case model.FilterInclude, model.FilterExclude:
	case model.FilterIncludeRe, model.FilterExcludeRe:
		if err := filter.ValidateRegex(r.Value); err != nil {
			return err
		}
	default:
		return errors.New("unknown filter kind")
	}
	switch r.Scope {
	case model.ScopeTitle, model.ScopeContent, model.ScopeAll:
	default:
		return errors.New("unknown filter scope")
	}
	if r.Value == "" {
		return errors.New("value is required")
	}
	return nil
}

func (s *Server) handleListFilters(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	filters, err := s.store.ListFilters(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, filters)
}

func (s *Server) handleCreateFilter(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if _, err := s.store.GetSource(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "source not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req filterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := req.validate(); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	f := &model.Filter{SourceID: id, Kind: req.Kind, Scope: req.Scope, Value: req.Value}
	if err := s.store.CreateFilter(c.Request().Context(), f); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, f)
}

func (s *Server) handleDeleteFilter(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := s.store.DeleteFilter(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "filter not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
