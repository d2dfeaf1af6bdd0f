package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"newsdesk/internal/model"
	"newsdesk/internal/storage"
)

func (s *Server) handleListPosts(c echo.Context) error {
	status := model.PostStatus(c.QueryParam("status"))
	switch status {
	case "", model.StatusDraft, model.StatusApproved, model.StatusPosted:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown status")
	}
	posts, err := s.store.ListDraftPosts(c.Request().Context(), status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, posts)
}

func (s *Server) handleGetPost(c echo.Context) error {
	post, err := s.loadPost(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

func (s *Server) handleApprovePost(c echo.Context) error {
	post, err := s.loadPost(c)
	if err != nil {
		return err
	}
	if post.Status != model.StatusDraft {
		return echo.NewHTTPError(http.StatusConflict, "only draft posts can be approved")
	}
	if err := s.store.UpdateDraftPostStatus(c.Request().Context(), post.ID, model.StatusApproved); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	post.Status = model.StatusApproved
	return c.JSON(http.StatusOK, post)
}

func (s *Server) handlePublishPost(c echo.Context) error {
	post, err := s.loadPost(c)
	if err != nil {
		return err
	}
	if post.Status == model.StatusPosted {
		return echo.NewHTTPError(http.StatusConflict, "post is already published")
	}
	if post.Status != model.StatusApproved {
		return echo.NewHTTPError(http.StatusConflict, "post must be approved before publishing")
	}

	ctx := c.Request().Context()
	var platformID string
	if post.ImageURL != "" {
		platformID, err = s.publisher.PublishPhoto(ctx, post.Content, post.ImageURL)
	} else {
		platformID, err = s.publisher.PublishText(ctx, post.Content)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	if err := s.store.MarkDraftPosted(ctx, post.ID, platformID, time.Now()); err != nil {
		// Published but not recorded; surface the platform ID so the
		// operator can reconcile by hand.
		s.log.Error("record published post", "id", post.ID, "platform_post_id", platformID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "published as "+platformID+" but failed to record")
	}

	post.Status = model.StatusPosted
	post.PlatformPostID = platformID
	return c.JSON(http.StatusOK, post)
}

func (s *Server) handlePostInsights(c echo.Context) error {
	post, err := s.loadPost(c)
	if err != nil {
		return err
	}
	if post.Status != model.StatusPosted || post.PlatformPostID == "" {
		return echo.NewHTTPError(http.StatusConflict, "post is not published")
	}
	insights, err := s.publisher.Insights(c.Request().Context(), post.PlatformPostID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, insights)
}

func (s *Server) handleDeletePost(c echo.Context) error {
	post, err := s.loadPost(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if post.Status == model.StatusPosted && post.PlatformPostID != "" {
		if err := s.publisher.Delete(ctx, post.PlatformPostID); err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
	}
	if err := s.store.DeleteDraftPost(ctx, post.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) loadPost(c echo.Context) (*model.DraftPost, error) {
	id, err := pathID(c)
	if err != nil {
		return nil, err
	}
	post, err := s.store.GetDraftPost(c.Request().Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "post not found")
	}
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return post, nil
}
