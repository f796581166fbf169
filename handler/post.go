package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"blog/api"
	"blog/schema"
)

func (h *Handler) GetPosts(c echo.Context) error {
	posts, err := h.Store.List(c.Request().Context())
	if err != nil {
		return fmt.Errorf("listing posts: %w", err)
	}
	return c.JSON(http.StatusOK, api.Data(posts))
}

func (h *Handler) GetByID(c echo.Context) error {
	id := c.Param("id")
	p, err := h.Store.Get(c.Request().Context(), id)
	if err != nil {
		return fmt.Errorf("getting post %s: %w", id, err)
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, api.Failure(api.MsgNotFound))
	}
	return c.JSON(http.StatusOK, api.Data(p))
}

func (h *Handler) NewPost(c echo.Context) error {
	in, err := schema.DecodeCreate(c.Request().Body)
	if err != nil {
		return h.rejectPayload(c, err)
	}

	p, err := h.Store.Create(c.Request().Context(), in)
	if err != nil {
		return fmt.Errorf("creating post: %w", err)
	}
	h.Logger.Info("post created", "post_id", p.ID)
	return c.JSON(http.StatusCreated, api.DataWithMessage(p, api.MsgCreated))
}

func (h *Handler) EditPost(c echo.Context) error {
	id := c.Param("id")
	in, err := schema.DecodeUpdate(c.Request().Body)
	if err != nil {
		return h.rejectPayload(c, err)
	}

	p, err := h.Store.Update(c.Request().Context(), id, in)
	if err != nil {
		return fmt.Errorf("updating post %s: %w", id, err)
	}
	if p == nil {
		return c.JSON(http.StatusNotFound, api.Failure(api.MsgNotFound))
	}
	h.Logger.Info("post updated", "post_id", id)
	return c.JSON(http.StatusOK, api.DataWithMessage(p, api.MsgUpdated))
}

func (h *Handler) DeletePost(c echo.Context) error {
	id := c.Param("id")
	deleted, err := h.Store.Delete(c.Request().Context(), id)
	if err != nil {
		return fmt.Errorf("deleting post %s: %w", id, err)
	}
	if !deleted {
		return c.JSON(http.StatusNotFound, api.Failure(api.MsgNotFound))
	}
	h.Logger.Info("post deleted", "post_id", id)
	return c.JSON(http.StatusOK, api.Message(api.MsgDeleted))
}

// rejectPayload answers 400 for a body that failed decoding or validation.
// Anything else is unexpected and goes to the error handler.
func (h *Handler) rejectPayload(c echo.Context, err error) error {
	var verr *schema.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, api.ValidationFailure(verr))
	case errors.Is(err, schema.ErrMalformedBody):
		return c.JSON(http.StatusBadRequest, api.Failure(api.MsgMalformedBody))
	default:
		return err
	}
}

type indexData struct {
	Endpoints map[string]string `json:"endpoints"`
}

func (h *Handler) Index(c echo.Context) error {
	return c.JSON(http.StatusOK, api.DataWithMessage(
		indexData{Endpoints: map[string]string{"posts": "/api/posts"}},
		"Blog API is running!",
	))
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, api.Message("ok"))
}
