package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"blog/config"
	"blog/handler"
)

// NewServer wires the UI routes around h.
func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(handler.RequestLogger(h.Logger))
	e.Use(middleware.BodyLimit("1M"))
	e.Renderer = NewTemplateRegistry()

	e.GET("/", h.Index)
	e.POST("/", h.Action)
	return e
}

// Start serves the UI on cfg.Web.Listen until it fails.
func Start(e *echo.Echo, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("web listening", "addr", cfg.Web.Listen, "api", cfg.Web.APIURL)
	if err := e.Start(cfg.Web.Listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
