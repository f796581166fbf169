package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/crypto/acme/autocert"

	"blog/api"
	"blog/config"
)

// NewServer wires the API routes and middleware around h.
func NewServer(cfg *config.Config, h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(RequestLogger(h.Logger))
	e.Use(middleware.BodyLimit("1M"))
	e.Use(middleware.CORSWithConfig(corsConfig(cfg.CORSOrigins())))

	e.GET("/", h.Index)
	e.GET("/healthz", h.Health)
	for _, prefix := range []string{"/posts", "/api/posts"} {
		g := e.Group(prefix)
		g.GET("", h.GetPosts)
		g.GET("/:id", h.GetByID)
		g.POST("", h.NewPost)
		g.PUT("/:id", h.EditPost)
		g.DELETE("/:id", h.DeletePost)
	}

	e.HTTPErrorHandler = ErrorHandler(h.Logger)
	return e
}

func corsConfig(origins []string) middleware.CORSConfig {
	c := middleware.CORSConfig{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}
	if len(origins) == 0 {
		// echo treats an empty list as "*"; an empty allow-list here means nobody.
		c.AllowOriginFunc = func(string) (bool, error) { return false, nil }
	}
	return c
}

// DefaultDevListen is used in dev mode when no listen address is configured.
const DefaultDevListen = ":3000"

// listenAddr picks the plain HTTP address for cfg. It returns "" when the
// server should fall back to ACME certificates on :443.
func listenAddr(cfg *config.Config) string {
	if cfg.Server.Listen == "" && cfg.Env == config.DevEnv {
		return DefaultDevListen
	}
	return cfg.Server.Listen
}

// Start serves e until it fails. In pro mode without a listen address it
// obtains certificates through ACME and serves TLS on :443.
func Start(e *echo.Echo, cfg *config.Config, logger *slog.Logger) error {
	var err error
	if addr := listenAddr(cfg); addr != "" {
		logger.Info("api listening", "addr", addr, "env", cfg.Env)
		err = e.Start(addr)
	} else {
		// Cache certificates to avoid issues with rate limits (https://letsencrypt.org/docs/rate-limits)
		e.AutoTLSManager.Cache = autocert.DirCache(cfg.Server.CertCache)
		if host := cfg.Server.AutocertHost; host != "" {
			e.AutoTLSManager.HostPolicy = autocert.HostWhitelist(host)
		}
		e.Pre(middleware.HTTPSRedirect())
		logger.Info("api listening with autocert", "addr", ":443", "host", cfg.Server.AutocertHost)
		err = e.StartAutoTLS(":443")
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// RequestLogger logs one line per request through logger.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	})
}

// ErrorHandler renders every unhandled error as a failure envelope. Server
// faults are logged and answered with a generic message only.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := api.MsgInternal
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if code < http.StatusInternalServerError {
				msg = http.StatusText(code)
			}
		}
		if code >= http.StatusInternalServerError {
			logger.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, api.Failure(msg))
		}
		if err != nil {
			logger.Error("writing error response", "error", err)
		}
	}
}
