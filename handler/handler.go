package handler

import (
	"log/slog"

	"blog/store"
)

type Handler struct {
	Store  store.PostStore
	Logger *slog.Logger
}
