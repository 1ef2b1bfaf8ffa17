package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/finsolve/deskagent/internal/api"
	"github.com/finsolve/deskagent/internal/api/handlers"
	"github.com/finsolve/deskagent/internal/api/middleware"
)

type RouterConfig struct {
	AskHandler    *handlers.AskHandler
	MemoryHandler *handlers.MemoryHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	liveness := func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok", "service": "deskagent"})
	}
	r.Get("/", liveness)
	r.Get("/health", liveness)

	r.Post("/ask", cfg.AskHandler.Ask)
	r.Get("/history/{userEmail}", cfg.MemoryHandler.History)
	r.Post("/search/{userEmail}", cfg.MemoryHandler.Search)

	return r
}
