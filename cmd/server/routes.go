package main

import (
	"net/http"

	"github.com/lh/pagedeck/internal/clipboard"
	"github.com/lh/pagedeck/internal/config"
	"github.com/lh/pagedeck/internal/infrastructure"
	"github.com/lh/pagedeck/internal/middleware"
	"github.com/lh/pagedeck/internal/sessions"
)

// buildHandler registers all routes and wraps them with the middleware stack.
func buildHandler(cfg *config.Config, infra *infrastructure.Infrastructure, sessionSys sessions.System) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if !infra.Lifecycle.Ready() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	sessionSys.Handler(cfg.Storage.MaxUploadSizeBytes()).Register(mux)
	clipboard.NewHandler(infra.Station, infra.Logger).Register(mux)

	stack := middleware.New()
	stack.Use(middleware.Recover(infra.Logger))
	stack.Use(middleware.Logger(infra.Logger))
	stack.Use(middleware.CORS(&cfg.CORS))
	stack.Use(middleware.TrimSlash())

	return stack.Apply(mux)
}
