// Package api is the local HTTP gateway the dashboard UI talks to.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgnsrekt/quantora_dash/internal/apiclient"
	"github.com/dgnsrekt/quantora_dash/internal/live"
	"github.com/dgnsrekt/quantora_dash/internal/metrics"
	"github.com/dgnsrekt/quantora_dash/internal/poller"
	"github.com/dgnsrekt/quantora_dash/internal/relay"
)

// LiveService is the part of the live channel the gateway drives.
type LiveService interface {
	Info() live.Info
	Log() []live.LogEntry
	SendText(content string) error
	Ping() error
	RequestStatus() error
	Toggle()
}

// SurfaceService is the part of the poller the gateway drives.
type SurfaceService interface {
	All() []poller.Entry
	Refresh(ctx context.Context, name string) (poller.Entry, error)
}

// Deps are the components served by the gateway.
type Deps struct {
	Client   *apiclient.Client
	State    apiclient.StateSource
	Live     LiveService
	Surfaces SurfaceService
	Broker   *relay.Broker
	Metrics  *metrics.Metrics
}

func NewServer(deps Deps) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(deps.Metrics))
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("Quantora Dashboard Gateway", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(docsHTML)); err != nil {
			slog.Debug("docs response write failed", "error", err)
		}
	})
	router.Get("/docs/events", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if _, err := w.Write([]byte(eventsDocsHTML)); err != nil {
			slog.Debug("events docs response write failed", "error", err)
		}
	})
	if deps.Broker != nil {
		router.Get("/events", relay.SSEHandler(deps.Broker))
	}

	registerDataHandlers(api, deps)
	registerLiveHandlers(api, deps)
	registerSurfaceHandlers(api, deps)

	return router
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, poller.ErrUnknownSurface):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, live.ErrNotConnected):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout(err.Error())
	}
	return huma.Error500InternalServerError(err.Error())
}
