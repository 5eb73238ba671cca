// Package storyhttp is the HTTP surface of the story viewer.
//
// Routes:
//
//	GET /story, /api/story      AMP story document (always 200 text/html)
//	GET /api/collections        collection cards for a slug (JSON)
//	GET /api/collections/{param} one collection by share parameter (JSON)
//	GET /api/player-config      amp-story-player configuration (JSON)
//	GET /player/ws              interactive player session (WebSocket), unless disabled
//	GET /assets/..., /bookend.json  static files referenced by documents
//	GET /health                 liveness
//	GET /metrics                Prometheus, when a metrics handler is configured
package storyhttp

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/fpang/story-viewer/internal/assets"
	"github.com/fpang/story-viewer/internal/collections"
	"github.com/fpang/story-viewer/internal/media"
	"github.com/fpang/story-viewer/internal/player"
	"github.com/fpang/story-viewer/internal/render"
)

// Lister lists the collections of a slug. *collections.Client implements it.
type Lister interface {
	List(ctx context.Context, slug string) (*collections.ListResponse, error)
}

// Options configures a Handler.
type Options struct {
	Renderer *render.Renderer
	Lister   Lister
	Resolver media.Resolver

	// BaseURL is the public origin. Empty derives it from each request.
	BaseURL string
	// TrustForwardedHeaders lets X-Forwarded-Proto and X-Forwarded-Host
	// override the request's own scheme and host when BaseURL is empty.
	TrustForwardedHeaders bool
	// DisablePlayer leaves /player/ws unrouted, for hosts that cannot
	// upgrade connections.
	DisablePlayer bool
	// Observer receives render and player metrics. Nil discards them.
	Observer Observer
	// MetricsHandler is mounted at /metrics when non-nil.
	MetricsHandler http.Handler
	// PlayerTick is the progress tick of player sessions.
	PlayerTick time.Duration
}

// Handler serves every route of the story viewer.
type Handler struct {
	renderer   *render.Renderer
	lister     Lister
	resolver   media.Resolver
	baseURL    string
	trustFwd   bool
	observer   Observer
	playerTick time.Duration
	upgrader   websocket.Upgrader
	router     chi.Router
}

// NewHandler creates a Handler and builds its routes.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		renderer:   opts.Renderer,
		lister:     opts.Lister,
		resolver:   opts.Resolver,
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		trustFwd:   opts.TrustForwardedHeaders,
		observer:   opts.Observer,
		playerTick: opts.PlayerTick,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Stories are public and the socket is read-only, so any
			// embedding origin may open a player.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	if h.observer == nil {
		h.observer = nopObserver{}
	}
	if h.playerTick <= 0 {
		h.playerTick = player.DefaultTickInterval
	}

	r := chi.NewRouter()
	r.Use(withRequestID, withLogging, withRecover, withSecurityHeaders)

	r.Get("/health", handleHealth)
	if opts.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(withGzip)
		r.Get("/story", h.handleStory)
		r.Get("/api/story", h.handleStory)
		r.Get("/api/collections", h.handleCollections)
		r.Get("/api/collections/{param}", h.handleCollectionByParam)
		r.Get("/api/player-config", handlePlayerConfig)
		r.Get(assets.PublisherLogoPath, serveStatic("image/svg+xml", assets.PublisherLogo()))
		r.Get(assets.BookendPath, serveStatic("application/json", assets.Bookend()))
	})

	if !opts.DisablePlayer {
		r.Get("/player/ws", h.handlePlayer)
	}

	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// publicBaseURL returns the configured base URL or the request's origin.
// Forwarded headers are only consulted when the handler trusts them.
func (h *Handler) publicBaseURL(r *http.Request) string {
	if h.baseURL != "" {
		return h.baseURL
	}
	scheme := "http"
	if r.TLS != nil || (h.trustFwd && strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")) {
		scheme = "https"
	}
	host := r.Host
	if fwd := r.Header.Get("X-Forwarded-Host"); h.trustFwd && fwd != "" {
		host = fwd
	}
	if host == "" {
		return ""
	}
	return scheme + "://" + host
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func serveStatic(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=86400")
		w.Write(body)
	}
}
