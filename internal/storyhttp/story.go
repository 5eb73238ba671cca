package storyhttp

import (
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/story-viewer/internal/render"
)

// handleStory renders the AMP story document. Every outcome, including
// missing parameters and upstream failures, is a 200 HTML document.
func (h *Handler) handleStory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	q := r.URL.Query()
	req := render.Request{
		CollectionID: q.Get("collectionId"),
		Slug:         q.Get("slug"),
		BaseURL:      h.publicBaseURL(r),
	}
	if v := q.Get("storyIndex"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			req.StoryIndex = &i
		}
	}

	res, err := h.renderer.Render(r.Context(), req)
	elapsed := time.Since(start)
	h.observer.ObserveRender(string(res.Outcome), len(res.Pages), elapsed)

	evt := log.Info()
	if err != nil {
		evt = log.Warn().Err(err)
	}
	evt.Str("requestId", RequestID(r.Context())).
		Str("collectionId", req.CollectionID).
		Str("slug", req.Slug).
		Str("outcome", string(res.Outcome)).
		Int("pages", len(res.Pages)).
		Dur("duration", elapsed).
		Msg("Story rendered")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if h.baseURL == "" && h.trustFwd {
		// Canonical and asset URLs depend on these headers.
		w.Header().Add("Vary", "X-Forwarded-Proto, X-Forwarded-Host")
	}
	if res.Outcome == render.OutcomeOK {
		w.Header().Set("Cache-Control", "public, max-age=300")
	} else {
		w.Header().Set("Cache-Control", "no-store")
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(res.HTML))
}
