package storyhttp

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/fpang/story-viewer/internal/collections"
	"github.com/fpang/story-viewer/internal/media"
	"github.com/fpang/story-viewer/internal/story"
)

// collectionCard is what a grid needs to draw one collection.
type collectionCard struct {
	CollectionID  string `json:"collectionId"`
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	Param         string `json:"param"`
	CoverImageURL string `json:"coverImageUrl,omitempty"`
	CoverColor    string `json:"coverColor,omitempty"`
	ThumbnailURL  string `json:"thumbnailUrl,omitempty"`
	TotalStories  int    `json:"totalStories"`
	StoryURL      string `json:"storyUrl"`
}

type collectionsResponse struct {
	Collections      []collectionCard `json:"collections"`
	TotalCollections int              `json:"totalCollections"`
}

func (h *Handler) card(c story.Collection, slug string) collectionCard {
	card := collectionCard{
		CollectionID:  c.CollectionID,
		Name:          c.Name,
		Slug:          slug,
		Param:         collections.CollectionParam(c),
		CoverImageURL: h.resolver.CoverImageURL(c.Cover),
		ThumbnailURL:  h.resolver.CoverImageURL(c.Thumbnail),
		TotalStories:  c.TotalStories,
		StoryURL:      "/story?" + url.Values{"collectionId": {c.CollectionID}, "slug": {slug}}.Encode(),
	}
	if media.IsColorValue(c.Cover) {
		card.CoverColor = c.Cover
	}
	if card.TotalStories == 0 {
		card.TotalStories = len(c.Stories)
	}
	return card
}

func (h *Handler) listSlug(w http.ResponseWriter, r *http.Request) (*collections.ListResponse, string, bool) {
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		httpError(w, http.StatusBadRequest, "slug is required")
		return nil, "", false
	}
	list, err := h.lister.List(r.Context(), slug)
	if err != nil {
		httpError(w, http.StatusBadGateway, "failed to load collections", err.Error())
		return nil, "", false
	}
	return list, slug, true
}

func (h *Handler) handleCollections(w http.ResponseWriter, r *http.Request) {
	list, slug, ok := h.listSlug(w, r)
	if !ok {
		return
	}
	resp := collectionsResponse{
		Collections:      make([]collectionCard, 0, len(list.Data)),
		TotalCollections: list.TotalCollections,
	}
	for _, c := range list.Data {
		resp.Collections = append(resp.Collections, h.card(c, slug))
	}
	if resp.TotalCollections == 0 {
		resp.TotalCollections = len(resp.Collections)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCollectionByParam(w http.ResponseWriter, r *http.Request) {
	list, slug, ok := h.listSlug(w, r)
	if !ok {
		return
	}
	c, found := collections.FindByParam(list.Data, chi.URLParam(r, "param"))
	if !found {
		httpError(w, http.StatusNotFound, "collection not found")
		return
	}
	respondJSON(w, http.StatusOK, h.card(c, slug))
}

// playerConfig is the amp-story-player configuration used by the overlay:
// close control at the start, autoplay, and no page scrolling behind it.
var playerConfig = map[string]any{
	"controls": []map[string]string{{"name": "close", "position": "start"}},
	"behavior": map[string]any{"autoplay": true, "pageScroll": false},
}

func handlePlayerConfig(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=3600")
	respondJSON(w, http.StatusOK, playerConfig)
}
