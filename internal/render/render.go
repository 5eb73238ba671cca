// Package render turns a (collectionId, slug) request into a complete AMP
// story document. It is the one place where fetching, composing, and
// assembling meet, and it always yields a displayable document: failures
// become the error document rather than escaping to the caller.
package render

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/fpang/story-viewer/internal/ampdoc"
	"github.com/fpang/story-viewer/internal/collections"
	"github.com/fpang/story-viewer/internal/media"
	"github.com/fpang/story-viewer/internal/story"
)

// Messages shown on the error document.
const (
	MissingParamsMessage = "Missing collectionId or slug. Use ?collectionId=...&slug=..."
	NotFoundMessage      = "Collection not found"
	FallbackMessage      = "Failed to load story"
)

// Outcome classifies a render for logs and metrics.
type Outcome string

const (
	OutcomeOK             Outcome = "ok"
	OutcomeMissingParams  Outcome = "missing_params"
	OutcomeNotFound       Outcome = "not_found"
	OutcomeUpstreamStatus Outcome = "upstream_status"
	OutcomeUpstreamError  Outcome = "upstream_error"
	OutcomePanic          Outcome = "panic"
)

// ErrMissingParams is returned when collectionId or slug is empty.
var ErrMissingParams = errors.New("missing collectionId or slug")

// Fetcher loads one collection. *collections.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, collectionID, slug string) (*story.Collection, error)
}

// Request identifies the story to render.
type Request struct {
	CollectionID string `validate:"required"`
	Slug         string `validate:"required"`
	// StoryIndex is accepted for link compatibility. Static documents
	// always open on their first page.
	StoryIndex *int
	// BaseURL is the public origin, without a trailing slash.
	BaseURL string
}

// Result is a rendered document plus what went into it.
type Result struct {
	HTML       string
	Outcome    Outcome
	Message    string // error document message, empty on success
	Collection *story.Collection
	Pages      []story.PageDescriptor
}

// Renderer renders story documents.
type Renderer struct {
	fetcher   Fetcher
	composer  *story.Composer
	assembler *ampdoc.Assembler
	validate  *validator.Validate
}

// New returns a Renderer fetching through f and resolving media with r.
func New(f Fetcher, r media.Resolver) *Renderer {
	return &Renderer{
		fetcher:   f,
		composer:  story.NewComposer(r),
		assembler: ampdoc.NewAssembler(r),
		validate:  validator.New(),
	}
}

// Load fetches and composes a collection without assembling a document.
func (r *Renderer) Load(ctx context.Context, collectionID, slug string) (*story.Collection, []story.PageDescriptor, error) {
	if err := r.validate.Struct(Request{CollectionID: collectionID, Slug: slug}); err != nil {
		return nil, nil, ErrMissingParams
	}
	c, err := r.fetcher.Get(ctx, collectionID, slug)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch collection %s: %w", collectionID, err)
	}
	return c, r.composer.ComposePages(c.Stories), nil
}

// Render produces the document for req. The returned error describes why
// the error document was rendered; Result.HTML is always a full document.
func (r *Renderer) Render(ctx context.Context, req Request) (res Result, err error) {
	defer func() {
		if p := recover(); p != nil {
			log.Error().Interface("panic", p).Str("collectionId", req.CollectionID).Msg("Recovered panic while rendering story")
			err = fmt.Errorf("render panic: %v", p)
			res = r.failure(req.BaseURL, OutcomePanic, FallbackMessage)
		}
	}()

	if req.StoryIndex != nil {
		log.Debug().Int("storyIndex", *req.StoryIndex).Msg("storyIndex ignored for static document")
	}

	c, pages, err := r.Load(ctx, req.CollectionID, req.Slug)
	if err != nil {
		outcome, msg := Classify(err)
		return r.failure(req.BaseURL, outcome, msg), err
	}

	return Result{
		HTML:       r.assembler.Document(*c, pages, req.BaseURL),
		Outcome:    OutcomeOK,
		Collection: c,
		Pages:      pages,
	}, nil
}

// ErrorDocument renders the error document directly.
func (r *Renderer) ErrorDocument(message, baseURL string) string {
	return r.assembler.ErrorDocument(message, baseURL)
}

func (r *Renderer) failure(baseURL string, outcome Outcome, msg string) Result {
	return Result{
		HTML:    r.assembler.ErrorDocument(msg, baseURL),
		Outcome: outcome,
		Message: msg,
	}
}

// Classify maps a Load error to its outcome and user-facing message.
func Classify(err error) (Outcome, string) {
	var statusErr *collections.HTTPStatusError
	switch {
	case errors.Is(err, ErrMissingParams):
		return OutcomeMissingParams, MissingParamsMessage
	case errors.Is(err, collections.ErrCollectionNotFound):
		return OutcomeNotFound, NotFoundMessage
	case errors.As(err, &statusErr):
		return OutcomeUpstreamStatus, statusErr.Error()
	case err == nil || err.Error() == "":
		return OutcomeUpstreamError, FallbackMessage
	default:
		return OutcomeUpstreamError, rootMessage(err)
	}
}

// rootMessage strips our wrapping context. For transport failures it keeps
// the dial/TLS description without the request URL, which carries the token
// endpoint.
func rootMessage(err error) string {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err.Error()
	}
	for {
		next := errors.Unwrap(err)
		if next == nil || next.Error() == "" {
			return err.Error()
		}
		err = next
	}
}
