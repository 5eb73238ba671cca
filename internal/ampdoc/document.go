// Package ampdoc assembles composed story pages into a standalone AMP story
// document. Assembly is pure: no I/O, and any well-formed input, including a
// collection with no stories, produces a complete document.
package ampdoc

import (
	"bytes"
	"strconv"
	"strings"
	"text/template"

	"github.com/fpang/story-viewer/internal/assets"
	"github.com/fpang/story-viewer/internal/media"
	"github.com/fpang/story-viewer/internal/story"
)

// Publisher is the publisher name declared on every story.
const Publisher = "oono"

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

// Escape makes s safe for element text and double-quoted attribute values.
// The templates are text/template rather than html/template: contextual
// escaping would rewrite color values such as rgb(...) inside style
// attributes, and the documents promise exactly this four-character set.
func Escape(s string) string {
	return escaper.Replace(s)
}

var funcs = template.FuncMap{
	"esc": Escape,
	"seconds": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
}

// Pre-parsed templates. template.Must panics on malformed templates,
// catching errors at program startup rather than at call time.
var (
	documentTmpl = template.Must(template.Must(
		template.New("document").Funcs(funcs).Parse(assets.StoryDocumentTemplate)).
		Parse(assets.StoryPagesTemplate))
	errorTmpl = template.Must(template.New("error").Funcs(funcs).Parse(assets.ErrorDocumentTemplate))
)

type pageView struct {
	story.PageDescriptor
	Fragment string
}

type documentData struct {
	Title     string
	BaseURL   string
	Publisher string
	Poster    string
	Pages     []pageView
}

type errorData struct {
	Message   string
	BaseURL   string
	Publisher string
}

// Assembler renders AMP story documents.
type Assembler struct {
	resolver media.Resolver
}

// NewAssembler returns an Assembler resolving collection artwork with r.
func NewAssembler(r media.Resolver) *Assembler {
	return &Assembler{resolver: r}
}

// Document renders the collection's pages, in order, as one AMP story.
// baseURL is the public origin (no trailing slash) used for the canonical
// link, publisher logo, bookend and back links; it may be empty.
func (a *Assembler) Document(c story.Collection, pages []story.PageDescriptor, baseURL string) string {
	title := c.Name
	if title == "" {
		title = "Story"
	}
	data := documentData{
		Title:     title,
		BaseURL:   baseURL,
		Publisher: Publisher,
		Poster:    a.poster(c),
		Pages:     make([]pageView, 0, len(pages)),
	}
	for _, p := range pages {
		data.Pages = append(data.Pages, pageView{PageDescriptor: p, Fragment: fragment(p)})
	}
	return render(documentTmpl, data)
}

// ErrorDocument renders a one-page story carrying message and a link back
// to the collection listing.
func (a *Assembler) ErrorDocument(message, baseURL string) string {
	return render(errorTmpl, errorData{Message: message, BaseURL: baseURL, Publisher: Publisher})
}

// poster picks the first usable of cover, thumbnail, placeholder. Color
// covers are skipped.
func (a *Assembler) poster(c story.Collection) string {
	if u := a.resolver.CoverImageURL(c.Cover); u != "" {
		return u
	}
	if u := a.resolver.CoverImageURL(c.Thumbnail); u != "" {
		return u
	}
	return media.PlaceholderImage
}

// fragment names the template block that renders p.
func fragment(p story.PageDescriptor) string {
	switch p.Kind {
	case story.KindVideo:
		return "video"
	case story.KindEmbed:
		if p.EmbedAvailable() {
			return "embed"
		}
		return "embed-fallback"
	case story.KindGradient, story.KindBlank:
		return "color"
	default:
		// IMAGE and unknown kinds both carry an image background.
		return "image"
	}
}

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	// Execution only fails on template bugs, which the package tests cover.
	_ = tmpl.Execute(&buf, data)
	return buf.String()
}
