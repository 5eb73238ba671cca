// Package assets provides embedded static assets for the application.
//
// The AMP story document and its error variant are text templates stored under
// templates/ and embedded at compile time. Files under static/ are served as-is
// at the paths the assembled documents reference.
package assets

import "embed"

// --- Document templates ---

// StoryDocumentTemplate is the outer AMP story document: head, runtime
// scripts, custom styles, and the amp-story element wrapping the pages.
//
//go:embed templates/story.html.tmpl
var StoryDocumentTemplate string

// StoryPagesTemplate defines one named fragment per page rendering mode.
// It holds only {{define}} blocks and is parsed into the document template.
//
//go:embed templates/pages.html.tmpl
var StoryPagesTemplate string

// ErrorDocumentTemplate is the single-page document shown whenever a story
// cannot be rendered.
//
//go:embed templates/error.html.tmpl
var ErrorDocumentTemplate string

// --- Static files ---

// Paths, relative to the public base URL, at which static files are served.
const (
	PublisherLogoPath = "/assets/AMP-Brand-White-Icon.svg"
	BookendPath       = "/bookend.json"
)

//go:embed static
var staticFS embed.FS

// PublisherLogo returns the SVG referenced as the story publisher logo.
func PublisherLogo() []byte {
	b, _ := staticFS.ReadFile("static/AMP-Brand-White-Icon.svg")
	return b
}

// Bookend returns the amp-story bookend configuration.
func Bookend() []byte {
	b, _ := staticFS.ReadFile("static/bookend.json")
	return b
}
