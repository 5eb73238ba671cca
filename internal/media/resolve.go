// Package media turns the relative asset paths stored on collections and
// stories into absolute URLs on the media host, and tells literal CSS color
// values apart from asset paths.
package media

import "strings"

const (
	// DefaultBase is the upload root every relative media path hangs off.
	DefaultBase = "https://media.oono.ai/uploads"

	// PlaceholderImage is shown wherever a page has no usable thumbnail.
	PlaceholderImage = "https://placehold.co/720x1280/1a1a1a/ffffff?text=Story"
)

// Resolver resolves media paths against a base URL.
// The zero value resolves against DefaultBase.
type Resolver struct {
	Base string
}

// NewResolver returns a Resolver for base. A trailing slash on base is dropped.
func NewResolver(base string) Resolver {
	return Resolver{Base: strings.TrimRight(base, "/")}
}

func (r Resolver) base() string {
	if r.Base == "" {
		return DefaultBase
	}
	return r.Base
}

// Resolve returns path as an absolute URL. Empty input yields "", absolute
// http(s) URLs pass through untouched, and anything else is joined onto the
// base with at most one leading slash removed.
func (r Resolver) Resolve(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return r.base() + "/" + strings.TrimPrefix(path, "/")
}

// CoverImageURL resolves a cover or thumbnail asset, returning "" when the
// value is a literal color so callers never try to load it as an image.
func (r Resolver) CoverImageURL(cover string) string {
	if cover == "" || IsColorValue(cover) {
		return ""
	}
	return r.Resolve(cover)
}

// IsColorValue reports whether s (after trimming) is a literal CSS color in
// hex or rgb()/rgba() notation.
func IsColorValue(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasPrefix(s, "#") || strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba(")
}
