// Package story holds the collection/story records returned by the stories
// API and composes each story into a render-ready page descriptor shared by
// the static AMP document and the interactive player.
package story

import "strings"

// Kind is the normalized rendering mode of a story's primary content.
type Kind string

const (
	KindVideo    Kind = "VIDEO"
	KindImage    Kind = "IMAGE"
	KindEmbed    Kind = "EMBED"
	KindGradient Kind = "GRADIENT"
	KindBlank    Kind = "BLANK"
	KindUnknown  Kind = "UNKNOWN"
)

// ParseKind normalizes a raw backgroundType case-insensitively. An empty
// value is a blank page; anything unrecognized is KindUnknown.
func ParseKind(raw string) Kind {
	switch k := Kind(strings.ToUpper(strings.TrimSpace(raw))); k {
	case KindVideo, KindImage, KindEmbed, KindGradient, KindBlank:
		return k
	case "":
		return KindBlank
	default:
		return KindUnknown
	}
}

// Story is one page-equivalent unit of content as returned by the API.
type Story struct {
	Background     string   `json:"background"`
	BackgroundType string   `json:"backgroundType"`
	Thumbnail      string   `json:"thumbnail"`
	Duration       *float64 `json:"duration,omitempty"`
	EmbedCode      string   `json:"embedCode,omitempty"`
}

// Kind returns the normalized background kind.
func (s Story) Kind() Kind {
	return ParseKind(s.BackgroundType)
}

// Collection is a named, ordered group of stories.
type Collection struct {
	ID           string  `json:"_id,omitempty"`
	CollectionID string  `json:"collectionId"`
	Name         string  `json:"name"`
	Slug         string  `json:"slug,omitempty"`
	Code         string  `json:"code,omitempty"`
	Cover        string  `json:"cover"`
	Thumbnail    string  `json:"thumbnail"`
	TotalStories int     `json:"totalStories,omitempty"`
	Stories      []Story `json:"stories,omitempty"`
}

// Identifier returns collectionId, falling back to the document _id.
func (c Collection) Identifier() string {
	if c.CollectionID != "" {
		return c.CollectionID
	}
	return c.ID
}
