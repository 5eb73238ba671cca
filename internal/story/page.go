package story

import (
	"strconv"
	"strings"

	"github.com/fpang/story-viewer/internal/embed"
	"github.com/fpang/story-viewer/internal/media"
)

const (
	// DefaultDurationSeconds applies to any page without a positive duration.
	DefaultDurationSeconds = 15

	// DefaultColor fills color pages whose background is not a color literal.
	DefaultColor = "#000000"
)

// PageDescriptor is the resolved, render-ready form of a story. URLs are
// absolute and unescaped; escaping happens where they are written out.
type PageDescriptor struct {
	Index         int    `json:"index"`
	Kind          Kind   `json:"kind"`
	BackgroundURL string `json:"backgroundUrl,omitempty"`
	ThumbnailURL  string `json:"thumbnailUrl,omitempty"`
	EmbedURL      string `json:"embedUrl,omitempty"`
	Color         string `json:"color,omitempty"`

	// DurationSeconds is the timed length of the page: the story's positive
	// duration, or DefaultDurationSeconds.
	DurationSeconds float64 `json:"durationSeconds"`
	// ExplicitDuration is set when the story itself carried a positive duration.
	ExplicitDuration bool `json:"explicitDuration"`
}

// ID is the stable element id of the page in the assembled document.
func (p PageDescriptor) ID() string {
	return "page-" + strconv.Itoa(p.Index)
}

// MediaDriven reports whether progression follows the media element's own
// playback (a video with no explicit duration) instead of a timer.
func (p PageDescriptor) MediaDriven() bool {
	return p.Kind == KindVideo && !p.ExplicitDuration
}

// EmbedAvailable reports whether an embed page has something to load.
// An embed page without one renders its thumbnail with an explanation.
func (p PageDescriptor) EmbedAvailable() bool {
	return p.Kind == KindEmbed && p.EmbedURL != ""
}

// Composer maps stories onto page descriptors.
type Composer struct {
	resolver media.Resolver
}

// NewComposer returns a Composer resolving media paths with r.
func NewComposer(r media.Resolver) *Composer {
	return &Composer{resolver: r}
}

// ComposePages composes every story in order. The result is never nil.
func (c *Composer) ComposePages(stories []Story) []PageDescriptor {
	pages := make([]PageDescriptor, 0, len(stories))
	for i, s := range stories {
		pages = append(pages, c.ComposePage(s, i))
	}
	return pages
}

// ComposePage composes a single story at position index. It never fails:
// unknown kinds and unusable embeds degrade to a thumbnail page.
func (c *Composer) ComposePage(s Story, index int) PageDescriptor {
	thumb := c.resolver.Resolve(s.Thumbnail)
	if thumb == "" {
		thumb = media.PlaceholderImage
	}

	p := PageDescriptor{
		Index:           index,
		Kind:            s.Kind(),
		ThumbnailURL:    thumb,
		DurationSeconds: DefaultDurationSeconds,
	}
	if s.Duration != nil && *s.Duration > 0 {
		p.DurationSeconds = *s.Duration
		p.ExplicitDuration = true
	}

	switch p.Kind {
	case KindVideo:
		p.BackgroundURL = c.resolver.Resolve(s.Background)
	case KindImage:
		p.BackgroundURL = c.resolver.Resolve(s.Background)
		if p.BackgroundURL == "" {
			p.BackgroundURL = thumb
		}
	case KindEmbed:
		p.EmbedURL = embed.ExtractPlayableURL(s.EmbedCode)
	case KindGradient, KindBlank:
		p.Color = DefaultColor
		if media.IsColorValue(s.Background) {
			p.Color = strings.TrimSpace(s.Background)
		}
	default:
		p.BackgroundURL = thumb
	}
	return p
}
