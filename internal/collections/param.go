package collections

import (
	"regexp"
	"strings"

	"github.com/fpang/story-viewer/internal/story"
)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugSeparate = regexp.MustCompile(`[\s_-]+`)
)

// Slugify lowercases s and collapses everything that is not a letter or
// digit into single dashes.
func Slugify(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSeparate.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// CollectionParam builds the shareable collection parameter:
// "<code>-<name-slug>", or "<name-slug>-<last 8 of collectionId>" for
// collections without a code.
func CollectionParam(c story.Collection) string {
	name := Slugify(c.Name)
	if c.Code != "" {
		return c.Code + "-" + name
	}
	id := c.Identifier()
	if len(id) > 8 {
		id = id[len(id)-8:]
	}
	return name + "-" + id
}

// FindByParam returns the collection whose CollectionParam equals param.
func FindByParam(cols []story.Collection, param string) (story.Collection, bool) {
	for _, c := range cols {
		if CollectionParam(c) == param {
			return c, true
		}
	}
	return story.Collection{}, false
}
