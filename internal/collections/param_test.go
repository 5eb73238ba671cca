package collections

import (
	"testing"

	"github.com/fpang/story-viewer/internal/story"
)

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Relax", "relax"},
		{"  Summer Trip 2026! ", "summer-trip-2026"},
		{"rock_&_roll", "rock-roll"},
		{"--a--b--", "a-b"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestCollectionParam(t *testing.T) {
	withCode := story.Collection{Name: "Relax", Code: "uTC", CollectionID: "6650aa00bb11cc22"}
	if got := CollectionParam(withCode); got != "uTC-relax" {
		t.Errorf("expected uTC-relax, got %q", got)
	}
	noCode := story.Collection{Name: "Relax More", CollectionID: "6650aa00bb11cc22"}
	if got := CollectionParam(noCode); got != "relax-more-bb11cc22" {
		t.Errorf("expected relax-more-bb11cc22, got %q", got)
	}
	shortID := story.Collection{Name: "X", CollectionID: "abc"}
	if got := CollectionParam(shortID); got != "x-abc" {
		t.Errorf("expected x-abc, got %q", got)
	}
}

func TestFindByParam(t *testing.T) {
	cols := []story.Collection{
		{Name: "One", CollectionID: "0000000011111111"},
		{Name: "Two", Code: "T2"},
	}
	if c, ok := FindByParam(cols, "T2-two"); !ok || c.Name != "Two" {
		t.Errorf("expected to find Two, got %+v %v", c, ok)
	}
	if c, ok := FindByParam(cols, "one-11111111"); !ok || c.Name != "One" {
		t.Errorf("expected to find One, got %+v %v", c, ok)
	}
	if _, ok := FindByParam(cols, "three"); ok {
		t.Error("expected no match")
	}
}
