package embed

import "testing"

func TestExtractPlayableURL(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"empty", "", ""},
		{"whitespace", "   ", ""},
		{"no url", "<div>hello</div>", ""},
		{
			"plain url is returned unchanged",
			"https://player.vimeo.com/video/76979871",
			"https://player.vimeo.com/video/76979871",
		},
		{
			"plain url with query",
			"https://example.com/embed?a=1&b=2",
			"https://example.com/embed?a=1&b=2",
		},
		{
			"youtube iframe",
			`<iframe width="560" height="315" src="https://www.youtube.com/embed/dQw4w9WgXcQ?si=abc" title="YouTube video player" frameborder="0" allowfullscreen></iframe>`,
			"https://www.youtube.com/embed/dQw4w9WgXcQ?si=abc",
		},
		{
			"single quoted src",
			`<iframe src='https://open.spotify.com/embed/track/123'></iframe>`,
			"https://open.spotify.com/embed/track/123",
		},
		{
			"upper case attribute",
			`<IFRAME SRC="https://example.com/x"></IFRAME>`,
			"https://example.com/x",
		},
		{
			"src is trimmed",
			`<iframe src="  https://example.com/x  "></iframe>`,
			"https://example.com/x",
		},
		{
			"protocol relative",
			`<iframe src="//cdn.example.com/x">`,
			"https://cdn.example.com/x",
		},
		{
			"entity encoded snippet",
			`&lt;iframe src=&quot;https://player.vimeo.com/video/1?h=2&amp;badge=0&quot;&gt;&lt;/iframe&gt;`,
			"https://player.vimeo.com/video/1?h=2&badge=0",
		},
		{
			"single quote entity",
			`<iframe src=&#39;https://example.com/q&#39;></iframe>`,
			"https://example.com/q",
		},
		{
			"json escaped quotes",
			`{"html":"<iframe src=\"https://www.loom.com/embed/abc\" frameborder=\"0\"></iframe>"}`,
			"https://www.loom.com/embed/abc",
		},
		{
			"data-src used when src missing",
			`<iframe class="lazy" data-src="https://example.com/lazy"></iframe>`,
			"https://example.com/lazy",
		},
		{
			"src wins over data-src",
			`<iframe data-src="https://example.com/lazy" src="https://example.com/eager"></iframe>`,
			"https://example.com/eager",
		},
		{
			"empty src skipped",
			`<iframe src="" data-src="https://example.com/lazy"></iframe>`,
			"https://example.com/lazy",
		},
		{
			"href from blockquote embed",
			`<blockquote class="twitter-tweet"><p>hi</p><a href="https://twitter.com/u/status/1">link</a></blockquote>`,
			"https://twitter.com/u/status/1",
		},
		{
			"bare url inside text",
			`watch this: https://example.com/v/9 now`,
			"https://example.com/v/9",
		},
		{
			"bare url terminated by angle bracket",
			`<p>https://example.com/v/9</p>`,
			"https://example.com/v/9",
		},
		{
			"bare url followed by escaped quote",
			`see https://x.com/v\" more`,
			"https://x.com/v",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractPlayableURL(tt.markup); got != tt.want {
				t.Errorf("ExtractPlayableURL(%q): expected %q, got %q", tt.markup, tt.want, got)
			}
		})
	}
}

func TestExtractPlayableURL_IdempotentOnPlainURLs(t *testing.T) {
	for _, u := range []string{
		"https://a.example/x",
		"https://www.youtube.com/embed/abc",
		"http://plain.example/path/to/thing?x=1",
	} {
		if got := ExtractPlayableURL(u); got != u {
			t.Errorf("expected %q unchanged, got %q", u, got)
		}
		if again := ExtractPlayableURL(ExtractPlayableURL(u)); again != u {
			t.Errorf("expected repeated extraction of %q to be stable, got %q", u, again)
		}
	}
}
