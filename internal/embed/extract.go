// Package embed pulls a playable URL out of third-party embed markup.
//
// Embed snippets pasted by editors are not a fixed grammar: iframes, escaped
// JSON strings, lazy-loading attributes and bare links all show up. The
// extractor is best-effort and is not a validator. The pattern order below
// decides which provider snippets work, so changes to it need a fixture in
// extract_test.go.
package embed

import (
	"regexp"
	"strings"
)

// entityDecoders undo the entity encoding found in doubly-encoded snippets.
// &amp; runs first so "&amp;quot;" collapses all the way to a quote.
var entityDecoders = []*strings.Replacer{
	strings.NewReplacer("&amp;", "&"),
	strings.NewReplacer("&quot;", `"`, "&#39;", "'"),
}

// attrPattern matches name="..." or name='...' where name is not the tail of
// a longer attribute (src must not match inside data-src).
func attrPattern(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)(?:^|[^\w-])` + name + `\s*=\s*(?:"([^"]*)"|'([^']*)')`)
}

var (
	attrPatterns = []*regexp.Regexp{
		attrPattern("src"),
		regexp.MustCompile(`(?i)(?:^|[^\w-])src\s*=\s*\\["']([^"'\\]*)\\["']`),
		attrPattern("data-src"),
		attrPattern("href"),
	}

	bareURL = regexp.MustCompile(`(?i)https?://[^\s"'<>\\]+`)
)

// ExtractPlayableURL returns the first usable URL found in markup, or "" when
// nothing can be extracted. Callers render a fallback for "", never an empty
// iframe.
func ExtractPlayableURL(markup string) string {
	if strings.TrimSpace(markup) == "" {
		return ""
	}
	for _, r := range entityDecoders {
		markup = r.Replace(markup)
	}

	for _, re := range attrPatterns {
		if u := firstCapture(re, markup); u != "" {
			return normalize(u)
		}
	}
	if u := bareURL.FindString(markup); u != "" {
		return normalize(u)
	}
	return ""
}

// firstCapture returns the first non-empty trimmed capture of re in s.
func firstCapture(re *regexp.Regexp, s string) string {
	for _, m := range re.FindAllStringSubmatch(s, -1) {
		for _, g := range m[1:] {
			if v := strings.TrimSpace(g); v != "" {
				return v
			}
		}
	}
	return ""
}

func normalize(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}
