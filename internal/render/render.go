// Package render derives display-safe HTML from raw user input.
//
// The pipeline is the only path from a raw post or comment body to the
// body_html column: disallowed tags and scripts are stripped first, then
// bare URLs are converted to clickable links. Raw input is kept separately
// for editing round-trips and is never rendered directly.
package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gosimple/slug"
	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

// Matches a bare URL at the start of the text or after whitespace or a tag
// boundary, so URLs inside attribute values are left alone.
var bareURL = regexp.MustCompile(`(^|[\s>])(https?://[^\s<>"']+)`)

// Matches complete anchor elements; the text between them is the only part
// the linkifier may touch. An anchor whose visible text is itself a URL
// must not gain a second, nested anchor.
var anchorSpan = regexp.MustCompile(`(?is)<a\b[^>]*>.*?</a>`)

// SafeHTML sanitizes raw user input and linkifies any plain-text URLs.
func SafeHTML(raw string) string {
	cleaned := policy.Sanitize(raw)

	var b strings.Builder
	last := 0
	for _, span := range anchorSpan.FindAllStringIndex(cleaned, -1) {
		b.WriteString(linkify(cleaned[last:span[0]]))
		b.WriteString(cleaned[span[0]:span[1]])
		last = span[1]
	}
	b.WriteString(linkify(cleaned[last:]))
	return b.String()
}

func linkify(segment string) string {
	return bareURL.ReplaceAllStringFunc(segment, func(match string) string {
		sub := bareURL.FindStringSubmatch(match)
		return fmt.Sprintf(`%s<a href="%s" rel="nofollow">%s</a>`, sub[1], sub[2], sub[2])
	})
}

// Slugify derives a URL-safe slug from a post title.
func Slugify(title string) string {
	return slug.Make(title)
}
