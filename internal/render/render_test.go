package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSafeHTMLStripsScripts(t *testing.T) {
	out := SafeHTML(`<p>hello</p><script>alert(1)</script>`)
	assert.Equal(t, "<p>hello</p>", out)
}

func TestSafeHTMLKeepsAllowedTags(t *testing.T) {
	out := SafeHTML(`<h1>Title</h1><p>Body with <strong>emphasis</strong></p>`)
	assert.Contains(t, out, "<h1>Title</h1>")
	assert.Contains(t, out, "<strong>emphasis</strong>")
}

func TestSafeHTMLStripsEventHandlers(t *testing.T) {
	out := SafeHTML(`<p onclick="evil()">text</p>`)
	assert.NotContains(t, out, "onclick")
	assert.Contains(t, out, "text")
}

func TestSafeHTMLLinkifiesBareURLs(t *testing.T) {
	out := SafeHTML(`see https://example.com/page for details`)
	assert.Contains(t, out, `<a href="https://example.com/page" rel="nofollow">https://example.com/page</a>`)
	assert.Contains(t, out, "see ")
	assert.Contains(t, out, " for details")
}

func TestSafeHTMLLeavesExistingLinksAlone(t *testing.T) {
	out := SafeHTML(`<a href="https://example.com">already a link</a>`)
	// One anchor in, one anchor out.
	assert.Equal(t, 1, countOccurrences(out, "<a "))
	assert.Contains(t, out, "already a link")
}

func TestSafeHTMLDoesNotNestAnchors(t *testing.T) {
	out := SafeHTML(`<a href="https://example.com">https://example.com</a>`)
	assert.Equal(t, 1, countOccurrences(out, "<a "))
	assert.Equal(t, 1, countOccurrences(out, "</a>"))

	// Text around the anchor is still linkified.
	out = SafeHTML(`https://first.example <a href="https://example.com">https://example.com</a> https://last.example`)
	assert.Equal(t, 3, countOccurrences(out, "<a "))
	assert.Contains(t, out, `<a href="https://first.example" rel="nofollow">https://first.example</a>`)
	assert.Contains(t, out, `<a href="https://last.example" rel="nofollow">https://last.example</a>`)
}

func countOccurrences(s, sub string) int {
	count := 0
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			count++
		}
	}
	return count
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World!":      "hello-world",
		"  spaced   out  ":   "spaced-out",
		"Ünïcode Tîtle":      "unicode-title",
		"already-slugged":    "already-slugged",
		"Numbers 123 remain": "numbers-123-remain",
	}
	for input, want := range cases {
		assert.Equal(t, want, Slugify(input), "input %q", input)
	}
}
