package fetch

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

// whitespaceRun matches any run of whitespace, including newlines.
var whitespaceRun = regexp.MustCompile(`\s+`)

// Cleaner reduces raw article HTML to the structure the parser needs.
//
// Design decision: We use a bluemonday allow-list policy instead of walking
// the tree and deleting nodes ourselves because:
// 1. Elements whose content must vanish (sup, table, script) are dropped
// together with their text in one pass
// 2. Anything unknown is stripped by default, so new markup cannot smuggle
// links into the output
// 3. The output is normalized HTML with stable attribute quoting, which keeps
// byte offsets predictable
type Cleaner struct {
	policy *bluemonday.Policy
}

// NewCleaner creates a Cleaner with the article policy.
func NewCleaner() *Cleaner {
	return &Cleaner{policy: articlePolicy()}
}

// articlePolicy builds the allow-list used for article bodies.
func articlePolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"div", "p", "i", "b", "em", "strong", "span", "small", "abbr",
		"ul", "ol", "li", "dl", "dt", "dd",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "figure", "figcaption", "br",
	)
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("class", "title").Globally()

	p.RequireParseableURLs(true)
	p.AllowRelativeURLs(true)
	p.AllowURLSchemes("http", "https")

	// Footnote markers, tables and the document head must not contribute
	// links or parentheses.
	p.SkipElementsContent("script", "style", "sup", "table", "head", "noscript")
	p.AddSpaceWhenStrippingTag(false)

	return p
}

// Clean collapses whitespace runs to a single space and sanitizes the result.
func (c *Cleaner) Clean(raw []byte) string {
	collapsed := whitespaceRun.ReplaceAll(raw, []byte(" "))
	return string(c.policy.SanitizeBytes(collapsed))
}
