package crawler

import (
	"html"
	"net/url"
	"strings"

	"github.com/nao1215/philowalk/internal/model"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Defaults for the link-selection heuristic.
const (
	// DefaultLookback is how many bytes before a link are inspected for
	// parentheses.
	DefaultLookback = 10

	// DefaultContentClass marks the container of the article body.
	DefaultContentClass = "mw-parser-output"

	// DefaultImageClass marks anchors that wrap images.
	DefaultImageClass = "image"
)

// Candidate is a link occurrence eligible for selection.
type Candidate struct {
	// Href is the unescaped href attribute as written in the page.
	Href string

	// Offset is the byte position of the anchor's opening tag in the
	// cleaned content, or -1 when it could not be located.
	Offset int
}

// Parser selects the next hop of a walk from a cleaned article.
//
// Design decision: We use golang.org/x/net/html for candidate discovery and
// byte offsets into the raw content for the parenthesis check because:
//  1. Structural rules (paragraph parent, article container, image class)
//     need a real tree
//  2. The parenthesis count needs the text exactly as it sits before the
//     link, which the tree no longer has
//  3. Both views come from the same cleaned string, so they agree
type Parser struct {
	lookback     int
	contentClass string
	imageClass   string
}

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithLookback sets the number of bytes inspected before each candidate.
func WithLookback(n int) ParserOption {
	return func(p *Parser) {
		if n > 0 {
			p.lookback = n
		}
	}
}

// WithContentClass sets the class of the article body container.
func WithContentClass(class string) ParserOption {
	return func(p *Parser) {
		if class != "" {
			p.contentClass = class
		}
	}
}

// NewParser creates a Parser with the default heuristic.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{
		lookback:     DefaultLookback,
		contentClass: DefaultContentClass,
		imageClass:   DefaultImageClass,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Candidates returns the eligible links of content in document order.
//
// An anchor is eligible when its parent is a paragraph inside the article
// container and it does not wrap an image. Anchors inside italics, list
// items, spans or captions have a different parent and are skipped.
func (p *Parser) Candidates(content string) []Candidate {
	doc, err := xhtml.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var candidates []Candidate
	cursor := 0

	var walk func(n *xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode && n.DataAtom == atom.A && p.eligible(n) {
			href := strings.TrimSpace(getAttr(n, "href"))
			offset, next := locateAnchor(content, href, cursor)
			if offset >= 0 {
				cursor = next
			}
			candidates = append(candidates, Candidate{Href: href, Offset: offset})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return candidates
}

// eligible reports whether anchor n may be followed.
func (p *Parser) eligible(n *xhtml.Node) bool {
	href := strings.TrimSpace(getAttr(n, "href"))
	if href == "" || strings.HasPrefix(href, "#") {
		return false
	}
	if strings.Contains(getAttr(n, "class"), p.imageClass) {
		return false
	}
	parent := n.Parent
	if parent == nil || parent.Type != xhtml.ElementNode || parent.DataAtom != atom.P {
		return false
	}
	for a := parent.Parent; a != nil; a = a.Parent {
		if a.Type == xhtml.ElementNode && a.DataAtom == atom.Div && hasClass(a, p.contentClass) {
			return true
		}
	}
	return false
}

// NextLink returns the first candidate outside an open parenthetical,
// resolved against the page URL.
//
// The parenthesis counter runs across candidates and is never reset: a ')'
// in a window counts -1 and a '(' counts +1, and the first candidate seen
// while the counter is at most zero wins. Candidates that cannot be resolved
// to an http(s) URL are passed over. The result depends only on the page.
func (p *Parser) NextLink(page *model.Page) (model.Node, bool) {
	if !page.HasContent() {
		return "", false
	}

	base, err := url.Parse(page.URL.String())
	if err != nil {
		return "", false
	}

	counter := 0
	for _, c := range p.Candidates(page.Content) {
		if c.Offset >= 0 {
			counter += parenBalance(page.Content, c.Offset, p.lookback)
		}
		if counter > 0 {
			continue
		}
		if node := resolveNode(base, c.Href); !node.IsZero() {
			return node, true
		}
	}
	return "", false
}

// parenBalance counts '(' minus ')' in the window bytes before offset.
func parenBalance(content string, offset, window int) int {
	start := max(offset-window, 0)
	balance := 0
	for i := offset - 1; i >= start; i-- {
		switch content[i] {
		case ')':
			balance--
		case '(':
			balance++
		}
	}
	return balance
}

// locateAnchor finds the opening tag of the anchor carrying href at or after
// from. It returns the tag offset and the position to continue searching
// from, or -1 when the attribute cannot be found.
func locateAnchor(content, href string, from int) (int, int) {
	if from > len(content) {
		return -1, from
	}
	for _, needle := range []string{
		`href="` + html.EscapeString(href) + `"`,
		`href="` + href + `"`,
	} {
		idx := strings.Index(content[from:], needle)
		if idx < 0 {
			continue
		}
		attr := from + idx
		tag := strings.LastIndex(content[:attr], "<a")
		if tag < 0 {
			tag = attr
		}
		return tag, attr + len(needle)
	}
	return -1, from
}

// resolveNode resolves href against base and canonicalizes it.
// Only http and https targets are accepted.
func resolveNode(base *url.URL, href string) model.Node {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return model.CanonicalNode(resolved)
}

// hasClass reports whether n lists class among its classes.
func hasClass(n *xhtml.Node, class string) bool {
	for _, c := range strings.Fields(getAttr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *xhtml.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
