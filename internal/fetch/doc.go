// Package fetch retrieves encyclopedia articles over HTTP and reduces them to
// the cleaned form the link extractor works on.
//
// A fetch is one GET request with a per-attempt timeout and a bounded number
// of retries for transport failures. A response with a non-2xx status is a
// definitive answer and is not retried. The final URL after redirects becomes
// the page's node identity, so a random-article seed resolves to the article
// it redirected to.
//
// Cleaning collapses whitespace and strips elements whose links must never be
// followed (scripts, styles, footnote markers, tables, the document head)
// together with their content. The result keeps paragraph and anchor
// structure intact for the parser.
package fetch
