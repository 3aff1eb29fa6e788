package model

import (
	"net/url"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Node identifies an article by its canonical URL.
// Two nodes are the same article if and only if their strings are equal.
type Node string

// String returns the URL form of the node.
func (n Node) String() string {
	return string(n)
}

// IsZero reports whether the node is empty (no article).
func (n Node) IsZero() bool {
	return n == ""
}

// Title returns a human-readable article title derived from the last path
// segment, e.g. "https://en.wikipedia.org/wiki/Ancient_Greek" -> "Ancient Greek".
// It falls back to the full URL when no segment can be extracted.
func (n Node) Title() string {
	u, err := url.Parse(string(n))
	if err != nil || u.Path == "" || u.Path == "/" {
		return string(n)
	}
	segment := u.Path[strings.LastIndex(u.Path, "/")+1:]
	if segment == "" {
		return string(n)
	}
	return strings.ReplaceAll(segment, "_", " ")
}

// CanonicalNode converts a resolved URL into its node identity.
//
// Design decision: We normalize rather than compare raw URLs because:
//  1. Fragments (#section) point into the same article
//  2. Scheme and host are case-insensitive
//  3. The same title may arrive percent-encoded or as NFD/NFC Unicode
func CanonicalNode(u *url.URL) Node {
	if u == nil {
		return ""
	}
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	if c.Path == "" {
		c.Path = "/"
	}
	c.Path = norm.NFC.String(c.Path)
	c.RawPath = ""
	return Node(c.String())
}

// ParseNode parses a raw URL and returns its canonical node.
// It returns an empty node when the URL cannot be parsed or is not absolute.
func ParseNode(rawURL string) Node {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return CanonicalNode(u)
}
