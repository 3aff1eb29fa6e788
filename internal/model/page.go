package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Page is a fetched article after cleaning.
//
// Design decision: We keep only the cleaned content and not the raw body
// because:
//  1. Link extraction works on the cleaned form (scripts, tables and
//     footnote markers already removed)
//  2. The parenthesis heuristic needs byte offsets into exactly that form
//  3. Articles can be large; holding one copy per step is enough
type Page struct {
	// URL is the canonical node of the final response URL (after redirects).
	URL Node `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type of the response.
	ContentType string `json:"content_type,omitempty"`

	// Content is the cleaned HTML with whitespace collapsed.
	Content string `json:"-"`

	// Hash is the SHA-256 hash of Content, used in debug logs to spot
	// identical pages served under different URLs.
	Hash string `json:"hash,omitempty"`
}

// ComputeHash calculates the SHA-256 hash of the cleaned content.
// An empty page gets an empty hash.
func (p *Page) ComputeHash() {
	if len(p.Content) == 0 {
		p.Hash = ""
		return
	}
	sum := sha256.Sum256([]byte(p.Content))
	p.Hash = hex.EncodeToString(sum[:])
}

// HasContent reports whether the page carries usable content.
func (p *Page) HasContent() bool {
	return p != nil && p.Content != ""
}
