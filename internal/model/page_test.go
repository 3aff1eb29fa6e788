package model

import "testing"

// TestPageComputeHash tests the ComputeHash method.
func TestPageComputeHash(t *testing.T) {
	t.Parallel()

	t.Run("computes SHA256 hash of content", func(t *testing.T) {
		t.Parallel()

		page := &Page{Content: "Hello, World!"}
		page.ComputeHash()

		// Expected SHA256 of "Hello, World!"
		expected := "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f"
		if page.Hash != expected {
			t.Errorf("got %q, expected %q", page.Hash, expected)
		}
	})

	t.Run("empty content produces empty hash", func(t *testing.T) {
		t.Parallel()

		page := &Page{Hash: "stale"}
		page.ComputeHash()

		if page.Hash != "" {
			t.Errorf("expected empty hash, got %q", page.Hash)
		}
	})
}

// TestPageHasContent tests the HasContent method.
func TestPageHasContent(t *testing.T) {
	t.Parallel()

	var nilPage *Page
	if nilPage.HasContent() {
		t.Error("nil page should have no content")
	}
	if (&Page{}).HasContent() {
		t.Error("empty page should have no content")
	}
	if !(&Page{Content: "<p>x</p>"}).HasContent() {
		t.Error("page with content should report content")
	}
}
