package crawler

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/philowalk/internal/model"
)

const testBase = "https://en.wikipedia.org/wiki/Start"

func article(body string) string {
	return `<div class="mw-parser-output">` + body + `</div>`
}

func testPage(content string) *model.Page {
	return &model.Page{URL: model.ParseNode(testBase), Content: content}
}

// TestParserCandidates tests structural candidate filtering.
func TestParserCandidates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "paragraph links in document order",
			content: article(`<p><a href="/wiki/A">A</a> and <a href="/wiki/B">B</a></p><p><a href="/wiki/C">C</a></p>`),
			want:    []string{"/wiki/A", "/wiki/B", "/wiki/C"},
		},
		{
			name:    "italic links are skipped",
			content: article(`<p><i><a href="/wiki/Italic">I</a></i> <a href="/wiki/Plain">P</a></p>`),
			want:    []string{"/wiki/Plain"},
		},
		{
			name:    "image links are skipped",
			content: article(`<p><a class="image" href="/wiki/File:X.png">x</a><a class="mw-file-description image" href="/wiki/File:Y.png">y</a><a href="/wiki/Text">t</a></p>`),
			want:    []string{"/wiki/Text"},
		},
		{
			name:    "list items and spans are skipped",
			content: article(`<ul><li><a href="/wiki/List">L</a></li></ul><p><span><a href="/wiki/Span">S</a></span></p><p><a href="/wiki/Para">P</a></p>`),
			want:    []string{"/wiki/Para"},
		},
		{
			name:    "links outside the article container are skipped",
			content: `<div class="navbox"><p><a href="/wiki/Nav">N</a></p></div>` + article(`<p><a href="/wiki/Body">B</a></p>`),
			want:    []string{"/wiki/Body"},
		},
		{
			name:    "container class may be one of several",
			content: `<div class="mw-content-ltr mw-parser-output" lang="en"><p><a href="/wiki/Multi">M</a></p></div>`,
			want:    []string{"/wiki/Multi"},
		},
		{
			name:    "nested container divs still count",
			content: article(`<div class="inner"><p><a href="/wiki/Deep">D</a></p></div>`),
			want:    []string{"/wiki/Deep"},
		},
		{
			name:    "fragment and empty hrefs are skipped",
			content: article(`<p><a href="#cite">c</a><a href="">e</a><a>none</a><a href="/wiki/Real">r</a></p>`),
			want:    []string{"/wiki/Real"},
		},
		{
			name:    "no container means no candidates",
			content: `<p><a href="/wiki/A">A</a></p>`,
			want:    nil,
		},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got []string
			for _, c := range p.Candidates(tt.content) {
				got = append(got, c.Href)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("candidates mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestParserCandidateOffsets tests that offsets point at the anchor tags.
func TestParserCandidateOffsets(t *testing.T) {
	t.Parallel()

	t.Run("offsets point at opening tags", func(t *testing.T) {
		t.Parallel()

		content := article(`<p>x <a href="/wiki/A">A</a> y <a href="/wiki/A">again</a></p>`)
		candidates := NewParser().Candidates(content)
		if len(candidates) != 2 {
			t.Fatalf("expected 2 candidates, got %d", len(candidates))
		}
		for i, c := range candidates {
			if !strings.HasPrefix(content[c.Offset:], `<a href="/wiki/A">`) {
				t.Errorf("candidate %d offset %d does not point at its tag", i, c.Offset)
			}
		}
		if candidates[0].Offset >= candidates[1].Offset {
			t.Errorf("repeated href should resolve to a later occurrence: %d then %d",
				candidates[0].Offset, candidates[1].Offset)
		}
	})

	t.Run("escaped hrefs are located", func(t *testing.T) {
		t.Parallel()

		content := article(`<p>q <a href="/w/index.php?a=1&amp;b=2">Q</a></p>`)
		candidates := NewParser().Candidates(content)
		if len(candidates) != 1 {
			t.Fatalf("expected 1 candidate, got %d", len(candidates))
		}
		if candidates[0].Href != "/w/index.php?a=1&b=2" {
			t.Errorf("unexpected href %q", candidates[0].Href)
		}
		if candidates[0].Offset != strings.Index(content, "<a ") {
			t.Errorf("unexpected offset %d", candidates[0].Offset)
		}
	})

	t.Run("attribute written differently is not located", func(t *testing.T) {
		t.Parallel()

		content := article(`<p><a href='/wiki/Single'>S</a></p>`)
		candidates := NewParser().Candidates(content)
		if len(candidates) != 1 || candidates[0].Offset != -1 {
			t.Errorf("expected one candidate with offset -1, got %+v", candidates)
		}
	})
}

// TestParserNextLink tests the parenthesis heuristic.
func TestParserNextLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    model.Node
		found   bool
	}{
		{
			name:    "first plain link wins",
			content: article(`<p>The <a href="/wiki/Greek_language">Greek</a> of <a href="/wiki/Antiquity">old</a></p>`),
			want:    "https://en.wikipedia.org/wiki/Greek_language",
			found:   true,
		},
		{
			name:    "link inside parentheses is skipped",
			content: article(`<p>Word (from <a href="/wiki/Latin">Latin</a>) is a <a href="/wiki/Noun">noun</a></p>`),
			want:    "https://en.wikipedia.org/wiki/Noun",
			found:   true,
		},
		{
			name:    "parenthesis further back than the window is ignored",
			content: article(`<p>Word (a long aside here <a href="/wiki/Aside">aside</a>) <a href="/wiki/Next">n</a></p>`),
			want:    "https://en.wikipedia.org/wiki/Aside",
			found:   true,
		},
		{
			name:    "counter carries across candidates",
			content: article(`<p>x ((<a href="/wiki/One">1</a>) <a href="/wiki/Two">2</a>) <a href="/wiki/Three">3</a></p>`),
			want:    "https://en.wikipedia.org/wiki/Three",
			found:   true,
		},
		{
			name:    "window at the start of content is clamped",
			content: `<div class="mw-parser-output"><p><a href="/wiki/First">F</a></p></div>`,
			want:    "https://en.wikipedia.org/wiki/First",
			found:   true,
		},
		{
			name:    "absolute links and fragments resolve canonically",
			content: article(`<p><a href="https://EN.wikipedia.org/wiki/Logic#Intro">L</a></p>`),
			want:    "https://en.wikipedia.org/wiki/Logic",
			found:   true,
		},
		{
			name:    "non-http schemes are passed over",
			content: article(`<p><a href="mailto:a@example.org">m</a> <a href="/wiki/Web">w</a></p>`),
			want:    "https://en.wikipedia.org/wiki/Web",
			found:   true,
		},
		{
			name:    "all candidates inside parentheses",
			content: article(`<p>See (<a href="/wiki/A">A</a></p>`),
			found:   false,
		},
		{
			name:    "no candidates",
			content: article(`<p>Plain text only.</p>`),
			found:   false,
		},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := p.NextLink(testPage(tt.content))
			if ok != tt.found {
				t.Fatalf("expected found=%v, got %v (%q)", tt.found, ok, got)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestParserNextLinkDeterministic tests that selection is a pure function.
func TestParserNextLinkDeterministic(t *testing.T) {
	t.Parallel()

	content := article(`<p>A (b <a href="/wiki/X">x</a>) c <a href="/wiki/Y">y</a> <a href="/wiki/Z">z</a></p>`)
	p := NewParser()

	first, ok := p.NextLink(testPage(content))
	if !ok {
		t.Fatal("expected a link")
	}
	for range 10 {
		again, _ := p.NextLink(testPage(content))
		if again != first {
			t.Fatalf("selection changed from %q to %q", first, again)
		}
	}
}

// TestParserNextLinkEmptyPage tests pages without content.
func TestParserNextLinkEmptyPage(t *testing.T) {
	t.Parallel()

	p := NewParser()
	if _, ok := p.NextLink(nil); ok {
		t.Error("nil page should have no link")
	}
	if _, ok := p.NextLink(&model.Page{URL: model.ParseNode(testBase)}); ok {
		t.Error("empty page should have no link")
	}
}

// TestParenBalance tests window counting directly.
func TestParenBalance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		content string
		offset  int
		want    int
	}{
		{"(abc", 4, 1},
		{"(a)b", 4, 0},
		{")))", 3, -3},
		{"(0123456789X", 11, 0},
		{"((", 1, 1},
		{"", 0, 0},
	}

	for _, tt := range tests {
		if got := parenBalance(tt.content, tt.offset, DefaultLookback); got != tt.want {
			t.Errorf("parenBalance(%q, %d) = %d, want %d", tt.content, tt.offset, got, tt.want)
		}
	}
}

// TestParserOptions tests parser configuration.
func TestParserOptions(t *testing.T) {
	t.Parallel()

	p := NewParser(WithLookback(0), WithContentClass(""))
	if p.lookback != DefaultLookback || p.contentClass != DefaultContentClass {
		t.Errorf("invalid options should keep defaults, got %d %q", p.lookback, p.contentClass)
	}

	p = NewParser(WithContentClass("body"), WithLookback(3))
	content := `<div class="body"><p>(ab <a href="/wiki/A">A</a></p></div>`
	got, ok := p.NextLink(testPage(content))
	if !ok || got != "https://en.wikipedia.org/wiki/A" {
		t.Errorf("expected short window to miss the parenthesis, got %q %v", got, ok)
	}
}
