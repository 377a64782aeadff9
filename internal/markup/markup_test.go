package markup

import (
	"strings"
	"testing"
)

func TestRenderParagraphs(t *testing.T) {
	got := string(Render("first paragraph\n\nsecond paragraph"))
	if !strings.Contains(got, "<p>first paragraph</p>") {
		t.Errorf("missing first paragraph: %q", got)
	}
	if !strings.Contains(got, "<p>second paragraph</p>") {
		t.Errorf("missing second paragraph: %q", got)
	}
}

func TestRenderHorizontalRule(t *testing.T) {
	got := string(Render("above\n---\nbelow"))
	if !strings.Contains(got, "<hr>") {
		t.Errorf("missing hr: %q", got)
	}
}

func TestRenderBold(t *testing.T) {
	got := string(Render("you spent **a lot** this week"))
	if !strings.Contains(got, "you spent <strong>a lot</strong> this week") {
		t.Errorf("bold span not rendered: %q", got)
	}
}

func TestRenderBullets(t *testing.T) {
	got := string(Render("* one\n* two\nplain"))
	if !strings.Contains(got, "<ul>\n<li>one</li>\n<li>two</li>\n</ul>") {
		t.Errorf("bullet list not grouped: %q", got)
	}
	if !strings.Contains(got, "<p>plain</p>") {
		t.Errorf("trailing paragraph missing: %q", got)
	}
}

func TestRenderEscapesHTML(t *testing.T) {
	got := string(Render("<script>alert(1)</script>"))
	if strings.Contains(got, "<script>") {
		t.Errorf("model text must be escaped: %q", got)
	}
}

func TestRenderDoesNotExtendGrammar(t *testing.T) {
	// Headings, numbered lists and inline code are outside the subset and
	// must come through as plain paragraphs.
	got := string(Render("# heading\n1. numbered\n`code`"))
	if strings.Contains(got, "<h1>") || strings.Contains(got, "<ol>") || strings.Contains(got, "<code>") {
		t.Errorf("grammar extended beyond the three forms: %q", got)
	}
	if strings.Count(got, "<p>") != 3 {
		t.Errorf("expected 3 plain paragraphs: %q", got)
	}
}
