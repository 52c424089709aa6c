package markdown

import (
	"strings"
	"testing"
)

func TestTitleFromFilename(t *testing.T) {
	cases := map[string]string{
		"posts/my-first_post.md": "My First Post",
		"hello.md":               "Hello",
		"2024-recap.md":          "2024 Recap",
		"don't-panic.md":         "Don't Panic",
		"émigré-notes.md":        "Émigré Notes",
	}
	for input, want := range cases {
		if got := TitleFromFilename(input); got != want {
			t.Fatalf("TitleFromFilename(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestExtractSummaryUsesFirstMeaningfulParagraph(t *testing.T) {
	content := "---\ntitle: x\n---\n# Heading\n\nShort\n\nThis is the **first** paragraph with a [link](https://example.com).\n\nSecond paragraph."

	got := ExtractSummary(content, 0)
	want := "This is the first paragraph with a link."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestExtractSummaryTruncatesAtWordBoundary(t *testing.T) {
	content := strings.Repeat("word ", 100)

	got := ExtractSummary(content, 20)
	if got != "word word word word..." {
		t.Fatalf("unexpected truncation %q", got)
	}
}

func TestExtractSummaryStripsHTML(t *testing.T) {
	got := ExtractSummary("<p>Paragraph with <em>inline</em> markup inside.</p>", 300)
	if got != "Paragraph with inline markup inside." {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestExtractSummaryEmpty(t *testing.T) {
	if got := ExtractSummary("# Only a heading", 300); got != "" {
		t.Fatalf("expected empty summary, got %q", got)
	}
}
