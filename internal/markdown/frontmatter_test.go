package markdown

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseDocumentWithoutBlock(t *testing.T) {
	raw := "# Hello\n\nSome body text.\n"

	doc, err := ParseDocument(raw)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.HasBlock {
		t.Fatalf("expected no frontmatter block")
	}
	if doc.Body != raw {
		t.Fatalf("expected body to be the untouched input, got %q", doc.Body)
	}
	if doc.Record.Len() != 0 || doc.Indentation != "" {
		t.Fatalf("expected empty record and indentation, got %d keys indentation %q", doc.Record.Len(), doc.Indentation)
	}
}

func TestRenderWithoutOriginalBlockPrependsOne(t *testing.T) {
	doc, err := ParseDocument("# Hello\n\nbody")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	doc.Record.Set(KeyTitle, "Hello")

	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "---\ntitle: Hello\n---\n\n# Hello\n\nbody"
	if out != want {
		t.Fatalf("unexpected output\nwant: %q\ngot:  %q", want, out)
	}
}

func TestParseDocumentExtractsReservedAndCustomKeys(t *testing.T) {
	raw := "---\n" +
		"title: First Post\n" +
		"summary: A short summary\n" +
		"slug: first-post\n" +
		"draft: false\n" +
		"privateplot-id: abc123\n" +
		"privateplot-host: blog.example.com\n" +
		"privateplot-last-published: 2024-01-01T12:00:00.000Z\n" +
		"tags: [go, blog]\n" +
		"---\n\n  Body paragraph.  \n"

	doc, err := ParseDocument(raw)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	rec := doc.Record
	if rec.Title() != "First Post" || rec.Summary() != "A short summary" || rec.Slug() != "first-post" {
		t.Fatalf("unexpected reserved keys: %q %q %q", rec.Title(), rec.Summary(), rec.Slug())
	}
	if rec.Draft() {
		t.Fatalf("expected draft to be false")
	}
	if rec.ID() != "abc123" || rec.Host() != "blog.example.com" {
		t.Fatalf("unexpected identity %q %q", rec.ID(), rec.Host())
	}
	published, ok := rec.LastPublished()
	if !ok || !published.Equal(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected last published %v (%v)", published, ok)
	}
	var tags []string
	if err := rec.Decode("tags", &tags); err != nil || len(tags) != 2 || tags[0] != "go" {
		t.Fatalf("expected pass-through tags, got %v (%v)", tags, err)
	}
	if doc.Body != "Body paragraph." {
		t.Fatalf("expected trimmed body, got %q", doc.Body)
	}
}

func TestRenderUnmodifiedDocumentIsIdentity(t *testing.T) {
	raw := "---\ntitle:   'Spaced'   # comment\nlist:\n    - a\n---\r\nBody\r\n"

	doc, err := ParseDocument(raw)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if out != raw {
		t.Fatalf("expected identity round trip\nwant: %q\ngot:  %q", raw, out)
	}
}

func TestRenderSplicesOnlyTheDelimitedRegion(t *testing.T) {
	raw := "---\ntitle: Post\ntags: [a, b]\ncustom: 1\n---\n\nBody text\r\nmore ---\n"

	doc, err := ParseDocument(raw)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	doc.Record.SetIdentity("abc123", "example.com")

	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.HasSuffix(out, "\n---\n\nBody text\r\nmore ---\n") {
		t.Fatalf("expected the text after the block to be untouched, got %q", out)
	}
	if !strings.HasPrefix(out, "---\ntitle: Post\ntags: [a, b]\ncustom: 1\n") {
		t.Fatalf("expected existing keys to keep order and style, got %q", out)
	}
	if !strings.Contains(out, "privateplot-id: abc123\nprivateplot-host: example.com\n") {
		t.Fatalf("expected identity keys appended, got %q", out)
	}

	reparsed, err := ParseDocument(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if reparsed.Record.ID() != "abc123" || reparsed.Body != doc.Body {
		t.Fatalf("unexpected reparse %q %q", reparsed.Record.ID(), reparsed.Body)
	}
}

func TestRenderKeepsNestedIndentWidthAtColumnZero(t *testing.T) {
	raw := "---\ntitle: a\ntags:\n    - x\n---\n\nBody\n"

	doc, err := ParseDocument(raw)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.Indentation != "    " {
		t.Fatalf("expected four space indentation, got %q", doc.Indentation)
	}
	doc.Record.Set(KeyID, "abc")

	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "---\ntitle: a\ntags:\n    - x\nprivateplot-id: abc\n---\n\nBody\n"
	if out != want {
		t.Fatalf("unexpected render\nwant: %q\ngot:  %q", want, out)
	}
}

func TestRenderKeepsCRLFLineEndings(t *testing.T) {
	raw := "---\r\ntitle: a\r\n---\r\nbody line\r\n"

	doc, err := ParseDocument(raw)
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	doc.Record.Set(KeyID, "abc")

	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "---\r\ntitle: a\r\nprivateplot-id: abc\r\n---\r\nbody line\r\n"
	if out != want {
		t.Fatalf("unexpected render\nwant: %q\ngot:  %q", want, out)
	}

	reparsed, err := ParseDocument(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if reparsed.Record.ID() != "abc" || reparsed.Record.Title() != "a" {
		t.Fatalf("unexpected reparse id=%q title=%q", reparsed.Record.ID(), reparsed.Record.Title())
	}
}

func TestParseDocumentInvalidYAML(t *testing.T) {
	_, err := ParseDocument("---\ntitle: [unclosed\n---\nbody")
	var parseErr *FrontmatterParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected FrontmatterParseError, got %v", err)
	}
}

func TestParseDocumentRejectsNonMapping(t *testing.T) {
	_, err := ParseDocument("---\n- a\n- b\n---\nbody")
	var parseErr *FrontmatterParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected FrontmatterParseError, got %v", err)
	}
}

func TestParseDocumentEmptyAndUnclosedBlocks(t *testing.T) {
	doc, err := ParseDocument("---\n---\nbody")
	if err != nil {
		t.Fatalf("ParseDocument empty block: %v", err)
	}
	if !doc.HasBlock || doc.Record.Len() != 0 || doc.Body != "body" {
		t.Fatalf("unexpected empty block parse: %+v", doc)
	}

	raw := "---\ntitle: never closed\nbody"
	doc, err = ParseDocument(raw)
	if err != nil {
		t.Fatalf("ParseDocument unclosed: %v", err)
	}
	if doc.HasBlock || doc.Body != raw {
		t.Fatalf("expected unclosed block to be treated as body, got %+v", doc)
	}
}

func TestIndentationDetection(t *testing.T) {
	doc, err := ParseDocument("---\ntitle: x\ntags:\n    - a\n---\nbody")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.Indentation != "    " {
		t.Fatalf("expected four space indentation, got %q", doc.Indentation)
	}
}

func TestIndentedBlockKeepsPrefixOnRewrite(t *testing.T) {
	doc, err := ParseDocument("---\n  title: x\n  draft: true\n---\nbody")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	if doc.Indentation != "  " || !doc.Record.Draft() {
		t.Fatalf("unexpected parse: indentation %q draft %v", doc.Indentation, doc.Record.Draft())
	}
	doc.Record.SetIdentity("abc123", "example.com")

	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := "---\n  title: x\n  draft: true\n  privateplot-id: abc123\n  privateplot-host: example.com\n---\nbody"
	if out != want {
		t.Fatalf("unexpected output\nwant: %q\ngot:  %q", want, out)
	}
}

func TestLastPublishedRoundTrip(t *testing.T) {
	doc, err := ParseDocument("---\ntitle: x\n---\nbody")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.FixedZone("CEST", 2*3600))
	doc.Record.SetLastPublished(now)

	out, err := doc.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	reparsed, err := ParseDocument(out)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	got, ok := reparsed.Record.LastPublished()
	if !ok || !got.Equal(now) {
		t.Fatalf("expected %v, got %v (%v)", now, got, ok)
	}
	if got.Location() != time.UTC {
		t.Fatalf("expected UTC timestamp, got %v", got.Location())
	}
}

func TestRecordDeleteAndClearIdentity(t *testing.T) {
	doc, err := ParseDocument("---\ntitle: x\nprivateplot-id: abc\nprivateplot-host: h\nprivateplot-last-published: 2024-01-01T00:00:00Z\n---\nbody")
	if err != nil {
		t.Fatalf("ParseDocument: %v", err)
	}
	doc.Record.ClearIdentity()
	if keys := doc.Record.Keys(); len(keys) != 1 || keys[0] != KeyTitle {
		t.Fatalf("expected only title to remain, got %v", keys)
	}
	if doc.Record.Delete("missing") {
		t.Fatalf("expected Delete of a missing key to report false")
	}
	if _, ok := doc.Record.LastPublished(); ok {
		t.Fatalf("expected last published to be cleared")
	}
}
