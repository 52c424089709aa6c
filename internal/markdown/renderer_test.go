package markdown

import (
	"strings"
	"testing"

	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

func TestGoldmarkRendererDefaults(t *testing.T) {
	r := NewGoldmarkRenderer(interfaces.RenderOptions{})

	out, err := r.Render([]byte("# Title\n\nHello *world*\n\n- [x] done\n\n<div>raw</div>\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	for _, fragment := range []string{`<h1 id="title">Title</h1>`, "<em>world</em>", `type="checkbox"`, "<div>raw</div>"} {
		if !strings.Contains(html, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, html)
		}
	}
}

func TestGoldmarkRendererSafeMode(t *testing.T) {
	r := NewGoldmarkRenderer(interfaces.RenderOptions{})

	out, err := r.RenderWithOptions([]byte("<div>raw</div>\n"), interfaces.RenderOptions{SafeMode: true})
	if err != nil {
		t.Fatalf("RenderWithOptions: %v", err)
	}
	if strings.Contains(string(out), "<div>raw</div>") {
		t.Fatalf("expected raw HTML to be omitted, got %s", out)
	}
}

func TestGoldmarkRendererHighlightsFencedCode(t *testing.T) {
	r := NewGoldmarkRenderer(interfaces.RenderOptions{Highlight: true, Style: "monokai"})

	out, err := r.Render([]byte("```go\npackage main\n```\n"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "<pre") || !strings.Contains(html, `style="`) {
		t.Fatalf("expected inline styled highlight output, got %s", html)
	}
	if !strings.Contains(html, "package") {
		t.Fatalf("expected code text to survive, got %s", html)
	}
}

func TestCollectExtensionsIgnoresUnknownAndDuplicates(t *testing.T) {
	exts := collectExtensions([]string{"table", "TABLE", "nope", "", "footnote"})
	if len(exts) != 2 {
		t.Fatalf("expected 2 extensions, got %d", len(exts))
	}
}
