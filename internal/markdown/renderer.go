package markdown

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"

	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

const defaultHighlightStyle = "github"

// GoldmarkRenderer implements interfaces.MarkdownRenderer. The engine built
// for the default options is reused; per-call overrides build a fresh one.
type GoldmarkRenderer struct {
	defaults interfaces.RenderOptions

	once   sync.Once
	engine goldmark.Markdown
}

var _ interfaces.MarkdownRenderer = (*GoldmarkRenderer)(nil)

// NewGoldmarkRenderer constructs a renderer. Without explicit extensions it
// enables GFM, linkify, task lists, footnotes and typographic quotes, and raw
// HTML passes through unless SafeMode is set.
func NewGoldmarkRenderer(defaults interfaces.RenderOptions) *GoldmarkRenderer {
	return &GoldmarkRenderer{defaults: defaults}
}

// Render converts markdown using the renderer defaults.
func (r *GoldmarkRenderer) Render(markdown []byte) ([]byte, error) {
	r.once.Do(func() {
		r.engine = newGoldmarkEngine(r.defaults)
	})
	return convert(r.engine, markdown)
}

// RenderWithOptions converts markdown with the supplied overrides.
func (r *GoldmarkRenderer) RenderWithOptions(markdown []byte, opts interfaces.RenderOptions) ([]byte, error) {
	return convert(newGoldmarkEngine(opts), markdown)
}

func convert(engine goldmark.Markdown, markdown []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

func newGoldmarkEngine(opts interfaces.RenderOptions) goldmark.Markdown {
	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}
	if opts.Highlight {
		rendererOptions = append(rendererOptions, renderer.WithNodeRenderers(
			util.Prioritized(newHighlightRenderer(opts.Style), 200),
		))
	}

	return goldmark.New(
		goldmark.WithExtensions(collectExtensions(opts.Extensions)...),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(rendererOptions...),
	)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
	"typographer":   extension.Typographer,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
			extension.Footnote,
			extension.Typographer,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		if ext, ok := extensionRegistry[key]; ok {
			extenders = append(extenders, ext)
			seen[key] = struct{}{}
		}
	}
	return extenders
}

// highlightRenderer replaces goldmark's fenced code output with chroma
// highlighted HTML using inline styles.
type highlightRenderer struct {
	style     *chroma.Style
	formatter *chromahtml.Formatter
}

func newHighlightRenderer(styleName string) *highlightRenderer {
	if strings.TrimSpace(styleName) == "" {
		styleName = defaultHighlightStyle
	}
	return &highlightRenderer{
		style:     styles.Get(styleName),
		formatter: chromahtml.New(chromahtml.WithClasses(false), chromahtml.TabWidth(4)),
	}
}

func (r *highlightRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindFencedCodeBlock, r.renderFencedCodeBlock)
}

func (r *highlightRenderer) renderFencedCodeBlock(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	block := node.(*ast.FencedCodeBlock)

	var code strings.Builder
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		code.Write(segment.Value(source))
	}

	lexer := lexers.Get(string(block.Language(source)))
	if lexer == nil {
		lexer = lexers.Fallback
	}
	iterator, err := chroma.Coalesce(lexer).Tokenise(nil, code.String())
	if err != nil {
		return ast.WalkStop, fmt.Errorf("highlight code block: %w", err)
	}
	if err := r.formatter.Format(w, r.style, iterator); err != nil {
		return ast.WalkStop, fmt.Errorf("highlight code block: %w", err)
	}
	return ast.WalkSkipChildren, nil
}
