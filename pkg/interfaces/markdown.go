package interfaces

// MarkdownRenderer converts Markdown bytes into HTML. Implementations must be
// safe for concurrent use; the article service renders on every write.
type MarkdownRenderer interface {
	Render(markdown []byte) ([]byte, error)
	RenderWithOptions(markdown []byte, opts RenderOptions) ([]byte, error)
}

// RenderOptions customises Markdown rendering. Names stay readable for
// configuration unmarshalling.
type RenderOptions struct {
	Extensions []string `yaml:"extensions" json:"extensions"`
	HardWraps  bool     `yaml:"hard_wraps" json:"hard_wraps"`
	SafeMode   bool     `yaml:"safe_mode" json:"safe_mode"`
	Highlight  bool     `yaml:"highlight" json:"highlight"`
	Style      string   `yaml:"style" json:"style"`
}
