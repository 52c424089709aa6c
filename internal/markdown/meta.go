package markdown

import (
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
)

// SplitFrontmatter separates leading frontmatter (YAML, TOML or JSON) from
// content received by the server. Content without frontmatter comes back
// unchanged with an empty meta map.
func SplitFrontmatter(content string) (map[string]any, string, error) {
	meta := map[string]any{}
	body, err := frontmatter.Parse(strings.NewReader(content), &meta)
	if err != nil {
		return nil, "", &FrontmatterParseError{Err: err}
	}
	normalized := make(map[string]any, len(meta))
	for key, value := range meta {
		normalized[key] = normalizeValue(value)
	}
	return normalized, strings.TrimSpace(string(body)), nil
}

// ArticleMeta keeps the keys that describe the article itself, dropping the
// publishing tool's bookkeeping keys.
func ArticleMeta(meta map[string]any) map[string]any {
	out := make(map[string]any, len(meta))
	for key, value := range meta {
		if strings.HasPrefix(key, ReservedPrefix) {
			continue
		}
		out[key] = value
	}
	return out
}

// normalizeValue converts the map[any]any values produced by YAML v2
// decoding into JSON friendly map[string]any.
func normalizeValue(value any) any {
	switch v := value.(type) {
	case map[any]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[fmt.Sprint(key)] = normalizeValue(inner)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, inner := range v {
			out[key] = normalizeValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, inner := range v {
			out[i] = normalizeValue(inner)
		}
		return out
	default:
		return v
	}
}
