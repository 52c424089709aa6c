package markdown

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultSummaryLength bounds summaries extracted from article content.
const DefaultSummaryLength = 300

const minParagraphLength = 10

var (
	htmlTagPattern     = regexp.MustCompile(`<[^>]*>`)
	leadingFrontmatter = regexp.MustCompile(`^---[\s\S]*?---`)
	whitespaceRun      = regexp.MustCompile(`\s+`)
	blankLineRun       = regexp.MustCompile(`\n{3,}`)

	// applied in order
	markdownStrippers = []struct {
		pattern *regexp.Regexp
		replace string
	}{
		{regexp.MustCompile(`(?m)^#{1,6}\s+.+$`), ""},
		{regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`), "$1"},
		{regexp.MustCompile("`[^`]+`"), ""},
		{regexp.MustCompile("```[\\s\\S]*?```"), ""},
		{regexp.MustCompile(`(?m)^\|.+\|$`), ""},
		{regexp.MustCompile(`(?m)^[-|].+$`), ""},
		{regexp.MustCompile(`[*_]{1,3}([^*_]+)[*_]{1,3}`), "$1"},
		{regexp.MustCompile(`!\[([^\]]*)\]\([^)]+\)`), ""},
		{regexp.MustCompile(`(?m)^>\s+.+$`), ""},
		{regexp.MustCompile(`(?m)^[-*_]{3,}$`), ""},
		{regexp.MustCompile(`(?m)^[\s-]*[-+*]\s+`), ""},
		{regexp.MustCompile(`(?m)^\s*\d+\.\s+`), ""},
	}

	summaryBreaks = []string{"。", "！", "？", "，", "；", " "}
)

// TitleFromFilename derives a display title from a file path: the extension
// is dropped, dashes and underscores become spaces and every word starts with
// a capital letter.
func TitleFromFilename(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)

	var b strings.Builder
	b.Grow(len(base))
	atWordStart := true
	for _, r := range base {
		if unicode.IsSpace(r) {
			atWordStart = true
			b.WriteRune(r)
			continue
		}
		if atWordStart {
			r = unicode.ToUpper(r)
			atWordStart = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ExtractSummary returns the first meaningful paragraph of content with
// markdown and HTML removed, cut to maxLength runes. Long paragraphs end at
// the last punctuation mark or space followed by "...".
func ExtractSummary(content string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultSummaryLength
	}

	clean := strings.TrimSpace(leadingFrontmatter.ReplaceAllString(content, ""))
	clean = htmlTagPattern.ReplaceAllString(stripMarkdown(clean), "")

	var paragraph string
	for _, candidate := range strings.Split(clean, "\n\n") {
		if utf8.RuneCountInString(strings.TrimSpace(candidate)) >= minParagraphLength {
			paragraph = candidate
			break
		}
	}

	summary := strings.TrimSpace(whitespaceRun.ReplaceAllString(paragraph, " "))
	runes := []rune(summary)
	if len(runes) <= maxLength {
		return summary
	}

	truncated := string(runes[:maxLength])
	end := 0
	for _, mark := range summaryBreaks {
		if idx := strings.LastIndex(truncated, mark); idx > 0 && idx+len(mark) > end {
			end = idx + len(mark)
		}
	}
	if end > 0 {
		return strings.TrimRight(truncated[:end], " ") + "..."
	}
	return truncated + "..."
}

func stripMarkdown(text string) string {
	for _, stripper := range markdownStrippers {
		text = stripper.pattern.ReplaceAllString(text, stripper.replace)
	}
	return strings.TrimSpace(blankLineRun.ReplaceAllString(text, "\n\n"))
}
