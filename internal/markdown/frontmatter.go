package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const frontmatterDelimiter = "---"

const (
	defaultIndentWidth = 2
	minIndentWidth     = 2
	maxIndentWidth     = 9
)

// FrontmatterParseError reports a delimited frontmatter block whose contents
// are not a valid YAML mapping.
type FrontmatterParseError struct {
	Path string
	Err  error
}

func (e *FrontmatterParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid frontmatter: %v", e.Err)
	}
	return fmt.Sprintf("invalid frontmatter in %s: %v", e.Path, e.Err)
}

func (e *FrontmatterParseError) Unwrap() error {
	return e.Err
}

// Document is a markdown file split into its frontmatter record and body.
type Document struct {
	Record *Record
	// Body is the text after the closing delimiter, trimmed. Without a block
	// it is the entire input, untouched.
	Body string
	// Indentation is the leading space run of the first indented line inside
	// the block.
	Indentation string
	// HasBlock reports whether the source carried a delimited block.
	HasBlock bool

	source   string
	blockEnd int
	prefixed bool
	newline  string
}

// ParseDocument splits raw into frontmatter and body. A block starts with a
// first line of exactly "---" and ends at the next line of exactly "---".
func ParseDocument(raw string) (*Document, error) {
	doc := &Document{
		Record:  NewRecord(),
		Body:    raw,
		source:  raw,
		newline: "\n",
	}

	yamlText, end, ok := locateBlock(raw)
	if !ok {
		return doc, nil
	}

	var node yaml.Node
	if strings.TrimSpace(yamlText) != "" {
		if err := yaml.Unmarshal([]byte(yamlText), &node); err != nil {
			return nil, &FrontmatterParseError{Err: err}
		}
	}
	record, err := newRecordFromNode(&node)
	if err != nil {
		return nil, &FrontmatterParseError{Err: err}
	}

	if strings.HasPrefix(raw, frontmatterDelimiter+"\r\n") {
		doc.newline = "\r\n"
	}
	doc.Record = record
	doc.HasBlock = true
	doc.blockEnd = end
	doc.Body = strings.TrimSpace(raw[end:])
	doc.Indentation, doc.prefixed = detectIndentation(yamlText)
	return doc, nil
}

// Render serialises the document. Unmodified documents reproduce the source
// exactly. With an original block only the delimited region is replaced and
// every byte after the closing delimiter is kept, and the block keeps the line
// ending of its opening delimiter. Without one the output is
// "---\n<yaml>---\n\n<body>".
func (d *Document) Render() (string, error) {
	if d.HasBlock && !d.Record.Modified() {
		return d.source, nil
	}

	block, err := MarshalRecord(d.Record, d.Indentation, d.prefixed)
	if err != nil {
		return "", err
	}
	opening := frontmatterDelimiter + "\n" + block + frontmatterDelimiter
	if d.newline == "\r\n" {
		opening = strings.ReplaceAll(opening, "\n", "\r\n")
	}

	if !d.HasBlock {
		return opening + "\n\n" + d.Body, nil
	}
	return opening + d.source[d.blockEnd:], nil
}

// MarshalRecord encodes the record as the YAML text placed between the
// delimiters, always ending in a newline unless empty. When prefixed is true
// the indentation is prepended to every line; otherwise its width becomes the
// nesting indent.
func MarshalRecord(rec *Record, indentation string, prefixed bool) (string, error) {
	if rec == nil || rec.Len() == 0 {
		return "", nil
	}

	width := defaultIndentWidth
	if !prefixed && indentation != "" {
		width = clampIndent(len(indentation))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(width)
	if err := enc.Encode(rec.doc); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}

	text := buf.String()
	if !prefixed || indentation == "" {
		return text, nil
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i == len(lines)-1 && line == "" {
			continue
		}
		lines[i] = indentation + line
	}
	return strings.Join(lines, "\n"), nil
}

// locateBlock returns the YAML text of a leading frontmatter block and the
// byte offset just past the closing delimiter, before any line break.
func locateBlock(raw string) (string, int, bool) {
	first, rest, ok := cutLine(raw)
	if !ok || first != frontmatterDelimiter {
		return "", 0, false
	}

	offset := len(raw) - len(rest)
	start := offset
	for {
		line, remaining, more := cutLine(rest)
		if line == frontmatterDelimiter {
			return raw[start:offset], offset + len(line), true
		}
		if !more {
			return "", 0, false
		}
		offset += len(rest) - len(remaining)
		rest = remaining
	}
}

// cutLine splits s at the first line break, stripping a trailing carriage
// return from the line. more is false when s had no line break.
func cutLine(s string) (line, rest string, more bool) {
	idx := strings.IndexByte(s, '\n')
	if idx < 0 {
		return strings.TrimSuffix(s, "\r"), "", false
	}
	return strings.TrimSuffix(s[:idx], "\r"), s[idx+1:], true
}

// detectIndentation finds the first indented line and reports whether the
// block's top level itself is indented.
func detectIndentation(yamlText string) (string, bool) {
	topLevelIndented := false
	seenContent := false
	indentation := ""
	for _, line := range strings.Split(yamlText, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lead := len(line) - len(strings.TrimLeft(line, " "))
		if !seenContent && !strings.HasPrefix(strings.TrimSpace(line), "#") {
			seenContent = true
			topLevelIndented = lead > 0
		}
		if lead > 0 && indentation == "" {
			indentation = line[:lead]
		}
		if seenContent && indentation != "" {
			break
		}
	}
	return indentation, topLevelIndented && indentation != ""
}

func clampIndent(width int) int {
	if width < minIndentWidth {
		return minIndentWidth
	}
	if width > maxIndentWidth {
		return maxIndentWidth
	}
	return width
}
