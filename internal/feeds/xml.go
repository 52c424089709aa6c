package feeds

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

var ErrInvalidXML = errors.New("feeds: invalid xml document")

// ValidateXML checks that data is well formed and has a single root element
// named root.
func ValidateXML(data []byte, root string) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: empty document", ErrInvalidXML)
	}
	dec := xml.NewDecoder(bytes.NewReader(data))
	depth := 0
	seenRoot := false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidXML, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if depth == 0 {
				if seenRoot {
					return fmt.Errorf("%w: multiple root elements", ErrInvalidXML)
				}
				if t.Name.Local != root {
					return fmt.Errorf("%w: expected root <%s>, got <%s>", ErrInvalidXML, root, t.Name.Local)
				}
				seenRoot = true
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	if !seenRoot {
		return fmt.Errorf("%w: missing <%s> root", ErrInvalidXML, root)
	}
	return nil
}

func marshalDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
