package markdown

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Reserved frontmatter keys owned by the publish pipeline. Any other key is
// carried through untouched.
const (
	KeyID            = "privateplot-id"
	KeyHost          = "privateplot-host"
	KeyLastPublished = "privateplot-last-published"
	KeyTitle         = "title"
	KeySummary       = "summary"
	KeySlug          = "slug"
	KeyDraft         = "draft"
)

// ReservedPrefix marks keys that belong to the publishing tool rather than the
// article itself.
const ReservedPrefix = "privateplot-"

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Record is the parsed frontmatter mapping. It keeps the underlying YAML node
// so unknown keys, their order, scalar styles and comments survive a rewrite.
type Record struct {
	doc     *yaml.Node
	mapping *yaml.Node
	dirty   bool
}

// NewRecord returns an empty record.
func NewRecord() *Record {
	mapping := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	return &Record{
		doc:     &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{mapping}},
		mapping: mapping,
	}
}

func newRecordFromNode(doc *yaml.Node) (*Record, error) {
	if doc == nil || doc.Kind == 0 || len(doc.Content) == 0 {
		return NewRecord(), nil
	}
	root := doc.Content[0]
	switch {
	case root.Kind == yaml.MappingNode:
		return &Record{doc: doc, mapping: root}, nil
	case root.Kind == yaml.ScalarNode && root.Tag == "!!null":
		rec := NewRecord()
		rec.doc.HeadComment = doc.HeadComment
		return rec, nil
	default:
		return nil, fmt.Errorf("expected a mapping, found %s", nodeKindName(root.Kind))
	}
}

// Len reports the number of keys in the record.
func (r *Record) Len() int {
	if r == nil || r.mapping == nil {
		return 0
	}
	return len(r.mapping.Content) / 2
}

// Keys returns the keys in document order.
func (r *Record) Keys() []string {
	if r == nil || r.mapping == nil {
		return nil
	}
	keys := make([]string, 0, r.Len())
	for i := 0; i+1 < len(r.mapping.Content); i += 2 {
		keys = append(keys, r.mapping.Content[i].Value)
	}
	return keys
}

// Has reports whether key is present, whatever its value.
func (r *Record) Has(key string) bool {
	_, idx := r.find(key)
	return idx >= 0
}

// Lookup returns the scalar text stored under key. Non-scalar and null values
// report false.
func (r *Record) Lookup(key string) (string, bool) {
	node, _ := r.find(key)
	if node == nil || node.Kind != yaml.ScalarNode || node.Tag == "!!null" {
		return "", false
	}
	return node.Value, true
}

// String returns the trimmed scalar text for key or the empty string.
func (r *Record) String(key string) string {
	value, _ := r.Lookup(key)
	return strings.TrimSpace(value)
}

// Decode unmarshals the value stored under key into out.
func (r *Record) Decode(key string, out any) error {
	node, _ := r.find(key)
	if node == nil {
		return fmt.Errorf("frontmatter key %q not found", key)
	}
	return node.Decode(out)
}

// Set stores value under key as a string scalar, appending the key when it
// is new.
func (r *Record) Set(key, value string) {
	r.setNode(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value})
}

// SetBool stores a boolean scalar under key.
func (r *Record) SetBool(key string, value bool) {
	text := "false"
	if value {
		text = "true"
	}
	r.setNode(key, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: text})
}

// Delete removes key and reports whether it was present.
func (r *Record) Delete(key string) bool {
	_, idx := r.find(key)
	if idx < 0 {
		return false
	}
	r.mapping.Content = append(r.mapping.Content[:idx], r.mapping.Content[idx+2:]...)
	r.dirty = true
	return true
}

// Modified reports whether the record changed since it was parsed.
func (r *Record) Modified() bool {
	return r != nil && r.dirty
}

// Map decodes the whole record into a plain map.
func (r *Record) Map() (map[string]any, error) {
	out := map[string]any{}
	if r == nil || r.mapping == nil || r.Len() == 0 {
		return out, nil
	}
	if err := r.mapping.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// ID returns the remote article identifier, if any.
func (r *Record) ID() string { return r.String(KeyID) }

// Host returns the host the article was last published to.
func (r *Record) Host() string { return r.String(KeyHost) }

// Title returns the title key.
func (r *Record) Title() string { return r.String(KeyTitle) }

// Summary returns the summary key.
func (r *Record) Summary() string { return r.String(KeySummary) }

// Slug returns the slug key.
func (r *Record) Slug() string { return r.String(KeySlug) }

// Draft reports whether the draft key holds boolean true.
func (r *Record) Draft() bool {
	node, _ := r.find(KeyDraft)
	if node == nil || node.Kind != yaml.ScalarNode {
		return false
	}
	var draft bool
	if err := node.Decode(&draft); err != nil {
		return false
	}
	return draft
}

// LastPublished parses the last-published timestamp. Missing or unparsable
// values report false.
func (r *Record) LastPublished() (time.Time, bool) {
	node, _ := r.find(KeyLastPublished)
	if node == nil || node.Kind != yaml.ScalarNode {
		return time.Time{}, false
	}
	value := strings.TrimSpace(node.Value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// SetIdentity records the remote id and the host that owns it.
func (r *Record) SetIdentity(id, host string) {
	r.Set(KeyID, id)
	r.Set(KeyHost, host)
}

// SetLastPublished stores ts as a UTC RFC 3339 string.
func (r *Record) SetLastPublished(ts time.Time) {
	r.Set(KeyLastPublished, ts.UTC().Format(time.RFC3339))
}

// ClearIdentity drops every reserved publishing key.
func (r *Record) ClearIdentity() {
	r.Delete(KeyID)
	r.Delete(KeyHost)
	r.Delete(KeyLastPublished)
}

func (r *Record) find(key string) (*yaml.Node, int) {
	if r == nil || r.mapping == nil {
		return nil, -1
	}
	for i := 0; i+1 < len(r.mapping.Content); i += 2 {
		if r.mapping.Content[i].Value == key {
			return r.mapping.Content[i+1], i
		}
	}
	return nil, -1
}

func (r *Record) setNode(key string, value *yaml.Node) {
	if r.mapping == nil {
		fresh := NewRecord()
		r.doc, r.mapping = fresh.doc, fresh.mapping
	}
	r.dirty = true
	if _, idx := r.find(key); idx >= 0 {
		existing := r.mapping.Content[idx+1]
		value.HeadComment = existing.HeadComment
		value.LineComment = existing.LineComment
		value.FootComment = existing.FootComment
		r.mapping.Content[idx+1] = value
		return
	}
	r.mapping.Content = append(r.mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key},
		value,
	)
}

func nodeKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.SequenceNode:
		return "a sequence"
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unsupported node"
	}
}
