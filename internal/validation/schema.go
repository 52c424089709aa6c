package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	ErrSchemaInvalid    = errors.New("schema invalid")
	ErrSchemaValidation = errors.New("schema validation failed")
	ErrSchemaUnknown    = errors.New("schema not registered")
)

// ValidationIssue captures a single validation failure.
type ValidationIssue struct {
	Location string `json:"location"`
	Message  string `json:"message"`
}

// PayloadValidationError surfaces validation issues with schema-aware context.
type PayloadValidationError struct {
	Schema string
	Issues []ValidationIssue
	Cause  error
}

func (e *PayloadValidationError) Error() string {
	if len(e.Issues) == 0 {
		if e.Cause != nil {
			return e.Cause.Error()
		}
		return ErrSchemaValidation.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimSpace(issue.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		if issue.Message == "" {
			parts = append(parts, location)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return strings.Join(parts, "; ")
}

func (e *PayloadValidationError) Unwrap() error {
	return ErrSchemaValidation
}

// Details flattens the issues into "location: message" strings.
func (e *PayloadValidationError) Details() []string {
	out := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := strings.TrimPrefix(strings.TrimSpace(issue.Location), "/")
		switch {
		case location == "":
			out = append(out, issue.Message)
		case issue.Message == "":
			out = append(out, location)
		default:
			out = append(out, location+": "+issue.Message)
		}
	}
	return out
}

// Issues extracts validation issues from an error.
func Issues(err error) []ValidationIssue {
	if err == nil {
		return nil
	}
	var payloadErr *PayloadValidationError
	if errors.As(err, &payloadErr) && payloadErr != nil {
		return payloadErr.Issues
	}
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) && validationErr != nil {
		return collectValidationIssues(validationErr)
	}
	return []ValidationIssue{{Message: err.Error()}}
}

// Registered schema names.
const (
	SchemaSettings        = "settings"
	SchemaArticleInput    = "article_input"
	SchemaFriendLinkInput = "friend_link_input"
)

var registry = map[string]map[string]any{
	SchemaSettings: {
		"type": "object",
		"properties": map[string]any{
			"instanceHost":      map[string]any{"type": "string"},
			"internalAuthToken": map[string]any{"type": "string"},
		},
	},
	SchemaArticleInput: {
		"type":     "object",
		"required": []any{"title", "content"},
		"properties": map[string]any{
			"title":   map[string]any{"type": "string", "minLength": 1, "maxLength": 500},
			"content": map[string]any{"type": "string", "minLength": 1},
			"summary": map[string]any{"type": "string", "maxLength": 2000},
			"slug":    map[string]any{"type": "string", "maxLength": 200, "pattern": "^[a-z0-9]+(?:-[a-z0-9]+)*$"},
		},
	},
	SchemaFriendLinkInput: {
		"type":     "object",
		"required": []any{"name", "url"},
		"properties": map[string]any{
			"name":        map[string]any{"type": "string", "minLength": 1, "maxLength": 200},
			"url":         map[string]any{"type": "string", "pattern": "^https?://[^\\s/$.?#].[^\\s]*$"},
			"description": map[string]any{"type": "string", "maxLength": 1000},
			"avatar":      map[string]any{"type": "string", "pattern": "^(https?://[^\\s]+)?$"},
			"status":      map[string]any{"type": "string", "enum": []any{"active", "inactive"}},
		},
	},
}

var (
	compiledMu sync.Mutex
	compiled   = map[string]*jsonschema.Schema{}
)

// Validate checks payload against a registered schema.
func Validate(name string, payload map[string]any) error {
	schema, ok := registry[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSchemaUnknown, name)
	}
	return validatePayloadWithSchema(name, name, schema, payload)
}

// ValidatePartial checks payload against a registered schema without
// enforcing required fields. Used for partial updates.
func ValidatePartial(name string, payload map[string]any) error {
	schema, ok := registry[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSchemaUnknown, name)
	}
	partial := cloneMap(schema)
	delete(partial, "required")
	return validatePayloadWithSchema(name, name+"#partial", partial, payload)
}

// ValidatePayload validates payload against an ad-hoc schema.
func ValidatePayload(schema map[string]any, payload map[string]any) error {
	if len(schema) == 0 {
		return nil
	}
	return validatePayloadWithSchema("", "", schema, payload)
}

// ValidateStruct converts value through its JSON form and validates it
// against a registered schema.
func ValidateStruct(name string, value any, partial bool) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	payload := map[string]any{}
	if err := json.Unmarshal(encoded, &payload); err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaValidation, err)
	}
	if partial {
		return ValidatePartial(name, payload)
	}
	return Validate(name, payload)
}

func validatePayloadWithSchema(name, cacheKey string, schema map[string]any, payload map[string]any) error {
	if payload == nil {
		payload = map[string]any{}
	}
	compiledSchema, err := compileCached(cacheKey, schema)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSchemaInvalid, err)
	}
	if err := compiledSchema.Validate(normalizePayload(payload)); err != nil {
		return &PayloadValidationError{
			Schema: name,
			Issues: Issues(err),
			Cause:  err,
		}
	}
	return nil
}

func compileCached(key string, schema map[string]any) (*jsonschema.Schema, error) {
	if key == "" {
		return compileSchema(schema)
	}
	compiledMu.Lock()
	defer compiledMu.Unlock()
	if cached, ok := compiled[key]; ok {
		return cached, nil
	}
	result, err := compileSchema(schema)
	if err != nil {
		return nil, err
	}
	compiled[key] = result
	return result, nil
}

// normalizePayload round-trips through JSON so YAML-decoded values use the
// types the validator understands.
func normalizePayload(payload map[string]any) any {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return payload
	}
	var out any
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	if err := decoder.Decode(&out); err != nil {
		return payload
	}
	return out
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return nil
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		switch typed := value.(type) {
		case map[string]any:
			out[key] = cloneMap(typed)
		case []any:
			out[key] = cloneSlice(typed)
		default:
			out[key] = value
		}
	}
	return out
}

func cloneSlice(input []any) []any {
	if input == nil {
		return nil
	}
	out := make([]any, len(input))
	for i, value := range input {
		switch typed := value.(type) {
		case map[string]any:
			out[i] = cloneMap(typed)
		case []any:
			out[i] = cloneSlice(typed)
		default:
			out[i] = value
		}
	}
	return out
}

func compileSchema(schema map[string]any) (*jsonschema.Schema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("schema.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	return compiler.Compile("schema.json")
}

func collectValidationIssues(err *jsonschema.ValidationError) []ValidationIssue {
	if err == nil {
		return nil
	}
	issues := []ValidationIssue{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, ValidationIssue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}
