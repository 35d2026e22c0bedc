package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Request schema names registered by NewJSONSchemaValidator.
const (
	SchemaTableQuery  = "table_query"
	SchemaSortRequest = "sort_request"
)

// ErrInvalidRequest wraps every request validation failure.
var ErrInvalidRequest = errors.New("dashboard: invalid request")

const datePattern = `^([0-9]{4}-[0-9]{2}-[0-9]{2})?$`

var builtinSchemas = map[string]map[string]any{
	SchemaTableQuery: {
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"q":          map[string]any{"type": "string", "maxLength": 200},
			"from":       map[string]any{"type": "string", "pattern": datePattern},
			"to":         map[string]any{"type": "string", "pattern": datePattern},
			"sort":       map[string]any{"type": "string", "maxLength": 64},
			"direction":  map[string]any{"enum": []string{"", "asc", "desc", "ascending", "descending"}},
			"session_id": map[string]any{"type": "string"},
		},
	},
	SchemaSortRequest: {
		"type":     "object",
		"required": []string{"key"},
		"properties": map[string]any{
			"key": map[string]any{"type": "string", "minLength": 1, "maxLength": 64},
		},
	},
}

// RequestValidator validates transport payloads against a named schema.
type RequestValidator interface {
	Validate(name string, payload map[string]any) error
}

// JSONSchemaValidator compiles request schemas once and validates payload maps.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	schemas  map[string]map[string]any
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5 with the built-in
// request schemas registered.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	v := &JSONSchemaValidator{
		schemas:  make(map[string]map[string]any, len(builtinSchemas)),
		compiled: make(map[string]*jsonschema.Schema),
	}
	for name, schema := range builtinSchemas {
		v.schemas[name] = schema
	}
	return v
}

// Register adds or replaces a schema, dropping any compiled copy.
func (v *JSONSchemaValidator) Register(name string, schema map[string]any) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.schemas[name] = schema
	delete(v.compiled, name)
}

// Validate ensures the payload satisfies the named schema. Unknown names pass.
func (v *JSONSchemaValidator) Validate(name string, payload map[string]any) error {
	schema, err := v.schemaFor(name)
	if err != nil || schema == nil {
		return err
	}
	var normalized map[string]any
	if payload == nil {
		normalized = map[string]any{}
	} else {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("dashboard: marshal %s payload: %w", name, err)
		}
		if err := json.Unmarshal(data, &normalized); err != nil {
			return fmt.Errorf("dashboard: normalize %s payload: %w", name, err)
		}
	}
	if err := schema.Validate(normalized); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRequest, name, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(name string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[name]
	raw, known := v.schemas[name]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	if !known {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("dashboard: marshal schema %s: %w", name, err)
	}
	compiler := jsonschema.NewCompiler()
	resource := name + ".json"
	if err := compiler.AddResource(resource, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}
