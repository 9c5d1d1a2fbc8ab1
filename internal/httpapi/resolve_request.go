package httpapi

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"horse.fit/tscat/internal/lookup"
)

//go:embed resolve_request.schema.json
var resolveRequestSchemaJSON string

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// decodeResolveRequest validates raw against the request schema and
// decodes it. Field-level schema failures come back as a map keyed by
// JSON pointer.
func decodeResolveRequest(raw []byte) (lookup.Request, map[string]string, error) {
	value, err := decodeStrictJSON(raw)
	if err != nil {
		return lookup.Request{}, map[string]string{"body": err.Error()}, nil
	}

	schema, err := loadSchema()
	if err != nil {
		return lookup.Request{}, nil, fmt.Errorf("load schema: %w", err)
	}
	if err := schema.Validate(value); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return lookup.Request{}, schemaFieldErrors(validationErr), nil
		}
		return lookup.Request{}, nil, fmt.Errorf("schema validation: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return lookup.Request{}, nil, fmt.Errorf("normalize request JSON: %w", err)
	}
	var req lookup.Request
	if err := json.Unmarshal(normalized, &req); err != nil {
		return lookup.Request{}, map[string]string{"body": err.Error()}, nil
	}
	return req, nil, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020

		if err := compiler.AddResource("resolve_request.schema.json", strings.NewReader(resolveRequestSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("resolve_request.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func schemaFieldErrors(err *jsonschema.ValidationError) map[string]string {
	fields := map[string]string{}
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			key := e.InstanceLocation
			if key == "" {
				key = "/"
			}
			if _, exists := fields[key]; !exists {
				fields[key] = e.Message
			}
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(err)
	return fields
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}
