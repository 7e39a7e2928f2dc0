package registry

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed registry.schema.json
var schemaDocument []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// validateDocument checks a raw registry document against the embedded
// schema before it is decoded. This catches hand-edits and partial writes
// that would otherwise decode into a silently wrong history.
func validateDocument(data []byte) error {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("registry.schema.json", bytes.NewReader(schemaDocument)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("registry.schema.json")
	})
	if schemaErr != nil {
		return fmt.Errorf("failed to compile registry schema: %w", schemaErr)
	}

	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("document is not valid JSON: %w", err)
	}
	return compiledSchema.Validate(instance)
}
