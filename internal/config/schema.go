package config

import (
	"bytes"
	"embed"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/single_mode.schema.json schema/multi_mode.schema.json
var schemaFS embed.FS

// ValidateSchema validates a decoded (map[string]any) config document
// against the single-mode or multi-mode schema, selected by the presence
// of a top-level "modes" key — ported verbatim from original_source's
// runtime/config.py:validate_config_schema.
func ValidateSchema(doc map[string]any) error {
	name := "single_mode.schema.json"
	if _, ok := doc["modes"]; ok {
		name = "multi_mode.schema.json"
	}

	compiler := jsonschema.NewCompiler()
	for _, f := range []string{"single_mode.schema.json", "multi_mode.schema.json"} {
		data, err := schemaFS.ReadFile("schema/" + f)
		if err != nil {
			return fmt.Errorf("load embedded schema %s: %w", f, err)
		}
		if err := compiler.AddResource(f, bytes.NewReader(data)); err != nil {
			return fmt.Errorf("register embedded schema %s: %w", f, err)
		}
	}

	schema, err := compiler.Compile(name)
	if err != nil {
		return fmt.Errorf("compile schema %s: %w", name, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("config does not satisfy %s: %w", name, err)
	}
	return nil
}
