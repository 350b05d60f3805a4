package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// labSchema validates authored lab definition files before they enter the
// catalog. Environment stays unconstrained: it is opaque to the engine.
const labSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["id", "name", "type", "traps"],
  "properties": {
    "id": {"type": "string", "minLength": 1},
    "name": {"type": "string", "minLength": 1},
    "type": {"type": "string", "minLength": 1},
    "difficulty": {"type": "string"},
    "summary": {"type": "string"},
    "environment": {},
    "traps": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "description", "severity", "triggerEvents"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "category": {"type": "string"},
          "description": {"type": "string"},
          "severity": {"type": "integer"},
          "triggerEvents": {
            "type": "array",
            "minItems": 1,
            "items": {
              "type": "object",
              "required": ["type"],
              "properties": {"type": {"type": "string", "minLength": 1}}
            }
          }
        }
      }
    },
    "debrief": {
      "type": "object",
      "properties": {
        "realWorldConsequences": {"type": "array", "items": {"type": "string"}},
        "preventionTips": {"type": "array", "items": {"type": "string"}},
        "redFlagHints": {"type": "object", "additionalProperties": {"type": "string"}}
      }
    }
  }
}`

const labSchemaURL = "schema://lab-definition.json"

// compileLabSchema compiles the embedded lab schema once per catalog load.
func compileLabSchema() (*jsonschema.Schema, error) {
	var parsed any
	if err := json.Unmarshal([]byte(labSchema), &parsed); err != nil {
		return nil, fmt.Errorf("parse lab schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource(labSchemaURL, parsed); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	compiled, err := c.Compile(labSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile lab schema: %w", err)
	}
	return compiled, nil
}

// validateLab checks raw lab JSON against the schema.
func validateLab(schema *jsonschema.Schema, raw []byte) error {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse lab definition: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLab, err)
	}
	return nil
}
