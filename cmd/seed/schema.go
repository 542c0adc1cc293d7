package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const itemSchemaURL = "schema://questionnaire-items.json"

const itemSchema = `{
  "type": "object",
  "required": ["items"],
  "properties": {
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "requirementCode", "applicableLevel"],
        "additionalProperties": false,
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "requirementCode": {"type": "string", "minLength": 1},
          "requirementTitle": {"type": "string"},
          "normativeReference": {"type": "string"},
          "description": {"type": "string"},
          "applicableLevel": {"enum": ["A", "B", "AMBOS"]},
          "scoringKind": {"enum": ["ESCALA_1_5", "SIM_NAO"]},
          "displayOrder": {"type": "integer", "minimum": 0},
          "active": {"type": "boolean"}
        }
      }
    }
  }
}`

var (
	compiledOnce sync.Once
	compiled     *jsonschema.Schema
	compileErr   error
)

func itemFileSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(itemSchema))
		if err != nil {
			compileErr = fmt.Errorf("parse schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(itemSchemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add resource: %w", err)
			return
		}
		compiled, compileErr = c.Compile(itemSchemaURL)
	})
	return compiled, compileErr
}

// validateDocument checks a decoded YAML document against the item schema.
// The document goes through JSON first so numbers and maps have the shapes
// the validator expects.
func validateDocument(doc interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("items file is not plain data: %w", err)
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return err
	}

	schema, err := itemFileSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(parsed); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
