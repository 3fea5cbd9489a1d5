package extractor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaName is the name the schema is registered under with providers that
// support named structured outputs.
const SchemaName = "wine_list_items"

var requiredItemFields = []string{"wine_name", "confidence", "source_lines"}

var optionalItemFields = []string{
	"section", "producer", "vintage", "grapes", "bottle_price",
	"glass_price", "currency", "notes", "location",
}

// ItemSchema returns the JSON schema of the extraction output as a generic
// map. When strict is set every property is listed as required and optional
// values are expressed as nullable, which is what strict structured-output
// modes demand.
func ItemSchema(strict bool) map[string]any {
	props := map[string]any{
		"wine_name":    map[string]any{"type": "string", "minLength": 1},
		"confidence":   map[string]any{"type": "number"},
		"source_lines": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
		"section":      nullable("string"),
		"producer":     nullable("string"),
		"vintage":      nullable("string"),
		"grapes":       nullable("string"),
		"bottle_price": nullable("number"),
		"glass_price":  nullable("number"),
		"currency":     nullable("string"),
		"notes":        nullable("string"),
		"location":     nullable("string"),
	}

	required := append([]string{}, requiredItemFields...)
	if strict {
		required = append(required, optionalItemFields...)
	}

	item := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             required,
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"items": map[string]any{"type": "array", "items": item},
		},
		"required": []string{"items"},
	}
}

func nullable(t string) map[string]any {
	return map[string]any{"type": []string{t, "null"}}
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func validator() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		b, err := json.Marshal(ItemSchema(false))
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("wine_items.json", bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("wine_items.json")
	})
	return compiledSchema, compileErr
}

// Validate checks raw model output against the extraction schema.
func Validate(data []byte) error {
	schema, err := validator()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal output: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("output does not match schema: %w", err)
	}
	return nil
}
