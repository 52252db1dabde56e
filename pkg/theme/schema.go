package theme

import (
	_ "embed"
	"fmt"

	"github.com/goccy/go-yaml"
	"github.com/xeipuuv/gojsonschema"
)

// SchemaJSON is the JSON Schema of theme documents. It is stricter than
// Parse: unknown fields and fields of the other patch kind are reported.
//
//go:embed theme-schema.json
var SchemaJSON []byte

// Lint checks a theme document against SchemaJSON and returns one message
// per violation. It does not replace Parse; a document with findings may
// still load.
func Lint(data []byte) ([]string, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(SchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to load theme schema: %w", err)
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to validate theme: %w", err)
	}

	var findings []string
	for _, e := range result.Errors() {
		findings = append(findings, e.String())
	}
	return findings, nil
}
