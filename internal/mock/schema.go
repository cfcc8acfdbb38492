package mock

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// validateAgainstSchema implements the mock engine's ValidateInputAgainstSchema
// check (spec §4.7/§4.8): real JSON Schema validation rather than a
// hand-rolled required/type checker, since the retrieved corpus already
// carries gojsonschema for exactly this purpose.
func validateAgainstSchema(schema json.RawMessage, input interface{}) error {
	schemaLoader := gojsonschema.NewBytesLoader(schema)
	docLoader := gojsonschema.NewGoLoader(input)

	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
