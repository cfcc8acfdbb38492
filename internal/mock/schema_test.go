package mock

import "testing"

func TestValidateAgainstSchemaAcceptsMatchingInput(t *testing.T) {
	schema := []byte(`{"type":"object","required":["name"],"properties":{"name":{"type":"string"}}}`)
	err := validateAgainstSchema(schema, map[string]interface{}{"name": "Ada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateAgainstSchemaRejectsMissingRequiredField(t *testing.T) {
	schema := []byte(`{"type":"object","required":["name"]}`)
	err := validateAgainstSchema(schema, map[string]interface{}{})
	if err == nil {
		t.Fatal("expected validation error for missing required field")
	}
}

func TestValidateAgainstSchemaRejectsWrongType(t *testing.T) {
	schema := []byte(`{"type":"object","properties":{"age":{"type":"number"}}}`)
	err := validateAgainstSchema(schema, map[string]interface{}{"age": "not a number"})
	if err == nil {
		t.Fatal("expected validation error for wrong type")
	}
}
