package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvalPayloadTemplatePlainJSONPath(t *testing.T) {
	tmpl := map[string]interface{}{"name.$": "$.user.name", "literal": "unchanged"}
	root := map[string]interface{}{"user": map[string]interface{}{"name": "Ada"}}

	out, err := EvalPayloadTemplate(tmpl, root, Bindings{})
	require.NoError(t, err)
	m := out.(map[string]interface{})
	assert.Equal(t, "Ada", m["name"])
	assert.Equal(t, "unchanged", m["literal"])
}

func TestEvalPayloadTemplateVariableReference(t *testing.T) {
	tmpl := map[string]interface{}{"out.$": "$myVar"}
	b := Bindings{Variables: map[string]interface{}{"myVar": "hello"}}

	out, err := EvalPayloadTemplate(tmpl, map[string]interface{}{}, b)
	require.NoError(t, err)
	m := out.(map[string]interface{})
	assert.Equal(t, "hello", m["out"])
}

func TestEvalPayloadTemplateUnknownVariableErrors(t *testing.T) {
	tmpl := map[string]interface{}{"out.$": "$missing"}
	_, err := EvalPayloadTemplate(tmpl, map[string]interface{}{}, Bindings{})
	assert.Error(t, err)
}

func TestEvalPayloadTemplateIntrinsicCall(t *testing.T) {
	tmpl := map[string]interface{}{"out.$": "States.Format('Hi {}', $.name)"}
	root := map[string]interface{}{"name": "Bob"}

	out, err := EvalPayloadTemplate(tmpl, root, Bindings{})
	require.NoError(t, err)
	m := out.(map[string]interface{})
	assert.Equal(t, "Hi Bob", m["out"])
}

func TestEvalPayloadTemplateNestedArraysAndObjects(t *testing.T) {
	tmpl := map[string]interface{}{
		"list": []interface{}{
			map[string]interface{}{"v.$": "$.a"},
			map[string]interface{}{"v.$": "$.b"},
		},
	}
	root := map[string]interface{}{"a": 1.0, "b": 2.0}

	out, err := EvalPayloadTemplate(tmpl, root, Bindings{})
	require.NoError(t, err)
	m := out.(map[string]interface{})
	list := m["list"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, 1.0, list[0].(map[string]interface{})["v"])
	assert.Equal(t, 2.0, list[1].(map[string]interface{})["v"])
}
