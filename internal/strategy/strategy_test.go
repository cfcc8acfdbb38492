package strategy

import (
	"context"
	"testing"

	"aslharness/internal/expr"
	"aslharness/internal/states"
)

func strPtr(s string) *string { return &s }

func TestJSONPathStrategyPreprocessInputPathAndParameters(t *testing.T) {
	st := &states.State{
		InputPath:  strPtr("$.data"),
		Parameters: map[string]interface{}{"val.$": "$.x"},
	}
	rc := &RunContext{}
	input := map[string]interface{}{"data": map[string]interface{}{"x": 5.0}}

	s := &JSONPathStrategy{}
	out, err := s.Preprocess(context.Background(), input, st, rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := out.(map[string]interface{})
	if !ok || m["val"] != 5.0 {
		t.Errorf("unexpected preprocess output: %#v", out)
	}
}

func TestJSONPathStrategyPreprocessMissingInputPathErrors(t *testing.T) {
	st := &states.State{InputPath: strPtr("$.missing")}
	s := &JSONPathStrategy{}
	_, err := s.Preprocess(context.Background(), map[string]interface{}{}, st, &RunContext{})
	if err == nil {
		t.Fatal("expected error for missing InputPath")
	}
}

func TestJSONPathStrategyPostprocessResultPathAndOutputPath(t *testing.T) {
	st := &states.State{
		ResultPath: strPtr("$.result"),
		OutputPath: strPtr("$.result"),
	}
	s := &JSONPathStrategy{}
	out, err := s.Postprocess(context.Background(), "done", map[string]interface{}{"orig": true}, st, &RunContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "done" {
		t.Errorf("expected merged-then-selected result 'done', got %#v", out)
	}
}

func TestJSONPathStrategyPostprocessResultSelector(t *testing.T) {
	st := &states.State{ResultSelector: map[string]interface{}{"picked.$": "$.a"}}
	s := &JSONPathStrategy{}
	out, err := s.Postprocess(context.Background(), map[string]interface{}{"a": 1.0, "b": 2.0}, map[string]interface{}{}, st, &RunContext{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := out.(map[string]interface{})
	if m["picked"] != 1.0 {
		t.Errorf("expected ResultSelector to pick field a, got %#v", out)
	}
}

func TestForModeSelectsByQueryLanguage(t *testing.T) {
	jsonata := expr.NewJSONataEngine()
	if _, ok := ForMode(states.JSONata, jsonata).(*JSONataStrategy); !ok {
		t.Error("expected JSONataStrategy for JSONata mode")
	}
	if _, ok := ForMode(states.JSONPath, jsonata).(*JSONPathStrategy); !ok {
		t.Error("expected JSONPathStrategy for JSONPath mode")
	}
}

func TestJSONataStrategyPreprocessArguments(t *testing.T) {
	s := &JSONataStrategy{Engine: expr.NewJSONataEngine()}
	st := &states.State{Arguments: map[string]interface{}{"doubled": "{% $states.input.n * 2 %}"}}
	rc := &RunContext{Variables: map[string]interface{}{}}

	out, err := s.Preprocess(context.Background(), map[string]interface{}{"n": 3.0}, st, rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := out.(map[string]interface{})
	if m["doubled"] != 6.0 {
		t.Errorf("expected doubled=6, got %#v", out)
	}
}

func TestJSONataStrategyPostprocessAssignAndOutput(t *testing.T) {
	s := &JSONataStrategy{Engine: expr.NewJSONataEngine()}
	st := &states.State{
		Assign: map[string]interface{}{"total": "{% $states.result.n + 1 %}"},
		Output: "{% $total %}",
	}
	rc := &RunContext{Variables: map[string]interface{}{}}

	out, err := s.Postprocess(context.Background(), map[string]interface{}{"n": 4.0}, map[string]interface{}{}, st, rc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != 5.0 {
		t.Errorf("expected Output to read back assigned variable 5, got %#v", out)
	}
	if rc.Variables["total"] != 5.0 {
		t.Errorf("expected Assign to store total=5, got %#v", rc.Variables["total"])
	}
}

func TestJSONataStrategyPostprocessUnwrappedOutputIsLiteral(t *testing.T) {
	s := &JSONataStrategy{Engine: expr.NewJSONataEngine()}
	st := &states.State{Output: "plain string"}
	out, err := s.Postprocess(context.Background(), "result", map[string]interface{}{}, st, &RunContext{Variables: map[string]interface{}{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "plain string" {
		t.Errorf("expected literal passthrough, got %#v", out)
	}
}
