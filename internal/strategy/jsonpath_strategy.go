package strategy

import (
	"context"
	"fmt"

	"aslharness/internal/expr"
	"aslharness/internal/states"
)

// JSONPathStrategy implements spec §4.3's JSONPath pipeline.
type JSONPathStrategy struct{}

func (s *JSONPathStrategy) Preprocess(_ context.Context, input interface{}, st *states.State, rc *RunContext) (interface{}, error) {
	selected := input
	if st.InputPath != nil {
		val, ok := expr.GetPath(input, *st.InputPath)
		if !ok {
			return nil, fmt.Errorf("%w '%s': InputPath did not match the input", states.ErrInvalidPath, *st.InputPath)
		}
		selected = val
	}
	if st.Parameters != nil {
		bindings := expr.Bindings{Context: rc.Context, Variables: rc.Variables}
		return expr.EvalPayloadTemplate(st.Parameters, selected, bindings)
	}
	return selected, nil
}

func (s *JSONPathStrategy) Postprocess(_ context.Context, result interface{}, originalInput interface{}, st *states.State, rc *RunContext) (interface{}, error) {
	processed := result
	if st.ResultSelector != nil {
		bindings := expr.Bindings{Context: rc.Context, Variables: rc.Variables}
		selected, err := expr.EvalPayloadTemplate(st.ResultSelector, result, bindings)
		if err != nil {
			return nil, err
		}
		processed = selected
	}

	merged := processed
	if st.ResultPath != nil {
		m, err := expr.SetPath(originalInput, *st.ResultPath, processed)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", states.ErrorResultPath, err)
		}
		merged = m
	}

	if st.OutputPath != nil {
		val, ok := expr.GetPath(merged, *st.OutputPath)
		if !ok {
			return nil, fmt.Errorf("%w '%s': OutputPath did not match", states.ErrInvalidPath, *st.OutputPath)
		}
		return val, nil
	}
	return merged, nil
}
