package strategy

import (
	"context"
	"fmt"

	"aslharness/internal/expr"
	"aslharness/internal/states"
)

// JSONataStrategy implements spec §4.3's JSONata pipeline.
type JSONataStrategy struct {
	Engine *expr.JSONataEngine
}

func (s *JSONataStrategy) Preprocess(ctx context.Context, input interface{}, st *states.State, rc *RunContext) (interface{}, error) {
	if st.Arguments == nil {
		return input, nil
	}
	bindings := s.bindings(rc, input, nil)
	return s.evalTemplate(ctx, st.Arguments, input, bindings)
}

func (s *JSONataStrategy) Postprocess(ctx context.Context, result interface{}, originalInput interface{}, st *states.State, rc *RunContext) (interface{}, error) {
	if st.Assign != nil {
		bindings := s.bindings(rc, originalInput, result)
		for name, rawExpr := range st.Assign {
			strExpr, ok := rawExpr.(string)
			if !ok {
				rc.Variables[name] = rawExpr
				continue
			}
			stripped, wrapped := expr.StripWrapper(strExpr)
			if !wrapped {
				rc.Variables[name] = strExpr
				continue
			}
			val, err := s.Engine.Eval(ctx, stripped, result, bindings)
			if err != nil {
				return nil, fmt.Errorf("strategy: Assign %q: %w", name, err)
			}
			rc.Variables[name] = val
		}
	}

	if st.Output == nil {
		return result, nil
	}
	switch out := st.Output.(type) {
	case string:
		stripped, wrapped := expr.StripWrapper(out)
		if !wrapped {
			// Boundary behavior (spec §8): Output without {% %} is a
			// literal string, not an expression.
			return out, nil
		}
		bindings := s.bindings(rc, originalInput, result)
		return s.Engine.Eval(ctx, stripped, result, bindings)
	default:
		bindings := s.bindings(rc, originalInput, result)
		return s.evalTemplate(ctx, out, result, bindings)
	}
}

// evalTemplate walks a JSONata "Output"/"Arguments" template: object/array
// structure is preserved; any string leaf wrapped in {% %} is evaluated,
// anything else is a verbatim literal (spec §4.3's "literals are not
// evaluated" rule).
func (s *JSONataStrategy) evalTemplate(ctx context.Context, tmpl interface{}, data interface{}, bindings map[string]interface{}) (interface{}, error) {
	switch v := tmpl.(type) {
	case string:
		stripped, wrapped := expr.StripWrapper(v)
		if !wrapped {
			return v, nil
		}
		return s.Engine.Eval(ctx, stripped, data, bindings)
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			resolved, err := s.evalTemplate(ctx, val, data, bindings)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			resolved, err := s.evalTemplate(ctx, item, data, bindings)
			if err != nil {
				return nil, err
			}
			out[i] = resolved
		}
		return out, nil
	default:
		return v, nil
	}
}

// bindings assembles the JSONata bindings map required by spec §4.1:
// states.input, states.result (or nil), states.context, and every user
// variable exposed at root so "$name" resolves directly.
func (s *JSONataStrategy) bindings(rc *RunContext, input interface{}, result interface{}) map[string]interface{} {
	statesBinding := map[string]interface{}{
		"input":  input,
		"result": result,
	}
	if rc.Context != nil {
		statesBinding["context"] = rc.Context.ToMap()
	}
	b := map[string]interface{}{"states": statesBinding}
	for k, v := range rc.Variables {
		b[k] = v
	}
	return b
}
