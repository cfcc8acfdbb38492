package expr

import (
	"fmt"
	"strings"
)

// Bindings carries the values a JSONPath payload template may reference
// besides the data root: the synthesized context object and the current
// variables map (so "$varName" resolves directly, spec §4.2 rule 1).
type Bindings struct {
	Context   *Context
	Variables map[string]interface{}
}

// EvalPayloadTemplate walks an arbitrary JSON value looking for the
// "key.$" convention (spec §4.2). Scalars and plain keys pass through
// unchanged; arrays are mapped element-wise; objects recurse.
func EvalPayloadTemplate(tmpl interface{}, root interface{}, b Bindings) (interface{}, error) {
	switch v := tmpl.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			if strings.HasSuffix(k, ".$") {
				key := strings.TrimSuffix(k, ".$")
				expr, ok := val.(string)
				if !ok {
					return nil, fmt.Errorf("expr: payload template key %q must have a string value", k)
				}
				resolved, err := resolvePayloadExpr(expr, root, b)
				if err != nil {
					return nil, err
				}
				out[key] = resolved
				continue
			}
			resolved, err := EvalPayloadTemplate(val, root, b)
			if err != nil {
				return nil, err
			}
			out[k] = resolved
		}
		return out, nil
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			resolved, err := EvalPayloadTemplate(item, root, b)
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

// resolvePayloadExpr dispatches a single ".$"-suffixed expression per the
// priority order in spec §4.2 rule 1: context sentinel, intrinsic,
// variable reference, then plain JSONPath.
func resolvePayloadExpr(expr string, root interface{}, b Bindings) (interface{}, error) {
	switch {
	case expr == "$$" :
		if b.Context == nil {
			return nil, fmt.Errorf("expr: no context object available for $$")
		}
		return b.Context.ToMap(), nil
	case strings.HasPrefix(expr, "$$."):
		if b.Context == nil {
			return nil, fmt.Errorf("expr: no context object available for %s", expr)
		}
		val, _ := GetPath(b.Context.ToMap(), "$."+strings.TrimPrefix(expr, "$$."))
		return val, nil
	case strings.HasPrefix(expr, "States."):
		return evalIntrinsicExpr(expr, root, b)
	case strings.HasPrefix(expr, "$") && !strings.HasPrefix(expr, "$.") && !strings.HasPrefix(expr, "$["):
		return resolveVariableRef(expr, b)
	default:
		val, _ := GetPath(root, expr)
		return val, nil
	}
}

// resolveVariableRef handles "$name" and "$name.residual.path" against
// the variables bindings map (spec §4.2 rule 1, third branch).
func resolveVariableRef(expr string, b Bindings) (interface{}, error) {
	rest := strings.TrimPrefix(expr, "$")
	name := rest
	residual := ""
	if idx := strings.IndexAny(rest, ".["); idx >= 0 {
		name = rest[:idx]
		residual = rest[idx:]
	}
	if b.Variables == nil {
		return nil, fmt.Errorf("expr: no variable %q in scope", name)
	}
	val, ok := b.Variables[name]
	if !ok {
		return nil, fmt.Errorf("expr: no variable %q in scope", name)
	}
	if residual == "" {
		return val, nil
	}
	resolved, _ := GetPath(val, "$"+residual)
	return resolved, nil
}

// evalIntrinsicExpr parses and evaluates a States.* call, resolving each
// raw argument (itself a JSONPath, literal, or nested intrinsic) before
// dispatching to Intrinsic.
func evalIntrinsicExpr(expr string, root interface{}, b Bindings) (interface{}, error) {
	name, rawArgs, ok := ParseIntrinsicCall(expr)
	if !ok {
		return nil, fmt.Errorf("expr: malformed intrinsic call %q", expr)
	}
	args := make([]interface{}, len(rawArgs))
	for i, raw := range rawArgs {
		resolved, err := resolveIntrinsicArg(raw, root, b)
		if err != nil {
			return nil, err
		}
		args[i] = resolved
	}
	return Intrinsic(name, args)
}

func resolveIntrinsicArg(raw string, root interface{}, b Bindings) (interface{}, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "'") && strings.HasSuffix(raw, "'"):
		return strings.Trim(raw, "'"), nil
	case strings.HasPrefix(raw, "States."):
		return evalIntrinsicExpr(raw, root, b)
	case strings.HasPrefix(raw, "$"):
		return resolvePayloadExpr(raw, root, b)
	default:
		return parseLiteral(raw), nil
	}
}

func parseLiteral(raw string) interface{} {
	switch raw {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	if f, err := toFloat(raw); err == nil {
		return f
	}
	return raw
}
