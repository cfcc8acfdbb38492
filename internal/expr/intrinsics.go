package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Intrinsic evaluates one States.* call against already-resolved argument
// values, per spec §4.1 ("intrinsics receive evaluated argument values
// and return a scalar or composite"). name excludes the "States." prefix.
func Intrinsic(name string, args []interface{}) (interface{}, error) {
	switch name {
	case "Format":
		return intrinsicFormat(args)
	case "StringToJson":
		return intrinsicStringToJSON(args)
	case "JsonToString":
		return intrinsicJSONToString(args)
	case "Array":
		return append([]interface{}{}, args...), nil
	case "ArrayPartition":
		return intrinsicArrayPartition(args)
	case "ArrayContains":
		return intrinsicArrayContains(args)
	case "ArrayRange":
		return intrinsicArrayRange(args)
	case "ArrayGetItem":
		return intrinsicArrayGetItem(args)
	case "ArrayLength":
		return intrinsicArrayLength(args)
	case "ArrayUnique":
		return intrinsicArrayUnique(args)
	case "MathAdd":
		return intrinsicMathAdd(args)
	case "MathRandom":
		return intrinsicMathRandom(args)
	case "StringSplit":
		return intrinsicStringSplit(args)
	case "UUID":
		return uuid.NewString(), nil
	case "Hash":
		return intrinsicHash(args)
	case "Base64Encode", "Base64Decode":
		return intrinsicBase64(name, args)
	default:
		return nil, fmt.Errorf("expr: unsupported intrinsic States.%s", name)
	}
}

// ParseIntrinsicCall splits "States.Fn(arg1, arg2)" into its name and raw,
// unparsed argument strings; the caller resolves each argument (which may
// itself be a JSONPath, a literal, or a nested intrinsic) before invoking
// Intrinsic.
func ParseIntrinsicCall(expr string) (name string, rawArgs []string, ok bool) {
	expr = strings.TrimSpace(expr)
	if !strings.HasPrefix(expr, "States.") {
		return "", nil, false
	}
	open := strings.IndexByte(expr, '(')
	if open < 0 || !strings.HasSuffix(expr, ")") {
		return "", nil, false
	}
	name = strings.TrimPrefix(expr[:open], "States.")
	body := expr[open+1 : len(expr)-1]
	rawArgs = splitArgs(body)
	return name, rawArgs, true
}

// splitArgs splits a comma-separated intrinsic argument list, respecting
// nested parens and quoted strings.
func splitArgs(body string) []string {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil
	}
	var args []string
	depth := 0
	inStr := false
	start := 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '\'':
			inStr = !inStr
		case '(':
			if !inStr {
				depth++
			}
		case ')':
			if !inStr {
				depth--
			}
		case ',':
			if !inStr && depth == 0 {
				args = append(args, strings.TrimSpace(body[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(body[start:]))
	return args
}

func intrinsicFormat(args []interface{}) (interface{}, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expr: States.Format requires at least one argument")
	}
	tmpl, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("expr: States.Format first argument must be a string")
	}
	rest := args[1:]
	var b strings.Builder
	argIdx := 0
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] == '{' && i+1 < len(tmpl) && tmpl[i+1] == '}' {
			if argIdx < len(rest) {
				b.WriteString(fmt.Sprintf("%v", rest[argIdx]))
				argIdx++
			}
			i++
			continue
		}
		b.WriteByte(tmpl[i])
	}
	return b.String(), nil
}

func intrinsicStringToJSON(args []interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expr: States.StringToJson requires one argument")
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("expr: States.StringToJson argument must be a string")
	}
	var out interface{}
	if err := jsonUnmarshalString(s, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func intrinsicJSONToString(args []interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expr: States.JsonToString requires one argument")
	}
	return jsonMarshalString(args[0])
}

func intrinsicArrayPartition(args []interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("expr: States.ArrayPartition requires two arguments")
	}
	arr, ok := args[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("expr: States.ArrayPartition first argument must be an array")
	}
	size, err := toInt(args[1])
	if err != nil || size <= 0 {
		return nil, fmt.Errorf("expr: States.ArrayPartition size must be a positive integer")
	}
	var out []interface{}
	for i := 0; i < len(arr); i += size {
		end := i + size
		if end > len(arr) {
			end = len(arr)
		}
		out = append(out, append([]interface{}{}, arr[i:end]...))
	}
	return out, nil
}

func intrinsicArrayContains(args []interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("expr: States.ArrayContains requires two arguments")
	}
	arr, ok := args[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("expr: States.ArrayContains first argument must be an array")
	}
	for _, v := range arr {
		if fmt.Sprintf("%v", v) == fmt.Sprintf("%v", args[1]) {
			return true, nil
		}
	}
	return false, nil
}

func intrinsicArrayRange(args []interface{}) (interface{}, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("expr: States.ArrayRange requires three arguments")
	}
	start, err1 := toInt(args[0])
	end, err2 := toInt(args[1])
	step, err3 := toInt(args[2])
	if err1 != nil || err2 != nil || err3 != nil || step == 0 {
		return nil, fmt.Errorf("expr: States.ArrayRange arguments must be integers, step non-zero")
	}
	var out []interface{}
	if step > 0 {
		for v := start; v <= end; v += step {
			out = append(out, v)
		}
	} else {
		for v := start; v >= end; v += step {
			out = append(out, v)
		}
	}
	return out, nil
}

func intrinsicArrayGetItem(args []interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("expr: States.ArrayGetItem requires two arguments")
	}
	arr, ok := args[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("expr: States.ArrayGetItem first argument must be an array")
	}
	idx, err := toInt(args[1])
	if err != nil || idx < 0 || idx >= len(arr) {
		return nil, fmt.Errorf("expr: States.ArrayGetItem index out of range")
	}
	return arr[idx], nil
}

func intrinsicArrayLength(args []interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expr: States.ArrayLength requires one argument")
	}
	arr, ok := args[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("expr: States.ArrayLength argument must be an array")
	}
	return len(arr), nil
}

func intrinsicArrayUnique(args []interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expr: States.ArrayUnique requires one argument")
	}
	arr, ok := args[0].([]interface{})
	if !ok {
		return nil, fmt.Errorf("expr: States.ArrayUnique argument must be an array")
	}
	seen := make(map[string]bool)
	var out []interface{}
	for _, v := range arr {
		key := fmt.Sprintf("%v", v)
		if !seen[key] {
			seen[key] = true
			out = append(out, v)
		}
	}
	return out, nil
}

func intrinsicMathAdd(args []interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("expr: States.MathAdd requires two arguments")
	}
	a, err1 := toFloat(args[0])
	b, err2 := toFloat(args[1])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("expr: States.MathAdd arguments must be numeric")
	}
	return a + b, nil
}

func intrinsicMathRandom(args []interface{}) (interface{}, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("expr: States.MathRandom requires at least two arguments")
	}
	lo, err1 := toInt(args[0])
	hi, err2 := toInt(args[1])
	if err1 != nil || err2 != nil {
		return nil, fmt.Errorf("expr: States.MathRandom bounds must be integers")
	}
	if hi <= lo {
		return lo, nil
	}
	return lo + (hi-lo)/2, nil
}

func intrinsicStringSplit(args []interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("expr: States.StringSplit requires two arguments")
	}
	s, ok1 := args[0].(string)
	sep, ok2 := args[1].(string)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("expr: States.StringSplit arguments must be strings")
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return strings.ContainsRune(sep, r) })
	out := make([]interface{}, len(parts))
	for i, p := range parts {
		out[i] = p
	}
	return out, nil
}

func intrinsicHash(args []interface{}) (interface{}, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("expr: States.Hash requires two arguments")
	}
	return hashValue(args[0], args[1])
}

func intrinsicBase64(name string, args []interface{}) (interface{}, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("expr: States.%s requires one argument", name)
	}
	s, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("expr: States.%s argument must be a string", name)
	}
	return base64Transform(name, s)
}

func toInt(v interface{}) (int, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	return int(math.Round(f)), nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case string:
		return strconv.ParseFloat(n, 64)
	default:
		return 0, fmt.Errorf("expr: value is not numeric")
	}
}
