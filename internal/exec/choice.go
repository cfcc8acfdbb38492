package exec

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"aslharness/internal/expr"
	"aslharness/internal/mock"
	"aslharness/internal/states"
	"aslharness/internal/strategy"
)

// execChoice implements spec §4.5: rules are evaluated in declaration
// order, the first match's Next wins; a mocked choice may override the
// computed Next entirely (enabling loop stubbing in tests).
func execChoice(ctx context.Context, ectx *execContext, input interface{}, st *states.State, rc *strategy.RunContext) (interface{}, string, error) {
	if ectx.Env.Mock != nil {
		if override, err := ectx.Env.Mock.GetMockResponse(st.Name, input, mock.DefaultHint{Type: st.Type}); err == nil {
			if obj, ok := override.(map[string]interface{}); ok {
				if next, ok := obj["Next"].(string); ok && next != "" {
					return input, next, nil
				}
			}
		}
	}

	for _, rule := range st.Choices {
		matched, err := evalRule(ctx, ectx, rule, input, rc)
		if err != nil {
			return nil, "", err
		}
		if matched {
			return input, rule.Next, nil
		}
	}
	if st.Default != "" {
		return input, st.Default, nil
	}
	return nil, "", states.ErrNoMatchingChoice
}

func evalRule(ctx context.Context, ectx *execContext, rule states.ChoiceRule, input interface{}, rc *strategy.RunContext) (bool, error) {
	switch {
	case len(rule.And) > 0:
		for _, sub := range rule.And {
			ok, err := evalRule(ctx, ectx, sub, input, rc)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case len(rule.Or) > 0:
		for _, sub := range rule.Or {
			ok, err := evalRule(ctx, ectx, sub, input, rc)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case rule.Not != nil:
		ok, err := evalRule(ctx, ectx, *rule.Not, input, rc)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case rule.Condition != "":
		return evalJSONataCondition(ctx, ectx, rule.Condition, input, rc)
	default:
		return evalComparison(rule, input)
	}
}

func evalJSONataCondition(ctx context.Context, ectx *execContext, condition string, input interface{}, rc *strategy.RunContext) (bool, error) {
	stripped, ok := expr.StripWrapper(condition)
	if !ok {
		return false, states.ErrMalformedJSONata
	}
	bindings := map[string]interface{}{"states": map[string]interface{}{"input": input}}
	for k, v := range rc.Variables {
		bindings[k] = v
	}
	result, err := ectx.Env.JSONata.Eval(ctx, stripped, input, bindings)
	if err != nil {
		return false, err
	}
	b, _ := result.(bool)
	return b, nil
}

// evalComparison resolves Variable and applies exactly one comparison
// operator (spec §4.5). A missing Variable match is always an error
// ("Invalid path"), distinguishing it from a present-but-null field.
func evalComparison(rule states.ChoiceRule, input interface{}) (bool, error) {
	value, found := expr.GetPath(input, rule.Variable)

	switch {
	case rule.IsPresent != nil:
		return found == *rule.IsPresent, nil
	case !found:
		return false, fmt.Errorf("%w '%s': The choice state's condition path references an invalid value", states.ErrInvalidPath, rule.Variable)
	case rule.IsNull != nil:
		return (value == nil) == *rule.IsNull, nil
	case rule.IsNumeric != nil:
		_, isNum := value.(float64)
		return isNum == *rule.IsNumeric, nil
	case rule.IsString != nil:
		_, isStr := value.(string)
		return isStr == *rule.IsString, nil
	case rule.IsBoolean != nil:
		_, isBool := value.(bool)
		return isBool == *rule.IsBoolean, nil
	case rule.IsTimestamp != nil:
		isTS := isTimestampString(value)
		return isTS == *rule.IsTimestamp, nil

	case rule.StringEquals != nil:
		return strEq(value, *rule.StringEquals), nil
	case rule.StringEqualsPath != nil:
		return strEq(value, pathStr(input, *rule.StringEqualsPath)), nil
	case rule.StringLessThan != nil:
		return strCmp(value, *rule.StringLessThan) < 0, nil
	case rule.StringLessThanPath != nil:
		return strCmp(value, pathStr(input, *rule.StringLessThanPath)) < 0, nil
	case rule.StringGreaterThan != nil:
		return strCmp(value, *rule.StringGreaterThan) > 0, nil
	case rule.StringGreaterThanPath != nil:
		return strCmp(value, pathStr(input, *rule.StringGreaterThanPath)) > 0, nil
	case rule.StringLessThanEquals != nil:
		return strCmp(value, *rule.StringLessThanEquals) <= 0, nil
	case rule.StringLessThanEqualsPath != nil:
		return strCmp(value, pathStr(input, *rule.StringLessThanEqualsPath)) <= 0, nil
	case rule.StringGreaterThanEquals != nil:
		return strCmp(value, *rule.StringGreaterThanEquals) >= 0, nil
	case rule.StringGreaterThanEqualsPath != nil:
		return strCmp(value, pathStr(input, *rule.StringGreaterThanEqualsPath)) >= 0, nil
	case rule.StringMatches != nil:
		return matchWildcard(asString(value), *rule.StringMatches), nil

	case rule.NumericEquals != nil:
		return numCmp(value, *rule.NumericEquals) == 0, nil
	case rule.NumericEqualsPath != nil:
		return numCmp(value, pathNum(input, *rule.NumericEqualsPath)) == 0, nil
	case rule.NumericLessThan != nil:
		return numCmp(value, *rule.NumericLessThan) < 0, nil
	case rule.NumericLessThanPath != nil:
		return numCmp(value, pathNum(input, *rule.NumericLessThanPath)) < 0, nil
	case rule.NumericGreaterThan != nil:
		return numCmp(value, *rule.NumericGreaterThan) > 0, nil
	case rule.NumericGreaterThanPath != nil:
		return numCmp(value, pathNum(input, *rule.NumericGreaterThanPath)) > 0, nil
	case rule.NumericLessThanEquals != nil:
		return numCmp(value, *rule.NumericLessThanEquals) <= 0, nil
	case rule.NumericLessThanEqualsPath != nil:
		return numCmp(value, pathNum(input, *rule.NumericLessThanEqualsPath)) <= 0, nil
	case rule.NumericGreaterThanEquals != nil:
		return numCmp(value, *rule.NumericGreaterThanEquals) >= 0, nil
	case rule.NumericGreaterThanEqualsPath != nil:
		return numCmp(value, pathNum(input, *rule.NumericGreaterThanEqualsPath)) >= 0, nil

	case rule.BooleanEquals != nil:
		b, _ := value.(bool)
		return b == *rule.BooleanEquals, nil
	case rule.BooleanEqualsPath != nil:
		b, _ := value.(bool)
		other, _ := pathAny(input, *rule.BooleanEqualsPath).(bool)
		return b == other, nil

	case rule.TimestampEquals != nil:
		return tsCmp(value, *rule.TimestampEquals) == 0, nil
	case rule.TimestampLessThan != nil:
		return tsCmp(value, *rule.TimestampLessThan) < 0, nil
	case rule.TimestampGreaterThan != nil:
		return tsCmp(value, *rule.TimestampGreaterThan) > 0, nil
	case rule.TimestampLessThanEquals != nil:
		return tsCmp(value, *rule.TimestampLessThanEquals) <= 0, nil
	case rule.TimestampGreaterThanEquals != nil:
		return tsCmp(value, *rule.TimestampGreaterThanEquals) >= 0, nil

	default:
		return false, states.ErrMalformedChoice
	}
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func strEq(v interface{}, other string) bool { return asString(v) == other }
func strCmp(v interface{}, other string) int { return strings.Compare(asString(v), other) }

func numCmp(v interface{}, other float64) int {
	f, _ := v.(float64)
	switch {
	case f < other:
		return -1
	case f > other:
		return 1
	default:
		return 0
	}
}

func tsCmp(v interface{}, other string) int {
	a, errA := time.Parse(time.RFC3339, asString(v))
	b, errB := time.Parse(time.RFC3339, other)
	if errA != nil || errB != nil {
		return strings.Compare(asString(v), other)
	}
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func isTimestampString(v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

func pathAny(input interface{}, path string) interface{} {
	v, _ := expr.GetPath(input, path)
	return v
}
func pathStr(input interface{}, path string) string { return asString(pathAny(input, path)) }
func pathNum(input interface{}, path string) float64 {
	f, _ := pathAny(input, path).(float64)
	return f
}

// matchWildcard implements spec §4.5's StringMatches: "*" any run of
// chars, "?" single char, all other regex metacharacters escaped.
func matchWildcard(s, pattern string) bool {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(s)
}
