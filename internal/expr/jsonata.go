package expr

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gosonata "github.com/sandrolain/gosonata"
	"github.com/sandrolain/gosonata/pkg/evaluator"
	"github.com/sandrolain/gosonata/pkg/types"

	lru "github.com/hashicorp/golang-lru/v2"
)

// JSONataEngine is the thin wrapper over gosonata named in spec §4.1. It
// caches compiled expressions (grounded on the sandrolain/events-bridge
// jsonata connector's pre-compilation convention) since the same
// Condition/Arguments/Output/Assign text is re-evaluated on every pass
// through a looping state machine.
type JSONataEngine struct {
	eval  *evaluator.Evaluator
	cache *lru.Cache[string, *types.Expression]
	mu    sync.Mutex
}

// NewJSONataEngine builds a reusable evaluator. Concurrency is enabled
// since Map/Parallel fan-out may evaluate templates from multiple
// goroutines against this one engine instance.
func NewJSONataEngine() *JSONataEngine {
	cache, _ := lru.New[string, *types.Expression](256)
	return &JSONataEngine{
		eval: evaluator.New(
			evaluator.WithCaching(true),
			evaluator.WithCacheSize(256),
			evaluator.WithConcurrency(true),
			evaluator.WithTimeout(5*time.Second),
		),
		cache: cache,
	}
}

// StripWrapper removes the "{% ... %}" wrapper AWS requires around a
// JSONata expression, per spec §4.1 ("already stripped of {% %} wrappers
// by the caller"). ok is false when the string isn't wrapped, in which
// case JSONata-mode callers must treat the text as a literal (spec's
// boundary behavior: "Output without {% %} is a literal string").
func StripWrapper(s string) (expr string, ok bool) {
	t := strings.TrimSpace(s)
	if !hasJSONataWrapperLocal(t) {
		return "", false
	}
	return strings.TrimSpace(t[2 : len(t)-2]), true
}

func hasJSONataWrapperLocal(s string) bool {
	return len(s) >= 4 && strings.HasPrefix(s, "{%") && strings.HasSuffix(s, "%}")
}

// Eval compiles (or fetches from cache) and evaluates a JSONata
// expression against data, with bindings exposing states.input,
// states.result, states.context, and every user variable at root so
// "$name" resolves directly (spec §4.1).
func (j *JSONataEngine) Eval(ctx context.Context, expression string, data interface{}, bindings map[string]interface{}) (interface{}, error) {
	compiled, err := j.compile(expression)
	if err != nil {
		return nil, fmt.Errorf("expr: jsonata compile: %w", err)
	}
	result, err := j.eval.EvalWithBindings(ctx, compiled, data, bindings)
	if err != nil {
		return nil, fmt.Errorf("expr: jsonata eval: %w", err)
	}
	return normalizeUndefined(result), nil
}

func (j *JSONataEngine) compile(expression string) (*types.Expression, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if compiled, ok := j.cache.Get(expression); ok {
		return compiled, nil
	}
	compiled, err := gosonata.Compile(expression)
	if err != nil {
		return nil, err
	}
	j.cache.Add(expression, compiled)
	return compiled, nil
}

// normalizeUndefined maps gosonata's types.Null{} (JSONata's "undefined")
// to Go nil/JSON null, per spec §4.1's "undefined MUST be mapped to JSON
// null" rule and §9's open question (kept permissive rather than strict).
func normalizeUndefined(v interface{}) interface{} {
	if v == nil {
		return nil
	}
	switch val := v.(type) {
	case types.Null:
		return nil
	case map[string]interface{}:
		for k, child := range val {
			val[k] = normalizeUndefined(child)
		}
		return val
	case []interface{}:
		for i, child := range val {
			val[i] = normalizeUndefined(child)
		}
		return val
	default:
		return val
	}
}
