package exec

import (
	"context"
	"fmt"
	"time"

	"aslharness/internal/expr"
	"aslharness/internal/mock"
	"aslharness/internal/states"
	"aslharness/internal/strategy"
)

// execContext bundles what every state-type handler needs beyond the
// input/state pair: the shared environment (mock engine, JSONata
// engine), the run's bookkeeping recorder, and the step limit each
// state sequence enforces (nested runs inherit the top-level value).
type execContext struct {
	Env       *Env
	Recorder  *Recorder
	StepLimit int

	// ParentState/IterationIndex tag stateExecutions recorded while
	// inside a Parallel branch or Map iteration (spec §4.6).
	ParentState    string
	IterationIndex *int
}

// typeHandler is the type-specific core of the per-state template method
// (spec §4.4 step 2, "executeState"). It returns the raw (pre-postprocess)
// result and, for Choice, an explicit next-state override.
type typeHandler func(ctx context.Context, ectx *execContext, input interface{}, st *states.State, rc *strategy.RunContext) (output interface{}, explicitNext string, err error)

var handlers = map[states.Type]typeHandler{
	states.TypePass:     execPass,
	states.TypeTask:     execTask,
	states.TypeWait:     execWait,
	states.TypeChoice:   execChoice,
	states.TypeSucceed:  execTerminal,
	states.TypeFail:     execFail,
	states.TypeParallel: execParallel,
	states.TypeMap:      execMap,
}

// RunState is the shared template method of spec §4.4: preprocess,
// execute, postprocess, then interpret Retry/Catch. It is used uniformly
// by both the top-level Machine and the item-processor runner, so
// neither re-implements per-state semantics.
func RunState(ctx context.Context, ectx *execContext, input interface{}, st *states.State, rc *strategy.RunContext) Result {
	strat := strategy.ForMode(st.QueryLanguage, ectx.Env.JSONata)

	preprocessed, err := strat.Preprocess(ctx, input, st, rc)
	if err != nil {
		return Result{Success: false, Err: err}
	}

	handler, ok := handlers[st.Type]
	if !ok {
		return Result{Success: false, Err: fmt.Errorf("exec: no handler for state type %q", st.Type)}
	}

	raw, explicitNext, err := runWithRetry(ctx, ectx, st, rc, func() (interface{}, string, error) {
		return handler(ctx, ectx, preprocessed, st, rc)
	})

	if err != nil {
		if nextOnCatch, caught := applyCatch(st, preprocessed, rc, err); caught {
			caughtOutput := preprocessed
			taskErr, ok := err.(*states.TaskError)
			if !ok {
				taskErr = &states.TaskError{Type: states.ErrorTaskFailed, Message: err.Error()}
			}
			for _, rule := range st.Catch {
				if taskErr.Matches(rule.ErrorEquals) {
					if rule.ResultPath != "" {
						errObj := map[string]interface{}{"Error": taskErr.Type, "Cause": taskErr.Cause}
						if merged, setErr := expr.SetPath(preprocessed, rule.ResultPath, errObj); setErr == nil {
							caughtOutput = merged
						}
					}
					break
				}
			}
			return Result{Output: caughtOutput, NextState: nextOnCatch, Success: false, Err: err, CaughtBy: &nextOnCatch}
		}
		return Result{Success: false, Err: err}
	}

	out, err := strat.Postprocess(ctx, raw, preprocessed, st, rc)
	if err != nil {
		return Result{Success: false, Err: err}
	}

	next := st.Next
	if explicitNext != "" {
		next = explicitNext
	}
	return Result{Output: out, NextState: next, End: st.End && explicitNext == "", Success: true}
}

// runWithRetry applies spec §4.4's Retry policy: attempts increment
// against ErrorEquals matches, sleeping IntervalSeconds*BackoffRate^n
// between attempts (capped, like Wait, to keep the suite fast).
func runWithRetry(ctx context.Context, ectx *execContext, st *states.State, rc *strategy.RunContext, fn func() (interface{}, string, error)) (interface{}, string, error) {
	if len(st.Retry) == 0 {
		return fn()
	}

	attempt := 0
	for {
		out, next, err := fn()
		if err == nil {
			return out, next, nil
		}
		rule, ok := matchRetryRule(st.Retry, err)
		if !ok {
			return nil, "", err
		}
		maxAttempts := rule.MaxAttempts
		if maxAttempts == 0 {
			maxAttempts = 3
		}
		if attempt >= maxAttempts {
			return nil, "", err
		}
		attempt++
		backoff := rule.BackoffRate
		if backoff == 0 {
			backoff = 2.0
		}
		wait := rule.IntervalSeconds
		if wait == 0 {
			wait = 1
		}
		for i := 1; i < attempt; i++ {
			wait *= backoff
		}
		sleepMS := int(wait * 1000)
		if sleepMS > 100 {
			sleepMS = 100
		}
		time.Sleep(time.Duration(sleepMS) * time.Millisecond)
	}
}

func matchRetryRule(rules []states.RetryRule, err error) (states.RetryRule, bool) {
	taskErr, ok := err.(*states.TaskError)
	if !ok {
		taskErr = &states.TaskError{Type: states.ErrorTaskFailed, Message: err.Error()}
	}
	for _, rule := range rules {
		if taskErr.Matches(rule.ErrorEquals) {
			return rule, true
		}
	}
	return states.RetryRule{}, false
}

// applyCatch implements spec §4.4/§7: the first matching Catch handler's
// Next is returned; RunState injects the error at that rule's ResultPath.
func applyCatch(st *states.State, input interface{}, rc *strategy.RunContext, err error) (string, bool) {
	if len(st.Catch) == 0 {
		return "", false
	}
	taskErr, ok := err.(*states.TaskError)
	if !ok {
		taskErr = &states.TaskError{Type: states.ErrorTaskFailed, Message: err.Error()}
	}
	for _, rule := range st.Catch {
		if taskErr.Matches(rule.ErrorEquals) {
			if rule.ResultPath != "" {
				errObj := map[string]interface{}{"Error": taskErr.Type, "Cause": taskErr.Cause}
				if _, setErr := expr.SetPath(input, rule.ResultPath, errObj); setErr == nil {
					// best effort; result merging happens in the caller
				}
			}
			return rule.Next, true
		}
	}
	return "", false
}

func execPass(_ context.Context, _ *execContext, input interface{}, st *states.State, _ *strategy.RunContext) (interface{}, string, error) {
	if st.Result != nil {
		return st.Result, "", nil
	}
	return input, "", nil
}

func execTask(_ context.Context, ectx *execContext, input interface{}, st *states.State, _ *strategy.RunContext) (interface{}, string, error) {
	hint := mock.DefaultHint{Resource: st.Resource, Type: st.Type}
	resp, err := ectx.Env.Mock.GetMockResponse(st.Name, input, hint)
	if err != nil {
		return nil, "", err
	}
	return applyLambdaConvention(st, resp, input), "", nil
}

// applyLambdaConvention wraps an absent/raw response per spec §4.4's
// Lambda-integration convention when the mock returned nothing but the
// Resource names a Lambda invocation.
func applyLambdaConvention(st *states.State, resp interface{}, input interface{}) interface{} {
	if resp != nil {
		return resp
	}
	if containsLambdaInvoke(st.Resource) {
		return map[string]interface{}{"Payload": input, "StatusCode": 200.0, "ExecutedVersion": "$LATEST"}
	}
	return input
}

func containsLambdaInvoke(resource string) bool {
	return len(resource) >= len("lambda:invoke") && indexOf(resource, "lambda:invoke") >= 0
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func execWait(_ context.Context, _ *execContext, input interface{}, st *states.State, rc *strategy.RunContext) (interface{}, string, error) {
	// Boundary behavior (spec §8): a Timestamp in the past returns
	// immediately; otherwise the wait is capped at 100ms for test speed
	// (spec §4.4/§9), real elapsed time is not a contract.
	ms := resolveWaitMillis(st, input, rc)
	if ms > 100 {
		ms = 100
	}
	if ms > 0 {
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
	return input, "", nil
}

func resolveWaitMillis(st *states.State, input interface{}, rc *strategy.RunContext) int {
	if st.Seconds != nil {
		return int(*st.Seconds * 1000)
	}
	if st.SecondsPath != "" {
		if v, ok := expr.GetPath(input, st.SecondsPath); ok {
			if f, err := toFloatLocal(v); err == nil {
				return int(f * 1000)
			}
		}
		return 0
	}
	if st.Timestamp != "" {
		return millisUntil(st.Timestamp)
	}
	if st.TimestampPath != "" {
		if v, ok := expr.GetPath(input, st.TimestampPath); ok {
			if s, ok := v.(string); ok {
				return millisUntil(s)
			}
		}
	}
	return 0
}

func millisUntil(ts string) int {
	target, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return 0
	}
	d := time.Until(target)
	if d <= 0 {
		return 0
	}
	return int(d.Milliseconds())
}

func toFloatLocal(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("exec: value is not numeric")
	}
}

func execTerminal(_ context.Context, _ *execContext, input interface{}, _ *states.State, _ *strategy.RunContext) (interface{}, string, error) {
	return input, "", nil
}

func execFail(_ context.Context, _ *execContext, input interface{}, st *states.State, _ *strategy.RunContext) (interface{}, string, error) {
	errName := st.Error
	cause := st.Cause
	if st.ErrorPath != "" {
		if v, ok := expr.GetPath(input, st.ErrorPath); ok {
			if s, ok := v.(string); ok {
				errName = s
			}
		}
	}
	if st.CausePath != "" {
		if v, ok := expr.GetPath(input, st.CausePath); ok {
			if s, ok := v.(string); ok {
				cause = s
			}
		}
	}
	return nil, "", &states.TaskError{Type: errName, Cause: cause, Message: fmt.Sprintf("%s: %s", errName, cause)}
}

