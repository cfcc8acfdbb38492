package exec

import (
	"testing"

	"aslharness/internal/states"
	"aslharness/internal/strategy"
)

func TestRunWithRetryExhaustsAttemptsThenReturnsError(t *testing.T) {
	st := &states.State{Retry: []states.RetryRule{
		{ErrorEquals: []string{"States.ALL"}, MaxAttempts: 2, IntervalSeconds: 0, BackoffRate: 1},
	}}
	calls := 0
	_, _, err := runWithRetry(nil, &execContext{}, st, &strategy.RunContext{}, func() (interface{}, string, error) {
		calls++
		return nil, "", &states.TaskError{Type: "States.TaskFailed"}
	})
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if calls != 3 {
		t.Errorf("expected 1 initial + 2 retries = 3 calls, got %d", calls)
	}
}

func TestRunWithRetryNoMatchReturnsImmediately(t *testing.T) {
	st := &states.State{Retry: []states.RetryRule{{ErrorEquals: []string{"Custom.Error"}}}}
	calls := 0
	_, _, err := runWithRetry(nil, &execContext{}, st, &strategy.RunContext{}, func() (interface{}, string, error) {
		calls++
		return nil, "", &states.TaskError{Type: "States.TaskFailed"}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Errorf("expected no retry on non-matching error, got %d calls", calls)
	}
}

func TestApplyCatchReturnsFirstMatchingRuleNext(t *testing.T) {
	st := &states.State{Catch: []states.CatchRule{
		{ErrorEquals: []string{"Custom.Other"}, Next: "WrongBranch"},
		{ErrorEquals: []string{"States.ALL"}, Next: "Recover"},
	}}
	next, caught := applyCatch(st, map[string]interface{}{}, &strategy.RunContext{}, &states.TaskError{Type: "States.TaskFailed"})
	if !caught || next != "Recover" {
		t.Errorf("expected catch to route to Recover, got next=%q caught=%v", next, caught)
	}
}

func TestApplyCatchNoRulesReturnsFalse(t *testing.T) {
	_, caught := applyCatch(&states.State{}, nil, &strategy.RunContext{}, &states.TaskError{Type: "Any"})
	if caught {
		t.Error("expected no catch when state has no Catch rules")
	}
}

func TestExecPassReturnsResultWhenSet(t *testing.T) {
	st := &states.State{Result: map[string]interface{}{"v": 1.0}}
	out, _, err := execPass(nil, nil, map[string]interface{}{"orig": true}, st, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := out.(map[string]interface{})
	if m["v"] != 1.0 {
		t.Errorf("expected Result to override input, got %#v", out)
	}
}

func TestExecPassPassesThroughWithoutResult(t *testing.T) {
	input := map[string]interface{}{"orig": true}
	out, _, err := execPass(nil, nil, input, &states.State{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m := out.(map[string]interface{}); m["orig"] != true {
		t.Errorf("expected passthrough, got %#v", out)
	}
}

func TestExecFailUsesErrorPathOverride(t *testing.T) {
	st := &states.State{Error: "Default.Error", ErrorPath: "$.err"}
	_, _, err := execFail(nil, nil, map[string]interface{}{"err": "Dynamic.Error"}, st, nil)
	taskErr, ok := err.(*states.TaskError)
	if !ok || taskErr.Type != "Dynamic.Error" {
		t.Errorf("expected ErrorPath to override static Error, got %#v", err)
	}
}
