package exec

import (
	"context"
	"fmt"

	"aslharness/internal/expr"
	"aslharness/internal/states"
	"aslharness/internal/strategy"
)

// runSequence is the item-processor runner of spec §9/§2.6: a minimal
// self-contained loop over a sub state machine (a Map iteration body or
// a Parallel branch, or the top-level machine itself) that uses the same
// per-state executors (RunState) but never re-enters the outer driver.
// This is what breaks the reference cycle Parallel/Map would otherwise
// form with the top-level Machine.
func runSequence(ctx context.Context, def *states.Definition, input interface{}, variables map[string]interface{}, ectx *execContext) (output interface{}, path []string, finalVars map[string]interface{}, err error) {
	current := def.StartAt
	value := input
	vars := variables
	steps := 0

	for {
		steps++
		if steps > ectx.StepLimit {
			return value, path, vars, fmt.Errorf("exec: %w", states.ErrStepLimitExceeded)
		}

		st, ok := def.States[current]
		if !ok {
			return value, path, vars, fmt.Errorf("exec: state %q not found", current)
		}
		path = append(path, current)

		rc := &strategy.RunContext{
			Context:   expr.NewContext(current),
			Variables: vars,
			JSONata:   ectx.Env.JSONata,
		}

		result := RunState(ctx, ectx, value, st, rc)

		ectx.Recorder.RecordState(StepExecution{
			State:          current,
			ParentState:    ectx.ParentState,
			IterationIndex: ectx.IterationIndex,
			Success:        result.Success,
		})

		if !result.Success && result.CaughtBy == nil {
			return value, path, vars, result.Err
		}

		value = result.Output
		if result.End || result.NextState == "" {
			return value, path, vars, nil
		}
		current = result.NextState
	}
}
