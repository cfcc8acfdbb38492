package exec

import (
	"context"

	"aslharness/internal/states"
)

// ExecutionResult is the Output contract of spec §6: a record of the final
// value, success/failure, the ordered path of visited states, the final
// variables map (JSONata mode), and the nested Map/Parallel metadata.
type ExecutionResult struct {
	Output             interface{}         `json:"output"`
	Success            bool                `json:"success"`
	Error              string              `json:"error,omitempty"`
	ExecutionPath      []string            `json:"executionPath"`
	Variables          map[string]interface{} `json:"variables"`
	StateExecutions    []StepExecution     `json:"stateExecutions"`
	MapExecutions      []MapExecution      `json:"mapExecutions"`
	ParallelExecutions []ParallelExecution `json:"parallelExecutions"`
}

// Machine is the top-level state-machine executor (spec §2/§6). It
// resolves StartAt and walks the definition through the very same
// runSequence the item-processor runner uses for Parallel branches and
// Map iterations, so there is exactly one state-walking loop in the
// package.
type Machine struct {
	Def *states.Definition
	Env *Env
}

// New builds a Machine bound to a parsed definition and a shared
// environment (mock engine, JSONata evaluator).
func New(def *states.Definition, env *Env) *Machine {
	return &Machine{Def: def, Env: env}
}

// Run executes the machine from StartAt with the given input and returns
// the full result record. It never panics on a failed run; failures are
// reported in the record per spec §7's "result record reports
// success: false... partial outputs and the visited path are preserved".
func (m *Machine) Run(ctx context.Context, input interface{}) *ExecutionResult {
	recorder := NewRecorder()
	stepLimit := m.Env.StepLimit
	if stepLimit <= 0 {
		stepLimit = DefaultTopLevelStepLimit
	}

	ectx := &execContext{Env: m.Env, Recorder: recorder, StepLimit: stepLimit}
	variables := map[string]interface{}{}

	output, path, finalVars, err := runSequence(ctx, m.Def, input, variables, ectx)

	result := &ExecutionResult{
		Output:             output,
		Success:            err == nil,
		ExecutionPath:      path,
		Variables:          finalVars,
		StateExecutions:    recorder.StateExecutions(),
		MapExecutions:      recorder.MapExecutions(),
		ParallelExecutions: recorder.ParallelExecutions(),
	}
	if err != nil {
		result.Error = errorKind(err)
	}
	return result
}

// errorKind extracts the reportable error "kind" string (spec §6
// Output: "error (kind string or absent)"): a TaskError's Type when
// present, else the error's message.
func errorKind(err error) string {
	if taskErr, ok := err.(*states.TaskError); ok {
		return taskErr.Type
	}
	return err.Error()
}
