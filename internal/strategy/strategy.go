// Package strategy implements the two per-state processing pipelines of
// spec §4.3: JSONPath mode (InputPath/Parameters/ResultSelector/
// ResultPath/OutputPath) and JSONata mode (Arguments/Assign/Output). Both
// are injected into the shared per-state executor contract at
// construction time (spec §9: "inject a strategy selected by the state's
// mode at construction; do not re-check mode inside executors").
package strategy

import (
	"context"

	"aslharness/internal/expr"
	"aslharness/internal/states"
)

// Strategy is implemented once per mode.
type Strategy interface {
	// Preprocess transforms the incoming input before the state-specific
	// executeState call.
	Preprocess(ctx context.Context, input interface{}, st *states.State, rc *RunContext) (interface{}, error)

	// Postprocess transforms executeState's raw result (and, in JSONata
	// mode, may mutate rc.Variables via Assign) before the result is
	// handed back to the outer state machine executor.
	Postprocess(ctx context.Context, result interface{}, originalInput interface{}, st *states.State, rc *RunContext) (interface{}, error)
}

// RunContext bundles what a strategy needs beyond the input/state pair:
// the synthesized context object and the mutable variables map (only
// JSONata mode writes to it, through Assign; JSONPath mode reads it when
// Parameters/ResultSelector templates reference "$name" variables, and
// never writes it).
type RunContext struct {
	Context   *expr.Context
	Variables map[string]interface{}
	JSONata   *expr.JSONataEngine
}

// ForMode returns the strategy implementation for a state's QueryLanguage.
func ForMode(mode states.QueryLanguage, jsonata *expr.JSONataEngine) Strategy {
	if mode == states.JSONata {
		return &JSONataStrategy{Engine: jsonata}
	}
	return &JSONPathStrategy{}
}
