// Package exec implements spec §4.4-§4.8: one executor per ASL state
// type sharing a common template-method contract, the item-processor
// runner that breaks the cyclic composition Map/Parallel would otherwise
// create with the outer state-machine executor, and that outer executor
// itself.
package exec

import (
	"aslharness/internal/expr"
	"aslharness/internal/mock"
)

// Env bundles the collaborators every executor needs but none of them
// own: the mock engine (a capability, not a global, per spec §9) and the
// shared JSONata evaluator. StepLimit bounds each state sequence of a
// run: the top-level machine and every nested Map iteration or Parallel
// branch each get their own budget of StepLimit steps.
type Env struct {
	Mock      *mock.Engine
	JSONata   *expr.JSONataEngine
	StepLimit int
}

// DefaultTopLevelStepLimit is the StepLimit used when Env.StepLimit is
// zero. DefaultSubStepLimit is not applied by the executors: nested runs
// use the same StepLimit as the top-level run.
const (
	DefaultTopLevelStepLimit = 1000
	DefaultSubStepLimit      = 100
)
