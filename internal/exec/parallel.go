package exec

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"aslharness/internal/states"
	"aslharness/internal/strategy"
)

// execParallel implements spec §4.6: every branch is an independent sub
// state machine, all run concurrently, and the output is an array
// positionally matching branch declaration order regardless of
// completion order.
func execParallel(ctx context.Context, ectx *execContext, input interface{}, st *states.State, rc *strategy.RunContext) (interface{}, string, error) {
	if len(st.Branches) == 0 {
		return nil, "", fmt.Errorf("exec: parallel state %q has no branches", st.Name)
	}

	outputs := make([]interface{}, len(st.Branches))
	paths := make([][]string, len(st.Branches))

	g, gctx := errgroup.WithContext(ctx)
	for i, branch := range st.Branches {
		i, branch := i, branch
		g.Go(func() error {
			branchVars := deepCopyMap(rc.Variables)
			idx := i
			branchEctx := &execContext{
				Env:            ectx.Env,
				Recorder:       ectx.Recorder,
				StepLimit:      ectx.StepLimit,
				ParentState:    st.Name,
				IterationIndex: &idx,
			}
			out, path, _, err := runSequence(gctx, branch, input, branchVars, branchEctx)
			paths[idx] = path
			if err != nil {
				return fmt.Errorf("branch %d: %w", idx, err)
			}
			outputs[idx] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		ectx.Recorder.RecordParallel(ParallelExecution{State: st.Name, BranchCount: len(st.Branches), BranchPaths: paths})
		return nil, "", fmt.Errorf("%w: Branch execution failed: %v", states.ErrBranchFailed, err)
	}

	ectx.Recorder.RecordParallel(ParallelExecution{State: st.Name, BranchCount: len(st.Branches), BranchPaths: paths})
	return outputs, "", nil
}
