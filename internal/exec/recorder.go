package exec

import "sync"

// Recorder accumulates the per-run bookkeeping lists named in spec §6's
// Output contract (stateExecutions/mapExecutions/parallelExecutions). It
// is shared by the top-level Machine and every nested item-processor
// runner invocation so Map/Parallel metadata recorded deep inside a
// branch still lands in the one run's result record.
type Recorder struct {
	mu                 sync.Mutex
	stateExecutions    []StepExecution
	mapExecutions      []MapExecution
	parallelExecutions []ParallelExecution
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) RecordState(se StepExecution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stateExecutions = append(r.stateExecutions, se)
}

func (r *Recorder) RecordMap(me MapExecution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mapExecutions = append(r.mapExecutions, me)
}

func (r *Recorder) RecordParallel(pe ParallelExecution) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parallelExecutions = append(r.parallelExecutions, pe)
}

func (r *Recorder) StateExecutions() []StepExecution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]StepExecution{}, r.stateExecutions...)
}

func (r *Recorder) MapExecutions() []MapExecution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]MapExecution{}, r.mapExecutions...)
}

func (r *Recorder) ParallelExecutions() []ParallelExecution {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ParallelExecution{}, r.parallelExecutions...)
}
