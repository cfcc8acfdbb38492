package exec

// StepExecution records one state's invocation for ctx.stateExecutions
// (spec §6 Output / §4.6 "recorded ... with parentState ... and
// iterationIndex").
type StepExecution struct {
	State          string `json:"state"`
	ParentState    string `json:"parentState,omitempty"`
	IterationIndex *int   `json:"iterationIndex,omitempty"`
	Success        bool   `json:"success"`
}

// MapExecution is one entry of ctx.mapExecutions (spec §4.7 Metadata).
type MapExecution struct {
	Type           string   `json:"type"`
	State          string   `json:"state"`
	IterationCount int      `json:"iterationCount"`
	IterationPaths [][]string `json:"iterationPaths"`
	ProcessorMode  string   `json:"processorMode,omitempty"`
	ItemCount      int      `json:"itemCount,omitempty"`
	ResultCount    int      `json:"resultCount,omitempty"`
}

// ParallelExecution is one entry of ctx.parallelExecutions (spec §4.6).
type ParallelExecution struct {
	State       string     `json:"state"`
	BranchCount int        `json:"branchCount"`
	BranchPaths [][]string `json:"branchPaths"`
}

// Result is the outcome of a single state's run through the shared
// template method (spec §4.4): output, the next transition, and error
// information for the outer driver to interpret.
type Result struct {
	Output   interface{}
	NextState string
	End       bool
	Success   bool
	Err       error
	// CaughtBy is set when a Catch rule routed the error to a handler
	// rather than surfacing it, so the outer driver knows this is not a
	// fatal failure.
	CaughtBy *string
}
