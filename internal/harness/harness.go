// Package harness implements the test-suite runner named in spec §1/§6: a
// small, real collaborator that runs a list of named test cases against a
// shared state machine and mock engine, the way the distilled spec's
// "out of scope" test-suite runner would in a complete system.
package harness

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"

	"aslharness/internal/exec"
	"aslharness/internal/mock"
	"aslharness/internal/states"
)

// TestCase is one named scenario: an input, the expected output and/or
// execution path, and mock overrides scoped to this case only (spec §9:
// "overrides for a single test case ... cleared at case end").
type TestCase struct {
	Name           string
	Input          interface{}
	ExpectedOutput interface{}
	ExpectedPath   []string
	ExpectSuccess  *bool
	MockOverrides  map[string]mock.MockSpec
}

// CaseResult reports one TestCase's outcome.
type CaseResult struct {
	Name    string
	Passed  bool
	Reasons []string
	Result  *exec.ExecutionResult
}

// Suite runs a fixed state machine definition against a shared mock engine
// across many test cases, resetting the engine's call counts (but not its
// base configuration) between cases per spec §4.8/§9.
type Suite struct {
	Def *states.Definition
	Env *exec.Env
}

// NewSuite builds a Suite bound to a definition and the environment (mock
// engine + JSONata evaluator) every case will share.
func NewSuite(def *states.Definition, env *exec.Env) *Suite {
	return &Suite{Def: def, Env: env}
}

// Run executes every case in order, resetting mock call counts and
// clearing per-case overrides between cases so one case's stubbing never
// leaks into the next.
func (s *Suite) Run(ctx context.Context, cases []TestCase) []CaseResult {
	results := make([]CaseResult, 0, len(cases))
	for _, tc := range cases {
		results = append(results, s.runCase(ctx, tc))
		s.Env.Mock.ClearOverrides()
		s.Env.Mock.ResetCallCounts()
	}
	return results
}

func (s *Suite) runCase(ctx context.Context, tc TestCase) CaseResult {
	for stateName, spec := range tc.MockOverrides {
		s.Env.Mock.SetOverride(stateName, spec)
	}

	machine := exec.New(s.Def, s.Env)
	result := machine.Run(ctx, tc.Input)

	cr := CaseResult{Name: tc.Name, Result: result, Passed: true}

	if tc.ExpectSuccess != nil && result.Success != *tc.ExpectSuccess {
		cr.Passed = false
		cr.Reasons = append(cr.Reasons, fmt.Sprintf("expected success=%v, got %v (error=%s)", *tc.ExpectSuccess, result.Success, result.Error))
	}

	if tc.ExpectedOutput != nil && !deepEqualJSON(tc.ExpectedOutput, result.Output) {
		cr.Passed = false
		cr.Reasons = append(cr.Reasons, fmt.Sprintf("output mismatch: expected %v, got %v", tc.ExpectedOutput, result.Output))
	}

	if tc.ExpectedPath != nil {
		if diff := pathDiff(tc.ExpectedPath, result.ExecutionPath); diff != "" {
			cr.Passed = false
			cr.Reasons = append(cr.Reasons, "execution path mismatch: "+diff)
		}
	}

	return cr
}

// deepEqualJSON compares two values after round-tripping through JSON so
// a test author's Go literal (e.g. a plain int) compares equal to the
// interpreter's float64-typed output.
func deepEqualJSON(expected, actual interface{}) bool {
	a, errA := json.Marshal(expected)
	b, errB := json.Marshal(actual)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(expected, actual)
	}
	var av, bv interface{}
	json.Unmarshal(a, &av)
	json.Unmarshal(b, &bv)
	return reflect.DeepEqual(av, bv)
}

func pathDiff(expected, actual []string) string {
	if reflect.DeepEqual(expected, actual) {
		return ""
	}
	return fmt.Sprintf("expected %v, got %v", expected, actual)
}
