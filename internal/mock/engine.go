package mock

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"reflect"
	"strings"
	"sync"

	"aslharness/internal/states"
)

// DefaultHint carries just enough about the calling state for Engine to
// synthesize a service-aware default response when no mock is configured
// (spec §4.8).
type DefaultHint struct {
	Resource    string
	Type        states.Type
	BranchCount int
}

// Engine is the mock engine of spec §4.8, threaded through executor
// constructors as a capability (spec §9) rather than looked up from a
// global registry.
type Engine struct {
	mu         sync.Mutex
	base       []MockSpec
	overrides  map[string]MockSpec // per-test-case shadow, keyed by state name
	callCounts map[string]int
	history    []HistoryEntry
	rand       *rand.Rand
}

// New builds an Engine from a loaded Config.
func New(cfg *Config) *Engine {
	return &Engine{
		base:       cfg.Mocks,
		overrides:  make(map[string]MockSpec),
		callCounts: make(map[string]int),
		rand:       rand.New(rand.NewSource(1)),
	}
}

// SetOverride installs a per-test-case mock that shadows the base
// configuration for stateName (spec §9: "overrides for a single test case
// are merged into a secondary lookup that shadows the base configuration
// and is cleared at case end").
func (e *Engine) SetOverride(stateName string, spec MockSpec) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.overrides[stateName] = spec
}

// ClearOverrides removes all per-test-case overrides.
func (e *Engine) ClearOverrides() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.overrides = make(map[string]MockSpec)
}

// ResetCallCounts zeroes every stateful/error mock's call counter between
// test cases (spec §4.8/§5), while leaving accumulated history intact.
func (e *Engine) ResetCallCounts() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.callCounts = make(map[string]int)
}

// History returns the accumulated call history for assertions (spec §5).
func (e *Engine) History() []HistoryEntry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]HistoryEntry{}, e.history...)
}

// GetMockResponse is the engine's one public call (spec §4.8).
func (e *Engine) GetMockResponse(stateName string, input interface{}, hint DefaultHint) (interface{}, error) {
	spec, found := e.lookup(stateName)

	e.mu.Lock()
	callNo := e.callCounts[stateName]
	e.callCounts[stateName] = callNo + 1
	e.history = append(e.history, HistoryEntry{State: stateName, Input: input, CallNo: callNo})
	e.mu.Unlock()

	if !found {
		return defaultResponse(hint, input), nil
	}

	if len(spec.InputSchema) > 0 {
		if err := validateAgainstSchema(spec.InputSchema, input); err != nil {
			return nil, fmt.Errorf("mock: state %q: input schema validation failed: %w", stateName, err)
		}
	}

	if spec.Delay > 0 {
		sleepCapped(spec.Delay)
	}

	switch spec.Type {
	case VariantFixed:
		return e.fixed(spec)
	case VariantConditional:
		return e.conditional(spec, input)
	case VariantStateful:
		return e.stateful(spec, callNo)
	case VariantError:
		return e.errorVariant(spec)
	case VariantItemReader:
		return e.itemReader(spec)
	default:
		return nil, fmt.Errorf("mock: unknown variant %q for state %q", spec.Type, stateName)
	}
}

// lookup applies spec §4.8's order: in-scope override first, then the
// first matching base definition ("first definition wins").
func (e *Engine) lookup(stateName string) (MockSpec, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if spec, ok := e.overrides[stateName]; ok {
		return spec, true
	}
	for _, spec := range e.base {
		if spec.State == stateName {
			return spec, true
		}
	}
	return MockSpec{}, false
}

func (e *Engine) fixed(spec MockSpec) (interface{}, error) {
	if len(spec.Response) > 0 {
		return cloneJSON(spec.Response)
	}
	if spec.ResponseFile != "" {
		return loadDataFile(spec.ResponseFile, spec.ResponseFormat)
	}
	return nil, fmt.Errorf("mock: fixed mock for %q has neither response nor responseFile", spec.State)
}

func (e *Engine) conditional(spec MockSpec, input interface{}) (interface{}, error) {
	for _, rule := range spec.Rules {
		if rule.When == nil {
			if rule.Default != nil {
				return cloneJSON(rule.Default)
			}
			return nil, fmt.Errorf("mock: conditional rule for %q has neither when nor default", spec.State)
		}
		if len(rule.When.Input) == 0 {
			return nil, fmt.Errorf("mock: conditional when clause for %q must carry an explicit input key", spec.State)
		}
		var pattern interface{}
		if err := json.Unmarshal(rule.When.Input, &pattern); err != nil {
			return nil, err
		}
		if partialDeepMatch(pattern, input) {
			if rule.Error != nil {
				return nil, throwErrorSpec(rule.Error)
			}
			if len(rule.Response) > 0 {
				return cloneJSON(rule.Response)
			}
			if rule.ResponseFile != "" {
				return loadDataFile(rule.ResponseFile, "")
			}
			return nil, nil
		}
	}
	return nil, fmt.Errorf("mock: no conditional rule matched input for state %q", spec.State)
}

func (e *Engine) stateful(spec MockSpec, callNo int) (interface{}, error) {
	if len(spec.Responses) == 0 {
		return nil, fmt.Errorf("mock: stateful mock for %q has no responses", spec.State)
	}
	entry := spec.Responses[callNo%len(spec.Responses)]
	if entry.Error != nil {
		return nil, throwErrorSpec(entry.Error)
	}
	return cloneJSON(entry.Response)
}

func (e *Engine) errorVariant(spec MockSpec) (interface{}, error) {
	prob := 1.0
	if spec.Probability != nil {
		prob = *spec.Probability
	}
	e.mu.Lock()
	roll := e.rand.Float64()
	e.mu.Unlock()
	if roll < prob {
		if spec.Error != nil {
			return nil, throwErrorSpec(spec.Error)
		}
		return nil, &states.TaskError{Type: states.ErrorTaskFailed, Message: "mocked error"}
	}
	return nil, nil
}

func (e *Engine) itemReader(spec MockSpec) (interface{}, error) {
	var arr []interface{}
	if len(spec.Data) > 0 {
		if err := json.Unmarshal(spec.Data, &arr); err != nil {
			return nil, err
		}
	} else if spec.DataFile != "" {
		val, err := loadDataFile(spec.DataFile, spec.DataFormat)
		if err != nil {
			return nil, err
		}
		asArr, ok := val.([]interface{})
		if !ok {
			return nil, fmt.Errorf("mock: dataFile %q did not contain an array", spec.DataFile)
		}
		arr = asArr
	} else {
		return nil, fmt.Errorf("mock: itemReader mock for %q has neither data nor dataFile", spec.State)
	}

	if spec.ItemReader != nil {
		shaped, err := shapeItemReaderArray(arr, spec.ItemReader.Resource)
		if err != nil {
			return nil, err
		}
		arr = shaped
	}

	if spec.MaxItems > 0 && len(arr) > spec.MaxItems {
		arr = arr[:spec.MaxItems]
	}
	return arr, nil
}

func throwErrorSpec(spec *ErrorSpec) error {
	return &states.TaskError{Type: spec.Type, Cause: spec.Cause, Message: spec.Message}
}

func cloneJSON(raw json.RawMessage) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// partialDeepMatch implements spec §4.8/§8's partial-deep-equal rule:
// every key present in pattern must exist in actual with an equal value,
// recursively; arrays must match length and element-wise.
func partialDeepMatch(pattern, actual interface{}) bool {
	switch p := pattern.(type) {
	case map[string]interface{}:
		a, ok := actual.(map[string]interface{})
		if !ok {
			return false
		}
		for k, pv := range p {
			av, present := a[k]
			if !present || !partialDeepMatch(pv, av) {
				return false
			}
		}
		return true
	case []interface{}:
		a, ok := actual.([]interface{})
		if !ok || len(a) != len(p) {
			return false
		}
		for i := range p {
			if !partialDeepMatch(p[i], a[i]) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(pattern, actual)
	}
}

// defaultResponse synthesizes the service-aware default shapes of spec
// §4.8 when no mock is configured for a Task/Parallel/Map state.
func defaultResponse(hint DefaultHint, input interface{}) interface{} {
	resource := hint.Resource
	switch {
	case hint.Type == states.TypeMap:
		return []interface{}{}
	case hint.Type == states.TypeParallel:
		out := make([]interface{}, hint.BranchCount)
		for i := range out {
			out[i] = input
		}
		return out
	case strings.Contains(resource, "lambda:invoke"):
		return map[string]interface{}{
			"Payload":         input,
			"StatusCode":      200.0,
			"ExecutedVersion": "$LATEST",
		}
	case strings.HasPrefix(resource, "arn:aws:lambda:"):
		return input
	case strings.Contains(resource, "states:startExecution.sync:2"):
		return map[string]interface{}{
			"Output": input, "ExecutionArn": "arn:aws:states:us-east-1:123456789012:execution:Child:test",
			"StartDate": "2024-01-01T00:00:00.000Z", "StopDate": "2024-01-01T00:00:00.000Z", "Status": "SUCCEEDED",
		}
	case strings.Contains(resource, "states:startExecution.sync"):
		out, _ := json.Marshal(input)
		return map[string]interface{}{
			"Output": string(out), "ExecutionArn": "arn:aws:states:us-east-1:123456789012:execution:Child:test",
			"StartDate": "2024-01-01T00:00:00.000Z", "StopDate": "2024-01-01T00:00:00.000Z", "Status": "SUCCEEDED",
		}
	case strings.Contains(resource, "states:startExecution"):
		return map[string]interface{}{
			"ExecutionArn": "arn:aws:states:us-east-1:123456789012:execution:Child:test",
			"StartDate":    "2024-01-01T00:00:00.000Z",
		}
	default:
		return input
	}
}
