// Package expr implements the two ASL expression evaluators named in
// spec §4.1 (JSONPath and JSONata) plus the JSONPath payload-template
// processor of spec §4.2. Both evaluators are pure functions over a data
// root and a bindings map; neither holds execution state of its own.
package expr

// Fixed context values for reproducible tests, per spec §6.
const (
	FixedExecutionID        = "arn:aws:states:us-east-1:123456789012:execution:StateMachine:test-execution"
	FixedExecutionName      = "test-execution"
	FixedExecutionStartTime = "2024-01-01T00:00:00.000Z"
	FixedExecutionRoleArn   = "arn:aws:iam::123456789012:role/StepFunctionsRole"
	FixedStateMachineName   = "StateMachine"
	FixedStateMachineID     = "arn:aws:states:us-east-1:123456789012:stateMachine:StateMachine"
	FixedStateEnteredTime   = "2024-01-01T00:00:00.000Z"
)

// Context is the synthesized context object ("$$" in JSONPath mode,
// "$states.context" in JSONata mode) exposing Execution/State/StateMachine
// and, while inside a Map iteration, Map.Item metadata.
type Context struct {
	Execution    ExecutionMeta          `json:"Execution"`
	StateMachine StateMachineMeta       `json:"StateMachine"`
	State        StateMeta              `json:"State"`
	Map          *MapMeta               `json:"Map,omitempty"`
	Task         map[string]interface{} `json:"Task,omitempty"`
}

type ExecutionMeta struct {
	ID        string `json:"Id"`
	Name      string `json:"Name"`
	StartTime string `json:"StartTime"`
	RoleArn   string `json:"RoleArn"`
}

type StateMachineMeta struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

type StateMeta struct {
	Name        string `json:"Name"`
	EnteredTime string `json:"EnteredTime"`
}

type MapMeta struct {
	Item struct {
		Index int         `json:"Index"`
		Value interface{} `json:"Value"`
	} `json:"Item"`
}

// NewContext builds the fixed-value context object for the current state.
func NewContext(stateName string) *Context {
	return &Context{
		Execution: ExecutionMeta{
			ID: FixedExecutionID, Name: FixedExecutionName,
			StartTime: FixedExecutionStartTime, RoleArn: FixedExecutionRoleArn,
		},
		StateMachine: StateMachineMeta{ID: FixedStateMachineID, Name: FixedStateMachineName},
		State:        StateMeta{Name: stateName, EnteredTime: FixedStateEnteredTime},
	}
}

// WithMapItem returns a shallow copy of ctx with Map.Item populated, used
// while evaluating a Map iteration's ItemSelector/Parameters (spec §4.7).
func (c *Context) WithMapItem(index int, value interface{}) *Context {
	cp := *c
	m := &MapMeta{}
	m.Item.Index = index
	m.Item.Value = value
	cp.Map = m
	return &cp
}

// ToMap renders the context object as a generic map for JSONPath/JSONata
// bindings consumption.
func (c *Context) ToMap() map[string]interface{} {
	out := map[string]interface{}{
		"Execution": map[string]interface{}{
			"Id": c.Execution.ID, "Name": c.Execution.Name,
			"StartTime": c.Execution.StartTime, "RoleArn": c.Execution.RoleArn,
		},
		"StateMachine": map[string]interface{}{"Id": c.StateMachine.ID, "Name": c.StateMachine.Name},
		"State":        map[string]interface{}{"Name": c.State.Name, "EnteredTime": c.State.EnteredTime},
	}
	if c.Map != nil {
		out["Map"] = map[string]interface{}{
			"Item": map[string]interface{}{"Index": c.Map.Item.Index, "Value": c.Map.Item.Value},
		}
	}
	if c.Task != nil {
		out["Task"] = c.Task
	}
	return out
}
