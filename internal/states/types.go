// Package states models the Amazon States Language document as a tagged
// vocabulary of immutable Go values: one State per declared ASL state,
// all variants sharing one struct.
package states

import "encoding/json"

// QueryLanguage selects the expression dialect in effect for a state.
type QueryLanguage string

const (
	JSONPath QueryLanguage = "JSONPath"
	JSONata  QueryLanguage = "JSONata"
)

// Type is the ASL `Type` discriminator.
type Type string

const (
	TypePass     Type = "Pass"
	TypeTask     Type = "Task"
	TypeWait     Type = "Wait"
	TypeChoice   Type = "Choice"
	TypeSucceed  Type = "Succeed"
	TypeFail     Type = "Fail"
	TypeParallel Type = "Parallel"
	TypeMap      Type = "Map"
)

// ProcessorMode distinguishes the two Map sub-variants named in the spec's
// 9x2 state/mode matrix.
type ProcessorMode string

const (
	ModeInline      ProcessorMode = "INLINE"
	ModeDistributed ProcessorMode = "DISTRIBUTED"
)

// Definition is a parsed, validated state machine: the root of the 9x2
// tagged-variant graph. It is immutable after Parse returns.
type Definition struct {
	Comment       string           `json:"Comment,omitempty"`
	StartAt       string           `json:"StartAt"`
	QueryLanguage QueryLanguage    `json:"QueryLanguage,omitempty"`
	States        map[string]*State `json:"States"`

	// Names preserves declaration order for deterministic round-tripping
	// and for branch/iterator ordinal assignment (spec §4.6 TESTABLE
	// PROPERTIES #3: branch index must match declaration order).
	Names []string `json:"-"`
}

// State is a single ASL state. Rather than a class hierarchy per Type, all
// variants share this one struct; fields that do not apply to a state's
// Type/QueryLanguage combination are left at their zero value. Parse
// rejects fields that belong to the other QueryLanguage; it does not
// reject fields that belong to a different Type.
type State struct {
	Name          string        `json:"-"`
	Type          Type          `json:"Type"`
	QueryLanguage QueryLanguage `json:"QueryLanguage,omitempty"`
	Comment       string        `json:"Comment,omitempty"`

	// Transition.
	Next string `json:"Next,omitempty"`
	End  bool   `json:"End,omitempty"`

	// JSONPath-mode transform fields.
	InputPath  *string                `json:"InputPath,omitempty"`
	Parameters map[string]interface{} `json:"Parameters,omitempty"`
	ResultPath *string                `json:"ResultPath,omitempty"`
	OutputPath *string                `json:"OutputPath,omitempty"`

	// JSONata-mode transform fields.
	Arguments map[string]interface{} `json:"Arguments,omitempty"`
	Assign    map[string]interface{} `json:"Assign,omitempty"`
	Output    interface{}            `json:"Output,omitempty"`

	// Pass.
	Result interface{} `json:"Result,omitempty"`

	// Task.
	Resource       string                 `json:"Resource,omitempty"`
	ResultSelector map[string]interface{} `json:"ResultSelector,omitempty"`
	Retry          []RetryRule            `json:"Retry,omitempty"`
	Catch          []CatchRule            `json:"Catch,omitempty"`

	// Wait.
	Seconds       *float64 `json:"Seconds,omitempty"`
	SecondsPath   string   `json:"SecondsPath,omitempty"`
	Timestamp     string   `json:"Timestamp,omitempty"`
	TimestampPath string   `json:"TimestampPath,omitempty"`

	// Choice.
	Choices []ChoiceRule `json:"Choices,omitempty"`
	Default string       `json:"Default,omitempty"`

	// Fail.
	Error     string `json:"Error,omitempty"`
	Cause     string `json:"Cause,omitempty"`
	ErrorPath string `json:"ErrorPath,omitempty"`
	CausePath string `json:"CausePath,omitempty"`

	// Parallel.
	Branches []*Definition `json:"Branches,omitempty"`

	// Map (shared).
	ItemsPath     string                 `json:"ItemsPath,omitempty"`
	Items         interface{}            `json:"Items,omitempty"`
	ItemSelector  map[string]interface{} `json:"ItemSelector,omitempty"`
	MaxConcurrency int                   `json:"MaxConcurrency,omitempty"`
	ItemProcessor *ItemProcessor         `json:"ItemProcessor,omitempty"`

	// Map (Distributed only).
	ItemReader       *ItemReader       `json:"ItemReader,omitempty"`
	ItemBatcher      *ItemBatcher      `json:"ItemBatcher,omitempty"`
	ResultWriter     *ResultWriter     `json:"ResultWriter,omitempty"`
	ToleratedFailureCount      *int     `json:"ToleratedFailureCount,omitempty"`
	ToleratedFailurePercentage *float64 `json:"ToleratedFailurePercentage,omitempty"`
	ToleratedFailureCountPath      string `json:"ToleratedFailureCountPath,omitempty"`
	ToleratedFailurePercentagePath string `json:"ToleratedFailurePercentagePath,omitempty"`
}

// ItemProcessor is the Map state's nested sub-machine plus its mode tag.
type ItemProcessor struct {
	ProcessorConfig struct {
		Mode ProcessorMode `json:"Mode"`
	} `json:"ProcessorConfig"`
	StartAt string            `json:"StartAt"`
	States  map[string]*State `json:"States"`
	Names   []string          `json:"-"`
}

func (p *ItemProcessor) AsDefinition(lang QueryLanguage) *Definition {
	return &Definition{StartAt: p.StartAt, States: p.States, Names: p.Names, QueryLanguage: lang}
}

// ItemReader describes a Distributed Map external data source. The mock
// engine, not this package, supplies the actual array (spec §4.7/§4.8).
type ItemReader struct {
	Resource   string                 `json:"Resource"`
	Parameters map[string]interface{} `json:"Parameters,omitempty"`
}

// ItemBatcher groups items into BatchInput-carrying batch objects.
type ItemBatcher struct {
	MaxItemsPerBatch     int                    `json:"MaxItemsPerBatch,omitempty"`
	MaxInputBytesPerBatch int                   `json:"MaxInputBytesPerBatch,omitempty"`
	BatchInput           map[string]interface{} `json:"BatchInput,omitempty"`
}

// ResultWriter redirects Distributed Map results away from the inline
// output, per spec §4.7.
type ResultWriter struct {
	Resource   string                 `json:"Resource,omitempty"`
	Parameters map[string]interface{} `json:"Parameters,omitempty"`
}

// RetryRule is one entry of a Task/Parallel/Map Retry array.
type RetryRule struct {
	ErrorEquals     []string `json:"ErrorEquals"`
	IntervalSeconds float64  `json:"IntervalSeconds,omitempty"`
	MaxAttempts     int      `json:"MaxAttempts,omitempty"`
	BackoffRate     float64  `json:"BackoffRate,omitempty"`
}

// CatchRule is one entry of a Task/Parallel/Map Catch array.
type CatchRule struct {
	ErrorEquals []string `json:"ErrorEquals"`
	ResultPath  string   `json:"ResultPath,omitempty"`
	Next        string   `json:"Next"`
}

// ChoiceRule is the disjoint union named in spec §3: exactly one of a
// logical combinator or a single comparison operator is populated.
type ChoiceRule struct {
	// Logical combinators.
	And []ChoiceRule `json:"And,omitempty"`
	Or  []ChoiceRule `json:"Or,omitempty"`
	Not *ChoiceRule  `json:"Not,omitempty"`

	// JSONata mode.
	Condition string `json:"Condition,omitempty"`

	// JSONPath mode: comparison operators. Variable plus exactly one of
	// the Op* fields below.
	Variable string `json:"Variable,omitempty"`

	StringEquals     *string `json:"StringEquals,omitempty"`
	StringEqualsPath *string `json:"StringEqualsPath,omitempty"`
	StringLessThan   *string `json:"StringLessThan,omitempty"`
	StringLessThanPath *string `json:"StringLessThanPath,omitempty"`
	StringGreaterThan *string `json:"StringGreaterThan,omitempty"`
	StringGreaterThanPath *string `json:"StringGreaterThanPath,omitempty"`
	StringLessThanEquals *string `json:"StringLessThanEquals,omitempty"`
	StringLessThanEqualsPath *string `json:"StringLessThanEqualsPath,omitempty"`
	StringGreaterThanEquals *string `json:"StringGreaterThanEquals,omitempty"`
	StringGreaterThanEqualsPath *string `json:"StringGreaterThanEqualsPath,omitempty"`
	StringMatches *string `json:"StringMatches,omitempty"`

	NumericEquals     *float64 `json:"NumericEquals,omitempty"`
	NumericEqualsPath *string  `json:"NumericEqualsPath,omitempty"`
	NumericLessThan   *float64 `json:"NumericLessThan,omitempty"`
	NumericLessThanPath *string `json:"NumericLessThanPath,omitempty"`
	NumericGreaterThan *float64 `json:"NumericGreaterThan,omitempty"`
	NumericGreaterThanPath *string `json:"NumericGreaterThanPath,omitempty"`
	NumericLessThanEquals *float64 `json:"NumericLessThanEquals,omitempty"`
	NumericLessThanEqualsPath *string `json:"NumericLessThanEqualsPath,omitempty"`
	NumericGreaterThanEquals *float64 `json:"NumericGreaterThanEquals,omitempty"`
	NumericGreaterThanEqualsPath *string `json:"NumericGreaterThanEqualsPath,omitempty"`

	BooleanEquals     *bool   `json:"BooleanEquals,omitempty"`
	BooleanEqualsPath *string `json:"BooleanEqualsPath,omitempty"`

	TimestampEquals     *string `json:"TimestampEquals,omitempty"`
	TimestampEqualsPath *string `json:"TimestampEqualsPath,omitempty"`
	TimestampLessThan   *string `json:"TimestampLessThan,omitempty"`
	TimestampLessThanPath *string `json:"TimestampLessThanPath,omitempty"`
	TimestampGreaterThan *string `json:"TimestampGreaterThan,omitempty"`
	TimestampGreaterThanPath *string `json:"TimestampGreaterThanPath,omitempty"`
	TimestampLessThanEquals *string `json:"TimestampLessThanEquals,omitempty"`
	TimestampLessThanEqualsPath *string `json:"TimestampLessThanEqualsPath,omitempty"`
	TimestampGreaterThanEquals *string `json:"TimestampGreaterThanEquals,omitempty"`
	TimestampGreaterThanEqualsPath *string `json:"TimestampGreaterThanEqualsPath,omitempty"`

	IsNull      *bool `json:"IsNull,omitempty"`
	IsPresent   *bool `json:"IsPresent,omitempty"`
	IsNumeric   *bool `json:"IsNumeric,omitempty"`
	IsString    *bool `json:"IsString,omitempty"`
	IsBoolean   *bool `json:"IsBoolean,omitempty"`
	IsTimestamp *bool `json:"IsTimestamp,omitempty"`

	Next string `json:"Next,omitempty"`
}

// Clone returns a structural copy via JSON round-trip, used by the
// round-trip invariant test (spec §8 property 9).
func (d *Definition) Clone() (*Definition, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}
