// Package mock implements the programmable service-mock engine of spec
// §4.8: fixed/conditional/stateful/error/itemReader variants, threaded
// through executor constructors as a capability rather than a global
// (spec §9).
package mock

import "encoding/json"

// Variant is the mock-type discriminator (spec §3 Input 2 / §4.8).
type Variant string

const (
	VariantFixed       Variant = "fixed"
	VariantConditional Variant = "conditional"
	VariantStateful    Variant = "stateful"
	VariantError       Variant = "error"
	VariantItemReader  Variant = "itemReader"
)

// Config is the mock configuration document (spec §6 Input 2).
type Config struct {
	Version  string     `json:"version,omitempty"`
	BasePath string     `json:"-"`
	Mocks    []MockSpec `json:"mocks"`
}

// MockSpec is one entry of Config.Mocks.
type MockSpec struct {
	State       string  `json:"state"`
	Type        Variant `json:"type"`
	Description string  `json:"description,omitempty"`
	Delay       int     `json:"delay,omitempty"`

	// InputSchema, when present, is a JSON Schema the calling state's input
	// must validate against before a response is produced (spec §4.8's
	// ItemReader S3 validation, generalized to any mock).
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`

	// fixed
	Response     json.RawMessage `json:"response,omitempty"`
	ResponseFile string          `json:"responseFile,omitempty"`
	ResponseFormat string        `json:"responseFormat,omitempty"`

	// conditional
	Rules []ConditionalRule `json:"rules,omitempty"`

	// stateful
	Responses []StatefulEntry `json:"responses,omitempty"`

	// error
	Probability *float64  `json:"probability,omitempty"`
	Error       *ErrorSpec `json:"error,omitempty"`

	// itemReader
	Data        json.RawMessage  `json:"data,omitempty"`
	DataFile    string           `json:"dataFile,omitempty"`
	DataFormat  string           `json:"dataFormat,omitempty"`
	ItemReader  *ItemReaderShape `json:"itemReader,omitempty"`
	MaxItems    int              `json:"maxItems,omitempty"`
}

// ConditionalRule is one rule of a "conditional" mock (spec §4.8). Exactly
// one of {When+Response/ResponseFile/Error, Default} is meaningful.
type ConditionalRule struct {
	When         *WhenClause     `json:"when,omitempty"`
	Default      json.RawMessage `json:"default,omitempty"`
	Response     json.RawMessage `json:"response,omitempty"`
	ResponseFile string          `json:"responseFile,omitempty"`
	Error        *ErrorSpec      `json:"error,omitempty"`
}

// WhenClause requires an explicit "input" key (spec §6: "using bare
// partial objects is a hard error").
type WhenClause struct {
	Input json.RawMessage `json:"input"`
}

// StatefulEntry is one element of a stateful mock's response cycle.
type StatefulEntry struct {
	Response json.RawMessage `json:"response,omitempty"`
	Error    *ErrorSpec      `json:"error,omitempty"`
}

// ErrorSpec is the {type, cause, message} triple thrown by error mocks and
// conditional/stateful error entries.
type ErrorSpec struct {
	Type    string `json:"type"`
	Cause   string `json:"cause,omitempty"`
	Message string `json:"message,omitempty"`
}

// ItemReaderShape describes how to validate/shape an itemReader mock's
// array for a specific resource kind (spec §4.8's "validate and transform
// the array accordingly").
type ItemReaderShape struct {
	Resource string `json:"resource,omitempty"`
}

// HistoryEntry records one mock invocation (spec §5: "history is
// accumulated for assertions").
type HistoryEntry struct {
	State  string      `json:"state"`
	Input  interface{} `json:"input"`
	CallNo int         `json:"callNo"`
}
