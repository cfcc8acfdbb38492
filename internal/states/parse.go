package states

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Parse is the single factory mentioned in spec §3/§9: it discriminates a
// raw ASL document into the tagged State vocabulary and rejects
// mode-violating or structurally invalid documents. States are immutable
// once Parse returns; nothing downstream downcasts.
func Parse(raw []byte) (*Definition, error) {
	var head struct {
		Comment       string          `json:"Comment"`
		StartAt       string          `json:"StartAt"`
		QueryLanguage QueryLanguage   `json:"QueryLanguage"`
		States        json.RawMessage `json:"States"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("states: invalid definition JSON: %w", err)
	}
	if head.StartAt == "" {
		return nil, ErrMissingStartAt
	}
	if head.QueryLanguage == "" {
		head.QueryLanguage = JSONPath
	}

	names, rawStates, err := orderedObjectKeys(head.States)
	if err != nil {
		return nil, fmt.Errorf("states: invalid States object: %w", err)
	}
	if len(names) == 0 {
		return nil, ErrMissingStates
	}

	def := &Definition{
		Comment:       head.Comment,
		StartAt:       head.StartAt,
		QueryLanguage: head.QueryLanguage,
		States:        make(map[string]*State, len(names)),
		Names:         names,
	}

	found := false
	for _, name := range names {
		st, err := parseState(name, rawStates[name], head.QueryLanguage)
		if err != nil {
			return nil, err
		}
		def.States[name] = st
		if name == head.StartAt {
			found = true
		}
	}
	if !found {
		return nil, ErrUnknownStartAt
	}
	return def, nil
}

func parseState(name string, raw json.RawMessage, inherited QueryLanguage) (*State, error) {
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("states: state %q: %w", name, err)
	}
	st.Name = name
	if st.QueryLanguage == "" {
		st.QueryLanguage = inherited
	}
	if st.Type == "" {
		return nil, fmt.Errorf("states: state %q: %w", name, ErrMissingType)
	}

	switch st.Type {
	case TypePass, TypeTask, TypeWait, TypeChoice, TypeSucceed, TypeFail, TypeParallel, TypeMap:
	default:
		return nil, fmt.Errorf("states: state %q: %w: %s", name, ErrUnknownType, st.Type)
	}

	if st.Type == TypeMap {
		if st.ItemProcessor == nil {
			return nil, fmt.Errorf("states: state %q: %w", name, ErrMapNoProcessor)
		}
		if st.ItemProcessor.ProcessorConfig.Mode == "" {
			st.ItemProcessor.ProcessorConfig.Mode = ModeInline
		}
		pnames, rawProcStates, err := orderedObjectKeysFromMap(st.ItemProcessor.States, raw, "ItemProcessor")
		if err != nil {
			return nil, fmt.Errorf("states: state %q: %w", name, err)
		}
		st.ItemProcessor.Names = pnames
		st.ItemProcessor.States = rawProcStates
	}

	if st.Type == TypeParallel {
		// Branches were already unmarshalled structurally by the generic
		// json.Unmarshal above via Definition's custom unmarshaller.
	}

	if err := checkModeFields(&st, inherited); err != nil {
		return nil, fmt.Errorf("states: state %q: %w", name, err)
	}

	return &st, nil
}

// checkModeFields enforces spec §3's "mode-forbidden fields are rejected
// at construction" rule: JSONPath-only fields may not appear on a JSONata
// state and vice versa.
func checkModeFields(st *State, _ QueryLanguage) error {
	isJSONata := st.QueryLanguage == JSONata
	if isJSONata {
		if st.InputPath != nil || st.Parameters != nil || st.ResultPath != nil || st.OutputPath != nil ||
			st.ResultSelector != nil || st.ItemsPath != "" || st.SecondsPath != "" || st.TimestampPath != "" {
			return fmt.Errorf("%w: JSONPath field used in JSONata state", ErrModeViolation)
		}
		for _, rule := range st.Choices {
			if rule.Variable != "" {
				return fmt.Errorf("%w: Variable used in JSONata Choice rule", ErrModeViolation)
			}
			if rule.Condition != "" && !hasJSONataWrapper(rule.Condition) {
				return ErrMalformedJSONata
			}
		}
	} else {
		if st.Arguments != nil || st.Assign != nil {
			return fmt.Errorf("%w: JSONata field used in JSONPath state", ErrModeViolation)
		}
		for _, rule := range st.Choices {
			if rule.Condition != "" {
				return fmt.Errorf("%w: Condition used in JSONPath Choice rule", ErrModeViolation)
			}
		}
	}
	return nil
}

func hasJSONataWrapper(s string) bool {
	return len(s) >= 4 && s[:2] == "{%" && s[len(s)-2:] == "%}"
}

// orderedObjectKeys walks a raw JSON object and returns its member names in
// declaration order alongside each member's raw value, since plain
// map[string]json.RawMessage unmarshalling loses order (needed for
// deterministic branch/iterator ordinals, spec §4.6 property 3).
func orderedObjectKeys(raw json.RawMessage) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("expected JSON object")
	}

	var names []string
	values := make(map[string]json.RawMessage)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key := keyTok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		names = append(names, key)
		values[key] = raw
	}
	return names, values, nil
}

// orderedObjectKeysFromMap re-derives declaration order for a nested
// States object (ItemProcessor.States) by re-scanning the parent state's
// raw JSON for the named path, since the State struct above already
// decoded it into an unordered map[string]*State.
func orderedObjectKeysFromMap(states map[string]*State, parentRaw json.RawMessage, field string) ([]string, map[string]*State, error) {
	var probe struct {
		ItemProcessor struct {
			States json.RawMessage `json:"States"`
		} `json:"ItemProcessor"`
	}
	if err := json.Unmarshal(parentRaw, &probe); err != nil {
		return nil, nil, err
	}
	names, _, err := orderedObjectKeys(probe.ItemProcessor.States)
	if err != nil {
		return nil, nil, err
	}
	if len(names) == 0 {
		for k := range states {
			names = append(names, k)
		}
	}
	for _, n := range names {
		st := states[n]
		if st != nil {
			st.Name = n
		}
	}
	return names, states, nil
}

// UnmarshalJSON on Definition supports Parallel's Branches (each a nested
// Definition) while still honoring the ordered-States parsing in Parse.
// Branches are parsed structurally by the stdlib decoder; their own
// Names order is recovered with the same orderedObjectKeys walk.
func (d *Definition) UnmarshalJSON(data []byte) error {
	type alias Definition
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var head struct {
		States json.RawMessage `json:"States"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	names, _, err := orderedObjectKeys(head.States)
	if err == nil {
		a.Names = names
	}
	*d = Definition(a)
	return nil
}
