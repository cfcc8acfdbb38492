package states

import (
	"errors"
	"testing"
)

func TestParseMissingStartAt(t *testing.T) {
	_, err := Parse([]byte(`{"States":{"A":{"Type":"Succeed"}}}`))
	if err != ErrMissingStartAt {
		t.Fatalf("expected ErrMissingStartAt, got %v", err)
	}
}

func TestParseUnknownStartAt(t *testing.T) {
	_, err := Parse([]byte(`{"StartAt":"Missing","States":{"A":{"Type":"Succeed"}}}`))
	if err != ErrUnknownStartAt {
		t.Fatalf("expected ErrUnknownStartAt, got %v", err)
	}
}

func TestParseDefaultsToJSONPath(t *testing.T) {
	def, err := Parse([]byte(`{"StartAt":"A","States":{"A":{"Type":"Succeed"}}}`))
	if err != nil {
		t.Fatal(err)
	}
	if def.QueryLanguage != JSONPath {
		t.Errorf("expected default JSONPath, got %q", def.QueryLanguage)
	}
}

func TestParsePreservesDeclarationOrder(t *testing.T) {
	def, err := Parse([]byte(`{
		"StartAt":"Third",
		"States":{
			"Third":{"Type":"Pass","Next":"First"},
			"First":{"Type":"Pass","Next":"Second"},
			"Second":{"Type":"Succeed"}
		}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"Third", "First", "Second"}
	if len(def.Names) != len(want) {
		t.Fatalf("expected %d names, got %d", len(want), len(def.Names))
	}
	for i, n := range want {
		if def.Names[i] != n {
			t.Errorf("Names[%d] = %q, want %q", i, def.Names[i], n)
		}
	}
}

func TestParseRejectsJSONataFieldInJSONPathState(t *testing.T) {
	_, err := Parse([]byte(`{
		"StartAt":"A",
		"States":{"A":{"Type":"Pass","Arguments":{"x":1},"End":true}}
	}`))
	if err == nil {
		t.Fatal("expected mode-violation error, got nil")
	}
}

func TestParseRejectsJSONPathFieldInJSONataState(t *testing.T) {
	_, err := Parse([]byte(`{
		"StartAt":"A",
		"QueryLanguage":"JSONata",
		"States":{"A":{"Type":"Pass","InputPath":"$.x","End":true}}
	}`))
	if err == nil {
		t.Fatal("expected mode-violation error, got nil")
	}
}

func TestParseRejectsResultSelectorInJSONataState(t *testing.T) {
	_, err := Parse([]byte(`{
		"StartAt":"A",
		"QueryLanguage":"JSONata",
		"States":{"A":{"Type":"Task","Resource":"x","ResultSelector":{"y.$":"$.z"},"End":true}}
	}`))
	if err == nil {
		t.Fatal("expected mode-violation error for ResultSelector in a JSONata state, got nil")
	}
}

func TestParseRejectsItemsPathInJSONataState(t *testing.T) {
	_, err := Parse([]byte(`{
		"StartAt":"A",
		"QueryLanguage":"JSONata",
		"States":{"A":{"Type":"Map","ItemsPath":"$.items","ItemProcessor":{"StartAt":"B","States":{"B":{"Type":"Pass","End":true}}},"End":true}}
	}`))
	if err == nil {
		t.Fatal("expected mode-violation error for ItemsPath in a JSONata state, got nil")
	}
}

func TestParseRejectsSecondsPathInJSONataState(t *testing.T) {
	_, err := Parse([]byte(`{
		"StartAt":"A",
		"QueryLanguage":"JSONata",
		"States":{"A":{"Type":"Wait","SecondsPath":"$.n","End":true}}
	}`))
	if err == nil {
		t.Fatal("expected mode-violation error for SecondsPath in a JSONata state, got nil")
	}
}

func TestParseRejectsTimestampPathInJSONataState(t *testing.T) {
	_, err := Parse([]byte(`{
		"StartAt":"A",
		"QueryLanguage":"JSONata",
		"States":{"A":{"Type":"Wait","TimestampPath":"$.ts","End":true}}
	}`))
	if err == nil {
		t.Fatal("expected mode-violation error for TimestampPath in a JSONata state, got nil")
	}
}

func TestParseMapRequiresItemProcessor(t *testing.T) {
	_, err := Parse([]byte(`{
		"StartAt":"A",
		"States":{"A":{"Type":"Map","End":true}}
	}`))
	if !errors.Is(err, ErrMapNoProcessor) {
		t.Fatalf("expected ErrMapNoProcessor, got %v", err)
	}
}

func TestParseMapDefaultsToInlineMode(t *testing.T) {
	def, err := Parse([]byte(`{
		"StartAt":"A",
		"States":{"A":{
			"Type":"Map",
			"End":true,
			"ItemProcessor":{"StartAt":"B","States":{"B":{"Type":"Pass","End":true}}}
		}}
	}`))
	if err != nil {
		t.Fatal(err)
	}
	if def.States["A"].ItemProcessor.ProcessorConfig.Mode != ModeInline {
		t.Errorf("expected ModeInline default, got %q", def.States["A"].ItemProcessor.ProcessorConfig.Mode)
	}
}

func TestDefinitionCloneRoundTrips(t *testing.T) {
	def, err := Parse([]byte(`{"StartAt":"A","States":{"A":{"Type":"Succeed"}}}`))
	if err != nil {
		t.Fatal(err)
	}
	clone, err := def.Clone()
	if err != nil {
		t.Fatal(err)
	}
	if clone.StartAt != def.StartAt || len(clone.Names) != len(def.Names) {
		t.Errorf("clone diverged from original: %+v vs %+v", clone, def)
	}
}
