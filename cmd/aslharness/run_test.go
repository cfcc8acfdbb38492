package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadInputEmptyPathDefaultsToEmptyObject(t *testing.T) {
	v, err := readInput("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m, ok := v.(map[string]interface{})
	if !ok || len(m) != 0 {
		t.Errorf("expected empty object, got %#v", v)
	}
}

func TestReadInputParsesJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.json")
	os.WriteFile(path, []byte(`{"a":1}`), 0o644)

	v, err := readInput(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	m := v.(map[string]interface{})
	if m["a"] != 1.0 {
		t.Errorf("unexpected input: %#v", v)
	}
}

func TestReadInputMissingFileErrors(t *testing.T) {
	_, err := readInput(filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
}
