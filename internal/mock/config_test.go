package mock

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mocks.json")
	doc := `{"version":"1","mocks":[{"state":"A","type":"fixed","response":{"ok":true}}]}`
	os.WriteFile(path, []byte(doc), 0o644)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Mocks) != 1 || cfg.Mocks[0].State != "A" {
		t.Errorf("unexpected config: %#v", cfg)
	}
}

func TestLoadConfigYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mocks.yaml")
	doc := "version: \"1\"\nmocks:\n  - state: A\n    type: fixed\n    response:\n      ok: true\n"
	os.WriteFile(path, []byte(doc), 0o644)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Mocks) != 1 || cfg.Mocks[0].State != "A" || cfg.Mocks[0].Type != VariantFixed {
		t.Errorf("unexpected config: %#v", cfg)
	}
}

func TestLoadConfigRejectsBareWhenClause(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mocks.json")
	doc := `{"mocks":[{"state":"A","type":"conditional","rules":[{"when":{},"response":{}}]}]}`
	os.WriteFile(path, []byte(doc), 0o644)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for when clause without input key")
	}
}
