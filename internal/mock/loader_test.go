package mock

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDataFileJSONAndCSVAndJSONL(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "data.json")
	os.WriteFile(jsonPath, []byte(`{"a":1}`), 0o644)
	v, err := loadDataFile(jsonPath, "")
	if err != nil {
		t.Fatalf("json: unexpected error: %v", err)
	}
	if m, ok := v.(map[string]interface{}); !ok || m["a"] != 1.0 {
		t.Errorf("json: unexpected value %#v", v)
	}

	csvPath := filepath.Join(dir, "data.csv")
	os.WriteFile(csvPath, []byte("name,age\nAda,30\nBob,25\n"), 0o644)
	v, err = loadDataFile(csvPath, "")
	if err != nil {
		t.Fatalf("csv: unexpected error: %v", err)
	}
	rows, ok := v.([]interface{})
	if !ok || len(rows) != 2 {
		t.Fatalf("csv: expected 2 rows, got %#v", v)
	}
	first := rows[0].(map[string]interface{})
	if first["name"] != "Ada" || first["age"] != 30.0 {
		t.Errorf("csv: unexpected coercion, got %#v", first)
	}

	jsonlPath := filepath.Join(dir, "data.jsonl")
	os.WriteFile(jsonlPath, []byte("{\"x\":1}\n{\"x\":2}\n"), 0o644)
	v, err = loadDataFile(jsonlPath, "")
	if err != nil {
		t.Fatalf("jsonl: unexpected error: %v", err)
	}
	items, ok := v.([]interface{})
	if !ok || len(items) != 2 {
		t.Fatalf("jsonl: expected 2 items, got %#v", v)
	}
}

func TestResolvePathHonorsBasePathAndRelativeEscapes(t *testing.T) {
	SetBasePath("/configured/base")
	defer SetBasePath("")

	if got := resolvePath("data/in.json"); got != filepath.Join("/configured/base", "data/in.json") {
		t.Errorf("bare path not resolved against base: %q", got)
	}
	if got := resolvePath("./data/in.json"); got != "./data/in.json" {
		t.Errorf("explicit relative path should bypass base: %q", got)
	}
	if got := resolvePath("/abs/in.json"); got != "/abs/in.json" {
		t.Errorf("absolute path should pass through unchanged: %q", got)
	}
}

func TestShapeItemReaderArrayValidatesS3Keys(t *testing.T) {
	_, err := shapeItemReaderArray([]interface{}{map[string]interface{}{}}, "arn:aws:states:::s3:listObjectsV2")
	if err == nil {
		t.Fatal("expected error for missing Key")
	}

	out, err := shapeItemReaderArray([]interface{}{map[string]interface{}{"Key": "a.txt"}}, "arn:aws:states:::s3:listObjectsV2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec := out[0].(map[string]interface{})
	if rec["Key"] != "a.txt" || rec["StorageClass"] != "STANDARD" {
		t.Errorf("expected defaults filled in, got %#v", rec)
	}
}

func TestShapeItemReaderArrayPassesThroughNonS3(t *testing.T) {
	in := []interface{}{map[string]interface{}{"whatever": true}}
	out, err := shapeItemReaderArray(in, "arn:aws:states:::dynamodb:getItem")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 {
		t.Errorf("expected passthrough, got %#v", out)
	}
}
