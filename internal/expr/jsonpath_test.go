package expr

import "testing"

func TestGetPathRoot(t *testing.T) {
	root := map[string]interface{}{"a": 1.0}
	v, ok := GetPath(root, "$")
	if !ok {
		t.Fatal("expected $ to match root")
	}
	if m, ok := v.(map[string]interface{}); !ok || m["a"] != 1.0 {
		t.Errorf("got %#v", v)
	}
}

func TestGetPathNested(t *testing.T) {
	root := map[string]interface{}{"a": map[string]interface{}{"b": "hello"}}
	v, ok := GetPath(root, "$.a.b")
	if !ok || v != "hello" {
		t.Errorf("got %v, %v", v, ok)
	}
}

func TestGetPathIndex(t *testing.T) {
	root := map[string]interface{}{"a": []interface{}{"x", "y", "z"}}
	v, ok := GetPath(root, "$.a[1]")
	if !ok || v != "y" {
		t.Errorf("got %v, %v", v, ok)
	}
}

func TestGetPathMissingIsNotFound(t *testing.T) {
	root := map[string]interface{}{"a": 1.0}
	_, ok := GetPath(root, "$.missing")
	if ok {
		t.Error("expected missing path to report not found")
	}
}

func TestGetPathNullIsFoundButNil(t *testing.T) {
	root := map[string]interface{}{"a": nil}
	v, ok := GetPath(root, "$.a")
	if !ok {
		t.Error("expected present-but-null to report found=true")
	}
	if v != nil {
		t.Errorf("expected nil value, got %v", v)
	}
}

func TestSetPathRootReplacesEntirely(t *testing.T) {
	out, err := SetPath(map[string]interface{}{"a": 1.0}, "$", "replaced")
	if err != nil {
		t.Fatal(err)
	}
	if out != "replaced" {
		t.Errorf("got %v", out)
	}
}

func TestSetPathNested(t *testing.T) {
	out, err := SetPath(map[string]interface{}{}, "$.a.b", 42.0)
	if err != nil {
		t.Fatal(err)
	}
	m, ok := out.(map[string]interface{})
	if !ok {
		t.Fatalf("expected map, got %T", out)
	}
	a, ok := m["a"].(map[string]interface{})
	if !ok || a["b"] != 42.0 {
		t.Errorf("got %#v", out)
	}
}

func TestIsRawJSONPath(t *testing.T) {
	cases := map[string]bool{
		"$.a.b": true,
		"$[0]":  true,
		"$":     true,
		"$$.State.Name": false,
		"$name": false,
		"States.Format('{}')": false,
	}
	for in, want := range cases {
		if got := IsRawJSONPath(in); got != want {
			t.Errorf("IsRawJSONPath(%q) = %v, want %v", in, got, want)
		}
	}
}
