package expr

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// GetPath evaluates an ASL JSONPath expression ("$", "$.a.b", "$.a[0]",
// "$.a[*].b") against root and returns the first match, mirroring the
// teacher's GetNestedValue but widened to the gjson path dialect so
// bracket indices and wildcards are supported (spec §4.1/§4.2). The bool
// distinguishes "found, value is nil" from "not found" so callers can
// implement IsPresent/IsNull correctly (spec §4.5, boundary behaviors).
func GetPath(root interface{}, path string) (interface{}, bool) {
	if path == "" || path == "$" {
		return root, true
	}
	gp, err := toGjsonPath(path)
	if err != nil {
		return nil, false
	}
	raw, err := json.Marshal(root)
	if err != nil {
		return nil, false
	}
	result := gjson.GetBytes(raw, gp)
	if !result.Exists() {
		return nil, false
	}
	return result.Value(), true
}

// SetPath writes value into root at path, returning the (possibly new)
// root. path "$" replaces the root entirely, per spec §4.3's ResultPath
// rule ("the path $ means replace").
func SetPath(root interface{}, path string, value interface{}) (interface{}, error) {
	if path == "" || path == "$" {
		return value, nil
	}
	if strings.Contains(path, "[*]") {
		return nil, fmt.Errorf("expr: cannot write to wildcard path %q", path)
	}
	gp, err := toGjsonPath(path)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	out, err := sjson.SetBytes(raw, gp, value)
	if err != nil {
		return nil, err
	}
	var result interface{}
	if err := json.Unmarshal(out, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// toGjsonPath rewrites an ASL/JSONPath expression's "$." prefix and
// bracket-index syntax into gjson's dotted-path dialect. "$.a[0].b"
// becomes "a.0.b"; "$.a[*].b" becomes "a.#.b" (gjson's wildcard-map
// syntax, close enough for the read side; writes to a [*] path are not
// part of ASL's ResultPath/OutputPath grammar so are rejected).
func toGjsonPath(path string) (string, error) {
	p := path
	p = strings.TrimPrefix(p, "$")
	p = strings.TrimPrefix(p, ".")
	if p == "" {
		return "@this", nil
	}

	var b strings.Builder
	i := 0
	for i < len(p) {
		c := p[i]
		switch c {
		case '.':
			b.WriteByte('.')
			i++
		case '[':
			end := strings.IndexByte(p[i:], ']')
			if end < 0 {
				return "", fmt.Errorf("expr: unterminated [ in path %q", path)
			}
			inner := p[i+1 : i+end]
			i += end + 1
			if inner == "*" {
				b.WriteString(".#")
			} else if _, err := strconv.Atoi(inner); err == nil {
				b.WriteString(".")
				b.WriteString(inner)
			} else {
				// string index, e.g. ['key']
				inner = strings.Trim(inner, "'\"")
				b.WriteString(".")
				b.WriteString(inner)
			}
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// IsRawJSONPath reports whether v looks like a bare JSONPath (not a
// context ref, variable ref, or intrinsic call) for payload-template
// dispatch, spec §4.2 rule 1.
func IsRawJSONPath(v string) bool {
	return strings.HasPrefix(v, "$.") || strings.HasPrefix(v, "$[") || v == "$"
}
