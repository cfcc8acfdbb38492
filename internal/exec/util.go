package exec

// deepCopyMap returns a structural copy of a JSON-shaped map, grounded on
// the teacher's inject_executor.go helper of the same name, used to give
// Parallel branches and Map iterations their own variable scope rather
// than aliasing the parent's (spec §9: "copying is cheap relative to
// correctness").
func deepCopyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return deepCopyMap(val)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = deepCopyValue(item)
		}
		return out
	default:
		return v
	}
}
