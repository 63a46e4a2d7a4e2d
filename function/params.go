package function

// intParam reads an integer-shaped parameter out of a function_parameters
// map, tolerating the numeric types a YAML/JSON schema document produces
// (int, int64, float64 with no fractional part, uint64 for large masks).
func intParam(params map[string]any, key string, def int64) (int64, bool) {
	v, ok := params[key]
	if !ok {
		return def, true
	}
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int64:
		return x, true
	case uint64:
		return int64(x), true
	case float64:
		if x != float64(int64(x)) {
			return 0, false
		}
		return int64(x), true
	default:
		return 0, false
	}
}

func uintParam(params map[string]any, key string, def uint64) (uint64, bool) {
	v, ok := params[key]
	if !ok {
		return def, true
	}
	switch x := v.(type) {
	case int:
		return uint64(x), true
	case int64:
		return uint64(x), true
	case uint64:
		return x, true
	case float64:
		return uint64(x), true
	default:
		return 0, false
	}
}

func boolParam(params map[string]any, key string, def bool) (bool, bool) {
	v, ok := params[key]
	if !ok {
		return def, true
	}
	b, ok := v.(bool)
	return b, ok
}

func stringParam(params map[string]any, key string) (string, bool) {
	v, ok := params[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
