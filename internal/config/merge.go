package config

// Merge recursively merges src into dst and returns dst.
//
// Nested mappings merge key-wise. For all other values, overwrite controls
// the semantics: true replaces dst's value with src's (override), false only
// fills keys absent from dst (enrich).
func Merge(dst, src map[string]any, overwrite bool) map[string]any {
	if dst == nil {
		dst = map[string]any{}
	}

	for key, srcVal := range src {
		dstVal, exists := dst[key]
		if !exists {
			dst[key] = deepCopyValue(srcVal)
			continue
		}

		dstMap, dstIsMap := asMap(dstVal)
		srcMap, srcIsMap := asMap(srcVal)
		if dstIsMap && srcIsMap {
			dst[key] = Merge(dstMap, srcMap, overwrite)
			continue
		}

		if overwrite {
			dst[key] = deepCopyValue(srcVal)
		}
	}

	return dst
}

// CloneMap returns a deep copy of the given mapping.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	clone := make(map[string]any, len(m))
	for key, value := range m {
		clone[key] = deepCopyValue(value)
	}
	return clone
}

func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return CloneMap(v)
	case map[any]any:
		m, _ := asMap(v)
		return CloneMap(m)
	case []any:
		seq := make([]any, len(v))
		for i, item := range v {
			seq[i] = deepCopyValue(item)
		}
		return seq
	}
	return value
}

// asMap normalises YAML mapping types to map[string]any.
func asMap(value any) (map[string]any, bool) {
	switch v := value.(type) {
	case map[string]any:
		return v, true
	case map[any]any:
		m := make(map[string]any, len(v))
		for key, item := range v {
			keyStr, ok := key.(string)
			if !ok {
				return nil, false
			}
			m[keyStr] = item
		}
		return m, true
	}
	return nil, false
}

// dropKey removes the value at the given key path from the mapping, if present.
func dropKey(m map[string]any, keys ...string) {
	for _, key := range keys[:len(keys)-1] {
		next, ok := asMap(m[key])
		if !ok {
			return
		}
		m = next
	}
	delete(m, keys[len(keys)-1])
}
