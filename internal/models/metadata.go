package models

// copyMetadata deep-copies a metadata map. Nested maps and slices are
// copied; scalar values are shared, which is safe because metadata values
// are treated as immutable once attached.
func copyMetadata(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyMetadataValue(v)
	}
	return out
}

func copyMetadataValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMetadata(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = copyMetadataValue(item)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	case map[string]float64:
		out := make(map[string]float64, len(val))
		for k, f := range val {
			out[k] = f
		}
		return out
	case map[string]int:
		out := make(map[string]int, len(val))
		for k, n := range val {
			out[k] = n
		}
		return out
	default:
		return v
	}
}
