// Package attrs inspects the alternating key-value attribute lists passed to
// the structured logging and audit helpers.
package attrs

// ExtractString returns the string value paired with key in an attribute
// list of the form [key1, value1, key2, value2, ...]. It returns "" when the
// key is absent or its value is not a string.
func ExtractString(attrs []any, key string) string {
	for i := 0; i < len(attrs)-1; i += 2 {
		k, ok := attrs[i].(string)
		if !ok {
			continue
		}
		if k == key {
			if v, ok := attrs[i+1].(string); ok {
				return v
			}
		}
	}
	return ""
}
