package strings

// DedupeKeys normalizes each value with NormalizeKey and drops empty keys and
// repeats. Order of first appearance is preserved.
//
// Example:
//
//	DedupeKeys([]string{" Rôle ", "role", "", "Email"})
//	// Returns: []string{"role", "email"}
func DedupeKeys(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))

	for _, v := range values {
		key := NormalizeKey(v)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			result = append(result, key)
		}
	}

	return result
}
