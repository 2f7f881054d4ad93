package utils

// DeduplicateNames removes duplicate and empty names from a slice while
// preserving order. The first occurrence of each unique name is kept.
func DeduplicateNames(names []string) []string {
	encounteredNames := make(map[string]struct{}, len(names))
	var result []string
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, exists := encounteredNames[name]; !exists {
			encounteredNames[name] = struct{}{}
			result = append(result, name)
		}
	}
	return result
}
