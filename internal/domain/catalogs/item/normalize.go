package item

import (
	"sort"
	"strings"
)

// NormalizeName maps a free-text item name to its catalog key.
// Leading/trailing Unicode whitespace is removed and letters are lowercased.
// Inner whitespace is kept as is.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SortedKeys normalizes names, drops blanks and duplicates, and sorts the result.
// Row locks are always taken in this order.
func SortedKeys(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	keys := make([]string, 0, len(names))
	for _, n := range names {
		k := NormalizeName(n)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
