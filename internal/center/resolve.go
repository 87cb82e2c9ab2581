package center

import "sort"

// Resolve returns the name of the first candidate in the pool tagged
// for the requested role. Candidates are scanned in sorted-name order
// so the result is stable across runs; when several candidates carry
// the same tag, first match in that order wins. An empty pool or role
// yields no match, which is not an error here; callers that require
// the role turn it into one.
func Resolve(pool Pool, role Role) (string, bool) {
	if len(pool) == 0 || role == "" {
		return "", false
	}
	names := make([]string, 0, len(pool))
	for name := range pool {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if pool[name].HasRole(role) {
			return name, true
		}
	}
	return "", false
}
