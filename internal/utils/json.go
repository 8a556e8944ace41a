package utils

import (
	"encoding/json"
	"sort"
	"strings"
)

// UnpackAndFlatten expands members that hold a JSON encoded list, so both
// ["a", "b"] and [`["a","b"]`] yield a and b. Blank members are dropped.
func UnpackAndFlatten(values []string) []string {
	var flattened []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		if strings.HasPrefix(value, "[") {
			var members []string
			if err := json.Unmarshal([]byte(value), &members); err == nil {
				flattened = append(flattened, UnpackAndFlatten(members)...)
				continue
			}
		}
		flattened = append(flattened, value)
	}
	return flattened
}

// PrettifyJSONStrSet renders the unique members sorted and comma separated.
func PrettifyJSONStrSet(values []string) string {
	unique := map[string]struct{}{}
	for _, value := range UnpackAndFlatten(values) {
		unique[value] = struct{}{}
	}

	members := make([]string, 0, len(unique))
	for member := range unique {
		members = append(members, member)
	}
	sort.Strings(members)
	return strings.Join(members, ", ")
}
