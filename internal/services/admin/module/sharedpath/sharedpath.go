// Package sharedpath splits resource route suffixes for the route modules.
package sharedpath

import "strings"

// SplitPathParts normalizes a slash-delimited route suffix into non-empty path segments.
func SplitPathParts(path string) []string {
	rawParts := strings.Split(path, "/")
	parts := make([]string, 0, len(rawParts))
	for _, part := range rawParts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parts = append(parts, part)
	}
	return parts
}

// ResourceTarget splits "<id>/<action...>" into the record id and the
// slash-joined action. A bare id yields an empty action.
func ResourceTarget(path string) (id string, action string, ok bool) {
	parts := SplitPathParts(path)
	if len(parts) == 0 {
		return "", "", false
	}
	return parts[0], strings.Join(parts[1:], "/"), true
}
