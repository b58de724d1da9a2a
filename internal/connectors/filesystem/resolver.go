package filesystem

import "strings"

// ResolveLocalPath converts a document location to a local filesystem
// path. Handles file:// URIs and bare paths.
func ResolveLocalPath(location string) string {
	// Strip file:// prefix for local paths
	if strings.HasPrefix(location, "file://") {
		return strings.TrimPrefix(location, "file://")
	}
	// Bare paths pass through unchanged
	return location
}
