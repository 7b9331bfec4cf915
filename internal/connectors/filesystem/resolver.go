package filesystem

import "strings"

// ResolvePath converts a folder given as a file:// URI to a local path.
// Bare paths pass through unchanged.
func ResolvePath(uri string) string {
	if strings.HasPrefix(uri, "file://") {
		return strings.TrimPrefix(uri, "file://")
	}
	return uri
}
