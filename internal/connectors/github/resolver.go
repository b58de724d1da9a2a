package github

import "strings"

// ResolveWebURL converts a github:// document ID to a web URL.
// github://owner/repo/blob/ref/path -> https://github.com/owner/repo/blob/ref/path
func ResolveWebURL(id string) string {
	if strings.HasPrefix(id, "github://") {
		return "https://github.com/" + strings.TrimPrefix(id, "github://")
	}
	return ""
}
