package httputil

import "strings"

// AbsoluteURL rewrites a stored relative image path against the public
// base URL. Already-absolute URLs and nil paths pass through unchanged.
func AbsoluteURL(baseURL string, path *string) *string {
	if path == nil || *path == "" {
		return nil
	}
	if strings.HasPrefix(*path, "http://") || strings.HasPrefix(*path, "https://") {
		return path
	}
	abs := strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(*path, "/")
	return &abs
}
