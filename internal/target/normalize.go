package target

import (
	"net/url"
	"path/filepath"
)

// Normalize converts a compile target into the rooted, slash separated form
// that the file systems expect.
//
// Targets may be file paths or file URIs. Relative paths are rooted at "/"
// so that each configured search root resolves them the same way. Non-file
// URIs are returned unchanged for some other FileSystem to handle.
func Normalize(target string) string {
	if isVolume(target) {
		return filepath.ToSlash(filepath.Clean(target))
	}
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "" && u.Scheme != "file") {
		return target
	}
	if u.Scheme == "file" {
		target = u.Path
	}
	return filepath.ToSlash(filepath.Join("/", target))
}

// isVolume reports whether the target starts with a drive letter, which the
// URL parser would otherwise read as a scheme.
func isVolume(target string) bool {
	if len(target) < 2 || target[1] != ':' {
		return false
	}
	c := target[0]
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
