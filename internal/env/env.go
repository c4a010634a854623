// Package env reads configuration values from the environment, with support
// for the common '_FILE' convention for secrets.
package env

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// GetenvFS returns the value of the environment variable key. When key is
// empty but key_FILE is set, the trimmed contents of the named file (resolved
// against fsys, with any leading '/' removed) are returned instead. If neither
// produces a value, def[0] (or the empty string) is returned.
func GetenvFS(fsys fs.FS, key string, def ...string) string {
	if val, ok := LookupFS(fsys, key); ok {
		return val
	}

	if len(def) > 0 {
		return def[0]
	}

	return ""
}

// LookupFS is like GetenvFS, but reports whether a non-empty value was found
// rather than falling back to a default.
func LookupFS(fsys fs.FS, key string) (string, bool) {
	if val := os.Getenv(key); val != "" {
		return val, true
	}

	p := os.Getenv(key + "_FILE")
	if p == "" {
		return "", false
	}

	b, err := fs.ReadFile(fsys, strings.TrimPrefix(filepath.ToSlash(p), "/"))
	if err != nil {
		return "", false
	}

	val := strings.TrimSpace(string(b))

	return val, val != ""
}
