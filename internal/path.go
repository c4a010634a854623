package internal

import (
	"io/fs"
	"strings"
)

// ValidName reports whether name is a valid fs.FS path that also addresses a
// single tree entry once appended to a locator. Locators treat backslashes as
// separators, so names containing them are rejected.
func ValidName(name string) bool {
	if strings.ContainsRune(name, '\\') {
		return false
	}

	return fs.ValidPath(name)
}
