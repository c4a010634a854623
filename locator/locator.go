// Package locator parses the locator strings used to address a file or
// directory inside a branch of a git repository.
//
// A locator has the form:
//
//	scheme://<repository>.git/<branch>/<path>
//
// The repository part extends up to (and including) the last ".git/" that is
// still followed by a branch segment and a slash, so repository locations may
// themselves contain slashes and dots. The branch is always a single path
// segment. The path is everything after the branch segment and may be empty,
// in which case the locator addresses the root tree of the branch.
//
// Backslashes are treated as forward slashes.
package locator

import (
	"fmt"
	"io/fs"
	"regexp"
	"strings"
)

// ErrMalformed is returned (wrapped) by Parse when the input does not have the
// shape of a locator. It also matches fs.ErrInvalid.
var ErrMalformed = fmt.Errorf("malformed locator: %w", fs.ErrInvalid)

//nolint:gochecknoglobals
var pattern = regexp.MustCompile(`(?si)^(\w+)://(.*\.git/)([^/]+)/(.*)$`)

// Locator is a parsed locator. The zero value is not a valid locator.
type Locator struct {
	// Scheme selects how the repository is opened (e.g. "git", "https").
	Scheme string
	// Repository is the repository location, always ending in ".git/".
	Repository string
	// Branch is the branch, tag, or object name to read from.
	Branch string
	// Path is the path inside the branch's root tree. Empty for the root.
	Path string
}

// Parse splits s into its components.
func Parse(s string) (Locator, error) {
	norm := strings.ReplaceAll(s, `\`, "/")

	m := pattern.FindStringSubmatch(norm)
	if m == nil {
		return Locator{}, fmt.Errorf("%w: %q", ErrMalformed, s)
	}

	return Locator{
		Scheme:     m[1],
		Repository: m[2],
		Branch:     m[3],
		Path:       m[4],
	}, nil
}

// String reassembles the locator. For any l returned by Parse,
// Parse(l.String()) returns l.
func (l Locator) String() string {
	return l.Scheme + "://" + l.Repository + l.Branch + "/" + l.Path
}

// WithPath returns a copy of l addressing p within the same branch.
func (l Locator) WithPath(p string) Locator {
	l.Path = p

	return l
}

// IsRoot reports whether l addresses the root tree of its branch.
func (l Locator) IsRoot() bool {
	return strings.Trim(l.Path, "/") == ""
}
