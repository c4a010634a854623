package gitstream

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/hairyhenderson/go-gitstream/gitstore"
	"github.com/hairyhenderson/go-gitstream/locator"
	"github.com/hairyhenderson/go-gitstream/store"
)

// Mux chooses the store.Opener for a locator by its scheme. Scheme lookup is
// case-insensitive. Mux is itself a store.Provider, serving the union of all
// registered schemes.
type Mux map[string]store.Opener

var _ store.Provider = (Mux)(nil)

// NewMux returns an empty Mux ready for use.
func NewMux() Mux {
	return Mux(map[string]store.Opener{})
}

// DefaultMux returns a Mux with gitstore.Local ("git", "file") and
// gitstore.Remote ("http", "https", "ssh") registered.
func DefaultMux() Mux {
	m := NewMux()
	m.Add(gitstore.Local)
	m.Add(gitstore.Remote)

	return m
}

// Add registers p for each of its schemes, replacing any existing
// registrations for those schemes.
func (m Mux) Add(p store.Provider) {
	for _, scheme := range p.Schemes() {
		m[strings.ToLower(scheme)] = p
	}
}

// Schemes - implements store.Provider
func (m Mux) Schemes() []string {
	schemes := make([]string, 0, len(m))
	for scheme := range m {
		schemes = append(schemes, scheme)
	}

	sort.Strings(schemes)

	return schemes
}

// Open - implements store.Opener
func (m Mux) Open(ctx context.Context, loc locator.Locator) (store.Repository, error) {
	o, ok := m[strings.ToLower(loc.Scheme)]
	if !ok {
		return nil, fmt.Errorf("%w: no opener registered for scheme %q", errors.ErrUnsupported, loc.Scheme)
	}

	return o.Open(ctx, loc)
}
