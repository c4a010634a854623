// Package store defines the object store contract that gitstream reads
// branches through. The store is responsible for resolving references,
// decoding objects, and walking trees; gitstream only navigates the results.
//
// See package gitstore for the go-git backed implementation.
package store

import (
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/hairyhenderson/go-gitstream/locator"
)

// Sentinel errors that Repository implementations should wrap so callers can
// classify failures.
var (
	ErrRefNotFound    = errors.New("reference not found")
	ErrObjectNotFound = errors.New("object not found")
	ErrEntryNotFound  = errors.New("tree entry not found")
	ErrNotRepository  = errors.New("not a git repository")
)

// ObjectID is the hex-encoded id of an object in the store.
type ObjectID string

// Kind is the type of a stored object.
type Kind int

const (
	KindInvalid Kind = iota
	KindCommit
	KindTree
	KindBlob
	KindTag
)

func (k Kind) String() string {
	switch k {
	case KindCommit:
		return "commit"
	case KindTree:
		return "tree"
	case KindBlob:
		return "blob"
	case KindTag:
		return "tag"
	default:
		return "invalid"
	}
}

// Repository is an open connection to an object store. A Repository is owned
// by a single handle and is not required to be safe for concurrent use.
type Repository interface {
	// ResolveBranchTip returns the id of the object the named branch (or tag)
	// currently points to.
	ResolveBranchTip(ctx context.Context, name string) (ObjectID, error)
	// Load reads the object with the given id. The returned Object is one of
	// Commit, Tree, Blob, or Tag.
	Load(ctx context.Context, id ObjectID) (Object, error)
	// Close releases any resources held by the repository.
	Close() error
}

// Object is any stored object.
type Object interface {
	ID() ObjectID
	Kind() Kind
}

// Commit is a commit object.
type Commit interface {
	Object
	// TreeID is the id of the commit's root tree.
	TreeID() ObjectID
}

// Tag is an annotated tag object.
type Tag interface {
	Object
	// TargetID is the id of the tagged object.
	TargetID() ObjectID
}

// Tree is a directory-like object.
type Tree interface {
	Object
	// Find returns the id of the object at the slash-separated path p,
	// relative to this tree.
	Find(p string) (ObjectID, error)
	// Files returns a fresh lazy iterator over every file contained in this
	// tree, in store order. Calling Files again restarts the listing.
	Files() FileIter
	// Entries returns the immediate children of this tree.
	Entries() []Entry
}

// Blob is a file-like object.
type Blob interface {
	Object
	Size() int64
	Reader() (io.ReadCloser, error)
}

// FileIter is a lazy iterator over the files of a tree. Next returns io.EOF
// once the listing is exhausted.
type FileIter interface {
	Next() (name string, id ObjectID, err error)
	Close()
}

// Entry is an immediate child of a tree.
type Entry struct {
	Name string
	ID   ObjectID
	Mode fs.FileMode
}

// Opener opens a Repository for the repository location named by a locator.
// Each call must return a new, independent connection.
type Opener interface {
	Open(ctx context.Context, loc locator.Locator) (Repository, error)
}

// OpenerFunc adapts a function to an Opener.
type OpenerFunc func(ctx context.Context, loc locator.Locator) (Repository, error)

// Open - implements Opener
func (f OpenerFunc) Open(ctx context.Context, loc locator.Locator) (Repository, error) {
	return f(ctx, loc)
}

// Provider is an Opener that declares which locator schemes it serves.
type Provider interface {
	Opener

	// Schemes returns the locator schemes this provider serves
	Schemes() []string
}

// NewProvider returns a Provider serving the given schemes with o.
func NewProvider(o Opener, schemes ...string) Provider {
	return provider{o, schemes}
}

type provider struct {
	Opener
	schemes []string
}

func (p provider) Schemes() []string {
	return p.schemes
}
