package gitstore

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/hairyhenderson/go-git/v5/plumbing"
	"github.com/hairyhenderson/go-git/v5/plumbing/filemode"
	"github.com/hairyhenderson/go-git/v5/plumbing/object"
	"github.com/hairyhenderson/go-git/v5/plumbing/storer"
	"github.com/hairyhenderson/go-git/v5/storage"
	"github.com/hairyhenderson/go-gitstream/store"
)

type repository struct {
	storer storage.Storer
	closer io.Closer
}

var _ store.Repository = (*repository)(nil)

// NewRepository wraps an existing go-git storage as a store.Repository.
// Closing the returned Repository closes s if it implements io.Closer.
func NewRepository(s storage.Storer) store.Repository {
	r := &repository{storer: s}
	if c, ok := s.(io.Closer); ok {
		r.closer = c
	}

	return r
}

// refCandidates returns the reference names tried, in order, for name
func refCandidates(name string) []plumbing.ReferenceName {
	switch {
	case name == "HEAD":
		return []plumbing.ReferenceName{plumbing.HEAD}
	case strings.HasPrefix(name, "refs/"):
		return []plumbing.ReferenceName{plumbing.ReferenceName(name)}
	default:
		return []plumbing.ReferenceName{
			plumbing.NewBranchReferenceName(name),
			plumbing.NewTagReferenceName(name),
			plumbing.NewRemoteReferenceName("origin", name),
		}
	}
}

func isHash(s string) bool {
	if len(s) != 40 {
		return false
	}

	_, err := hex.DecodeString(s)

	return err == nil
}

func (r *repository) ResolveBranchTip(_ context.Context, name string) (store.ObjectID, error) {
	for _, n := range refCandidates(name) {
		ref, err := storer.ResolveReference(r.storer, n)
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			continue
		}

		if err != nil {
			return "", fmt.Errorf("resolve %s: %w", n, err)
		}

		return store.ObjectID(ref.Hash().String()), nil
	}

	// last resort: a full object id
	if isHash(name) {
		h := plumbing.NewHash(name)
		if err := r.storer.HasEncodedObject(h); err == nil {
			return store.ObjectID(h.String()), nil
		}
	}

	return "", fmt.Errorf("%w: %q", store.ErrRefNotFound, name)
}

func (r *repository) Load(_ context.Context, id store.ObjectID) (store.Object, error) {
	if !isHash(string(id)) {
		return nil, fmt.Errorf("%w: invalid object id %q", store.ErrObjectNotFound, id)
	}

	obj, err := object.GetObject(r.storer, plumbing.NewHash(string(id)))
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: %s", store.ErrObjectNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("load %s: %w", id, err)
	}

	switch o := obj.(type) {
	case *object.Commit:
		return &commit{o}, nil
	case *object.Tree:
		return &tree{o}, nil
	case *object.Blob:
		return &blob{o}, nil
	case *object.Tag:
		return &tag{o}, nil
	default:
		return nil, fmt.Errorf("load %s: unsupported object type %s", id, obj.Type())
	}
}

func (r *repository) Close() error {
	if r.closer == nil {
		return nil
	}

	return r.closer.Close()
}

type commit struct {
	c *object.Commit
}

func (c *commit) ID() store.ObjectID     { return store.ObjectID(c.c.Hash.String()) }
func (c *commit) Kind() store.Kind       { return store.KindCommit }
func (c *commit) TreeID() store.ObjectID { return store.ObjectID(c.c.TreeHash.String()) }

type tag struct {
	t *object.Tag
}

func (t *tag) ID() store.ObjectID       { return store.ObjectID(t.t.Hash.String()) }
func (t *tag) Kind() store.Kind         { return store.KindTag }
func (t *tag) TargetID() store.ObjectID { return store.ObjectID(t.t.Target.String()) }

type blob struct {
	b *object.Blob
}

func (b *blob) ID() store.ObjectID { return store.ObjectID(b.b.Hash.String()) }
func (b *blob) Kind() store.Kind   { return store.KindBlob }
func (b *blob) Size() int64        { return b.b.Size }

func (b *blob) Reader() (io.ReadCloser, error) {
	return b.b.Reader()
}

type tree struct {
	t *object.Tree
}

func (t *tree) ID() store.ObjectID { return store.ObjectID(t.t.Hash.String()) }
func (t *tree) Kind() store.Kind   { return store.KindTree }

func (t *tree) Find(p string) (store.ObjectID, error) {
	e, err := t.t.FindEntry(p)
	if err != nil {
		if errors.Is(err, object.ErrEntryNotFound) ||
			errors.Is(err, object.ErrDirectoryNotFound) ||
			errors.Is(err, object.ErrFileNotFound) ||
			errors.Is(err, plumbing.ErrObjectNotFound) {
			return "", fmt.Errorf("%w: %s", store.ErrEntryNotFound, p)
		}

		return "", fmt.Errorf("find %s: %w", p, err)
	}

	return store.ObjectID(e.Hash.String()), nil
}

func (t *tree) Files() store.FileIter {
	return &fileIter{t.t.Files()}
}

func (t *tree) Entries() []store.Entry {
	entries := make([]store.Entry, 0, len(t.t.Entries))

	for _, e := range t.t.Entries {
		mode, ok := entryMode(e.Mode)
		if !ok {
			continue
		}

		entries = append(entries, store.Entry{
			Name: e.Name,
			ID:   store.ObjectID(e.Hash.String()),
			Mode: mode,
		})
	}

	return entries
}

// entryMode maps a git file mode to a read-only fs.FileMode. Submodules (and
// anything else that isn't stored in this repository) are reported as not ok.
func entryMode(m filemode.FileMode) (fs.FileMode, bool) {
	switch m {
	case filemode.Dir:
		return fs.ModeDir | 0o555, true
	case filemode.Executable:
		return 0o555, true
	case filemode.Regular, filemode.Deprecated, filemode.Symlink:
		return 0o444, true
	default:
		return 0, false
	}
}

type fileIter struct {
	it *object.FileIter
}

func (i *fileIter) Next() (string, store.ObjectID, error) {
	f, err := i.it.Next()
	if err != nil {
		return "", "", err
	}

	return f.Name, store.ObjectID(f.Hash.String()), nil
}

func (i *fileIter) Close() {
	i.it.Close()
}
