package gitfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/hairyhenderson/go-gitstream"
	"github.com/hairyhenderson/go-gitstream/internal"
	"github.com/hairyhenderson/go-gitstream/locator"
	"github.com/hairyhenderson/go-gitstream/store"
)

type gitFS struct {
	ctx    context.Context
	driver *gitstream.Driver
	base   locator.Locator
}

// New provides a filesystem (an fs.FS) rooted at the tree addressed by the
// given locator. The options configure the underlying gitstream.Driver.
//
// A context can be given by using gitstream.WithContextFS.
func New(base string, opts ...gitstream.Option) (fs.FS, error) {
	return FromDriver(gitstream.New(opts...), base)
}

// FromDriver provides a filesystem (an fs.FS) rooted at the tree addressed by
// the given locator, reading through an existing Driver.
func FromDriver(d *gitstream.Driver, base string) (fs.FS, error) {
	loc, err := locator.Parse(base)
	if err != nil {
		return nil, err
	}

	loc.Path = strings.Trim(loc.Path, "/")

	return &gitFS{ctx: context.Background(), driver: d, base: loc}, nil
}

var (
	_ fs.FS                  = (*gitFS)(nil)
	_ fs.ReadDirFS           = (*gitFS)(nil)
	_ fs.StatFS              = (*gitFS)(nil)
	_ internal.WithContexter = (*gitFS)(nil)
)

// URL returns the locator the filesystem is rooted at.
func (f gitFS) URL() string {
	return f.base.String()
}

func (f *gitFS) WithContext(ctx context.Context) fs.FS {
	if ctx == nil {
		return f
	}

	fsys := *f
	fsys.ctx = ctx

	return &fsys
}

// locate returns the locator for name, relative to the filesystem root
func (f *gitFS) locate(name string) string {
	if name == "." {
		return f.base.String()
	}

	return f.base.WithPath(path.Join(f.base.Path, name)).String()
}

// resolved is a named node, with the repository it was read from
type resolved struct {
	res  *gitstream.Resolution
	obj  store.Object
	info fs.FileInfo
}

// resolve finds name through its parent directory, so that the entry's mode
// is known. The caller must close the returned resolution.
func (f *gitFS) resolve(op, name string) (*resolved, error) {
	if !internal.ValidName(name) {
		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}

	if name == "." {
		res, err := f.driver.Resolve(f.ctx, f.locate(name))
		if err != nil {
			return nil, pathError(op, name, err)
		}

		if _, ok := res.Node.(store.Tree); !ok {
			_ = res.Close()

			return nil, &fs.PathError{Op: op, Path: name, Err: gitstream.ErrNotADirectory}
		}

		return &resolved{res: res, obj: res.Node, info: internal.DirInfo(".", time.Time{})}, nil
	}

	res, err := f.driver.Resolve(f.ctx, f.locate(path.Dir(name)))
	if err != nil {
		return nil, pathError(op, name, err)
	}

	parent, ok := res.Node.(store.Tree)
	if !ok {
		_ = res.Close()

		return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
	}

	base := path.Base(name)

	for _, e := range parent.Entries() {
		if e.Name != base {
			continue
		}

		obj, err := res.Repository().Load(f.ctx, e.ID)
		if err != nil {
			_ = res.Close()

			return nil, &fs.PathError{Op: op, Path: name, Err: fmt.Errorf("%w: %w", gitstream.ErrObjectLoad, err)}
		}

		return &resolved{res: res, obj: obj, info: entryInfo(e, obj)}, nil
	}

	_ = res.Close()

	return nil, &fs.PathError{Op: op, Path: name, Err: fs.ErrNotExist}
}

func (f *gitFS) Open(name string) (fs.File, error) {
	r, err := f.resolve("open", name)
	if err != nil {
		return nil, err
	}

	defer r.res.Close()

	switch o := r.obj.(type) {
	case store.Tree:
		entries, err := f.entries(r.res.Repository(), o)
		if err != nil {
			return nil, pathError("open", name, err)
		}

		return &dir{info: r.info, entries: entries}, nil
	case store.Blob:
		data, err := readBlob(o)
		if err != nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fmt.Errorf("%w: %w", gitstream.ErrObjectLoad, err)}
		}

		return &file{info: r.info, Reader: bytes.NewReader(data)}, nil
	default:
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
}

func (f *gitFS) ReadDir(name string) ([]fs.DirEntry, error) {
	r, err := f.resolve("readdir", name)
	if err != nil {
		return nil, err
	}

	defer r.res.Close()

	t, ok := r.obj.(store.Tree)
	if !ok {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: gitstream.ErrNotADirectory}
	}

	entries, err := f.entries(r.res.Repository(), t)
	if err != nil {
		return nil, pathError("readdir", name, err)
	}

	return entries, nil
}

func (f *gitFS) Stat(name string) (fs.FileInfo, error) {
	r, err := f.resolve("stat", name)
	if err != nil {
		return nil, err
	}

	_ = r.res.Close()

	return r.info, nil
}

// entries lists the children of t, sorted by name
func (f *gitFS) entries(repo store.Repository, t store.Tree) ([]fs.DirEntry, error) {
	children := t.Entries()
	out := make([]fs.DirEntry, 0, len(children))

	for _, e := range children {
		var obj store.Object

		if !e.Mode.IsDir() {
			var err error

			obj, err = repo.Load(f.ctx, e.ID)
			if err != nil {
				return nil, fmt.Errorf("%w: %w", gitstream.ErrObjectLoad, err)
			}
		}

		out = append(out, entryInfo(e, obj).(fs.DirEntry))
	}

	slices.SortFunc(out, func(a, b fs.DirEntry) int {
		return strings.Compare(a.Name(), b.Name())
	})

	return out, nil
}

// entryInfo describes a tree entry. Blob sizes are real; everything else is
// static.
func entryInfo(e store.Entry, obj store.Object) fs.FileInfo {
	var size int64
	if b, ok := obj.(store.Blob); ok {
		size = b.Size()
	}

	return internal.FileInfo(e.Name, size, e.Mode, time.Time{}, nil)
}

// pathError re-targets an error from the driver at name
func pathError(op, name string, err error) error {
	var perr *fs.PathError
	if errors.As(err, &perr) {
		err = perr.Err
	}

	return &fs.PathError{Op: op, Path: name, Err: err}
}

func readBlob(b store.Blob) ([]byte, error) {
	rc, err := b.Reader()
	if err != nil {
		return nil, err
	}

	defer rc.Close()

	return io.ReadAll(rc)
}

type file struct {
	info fs.FileInfo
	*bytes.Reader
}

var (
	_ fs.File     = (*file)(nil)
	_ io.ReaderAt = (*file)(nil)
	_ io.Seeker   = (*file)(nil)
)

func (f *file) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *file) Close() error               { return nil }

type dir struct {
	info    fs.FileInfo
	entries []fs.DirEntry
	offset  int
}

var _ fs.ReadDirFile = (*dir)(nil)

func (d *dir) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *dir) Close() error               { return nil }

func (d *dir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.info.Name(), Err: errors.New("is a directory")}
}

func (d *dir) ReadDir(n int) ([]fs.DirEntry, error) {
	remaining := d.entries[d.offset:]

	if n <= 0 {
		d.offset = len(d.entries)

		return remaining, nil
	}

	if len(remaining) == 0 {
		return nil, io.EOF
	}

	n = min(n, len(remaining))
	d.offset += n

	return remaining[:n], nil
}
