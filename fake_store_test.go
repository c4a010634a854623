package gitstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hairyhenderson/go-gitstream/locator"
	"github.com/hairyhenderson/go-gitstream/store"
)

// fakeRepo is an in-memory store.Repository for failure injection
type fakeRepo struct {
	tips     map[string]store.ObjectID
	objects  map[store.ObjectID]store.Object
	tipErr   error
	loadErr  map[store.ObjectID]error
	closeErr error
	closed   int
}

func (r *fakeRepo) ResolveBranchTip(_ context.Context, name string) (store.ObjectID, error) {
	if r.tipErr != nil {
		return "", r.tipErr
	}

	id, ok := r.tips[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", store.ErrRefNotFound, name)
	}

	return id, nil
}

func (r *fakeRepo) Load(_ context.Context, id store.ObjectID) (store.Object, error) {
	if err := r.loadErr[id]; err != nil {
		return nil, err
	}

	obj, ok := r.objects[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrObjectNotFound, id)
	}

	return obj, nil
}

func (r *fakeRepo) Close() error {
	r.closed++

	return r.closeErr
}

// opener returns an opener that always hands out r
func (r *fakeRepo) opener() store.Opener {
	return store.OpenerFunc(func(context.Context, locator.Locator) (store.Repository, error) {
		return r, nil
	})
}

type fakeCommit struct {
	id, tree store.ObjectID
}

func (c *fakeCommit) ID() store.ObjectID     { return c.id }
func (c *fakeCommit) Kind() store.Kind       { return store.KindCommit }
func (c *fakeCommit) TreeID() store.ObjectID { return c.tree }

type fakeTag struct {
	id, target store.ObjectID
}

func (t *fakeTag) ID() store.ObjectID       { return t.id }
func (t *fakeTag) Kind() store.Kind         { return store.KindTag }
func (t *fakeTag) TargetID() store.ObjectID { return t.target }

// fakeTree lists files in order. If iterErr is set, it is returned by the
// iterator in place of the file at index failAt.
type fakeTree struct {
	id      store.ObjectID
	paths   map[string]store.ObjectID
	files   []string
	iterErr error
	failAt  int
	listed  int
}

func (t *fakeTree) ID() store.ObjectID { return t.id }
func (t *fakeTree) Kind() store.Kind   { return store.KindTree }

func (t *fakeTree) Find(p string) (store.ObjectID, error) {
	id, ok := t.paths[p]
	if !ok {
		return "", fmt.Errorf("%w: %s", store.ErrEntryNotFound, p)
	}

	return id, nil
}

func (t *fakeTree) Files() store.FileIter {
	t.listed++

	return &fakeIter{t: t}
}

func (t *fakeTree) Entries() []store.Entry { return nil }

type fakeIter struct {
	t      *fakeTree
	i      int
	failed bool
}

func (i *fakeIter) Next() (string, store.ObjectID, error) {
	if i.t.iterErr != nil && i.i == i.t.failAt && !i.failed {
		i.failed = true

		return "", "", i.t.iterErr
	}

	if i.i >= len(i.t.files) {
		return "", "", io.EOF
	}

	name := i.t.files[i.i]
	i.i++

	return name, i.t.paths[name], nil
}

func (i *fakeIter) Close() {}

type fakeBlob struct {
	id      store.ObjectID
	data    []byte
	readErr error
}

func (b *fakeBlob) ID() store.ObjectID { return b.id }
func (b *fakeBlob) Kind() store.Kind   { return store.KindBlob }
func (b *fakeBlob) Size() int64        { return int64(len(b.data)) }

func (b *fakeBlob) Reader() (io.ReadCloser, error) {
	if b.readErr != nil {
		return nil, b.readErr
	}

	return io.NopCloser(bytes.NewReader(b.data)), nil
}

var errBroken = errors.New("broken")

// newFakeRepo builds a repository with a "main" branch holding a.txt and
// dir/b.txt
func newFakeRepo() *fakeRepo {
	root := &fakeTree{
		id: "tree",
		paths: map[string]store.ObjectID{
			"a.txt":     "blob-a",
			"dir":       "tree-dir",
			"dir/b.txt": "blob-b",
		},
		files: []string{"a.txt", "dir/b.txt"},
	}

	return &fakeRepo{
		tips: map[string]store.ObjectID{
			"main": "commit",
			"tag":  "tag",
			"loop": "tag-loop",
			"blob": "blob-a",
		},
		objects: map[store.ObjectID]store.Object{
			"commit":   &fakeCommit{id: "commit", tree: "tree"},
			"tag":      &fakeTag{id: "tag", target: "commit"},
			"tag-loop": &fakeTag{id: "tag-loop", target: "tag-loop"},
			"tree":     root,
			"tree-dir": &fakeTree{
				id:    "tree-dir",
				paths: map[string]store.ObjectID{"b.txt": "blob-b"},
				files: []string{"b.txt"},
			},
			"blob-a": &fakeBlob{id: "blob-a", data: []byte("aaa")},
			"blob-b": &fakeBlob{id: "blob-b", data: []byte("bb")},
		},
		loadErr: map[store.ObjectID]error{},
	}
}
