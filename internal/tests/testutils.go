// Package tests contains helpers shared by this module's tests.
package tests

import (
	"net/url"
	"os"
	"path"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/hairyhenderson/go-git/v5"
	"github.com/hairyhenderson/go-git/v5/plumbing"
	"github.com/hairyhenderson/go-git/v5/plumbing/cache"
	"github.com/hairyhenderson/go-git/v5/plumbing/object"
	"github.com/hairyhenderson/go-git/v5/storage/filesystem"
	"github.com/stretchr/testify/require"
)

func MustURL(s string) *url.URL {
	u, err := url.Parse(s)
	if err != nil {
		panic(err)
	}

	return u
}

// Files lists the files committed on the "main" (and "master") branch of the
// fixture repositories, in the order git walks them.
//
//nolint:gochecknoglobals
var Files = []string{
	"README.md",
	"bin/run.sh",
	"docs/guide.txt",
	"src/app.js",
	"src/lib/util.js",
}

// Contents maps each file in Files (and the "develop"-only CHANGELOG.md) to its
// content.
//
//nolint:gochecknoglobals
var Contents = map[string]string{
	"README.md":       "hello world",
	"bin/run.sh":      "#!/bin/sh\necho hi\n",
	"docs/guide.txt":  "read the source\n",
	"src/app.js":      "abc",
	"src/lib/util.js": "export {}\n",
	"CHANGELOG.md":    "- initial release\n",
}

// Repos are the fixture repository locations within the filesystem returned
// by SetupRepos.
const (
	// BareRepo is a bare repository
	BareRepo = "repo.git/"
	// CheckoutRepo is a repository with a working tree and a .git directory
	CheckoutRepo = "checkout.git/"
)

func sig(when time.Time) *object.Signature {
	return &object.Signature{Name: "Jane Doe", Email: "jane@example.com", When: when}
}

// SetupRepos builds the fixture repositories in a new in-memory filesystem.
//
// Each repository has:
//   - "master" and "main": one commit with the files in Files
//   - "develop": a second commit adding CHANGELOG.md
//   - "v1": a lightweight tag of the first commit
//   - "release": an annotated tag of the first commit
//
// HEAD points at "develop". The returned map holds the commit ids keyed by
// "first" and "second".
func SetupRepos(t *testing.T) (billy.Filesystem, map[string]string) {
	t.Helper()

	bfs := memfs.New()

	// bare repository, with a separate scratch worktree used only to commit
	err := bfs.MkdirAll("/"+BareRepo, os.ModeDir)
	require.NoError(t, err)

	dot, err := bfs.Chroot("/" + BareRepo)
	require.NoError(t, err)

	wt, err := bfs.Chroot("/scratch")
	require.NoError(t, err)

	hashes := initRepo(t, dot, wt, false)

	// repository with a .git directory
	err = bfs.MkdirAll("/"+CheckoutRepo+".git", os.ModeDir)
	require.NoError(t, err)

	wt, err = bfs.Chroot("/" + CheckoutRepo)
	require.NoError(t, err)

	dot, err = wt.Chroot("/.git")
	require.NoError(t, err)

	_ = initRepo(t, dot, wt, true)

	return bfs, hashes
}

func initRepo(t *testing.T, dot, wt billy.Filesystem, setConfig bool) map[string]string {
	t.Helper()

	s := filesystem.NewStorage(dot, cache.NewObjectLRUDefault())

	r, err := git.Init(s, wt)
	require.NoError(t, err)

	if setConfig {
		// config needs to be written explicitly for a non-bare layout
		c, err := r.Config()
		require.NoError(t, err)

		err = s.SetConfig(c)
		require.NoError(t, err)
	}

	w, err := r.Worktree()
	require.NoError(t, err)

	when := time.Date(2024, 5, 30, 14, 4, 3, 0, time.UTC)

	for _, name := range Files {
		perm := os.FileMode(0o644)
		if name == "bin/run.sh" {
			perm = 0o755
		}

		err = wt.MkdirAll(path.Dir(name), 0o755)
		require.NoError(t, err)

		err = util.WriteFile(wt, name, []byte(Contents[name]), perm)
		require.NoError(t, err)

		_, err = w.Add(name)
		require.NoError(t, err)
	}

	first, err := w.Commit("initial commit", &git.CommitOptions{Author: sig(when)})
	require.NoError(t, err)

	err = s.SetReference(plumbing.NewHashReference(plumbing.NewBranchReferenceName("main"), first))
	require.NoError(t, err)

	_, err = r.CreateTag("v1", first, nil)
	require.NoError(t, err)

	_, err = r.CreateTag("release", first, &git.CreateTagOptions{
		Tagger:  sig(when),
		Message: "first release",
	})
	require.NoError(t, err)

	err = w.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("develop"),
		Hash:   first,
		Create: true,
	})
	require.NoError(t, err)

	err = util.WriteFile(wt, "CHANGELOG.md", []byte(Contents["CHANGELOG.md"]), 0o644)
	require.NoError(t, err)

	_, err = w.Add("CHANGELOG.md")
	require.NoError(t, err)

	second, err := w.Commit("add changelog", &git.CommitOptions{Author: sig(when.Add(time.Hour))})
	require.NoError(t, err)

	return map[string]string{
		"first":  first.String(),
		"second": second.String(),
	}
}
