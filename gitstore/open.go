package gitstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/hairyhenderson/go-git/v5"
	"github.com/hairyhenderson/go-git/v5/plumbing"
	"github.com/hairyhenderson/go-git/v5/plumbing/cache"
	"github.com/hairyhenderson/go-git/v5/storage/filesystem"
	"github.com/hairyhenderson/go-git/v5/storage/memory"
	"github.com/hairyhenderson/go-gitstream/locator"
	"github.com/hairyhenderson/go-gitstream/store"
)

// Local serves the "git" and "file" schemes from the local filesystem.
//
//nolint:gochecknoglobals
var Local = store.NewProvider(LocalOpener(), "git", "file")

// Remote serves the "http", "https", and "ssh" schemes by cloning into memory,
// authenticating with AutoAuthenticator.
//
//nolint:gochecknoglobals
var Remote = store.NewProvider(CloneOpener(AutoAuthenticator()), "http", "https", "ssh")

// LocalOpener opens repositories from the local filesystem. Relative
// repository locations are resolved against the current working directory.
func LocalOpener() store.Opener {
	return store.OpenerFunc(func(_ context.Context, loc locator.Locator) (store.Repository, error) {
		dir, err := filepath.Abs(filepath.FromSlash(loc.Repository))
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", loc.Repository, err)
		}

		fi, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", store.ErrNotRepository, err)
		}

		if !fi.IsDir() {
			return nil, fmt.Errorf("%w: %s is not a directory", store.ErrNotRepository, dir)
		}

		return openFilesystem(osfs.New(dir))
	})
}

// FilesystemOpener opens repositories from bfs, with repository locations
// interpreted as paths within bfs.
func FilesystemOpener(bfs billy.Filesystem) store.Opener {
	return store.OpenerFunc(func(_ context.Context, loc locator.Locator) (store.Repository, error) {
		base, err := bfs.Chroot(loc.Repository)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", loc.Repository, err)
		}

		return openFilesystem(base)
	})
}

// openFilesystem opens the repository rooted at base, which may be either a
// bare repository or a directory with a .git subdirectory
func openFilesystem(base billy.Filesystem) (store.Repository, error) {
	dot := base

	if fi, err := base.Stat(".git"); err == nil && fi.IsDir() {
		dot, err = base.Chroot(".git")
		if err != nil {
			return nil, err
		}
	}

	s := filesystem.NewStorage(dot, cache.NewObjectLRUDefault())
	repo := NewRepository(s)

	if _, err := s.Reference(plumbing.HEAD); err != nil {
		_ = repo.Close()

		return nil, fmt.Errorf("%w: %w", store.ErrNotRepository, err)
	}

	return repo, nil
}

// CloneOpener opens remote repositories by cloning the locator's branch (or
// tag) into memory. Every open performs a new shallow clone.
func CloneOpener(auth Authenticator) store.Opener {
	return store.OpenerFunc(func(ctx context.Context, loc locator.Locator) (store.Repository, error) {
		u, err := remoteURL(loc)
		if err != nil {
			return nil, err
		}

		return gitClone(ctx, auth, u, loc.Branch)
	})
}

// remoteURL builds the URL of the remote repository named by loc
func remoteURL(loc locator.Locator) (*url.URL, error) {
	raw := loc.Scheme + "://" + strings.TrimSuffix(loc.Repository, "/")

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid repository URL %q: %w", raw, err)
	}

	return u, nil
}

// cloneRefs returns the references to attempt cloning, in order
func cloneRefs(name string) []plumbing.ReferenceName {
	if strings.HasPrefix(name, "refs/") {
		return []plumbing.ReferenceName{plumbing.ReferenceName(name)}
	}

	return []plumbing.ReferenceName{
		plumbing.NewBranchReferenceName(name),
		plumbing.NewTagReferenceName(name),
	}
}

func isRefNotFound(err error) bool {
	var nomatch git.NoMatchingRefSpecError

	return errors.Is(err, plumbing.ErrReferenceNotFound) || errors.As(err, &nomatch)
}

// gitClone clones ref from the repo at u into memory
func gitClone(ctx context.Context, auth Authenticator, u *url.URL, ref string) (store.Repository, error) {
	if auth == nil {
		return nil, errors.New("clone: no auth method provided")
	}

	authMethod, err := auth.Authenticate(u)
	if err != nil {
		return nil, err
	}

	depth := 1
	if u.Scheme == "file" {
		// shallow clones aren't supported for filesystem repos
		depth = 0
	}

	for _, name := range cloneRefs(ref) {
		s := memory.NewStorage()

		opts := git.CloneOptions{
			URL:           u.String(),
			Auth:          authMethod,
			Depth:         depth,
			ReferenceName: name,
			SingleBranch:  true,
			Tags:          git.NoTags,
		}

		_, err = git.CloneContext(ctx, s, nil, &opts)
		if err == nil {
			return NewRepository(s), nil
		}

		if !isRefNotFound(err) {
			return nil, fmt.Errorf("git clone for %s failed: %w", u.Redacted(), err)
		}
	}

	return nil, fmt.Errorf("git clone for %s: %w: %q", u.Redacted(), store.ErrRefNotFound, ref)
}
