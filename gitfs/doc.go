// Package gitfs provides a read-only filesystem (an fs.FS) over a tree in a
// branch of a git repository.
//
// The filesystem is rooted at a gitstream locator, such as:
//
//	git:///srv/repos/app.git/main/src
//
// and all names are relative to that tree. Only the committed state of the
// branch is visible, so for local repositories with a working tree, modified
// or untracked files won't appear.
//
// This filesystem's behaviour complies with fstest.TestFS.
//
// # Resolution
//
// Every call resolves the branch tip afresh, so a filesystem keeps tracking a
// branch as it moves. Nothing is cached between calls. Files are read into
// memory in full when opened.
//
// # File info
//
// File sizes are the sizes of the stored blobs. Modes are read-only: 0444 for
// regular files and symbolic links, 0555 for executables, and 0555 for
// directories. Modification times are always the zero time, as git doesn't
// track them.
//
// Submodules are omitted from directory listings.
//
// # Repositories and authentication
//
// Repositories are opened by the gitstream.Driver the filesystem is built on.
// See package gitstore for the supported locations and for the environment
// variables used to authenticate to remote repositories.
package gitfs
