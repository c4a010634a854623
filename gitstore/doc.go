// Package gitstore implements the store.Repository contract on top of go-git.
//
// Repositories can be opened from the local filesystem (LocalOpener), from any
// billy.Filesystem (FilesystemOpener), or by cloning a remote repository into
// memory (CloneOpener). Every open returns a fresh, independent connection.
//
// # Repository locations
//
// For local openers the locator's repository part is a directory path. If
// that directory contains a '.git' subdirectory, the repository is read from
// there, otherwise the directory itself must be a bare repository.
//
// For the clone opener the repository part (with the locator's scheme) forms
// the remote URL, so 'https://github.com/foo/bar.git/main/README.md' clones
// 'https://github.com/foo/bar.git'. The branch is fetched shallowly; if no
// such branch exists a tag of the same name is tried instead.
//
// # Authentication
//
// Remote clones authenticate with an Authenticator. See AutoAuthenticator for
// the default chain and the environment variables it honours:
//
// - GIT_HTTP_PASSWORD: the password to use for HTTP Basic Authentication
//
// - GIT_HTTP_TOKEN: the token to use for HTTP token authentication
//
// - GIT_SSH_KEY: the (optionally Base64-encoded) PEM-encoded private key to use
// for SSH public key authentication
//
// Each variable can also be given as a path to a file containing the value,
// by appending '_FILE' to its name (e.g. GIT_SSH_KEY_FILE).
package gitstore
