// Package gitstream provides read-only access to the files and directories of
// a branch in a git repository, addressed by a single locator string:
//
//	scheme://<repository>.git/<branch>/<path>
//
// For example, "git:///srv/repos/app.git/main/src/app.js" addresses the file
// src/app.js at the tip of the main branch of the repository at
// /srv/repos/app.git.
//
// A [Driver] opens two kinds of handles. A [DirCursor] walks the paths of every
// file below a tree, and a [Stream] reads the content of a single file. Each
// handle opens its own connection to the repository and resolves the branch
// tip afresh, so nothing is shared or cached between handles.
//
// The repository is opened by the [store.Opener] registered in the Driver's
// [Mux] for the locator's scheme. By default, "git" and "file" locators are
// read from the local filesystem, while "http", "https", and "ssh" locators are
// cloned into memory (see package gitstore for details on authentication).
//
// Package gitfs provides an [io/fs.FS] view built on the Driver.
//
// # Errors
//
// Errors are *fs.PathError values wrapping one of the error kinds declared in
// this package, such as [ErrBranchNotFound] and [ErrPathNotFound]. Kinds match
// the related standard errors too, so errors.Is(err, fs.ErrNotExist) reports
// whether a branch or path was missing.
//
// # Observability
//
// Debug logs are written to a [log/slog.Logger] (see [WithLogger]) and spans
// are created with the OpenTelemetry tracer provider given by
// [WithTracerProvider], or the global provider.
package gitstream
