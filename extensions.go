package gitstream

import (
	"context"
	"io/fs"

	"github.com/hairyhenderson/go-gitstream/internal"
)

// WithContextFS injects a context into the filesystem fs, if the filesystem
// supports it (i.e. has a WithContext method).
func WithContextFS(ctx context.Context, fsys fs.FS) fs.FS {
	if cfsys, ok := fsys.(internal.WithContexter); ok {
		return cfsys.WithContext(ctx)
	}

	return fsys
}
