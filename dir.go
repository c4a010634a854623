package gitstream

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/hairyhenderson/go-gitstream/store"
	"go.opentelemetry.io/otel/trace"
)

// DirCursor iterates over the paths of every file contained in a tree,
// recursively. The listing is requested lazily on the first call to Next, and
// requested again after Rewind. A DirCursor is safe for concurrent use.
type DirCursor struct {
	ctx    context.Context
	res    *Resolution
	tree   store.Tree
	iter   store.FileIter
	logger *slog.Logger
	tracer trace.Tracer
	name   string
	mu     sync.Mutex
	done   bool
	closed bool
}

// Next returns the next file path, relative to the cursor's tree. At the end
// of the listing it returns io.EOF, and keeps doing so until Rewind is called.
// Errors from the store leave the cursor open.
func (c *DirCursor) Next() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return "", &fs.PathError{Op: "readdir", Path: c.name, Err: fs.ErrClosed}
	}

	_, span := c.tracer.Start(c.ctx, "dir.Next")
	defer span.End()

	if c.done {
		return "", io.EOF
	}

	if c.iter == nil {
		c.iter = c.tree.Files()
	}

	name, _, err := c.iter.Next()
	if errors.Is(err, io.EOF) {
		c.iter.Close()
		c.iter = nil
		c.done = true

		return "", io.EOF
	}

	if err != nil {
		return "", recordError(span, pathErr("readdir", c.name, ErrObjectLoad, err))
	}

	span.SetAttributes(DirEntry(name))

	return name, nil
}

// Rewind discards the current listing, so the next call to Next starts over
// from the first path.
func (c *DirCursor) Rewind() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return &fs.PathError{Op: "rewinddir", Path: c.name, Err: fs.ErrClosed}
	}

	_, span := c.tracer.Start(c.ctx, "dir.Rewind")
	defer span.End()

	c.reset()

	return nil
}

func (c *DirCursor) reset() {
	if c.iter != nil {
		c.iter.Close()
		c.iter = nil
	}

	c.done = false
}

// Close releases the listing and the repository. Closing an already-closed
// cursor is a no-op. Close always returns nil; failures to release the
// repository are logged.
func (c *DirCursor) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.reset()
	c.closed = true
	c.tree = nil

	if err := c.res.Close(); err != nil {
		c.logger.WarnContext(c.ctx, "failed to close repository",
			slog.String("locator", c.name), slog.Any("err", err))
	}

	return nil
}
