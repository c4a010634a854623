package gitstream

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/hairyhenderson/go-gitstream/internal"
	"go.opentelemetry.io/otel/trace"
)

// MetadataOption identifies the metadata change requested by SetMetadata.
type MetadataOption int

const (
	MetaTouch MetadataOption = iota + 1
	MetaOwnerName
	MetaOwner
	MetaGroupName
	MetaGroup
	MetaAccess
)

// Stream is a read-only stream over the content of a blob. The content is
// loaded in full when the stream is opened. A Stream is safe for concurrent
// use.
type Stream struct {
	ctx    context.Context
	res    *Resolution
	logger *slog.Logger
	tracer trace.Tracer
	name   string
	data   []byte
	offset int64
	mu     sync.Mutex
	closed bool
}

var (
	_ fs.File   = (*Stream)(nil)
	_ io.Reader = (*Stream)(nil)
	_ io.Writer = (*Stream)(nil)
	_ io.Seeker = (*Stream)(nil)
)

// Read copies content from the current offset into p. The offset always
// advances by len(p), even when fewer bytes are copied. When no content is
// left, Read returns 0, io.EOF.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, &fs.PathError{Op: "read", Path: s.name, Err: fs.ErrClosed}
	}

	_, span := s.tracer.Start(s.ctx, "stream.Read")
	defer span.End()

	n := 0
	if s.offset < int64(len(s.data)) {
		n = copy(p, s.data[s.offset:])
	}

	s.offset += int64(len(p))

	span.SetAttributes(FileBytesRead(n))

	if n == 0 && len(p) > 0 {
		return 0, io.EOF
	}

	return n, nil
}

// Write always fails with ErrReadOnlyStream.
func (s *Stream) Write(_ []byte) (int, error) {
	return 0, &fs.PathError{Op: "write", Path: s.name, Err: ErrReadOnlyStream}
}

// Tell always fails with ErrUnsupportedOperation.
func (s *Stream) Tell() (int64, error) {
	return 0, &fs.PathError{Op: "tell", Path: s.name, Err: ErrUnsupportedOperation}
}

// EOF reports whether the offset has reached the end of the content. It is
// always true for a closed stream.
func (s *Stream) EOF() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.offset >= int64(len(s.data))
}

// Seek moves the offset back to the start of the content, whatever the
// arguments. Only a request to seek to offset 0 from io.SeekStart succeeds;
// any other request still rewinds, but returns ErrUnsupportedOperation.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, &fs.PathError{Op: "seek", Path: s.name, Err: fs.ErrClosed}
	}

	s.offset = 0

	if offset == 0 && whence == io.SeekStart {
		return 0, nil
	}

	return 0, pathErr("seek", s.name, ErrUnsupportedOperation,
		fmt.Errorf("only rewinding to the start is supported (offset %d, whence %d)", offset, whence))
}

// Stat returns static file info. Sys returns the Metadata record.
func (s *Stream) Stat() (fs.FileInfo, error) {
	m := StaticMetadata()

	name := "."
	if s.res != nil {
		if p := strings.Trim(s.res.Locator.Path, "/"); p != "" {
			name = path.Base(p)
		}
	}

	return internal.FileInfo(name, m.Size, m.FileMode(), m.ModTime(), m), nil
}

// Metadata returns the static metadata record.
func (s *Stream) Metadata() Metadata {
	return StaticMetadata()
}

// SetMetadata always fails with ErrReadOnlyStream.
func (s *Stream) SetMetadata(_ MetadataOption, _ any) error {
	return &fs.PathError{Op: "chmeta", Path: s.name, Err: ErrReadOnlyStream}
}

// Close releases the content and the repository. Closing an already-closed
// stream is a no-op.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	s.data = nil
	s.offset = 0

	if err := s.res.Close(); err != nil {
		s.logger.WarnContext(s.ctx, "failed to close repository",
			slog.String("locator", s.name), slog.Any("err", err))
	}

	return nil
}
