package gitstream

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/hairyhenderson/go-gitstream/locator"
	"github.com/hairyhenderson/go-gitstream/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/hairyhenderson/go-gitstream"

// Driver opens directory cursors and file streams addressed by locators. A
// Driver is safe for concurrent use; every handle it returns owns its own
// repository connection.
type Driver struct {
	openers Mux
	logger  *slog.Logger
	tracer  trace.Tracer
}

// New returns a Driver. With no options, locators are served by DefaultMux,
// logs go to slog.Default(), and spans to the global tracer provider.
func New(opts ...Option) *Driver {
	cfg := config{openers: DefaultMux()}

	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	if cfg.tp == nil {
		cfg.tp = otel.GetTracerProvider()
	}

	return &Driver{
		openers: cfg.openers,
		logger:  cfg.logger,
		tracer:  cfg.tp.Tracer(tracerName),
	}
}

// Resolution is a locator resolved to a tree or blob, together with the open
// repository it was read from. The caller must Close it. A Resolution is not
// safe for concurrent use.
type Resolution struct {
	repo store.Repository

	// Node is a store.Tree or a store.Blob
	Node    store.Object
	Locator locator.Locator
}

// Repository returns the repository the node was read from, for loading
// related objects. It returns nil after Close.
func (r *Resolution) Repository() store.Repository {
	return r.repo
}

// Close releases the repository. Subsequent calls return nil.
func (r *Resolution) Close() error {
	if r.repo == nil {
		return nil
	}

	err := r.repo.Close()
	r.repo = nil

	return err
}

// Resolve parses name, opens its repository, and resolves the branch tip and
// inner path to a tree or blob.
func (d *Driver) Resolve(ctx context.Context, name string) (*Resolution, error) {
	ctx, span := d.tracer.Start(ctx, "driver.Resolve", trace.WithAttributes(RawLocator(name)))
	defer span.End()

	res, err := d.resolve(ctx, "resolve", name)
	if err != nil {
		return nil, recordError(span, err)
	}

	return res, nil
}

func (d *Driver) resolve(ctx context.Context, op, name string) (*Resolution, error) {
	span := trace.SpanFromContext(ctx)

	loc, err := locator.Parse(name)
	if err != nil {
		return nil, &fs.PathError{Op: op, Path: name, Err: err}
	}

	span.SetAttributes(LocatorAttributes(loc)...)

	repo, err := d.openers.Open(ctx, loc)
	if err != nil {
		return nil, pathErr(op, name, openErrKind(err), err)
	}

	node, err := resolveNode(ctx, repo, loc)
	if err != nil {
		d.release(ctx, name, repo)

		return nil, &fs.PathError{Op: op, Path: name, Err: err}
	}

	span.SetAttributes(NodeKind(node.Kind()))
	d.logger.DebugContext(ctx, "resolved locator",
		slog.String("locator", name),
		slog.String("kind", node.Kind().String()),
		slog.String("id", string(node.ID())))

	return &Resolution{Locator: loc, Node: node, repo: repo}, nil
}

// release closes c, logging any failure
func (d *Driver) release(ctx context.Context, name string, c io.Closer) {
	if err := c.Close(); err != nil {
		d.logger.WarnContext(ctx, "failed to close repository",
			slog.String("locator", name), slog.Any("err", err))
	}
}

// OpenDir opens a cursor over every file path in the tree addressed by name.
// Paths are relative to that tree and yielded in store order.
func (d *Driver) OpenDir(ctx context.Context, name string) (*DirCursor, error) {
	ctx, span := d.tracer.Start(ctx, "driver.OpenDir", trace.WithAttributes(RawLocator(name)))
	defer span.End()

	res, err := d.resolve(ctx, "opendir", name)
	if err != nil {
		return nil, recordError(span, err)
	}

	tree, ok := res.Node.(store.Tree)
	if !ok {
		d.release(ctx, name, res)

		return nil, recordError(span, pathErr("opendir", name, ErrNotADirectory, nil))
	}

	d.logger.DebugContext(ctx, "opened directory", slog.String("locator", name))

	return &DirCursor{
		ctx:    ctx,
		name:   name,
		res:    res,
		tree:   tree,
		logger: d.logger,
		tracer: d.tracer,
	}, nil
}

// OpenFile opens a read-only stream over the content of the blob addressed by
// name. mode follows fopen(3) conventions: it must start with one of 'r',
// 'w', 'a', 'x', or 'c', optionally followed by any of '+', 'b', 't', and
// 'e'. Modes implying write access are accepted, but writes always fail.
func (d *Driver) OpenFile(ctx context.Context, name, mode string) (*Stream, error) {
	ctx, span := d.tracer.Start(ctx, "driver.OpenFile", trace.WithAttributes(RawLocator(name)))
	defer span.End()

	if err := checkMode(mode); err != nil {
		return nil, recordError(span, &fs.PathError{Op: "open", Path: name, Err: err})
	}

	res, err := d.resolve(ctx, "open", name)
	if err != nil {
		return nil, recordError(span, err)
	}

	blob, ok := res.Node.(store.Blob)
	if !ok {
		d.release(ctx, name, res)

		return nil, recordError(span, pathErr("open", name, ErrNotAFile, nil))
	}

	data, err := readBlob(blob)
	if err != nil {
		d.release(ctx, name, res)

		return nil, recordError(span, pathErr("open", name, ErrObjectLoad, err))
	}

	span.SetAttributes(FileSize(int64(len(data))))
	d.logger.DebugContext(ctx, "opened file",
		slog.String("locator", name), slog.Int("size", len(data)))

	return &Stream{
		ctx:    ctx,
		name:   name,
		res:    res,
		data:   data,
		logger: d.logger,
		tracer: d.tracer,
	}, nil
}

// URLStat returns the metadata record for name. The locator is parsed but
// nothing is opened or resolved, so this succeeds for locators that don't
// exist.
func (d *Driver) URLStat(name string) (Metadata, error) {
	if _, err := locator.Parse(name); err != nil {
		return Metadata{}, &fs.PathError{Op: "stat", Path: name, Err: err}
	}

	return StaticMetadata(), nil
}

func checkMode(mode string) error {
	if mode == "" || !strings.ContainsRune("rwaxc", rune(mode[0])) {
		return fmt.Errorf("%w: mode %q", fs.ErrInvalid, mode)
	}

	for _, c := range mode[1:] {
		if !strings.ContainsRune("+bte", c) {
			return fmt.Errorf("%w: mode %q", fs.ErrInvalid, mode)
		}
	}

	return nil
}

func readBlob(blob store.Blob) ([]byte, error) {
	rc, err := blob.Reader()
	if err != nil {
		return nil, err
	}

	defer rc.Close()

	return io.ReadAll(rc)
}
