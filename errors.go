package gitstream

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/hairyhenderson/go-gitstream/locator"
	"github.com/hairyhenderson/go-gitstream/store"
)

// Errors returned by the driver, directory cursors, and streams are
// *fs.PathError values wrapping one of these kinds. Use errors.Is to test for
// them. Where it makes sense, kinds also match the corresponding standard
// error (e.g. ErrPathNotFound matches fs.ErrNotExist).
//
//nolint:gochecknoglobals
var (
	// ErrMalformedLocator means the locator string doesn't have the form
	// scheme://<repository>.git/<branch>/<path>
	ErrMalformedLocator = locator.ErrMalformed

	ErrBranchNotFound       error = &kindError{"branch not found", fs.ErrNotExist}
	ErrPathNotFound         error = &kindError{"path not found", fs.ErrNotExist}
	ErrNotADirectory        error = &kindError{"not a directory", nil}
	ErrNotAFile             error = &kindError{"not a file", nil}
	ErrObjectLoad           error = &kindError{"object load failed", nil}
	ErrReadOnlyStream       error = &kindError{"read-only stream", fs.ErrPermission}
	ErrUnsupportedOperation error = &kindError{"unsupported operation", errors.ErrUnsupported}
)

type kindError struct {
	msg string
	std error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool {
	return e.std != nil && target == e.std
}

// pathErr builds the *fs.PathError for a failed operation, wrapping kind and,
// when not nil, the underlying cause
func pathErr(op, name string, kind, cause error) error {
	err := kind
	if cause != nil {
		err = fmt.Errorf("%w: %w", kind, cause)
	}

	return &fs.PathError{Op: op, Path: name, Err: err}
}

// openErrKind classifies an error returned while opening a repository
func openErrKind(err error) error {
	switch {
	case errors.Is(err, store.ErrRefNotFound):
		return ErrBranchNotFound
	case errors.Is(err, errors.ErrUnsupported):
		return ErrUnsupportedOperation
	default:
		return ErrObjectLoad
	}
}
