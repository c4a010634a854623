package gitstream

import (
	"github.com/hairyhenderson/go-gitstream/locator"
	"github.com/hairyhenderson/go-gitstream/store"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	locatorKey    = attribute.Key("locator")
	schemeKey     = attribute.Key("locator.scheme")
	repositoryKey = attribute.Key("locator.repository")
	branchKey     = attribute.Key("locator.branch")
	pathKey       = attribute.Key("locator.path")

	nodeKindKey  = attribute.Key("node.kind")
	dirEntryKey  = attribute.Key("dir.entry")
	sizeKey      = attribute.Key("file.size")
	bytesReadKey = attribute.Key("file.bytes_read")
)

// The locator string as given by the caller, before parsing.
//
// Type: string
// Required: Yes
// Examples: "git:///srv/repo.git/main/src/app.js"
func RawLocator(s string) attribute.KeyValue {
	return locatorKey.String(s)
}

// LocatorAttributes returns the parsed components of a locator.
//
// Keys: locator.scheme, locator.repository, locator.branch, locator.path
func LocatorAttributes(loc locator.Locator) []attribute.KeyValue {
	return []attribute.KeyValue{
		schemeKey.String(loc.Scheme),
		repositoryKey.String(loc.Repository),
		branchKey.String(loc.Branch),
		pathKey.String(loc.Path),
	}
}

// The kind of object a locator resolved to.
//
// Type: string
// Required: No
// Examples: "tree", "blob"
func NodeKind(k store.Kind) attribute.KeyValue {
	return nodeKindKey.String(k.String())
}

// A path yielded by a directory cursor.
//
// Type: string
// Required: No
// Examples: "src/lib/util.js"
func DirEntry(name string) attribute.KeyValue {
	return dirEntryKey.String(name)
}

// The size of a file's content.
//
// Type: int64
// Required: No
// Examples: 1024, 0
func FileSize(n int64) attribute.KeyValue {
	return sizeKey.Int64(n)
}

// The number of bytes read in a single read operation.
//
// Type: int
// Required: No
// Examples: 1024, 0
func FileBytesRead(n int) attribute.KeyValue {
	return bytesReadKey.Int(n)
}

// recordError records the given error on the span, and returns it. It does not
// set the span's status to error.
func recordError(span trace.Span, err error) error {
	span.RecordError(err)

	return err
}
