package gitstream

import (
	"encoding/json"
	"io/fs"
	"strconv"
	"time"
)

// staticMode is a world-readable regular file (0100666)
const staticMode = 0o100666

//nolint:gochecknoglobals
var metadataNames = [13]string{
	"dev", "ino", "mode", "nlink", "uid", "gid", "rdev",
	"size", "atime", "mtime", "ctime", "blksize", "blocks",
}

// Metadata is a stat record. Streams don't derive metadata from the objects
// they read: every stream reports StaticMetadata, so the size and timestamps
// are never meaningful.
type Metadata struct {
	Dev     int64
	Ino     int64
	Mode    int64
	Nlink   int64
	UID     int64
	GID     int64
	Rdev    int64
	Size    int64
	Atime   int64
	Mtime   int64
	Ctime   int64
	Blksize int64
	Blocks  int64
}

// StaticMetadata returns the record reported for every stream and locator: a
// world-readable regular file with zero size and timestamps, and unknown (-1)
// block size and block count.
func StaticMetadata() Metadata {
	return Metadata{Mode: staticMode, Blksize: -1, Blocks: -1}
}

// Indexed returns the record's fields in stat(2) order: dev, ino, mode, nlink,
// uid, gid, rdev, size, atime, mtime, ctime, blksize, blocks.
func (m Metadata) Indexed() [13]int64 {
	return [13]int64{
		m.Dev, m.Ino, m.Mode, m.Nlink, m.UID, m.GID, m.Rdev,
		m.Size, m.Atime, m.Mtime, m.Ctime, m.Blksize, m.Blocks,
	}
}

// Named returns the record's fields keyed by name ("dev", "ino", "mode", ...).
func (m Metadata) Named() map[string]int64 {
	out := make(map[string]int64, len(metadataNames))
	for i, v := range m.Indexed() {
		out[metadataNames[i]] = v
	}

	return out
}

// Record returns the numeric ("0" through "12") and named forms together, for
// consumers that expect either.
func (m Metadata) Record() map[string]int64 {
	out := m.Named()
	for i, v := range m.Indexed() {
		out[strconv.Itoa(i)] = v
	}

	return out
}

// MarshalJSON encodes the combined Record form.
func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Record())
}

// FileMode returns the permission and type bits of m.Mode as an fs.FileMode.
func (m Metadata) FileMode() fs.FileMode {
	mode := fs.FileMode(m.Mode & 0o777)
	if m.Mode&0o170000 == 0o040000 {
		mode |= fs.ModeDir
	}

	return mode
}

// ModTime returns m.Mtime as a time.Time.
func (m Metadata) ModTime() time.Time {
	return time.Unix(m.Mtime, 0).UTC()
}
