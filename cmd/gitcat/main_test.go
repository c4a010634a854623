package main

import (
	"bytes"
	"io/fs"
	"log/slog"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/hairyhenderson/go-gitstream"
	"github.com/hairyhenderson/go-gitstream/gitstore"
	"github.com/hairyhenderson/go-gitstream/internal/tests"
	"github.com/hairyhenderson/go-gitstream/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDriver(t *testing.T) *gitstream.Driver {
	t.Helper()

	bfs, _ := tests.SetupRepos(t)

	return gitstream.New(
		gitstream.WithProvider(store.NewProvider(gitstore.FilesystemOpener(bfs), "git")),
		gitstream.WithLogger(slog.New(slog.DiscardHandler)),
	)
}

func TestParseFlags(t *testing.T) {
	o, args := parseFlags([]string{"gitcat", "-base", "git://repo.git/main/", "-tracing", "cat", "README.md"})
	assert.Equal(t, "git://repo.git/main/", o.base)
	assert.True(t, o.tracing)
	assert.True(t, o.isSet("tracing"))
	assert.False(t, o.isSet("log-level"))
	assert.Equal(t, []string{"cat", "README.md"}, args)
}

func TestLocate(t *testing.T) {
	testdata := []struct {
		base, name, expected string
	}{
		{"", "git://repo.git/main/a.txt", "git://repo.git/main/a.txt"},
		{"git://repo.git/main/", ".", "git://repo.git/main/"},
		{"git://repo.git/main/", "", "git://repo.git/main/"},
		{"git://repo.git/main/", "a.txt", "git://repo.git/main/a.txt"},
		{"git://repo.git/main/", "/a.txt", "git://repo.git/main/a.txt"},
		{"git://repo.git/main/src", "lib/util.js", "git://repo.git/main/src/lib/util.js"},
	}

	for _, d := range testdata {
		assert.Equal(t, d.expected, locate(d.base, d.name))
	}
}

func TestCmd(t *testing.T) {
	ctx := t.Context()
	d := newTestDriver(t)

	w := &bytes.Buffer{}
	err := cmd(ctx, d, "", []string{"nope"}, w)
	require.EqualError(t, err, "unknown command: nope")

	err = cmd(ctx, d, "", []string{"cat"}, w)
	require.EqualError(t, err, "no files specified")

	err = cmd(ctx, d, "", []string{"ls"}, w)
	require.EqualError(t, err, "no locator specified")

	err = cmd(ctx, d, "", []string{"stat", "-bogus"}, w)
	require.Error(t, err)

	assert.Empty(t, w.String())
}

func TestFiles(t *testing.T) {
	ctx := t.Context()
	d := newTestDriver(t)

	w := &bytes.Buffer{}
	err := cmd(ctx, d, "git://repo.git/main/", []string{"files"}, w)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(tests.Files, "\n")+"\n", w.String())

	w.Reset()
	err = cmd(ctx, d, "git://repo.git/develop/", []string{"files", "src"}, w)
	require.NoError(t, err)
	assert.Equal(t, "app.js\nlib/util.js\n", w.String())

	w.Reset()
	err = files(ctx, d, "git://repo.git/main/README.md", w)
	require.ErrorIs(t, err, gitstream.ErrNotADirectory)
	assert.Empty(t, w.String())

	err = files(ctx, d, "git://repo.git/nope/", w)
	require.ErrorIs(t, err, fs.ErrNotExist)
}

func TestLs(t *testing.T) {
	fsys := fstest.MapFS{}

	w := &bytes.Buffer{}

	des, err := fs.ReadDir(fsys, ".")
	require.NoError(t, err)

	err = ls(des, w)
	require.NoError(t, err)
	assert.Equal(t, "", w.String())

	mtime := time.Unix(0, 0).UTC()

	fsys = fstest.MapFS{
		"a": {ModTime: mtime, Mode: 0o444, Data: []byte("a")},
		"b": {
			ModTime: mtime.AddDate(1, 1, 1).Add(12 * time.Hour),
			Mode:    0o555, Data: bytes.Repeat([]byte("b"), 512),
		},
		"c":     {ModTime: mtime, Mode: 0o444, Data: bytes.Repeat([]byte("c"), 2560)},
		"dir":   {ModTime: mtime, Mode: 0o555 | fs.ModeDir},
		"dir/a": {ModTime: mtime, Mode: 0o444, Data: []byte("aa")},
	}

	des, err = fs.ReadDir(fsys, ".")
	require.NoError(t, err)

	err = ls(des, w)
	require.NoError(t, err)
	assert.Equal(t, ` -r--r--r--     1B 1970-01-01 00:00 a
 -r-xr-xr-x   512B 1971-02-02 12:00 b
 -r--r--r-- 2.5KiB 1970-01-01 00:00 c
 dr-xr-xr-x        1970-01-01 00:00 dir
`, w.String())
}

func TestFsLs(t *testing.T) {
	ctx := t.Context()
	d := newTestDriver(t)

	w := &bytes.Buffer{}
	err := cmd(ctx, d, "git://repo.git/main/", []string{"ls", "src"}, w)
	require.NoError(t, err)
	assert.Equal(t, ` -r--r--r-- 3B 0001-01-01 00:00 app.js
 dr-xr-xr-x    0001-01-01 00:00 lib
`, w.String())

	w.Reset()
	err = cmd(ctx, d, "", []string{"ls", "git://repo.git/main/src/lib"}, w)
	require.NoError(t, err)
	assert.Equal(t, " -r--r--r-- 10B 0001-01-01 00:00 util.js\n", w.String())

	w.Reset()
	err = cmd(ctx, d, "git://repo.git/main/", []string{"ls", "missing"}, w)
	require.ErrorIs(t, err, fs.ErrNotExist)

	err = cmd(ctx, d, "", []string{"ls", "not a locator"}, w)
	require.ErrorIs(t, err, gitstream.ErrMalformedLocator)
}

func TestCat(t *testing.T) {
	ctx := t.Context()
	d := newTestDriver(t)

	w := &bytes.Buffer{}
	err := cmd(ctx, d, "git://repo.git/develop/", []string{"cat", "README.md", "CHANGELOG.md"}, w)
	require.NoError(t, err)
	assert.Equal(t, tests.Contents["README.md"]+tests.Contents["CHANGELOG.md"], w.String())

	w.Reset()
	err = cat(ctx, d, []string{"git://checkout.git/v1/bin/run.sh"}, w)
	require.NoError(t, err)
	assert.Equal(t, tests.Contents["bin/run.sh"], w.String())

	w.Reset()
	err = cat(ctx, d, []string{"git://repo.git/main/src"}, w)
	require.ErrorIs(t, err, gitstream.ErrNotAFile)
	assert.Empty(t, w.String())
}

func TestStat(t *testing.T) {
	d := newTestDriver(t)

	w := &bytes.Buffer{}
	err := stat(d, "git://repo.git/main/a.txt", false, w)
	require.NoError(t, err)
	assert.Equal(t, `git://repo.git/main/a.txt:
	dev:     0
	ino:     0
	mode:    0100666 (-rw-rw-rw-)
	nlink:   0
	uid:     0
	gid:     0
	rdev:    0
	size:    0
	atime:   0
	mtime:   0
	ctime:   0
	blksize: -1
	blocks:  -1
	modtime: 1970-01-01T00:00:00Z
`, w.String())

	w.Reset()
	err = cmd(t.Context(), d, "git://nowhere.git/main/", []string{"stat", "-json", "missing.txt"}, w)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"0": 0, "1": 0, "2": 33206, "3": 0, "4": 0, "5": 0, "6": 0,
		"7": 0, "8": 0, "9": 0, "10": 0, "11": -1, "12": -1,
		"dev": 0, "ino": 0, "mode": 33206, "nlink": 0, "uid": 0, "gid": 0,
		"rdev": 0, "size": 0, "atime": 0, "mtime": 0, "ctime": 0,
		"blksize": -1, "blocks": -1
	}`, w.String())

	err = stat(d, "nope", false, w)
	require.ErrorIs(t, err, fs.ErrInvalid)
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0B", formatSize(0))
	assert.Equal(t, "1024B", formatSize(1024))
	assert.Equal(t, "1.5KiB", formatSize(1536))
	assert.Equal(t, "2.0MiB", formatSize(2*1024*1024))
	assert.Equal(t, "3.0GiB", formatSize(3*1024*1024*1024))
}
