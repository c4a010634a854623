package gitstream

import (
	"encoding/json"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticMetadata(t *testing.T) {
	m := StaticMetadata()

	assert.Equal(t, [13]int64{0, 0, 33206, 0, 0, 0, 0, 0, 0, 0, 0, -1, -1}, m.Indexed())

	named := m.Named()
	assert.Len(t, named, 13)
	assert.Equal(t, int64(0o100666), named["mode"])
	assert.Equal(t, int64(-1), named["blksize"])
	assert.Equal(t, int64(-1), named["blocks"])
	assert.Equal(t, int64(0), named["size"])
	assert.Equal(t, int64(0), named["mtime"])

	rec := m.Record()
	assert.Len(t, rec, 26)
	assert.Equal(t, int64(33206), rec["2"])
	assert.Equal(t, int64(-1), rec["11"])
	assert.Equal(t, int64(-1), rec["12"])
	assert.Equal(t, rec["mode"], rec["2"])

	assert.Equal(t, fs.FileMode(0o666), m.FileMode())
	assert.True(t, m.FileMode().IsRegular())
}

func TestMetadata_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(StaticMetadata())
	require.NoError(t, err)

	out := map[string]int64{}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, StaticMetadata().Record(), out)
}

func TestMetadata_FileMode(t *testing.T) {
	m := Metadata{Mode: 0o040755}
	assert.Equal(t, fs.ModeDir|0o755, m.FileMode())

	m = Metadata{Mode: 0o100444, Mtime: 1717077843}
	assert.Equal(t, fs.FileMode(0o444), m.FileMode())
	assert.Equal(t, int64(1717077843), m.ModTime().Unix())
}
