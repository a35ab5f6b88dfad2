package local

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read(p []byte) (int, error) {
	return 0, errors.New("stream broke")
}

func TestWriteStream(t *testing.T) {
	appFs = afero.NewMemMapFs()
	a := NewAdapter("/mirror")

	content := []byte("note archive bytes")
	mt := time.UnixMilli(1755432000000)

	sum, n, err := a.WriteStream("Paper/intro.note", bytes.NewReader(content), mt)
	require.NoError(t, err)
	assert.Equal(t, int64(len(content)), n)

	want := md5.Sum(content)
	assert.Equal(t, hex.EncodeToString(want[:]), sum)

	data, err := afero.ReadFile(appFs, "/mirror/Paper/intro.note")
	require.NoError(t, err)
	assert.Equal(t, content, data)

	info, err := appFs.Stat("/mirror/Paper/intro.note")
	require.NoError(t, err)
	assert.Equal(t, mt, info.ModTime())

	// No staging files left behind.
	entries, err := afero.ReadDir(appFs, "/mirror/Paper")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteStreamOverwrites(t *testing.T) {
	appFs = afero.NewMemMapFs()
	a := NewAdapter("/mirror")

	_, _, err := a.WriteStream("a.note", bytes.NewReader([]byte("old old old")), time.Time{})
	require.NoError(t, err)
	_, n, err := a.WriteStream("a.note", bytes.NewReader([]byte("new")), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	data, err := afero.ReadFile(appFs, "/mirror/a.note")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

func TestWriteStreamFailureLeavesNothing(t *testing.T) {
	appFs = afero.NewMemMapFs()
	a := NewAdapter("/mirror")

	_, _, err := a.WriteStream("Paper/broken.note", failingReader{}, time.Time{})
	require.Error(t, err)

	exists, err := afero.Exists(appFs, "/mirror/Paper/broken.note")
	require.NoError(t, err)
	assert.False(t, exists)

	// The staging file is cleaned up too.
	entries, err := afero.ReadDir(appFs, "/mirror/Paper")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEnsureDir(t *testing.T) {
	appFs = afero.NewMemMapFs()
	a := NewAdapter("/mirror")

	require.NoError(t, a.EnsureDir("Paper/Papers/Unclassified"))

	info, err := appFs.Stat("/mirror/Paper/Papers/Unclassified")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Creating it again is fine.
	assert.NoError(t, a.EnsureDir("Paper/Papers/Unclassified"))
}

func TestStat(t *testing.T) {
	appFs = afero.NewMemMapFs()
	a := NewAdapter("/mirror")

	mt := time.UnixMilli(1755432000000)
	_, _, err := a.WriteStream("Daily/day.note", bytes.NewReader([]byte("12345")), mt)
	require.NoError(t, err)

	meta, err := a.Stat("Daily/day.note")
	require.NoError(t, err)
	assert.Equal(t, "Daily/day.note", meta.RelPath)
	assert.Equal(t, "day.note", meta.Name)
	assert.Equal(t, int64(5), meta.Size)
	assert.Equal(t, mt, meta.ModTime)
	assert.False(t, meta.IsDir)

	_, err = a.Stat("Daily/other.note")
	assert.True(t, os.IsNotExist(err))
}

func TestRemove(t *testing.T) {
	appFs = afero.NewMemMapFs()
	a := NewAdapter("/mirror")

	_, _, err := a.WriteStream("Memo/m.note", bytes.NewReader([]byte("x")), time.Time{})
	require.NoError(t, err)
	require.NoError(t, a.Remove("Memo/m.note"))

	exists, err := afero.Exists(appFs, "/mirror/Memo/m.note")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRootIsAbsolute(t *testing.T) {
	a := NewAdapter("/mirror")
	assert.Equal(t, "/mirror", a.Root())
}
