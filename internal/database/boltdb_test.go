package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempDB(t *testing.T) *DB {
	db, err := NewBoltDB(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetMissing(t *testing.T) {
	db := tempDB(t)

	rec, err := db.Get("Paper/unknown.note")
	assert.NoError(t, err)
	assert.Nil(t, rec)
}

func TestPutGet(t *testing.T) {
	db := tempDB(t)

	in := &SyncRecord{
		RelPath:  "Paper/note.note",
		NoteID:   "n1",
		FileSize: 4096,
		ModTime:  1755432000000,
		Checksum: "9e107d9d372bb6826bd81d3542a419d6",
		LastSync: 1755500000,
	}
	require.NoError(t, db.Put(in))

	out, err := db.Get("Paper/note.note")
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in, out)
}

func TestPutOverwrites(t *testing.T) {
	db := tempDB(t)

	rec := &SyncRecord{RelPath: "Memo/m.note", FileSize: 10, ModTime: 1}
	require.NoError(t, db.Put(rec))

	rec.FileSize = 20
	rec.ModTime = 2
	require.NoError(t, db.Put(rec))

	out, err := db.Get("Memo/m.note")
	require.NoError(t, err)
	assert.Equal(t, int64(20), out.FileSize)
	assert.Equal(t, int64(2), out.ModTime)

	n, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestClear(t *testing.T) {
	db := tempDB(t)

	require.NoError(t, db.Put(&SyncRecord{RelPath: "a.note"}))
	require.NoError(t, db.Put(&SyncRecord{RelPath: "b.note"}))

	n, err := db.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, db.Clear())

	n, err = db.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	rec, err := db.Get("a.note")
	assert.NoError(t, err)
	assert.Nil(t, rec)

	// The bucket survives a clear and accepts new records.
	require.NoError(t, db.Put(&SyncRecord{RelPath: "c.note"}))
	rec, err = db.Get("c.note")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}

func TestReopenKeepsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	db, err := NewBoltDB(path)
	require.NoError(t, err)
	require.NoError(t, db.Put(&SyncRecord{RelPath: "Paper/keep.note", FileSize: 7}))
	require.NoError(t, db.Close())

	db, err = NewBoltDB(path)
	require.NoError(t, err)
	defer db.Close()

	rec, err := db.Get("Paper/keep.note")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(7), rec.FileSize)
}

func TestModTimeAsTime(t *testing.T) {
	rec := &SyncRecord{ModTime: 1755432000123}
	assert.Equal(t, time.UnixMilli(1755432000123), rec.ModTimeAsTime())
}
