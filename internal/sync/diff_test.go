package sync

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"viwoodsync/internal/database"
	"viwoodsync/internal/fs"
)

func TestDecide(t *testing.T) {
	listed := time.UnixMilli(1755432100123)

	note := &fs.FileMeta{
		RelPath: "Paper/note.note",
		Name:    "note.note",
		Size:    2048,
		ModTime: listed,
	}

	tests := []struct {
		name   string
		remote *fs.FileMeta
		rec    *database.SyncRecord
		exp    Action
	}{
		{
			name:   "NoRecord",
			remote: note,
			rec:    nil,
			exp:    ActionDownload,
		},
		{
			name:   "Unchanged",
			remote: note,
			rec: &database.SyncRecord{
				RelPath:  "Paper/note.note",
				FileSize: 2048,
				ModTime:  listed.UnixMilli(),
			},
			exp: ActionSkip,
		},
		{
			name:   "SizeChanged",
			remote: note,
			rec: &database.SyncRecord{
				RelPath:  "Paper/note.note",
				FileSize: 1024,
				ModTime:  listed.UnixMilli(),
			},
			exp: ActionDownload,
		},
		{
			name:   "ModTimeChanged",
			remote: note,
			rec: &database.SyncRecord{
				RelPath:  "Paper/note.note",
				FileSize: 2048,
				ModTime:  listed.Add(-time.Minute).UnixMilli(),
			},
			exp: ActionDownload,
		},
		{
			name:   "MillisecondDrift",
			remote: note,
			rec: &database.SyncRecord{
				RelPath:  "Paper/note.note",
				FileSize: 2048,
				ModTime:  listed.UnixMilli() + 1,
			},
			exp: ActionDownload,
		},
		{
			name:   "ChecksumIgnored",
			remote: note,
			rec: &database.SyncRecord{
				RelPath:  "Paper/note.note",
				FileSize: 2048,
				ModTime:  listed.UnixMilli(),
				Checksum: "does-not-matter",
			},
			exp: ActionSkip,
		},
		{
			name:   "Directory",
			remote: &fs.FileMeta{RelPath: "Paper/Papers", IsDir: true},
			rec:    nil,
			exp:    ActionSkip,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.exp, decide(test.remote, test.rec))
		})
	}
}
