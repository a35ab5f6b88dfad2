package sync

import (
	"viwoodsync/internal/database"
	"viwoodsync/internal/fs"
)

// decide determines whether a remote file needs downloading, given the
// cache record from the previous run. A file is current only when a
// record exists and both the listed size and modification time match
// it; anything else downloads. The tablet reports modification times in
// milliseconds, and records store them in the same unit, so the
// comparison is exact.
func decide(remote *fs.FileMeta, rec *database.SyncRecord) Action {
	// 1. Directories are never downloaded.
	if remote.IsDir {
		return ActionSkip
	}

	// 2. Never seen before.
	if rec == nil {
		return ActionDownload
	}

	// 3. Size or mtime moved since the last sync.
	if remote.Size != rec.FileSize {
		return ActionDownload
	}
	if remote.ModTime.UnixMilli() != rec.ModTime {
		return ActionDownload
	}

	return ActionSkip
}
