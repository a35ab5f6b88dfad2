package database

import "time"

// SyncRecord is the snapshot of a file as of its last successful download.
// Serialized to JSON when stored.
type SyncRecord struct {
	// Relative path under the mirror root, "/" separated, e.g.
	// "Paper/Papers/report.note". Also the database key; stored
	// redundantly so a record round-trips on its own.
	RelPath string `json:"rel_path"`

	// Tablet-side identifier of the note, needed to package the file
	// again on the next download.
	NoteID string `json:"note_id"`

	// Size in bytes as reported by the tablet listing at download time.
	FileSize int64 `json:"file_size"`

	// Modification time as reported by the tablet listing at download
	// time (Unix milliseconds, the tablet's unit).
	ModTime int64 `json:"mod_time"`

	// MD5 of the mirrored local file, computed while writing it.
	Checksum string `json:"checksum"`

	// When the download completed (Unix seconds).
	LastSync int64 `json:"last_sync"`
}

// ModTimeAsTime converts the stored millisecond timestamp to a time.Time.
func (r *SyncRecord) ModTimeAsTime() time.Time {
	return time.UnixMilli(r.ModTime)
}
