package sync

// Action is the outcome of checking a remote file against its cache record.
type Action int

const (
	ActionSkip     Action = iota // cached copy is current
	ActionDownload               // no record, or size/mtime changed
)

func (a Action) String() string {
	if a == ActionDownload {
		return "download"
	}
	return "skip"
}

// Stats counts the work of one run.
type Stats struct {
	Folders    int   // subfolders found while walking
	Downloaded int   // files fetched this run
	Skipped    int   // files already current
	Failed     int   // files whose fetch or write failed
	WalkErrors int   // folders abandoned because a listing failed
	Bytes      int64 // bytes written to the mirror
}
