package fs

import (
	"context"
	"io"
	"time"
)

// FileMeta describes one entry of the tablet's tree as of the current
// listing. Built fresh on every walk, never persisted.
type FileMeta struct {
	RelPath  string    // path under the mirror root, "/" separated
	Name     string    // entry name; files always carry the .note suffix
	Size     int64     // size in bytes from the listing
	ModTime  time.Time // listing updateTime (millisecond precision)
	IsDir    bool
	NoteID   string // tablet id of the entry; a folder's id lists its children ("" for roots)
	ParentID string // id of the containing folder ("" directly under a root)
	AppType  string // tablet app owning the subtree, e.g. "APP_PAPER"
}

// WalkFunc is called once per entry during a walk, directories included.
// Returning an error aborts the walk and surfaces the error to the caller.
type WalkFunc func(meta *FileMeta) error

// Remote is the read side of the tablet's file service.
type Remote interface {
	// Roots lists the tablet's root folders.
	Roots(ctx context.Context) ([]*FileMeta, error)

	// ResolveFolder walks a "/"-separated folder path like
	// "Paper/Papers/Unclassified Notes" down from the roots and returns
	// the folder's descriptor.
	ResolveFolder(ctx context.Context, folderPath string) (*FileMeta, error)

	// Walk enumerates folder's subtree depth-first, lazily: one listing
	// request is in flight at a time and entries are delivered as they
	// are seen. A listing failure aborts the walk below that folder.
	Walk(ctx context.Context, folder *FileMeta, fn WalkFunc) error

	// Fetch opens the content stream for a file entry. The caller closes it.
	Fetch(ctx context.Context, file *FileMeta) (io.ReadCloser, error)
}

// Mirror is the write side: the local directory tree shadowing the tablet.
type Mirror interface {
	// Root returns the absolute mirror directory (for logging).
	Root() string

	// EnsureDir creates relPath (and parents) under the root.
	EnsureDir(relPath string) error

	// WriteStream stores stream at relPath, creating parent directories
	// and restoring modTime. The data lands under a temporary name and is
	// renamed into place only once fully written, so a failed transfer
	// never leaves a truncated file behind. Returns the MD5 of the
	// written bytes and their count.
	WriteStream(relPath string, stream io.Reader, modTime time.Time) (string, int64, error)

	// Stat reports the mirrored file, or an os.IsNotExist error.
	Stat(relPath string) (*FileMeta, error)

	// Remove deletes the mirrored file if present.
	Remove(relPath string) error
}
