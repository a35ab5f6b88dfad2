package sync

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"viwoodsync/internal/database"
	"viwoodsync/internal/fs"
)

// EngineOptions configures a sync run.
type EngineOptions struct {
	Remote  fs.Remote
	Mirror  fs.Mirror
	StateDB *database.DB

	// Folder targets a single folder path instead of the default set.
	Folder string
	// All mirrors every root folder on the tablet.
	All bool
	// DefaultFolders are the roots synced when neither Folder nor All is set.
	DefaultFolders []string

	Clock clockwork.Clock
}

type Engine struct {
	opts *EngineOptions
}

func NewEngine(opts *EngineOptions) *Engine {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Engine{opts: opts}
}

// Run executes one sync pass and reports what it did. Files are
// processed one at a time: a failed download is logged and counted, and
// the run moves on to the next file. Cache store errors abort the run.
func (e *Engine) Run(ctx context.Context) (*Stats, error) {
	start := e.opts.Clock.Now()
	stats := &Stats{}

	folders, err := e.targetFolders(ctx)
	if err != nil {
		return stats, err
	}

	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		slog.Info("syncing folder", "folder", folder.RelPath)

		// Empty folders still appear in the mirror.
		if err := e.opts.Mirror.EnsureDir(folder.RelPath); err != nil {
			return stats, fmt.Errorf("create dir %s: %w", folder.RelPath, err)
		}
		if err := e.syncFolder(ctx, folder, stats); err != nil {
			return stats, err
		}
	}

	slog.Info("sync finished",
		"folders", stats.Folders,
		"downloaded", stats.Downloaded,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"elapsed", e.opts.Clock.Since(start).Round(time.Millisecond),
	)
	return stats, nil
}

// targetFolders resolves which root folders this run covers.
func (e *Engine) targetFolders(ctx context.Context) ([]*fs.FileMeta, error) {
	if e.opts.Folder != "" {
		folder, err := e.opts.Remote.ResolveFolder(ctx, e.opts.Folder)
		if err != nil {
			return nil, fmt.Errorf("resolve folder: %w", err)
		}
		return []*fs.FileMeta{folder}, nil
	}

	roots, err := e.opts.Remote.Roots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tablet folders: %w", err)
	}
	if e.opts.All {
		return roots, nil
	}

	wanted := make(map[string]bool, len(e.opts.DefaultFolders))
	for _, name := range e.opts.DefaultFolders {
		wanted[name] = true
	}

	// Keep the tablet's own ordering.
	var folders []*fs.FileMeta
	for _, r := range roots {
		if wanted[r.Name] {
			folders = append(folders, r)
			delete(wanted, r.Name)
		}
	}
	for name := range wanted {
		slog.Warn("folder not present on tablet", "folder", name)
	}
	if len(folders) == 0 {
		return nil, fmt.Errorf("none of the folders %v exist on the tablet", e.opts.DefaultFolders)
	}
	return folders, nil
}

// syncFolder walks one folder tree and processes every file in it.
// A listing failure inside the tree abandons this folder only; the
// run continues with the next one. Cache store failures abort the walk.
func (e *Engine) syncFolder(ctx context.Context, folder *fs.FileMeta, stats *Stats) error {
	var fatal error

	err := e.opts.Remote.Walk(ctx, folder, func(meta *fs.FileMeta) error {
		if cerr := ctx.Err(); cerr != nil {
			fatal = cerr
			return cerr
		}

		if meta.IsDir {
			stats.Folders++
			if derr := e.opts.Mirror.EnsureDir(meta.RelPath); derr != nil {
				fatal = fmt.Errorf("create dir %s: %w", meta.RelPath, derr)
				return fatal
			}
			return nil
		}

		if ferr := e.syncFile(ctx, meta, stats); ferr != nil {
			fatal = ferr
			return ferr
		}
		return nil
	})

	if fatal != nil {
		return fatal
	}
	if err != nil {
		slog.Warn("folder walk failed", "folder", folder.RelPath, "err", err)
		stats.WalkErrors++
	}
	return nil
}

// syncFile brings one file up to date in the mirror.
func (e *Engine) syncFile(ctx context.Context, meta *fs.FileMeta, stats *Stats) error {
	rec, err := e.opts.StateDB.Get(meta.RelPath)
	if err != nil {
		return fmt.Errorf("read cache for %s: %w", meta.RelPath, err)
	}

	if decide(meta, rec) == ActionSkip {
		// Honor the cache only while the mirrored file actually exists.
		if _, serr := e.opts.Mirror.Stat(meta.RelPath); serr == nil {
			slog.Debug("up to date", "path", meta.RelPath)
			stats.Skipped++
			return nil
		}
		slog.Info("local copy missing, downloading again", "path", meta.RelPath)
	}

	sum, n, err := e.download(ctx, meta)
	if err != nil {
		slog.Warn("download failed", "path", meta.RelPath, "err", err)
		stats.Failed++
		return nil
	}

	// FileSize and ModTime record the listing's values, not the
	// package's, so the next run compares like against like.
	rec = &database.SyncRecord{
		RelPath:  meta.RelPath,
		NoteID:   meta.NoteID,
		FileSize: meta.Size,
		ModTime:  meta.ModTime.UnixMilli(),
		Checksum: sum,
		LastSync: e.opts.Clock.Now().Unix(),
	}
	if err := e.opts.StateDB.Put(rec); err != nil {
		return fmt.Errorf("record %s: %w", meta.RelPath, err)
	}

	stats.Downloaded++
	stats.Bytes += n
	slog.Info("downloaded", "path", meta.RelPath, "bytes", n, "md5", sum)
	return nil
}

// download fetches one file into the mirror and returns the content's
// MD5 and byte count. The tablet hands back an empty package for notes
// it cannot export; an empty result is removed from disk and reported
// as a failure.
func (e *Engine) download(ctx context.Context, meta *fs.FileMeta) (string, int64, error) {
	slog.Info("downloading", "path", meta.RelPath, "size", meta.Size)

	stream, err := e.opts.Remote.Fetch(ctx, meta)
	if err != nil {
		return "", 0, err
	}
	defer stream.Close()

	sum, n, err := e.opts.Mirror.WriteStream(meta.RelPath, stream, meta.ModTime)
	if err != nil {
		return "", 0, err
	}
	if n == 0 {
		e.opts.Mirror.Remove(meta.RelPath)
		return "", 0, fmt.Errorf("empty download for %s", meta.RelPath)
	}
	return sum, n, nil
}
