package local

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"viwoodsync/internal/fs"
)

// appFs is swapped for a memory filesystem in tests.
var appFs = afero.NewOsFs()

// Adapter implements fs.Mirror on a local directory.
type Adapter struct {
	rootDir string
}

// NewAdapter creates a mirror rooted at rootDir.
func NewAdapter(rootDir string) *Adapter {
	absDir, err := filepath.Abs(rootDir)
	if err != nil {
		absDir = rootDir
	}
	return &Adapter{rootDir: absDir}
}

// Root returns the mirror's root directory.
func (a *Adapter) Root() string {
	return a.rootDir
}

// toSysPath converts a "/"-separated relative path to a system path.
// "docs/file.note" -> "/data/docs/file.note" (or the Windows form).
func (a *Adapter) toSysPath(relPath string) string {
	return filepath.Join(a.rootDir, filepath.FromSlash(relPath))
}

// EnsureDir creates relPath and any missing parents.
func (a *Adapter) EnsureDir(relPath string) error {
	return appFs.MkdirAll(a.toSysPath(relPath), 0755)
}

// WriteStream saves stream to relPath and returns the content's MD5 and
// byte count. Data lands in a temp file first and is renamed into place
// once complete, so an interrupted transfer never leaves a truncated
// file at the destination.
func (a *Adapter) WriteStream(relPath string, stream io.Reader, modTime time.Time) (string, int64, error) {
	fullPath := a.toSysPath(relPath)

	// 1. Make sure the parent directory exists.
	dir := filepath.Dir(fullPath)
	if err := appFs.MkdirAll(dir, 0755); err != nil {
		return "", 0, fmt.Errorf("create dir: %w", err)
	}

	// 2. Stage into a temp file next to the destination.
	tmp, err := afero.TempFile(appFs, dir, ".viwoodsync-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	// 3. Copy the stream, hashing as we go.
	h := md5.New()
	n, err := io.Copy(io.MultiWriter(tmp, h), stream)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		appFs.Remove(tmpPath)
		return "", 0, fmt.Errorf("write %s: %w", relPath, err)
	}

	// 4. Move into place.
	if err := appFs.Rename(tmpPath, fullPath); err != nil {
		appFs.Remove(tmpPath)
		return "", 0, fmt.Errorf("rename into place: %w", err)
	}

	// 5. Restore the modification time reported by the tablet.
	if !modTime.IsZero() {
		if err := appFs.Chtimes(fullPath, time.Now(), modTime); err != nil {
			slog.Warn("cannot set file time", "path", relPath, "err", err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// Stat reports a single entry's state.
func (a *Adapter) Stat(relPath string) (*fs.FileMeta, error) {
	info, err := appFs.Stat(a.toSysPath(relPath))
	if err != nil {
		return nil, err
	}
	return &fs.FileMeta{
		RelPath: relPath,
		Name:    info.Name(),
		Size:    info.Size(),
		ModTime: info.ModTime(),
		IsDir:   info.IsDir(),
	}, nil
}

// Remove deletes a file from the mirror.
func (a *Adapter) Remove(relPath string) error {
	return appFs.Remove(a.toSysPath(relPath))
}
