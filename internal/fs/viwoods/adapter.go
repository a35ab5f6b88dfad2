package viwoods

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"viwoodsync/internal/fs"
)

const (
	// Root folders are listed under a synthetic app/folder pair.
	rootAppType    = "root"
	rootFolderName = "Home"
)

// Adapter implements fs.Remote on top of the tablet client.
type Adapter struct {
	client *Client
}

// NewAdapter wraps a Client.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

// Roots lists the tablet's root folders (Paper, Daily, ...).
func (a *Adapter) Roots(ctx context.Context) ([]*fs.FileMeta, error) {
	entries, err := a.client.ListFolder(ctx, rootAppType, rootFolderName, "")
	if err != nil {
		return nil, fmt.Errorf("list root folders: %w", err)
	}

	metas := make([]*fs.FileMeta, 0, len(entries))
	for _, e := range entries {
		metas = append(metas, &fs.FileMeta{
			RelPath: e.FileName,
			Name:    e.FileName,
			IsDir:   true,
			AppType: e.AppType,
			// NoteID stays empty: the service lists a root folder's
			// children by name with no folderId.
		})
	}
	return metas, nil
}

// ResolveFolder walks folderPath ("Paper/Papers/Unclassified Notes")
// down from the roots and returns the folder's descriptor.
func (a *Adapter) ResolveFolder(ctx context.Context, folderPath string) (*fs.FileMeta, error) {
	clean := strings.Trim(path.Clean(folderPath), "/")
	if clean == "" || clean == "." {
		return nil, fmt.Errorf("invalid folder path: %q", folderPath)
	}
	parts := strings.Split(clean, "/")

	roots, err := a.Roots(ctx)
	if err != nil {
		return nil, err
	}

	var cur *fs.FileMeta
	for _, r := range roots {
		if r.Name == parts[0] {
			cur = r
			break
		}
	}
	if cur == nil {
		return nil, fmt.Errorf("root folder not found: %s", parts[0])
	}

	// Descend one listing at a time, matching folder names.
	for _, name := range parts[1:] {
		entries, err := a.client.ListFolder(ctx, cur.AppType, cur.Name, cur.NoteID)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", cur.RelPath, err)
		}

		var next *fs.FileMeta
		for _, e := range entries {
			if e.IsFolder && e.FileName == name {
				next = a.childMeta(cur, e)
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("folder not found: %s (under %s)", name, cur.RelPath)
		}
		cur = next
	}

	return cur, nil
}

// Walk enumerates folder's subtree depth-first. fn sees every entry,
// directories before their contents. The walk holds only one listing in
// memory per level, so large tablets don't balloon the process.
func (a *Adapter) Walk(ctx context.Context, folder *fs.FileMeta, fn fs.WalkFunc) error {
	entries, err := a.client.ListFolder(ctx, folder.AppType, folder.Name, folder.NoteID)
	if err != nil {
		return fmt.Errorf("list %s: %w", folder.RelPath, err)
	}

	for _, e := range entries {
		meta := a.childMeta(folder, e)
		if err := fn(meta); err != nil {
			return err
		}
		if meta.IsDir {
			if err := a.Walk(ctx, meta, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// Fetch retrieves a file's content: packageFile stages the note on the
// tablet, then download streams it back.
func (a *Adapter) Fetch(ctx context.Context, file *fs.FileMeta) (io.ReadCloser, error) {
	if file.IsDir {
		return nil, fmt.Errorf("not a file: %s", file.RelPath)
	}

	pkgPath, err := a.client.PackageFile(ctx, file.AppType, file.NoteID, file.ParentID, file.Name)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", file.RelPath, err)
	}

	rc, err := a.client.Download(ctx, pkgPath)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", file.RelPath, err)
	}
	return rc, nil
}

// childMeta builds a child descriptor under parent. File names get the
// .note suffix the packaging endpoint expects.
func (a *Adapter) childMeta(parent *fs.FileMeta, e Entry) *fs.FileMeta {
	name := e.FileName
	if !e.IsFolder {
		name = NoteFileName(name)
	}
	return &fs.FileMeta{
		RelPath:  path.Join(parent.RelPath, name),
		Name:     name,
		Size:     e.FileSize,
		ModTime:  time.UnixMilli(e.UpdateTime),
		IsDir:    e.IsFolder,
		NoteID:   e.NoteID,
		ParentID: parent.NoteID,
		AppType:  parent.AppType,
	}
}

// NoteFileName appends the .note suffix when missing.
func NoteFileName(name string) string {
	if strings.HasSuffix(name, ".note") {
		return name
	}
	return name + ".note"
}
