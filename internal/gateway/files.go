package gateway

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/panelfs/backend/internal/providers/filesystem"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/vfserr"
)

// ListDirectory returns the children of a directory
func (g *Gateway) ListDirectory(ctx context.Context, userID, logical string) ([]types.FileEntry, error) {
	_, loc, err := g.locate("list", userID, logical, types.IntentRead)
	if err != nil {
		return nil, err
	}

	var entries []types.FileEntry
	err = g.timed(types.OpList, func() error {
		var listErr error
		entries, listErr = g.engine.List(loc)
		return listErr
	})
	return entries, err
}

// GetEntry returns the metadata of a single entry
func (g *Gateway) GetEntry(ctx context.Context, userID, logical string) (types.FileEntry, error) {
	_, loc, err := g.locate("stat", userID, logical, types.IntentRead)
	if err != nil {
		return types.FileEntry{}, err
	}
	return g.engine.Stat(loc)
}

// Details returns the entry with its content type and recursive size
func (g *Gateway) Details(ctx context.Context, userID, logical string) (types.EntryDetails, error) {
	_, loc, err := g.locate("details", userID, logical, types.IntentRead)
	if err != nil {
		return types.EntryDetails{}, err
	}
	return g.engine.Details(loc)
}

// Search finds entries below a directory whose names or relative paths match pattern
func (g *Gateway) Search(ctx context.Context, userID, logical, pattern string, limit int) ([]types.FileEntry, error) {
	_, loc, err := g.locate("search", userID, logical, types.IntentRead)
	if err != nil {
		return nil, err
	}

	var found []types.FileEntry
	err = g.timed(types.OpSearch, func() error {
		var searchErr error
		found, searchErr = g.engine.Search(ctx, loc, pattern, limit)
		return searchErr
	})
	return found, err
}

// ReadFile opens a file for streaming. The caller closes the stream.
func (g *Gateway) ReadFile(ctx context.Context, userID, logical string, disposition types.Disposition) (*filesystem.Stream, error) {
	_, loc, err := g.locate("read", userID, logical, types.IntentRead)
	if err != nil {
		return nil, err
	}

	var stream *filesystem.Stream
	err = g.timed(types.OpRead, func() error {
		var openErr error
		stream, openErr = g.engine.Open(loc, disposition)
		return openErr
	})
	return stream, err
}

// ReadText returns a file's content as text
func (g *Gateway) ReadText(ctx context.Context, userID, logical string) (string, error) {
	_, loc, err := g.locate("read", userID, logical, types.IntentRead)
	if err != nil {
		return "", err
	}

	var text string
	err = g.timed(types.OpRead, func() error {
		var readErr error
		text, readErr = g.engine.ReadText(loc)
		return readErr
	})
	return text, err
}

// WriteFile replaces a file's content
func (g *Gateway) WriteFile(ctx context.Context, userID, logical string, data []byte) error {
	ident, loc, err := g.locate("write", userID, logical, types.IntentWrite)
	if err != nil {
		return err
	}
	return g.track(ident.ID, types.OpWrite, loc.LogicalPath, func(filesystem.ProgressFunc) error {
		return g.engine.Write(loc, data)
	})
}

// Upload stores r as name inside the directory dir
func (g *Gateway) Upload(ctx context.Context, userID, dir, name string, r io.Reader) (types.FileEntry, error) {
	ident, loc, err := g.locate("upload", userID, dir, types.IntentWrite)
	if err != nil {
		return types.FileEntry{}, err
	}

	var entry types.FileEntry
	err = g.track(ident.ID, types.OpUpload, loc.LogicalPath, func(filesystem.ProgressFunc) error {
		var uploadErr error
		entry, uploadErr = g.engine.Upload(loc, name, r)
		return uploadErr
	})
	return entry, err
}

// CreateFolder creates name inside parent
func (g *Gateway) CreateFolder(ctx context.Context, userID, parent, name string) (types.FileEntry, error) {
	ident, loc, err := g.locate("create_folder", userID, parent, types.IntentWrite)
	if err != nil {
		return types.FileEntry{}, err
	}

	var entry types.FileEntry
	err = g.track(ident.ID, types.OpCreateFolder, loc.LogicalPath, func(filesystem.ProgressFunc) error {
		created, createErr := g.engine.CreateFolder(loc, name)
		if createErr != nil {
			return createErr
		}
		entry, createErr = g.engine.Stat(created)
		return createErr
	})
	return entry, err
}

// Rename renames an entry within its parent directory
func (g *Gateway) Rename(ctx context.Context, userID, logical, newName string) (types.FileEntry, error) {
	ident, loc, err := g.locate("rename", userID, logical, types.IntentWrite)
	if err != nil {
		return types.FileEntry{}, err
	}

	target, err := siblingPath("rename", loc.LogicalPath, newName)
	if err != nil {
		return types.FileEntry{}, err
	}
	if _, err := g.authorize("rename", ident, target, types.IntentWrite); err != nil {
		return types.FileEntry{}, err
	}
	if err := g.guard("rename", loc); err != nil {
		return types.FileEntry{}, err
	}

	var entry types.FileEntry
	err = g.track(ident.ID, types.OpRename, loc.LogicalPath, func(filesystem.ProgressFunc) error {
		renamed, renameErr := g.engine.Rename(loc, newName)
		if renameErr != nil {
			return renameErr
		}
		entry, renameErr = g.engine.Stat(renamed)
		return renameErr
	})
	return entry, err
}

// Copy copies src to dst. Both ends are authorized independently.
func (g *Gateway) Copy(ctx context.Context, userID, src, dst string) error {
	ident, srcLoc, err := g.locate("copy", userID, src, types.IntentRead)
	if err != nil {
		return err
	}
	dstLoc, err := g.authorize("copy", ident, dst, types.IntentWrite)
	if err != nil {
		return err
	}
	return g.track(ident.ID, types.OpCopy, srcLoc.LogicalPath, func(progress filesystem.ProgressFunc) error {
		return g.engine.Copy(srcLoc, dstLoc, progress)
	})
}

// Move relocates src to dst. Both ends are authorized independently.
func (g *Gateway) Move(ctx context.Context, userID, src, dst string) error {
	ident, srcLoc, err := g.locate("move", userID, src, types.IntentWrite)
	if err != nil {
		return err
	}
	dstLoc, err := g.authorize("move", ident, dst, types.IntentWrite)
	if err != nil {
		return err
	}
	if err := g.guard("move", srcLoc); err != nil {
		return err
	}
	return g.track(ident.ID, types.OpMove, srcLoc.LogicalPath, func(progress filesystem.ProgressFunc) error {
		return g.engine.Move(srcLoc, dstLoc, progress)
	})
}

// Archive zips logical into a sibling archive, or the named targets inside
// logical into one archive there. It returns the archive's logical path.
func (g *Gateway) Archive(ctx context.Context, userID, logical string, targets []string) (string, error) {
	ident, loc, err := g.locate("archive", userID, logical, types.IntentRead)
	if err != nil {
		return "", err
	}

	// the archive lands beside a single source, so its parent must be writable
	outDir := loc.LogicalPath
	if len(targets) == 0 {
		outDir = parentLogical(loc.LogicalPath)
	}
	if _, err := g.authorize("archive", ident, outDir, types.IntentWrite); err != nil {
		return "", err
	}

	var out types.ResolvedLocation
	err = g.track(ident.ID, types.OpArchive, loc.LogicalPath, func(progress filesystem.ProgressFunc) error {
		var archiveErr error
		out, archiveErr = g.engine.Archive(loc, targets, progress)
		return archiveErr
	})
	if err != nil {
		return "", err
	}
	return out.LogicalPath, nil
}

// Extract unpacks a zip into a sibling directory and returns its logical path
func (g *Gateway) Extract(ctx context.Context, userID, logical string) (string, error) {
	ident, loc, err := g.locate("extract", userID, logical, types.IntentRead)
	if err != nil {
		return "", err
	}

	destLogical, ok := stripZip(loc.LogicalPath)
	if !ok {
		return "", vfserr.New(vfserr.KindInvalidPath, "extract", loc.LogicalPath, "not a .zip archive")
	}
	if _, err := g.authorize("extract", ident, destLogical, types.IntentWrite); err != nil {
		return "", err
	}

	var dest types.ResolvedLocation
	err = g.track(ident.ID, types.OpExtract, loc.LogicalPath, func(progress filesystem.ProgressFunc) error {
		var extractErr error
		dest, extractErr = g.engine.Extract(loc, progress)
		return extractErr
	})
	if err != nil {
		return "", err
	}
	return dest.LogicalPath, nil
}

// Delete removes an entry recursively. Deleting something already absent succeeds.
func (g *Gateway) Delete(ctx context.Context, userID, logical string) error {
	ident, err := g.identity("delete", userID)
	if err != nil {
		return err
	}
	return g.deleteAs(ident, logical)
}

func (g *Gateway) deleteAs(ident types.Identity, logical string) error {
	loc, err := g.authorize("delete", ident, logical, types.IntentWrite)
	if err != nil {
		return err
	}
	if g.resolver.IsRoot(loc) {
		return vfserr.New(vfserr.KindInvalidPath, "delete", loc.LogicalPath, "cannot delete the storage root")
	}
	if err := g.guard("delete", loc); err != nil {
		return err
	}

	entry, statErr := g.engine.Stat(loc)
	isDir := statErr == nil && entry.IsDir

	err = g.track(ident.ID, types.OpDelete, loc.LogicalPath, func(filesystem.ProgressFunc) error {
		return g.engine.Delete(loc)
	})
	if err != nil {
		return err
	}

	if isDir {
		g.cleanupRegistry(loc.LogicalPath)
	}
	return nil
}

// cleanupRegistry drops protected entries under a deleted directory. Failures are logged only.
func (g *Gateway) cleanupRegistry(deleted string) {
	removed, err := g.registry.Cleanup(deleted)
	if err != nil {
		g.logger.Error("Failed to clean up protected folders", zap.String("path", deleted), zap.Error(err))
		return
	}
	if removed > 0 {
		g.logger.Info("Removed protected folders under deleted directory",
			zap.String("path", deleted),
			zap.Int("removed", removed))
		if g.metrics != nil {
			g.metrics.AddRegistryCleanups(removed)
		}
	}
}

// EnsureFolder creates a directory and any missing parents
func (g *Gateway) EnsureFolder(ctx context.Context, userID, logical string) error {
	ident, loc, err := g.locate("ensure_folder", userID, logical, types.IntentWrite)
	if err != nil {
		return err
	}
	return g.track(ident.ID, types.OpCreateFolder, loc.LogicalPath, func(filesystem.ProgressFunc) error {
		return g.engine.EnsureDir(loc)
	})
}

// FolderExists reports whether logical exists and whether it is a directory
func (g *Gateway) FolderExists(ctx context.Context, userID, logical string) (exists, isDir bool, err error) {
	_, loc, err := g.locate("folder_exists", userID, logical, types.IntentRead)
	if err != nil {
		return false, false, err
	}
	entry, err := g.engine.Stat(loc)
	switch {
	case err == nil:
		return true, entry.IsDir, nil
	case vfserr.KindOf(err) == vfserr.KindNotFound:
		return false, false, nil
	}
	return false, false, err
}
