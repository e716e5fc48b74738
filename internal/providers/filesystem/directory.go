package filesystem

import (
	"os"
	"path"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/panelfs/backend/internal/shared/paths"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/vfserr"
)

const defaultDirMode os.FileMode = 0o755

// List returns the immediate children of the directory at loc, unsorted.
// Children that cannot be stat'ed are omitted.
func (e *Engine) List(loc types.ResolvedLocation) ([]types.FileEntry, error) {
	info, err := statLocation("list", loc)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, vfserr.New(vfserr.KindInvalidPath, "list", loc.LogicalPath, "not a directory")
	}

	dirents, err := os.ReadDir(loc.PhysicalPath)
	if err != nil {
		return nil, classify("list", loc.LogicalPath, err)
	}

	entries := make([]types.FileEntry, 0, len(dirents))
	for _, d := range dirents {
		child := e.sandbox.Join(loc, d.Name())
		childInfo, err := os.Stat(child.PhysicalPath)
		if err != nil {
			e.logger.Debug("Skipping unreadable entry", zap.String("path", child.LogicalPath), zap.Error(err))
			continue
		}
		entries = append(entries, entryFor(path.Clean(child.LogicalPath), d.Name(), childInfo))
	}
	return entries, nil
}

// CreateFolder creates name inside parent. A folder whose path would be a
// user's home root (/users/{name}) is refused; homes are provisioned, not created.
func (e *Engine) CreateFolder(parent types.ResolvedLocation, name string) (types.ResolvedLocation, error) {
	if wanted := path.Join(parent.LogicalPath, name); !parent.IsExternal && paths.IsUserHomeRoot(wanted) {
		return types.ResolvedLocation{}, vfserr.New(vfserr.KindProtected, "create_folder", wanted,
			"home folders cannot be created here")
	}

	target, err := e.child("create_folder", parent, name)
	if err != nil {
		return types.ResolvedLocation{}, err
	}

	info, err := statLocation("create_folder", parent)
	if err != nil {
		return types.ResolvedLocation{}, err
	}
	if !info.IsDir() {
		return types.ResolvedLocation{}, vfserr.New(vfserr.KindInvalidPath, "create_folder", parent.LogicalPath, "not a directory")
	}

	if err := os.Mkdir(target.PhysicalPath, defaultDirMode); err != nil {
		return types.ResolvedLocation{}, classify("create_folder", target.LogicalPath, err)
	}
	return target, nil
}

// EnsureDir creates the directory at loc and any missing parents
func (e *Engine) EnsureDir(loc types.ResolvedLocation) error {
	if err := os.MkdirAll(loc.PhysicalPath, defaultDirMode); err != nil {
		return classify("ensure_dir", loc.LogicalPath, err)
	}
	return nil
}
