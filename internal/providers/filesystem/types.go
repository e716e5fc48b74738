package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/panelfs/backend/internal/shared/paths"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/vfserr"
)

// Sandbox joins and validates physical locations
type Sandbox interface {
	Join(parent types.ResolvedLocation, name string) types.ResolvedLocation
	Contained(loc types.ResolvedLocation) bool
	IsRoot(loc types.ResolvedLocation) bool
}

// ProgressFunc receives completed and total unit counts of a long running operation
type ProgressFunc func(done, total int)

func (p ProgressFunc) report(done, total int) {
	if p != nil {
		p(done, total)
	}
}

// Engine performs filesystem mutations
type Engine struct {
	sandbox Sandbox
	logger  *zap.Logger
}

// New creates an engine. A nil logger discards output.
func New(sandbox Sandbox, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{sandbox: sandbox, logger: logger}
}

// child resolves name under parent and rejects escapes
func (e *Engine) child(op string, parent types.ResolvedLocation, name string) (types.ResolvedLocation, error) {
	if err := paths.ValidateName(name); err != nil {
		return types.ResolvedLocation{}, vfserr.New(vfserr.KindInvalidPath, op, parent.LogicalPath, err.Error())
	}
	loc := e.sandbox.Join(parent, name)
	if !e.sandbox.Contained(loc) {
		return types.ResolvedLocation{}, vfserr.New(vfserr.KindInvalidPath, op, loc.LogicalPath, "path escapes storage root")
	}
	return loc, nil
}

// parentOf returns the location of loc's containing directory
func parentOf(loc types.ResolvedLocation) types.ResolvedLocation {
	return types.ResolvedLocation{
		LogicalPath:  path.Dir(loc.LogicalPath),
		PhysicalPath: filepath.Dir(loc.PhysicalPath),
		IsExternal:   loc.IsExternal,
	}
}

// extension mirrors the display convention: lowercase, empty for dotfiles
func extension(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return ""
	}
	return strings.ToLower(ext)
}

func entryFor(logical, name string, info fs.FileInfo) types.FileEntry {
	return types.FileEntry{
		ID:         logical,
		Name:       name,
		IsDir:      info.IsDir(),
		Size:       info.Size(),
		ModifiedAt: info.ModTime(),
		Extension:  extension(name),
	}
}

// classify converts an OS error into the failure taxonomy
func classify(op, logical string, err error) error {
	if err == nil {
		return nil
	}
	var typed *vfserr.Error
	if errors.As(err, &typed) {
		return err
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return vfserr.Wrap(vfserr.KindNotFound, op, logical, err)
	case errors.Is(err, fs.ErrExist):
		return vfserr.Wrap(vfserr.KindAlreadyExists, op, logical, err)
	case errors.Is(err, syscall.ENOTDIR), errors.Is(err, syscall.ENAMETOOLONG):
		return vfserr.Wrap(vfserr.KindInvalidPath, op, logical, err)
	}
	return vfserr.Wrap(vfserr.KindIOFailure, op, logical, err)
}

func statLocation(op string, loc types.ResolvedLocation) (fs.FileInfo, error) {
	info, err := os.Stat(loc.PhysicalPath)
	if err != nil {
		return nil, classify(op, loc.LogicalPath, err)
	}
	return info, nil
}
