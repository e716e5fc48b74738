package filesystem

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/vfserr"
)

// copyItem is one unit of a recursive copy
type copyItem struct {
	src, dst string
	mode     fs.FileMode
}

// Rename moves loc to newName within the same parent directory
func (e *Engine) Rename(loc types.ResolvedLocation, newName string) (types.ResolvedLocation, error) {
	if e.sandbox.IsRoot(loc) {
		return types.ResolvedLocation{}, vfserr.New(vfserr.KindInvalidPath, "rename", loc.LogicalPath, "cannot rename the storage root")
	}

	target, err := e.child("rename", parentOf(loc), newName)
	if err != nil {
		return types.ResolvedLocation{}, err
	}
	if _, err := os.Lstat(loc.PhysicalPath); err != nil {
		return types.ResolvedLocation{}, classify("rename", loc.LogicalPath, err)
	}
	if filepath.Clean(target.PhysicalPath) == filepath.Clean(loc.PhysicalPath) {
		return target, nil
	}
	if _, err := os.Lstat(target.PhysicalPath); err == nil {
		return types.ResolvedLocation{}, vfserr.New(vfserr.KindAlreadyExists, "rename", target.LogicalPath, "target already exists")
	}

	if err := os.Rename(loc.PhysicalPath, target.PhysicalPath); err != nil {
		return types.ResolvedLocation{}, classify("rename", loc.LogicalPath, err)
	}
	return target, nil
}

// Copy copies src to dst recursively. dst names the copy itself, not its parent.
// A failure part way leaves the items copied so far in place.
func (e *Engine) Copy(src, dst types.ResolvedLocation, progress ProgressFunc) error {
	if err := e.checkTransfer("copy", src, dst); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst.PhysicalPath), defaultDirMode); err != nil {
		return classify("copy", dst.LogicalPath, err)
	}
	return e.copyTree("copy", src, dst, progress)
}

// Move relocates src to dst. Renames within a device are used when possible;
// otherwise the tree is copied and the source removed.
func (e *Engine) Move(src, dst types.ResolvedLocation, progress ProgressFunc) error {
	if e.sandbox.IsRoot(src) {
		return vfserr.New(vfserr.KindInvalidPath, "move", src.LogicalPath, "cannot move the storage root")
	}
	if err := e.checkTransfer("move", src, dst); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst.PhysicalPath), defaultDirMode); err != nil {
		return classify("move", dst.LogicalPath, err)
	}

	err := os.Rename(src.PhysicalPath, dst.PhysicalPath)
	if err == nil {
		progress.report(1, 1)
		return nil
	}
	if !errors.Is(err, syscall.EXDEV) {
		return classify("move", src.LogicalPath, err)
	}

	e.logger.Debug("Falling back to copy for cross-device move",
		zap.String("source", src.LogicalPath),
		zap.String("destination", dst.LogicalPath))

	if err := e.copyTree("move", src, dst, progress); err != nil {
		return err
	}
	if err := os.RemoveAll(src.PhysicalPath); err != nil {
		return classify("move", src.LogicalPath, err)
	}
	return nil
}

// checkTransfer validates a two path operation
func (e *Engine) checkTransfer(op string, src, dst types.ResolvedLocation) error {
	info, err := os.Lstat(src.PhysicalPath)
	if err != nil {
		return classify(op, src.LogicalPath, err)
	}
	if filepath.Clean(src.PhysicalPath) == filepath.Clean(dst.PhysicalPath) {
		return vfserr.New(vfserr.KindInvalidPath, op, dst.LogicalPath, "source and destination are the same")
	}
	if info.IsDir() && isWithin(dst.PhysicalPath, src.PhysicalPath) {
		return vfserr.New(vfserr.KindInvalidPath, op, dst.LogicalPath, "destination is inside the source")
	}
	return nil
}

// copyTree walks src with an explicit stack and replicates it at dst
func (e *Engine) copyTree(op string, src, dst types.ResolvedLocation, progress ProgressFunc) error {
	plan, err := planCopy(src.PhysicalPath, dst.PhysicalPath)
	if err != nil {
		return classify(op, src.LogicalPath, err)
	}

	for i, item := range plan {
		if err := copyOne(item); err != nil {
			return classify(op, dst.LogicalPath, err)
		}
		progress.report(i+1, len(plan))
	}
	return nil
}

// planCopy lists every item under src, parents before children
func planCopy(src, dst string) ([]copyItem, error) {
	var plan []copyItem
	stack := []copyItem{{src: src, dst: dst}}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		info, err := os.Lstat(item.src)
		if err != nil {
			return nil, err
		}
		item.mode = info.Mode()
		plan = append(plan, item)

		if !info.IsDir() {
			continue
		}
		children, err := os.ReadDir(item.src)
		if err != nil {
			return nil, err
		}
		for i := len(children) - 1; i >= 0; i-- {
			name := children[i].Name()
			stack = append(stack, copyItem{
				src: filepath.Join(item.src, name),
				dst: filepath.Join(item.dst, name),
			})
		}
	}
	return plan, nil
}

func copyOne(item copyItem) error {
	switch {
	case item.mode.IsDir():
		return os.MkdirAll(item.dst, item.mode.Perm()|0o700)
	case item.mode&fs.ModeSymlink != 0:
		target, err := os.Readlink(item.src)
		if err != nil {
			return err
		}
		if err := os.Remove(item.dst); err != nil && !os.IsNotExist(err) {
			return err
		}
		return os.Symlink(target, item.dst)
	case item.mode.IsRegular():
		return copyFile(item.src, item.dst, item.mode.Perm())
	}
	// sockets, devices and pipes are not copied
	return nil
}

func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
