package filesystem

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/vfserr"
)

// archiveItem is one entry to be written into a zip
type archiveItem struct {
	src   string
	name  string
	isDir bool
}

// Archive compresses loc into a sibling zip. With targets, the named children of
// the directory at loc are packed together into Archive.zip inside it.
// The returned location is the archive written.
func (e *Engine) Archive(loc types.ResolvedLocation, targets []string, progress ProgressFunc) (types.ResolvedLocation, error) {
	info, err := statLocation("archive", loc)
	if err != nil {
		return types.ResolvedLocation{}, err
	}

	var (
		out   types.ResolvedLocation
		roots []archiveItem
	)

	if len(targets) == 0 {
		if e.sandbox.IsRoot(loc) {
			return types.ResolvedLocation{}, vfserr.New(vfserr.KindInvalidPath, "archive", loc.LogicalPath, "cannot archive the storage root")
		}
		name := filepath.Base(loc.PhysicalPath)
		parent := parentOf(loc)
		out, err = e.child("archive", parent, freeArchiveName(parent.PhysicalPath, archiveNameFor(name, info.IsDir())))
		if err != nil {
			return types.ResolvedLocation{}, err
		}
		if info.IsDir() {
			roots = append(roots, archiveItem{src: loc.PhysicalPath, name: "", isDir: true})
		} else {
			roots = append(roots, archiveItem{src: loc.PhysicalPath, name: name})
		}
	} else {
		if !info.IsDir() {
			return types.ResolvedLocation{}, vfserr.New(vfserr.KindInvalidPath, "archive", loc.LogicalPath, "not a directory")
		}
		for _, target := range targets {
			child, err := e.child("archive", loc, target)
			if err != nil {
				return types.ResolvedLocation{}, err
			}
			childInfo, err := statLocation("archive", child)
			if err != nil {
				return types.ResolvedLocation{}, err
			}
			roots = append(roots, archiveItem{src: child.PhysicalPath, name: target, isDir: childInfo.IsDir()})
		}
		out = e.sandbox.Join(loc, bulkArchiveName(loc.PhysicalPath))
	}

	items, err := planArchive(roots, out.PhysicalPath)
	if err != nil {
		return types.ResolvedLocation{}, vfserr.Wrap(vfserr.KindArchiveFailure, "archive", loc.LogicalPath, err)
	}

	if err := e.writeZip(out.PhysicalPath, items, progress); err != nil {
		if rmErr := os.Remove(out.PhysicalPath); rmErr != nil && !os.IsNotExist(rmErr) {
			e.logger.Warn("Failed to remove partial archive", zap.String("path", out.LogicalPath), zap.Error(rmErr))
		}
		return types.ResolvedLocation{}, vfserr.Wrap(vfserr.KindArchiveFailure, "archive", loc.LogicalPath, err)
	}
	return out, nil
}

// planArchive expands roots into entries with an explicit stack, skipping the output file
func planArchive(roots []archiveItem, output string) ([]archiveItem, error) {
	var items []archiveItem
	stack := make([]archiveItem, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}

	for len(stack) > 0 {
		item := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if filepath.Clean(item.src) == filepath.Clean(output) {
			continue
		}
		if item.name != "" {
			items = append(items, item)
		}
		if !item.isDir {
			continue
		}

		children, err := os.ReadDir(item.src)
		if err != nil {
			return nil, err
		}
		for i := len(children) - 1; i >= 0; i-- {
			d := children[i]
			if !d.IsDir() && !d.Type().IsRegular() {
				continue
			}
			stack = append(stack, archiveItem{
				src:   filepath.Join(item.src, d.Name()),
				name:  path.Join(item.name, d.Name()),
				isDir: d.IsDir(),
			})
		}
	}
	return items, nil
}

func (e *Engine) writeZip(output string, items []archiveItem, progress ProgressFunc) error {
	f, err := os.Create(output)
	if err != nil {
		return err
	}

	zw := zip.NewWriter(f)
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, flate.BestCompression)
	})

	for i, item := range items {
		if err := addToZip(zw, item); err != nil {
			zw.Close()
			f.Close()
			return fmt.Errorf("add %s: %w", item.name, err)
		}
		progress.report(i+1, len(items))
	}

	if err := zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func addToZip(zw *zip.Writer, item archiveItem) error {
	info, err := os.Stat(item.src)
	if err != nil {
		return err
	}

	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = item.name

	if info.IsDir() {
		hdr.Name += "/"
		hdr.Method = zip.Store
		_, err := zw.CreateHeader(hdr)
		return err
	}

	hdr.Method = zip.Deflate
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}

	in, err := os.Open(item.src)
	if err != nil {
		return err
	}
	defer in.Close()

	_, err = io.Copy(w, in)
	return err
}

// Extract unpacks the zip at loc into a sibling directory named after it.
// Existing files are overwritten. Entries escaping the directory fail the whole extraction.
func (e *Engine) Extract(loc types.ResolvedLocation, progress ProgressFunc) (types.ResolvedLocation, error) {
	logicalDir, ok := extractDirFor(loc.LogicalPath)
	physicalDir, ok2 := extractDirFor(loc.PhysicalPath)
	if !ok || !ok2 {
		return types.ResolvedLocation{}, vfserr.New(vfserr.KindInvalidPath, "extract", loc.LogicalPath, "not a .zip archive")
	}
	dest := types.ResolvedLocation{LogicalPath: logicalDir, PhysicalPath: physicalDir, IsExternal: loc.IsExternal}
	if !e.sandbox.Contained(dest) {
		return types.ResolvedLocation{}, vfserr.New(vfserr.KindInvalidPath, "extract", dest.LogicalPath, "path escapes storage root")
	}

	if _, err := statLocation("extract", loc); err != nil {
		return types.ResolvedLocation{}, err
	}

	zr, err := zip.OpenReader(loc.PhysicalPath)
	if err != nil {
		return types.ResolvedLocation{}, vfserr.Wrap(vfserr.KindArchiveFailure, "extract", loc.LogicalPath, err)
	}
	defer zr.Close()
	zr.RegisterDecompressor(zip.Deflate, flate.NewReader)

	targets := make([]string, len(zr.File))
	for i, f := range zr.File {
		target, err := entryTarget(physicalDir, f.Name)
		if err != nil {
			return types.ResolvedLocation{}, vfserr.Wrap(vfserr.KindArchiveFailure, "extract", loc.LogicalPath, err)
		}
		targets[i] = target
	}

	if err := os.MkdirAll(physicalDir, defaultDirMode); err != nil {
		return types.ResolvedLocation{}, classify("extract", dest.LogicalPath, err)
	}

	for i, f := range zr.File {
		if err := extractOne(f, targets[i]); err != nil {
			return types.ResolvedLocation{}, vfserr.Wrap(vfserr.KindArchiveFailure, "extract", loc.LogicalPath,
				fmt.Errorf("entry %s: %w", f.Name, err))
		}
		progress.report(i+1, len(zr.File))
	}
	return dest, nil
}

// entryTarget maps an entry name under dir, rejecting names that escape it
func entryTarget(dir, name string) (string, error) {
	if strings.ContainsRune(name, 0) || path.IsAbs(name) || filepath.IsAbs(name) || filepath.VolumeName(name) != "" {
		return "", fmt.Errorf("illegal entry name %q", name)
	}
	target := filepath.Join(dir, filepath.FromSlash(name))
	if !isWithin(target, dir) {
		return "", fmt.Errorf("entry %q escapes the extraction directory", name)
	}
	return target, nil
}

func extractOne(f *zip.File, target string) error {
	mode := f.Mode()
	if mode.IsDir() || strings.HasSuffix(f.Name, "/") {
		return os.MkdirAll(target, defaultDirMode)
	}
	if mode&fs.ModeSymlink != 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(target), defaultDirMode); err != nil {
		return err
	}
	if info, err := os.Lstat(target); err == nil {
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", filepath.Base(target))
		}
		if err := os.Remove(target); err != nil {
			return err
		}
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = defaultFileMode
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
