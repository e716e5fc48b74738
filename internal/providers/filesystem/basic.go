package filesystem

import (
	"bytes"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/vfserr"
)

const defaultFileMode fs.FileMode = 0o644

// Stream is an open file ready to be served
type Stream struct {
	io.ReadCloser
	Name        string
	Size        int64
	MimeType    string
	Disposition types.Disposition
	ModifiedAt  time.Time
}

// ContentDisposition renders the header value for the stream.
// Non-ASCII names are carried as an RFC 2231 filename* parameter.
func (s *Stream) ContentDisposition() string {
	if v := mime.FormatMediaType(string(s.Disposition), map[string]string{"filename": s.Name}); v != "" {
		return v
	}
	return string(s.Disposition)
}

// Stat returns the entry at loc
func (e *Engine) Stat(loc types.ResolvedLocation) (types.FileEntry, error) {
	info, err := statLocation("stat", loc)
	if err != nil {
		return types.FileEntry{}, err
	}
	return entryFor(loc.LogicalPath, filepath.Base(loc.PhysicalPath), info), nil
}

// Open streams the file at loc
func (e *Engine) Open(loc types.ResolvedLocation, disposition types.Disposition) (*Stream, error) {
	info, err := statLocation("open", loc)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, vfserr.New(vfserr.KindInvalidPath, "open", loc.LogicalPath, "is a directory")
	}
	if disposition != types.DispositionAttachment {
		disposition = types.DispositionInline
	}

	f, err := os.Open(loc.PhysicalPath)
	if err != nil {
		return nil, classify("open", loc.LogicalPath, err)
	}

	name := filepath.Base(loc.PhysicalPath)
	return &Stream{
		ReadCloser:  f,
		Name:        name,
		Size:        info.Size(),
		MimeType:    MimeTypeFor(name),
		Disposition: disposition,
		ModifiedAt:  info.ModTime(),
	}, nil
}

// ReadText returns the whole file content as a string
func (e *Engine) ReadText(loc types.ResolvedLocation) (string, error) {
	info, err := statLocation("read", loc)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", vfserr.New(vfserr.KindInvalidPath, "read", loc.LogicalPath, "is a directory")
	}
	data, err := os.ReadFile(loc.PhysicalPath)
	if err != nil {
		return "", classify("read", loc.LogicalPath, err)
	}
	return string(data), nil
}

// Write replaces the file content at loc. Readers see either the old or the new content.
func (e *Engine) Write(loc types.ResolvedLocation, data []byte) error {
	return e.replace("write", loc, bytes.NewReader(data))
}

// Upload stores r as name inside dir, overwriting an existing file
func (e *Engine) Upload(dir types.ResolvedLocation, name string, r io.Reader) (types.FileEntry, error) {
	target, err := e.child("upload", dir, name)
	if err != nil {
		return types.FileEntry{}, err
	}
	info, err := statLocation("upload", dir)
	if err != nil {
		return types.FileEntry{}, err
	}
	if !info.IsDir() {
		return types.FileEntry{}, vfserr.New(vfserr.KindInvalidPath, "upload", dir.LogicalPath, "not a directory")
	}
	if err := e.replace("upload", target, r); err != nil {
		return types.FileEntry{}, err
	}
	return e.Stat(target)
}

// replace streams r into a temp file beside loc and renames it over loc
func (e *Engine) replace(op string, loc types.ResolvedLocation, r io.Reader) error {
	mode := defaultFileMode
	if info, err := os.Stat(loc.PhysicalPath); err == nil {
		if info.IsDir() {
			return vfserr.New(vfserr.KindInvalidPath, op, loc.LogicalPath, "is a directory")
		}
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(loc.PhysicalPath)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(loc.PhysicalPath)+".*.tmp")
	if err != nil {
		return classify(op, loc.LogicalPath, err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		if rmErr := os.Remove(tmpName); rmErr != nil && !os.IsNotExist(rmErr) {
			e.logger.Warn("Failed to remove temp file", zap.String("path", tmpName), zap.Error(rmErr))
		}
	}

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		cleanup()
		return classify(op, loc.LogicalPath, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return classify(op, loc.LogicalPath, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return classify(op, loc.LogicalPath, err)
	}
	if err := os.Rename(tmpName, loc.PhysicalPath); err != nil {
		cleanup()
		return classify(op, loc.LogicalPath, err)
	}
	return nil
}

// Delete removes loc recursively. An absent path is a success.
func (e *Engine) Delete(loc types.ResolvedLocation) error {
	if e.sandbox.IsRoot(loc) {
		return vfserr.New(vfserr.KindInvalidPath, "delete", loc.LogicalPath, "cannot delete the storage root")
	}
	if err := os.RemoveAll(loc.PhysicalPath); err != nil {
		return classify("delete", loc.LogicalPath, err)
	}
	return nil
}
