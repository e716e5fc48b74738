package filesystem

import (
	"io"
	"io/fs"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
)

// DirectoryMimeType is reported for directories in Details
const DirectoryMimeType = "inode/directory"

// charsetSample is how much of a text file is read for charset detection
const charsetSample = 8 << 10

// Details returns the entry at loc with its sniffed content type.
// Directories also report the recursive size and count of their contents.
func (e *Engine) Details(loc types.ResolvedLocation) (types.EntryDetails, error) {
	entry, err := e.Stat(loc)
	if err != nil {
		return types.EntryDetails{}, err
	}

	details := types.EntryDetails{FileEntry: entry}
	if !entry.IsDir {
		details.TotalSize = entry.Size
		details.MimeType = MimeTypeFor(entry.Name)
		if mtype, err := mimetype.DetectFile(loc.PhysicalPath); err == nil {
			details.MimeType = mtype.String()
		} else {
			e.logger.Debug("MIME detection failed", zap.String("path", loc.LogicalPath), zap.Error(err))
		}
		if strings.HasPrefix(details.MimeType, "text/") {
			details.Charset = detectCharset(loc.PhysicalPath)
		}
		return details, nil
	}

	details.MimeType = DirectoryMimeType

	var totalSize, itemCount atomic.Int64
	conf := fastwalk.Config{Follow: false}
	err = fastwalk.Walk(&conf, loc.PhysicalPath, func(p string, d fs.DirEntry, err error) error {
		if err != nil || p == loc.PhysicalPath {
			return nil
		}
		itemCount.Add(1)
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		totalSize.Add(info.Size())
		return nil
	})
	if err != nil {
		return types.EntryDetails{}, classify("details", loc.LogicalPath, err)
	}

	details.TotalSize = totalSize.Load()
	details.ItemCount = itemCount.Load()
	return details, nil
}

// detectCharset guesses the encoding of a text file; empty when unknown
func detectCharset(physical string) string {
	f, err := os.Open(physical)
	if err != nil {
		return ""
	}
	defer f.Close()

	sample, err := io.ReadAll(io.LimitReader(f, charsetSample))
	if err != nil || len(sample) == 0 {
		return ""
	}
	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil || result == nil {
		return ""
	}
	return strings.ToLower(result.Charset)
}
