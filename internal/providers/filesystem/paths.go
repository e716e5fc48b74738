package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// isWithin reports whether p lies at or below dir on the host filesystem
func isWithin(p, dir string) bool {
	p, dir = filepath.Clean(p), filepath.Clean(dir)
	return p == dir || strings.HasPrefix(p, dir+string(filepath.Separator))
}

// archiveNameFor names the sibling archive of a single source
func archiveNameFor(name string, isDir bool) string {
	if isDir {
		return name + ".zip"
	}
	if ext := filepath.Ext(name); ext != "" && ext != name {
		name = strings.TrimSuffix(name, ext)
	}
	return name + ".zip"
}

// bulkArchiveName picks Archive.zip, or Archive (n).zip when taken
func bulkArchiveName(dir string) string {
	return freeArchiveName(dir, "Archive.zip")
}

// freeArchiveName returns name, or "stem (n).zip" for the first n not present in dir.
// An existing archive is never the output of a new one.
func freeArchiveName(dir, name string) string {
	stem := strings.TrimSuffix(name, ".zip")
	for n := 1; ; n++ {
		if _, err := os.Lstat(filepath.Join(dir, name)); os.IsNotExist(err) {
			return name
		}
		name = fmt.Sprintf("%s (%d).zip", stem, n)
	}
}

// extractDirFor strips a trailing .zip regardless of case
func extractDirFor(archive string) (string, bool) {
	if len(archive) <= len(".zip") || !strings.EqualFold(archive[len(archive)-4:], ".zip") {
		return "", false
	}
	return archive[:len(archive)-4], true
}
