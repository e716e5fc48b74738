package filesystem

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"

	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/vfserr"
)

// DefaultSearchLimit caps the matches returned by Search
const DefaultSearchLimit = 500

// Search walks the directory at loc and returns entries matching pattern.
// A pattern without a slash matches base names at any depth ("*.go");
// otherwise it is a doublestar glob against the path relative to loc
// ("src/**/*_test.go"). Name matching is case-insensitive.
// When more than limit entries match, the first limit by ID are returned,
// so the same tree always yields the same page.
func (e *Engine) Search(ctx context.Context, loc types.ResolvedLocation, pattern string, limit int) ([]types.FileEntry, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || !doublestar.ValidatePattern(pattern) {
		return nil, vfserr.New(vfserr.KindInvalidPath, "search", loc.LogicalPath, "invalid search pattern")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	info, err := statLocation("search", loc)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, vfserr.New(vfserr.KindInvalidPath, "search", loc.LogicalPath, "not a directory")
	}

	byName := !strings.Contains(pattern, "/")
	pattern = strings.ToLower(pattern)

	var mu sync.Mutex
	matches := make([]types.FileEntry, 0)
	conf := fastwalk.Config{Follow: false}

	err = fastwalk.Walk(&conf, loc.PhysicalPath, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil || p == loc.PhysicalPath {
			return nil
		}

		rel, relErr := filepath.Rel(loc.PhysicalPath, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		subject := rel
		if byName {
			subject = d.Name()
		}
		if ok, _ := doublestar.Match(pattern, strings.ToLower(subject)); !ok {
			return nil
		}

		fi, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}

		mu.Lock()
		defer mu.Unlock()
		matches = append(matches, entryFor(path.Join(loc.LogicalPath, rel), d.Name(), fi))
		if len(matches) >= 2*limit {
			matches = firstByID(matches, limit)
		}
		return nil
	})
	if err != nil {
		return nil, classify("search", loc.LogicalPath, err)
	}
	return firstByID(matches, limit), nil
}

// firstByID sorts entries by ID and keeps at most n
func firstByID(entries []types.FileEntry, n int) []types.FileEntry {
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
