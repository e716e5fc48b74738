package gateway

import (
	"context"
	"path"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/GriffinCanCode/panelfs/backend/internal/shared/paths"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/vfserr"
)

// DeleteMany deletes every path independently and reports per-item outcomes
func (g *Gateway) DeleteMany(ctx context.Context, userID string, logicals []string) (types.BulkResult, error) {
	ident, err := g.identity("delete", userID)
	if err != nil {
		return types.BulkResult{}, err
	}
	result := g.fanOut(logicals, func(logical string) error {
		return g.deleteAs(ident, logical)
	})
	g.recordBulk(types.OpDelete, result)
	return result, nil
}

// CopyMany copies every source into the directory destDir, keeping base names
func (g *Gateway) CopyMany(ctx context.Context, userID string, sources []string, destDir string) (types.BulkResult, error) {
	if _, err := g.identity("copy", userID); err != nil {
		return types.BulkResult{}, err
	}
	result := g.fanOut(sources, func(src string) error {
		return g.Copy(ctx, userID, src, intoDir(destDir, src))
	})
	g.recordBulk(types.OpCopy, result)
	return result, nil
}

// MoveMany moves every source into the directory destDir, keeping base names
func (g *Gateway) MoveMany(ctx context.Context, userID string, sources []string, destDir string) (types.BulkResult, error) {
	if _, err := g.identity("move", userID); err != nil {
		return types.BulkResult{}, err
	}
	result := g.fanOut(sources, func(src string) error {
		return g.Move(ctx, userID, src, intoDir(destDir, src))
	})
	g.recordBulk(types.OpMove, result)
	return result, nil
}

// fanOut runs fn for every item with bounded concurrency. Items never abort each other.
func (g *Gateway) fanOut(items []string, fn func(string) error) types.BulkResult {
	var (
		mu     sync.Mutex
		result = types.BulkResult{Failures: []types.ItemFailure{}}
		eg     errgroup.Group
	)
	eg.SetLimit(g.bulkLimit)

	for _, item := range items {
		item := item
		eg.Go(func() error {
			err := fn(item)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures = append(result.Failures, types.ItemFailure{
					Path:  item,
					Kind:  string(vfserr.KindOf(err)),
					Error: err.Error(),
				})
				return nil
			}
			result.Succeeded++
			return nil
		})
	}
	_ = eg.Wait()

	sort.Slice(result.Failures, func(i, j int) bool {
		return result.Failures[i].Path < result.Failures[j].Path
	})
	return result
}

func (g *Gateway) recordBulk(kind types.OperationKind, result types.BulkResult) {
	if g.metrics != nil {
		g.metrics.RecordBulk(string(kind), result.Succeeded, len(result.Failures))
	}
}

func intoDir(dir, src string) string {
	return path.Join(paths.Clean(dir), path.Base(paths.Clean(src)))
}
