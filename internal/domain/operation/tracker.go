// Package operation tracks client-visible progress records for file operations.
package operation

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/GriffinCanCode/panelfs/backend/internal/shared/id"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
)

// DefaultRetention is how long finished records stay visible
const DefaultRetention = 10 * time.Minute

// ErrNotFound is returned for unknown or foreign operation ids
var ErrNotFound = errors.New("operation not found")

// Tracker holds operation records per owner
type Tracker struct {
	mu        sync.RWMutex
	ops       map[string]map[string]*types.Operation // owner -> id -> record. Protected by mu
	retention time.Duration
	now       func() time.Time
}

// NewTracker creates a tracker. A non-positive retention uses DefaultRetention.
func NewTracker(retention time.Duration) *Tracker {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Tracker{
		ops:       make(map[string]map[string]*types.Operation),
		retention: retention,
		now:       time.Now,
	}
}

// Submit records a pending operation and returns its id
func (t *Tracker) Submit(owner string, kind types.OperationKind, path string) string {
	now := t.now()
	op := &types.Operation{
		ID:        id.NewOperationID().String(),
		OwnerID:   owner,
		Kind:      kind,
		Path:      path,
		Status:    types.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked(now)
	owned, ok := t.ops[owner]
	if !ok {
		owned = make(map[string]*types.Operation)
		t.ops[owner] = owned
	}
	owned[op.ID] = op
	return op.ID
}

// Start moves an operation to processing
func (t *Tracker) Start(owner, opID string) {
	t.mutate(owner, opID, func(op *types.Operation) {
		op.Status = types.StatusProcessing
	})
}

// Progress updates the completion percentage, clamped to [0, 100]
func (t *Tracker) Progress(owner, opID string, pct int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	t.mutate(owner, opID, func(op *types.Operation) {
		op.Progress = pct
	})
}

// Finish moves an operation to done, or to error when err is non-nil
func (t *Tracker) Finish(owner, opID string, err error) {
	t.mutate(owner, opID, func(op *types.Operation) {
		if err != nil {
			op.Status = types.StatusError
			op.Error = err.Error()
			return
		}
		op.Status = types.StatusDone
		op.Progress = 100
	})
}

// Get returns a copy of one of owner's operations
func (t *Tracker) Get(owner, opID string) (types.Operation, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	op, ok := t.ops[owner][opID]
	if !ok {
		return types.Operation{}, ErrNotFound
	}
	return *op, nil
}

// List returns copies of owner's operations, newest first
func (t *Tracker) List(owner string) []types.Operation {
	t.mu.Lock()
	t.pruneLocked(t.now())
	out := make([]types.Operation, 0, len(t.ops[owner]))
	for _, op := range t.ops[owner] {
		out = append(out, *op)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (t *Tracker) mutate(owner, opID string, fn func(op *types.Operation)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	op, ok := t.ops[owner][opID]
	if !ok || op.Status.Terminal() {
		return
	}
	fn(op)
	op.UpdatedAt = t.now()
}

func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-t.retention)
	for owner, owned := range t.ops {
		for opID, op := range owned {
			if op.Status.Terminal() && op.UpdatedAt.Before(cutoff) {
				delete(owned, opID)
			}
		}
		if len(owned) == 0 {
			delete(t.ops, owner)
		}
	}
}
