package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/GriffinCanCode/panelfs/backend/internal/domain/operation"
	"github.com/GriffinCanCode/panelfs/backend/internal/domain/protected"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/vfserr"
)

// IsProtected reports whether logical is blocked from deletion
func (g *Gateway) IsProtected(logical string) (bool, error) {
	return g.registry.IsProtected(logical)
}

// ProtectedPaths returns the pinned folder list
func (g *Gateway) ProtectedPaths(ctx context.Context, userID string) ([]types.ProtectedPath, error) {
	if _, err := g.identity("protected_paths", userID); err != nil {
		return nil, err
	}
	list, err := g.registry.List()
	if err != nil {
		return nil, vfserr.Wrap(vfserr.KindIOFailure, "protected_paths", "", err)
	}
	return list, nil
}

// SetProtectedPaths replaces the pinned folder list. Administrators only.
func (g *Gateway) SetProtectedPaths(ctx context.Context, userID string, entries []types.ProtectedPath) error {
	ident, err := g.identity("set_protected_paths", userID)
	if err != nil {
		return err
	}
	if !ident.IsAdmin() {
		g.deny("not_admin")
		return vfserr.New(vfserr.KindUnauthorized, "set_protected_paths", "", "administrator role required")
	}
	err = g.registry.Replace(entries)
	switch {
	case errors.Is(err, protected.ErrEmptyPath):
		return vfserr.Wrap(vfserr.KindInvalidPath, "set_protected_paths", "", err)
	case err != nil:
		return vfserr.Wrap(vfserr.KindIOFailure, "set_protected_paths", "", err)
	}
	return nil
}

// Grants returns the caller's folder grants
func (g *Gateway) Grants(ctx context.Context, userID string) ([]types.FolderGrant, error) {
	ident, err := g.identity("grants", userID)
	if err != nil {
		return nil, err
	}
	if ident.Grants == nil {
		return []types.FolderGrant{}, nil
	}
	return ident.Grants, nil
}

// ListVolumes returns mounted volumes; an unavailable enumeration yields an empty list
func (g *Gateway) ListVolumes(ctx context.Context) []types.DriveInfo {
	if g.drives == nil {
		return []types.DriveInfo{}
	}
	drives := g.drives.ListVolumes(ctx)
	if g.metrics != nil {
		g.metrics.SetDrivesListed(len(drives))
	}
	return drives
}

// Operations returns the caller's operation records
func (g *Gateway) Operations(ctx context.Context, userID string) ([]types.Operation, error) {
	if _, err := g.identity("operations", userID); err != nil {
		return nil, err
	}
	return g.tracker.List(userID), nil
}

// Operation returns one of the caller's operation records
func (g *Gateway) Operation(ctx context.Context, userID, opID string) (types.Operation, error) {
	if _, err := g.identity("operations", userID); err != nil {
		return types.Operation{}, err
	}
	op, err := g.tracker.Get(userID, opID)
	if errors.Is(err, operation.ErrNotFound) {
		return types.Operation{}, vfserr.New(vfserr.KindNotFound, "operations", opID, "operation not found")
	}
	if err != nil {
		return types.Operation{}, fmt.Errorf("get operation: %w", err)
	}
	return op, nil
}
