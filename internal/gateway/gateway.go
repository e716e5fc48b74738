// Package gateway is the permission-scoped entry point to the file system.
//
// Every call reloads the caller's identity, authorizes the logical path,
// resolves it, verifies containment and, for destructive operations,
// consults the protected folder registry before the engine runs.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/panelfs/backend/internal/domain/access"
	"github.com/GriffinCanCode/panelfs/backend/internal/domain/operation"
	"github.com/GriffinCanCode/panelfs/backend/internal/domain/protected"
	"github.com/GriffinCanCode/panelfs/backend/internal/domain/resolver"
	"github.com/GriffinCanCode/panelfs/backend/internal/domain/users"
	"github.com/GriffinCanCode/panelfs/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/panelfs/backend/internal/providers/filesystem"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/paths"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/vfserr"
)

// DefaultBulkConcurrency bounds parallel items of a bulk operation
const DefaultBulkConcurrency = 4

// IdentitySource loads the current identity of a user
type IdentitySource interface {
	Identity(userID string) (types.Identity, error)
}

// VolumeLister enumerates mounted volumes
type VolumeLister interface {
	ListVolumes(ctx context.Context) []types.DriveInfo
}

// Deps are the collaborators of a Gateway
type Deps struct {
	Resolver        *resolver.Resolver
	Users           IdentitySource
	Registry        *protected.Registry
	Engine          *filesystem.Engine
	Drives          VolumeLister
	Tracker         *operation.Tracker
	Metrics         *monitoring.Metrics
	Logger          *zap.Logger
	BulkConcurrency int
}

// Gateway exposes the file operation surface
type Gateway struct {
	resolver  *resolver.Resolver
	access    *access.Controller
	users     IdentitySource
	registry  *protected.Registry
	engine    *filesystem.Engine
	drives    VolumeLister
	tracker   *operation.Tracker
	metrics   *monitoring.Metrics
	logger    *zap.Logger
	bulkLimit int
}

// New wires a gateway. Resolver, Users, Registry and Engine are required.
func New(d Deps) (*Gateway, error) {
	switch {
	case d.Resolver == nil:
		return nil, errors.New("gateway: resolver is required")
	case d.Users == nil:
		return nil, errors.New("gateway: identity source is required")
	case d.Registry == nil:
		return nil, errors.New("gateway: protected registry is required")
	case d.Engine == nil:
		return nil, errors.New("gateway: engine is required")
	}

	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Tracker == nil {
		d.Tracker = operation.NewTracker(0)
	}
	if d.BulkConcurrency < 1 {
		d.BulkConcurrency = DefaultBulkConcurrency
	}

	return &Gateway{
		resolver:  d.Resolver,
		access:    access.NewController(d.Resolver),
		users:     d.Users,
		registry:  d.Registry,
		engine:    d.Engine,
		drives:    d.Drives,
		tracker:   d.Tracker,
		metrics:   d.Metrics,
		logger:    d.Logger,
		bulkLimit: d.BulkConcurrency,
	}, nil
}

// ResolvePath maps a logical path without authorizing it
func (g *Gateway) ResolvePath(logical string) types.ResolvedLocation {
	return g.resolver.Resolve(logical)
}

// Authorize reports whether the user may access logical with intent
func (g *Gateway) Authorize(ctx context.Context, userID, logical string, intent types.Intent) (bool, error) {
	ident, err := g.identity("authorize", userID)
	if err != nil {
		return false, err
	}
	return g.access.Authorize(ident, logical, intent), nil
}

// identity reloads the caller on every request so grant changes apply immediately
func (g *Gateway) identity(op, userID string) (types.Identity, error) {
	if userID == "" {
		return types.Identity{}, vfserr.New(vfserr.KindUnauthorized, op, "", "no identity")
	}
	ident, err := g.users.Identity(userID)
	if errors.Is(err, users.ErrUserNotFound) {
		g.deny("unknown_user")
		return types.Identity{}, vfserr.New(vfserr.KindUnauthorized, op, "", "unknown user")
	}
	if err != nil {
		return types.Identity{}, vfserr.Wrap(vfserr.KindIOFailure, op, "", fmt.Errorf("load identity: %w", err))
	}
	return ident, nil
}

// locate authorizes and resolves logical for the caller
func (g *Gateway) locate(op, userID, logical string, intent types.Intent) (types.Identity, types.ResolvedLocation, error) {
	ident, err := g.identity(op, userID)
	if err != nil {
		return types.Identity{}, types.ResolvedLocation{}, err
	}
	loc, err := g.authorize(op, ident, logical, intent)
	return ident, loc, err
}

// authorize checks an already loaded identity against logical and resolves it
func (g *Gateway) authorize(op string, ident types.Identity, logical string, intent types.Intent) (types.ResolvedLocation, error) {
	loc := g.resolver.Resolve(logical)

	if !g.access.Authorize(ident, loc.LogicalPath, intent) {
		g.deny("unauthorized")
		g.logger.Debug("Access denied",
			zap.String("op", op),
			zap.String("user", ident.ID),
			zap.String("path", loc.LogicalPath))
		return types.ResolvedLocation{}, vfserr.New(vfserr.KindUnauthorized, op, loc.LogicalPath, "access denied to this folder")
	}

	if !g.resolver.Contained(loc) {
		g.deny("invalid_path")
		g.logger.Warn("Path escapes storage root",
			zap.String("op", op),
			zap.String("user", ident.ID),
			zap.String("path", logical))
		return types.ResolvedLocation{}, vfserr.New(vfserr.KindInvalidPath, op, loc.LogicalPath, "invalid path")
	}
	return loc, nil
}

// guard refuses destructive operations on protected folders
func (g *Gateway) guard(op string, loc types.ResolvedLocation) error {
	if g.resolver.IsExternalRoot(loc) {
		return vfserr.New(vfserr.KindInvalidPath, op, loc.LogicalPath, "cannot modify an external mount root")
	}
	verdict, err := g.registry.Check(loc.LogicalPath)
	if err != nil {
		return vfserr.Wrap(vfserr.KindIOFailure, op, loc.LogicalPath, fmt.Errorf("load protected folders: %w", err))
	}
	if verdict.Protected() {
		g.deny("protected")
		return vfserr.New(vfserr.KindProtected, op, loc.LogicalPath, verdict.Message())
	}
	return nil
}

// track records a client-visible operation around fn
func (g *Gateway) track(owner string, kind types.OperationKind, logical string, fn func(filesystem.ProgressFunc) error) error {
	opID := g.tracker.Submit(owner, kind, logical)
	g.tracker.Start(owner, opID)
	timer := monitoring.NewTimer(g.metrics, string(kind))

	err := fn(func(done, total int) {
		if total > 0 {
			g.tracker.Progress(owner, opID, done*100/total)
		}
	})

	g.tracker.Finish(owner, opID, err)
	timer.Stop(err)
	return err
}

// timed records metrics for an untracked operation
func (g *Gateway) timed(kind types.OperationKind, fn func() error) error {
	timer := monitoring.NewTimer(g.metrics, string(kind))
	err := fn()
	timer.Stop(err)
	return err
}

func (g *Gateway) deny(reason string) {
	if g.metrics != nil {
		g.metrics.RecordDenial(reason)
	}
}

// siblingPath joins name onto the parent of logical after validating it
func siblingPath(op, logical, name string) (string, error) {
	if err := paths.ValidateName(name); err != nil {
		return "", vfserr.New(vfserr.KindInvalidPath, op, logical, err.Error())
	}
	return path.Join(path.Dir(paths.Clean(logical)), name), nil
}

// stripZip returns logical without a trailing .zip of any case
func stripZip(logical string) (string, bool) {
	if len(logical) <= 4 || !strings.EqualFold(logical[len(logical)-4:], ".zip") {
		return "", false
	}
	return logical[:len(logical)-4], true
}

func parentLogical(logical string) string {
	return path.Dir(paths.Clean(logical))
}
