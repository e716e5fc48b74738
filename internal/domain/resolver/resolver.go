// Package resolver maps logical request paths onto the host filesystem.
//
// Resolution is pure: it classifies a logical path as internal (sandboxed under the
// storage root) or external (a host mount such as /media/usb) and joins it onto the
// root. It never rejects a path; callers decide validity with Contained.
package resolver

import (
	"path/filepath"
	"strings"

	"github.com/GriffinCanCode/panelfs/backend/internal/shared/paths"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
)

// Resolver classifies and joins logical paths
type Resolver struct {
	root     string
	prefixes []string
}

// New creates a resolver over an internal storage root. Nil prefixes use the
// conventional external mount roots.
func New(root string, externalPrefixes []string) *Resolver {
	if externalPrefixes == nil {
		externalPrefixes = paths.DefaultExternalPrefixes
	}

	cleaned := make([]string, 0, len(externalPrefixes))
	for _, p := range externalPrefixes {
		if p = strings.TrimSpace(p); p != "" {
			cleaned = append(cleaned, paths.Clean(p))
		}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		abs = filepath.Clean(root)
	}

	return &Resolver{root: abs, prefixes: cleaned}
}

// Root returns the absolute internal storage root
func (r *Resolver) Root() string {
	return r.root
}

// IsExternal reports whether a logical path addresses an external mount
func (r *Resolver) IsExternal(logical string) bool {
	clean := paths.Clean(logical)
	for _, prefix := range r.prefixes {
		if paths.HasPathPrefix(clean, prefix) {
			return true
		}
	}
	return false
}

// Resolve maps a logical path to its physical location
func (r *Resolver) Resolve(logical string) types.ResolvedLocation {
	clean := paths.Clean(logical)

	if r.IsExternal(clean) {
		return types.ResolvedLocation{
			LogicalPath:  clean,
			PhysicalPath: filepath.FromSlash(clean),
			IsExternal:   true,
		}
	}

	rel := strings.TrimLeft(clean, "/")
	return types.ResolvedLocation{
		LogicalPath:  clean,
		PhysicalPath: filepath.Join(r.root, filepath.FromSlash(rel)),
		IsExternal:   false,
	}
}

// Join resolves a child of an already resolved location. The name is not validated,
// so the result may escape the root; check it with Contained.
func (r *Resolver) Join(parent types.ResolvedLocation, name string) types.ResolvedLocation {
	return types.ResolvedLocation{
		LogicalPath:  strings.TrimSuffix(parent.LogicalPath, "/") + "/" + name,
		PhysicalPath: filepath.Join(parent.PhysicalPath, name),
		IsExternal:   parent.IsExternal,
	}
}

// Contained reports whether loc is acceptable: external locations always are,
// internal ones must lie within the storage root.
func (r *Resolver) Contained(loc types.ResolvedLocation) bool {
	if loc.IsExternal {
		return true
	}
	p := filepath.Clean(loc.PhysicalPath)
	return p == r.root || strings.HasPrefix(p, r.root+string(filepath.Separator))
}

// IsRoot reports whether loc is the internal storage root itself
func (r *Resolver) IsRoot(loc types.ResolvedLocation) bool {
	return !loc.IsExternal && filepath.Clean(loc.PhysicalPath) == r.root
}

// IsExternalRoot reports whether loc is exactly one of the external mount prefixes
func (r *Resolver) IsExternalRoot(loc types.ResolvedLocation) bool {
	if !loc.IsExternal {
		return false
	}
	clean := paths.Clean(loc.LogicalPath)
	for _, prefix := range r.prefixes {
		if clean == prefix {
			return true
		}
	}
	return false
}
