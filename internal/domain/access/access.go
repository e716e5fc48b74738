// Package access decides whether an identity may touch a logical path.
package access

import (
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/paths"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
)

// Classifier reports whether a logical path addresses an external mount
type Classifier interface {
	IsExternal(logical string) bool
}

// Controller applies the access rules
type Controller struct {
	classifier Classifier
}

// NewController creates an access controller
func NewController(classifier Classifier) *Controller {
	return &Controller{classifier: classifier}
}

// Authorize reports whether identity may access logical with the given intent.
//
// Rules, first match wins:
//  1. admins may access everything
//  2. external mounts are shared with every identity
//  3. the root is admin only
//  4. otherwise the path must equal or lie below one of the identity's grants
//
// Read and write intents currently share the same rules.
func (c *Controller) Authorize(identity types.Identity, logical string, intent types.Intent) bool {
	if identity.IsAdmin() {
		return true
	}

	if c.classifier.IsExternal(logical) {
		return true
	}

	if paths.IsRoot(logical) {
		return false
	}

	clean := paths.Clean(logical)
	for _, grant := range identity.Grants {
		if grant.Path == "" {
			continue
		}
		if paths.HasPathPrefix(clean, paths.Clean(grant.Path)) {
			return true
		}
	}
	return false
}
