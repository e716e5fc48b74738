// Package protected tracks administrator pinned folders that may not be deleted.
//
// A path is protected when it:
//   - exactly matches a registered entry
//   - is a strict ancestor of a registered entry (deleting it would orphan the entry)
//   - is one of a user's reserved home folders (/users/{name}/Documents and friends)
//
// The registry is a whole document reloaded on every call.
package protected

import (
	"errors"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/panelfs/backend/internal/infrastructure/docstore"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/paths"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
)

// ErrEmptyPath rejects entries without a path
var ErrEmptyPath = errors.New("protected path cannot be empty")

// Reason explains why a path is protected
type Reason string

const (
	ReasonNone     Reason = ""
	ReasonPinned   Reason = "pinned"
	ReasonAncestor Reason = "contains_pinned"
	ReasonReserved Reason = "reserved_folder"
)

// Verdict is the outcome of Check
type Verdict struct {
	Reason   Reason
	Children []string
}

// Protected reports whether the verdict blocks deletion
func (v Verdict) Protected() bool {
	return v.Reason != ReasonNone
}

// Message renders the verdict for an end user
func (v Verdict) Message() string {
	switch v.Reason {
	case ReasonPinned:
		return "folder is pinned to Quick Access; remove it from the configuration first"
	case ReasonAncestor:
		return fmt.Sprintf("folder contains Quick Access folders (%s); remove them from the configuration first",
			strings.Join(v.Children, ", "))
	case ReasonReserved:
		return "folder is a default folder of a user profile"
	}
	return ""
}

// Registry is the protected path repository
type Registry struct {
	doc *docstore.Document[[]types.ProtectedPath]
}

// NewRegistry opens the registry document at path
func NewRegistry(path string) (*Registry, error) {
	doc, err := docstore.Open(path, func() []types.ProtectedPath { return []types.ProtectedPath{} })
	if err != nil {
		return nil, err
	}
	return &Registry{doc: doc}, nil
}

// List returns every registered entry
func (r *Registry) List() ([]types.ProtectedPath, error) {
	return r.doc.Load()
}

// Replace overwrites the whole registry
func (r *Registry) Replace(entries []types.ProtectedPath) error {
	normalized := make([]types.ProtectedPath, 0, len(entries))
	for _, e := range entries {
		if strings.TrimSpace(e.Path) == "" {
			return ErrEmptyPath
		}
		e.Path = paths.Clean(e.Path)
		normalized = append(normalized, e)
	}
	return r.doc.Save(normalized)
}

// Register adds an entry; registering an existing path updates its metadata
func (r *Registry) Register(entry types.ProtectedPath) error {
	if strings.TrimSpace(entry.Path) == "" {
		return ErrEmptyPath
	}
	entry.Path = paths.Clean(entry.Path)

	_, err := r.doc.Update(func(all *[]types.ProtectedPath) (bool, error) {
		for i := range *all {
			if (*all)[i].Path == entry.Path {
				(*all)[i] = entry
				return true, nil
			}
		}
		*all = append(*all, entry)
		return true, nil
	})
	return err
}

// Unregister removes an entry. Removing an unknown path is a no-op.
func (r *Registry) Unregister(logical string) error {
	target := paths.Clean(logical)
	_, err := r.doc.Update(func(all *[]types.ProtectedPath) (bool, error) {
		kept := (*all)[:0]
		for _, e := range *all {
			if paths.Clean(e.Path) != target {
				kept = append(kept, e)
			}
		}
		changed := len(kept) != len(*all)
		*all = kept
		return changed, nil
	})
	return err
}

// Check evaluates the protection rules for logical
func (r *Registry) Check(logical string) (Verdict, error) {
	target := paths.Clean(logical)

	if paths.IsReservedFolder(target) {
		return Verdict{Reason: ReasonReserved}, nil
	}

	all, err := r.List()
	if err != nil {
		return Verdict{}, err
	}

	var children []string
	for _, e := range all {
		p := paths.Clean(e.Path)
		if p == target {
			return Verdict{Reason: ReasonPinned}, nil
		}
		if paths.IsStrictAncestor(target, p) {
			children = append(children, p)
		}
	}
	if len(children) > 0 {
		return Verdict{Reason: ReasonAncestor, Children: children}, nil
	}
	return Verdict{}, nil
}

// IsProtected reports whether logical may not be deleted
func (r *Registry) IsProtected(logical string) (bool, error) {
	v, err := r.Check(logical)
	if err != nil {
		return false, err
	}
	return v.Protected(), nil
}

// Cleanup drops every entry equal to or nested under a deleted directory.
// The document is written only when something was removed.
func (r *Registry) Cleanup(deleted string) (int, error) {
	target := paths.Clean(deleted)
	removed := 0
	_, err := r.doc.Update(func(all *[]types.ProtectedPath) (bool, error) {
		kept := (*all)[:0]
		for _, e := range *all {
			if paths.HasPathPrefix(paths.Clean(e.Path), target) {
				removed++
				continue
			}
			kept = append(kept, e)
		}
		*all = kept
		return removed > 0, nil
	})
	return removed, err
}
