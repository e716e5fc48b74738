package types

import (
	"encoding/json"
	"fmt"
)

// Role is an identity's privilege level
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Intent is what a caller wants to do with a path
type Intent string

const (
	IntentRead  Intent = "read"
	IntentWrite Intent = "write"
)

// FolderGrant is one folder an identity may access
type FolderGrant struct {
	Path         string `json:"path" yaml:"path" toml:"path"`
	DisplayName  string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	IsVolumeRoot bool   `json:"isDisk,omitempty" yaml:"isDisk,omitempty" toml:"isDisk,omitempty"`
	Icon         string `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"`
}

// UnmarshalJSON accepts both the record form and the legacy bare path string
func (g *FolderGrant) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		*g = FolderGrant{Path: path}
		return nil
	}

	type plain FolderGrant
	var rec plain
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("folder grant: %w", err)
	}
	*g = FolderGrant(rec)
	return nil
}

// Identity is the caller as seen by the gateway. Owned by the user store.
type Identity struct {
	ID       string        `json:"id"`
	Username string        `json:"username"`
	Role     Role          `json:"role"`
	Grants   []FolderGrant `json:"folders"`
}

// IsAdmin reports whether the identity carries the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// ProtectedPath is an administrator pinned folder exempt from direct deletion
type ProtectedPath struct {
	Path         string `json:"path" yaml:"path" toml:"path"`
	DisplayName  string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	IsVolumeRoot bool   `json:"isDisk,omitempty" yaml:"isDisk,omitempty" toml:"isDisk,omitempty"`
	Icon         string `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"`
	ParentPath   string `json:"parentPath,omitempty" yaml:"parentPath,omitempty" toml:"parentPath,omitempty"`
}
