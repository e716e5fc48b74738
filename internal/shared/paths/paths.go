package paths

import (
	"fmt"
	"path"
	"strings"
)

// Logical roots of the internal tree
const (
	Root   = "/"
	Shared = "/shared"
	Public = "/public"
	Users  = "/users"
)

// DefaultFolders are created in every user's home and cannot be deleted
var DefaultFolders = []string{"Documents", "Downloads", "Pictures", "Music", "Videos"}

// DefaultExternalPrefixes are conventional mount roots for removable and network volumes
var DefaultExternalPrefixes = []string{"/media", "/mnt", "/run/media", "/Volumes"}

// StandardDirectories returns the directories that must exist under the storage root
func StandardDirectories() []string {
	return []string{Shared, Public, Users}
}

// Clean normalizes a logical path to an absolute, slash separated form.
// Empty input is the root. ".." never climbs above the root.
func Clean(p string) string {
	if p == "" {
		return Root
	}
	return path.Clean("/" + p)
}

// IsRoot reports whether p addresses the logical root
func IsRoot(p string) bool {
	return p == "" || Clean(p) == Root
}

// HasPathPrefix reports whether p equals prefix or lies below it on a segment boundary.
// Both arguments must already be clean.
func HasPathPrefix(p, prefix string) bool {
	if prefix == Root {
		return strings.HasPrefix(p, Root)
	}
	return p == prefix || strings.HasPrefix(p, prefix+"/")
}

// IsStrictAncestor reports whether ancestor lies strictly above p
func IsStrictAncestor(ancestor, p string) bool {
	return ancestor != p && HasPathPrefix(p, ancestor)
}

// UserHome returns the logical home folder of a user
func UserHome(username string) string {
	return path.Join(Users, username)
}

// UserDefaultFolders returns the logical reserved folders of a user
func UserDefaultFolders(username string) []string {
	home := UserHome(username)
	out := make([]string, 0, len(DefaultFolders))
	for _, name := range DefaultFolders {
		out = append(out, path.Join(home, name))
	}
	return out
}

// IsUserHomeRoot reports whether p is exactly /users/{name}
func IsUserHomeRoot(p string) bool {
	p = Clean(p)
	dir, name := path.Split(p)
	return dir == Users+"/" && name != ""
}

// IsReservedFolder reports whether p is exactly /users/{name}/{default folder}
func IsReservedFolder(p string) bool {
	p = Clean(p)
	parent, name := path.Split(p)
	if !IsUserHomeRoot(strings.TrimSuffix(parent, "/")) {
		return false
	}
	for _, def := range DefaultFolders {
		if name == def {
			return true
		}
	}
	return false
}

// ValidateName checks that name is a single, non-empty path segment
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("name cannot be empty")
	case name == "." || name == "..":
		return fmt.Errorf("name cannot be %q", name)
	case strings.ContainsAny(name, "/\\"):
		return fmt.Errorf("name cannot contain path separators")
	case strings.ContainsRune(name, 0):
		return fmt.Errorf("name cannot contain NUL")
	}
	return nil
}

// ValidateUsername checks that a username is usable as a home folder name
func ValidateUsername(username string) error {
	if err := ValidateName(username); err != nil {
		return fmt.Errorf("invalid username: %w", err)
	}
	return nil
}
