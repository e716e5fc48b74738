// Package users is the durable user registry consumed by the file gateway.
//
// The registry is a single document holding every user record. Every lookup reads the
// document again, so grant changes made by an administrator apply on the next request.
package users

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/GriffinCanCode/panelfs/backend/internal/infrastructure/docstore"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/id"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/paths"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("username already taken")
	ErrInvalidRole  = errors.New("invalid role")
)

// Bootstrap admin credentials written when the registry does not exist yet
const (
	BootstrapAdminID       = "1"
	BootstrapAdminUsername = "admin"
	BootstrapAdminPassword = "admin"
)

// User is a persisted user record
type User struct {
	ID           string              `json:"id" yaml:"id" toml:"id"`
	Username     string              `json:"username" yaml:"username" toml:"username"`
	PasswordHash string              `json:"password" yaml:"password" toml:"password"`
	Role         types.Role          `json:"role" yaml:"role" toml:"role"`
	Folders      []types.FolderGrant `json:"folders" yaml:"folders" toml:"folders"`
	Wallpaper    string              `json:"wallpaper,omitempty" yaml:"wallpaper,omitempty" toml:"wallpaper,omitempty"`
}

// Identity projects the record onto the gateway's view of a caller
func (u User) Identity() types.Identity {
	grants := make([]types.FolderGrant, len(u.Folders))
	copy(grants, u.Folders)
	return types.Identity{ID: u.ID, Username: u.Username, Role: u.Role, Grants: grants}
}

// NewUser holds the fields for Create
type NewUser struct {
	Username  string
	Password  string
	Role      types.Role
	Folders   []types.FolderGrant
	Wallpaper string
}

// Patch holds optional fields for Update; nil fields are left untouched
type Patch struct {
	Role      *types.Role
	Folders   *[]types.FolderGrant
	Wallpaper *string
	Password  *string
}

// Store is the user registry repository
type Store struct {
	doc         *docstore.Document[[]User]
	storageRoot string
	cost        int
	logger      *zap.Logger
}

// Option configures a Store
type Option func(*Store)

// WithBcryptCost overrides the password hashing cost
func WithBcryptCost(cost int) Option {
	return func(s *Store) { s.cost = cost }
}

// WithLogger attaches a logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore opens the registry document at path. storageRoot is the physical internal
// root in which user home folders are provisioned.
func NewStore(path, storageRoot string, opts ...Option) (*Store, error) {
	s := &Store{storageRoot: storageRoot, cost: bcrypt.DefaultCost, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(BootstrapAdminPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash bootstrap password: %w", err)
	}

	seed := func() []User {
		return []User{{
			ID:           BootstrapAdminID,
			Username:     BootstrapAdminUsername,
			PasswordHash: string(hash),
			Role:         types.RoleAdmin,
			Folders:      []types.FolderGrant{{Path: paths.Root, DisplayName: "Root", IsVolumeRoot: true}},
		}}
	}

	doc, err := docstore.Open(path, seed)
	if err != nil {
		return nil, err
	}
	s.doc = doc
	return s, nil
}

// EnsureLayout creates the standard internal directories
func (s *Store) EnsureLayout() error {
	for _, dir := range paths.StandardDirectories() {
		full := filepath.Join(s.storageRoot, filepath.FromSlash(dir))
		if err := os.MkdirAll(full, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Load returns every user record
func (s *Store) Load() ([]User, error) {
	return s.doc.Load()
}

// Save replaces every user record
func (s *Store) Save(all []User) error {
	return s.doc.Save(all)
}

// Get returns the user with the given id
func (s *Store) Get(userID string) (*User, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == userID {
			return &all[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// GetByUsername returns the user with the given username
func (s *Store) GetByUsername(username string) (*User, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Username == username {
			return &all[i], nil
		}
	}
	return nil, ErrUserNotFound
}

// Identity loads the current identity for a user id
func (s *Store) Identity(userID string) (types.Identity, error) {
	u, err := s.Get(userID)
	if err != nil {
		return types.Identity{}, err
	}
	return u.Identity(), nil
}

// DefaultGrants returns the folders a new user gets when none are given
func DefaultGrants(username string) []types.FolderGrant {
	home := paths.UserHome(username)
	grants := []types.FolderGrant{{Path: home, DisplayName: "Home", Icon: "folder"}}
	for _, name := range paths.DefaultFolders {
		grants = append(grants, types.FolderGrant{
			Path:        home + "/" + name,
			DisplayName: name,
			Icon:        iconFor(name),
		})
	}
	return append(grants,
		types.FolderGrant{Path: paths.Shared, DisplayName: "Shared", Icon: "folder"},
		types.FolderGrant{Path: paths.Public, DisplayName: "Public", Icon: "folder"},
	)
}

func iconFor(folder string) string {
	switch folder {
	case "Documents":
		return "documents"
	case "Downloads":
		return "downloads"
	case "Pictures":
		return "pictures"
	case "Music":
		return "music"
	case "Videos":
		return "videos"
	}
	return "folder"
}

// Create registers a user and provisions their home folder
func (s *Store) Create(in NewUser) (*User, error) {
	if err := paths.ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = types.RoleUser
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	folders := in.Folders
	if len(folders) == 0 {
		folders = DefaultGrants(in.Username)
	}

	user := User{
		ID:           id.NewUserID().String(),
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         in.Role,
		Folders:      folders,
		Wallpaper:    in.Wallpaper,
	}

	_, err = s.doc.Update(func(all *[]User) (bool, error) {
		for _, u := range *all {
			if u.Username == in.Username {
				return false, ErrUserExists
			}
		}
		*all = append(*all, user)
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	// A failed home provisioning does not undo the registration.
	if err := s.provisionHome(in.Username); err != nil {
		s.logger.Error("Failed to provision user home",
			zap.String("username", in.Username),
			zap.Error(err),
		)
	}

	return &user, nil
}

func (s *Store) provisionHome(username string) error {
	if err := s.EnsureLayout(); err != nil {
		return err
	}
	for _, dir := range paths.UserDefaultFolders(username) {
		full := filepath.Join(s.storageRoot, filepath.FromSlash(dir))
		if err := os.MkdirAll(full, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Update applies a patch to the user with the given id
func (s *Store) Update(userID string, patch Patch) (*User, error) {
	var hash string
	if patch.Password != nil {
		h, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), s.cost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = string(h)
	}
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, ErrInvalidRole
	}

	var updated User
	_, err := s.doc.Update(func(all *[]User) (bool, error) {
		for i := range *all {
			u := &(*all)[i]
			if u.ID != userID {
				continue
			}
			if patch.Role != nil {
				u.Role = *patch.Role
			}
			if patch.Folders != nil {
				u.Folders = *patch.Folders
			}
			if patch.Wallpaper != nil {
				u.Wallpaper = *patch.Wallpaper
			}
			if hash != "" {
				u.PasswordHash = hash
			}
			updated = *u
			return true, nil
		}
		return false, ErrUserNotFound
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// SetPassword replaces a user's password
func (s *Store) SetPassword(userID, password string) error {
	_, err := s.Update(userID, Patch{Password: &password})
	return err
}

// Delete removes the user with the given id. Home folders are kept.
func (s *Store) Delete(userID string) error {
	_, err := s.doc.Update(func(all *[]User) (bool, error) {
		for i := range *all {
			if (*all)[i].ID == userID {
				*all = append((*all)[:i], (*all)[i+1:]...)
				return true, nil
			}
		}
		return false, ErrUserNotFound
	})
	return err
}

// VerifyPassword checks a plaintext password against the stored hash
func VerifyPassword(u *User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
