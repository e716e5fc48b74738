package users

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
)

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "files-storage")
	s, err := NewStore(filepath.Join(dir, "config", "users.json"), root, WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	return s, root
}

func TestBootstrapAdmin(t *testing.T) {
	s, _ := newStore(t)

	admin, err := s.GetByUsername(BootstrapAdminUsername)
	require.NoError(t, err)
	assert.Equal(t, BootstrapAdminID, admin.ID)
	assert.Equal(t, types.RoleAdmin, admin.Role)
	assert.True(t, VerifyPassword(admin, BootstrapAdminPassword))
	assert.False(t, VerifyPassword(admin, "wrong"))
}

func TestCreateProvisionsHome(t *testing.T) {
	s, root := newStore(t)

	u, err := s.Create(NewUser{Username: "alice", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, types.RoleUser, u.Role)
	assert.NotEqual(t, "s3cret", u.PasswordHash)

	for _, name := range []string{"Documents", "Downloads", "Pictures", "Music", "Videos"} {
		info, err := os.Stat(filepath.Join(root, "users", "alice", name))
		require.NoError(t, err, name)
		assert.True(t, info.IsDir())
	}
	for _, shared := range []string{"shared", "public"} {
		_, err := os.Stat(filepath.Join(root, shared))
		assert.NoError(t, err)
	}

	id, err := s.Identity(u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)
	assert.Contains(t, id.Grants, types.FolderGrant{Path: "/users/alice", DisplayName: "Home", Icon: "folder"})
	assert.Contains(t, id.Grants, types.FolderGrant{Path: "/shared", DisplayName: "Shared", Icon: "folder"})
}

func TestCreateRejectsDuplicatesAndBadInput(t *testing.T) {
	s, _ := newStore(t)

	_, err := s.Create(NewUser{Username: "bob", Password: "x"})
	require.NoError(t, err)

	_, err = s.Create(NewUser{Username: "bob", Password: "y"})
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = s.Create(NewUser{Username: "../evil", Password: "y"})
	assert.Error(t, err)

	_, err = s.Create(NewUser{Username: "carol", Password: "y", Role: "root"})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestCreateKeepsExplicitFolders(t *testing.T) {
	s, _ := newStore(t)

	u, err := s.Create(NewUser{Username: "dave", Password: "x", Folders: []types.FolderGrant{{Path: "/shared"}}})
	require.NoError(t, err)
	assert.Equal(t, []types.FolderGrant{{Path: "/shared"}}, u.Folders)
}

func TestUpdateIsVisibleOnNextRead(t *testing.T) {
	s, _ := newStore(t)
	u, err := s.Create(NewUser{Username: "erin", Password: "x"})
	require.NoError(t, err)

	revoked := []types.FolderGrant{{Path: "/public"}}
	_, err = s.Update(u.ID, Patch{Folders: &revoked})
	require.NoError(t, err)

	id, err := s.Identity(u.ID)
	require.NoError(t, err)
	assert.Equal(t, revoked, id.Grants)

	require.NoError(t, s.SetPassword(u.ID, "new-password"))
	reloaded, err := s.Get(u.ID)
	require.NoError(t, err)
	assert.True(t, VerifyPassword(reloaded, "new-password"))

	_, err = s.Update("missing", Patch{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDelete(t *testing.T) {
	s, _ := newStore(t)
	u, err := s.Create(NewUser{Username: "frank", Password: "x"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(u.ID))
	_, err = s.Get(u.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.ErrorIs(t, s.Delete(u.ID), ErrUserNotFound)
}

func TestLegacyStringGrantsAreNormalized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.json")
	legacy := `[{"id":"9","username":"gina","password":"x","role":"user","folders":["/shared",{"path":"/public","name":"Public"}]}]`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	s, err := NewStore(path, dir, WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)

	id, err := s.Identity("9")
	require.NoError(t, err)
	assert.Equal(t, []types.FolderGrant{{Path: "/shared"}, {Path: "/public", DisplayName: "Public"}}, id.Grants)
}
