package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GriffinCanCode/panelfs/backend/internal/api/middleware"
	"github.com/GriffinCanCode/panelfs/backend/internal/domain/protected"
	"github.com/GriffinCanCode/panelfs/backend/internal/domain/resolver"
	"github.com/GriffinCanCode/panelfs/backend/internal/domain/users"
	"github.com/GriffinCanCode/panelfs/backend/internal/gateway"
	"github.com/GriffinCanCode/panelfs/backend/internal/providers/filesystem"
	"github.com/GriffinCanCode/panelfs/backend/internal/shared/types"
)

const admin = users.BootstrapAdminID

type testAPI struct {
	router *gin.Engine
	root   string
	alice  string
	idCfg  middleware.IdentityConfig
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	root := filepath.Join(dir, "storage")
	store, err := users.NewStore(filepath.Join(dir, "users.json"), root, users.WithBcryptCost(bcrypt.MinCost))
	require.NoError(t, err)
	require.NoError(t, store.EnsureLayout())
	alice, err := store.Create(users.NewUser{Username: "alice", Password: "wonderland"})
	require.NoError(t, err)

	registry, err := protected.NewRegistry(filepath.Join(dir, "folders.json"))
	require.NoError(t, err)
	res := resolver.New(root, []string{})

	gw, err := gateway.New(gateway.Deps{
		Resolver: res,
		Users:    store,
		Registry: registry,
		Engine:   filesystem.New(res, nil),
	})
	require.NoError(t, err)

	idCfg := middleware.IdentityConfig{Secret: "test-secret", TrustHeader: true}
	h := NewHandlers(gw, store, Options{Identity: idCfg, MaxUploadBytes: 1 << 20}, nil)

	router := gin.New()
	h.Register(router, middleware.Identity(idCfg, nil))

	return &testAPI{router: router, root: res.Root(), alice: alice.ID, idCfg: idCfg}
}

func (a *testAPI) do(t *testing.T, method, target, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set(middleware.HeaderUserID, userID)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) write(t *testing.T, rel, content string) {
	t.Helper()
	p := filepath.Join(a.root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, w)["status"])
}

func TestMissingIdentityIs401(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/files?path=/shared", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnknownUserIs403(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/files?path=/shared", "ghost", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "unauthorized", decode[map[string]any](t, w)["kind"])
}

func TestListDirectory(t *testing.T) {
	api := newTestAPI(t)
	api.write(t, "shared/report.txt", "hello")

	w := api.do(t, http.MethodGet, "/api/files?path=/shared", api.alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	entries := decode[[]types.FileEntry](t, w)
	require.Len(t, entries, 1)
	assert.Equal(t, "report.txt", entries[0].Name)
	assert.Equal(t, "/shared/report.txt", entries[0].ID)
	assert.Equal(t, int64(5), entries[0].Size)

	w = api.do(t, http.MethodGet, "/api/files?path=/shared/report.txt", api.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, decode[types.FileEntry](t, w).IsDir)

	w = api.do(t, http.MethodGet, "/api/files?path=/", api.alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodGet, "/api/files?path=/shared/none", api.alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/files?path=/shared&action=explode", api.alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadAndView(t *testing.T) {
	api := newTestAPI(t)
	api.write(t, "shared/logo.png", "png-bytes")

	w := api.do(t, http.MethodGet, "/api/files?path=/shared/logo.png&action=download", api.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "png-bytes", w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "9", w.Header().Get("Content-Length"))
	assert.Equal(t, `attachment; filename=logo.png`, w.Header().Get("Content-Disposition"))

	w = api.do(t, http.MethodGet, "/api/files?path=/shared/logo.png&action=view", api.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `inline; filename=logo.png`, w.Header().Get("Content-Disposition"))

	w = api.do(t, http.MethodGet, "/api/files?path=/shared&action=download", api.alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDetails(t *testing.T) {
	api := newTestAPI(t)
	api.write(t, "shared/docs/a.txt", "aaa")
	api.write(t, "shared/docs/b.txt", "bb")

	w := api.do(t, http.MethodGet, "/api/files?path=/shared/docs&action=details", api.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	details := decode[types.EntryDetails](t, w)
	assert.True(t, details.IsDir)
	assert.Equal(t, int64(5), details.TotalSize)
	assert.Equal(t, int64(2), details.ItemCount)
}

func TestSearch(t *testing.T) {
	api := newTestAPI(t)
	api.write(t, "shared/notes/today.md", "x")
	api.write(t, "shared/notes/old/yesterday.md", "y")
	api.write(t, "shared/todo.txt", "z")

	w := api.do(t, http.MethodGet, "/api/files?path=/shared&action=search&pattern=*.md", api.alice, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	found := decode[[]types.FileEntry](t, w)
	require.Len(t, found, 2)
	assert.Equal(t, "/shared/notes/old/yesterday.md", found[0].ID)

	w = api.do(t, http.MethodGet, "/api/files?path=/shared&action=search&pattern=*&limit=1", api.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.FileEntry](t, w), 1)

	w = api.do(t, http.MethodGet, "/api/files?path=/shared&action=search", api.alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodGet, "/api/files?path=/users&action=search&pattern=*", api.alice, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestFileActions(t *testing.T) {
	api := newTestAPI(t)
	home := "/users/alice/Documents"

	w := api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "create_folder", "path": home, "name": "Notes"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "create_folder", "path": home, "name": "Notes"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "write_file", "path": home + "/Notes/todo.txt", "content": "milk"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "read_file", "path": home + "/Notes/todo.txt"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "milk", decode[map[string]string](t, w)["content"])

	w = api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "rename", "path": home + "/Notes/todo.txt", "name": "done.txt"})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "copy", "path": home + "/Notes/done.txt", "destination": "/shared/done.txt"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "move", "path": home + "/Notes/done.txt", "destination": "/public/done.txt"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.FileExists(t, filepath.Join(api.root, "public", "done.txt"))

	w = api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "write_file", "path": home + "/x.txt"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "copy", "path": home})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "teleport", "path": home})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "read_file"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateFolderAtHomeRoot(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "create_folder", "path": "/users/alice", "name": "NewThing"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodPost, "/api/files", admin, gin.H{"action": "create_folder", "path": "/users", "name": "mallory"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "protected", decode[map[string]any](t, w)["kind"])
}

func TestZipAndUnzip(t *testing.T) {
	api := newTestAPI(t)
	api.write(t, "shared/project/main.go", "package main")

	w := api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "zip", "path": "/shared/project"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Equal(t, "project.zip", body["file"])
	assert.Equal(t, "/shared/project.zip", body["path"])

	require.NoError(t, os.RemoveAll(filepath.Join(api.root, "shared", "project")))

	w = api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "unzip", "path": "/shared/project.zip"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.FileExists(t, filepath.Join(api.root, "shared", "project", "main.go"))

	w = api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "zip", "path": "/shared", "targets": []string{"project.zip"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Archive.zip", decode[map[string]any](t, w)["file"])
}

func TestUpload(t *testing.T) {
	api := newTestAPI(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("path", "/shared"))
	part, err := mw.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.HeaderUserID, api.alice)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data, err := os.ReadFile(filepath.Join(api.root, "shared", "photo.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	// missing path field
	buf.Reset()
	mw = multipart.NewWriter(&buf)
	part, err = mw.CreateFormFile("file", "photo.jpg")
	require.NoError(t, err)
	_, _ = part.Write([]byte("jpeg"))
	require.NoError(t, mw.Close())

	req = httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set(middleware.HeaderUserID, api.alice)
	w = httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAndProtection(t *testing.T) {
	api := newTestAPI(t)
	api.write(t, "shared/Team/plan.txt", "p")
	api.write(t, "shared/tmp.txt", "t")

	w := api.do(t, http.MethodPost, "/api/folders/config", api.alice, []types.ProtectedPath{{Path: "/shared/Team"}})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodPost, "/api/folders/config", admin, []types.ProtectedPath{{Path: "/shared/Team", DisplayName: "Team"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = api.do(t, http.MethodGet, "/api/folders/config", api.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]types.ProtectedPath](t, w), 1)

	w = api.do(t, http.MethodDelete, "/api/files?path=/shared/Team", admin, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "protected", decode[map[string]any](t, w)["kind"])

	w = api.do(t, http.MethodDelete, "/api/files?path=/shared/tmp.txt", api.alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodDelete, "/api/files?path=/shared/tmp.txt", api.alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodDelete, "/api/files", api.alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkEndpoints(t *testing.T) {
	api := newTestAPI(t)
	api.write(t, "shared/a.txt", "a")
	api.write(t, "shared/b.txt", "b")

	w := api.do(t, http.MethodPost, "/api/files/copy", api.alice, gin.H{
		"paths":       []string{"/shared/a.txt", "/shared/b.txt"},
		"destination": "/users/alice/Documents",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode[map[string]any](t, w)["success"])

	w = api.do(t, http.MethodPost, "/api/files/delete", api.alice, gin.H{
		"paths": []string{"/shared/a.txt", "/"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, float64(1), body["succeeded"])
	assert.Len(t, body["failures"], 1)

	w = api.do(t, http.MethodPost, "/api/files/move", api.alice, gin.H{"paths": []string{"/shared/b.txt"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFolderEndpoints(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodGet, "/api/folders", api.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	grants := decode[[]types.FolderGrant](t, w)
	assert.NotEmpty(t, grants)

	w = api.do(t, http.MethodPost, "/api/folders/check", api.alice, gin.H{"path": "/shared/new"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decode[map[string]any](t, w)["exists"])

	w = api.do(t, http.MethodPut, "/api/folders/check", api.alice, gin.H{"path": "/shared/new/deeper"})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodPost, "/api/folders/check", api.alice, gin.H{"path": "/shared/new/deeper"})
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, true, body["exists"])
	assert.Equal(t, true, body["isDirectory"])

	w = api.do(t, http.MethodPost, "/api/folders/check", api.alice, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestOperationsAndDrives(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/files", api.alice, gin.H{"action": "write_file", "path": "/shared/x.txt", "content": "x"})
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/operations", api.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	ops := decode[[]types.Operation](t, w)
	require.Len(t, ops, 1)
	assert.Equal(t, types.StatusDone, ops[0].Status)

	w = api.do(t, http.MethodGet, "/api/operations/"+ops[0].ID, api.alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(t, http.MethodGet, "/api/operations/"+ops[0].ID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = api.do(t, http.MethodGet, "/api/drives", api.alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "nobody", "password": "x"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "wonderland"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := decode[map[string]any](t, w)["token"].(string)
	require.NotEmpty(t, token)

	req := httptest.NewRequest(http.MethodGet, "/api/folders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
