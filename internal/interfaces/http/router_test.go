package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clarion/internal/application/matrix"
	roleapp "clarion/internal/application/role"
	"clarion/internal/domain/catalog"
	"clarion/internal/domain/role"
	"clarion/internal/shared/config"
	"clarion/internal/shared/logger"
)

type memoryStore struct {
	roles   map[string]*role.Role
	saveErr error
}

func (s *memoryStore) Load(_ context.Context) (map[string]*role.Role, error) {
	out := make(map[string]*role.Role, len(s.roles))
	for id, r := range s.roles {
		out[id] = r
	}
	return out, nil
}

func (s *memoryStore) Save(_ context.Context, roles map[string]*role.Role) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.roles = make(map[string]*role.Role, len(roles))
	for id, r := range roles {
		s.roles[id] = r
	}
	return nil
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

type roleBody struct {
	ID              string                     `json:"id"`
	Name            string                     `json:"name"`
	Description     string                     `json:"description"`
	DescriptionHTML string                     `json:"description_html"`
	Permissions     map[string]map[string]map[string]bool `json:"permissions"`
	IsSystemRole    bool                       `json:"is_system_role"`
	CoreCount       struct{ Granted, Total int }          `json:"core_count"`
	FullCount       struct{ Granted, Total int }          `json:"full_count"`
}

type testEnv struct {
	engine *gin.Engine
	store  *memoryStore
	roles  *roleapp.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewLoggerWithSlog(slog.New(slog.NewTextHandler(io.Discard, nil)))
	store := &memoryStore{roles: make(map[string]*role.Role)}

	cat := catalog.Default()
	roleService := roleapp.NewService(cat, store, log)
	require.NoError(t, roleService.Initialize(context.Background()))

	router := NewRouter(
		&config.ServerConfig{AllowedOrigins: []string{"http://localhost:5173"}},
		cat,
		roleService,
		matrix.NewService(cat),
		log,
	)

	return &testEnv{engine: router.Engine(), store: store, roles: roleService}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "response was not JSON: %s", w.Body.String())
	return w, resp
}

func viewPermissions() map[string]map[string]map[string]bool {
	return map[string]map[string]map[string]bool{
		"incident_management": {
			"Safety Event": {"view_safety_events": true},
		},
	}
}

func (e *testEnv) createRole(t *testing.T, name string) roleBody {
	t.Helper()
	w, resp := e.do(t, http.MethodPost, "/api/roles", gin.H{
		"name":        name,
		"permissions": viewPermissions(),
	})
	require.Equal(t, http.StatusCreated, w.Code, "create failed: %s", w.Body.String())

	var created roleBody
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	return created
}

func TestListRoles(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodGet, "/api/roles", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var roles []roleBody
	require.NoError(t, json.Unmarshal(resp.Data, &roles))
	require.Len(t, roles, 4)
	assert.Equal(t, "Administrator", roles[0].Name)
	for _, r := range roles {
		assert.True(t, r.IsSystemRole)
	}
}

func TestListRolesOrdersSystemFirst(t *testing.T) {
	env := newTestEnv(t)
	env.createRole(t, "aardvark wrangler")

	w, resp := env.do(t, http.MethodGet, "/api/roles", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var roles []roleBody
	require.NoError(t, json.Unmarshal(resp.Data, &roles))
	require.Len(t, roles, 5)
	assert.True(t, roles[3].IsSystemRole, "system roles must precede custom roles")
	assert.Equal(t, "aardvark wrangler", roles[4].Name)
}

func TestCreateRole(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodPost, "/api/roles", gin.H{
		"name":        "Inspector",
		"description": "Walks the **floor** daily.",
		"permissions": viewPermissions(),
		"created_by":  "user_1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created roleBody
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.True(t, strings.HasPrefix(created.ID, "role_"))
	assert.Equal(t, "Inspector", created.Name)
	assert.Contains(t, created.DescriptionHTML, "<strong>floor</strong>")
	assert.False(t, created.IsSystemRole)
	assert.Equal(t, 1, created.CoreCount.Granted)
	assert.Equal(t, created.CoreCount.Total, catalog.Default().LeafCount(false))

	assert.Contains(t, env.store.roles, created.ID, "create must persist the collection")
}

func TestCreateRoleValidation(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing name", gin.H{"permissions": viewPermissions()}},
		{"name too short", gin.H{"name": "ab", "permissions": viewPermissions()}},
		{"duplicate of system role", gin.H{"name": "administrator", "permissions": viewPermissions()}},
		{"no permissions", gin.H{"name": "Inspector", "permissions": gin.H{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := env.do(t, http.MethodPost, "/api/roles", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.False(t, resp.Success)

			// The rejected role never entered the collection.
			assert.Len(t, env.roles.List(), 4)
			assert.Len(t, env.store.roles, 4)
		})
	}
}

func TestGetRole(t *testing.T) {
	env := newTestEnv(t)
	created := env.createRole(t, "Inspector")

	w, resp := env.do(t, http.MethodGet, "/api/roles/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var got roleBody
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, created.ID, got.ID)

	w, _ = env.do(t, http.MethodGet, "/api/roles/role_missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateRole(t *testing.T) {
	env := newTestEnv(t)
	created := env.createRole(t, "Inspector")

	w, resp := env.do(t, http.MethodPut, "/api/roles/"+created.ID, gin.H{
		"name":        "Lead Inspector",
		"permissions": viewPermissions(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var updated roleBody
	require.NoError(t, json.Unmarshal(resp.Data, &updated))
	assert.Equal(t, "Lead Inspector", updated.Name)
}

func TestUpdateRoleKeepsOwnName(t *testing.T) {
	env := newTestEnv(t)
	created := env.createRole(t, "Inspector")

	// Saving under the unchanged name must not flag a duplicate.
	w, _ := env.do(t, http.MethodPut, "/api/roles/"+created.ID, gin.H{
		"name":        "Inspector",
		"permissions": viewPermissions(),
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUpdateSystemRoleForbidden(t *testing.T) {
	env := newTestEnv(t)
	admin := env.systemRole(t, "Administrator")

	w, _ := env.do(t, http.MethodPut, "/api/roles/"+admin.ID, gin.H{
		"name":        "Renamed",
		"permissions": viewPermissions(),
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDeleteRole(t *testing.T) {
	env := newTestEnv(t)
	created := env.createRole(t, "Inspector")

	w, _ := env.do(t, http.MethodDelete, "/api/roles/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/roles/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSystemRoleForbidden(t *testing.T) {
	env := newTestEnv(t)
	viewer := env.systemRole(t, "Viewer")

	w, _ := env.do(t, http.MethodDelete, "/api/roles/"+viewer.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestDuplicateRole(t *testing.T) {
	env := newTestEnv(t)
	admin := env.systemRole(t, "Administrator")

	w, resp := env.do(t, http.MethodPost, "/api/roles/"+admin.ID+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var dup roleBody
	require.NoError(t, json.Unmarshal(resp.Data, &dup))
	assert.Equal(t, "Administrator (Copy)", dup.Name)
	assert.False(t, dup.IsSystemRole)

	w, resp = env.do(t, http.MethodPost, "/api/roles/"+admin.ID+"/duplicate", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &dup))
	assert.Equal(t, "Administrator (Copy 2)", dup.Name)
}

func TestCheckName(t *testing.T) {
	env := newTestEnv(t)
	created := env.createRole(t, "Inspector")

	w, resp := env.do(t, http.MethodGet, "/api/roles/check-name?name=inspector", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var check struct {
		Duplicate bool `json:"duplicate"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &check))
	assert.True(t, check.Duplicate)

	w, resp = env.do(t, http.MethodGet, "/api/roles/check-name?name=Inspector&exclude_id="+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &check))
	assert.False(t, check.Duplicate)

	w, _ = env.do(t, http.MethodGet, "/api/roles/check-name", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStoreWriteFailureStillReturnsRole(t *testing.T) {
	env := newTestEnv(t)
	env.store.saveErr = errors.New("disk full")

	w, resp := env.do(t, http.MethodPost, "/api/roles", gin.H{
		"name":        "Inspector",
		"permissions": viewPermissions(),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, resp.Message, "could not be persisted")

	var created roleBody
	require.NoError(t, json.Unmarshal(resp.Data, &created))

	// The role is live for the session despite the failed write.
	w, _ = env.do(t, http.MethodGet, "/api/roles/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetCatalog(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodGet, "/api/catalog", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Version string `json:"version"`
		Modules []struct {
			ID string `json:"id"`
		} `json:"modules"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	assert.NotEmpty(t, body.Version)
	assert.Len(t, body.Modules, len(catalog.Default().Modules(false)))

	w, resp = env.do(t, http.MethodGet, "/api/catalog?scope=full", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &body))
	assert.Len(t, body.Modules, len(catalog.Default().Modules(true)))
}

func TestGetRoleMatrix(t *testing.T) {
	env := newTestEnv(t)
	admin := env.systemRole(t, "Administrator")

	w, resp := env.do(t, http.MethodGet, "/api/roles/"+admin.ID+"/matrix?scope=full&granularity=category", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view struct {
		Selection string `json:"selection"`
		Scope     string `json:"scope"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, "full", view.Selection)
	assert.Equal(t, "full", view.Scope)

	w, _ = env.do(t, http.MethodGet, "/api/roles/"+admin.ID+"/matrix?scope=everything", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewMatrix(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodPost, "/api/matrix/preview", gin.H{
		"permissions": viewPermissions(),
		"scope":       "core",
		"granularity": "category",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view struct {
		Selection string `json:"selection"`
		Granted   int    `json:"granted"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &view))
	assert.Equal(t, "partial", view.Selection)
	assert.Equal(t, 1, view.Granted)
}

func TestToggleEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodPost, "/api/matrix/toggle", gin.H{
		"permissions": gin.H{},
		"node":        gin.H{"kind": "module", "module": "incident_management"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var toggled struct {
		Selection   string                                `json:"selection"`
		Permissions map[string]map[string]map[string]bool `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &toggled))
	assert.Equal(t, "full", toggled.Selection)
	assert.True(t, toggled.Permissions["incident_management"]["Safety Event"]["view_safety_events"])

	// Toggling the full module again clears it.
	w, resp = env.do(t, http.MethodPost, "/api/matrix/toggle", gin.H{
		"permissions": toggled.Permissions,
		"node":        gin.H{"kind": "module", "module": "incident_management"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(resp.Data, &toggled))
	assert.Equal(t, "none", toggled.Selection)
}

func TestToggleRejectsUnknownCategory(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.do(t, http.MethodPost, "/api/matrix/toggle", gin.H{
		"permissions": gin.H{},
		"node":        gin.H{"kind": "category", "module": "incident_management", "category": "banana"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNodeSelectionEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodPost, "/api/matrix/selection", gin.H{
		"permissions": viewPermissions(),
		"node":        gin.H{"kind": "module", "module": "incident_management"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var sel struct {
		Selection string `json:"selection"`
		Granted   int    `json:"granted"`
		Total     int    `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &sel))
	assert.Equal(t, "partial", sel.Selection)
	assert.Equal(t, 1, sel.Granted)
	assert.Equal(t, 11, sel.Total)
}

func (e *testEnv) systemRole(t *testing.T, name string) roleBody {
	t.Helper()
	w, resp := e.do(t, http.MethodGet, "/api/roles", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var roles []roleBody
	require.NoError(t, json.Unmarshal(resp.Data, &roles))
	for _, r := range roles {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("system role %q not found", name)
	return roleBody{}
}
