package router

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/projectdesk/internal/config"
	"github.com/iliyamo/projectdesk/internal/database/dbtest"
	"github.com/iliyamo/projectdesk/internal/middleware"
	"github.com/iliyamo/projectdesk/internal/utils"
)

const testSecret = "router-test-secret"

type server struct {
	t  *testing.T
	e  *echo.Echo
	db *sql.DB
}

func newServer(t *testing.T) *server {
	t.Helper()
	db := dbtest.Open(t)
	e := New(Options{
		Config: config.Config{
			JWTSecret:         testSecret,
			TokenTTLMin:       60,
			BcryptCost:        bcrypt.MinCost,
			AdminRoleID:       dbtest.RoleAdmin,
			SubSubmenuActions: []int{1, 2},
		},
		DB: db,
	})
	return &server{t: t, e: e, db: db}
}

func (s *server) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *server) register(handle, password string, roleID uint64) string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", "", echo.Map{
		"name": "Test", "surname": "User", "handle": handle, "password": password, "roleId": roleID,
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var out struct{ Token string }
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(s.t, out.Token)
	return out.Token
}

func itoa(id uint64) string { return strconv.FormatUint(id, 10) }

func menuIDsFrom(t *testing.T, rec *httptest.ResponseRecorder) []uint64 {
	t.Helper()
	var entries []struct {
		MenuID uint64 `json:"menuId"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	ids := make([]uint64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.MenuID)
	}
	return ids
}

func TestHealthz(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestRegisterLoginScenario(t *testing.T) {
	s := newServer(t)
	s.register("ana", "secret1", dbtest.RoleMember)

	rec := s.do(http.MethodPost, "/api/auth/login", "", echo.Map{"handle": "ana", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct{ Token string }
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	claims, err := utils.ParseAccessToken(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Handle)
	assert.Equal(t, dbtest.RoleMember, claims.RoleID)

	rec = s.do(http.MethodPost, "/api/auth/login", "", echo.Map{"handle": "ana", "password": "wrong"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")

	// Unknown handles look exactly like wrong passwords.
	unknown := s.do(http.MethodPost, "/api/auth/login", "", echo.Map{"handle": "nobody", "password": "wrong"})
	assert.Equal(t, rec.Code, unknown.Code)
	assert.Equal(t, rec.Body.String(), unknown.Body.String())

	me := s.do(http.MethodGet, "/api/me", out.Token, nil)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"handle":"ana"`)
}

func TestRegisterValidation(t *testing.T) {
	s := newServer(t)
	s.register("ana", "secret1", dbtest.RoleMember)

	cases := map[string]struct {
		body   echo.Map
		status int
	}{
		"short password": {echo.Map{"name": "A", "surname": "B", "handle": "bea", "password": "123", "roleId": 2}, http.StatusBadRequest},
		"missing role":   {echo.Map{"name": "A", "surname": "B", "handle": "bea", "password": "secret1"}, http.StatusBadRequest},
		"unknown role":   {echo.Map{"name": "A", "surname": "B", "handle": "bea", "password": "secret1", "roleId": 99}, http.StatusBadRequest},
		"taken handle":   {echo.Map{"name": "A", "surname": "B", "handle": "ana", "password": "secret1", "roleId": 2}, http.StatusConflict},
		"role as string": {echo.Map{"name": "A", "surname": "B", "handle": "bea", "password": "secret1", "roleId": "x"}, http.StatusBadRequest},
		"long password":  {echo.Map{"name": "A", "surname": "B", "handle": "bea", "password": strings.Repeat("a", 80), "roleId": 2}, http.StatusBadRequest},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			rec := s.do(http.MethodPost, "/api/auth/register", "", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestInactiveLogin(t *testing.T) {
	s := newServer(t)
	admin := s.register("root", "secret1", dbtest.RoleAdmin)
	s.register("ana", "secret1", dbtest.RoleMember)

	var id uint64
	require.NoError(t, s.db.QueryRow("SELECT id FROM users WHERE handle='ana'").Scan(&id))
	rec := s.do(http.MethodPut, "/api/users/"+itoa(id)+"/deactivate", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":0`)

	rec = s.do(http.MethodPost, "/api/auth/login", "", echo.Map{"handle": "ana", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "inactive")
}

func TestGuardedRoutes(t *testing.T) {
	s := newServer(t)
	member := s.register("ana", "secret1", dbtest.RoleMember)

	for _, path := range []string{"/api/menu/ana", "/api/menu-catalog", "/api/permissions/2", "/api/me", "/api/users"} {
		assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, path, "", nil).Code, path)
		assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, path, "forged", nil).Code, path)
	}
	for _, path := range []string{"/api/users", "/api/roles", "/api/navigation"} {
		assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, path, member, nil).Code, path)
	}
	rec := s.do(http.MethodPost, "/api/permissions", member, echo.Map{"roleId": 2, "permissions": []echo.Map{}})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMenuResolution(t *testing.T) {
	s := newServer(t)
	admin := s.register("root", "secret1", dbtest.RoleAdmin)
	ana := s.register("ana", "secret1", dbtest.RoleMember)
	bob := s.register("bob", "secret1", dbtest.RoleAuditor)
	dbtest.Grant(t, s.db, dbtest.RoleMember,
		dbtest.MenuMyProjects, dbtest.MenuMilestones, dbtest.MenuProjects, dbtest.MenuRoles, dbtest.MenuSecurity, dbtest.MenuHidden)

	rec := s.do(http.MethodGet, "/api/menu/ana", ana, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint64{dbtest.MenuSecurity, dbtest.MenuRoles, dbtest.MenuProjects, dbtest.MenuMilestones, dbtest.MenuMyProjects},
		menuIDsFrom(t, rec))

	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/menu/ana", admin, nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(http.MethodGet, "/api/menu/ana", bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/menu/bob", bob, nil).Code)
}

func TestMenuCatalog(t *testing.T) {
	s := newServer(t)
	ana := s.register("ana", "secret1", dbtest.RoleMember)

	rec := s.do(http.MethodGet, "/api/menu-catalog", ana, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []struct {
		MenuID   uint64 `json:"menuId"`
		MenuType string `json:"menuType"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 7)
	assert.Equal(t, "Menu", entries[0].MenuType)
	types := map[uint64]string{}
	for _, e := range entries {
		types[e.MenuID] = e.MenuType
	}
	assert.Equal(t, "Submenu", types[dbtest.MenuUsers])
	assert.Equal(t, "Sub-submenu", types[dbtest.MenuRoles])
}

func TestPermissionReplaceScenario(t *testing.T) {
	s := newServer(t)
	admin := s.register("root", "secret1", dbtest.RoleAdmin)
	dbtest.Grant(t, s.db, dbtest.RoleAuditor, dbtest.MenuUsers, dbtest.MenuRoles)

	rec := s.do(http.MethodGet, "/api/permissions/3", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint64{dbtest.MenuUsers, dbtest.MenuRoles}, menuIDsFrom(t, rec))

	rec = s.do(http.MethodPost, "/api/permissions", admin, echo.Map{
		"roleId": dbtest.RoleAuditor, "permissions": []echo.Map{{"menuId": dbtest.MenuMilestones}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/permissions/3", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []uint64{dbtest.MenuMilestones}, menuIDsFrom(t, rec))

	// Unknown role and unknown menu leave the set as it was.
	rec = s.do(http.MethodPost, "/api/permissions", admin, echo.Map{"roleId": 99, "permissions": []echo.Map{{"menuId": 1}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodPost, "/api/permissions", admin, echo.Map{"roleId": 3, "permissions": []echo.Map{{"menuId": 404}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodPost, "/api/permissions", admin, echo.Map{"roleId": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/permissions/3", admin, nil)
	assert.Equal(t, []uint64{dbtest.MenuMilestones}, menuIDsFrom(t, rec))

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/permissions/99", admin, nil).Code)
}

func TestRoleAdministration(t *testing.T) {
	s := newServer(t)
	admin := s.register("root", "secret1", dbtest.RoleAdmin)
	dbtest.Grant(t, s.db, dbtest.RoleAdmin, dbtest.MenuSecurity)

	rec := s.do(http.MethodPost, "/api/roles", admin, echo.Map{"name": "tester", "description": "QA"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var role struct {
		ID        uint64 `json:"id"`
		CreatedAt string `json:"createdAt"`
		CreatedBy string `json:"createdBy"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &role))
	assert.Equal(t, "root", role.CreatedBy)
	assert.Regexp(t, `^\d{2}/\d{2}/\d{4} \d{2}:\d{2}:\d{2}$`, role.CreatedAt)

	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/roles", admin, echo.Map{"name": "tester"}).Code)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/roles/"+itoa(role.ID), admin, echo.Map{"name": "qa"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/roles/999", admin, nil).Code)

	// In use by root: refused, role and permissions untouched.
	rec = s.do(http.MethodDelete, "/api/roles/1", admin, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "role is referenced")
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/api/roles/1", admin, nil).Code)
	assert.Equal(t, []uint64{dbtest.MenuSecurity}, menuIDsFrom(t, s.do(http.MethodGet, "/api/permissions/1", admin, nil)))

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/roles/"+itoa(role.ID), admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/roles/"+itoa(role.ID), admin, nil).Code)
}

func TestNavigationAdministration(t *testing.T) {
	s := newServer(t)
	admin := s.register("root", "secret1", dbtest.RoleAdmin)

	rec := s.do(http.MethodPost, "/api/navigation", admin, echo.Map{"linkName": "Home", "url": "/home", "roleId": 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusConflict, s.do(http.MethodPost, "/api/navigation", admin, echo.Map{"linkName": "H", "url": "/home", "roleId": 2}).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodPost, "/api/navigation", admin, echo.Map{"linkName": "H", "url": "/h", "roleId": 99}).Code)

	rec = s.do(http.MethodGet, "/api/navigation?search=Ho", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"url":"/home"`)

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/navigation/999", admin, echo.Map{"linkName": "H", "url": "/x", "roleId": 2}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, "/api/navigation/999", admin, nil).Code)
}

func TestUserAdministration(t *testing.T) {
	s := newServer(t)
	admin := s.register("root", "secret1", dbtest.RoleAdmin)
	s.register("ana", "secret1", dbtest.RoleMember)
	var id uint64
	require.NoError(t, s.db.QueryRow("SELECT id FROM users WHERE handle='ana'").Scan(&id))

	rec := s.do(http.MethodGet, "/api/users?search=an", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"handle":"ana"`)
	assert.NotContains(t, rec.Body.String(), "password")

	rec = s.do(http.MethodPut, "/api/users/"+itoa(id), admin, echo.Map{
		"name": "Ana", "surname": "Diaz", "handle": "ana", "password": "newpass", "roleId": dbtest.RoleAuditor,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var linked uint64
	require.NoError(t, s.db.QueryRow("SELECT role_id FROM role_user_link WHERE user_id=?", id).Scan(&linked))
	assert.Equal(t, dbtest.RoleAuditor, linked)
	assert.Equal(t, http.StatusOK, s.do(http.MethodPost, "/api/auth/login", "", echo.Map{"handle": "ana", "password": "newpass"}).Code)

	assert.Equal(t, http.StatusConflict, s.do(http.MethodPut, "/api/users/"+itoa(id), admin, echo.Map{
		"name": "Ana", "surname": "Diaz", "handle": "root", "roleId": 2,
	}).Code)

	rec = s.do(http.MethodPut, "/api/users/"+itoa(id), admin, echo.Map{
		"name": "Ana", "surname": "Diaz", "handle": "ana", "password": strings.Repeat("a", 80), "roleId": 2,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "72 bytes")

	// an edit without status leaves a deactivated account inactive
	require.Equal(t, http.StatusOK, s.do(http.MethodPut, "/api/users/"+itoa(id)+"/deactivate", admin, nil).Code)
	rec = s.do(http.MethodPut, "/api/users/"+itoa(id), admin, echo.Map{
		"name": "Ana", "surname": "Ruiz", "handle": "ana", "roleId": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var status int
	require.NoError(t, s.db.QueryRow("SELECT status FROM users WHERE id=?", id).Scan(&status))
	assert.Equal(t, 0, status)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, "/api/users/9999", admin, echo.Map{
		"name": "X", "surname": "Y", "handle": "x", "roleId": 2,
	}).Code)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/api/users/"+itoa(id), admin, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/users/"+itoa(id), admin, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/users/abc", admin, nil).Code)
}
