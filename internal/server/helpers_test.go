package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/infrahq/unpublished/internal/access"
	"github.com/infrahq/unpublished/internal/server/data"
	"github.com/infrahq/unpublished/internal/server/models"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	driver, err := data.NewSQLiteDriver("file::memory:")
	require.NoError(t, err)

	db, err := data.NewDB(driver)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func testOptions() Options {
	options := DefaultOptions()
	options.Listen = "127.0.0.1:0"
	options.MetricsListen = "127.0.0.1:0"
	return options
}

func setupServer(t *testing.T, ops ...func(*Options)) *Server {
	t.Helper()

	options := testOptions()
	for _, op := range ops {
		op(&options)
	}

	return newServer(options, setupDB(t))
}

type fixtures struct {
	srv     *Server
	handler http.Handler

	admin    *models.User
	editor   *models.User
	reviewer *models.User
}

func setup(t *testing.T, ops ...func(*Options)) fixtures {
	t.Helper()

	gin.SetMode(gin.TestMode)

	srv := setupServer(t, ops...)
	db := srv.DB()

	require.NoError(t, data.CreateBundle(db, &models.Bundle{ID: "article", Label: "Article"}))
	require.NoError(t, data.CreateBundle(db, &models.Bundle{ID: "page", Label: "Basic Page"}))

	roles := []models.Role{
		{Name: "admins", Permissions: models.CommaSeparatedStrings{access.PermissionAdministerBundles, access.PermissionRenewToken, access.PermissionDeleteToken}},
		{Name: "editors", Permissions: models.CommaSeparatedStrings{access.PermissionKey("article")}},
		{Name: access.RoleAnonymous, Permissions: models.CommaSeparatedStrings{access.PermissionKey("article")}},
	}
	for i := range roles {
		require.NoError(t, data.CreateRole(db, &roles[i]))
	}

	f := fixtures{
		srv:      srv,
		handler:  srv.GenerateRoutes(prometheus.NewRegistry()),
		admin:    &models.User{Name: "admin", Roles: models.CommaSeparatedStrings{"admins"}},
		editor:   &models.User{Name: "editor", Roles: models.CommaSeparatedStrings{"editors"}},
		reviewer: &models.User{Name: "reviewer"},
	}

	for _, user := range []*models.User{f.admin, f.editor, f.reviewer} {
		require.NoError(t, data.CreateUser(db, user))
	}

	return f
}

// request sends a request to the API as user. A nil user sends an anonymous
// request.
func (f fixtures) request(t *testing.T, method, path string, user *models.User, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+user.Key())
	}

	resp := httptest.NewRecorder()
	f.handler.ServeHTTP(resp, req)

	return resp
}

func decode[T any](t *testing.T, resp *httptest.ResponseRecorder) T {
	t.Helper()

	var result T
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result), resp.Body.String())

	return result
}
