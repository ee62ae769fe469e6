package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"form-builder/config"
	"form-builder/database"
	"form-builder/logger"
	"form-builder/routes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq int64

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

type menuJSON struct {
	ID       string     `json:"id"`
	Title    string     `json:"title"`
	ParentID *string    `json:"parentId"`
	Order    int        `json:"order"`
	Children []menuJSON `json:"children"`
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:controllers_%d?mode=memory&cache=shared&_foreign_keys=on", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestApp(t *testing.T, db *gorm.DB) *fiber.App {
	t.Helper()
	pool := database.NewPool(func(name string) (*gorm.DB, error) {
		return nil, fmt.Errorf("tenant %s not provisioned", name)
	})
	pool.Put(config.DBName, db)

	app := routes.NewApp(logger.Nop())
	routes.SetupRoutes(app, pool, logger.Nop(), nil)
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func createMenu(t *testing.T, app *fiber.App, title string, parentID *string) menuJSON {
	t.Helper()
	body := map[string]interface{}{
		"title":  title,
		"type":   "STATIC",
		"config": map[string]interface{}{"static": map[string]string{"route": "/" + title}},
	}
	if parentID != nil {
		body["parentId"] = *parentID
	}
	status, env := call(t, app, http.MethodPost, "/api/menus", body)
	require.Equal(t, http.StatusCreated, status, env.Message)
	require.True(t, env.Success)

	var menu menuJSON
	require.NoError(t, json.Unmarshal(env.Data, &menu))
	return menu
}

func TestMenuTreeEndpoints(t *testing.T) {
	app := newTestApp(t, openTestDB(t))

	status, env := call(t, app, http.MethodGet, "/api/menus/tree", nil)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
	assert.JSONEq(t, `[]`, string(env.Data))

	root := createMenu(t, app, "Root", nil)
	a := createMenu(t, app, "A", &root.ID)
	b := createMenu(t, app, "B", &root.ID)
	assert.Equal(t, 0, a.Order)
	assert.Equal(t, 1, b.Order)
	assert.NotNil(t, a.Children)

	status, env = call(t, app, http.MethodPost, "/api/menus/reorder", map[string]interface{}{
		"parentId": root.ID,
		"menuIds":  []string{b.ID, a.ID},
	})
	require.Equal(t, http.StatusOK, status, env.Message)

	status, env = call(t, app, http.MethodGet, "/api/menus/tree", nil)
	require.Equal(t, http.StatusOK, status)
	var tree []menuJSON
	require.NoError(t, json.Unmarshal(env.Data, &tree))
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 2)
	assert.Equal(t, "B", tree[0].Children[0].Title)
	assert.Equal(t, "A", tree[0].Children[1].Title)

	status, env = call(t, app, http.MethodGet, "/api/menus/"+root.ID, nil)
	require.Equal(t, http.StatusOK, status)
	var got menuJSON
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "Root", got.Title)
	assert.Len(t, got.Children, 2)
}

func TestMenuErrorMapping(t *testing.T) {
	app := newTestApp(t, openTestDB(t))
	parent := createMenu(t, app, "P", nil)
	child := createMenu(t, app, "Q", &parent.ID)

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"unknown id", http.MethodGet, "/api/menus/123456", nil, http.StatusNotFound},
		{"malformed id", http.MethodGet, "/api/menus/abc", nil, http.StatusBadRequest},
		{"missing title", http.MethodPost, "/api/menus", map[string]interface{}{"type": "STATIC"}, http.StatusBadRequest},
		{"delete with children", http.MethodDelete, "/api/menus/" + parent.ID, nil, http.StatusBadRequest},
		{"move into own child", http.MethodPost, "/api/menus/" + parent.ID + "/move", map[string]interface{}{"newParentId": child.ID}, http.StatusBadRequest},
		{"move under missing parent", http.MethodPost, "/api/menus/" + child.ID + "/move", map[string]interface{}{"newParentId": "999"}, http.StatusNotFound},
		{"empty reorder", http.MethodPost, "/api/menus/reorder", map[string]interface{}{"parentId": parent.ID, "menuIds": []string{}}, http.StatusBadRequest},
		{"update unknown", http.MethodPut, "/api/menus/999", map[string]interface{}{"title": "x"}, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, env := call(t, app, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, status)
			assert.False(t, env.Success)
			assert.NotEmpty(t, env.Message)
		})
	}
}

func TestMoveAndDeleteEndpoints(t *testing.T) {
	app := newTestApp(t, openTestDB(t))
	x := createMenu(t, app, "X", nil)
	y := createMenu(t, app, "Y", &x.ID)

	status, env := call(t, app, http.MethodPost, "/api/menus/"+y.ID+"/move", map[string]interface{}{"newParentId": nil})
	require.Equal(t, http.StatusOK, status, env.Message)
	var moved menuJSON
	require.NoError(t, json.Unmarshal(env.Data, &moved))
	assert.Nil(t, moved.ParentID)

	status, env = call(t, app, http.MethodDelete, "/api/menus/"+x.ID, nil)
	require.Equal(t, http.StatusOK, status, env.Message)
	assert.True(t, env.Success)
	assert.Empty(t, env.Data)

	status, env = call(t, app, http.MethodGet, "/api/menus/"+y.ID+"/history", nil)
	require.Equal(t, http.StatusOK, status)
	var entries []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	assert.Len(t, entries, 2)
}

func TestStoreFailureReturns500(t *testing.T) {
	db := openTestDB(t)
	app := newTestApp(t, db)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	status, env := call(t, app, http.MethodGet, "/api/menus/tree", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.False(t, env.Success)
	assert.Equal(t, "internal error", env.Message)
}

func TestTenantHeader(t *testing.T) {
	saved := config.AllowedTenants
	config.AllowedTenants = []string{"acme"}
	t.Cleanup(func() { config.AllowedTenants = saved })

	app := newTestApp(t, openTestDB(t))

	req := httptest.NewRequest(http.MethodGet, "/api/menus/tree", nil)
	req.Header.Set(config.TenantHeader, "intruder")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/menus/tree", nil)
	req.Header.Set(config.TenantHeader, "acme")
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, "allowed but unprovisioned tenant")
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t, openTestDB(t))
	status, env := call(t, app, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}
