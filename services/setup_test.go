package services

import (
	"context"
	"fmt"
	"form-builder/database"
	"form-builder/logger"
	"form-builder/models"
	"form-builder/types"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var dbSeq int64

// newTestDB opens a private in-memory SQLite database with the full schema.
// A single connection keeps the shared-cache database alive and serializes
// transactions.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:services_%d?mode=memory&cache=shared&_foreign_keys=on", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestRegistry(t *testing.T, notifier ResponseNotifier) (*Registry, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewRegistry(db, logger.Nop(), notifier), db
}

func staticMenu(title string, parent *types.SnowflakeID) CreateMenuInput {
	return CreateMenuInput{
		Title:    title,
		Type:     models.MenuTypeStatic,
		Config:   &models.MenuConfig{Static: &models.StaticMenuConfig{Route: "/" + title}},
		ParentID: parent,
	}
}

func mustCreateMenu(t *testing.T, svc *MenuService, title string, parent *types.SnowflakeID) *models.Menu {
	t.Helper()
	menu, err := svc.CreateMenu(context.Background(), staticMenu(title, parent), "tester")
	require.NoError(t, err)
	return menu
}

func idPtr(id types.SnowflakeID) *types.SnowflakeID { return &id }

func titles(menus []*models.Menu) []string {
	out := make([]string, len(menus))
	for i, m := range menus {
		out[i] = m.Title
	}
	return out
}

func orders(menus []*models.Menu) []int {
	out := make([]int, len(menus))
	for i, m := range menus {
		out[i] = m.MenuOrder
	}
	return out
}
