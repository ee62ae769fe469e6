package database

import (
	"errors"
	"form-builder/models"
	"form-builder/types"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type seedMenu struct {
	title    string
	icon     string
	route    string
	children []seedMenu
}

var defaultMenus = []seedMenu{
	{title: "Dashboard", icon: "LayoutDashboard", route: "/"},
	{title: "Forms", icon: "FileText", route: "/forms", children: []seedMenu{
		{title: "All Forms", icon: "List", route: "/forms"},
		{title: "Responses", icon: "Inbox", route: "/forms/responses"},
	}},
	{title: "Settings", icon: "Settings", route: "/settings", children: []seedMenu{
		{title: "Menu Builder", icon: "ListTree", route: "/settings/menus"},
	}},
}

// SeedMenus inserts the default navigation when it is missing. Existing
// rows, matched by title within their sibling group, are left alone.
func SeedMenus(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		return seedLevel(tx, nil, defaultMenus)
	})
}

func seedLevel(tx *gorm.DB, parentID *types.SnowflakeID, items []seedMenu) error {
	for _, item := range items {
		var existing models.Menu
		err := siblings(tx, parentID).Where("title = ?", item.title).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			var maxOrder int
			if err := siblings(tx, parentID).Model(&models.Menu{}).
				Select("COALESCE(MAX(menu_order), -1)").Scan(&maxOrder).Error; err != nil {
				return err
			}
			existing = models.Menu{
				Title: item.title,
				Icon:  item.icon,
				Type:  models.MenuTypeStatic,
				Config: datatypes.NewJSONType(models.MenuConfig{
					Static: &models.StaticMenuConfig{Route: item.route},
				}),
				ParentID:    parentID,
				MenuOrder:   maxOrder + 1,
				Permissions: datatypes.JSONSlice[string]{},
				Roles:       datatypes.JSONSlice[string]{},
				Status:      models.MenuStatusActive,
				CreatedBy:   "seeder",
				UpdatedBy:   "seeder",
			}
			if err := tx.Create(&existing).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		if len(item.children) > 0 {
			id := existing.ID
			if err := seedLevel(tx, &id, item.children); err != nil {
				return err
			}
		}
	}
	return nil
}

func siblings(tx *gorm.DB, parentID *types.SnowflakeID) *gorm.DB {
	if parentID == nil {
		return tx.Where("parent_id IS NULL")
	}
	return tx.Where("parent_id = ?", *parentID)
}
