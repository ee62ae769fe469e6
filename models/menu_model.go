package models

import (
	"form-builder/controllers/idgen"
	"form-builder/types"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MenuType string

const (
	MenuTypeStatic  MenuType = "STATIC"
	MenuTypeDynamic MenuType = "DYNAMIC"
	MenuTypeForm    MenuType = "FORM"
)

func (t MenuType) Valid() bool {
	switch t {
	case MenuTypeStatic, MenuTypeDynamic, MenuTypeForm:
		return true
	}
	return false
}

type MenuStatus string

const (
	MenuStatusActive   MenuStatus = "active"
	MenuStatusArchived MenuStatus = "archived"
)

func (s MenuStatus) Valid() bool {
	return s == MenuStatusActive || s == MenuStatusArchived
}

// MenuConfig is the type-dependent payload of a menu node. Only the
// section matching the node type is meaningful.
type MenuConfig struct {
	Static  *StaticMenuConfig  `json:"static,omitempty"`
	Dynamic *DynamicMenuConfig `json:"dynamic,omitempty"`
	Form    *FormMenuConfig    `json:"form,omitempty"`
}

type StaticMenuConfig struct {
	Route     string `json:"route"`
	Component string `json:"component,omitempty"`
}

type DynamicMenuConfig struct {
	DataSource string `json:"dataSource"`
	Template   string `json:"template,omitempty"`
}

type FormMenuConfig struct {
	FormID   types.SnowflakeID `json:"formId"`
	ViewType string            `json:"viewType,omitempty"`
	Filters  map[string]any    `json:"filters,omitempty"`
}

type Menu struct {
	ID          types.SnowflakeID              `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Title       string                         `json:"title" gorm:"size:255;not null"`
	Icon        string                         `json:"icon"`
	Type        MenuType                       `json:"type" gorm:"size:16;not null"`
	Config      datatypes.JSONType[MenuConfig] `json:"config"`
	ParentID    *types.SnowflakeID             `json:"parentId" gorm:"index"`
	Parent      *Menu                          `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:RESTRICT"`
	MenuOrder   int                            `json:"order" gorm:"column:menu_order;not null"`
	Permissions datatypes.JSONSlice[string]    `json:"permissions"`
	Roles       datatypes.JSONSlice[string]    `json:"roles"`
	Status      MenuStatus                     `json:"status" gorm:"size:16;not null"`
	CreatedBy   string                         `json:"createdBy"`
	UpdatedBy   string                         `json:"updatedBy"`
	CreatedAt   time.Time                      `json:"createdAt"`
	UpdatedAt   time.Time                      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt                 `json:"-" gorm:"index"`
	Children    []*Menu                        `json:"children" gorm:"-"`
}

func (m *Menu) BeforeCreate(tx *gorm.DB) error {
	if m.ID == 0 {
		m.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}
