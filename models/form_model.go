package models

import (
	"form-builder/controllers/idgen"
	"form-builder/types"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type FormStatus string

const (
	FormStatusDraft     FormStatus = "draft"
	FormStatusPublished FormStatus = "published"
	FormStatusArchived  FormStatus = "archived"
)

func (s FormStatus) Valid() bool {
	switch s {
	case FormStatusDraft, FormStatusPublished, FormStatusArchived:
		return true
	}
	return false
}

// Form keeps its field definitions, settings and styling as opaque JSON
// documents owned by the front-end.
type Form struct {
	ID           types.SnowflakeID           `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name         string                      `json:"name" gorm:"size:255;not null"`
	Description  string                      `json:"description"`
	Fields       datatypes.JSON              `json:"fields"`
	Settings     datatypes.JSON              `json:"settings"`
	Styling      datatypes.JSON              `json:"styling"`
	Status       FormStatus                  `json:"status" gorm:"size:16;not null"`
	NotifyEmails datatypes.JSONSlice[string] `json:"notifyEmails"`
	CreatedBy    string                      `json:"createdBy"`
	UpdatedBy    string                      `json:"updatedBy"`
	CreatedAt    time.Time                   `json:"createdAt"`
	UpdatedAt    time.Time                   `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt              `json:"-" gorm:"index"`
}

func (f *Form) BeforeCreate(tx *gorm.DB) error {
	if f.ID == 0 {
		f.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}

type FormResponse struct {
	ID          types.SnowflakeID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	FormID      types.SnowflakeID `json:"formId" gorm:"index;not null"`
	Answers     datatypes.JSON    `json:"answers"`
	SubmittedBy string            `json:"submittedBy"`
	SubmittedAt time.Time         `json:"submittedAt"`
	CreatedAt   time.Time         `json:"createdAt"`
	DeletedAt   gorm.DeletedAt    `json:"-" gorm:"index"`
}

func (r *FormResponse) BeforeCreate(tx *gorm.DB) error {
	if r.ID == 0 {
		r.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return nil
}
