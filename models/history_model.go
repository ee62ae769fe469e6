package models

import (
	"form-builder/controllers/idgen"
	"form-builder/types"
	"time"

	"gorm.io/gorm"
)

// TransactionHistory is the audit trail of structural menu changes.
type TransactionHistory struct {
	ID        types.SnowflakeID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	RefNo     string            `json:"refNo" gorm:"index;size:32"`
	Status    string            `json:"status" gorm:"size:32"`
	Type      string            `json:"type" gorm:"size:32"`
	Detail    string            `json:"detail"`
	CreatedAt time.Time         `json:"createdAt"`
	CreatedBy string            `json:"createdBy"`
}

func (h *TransactionHistory) BeforeCreate(tx *gorm.DB) (err error) {
	if h.ID == 0 {
		h.ID = types.SnowflakeID(idgen.GenerateID())
	}
	return
}
