package repositories

import (
	"context"
	"encoding/json"
	"form-builder/models"
	"time"

	"gorm.io/gorm"
)

// InsertTransactionHistory records one audit entry. detail is marshalled
// to JSON.
func InsertTransactionHistory(ctx context.Context, db *gorm.DB, refNo, status, txType string, detail interface{}, actor string) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return err
	}

	history := models.TransactionHistory{
		RefNo:     refNo,
		Status:    status,
		Type:      txType,
		Detail:    string(raw),
		CreatedAt: time.Now(),
		CreatedBy: actor,
	}
	return db.WithContext(ctx).Create(&history).Error
}

// ListTransactionHistory returns entries for refNo, newest first.
func ListTransactionHistory(ctx context.Context, db *gorm.DB, txType, refNo string) ([]models.TransactionHistory, error) {
	var out []models.TransactionHistory
	err := db.WithContext(ctx).
		Where("type = ? AND ref_no = ?", txType, refNo).
		Order("created_at desc").
		Order("id desc").
		Find(&out).Error
	return out, err
}
