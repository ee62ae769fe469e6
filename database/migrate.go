package database

import (
	"form-builder/models"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Form{},
		&models.FormResponse{},
		&models.Menu{},
		&models.TransactionHistory{},
	)
}
