package db

import (
	"valora/internal/models"
)

func AutoMigrate(db *DB) error {
	if db == nil || db.Gorm == nil || db.SQL == nil {
		return nil
	}

	return db.Gorm.AutoMigrate(
		&models.Lead{},
		&models.LeadStatusChange{},
		&models.CompanyValuation{},
		&models.SectorMultiple{},
		&models.Fase0Document{},
		&models.WorkflowRule{},
		&models.SystemSetting{},
	)
}
