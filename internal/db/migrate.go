package db

import (
	"fmt"

	"github.com/waichatt/console/internal/models"
	"gorm.io/gorm"
)

// Migrate applies the schema and seeds reference data.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.Plan{},
		&models.Client{},
		&models.User{},
		&models.Payment{},
		&models.Service{},
		&models.Expense{},
		&models.BlogPost{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if errSeed := ensureDefaultPlans(conn); errSeed != nil {
		return errSeed
	}
	return nil
}

// ensureDefaultPlans seeds the three platform plans when the table is empty.
// Plans are reference data; existing rows are never touched.
func ensureDefaultPlans(conn *gorm.DB) error {
	var count int64
	if errCount := conn.Model(&models.Plan{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("db: count plans: %w", errCount)
	}
	if count > 0 {
		return nil
	}

	plans := []models.Plan{
		{Name: "Plan Inicial", Price: 45000, IncludedMessages: 1000},
		{Name: "Plan Pro", Price: 80000, IncludedMessages: 5000},
		{Name: "Plan Empresarial", Price: 150000, IncludedMessages: 14000},
	}
	if errCreate := conn.Create(&plans).Error; errCreate != nil {
		return fmt.Errorf("db: seed plans: %w", errCreate)
	}
	return nil
}
