package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// Migrate creates or updates the tables for the given models. Each domain
// package exposes its models so the schema stays next to the code that owns it.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	log.Printf("database: migrated %d models", len(models))
	return nil
}
