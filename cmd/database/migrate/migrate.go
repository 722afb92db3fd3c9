package migration

import (
	"smart-kitchen/entities"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	models := []struct {
		name  string
		model any
	}{
		{"pantry item", &entities.PantryItem{}},
		{"recipe", &entities.Recipe{}},
		{"user content", &entities.UserContent{}},
		{"receipt scan", &entities.ReceiptScan{}},
		{"user profile", &entities.UserProfile{}},
	}

	for _, m := range models {
		if err := db.AutoMigrate(m.model); err != nil {
			log.Errorf("Error migrating %s table: %v", m.name, err)
			return err
		}
	}

	log.Info("Database migration complete")
	return nil
}
