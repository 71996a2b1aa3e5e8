package migration

import (
	"fmt"

	"beautyfood-backend/entities"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\";")
	}

	for _, model := range entities.Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("error migrating %T: %w", model, err)
		}
	}

	// the stats upsert conflicts on this index
	if !db.Migrator().HasIndex(&entities.DailyBeautyStat{}, "idx_daily_stat_user_date") {
		if err := db.Migrator().CreateIndex(&entities.DailyBeautyStat{}, "idx_daily_stat_user_date"); err != nil {
			return fmt.Errorf("error creating daily stat index: %w", err)
		}
	}

	fmt.Println("Database migration complete")
	return nil
}
