package dbhelper

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB, model interface{}) error {
	if err := db.AutoMigrate(model); err != nil {
		log.WithError(err).Errorf("Error while migrating %T", model)
		return fmt.Errorf("migrate %T: %w", model, err)
	}
	return nil
}
