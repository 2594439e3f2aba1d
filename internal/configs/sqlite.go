package config

import (
	"log"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	model "task-tracker.com/task-tracker/pkg/models"
)

// NewDatabaseClient opens the sqlite database and migrates the schema.
func NewDatabaseClient(dsn string) *gorm.DB {
	db, err := OpenDatabase(dsn)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	return db
}

func OpenDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(withForeignKeys(dsn)), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.User{}, &model.Task{}, &model.HistoryEntry{}); err != nil {
		return nil, err
	}

	return db, nil
}

// withForeignKeys turns on foreign key enforcement for every pooled
// connection, not just the first one.
func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=1"
	}
	return dsn + "?_foreign_keys=1"
}
