package model

import (
	"github.com/Laisky/errors/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"
)

// SetupTestDatabase points the package at a fresh in-memory SQLite database.
// Shared by the package's own tests and by higher-level suites that need a
// seeded repository.
func SetupTestDatabase() error {
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: glogger.Default.LogMode(glogger.Silent),
	})
	if err != nil {
		return errors.Wrap(err, "open in-memory sqlite")
	}
	// one connection keeps every session on the same memory database
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	DB = db
	if err = migrateDB(); err != nil {
		return err
	}
	// the shared-cache database survives reopen within a process
	for _, table := range []string{"model_config", "quota_stat", "operation_log"} {
		if err = DB.Exec("DELETE FROM " + table).Error; err != nil {
			return errors.Wrapf(err, "truncate %s", table)
		}
	}
	return nil
}
