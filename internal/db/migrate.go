package db

import (
	"bank_ledger/internal/domain" // Importing domain models

	"github.com/sirupsen/logrus"

	"gorm.io/driver/mysql" // MySQL driver for GORM
	"gorm.io/gorm"         // GORM ORM library
	"gorm.io/gorm/logger"  // GORM log levels
)

// Connect opens the MySQL database behind dsn
func Connect(dsn string) (*gorm.DB, error) {
	return Open(mysql.Open(dsn))
}

// Open opens a database with any gorm dialector
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	return gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn), // Only slow queries and errors
	})
}

// Migrate creates the transactions table and its account/date index if missing
func Migrate(db *gorm.DB) error {
	// AutoMigrate will create tables, missing columns and indexes
	if err := db.AutoMigrate(&domain.Transaction{}); err != nil {
		return err
	}
	logrus.Info("Migration completed.") // Log successful migration
	return nil
}
