package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"tripsplit-backend/config"
	"tripsplit-backend/models"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Connect opens the pool with lib/pq, hands it to gorm and migrates the
// ledger and stats tables.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)

	logLevel := logger.Warn
	if cfg.LogLevel == "debug" {
		logLevel = logger.Info
	}
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("database connected")

	err = db.AutoMigrate(
		&models.Trip{},
		&models.Member{},
		&models.Category{},
		&models.Wallet{},
		&models.WalletMember{},
		&models.Transaction{},
		&models.TransactionSplit{},
		&models.TripStats{},
		&models.MemberStats{},
		&models.WalletStats{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Info("database migrated")

	DB = db
	return db, nil
}
