package database

import (
	"spotshare/config"
	"spotshare/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error), // Only log errors, not every SQL query
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.CreditAccount{},
		&models.CreditTransaction{},
		&models.ParkingSpot{},
		&models.ParkingSession{},
		&models.HandshakeDeal{},
		&models.CreditPackage{},
		&models.Membership{},
		&models.UserMembership{},
	)
}

// SeedCatalog inserts the default credit packages and membership plans when
// the tables are empty.
func SeedCatalog(db *gorm.DB) {
	var n int64
	db.Model(&models.CreditPackage{}).Count(&n)
	if n == 0 {
		db.Create(&[]models.CreditPackage{
			{Name: "Starter", Credits: 20, PriceCents: 199, IsActive: true},
			{Name: "Regular", Credits: 60, PriceCents: 499, IsActive: true},
			{Name: "Pro", Credits: 150, PriceCents: 999, IsActive: true},
		})
	}
	db.Model(&models.Membership{}).Count(&n)
	if n == 0 {
		db.Create(&[]models.Membership{
			{Name: "Monthly", PriceCents: 299, CreditsIncluded: 30, MonthlyBonusCredits: 10, IsActive: true},
			{Name: "Yearly", PriceCents: 2499, CreditsIncluded: 60, MonthlyBonusCredits: 15, IsActive: true},
		})
	}
}
