package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"opsdash-backend/models"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// ConnectDatabase opens MySQL, sizes the pool and migrates the schema.
func ConnectDatabase(cfg DBConfig, zl zerolog.Logger) (*gorm.DB, error) {
	dsn, dbName, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:  NewGormLogger(zl, cfg.LogLevel, cfg.SlowThreshold),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("raw sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	zl.Info().Str("database", dbName).Msg("database connected and migrated")
	return db, nil
}

// Migrate runs AutoMigrate parents before children.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.TenantSetting{},
		&models.Employer{},
		&models.Retreat{},
		&models.Facility{},
		&models.Staff{},
		&models.Property{},
		&models.Appliance{},
		&models.Booking{},
		&models.Guest{},
		&models.PaymentRecord{},
		&models.Expense{},
	)
}

func mustParseDate(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(fmt.Sprintf("seed date %q: %v", value, err))
	}
	return t
}

// SeedDatabase creates a demo tenant with a retreat and an employer the first time it
// runs against an empty users table.
func SeedDatabase(db *gorm.DB, email, password string, zl zerolog.Logger) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount > 0 {
		zl.Debug().Msg("users present, skipping seed")
		return nil
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return errors.New("seed requires demo email and password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		user := models.User{
			FullName:     "Demo Operator",
			Email:        email,
			PasswordHash: string(hash),
			Vertical:     models.VerticalRetreats,
		}
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		ratio := decimal.RequireFromString("0.5")
		setting := models.TenantSetting{
			UserID:               user.ID,
			Name:                 "Bridge Retreats",
			Email:                email,
			Currency:             "USD",
			PartialPaymentRatio:  &ratio,
			DefaultPaymentMethod: models.DefaultPaymentMethod,
		}
		if err := tx.Create(&setting).Error; err != nil {
			return err
		}

		retreats := []models.Retreat{
			{
				UserID:    user.ID,
				Name:      "Spring Mindfulness Week",
				Type:      "WELLNESS",
				Location:  "Lake Atitlan",
				StartDate: mustParseDate("2027-04-05"),
				EndDate:   mustParseDate("2027-04-12"),
				Capacity:  24,
				Price:     decimal.NewFromInt(1000),
				Status:    models.RetreatStatusActive,
			},
			{
				UserID:    user.ID,
				Name:      "Leadership Offsite",
				Type:      "CORPORATE",
				Location:  "Sintra",
				StartDate: mustParseDate("2027-06-01"),
				EndDate:   mustParseDate("2027-06-04"),
				Capacity:  12,
				Price:     decimal.NewFromInt(1800),
				Status:    models.RetreatStatusDraft,
			},
		}
		if err := tx.Create(&retreats).Error; err != nil {
			return err
		}

		employer := models.Employer{
			UserID:      user.ID,
			Name:        "Northwind Traders",
			ContactName: "Ana Lopez",
			Email:       "people@northwind.example",
			Industry:    "Logistics",
		}
		if err := tx.Create(&employer).Error; err != nil {
			return err
		}

		zl.Info().Str("email", email).Msg("demo tenant seeded")
		return nil
	})
}
