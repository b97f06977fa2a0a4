package db

import (
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Windi-Fikriyansyah/studio_be/internal/models"
)

// Connect opens the store. driver is "postgres" (default) or "sqlite".
func Connect(driver, dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	var dialector gorm.Dialector
	switch strings.ToLower(driver) {
	case "", "postgres":
		dialector = postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true})
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(
			log.New(io.Discard, "", log.LstdFlags),
			gormlogger.Config{LogLevel: gormlogger.Silent},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("opening db connection: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("getting sql db handle: %w", err)
	}
	if strings.EqualFold(driver, "sqlite") {
		// satu koneksi: sqlite tidak bisa menulis paralel
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return gdb, nil
}

// Models lists every table owned by the service, in migration order.
func Models() []any {
	return []any{
		&models.User{},
		&models.Profile{},
		&models.Package{},
		&models.AddOn{},
		&models.PromoCode{},
		&models.Client{},
		&models.Lead{},
		&models.ClientFeedback{},
		&models.Project{},
		&models.Revision{},
		&models.TeamMember{},
		&models.TeamProjectPayment{},
		&models.TeamPaymentRecord{},
		&models.Card{},
		&models.FinancialPocket{},
		&models.Transaction{},
		&models.RewardLedgerEntry{},
		&models.Notification{},
		&models.Contract{},
		&models.SOP{},
	}
}

func AutoMigrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a unique-constraint failure on postgres or sqlite.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || strings.Contains(msg, "UNIQUE constraint failed")
}
