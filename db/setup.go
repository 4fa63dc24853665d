package db

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/thakurankit00/mayfair-vercel-test2-sub000/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the postgres pool. The handle is owned by main and passed to
// every component that needs it.
func Connect(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	db, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping DB: %w", err)
	}

	return db, nil
}

// Config is shared with the sqlite test database so unique violations are
// translated to gorm.ErrDuplicatedKey on both drivers.
func Config() *gorm.Config {
	return configWith(os.Stderr)
}

// configWith logs slow queries and failures to out. Lookups that simply find
// nothing are part of normal flow and stay quiet.
func configWith(out io.Writer) *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger: logger.New(log.New(out, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func Migrate(db *gorm.DB) error {
	models := []interface{}{
		&models.User{},
		&models.Restaurant{},
		&models.KitchenStaff{},
		&models.RestaurantKitchen{},
		&models.Table{},
		&models.Reservation{},
		&models.MenuCategory{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.KitchenAcknowledgement{},
		&models.Notification{},
	}

	for _, model := range models {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}

	return nil
}
