package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDatabase opens the configured store and, when enabled, migrates the given models.
// The returned handle lives for the whole process and is shared by every request.
func InitDatabase(c AppConfig, modelDefs ...interface{}) (*gorm.DB, error) {
	dialector, err := dialectorFor(c.Database)
	if err != nil {
		return nil, err
	}

	// Derive gorm log level from the app level and keep slow-sql threshold high to reduce noise
	gLogger := logger.New(
		log.New(os.Stdout, "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             2 * time.Second,
			LogLevel:                  toGormLogLevel(c.Log.Level),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   gLogger,
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(c.Database.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.Database.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(c.Database.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(c.Database.ConnMaxIdleTime)

	// Ping at startup so network/auth problems show up before the first request
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("database ping: %w", err)
	}

	if c.Database.AutoMigrate {
		for _, model := range modelDefs {
			// Only create missing tables; existing member tables are provisioned externally
			if db.Migrator().HasTable(model) {
				continue
			}
			if err := db.AutoMigrate(model); err != nil {
				return nil, fmt.Errorf("auto migration for %T: %w", model, err)
			}
		}
	}

	return db, nil
}

func dialectorFor(d DatabaseSection) (gorm.Dialector, error) {
	switch strings.ToLower(d.Driver) {
	case "mysql":
		dsn := d.URI
		if dsn == "" {
			dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
				d.User, d.Password, d.Host, orDefault(d.Port, "3306"), d.Name)
		}
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := d.URI
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				d.Host, orDefault(d.Port, "5432"), d.User, d.Password, d.Name)
		}
		return postgres.Open(dsn), nil
	case "sqlite":
		dsn := d.URI
		if dsn == "" {
			dsn = d.Name + ".db"
		}
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", d.Driver)
	}
}

// toGormLogLevel maps application LogLevel to GORM's logger level.
func toGormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug":
		// GORM 'Info' shows SQL; use with caution
		return logger.Info
	case "info", "", "warn":
		return logger.Warn
	case "error":
		return logger.Error
	case "silent":
		return logger.Silent
	default:
		return logger.Warn
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
