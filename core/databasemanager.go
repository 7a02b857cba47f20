package core

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"vbdreport.org/vbdreport/core/models"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// DatabaseManager owns the connection pool to the canonical store.
type DatabaseManager struct {
	SqlDB    *sql.DB
	LogLevel LogLevel

	gormDB *gorm.DB
}

// New creates the pool and wraps it in GORM. TranslateError is enabled so
// unique-constraint violations surface as gorm.ErrDuplicatedKey, which the
// sync handlers rely on for idempotent replay under concurrent double-sends.
func New(dsn string, maxConnection int) (*DatabaseManager, error) {
	sqlDB, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open pool: %w", err)
	}

	sqlDB.SetMaxOpenConns(maxConnection)
	sqlDB.SetMaxIdleConns(maxConnection)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping pool: %w", err)
	}

	dm := &DatabaseManager{SqlDB: sqlDB, LogLevel: LogLevelWarn}

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         logger.Default.LogMode(dm.gormLogLevel()),
		TranslateError: true,
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	dm.gormDB = db

	return dm, nil
}

func (dm *DatabaseManager) gormLogLevel() logger.LogLevel {
	switch dm.LogLevel {
	case LogLevelError:
		return logger.Error
	case LogLevelWarn:
		return logger.Warn
	case LogLevelInfo:
		return logger.Info
	default:
		return logger.Silent
	}
}

// GetDB returns the shared *gorm.DB bound to ctx.
func (dm *DatabaseManager) GetDB(ctx context.Context) *gorm.DB {
	return dm.gormDB.WithContext(ctx)
}

func (dm *DatabaseManager) Exec(ctx context.Context, fn func(db *gorm.DB) error) error {
	return fn(dm.gormDB.WithContext(ctx))
}

// Migrate creates or updates the canonical schema, including the unique
// index on case_reports.client_id.
func (dm *DatabaseManager) Migrate() error {
	return dm.gormDB.AutoMigrate(
		&models.Patient{},
		&models.CaseReport{},
		&models.MasterData{},
		&models.Disease{},
		&models.Hospital{},
		&models.Province{},
		&models.Amphoe{},
		&models.Tambon{},
	)
}

func (dm *DatabaseManager) Close() error {
	return dm.SqlDB.Close()
}
