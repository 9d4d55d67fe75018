package db

import (
	"fmt"

	"github.com/dOtOb9/message/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds a MySQL DSN from store settings.
func DSN(host string, port int, database string) string {
	return fmt.Sprintf("root@tcp(%s:%d)/%s?parseTime=true", host, port, database)
}

// Connect opens a GORM connection for the configured store driver.
// "sqlite" opens (or creates) the file at cfg.Store.Path; "mysql"
// connects to the configured server.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	switch cfg.Store.Driver {
	case config.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.Store.Path), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("db: open sqlite %s: %w", cfg.Store.Path, err)
		}
		return db, nil
	case config.DriverMySQL:
		dsn := DSN(cfg.Store.Host, cfg.Store.Port, cfg.Store.Database)
		db, err := gorm.Open(mysql.Open(dsn), gormCfg)
		if err != nil {
			return nil, fmt.Errorf("db: connect to %s:%d/%s: %w", cfg.Store.Host, cfg.Store.Port, cfg.Store.Database, err)
		}
		return db, nil
	default:
		return nil, fmt.Errorf("db: unknown driver %q", cfg.Store.Driver)
	}
}
