// Package gormdb opens the dashboard's relational store. Driver selection
// follows the DSN: a postgres URL gets the postgres driver, anything else is
// treated as a sqlite path so a bare install works without external services.
package gormdb

import (
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects according to driver ("postgres", "sqlite" or "auto") and dsn.
// An empty dsn falls back to a local sqlite file under dataDir.
func Open(driver, dsn, dataDir string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = strings.TrimRight(dataDir, "/") + "/mcdash.db"
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	switch strings.ToLower(driver) {
	case "postgres":
		return gorm.Open(postgres.Open(dsn), cfg)
	case "sqlite":
		return gorm.Open(sqlite.Open(dsn), cfg)
	case "", "auto":
		if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
			return gorm.Open(postgres.Open(dsn), cfg)
		}
		return gorm.Open(sqlite.Open(dsn), cfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
}

// OpenMemory opens a throwaway in-memory sqlite database, for tests.
func OpenMemory() (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}
