// internal/bootstrap/bootstrap.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/localbiz/directory-backend/internal/config"
	"github.com/localbiz/directory-backend/internal/database"
	"github.com/localbiz/directory-backend/internal/repository"
)

// ConfigureLogging applies the configured level and format to the global logger.
func ConfigureLogging(cfg config.LogConfig) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.WithField("level", cfg.Level).Warn("Unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// Resources is the opened store and, for postgres, its connection.
type Resources struct {
	Store repository.Store
	DB    *gorm.DB
}

// OpenStore connects the configured store. With migrate set, postgres schemas
// are migrated and the staff account seeded when DB_AUTO_MIGRATE allows it.
func OpenStore(cfg *config.Config, migrate bool) (*Resources, error) {
	switch cfg.Store.Driver {
	case "memory":
		logrus.Warn("Using the in-memory store, data is lost on restart")
		return &Resources{Store: repository.NewMemoryStore()}, nil

	case "postgres":
		db, err := database.Initialize(cfg.Database)
		if err != nil {
			return nil, err
		}

		if migrate && cfg.Database.AutoMigrate {
			if err := database.RunMigrations(db); err != nil {
				database.Close(db)
				return nil, err
			}
			if err := database.SeedInitialData(db, cfg.Staff); err != nil {
				database.Close(db)
				return nil, err
			}
		}

		return &Resources{Store: repository.NewGormStore(db), DB: db}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// Ping checks the database connection. The memory store is always reachable.
func (r *Resources) Ping(ctx context.Context) error {
	if r.DB == nil {
		return nil
	}
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *Resources) Close() {
	if r.DB != nil {
		database.Close(r.DB)
	}
}
