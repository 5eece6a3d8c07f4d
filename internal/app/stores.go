package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"league-app-go/internal/config"
	"league-app-go/internal/db"
	"league-app-go/internal/domain/editrequest"
	"league-app-go/internal/domain/league"
	"league-app-go/internal/domain/relationship"
	"league-app-go/internal/domain/user"
	"league-app-go/internal/repository/inmemory"
	"league-app-go/internal/repository/mongo"
	"league-app-go/internal/repository/relational"
	"league-app-go/pkg/logger"
)

// stores holds the repositories of one backend selected by DB_DRIVER.
type stores struct {
	League        league.Repository
	Relationships relationship.Repository
	EditRequests  editrequest.Repository
	Users         user.Repository
	close         func(ctx context.Context) error
}

func (s *stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// openStores connects the configured backend. When migrate is set the schema
// is brought up to date before any repository is used.
func openStores(ctx context.Context, cfg config.Config, log logger.Logger, migrate bool) (*stores, error) {
	switch cfg.DB.Driver {
	case config.DriverMemory:
		log.Warn("store: using in-memory store, data is lost on restart")
		store := inmemory.NewStore()
		return &stores{
			League:        store.League(),
			Relationships: store.Relationships(),
			EditRequests:  store.EditRequests(),
			Users:         store.Users(),
		}, nil

	case config.DriverMongo:
		store, err := mongo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		if migrate {
			if err := store.EnsureIndexes(ctx); err != nil {
				_ = store.Close(ctx)
				return nil, fmt.Errorf("ensure indexes: %w", err)
			}
			log.Info("store: mongo indexes ready", "database", cfg.Mongo.Database)
		}
		return &stores{
			League:        store.League(),
			Relationships: store.Relationships(),
			EditRequests:  store.EditRequests(),
			Users:         store.Users(),
			close:         store.Close,
		}, nil

	default:
		gormDB, err := db.Open(cfg.DB, log)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := db.Migrate(gormDB, log); err != nil {
				_ = closeGorm(gormDB)
				return nil, err
			}
		}
		store := relational.NewStore(gormDB)
		return &stores{
			League:        store.League(),
			Relationships: store.Relationships(),
			EditRequests:  store.EditRequests(),
			Users:         store.Users(),
			close: func(context.Context) error {
				return closeGorm(gormDB)
			},
		}, nil
	}
}

func closeGorm(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
