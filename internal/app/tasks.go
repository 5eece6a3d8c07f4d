package app

import (
	"context"

	"league-app-go/internal/config"
	"league-app-go/internal/domain/shared"
	"league-app-go/internal/domain/user"
	"league-app-go/pkg/logger"
)

// Migrate applies migrations (or mongo indexes) for cfg and disconnects.
func Migrate(ctx context.Context, cfg config.Config, log logger.Logger) error {
	if cfg.DB.Driver == config.DriverMemory {
		log.Info("app: in-memory store has no schema")
		return nil
	}
	st, err := openStores(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	return st.Close(ctx)
}

// SetRole changes a global role directly in the store, bypassing the API.
func SetRole(ctx context.Context, cfg config.Config, log logger.Logger, userID string, role shared.GlobalRole) (*user.Profile, error) {
	st, err := openStores(ctx, cfg, log, cfg.DB.AutoMigrate)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := st.Close(ctx); err != nil {
			log.Error("app: close store failed", "err", err)
		}
	}()

	return user.NewService(st.Users).SetRole(ctx, userID, role)
}
