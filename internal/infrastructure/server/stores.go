package server

import (
	"context"
	"fmt"

	"github.com/GriffinCanCode/Reze/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/Reze/backend/internal/storage"
	"github.com/GriffinCanCode/Reze/backend/internal/storage/memory"
	"github.com/GriffinCanCode/Reze/backend/internal/storage/redis"
	"github.com/GriffinCanCode/Reze/backend/internal/storage/sqlite"
)

// openStores builds the user and session stores named by cfg
func openStores(ctx context.Context, cfg config.StorageConfig) (storage.UserStore, storage.SessionStore, error) {
	var users storage.UserStore
	switch cfg.Driver {
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open user store: %w", err)
		}
		users = store
	default:
		users = memory.NewUserStore()
	}

	var sessions storage.SessionStore
	switch cfg.SessionDriver {
	case config.DriverRedis:
		store, err := redis.New(ctx, redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			_ = users.Close()
			return nil, nil, fmt.Errorf("failed to open session store: %w", err)
		}
		sessions = store
	default:
		sessions = memory.NewSessionStore()
	}

	return users, sessions, nil
}
