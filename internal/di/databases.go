package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/stockscorer/internal/config"
	"github.com/aristath/stockscorer/internal/database"
)

// InitializeDatabases opens both databases and applies their migrations
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	container := &Container{}

	// app.db - Project documents
	appDB, err := database.New(database.Config{
		Path:    cfg.AppDBPath(),
		Profile: database.ProfileStandard,
		Name:    "app",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app database: %w", err)
	}
	container.AppDB = appDB

	// cache.db - Oracle responses, safe to delete
	cacheDB, err := database.New(database.Config{
		Path:    cfg.CacheDBPath(),
		Profile: database.ProfileCache,
		Name:    "cache",
	})
	if err != nil {
		appDB.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	container.CacheDB = cacheDB

	for _, db := range []*database.DB{appDB, cacheDB} {
		if err := db.Migrate(); err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to apply schema to %s: %w", db.Name(), err)
		}
	}

	log.Info().Str("data_dir", cfg.DataDir).Msg("Databases initialized and schemas applied")

	return container, nil
}
