package di

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/stockscorer/internal/clients/gemini"
	"github.com/aristath/stockscorer/internal/config"
	"github.com/aristath/stockscorer/internal/modules/advisor"
	"github.com/aristath/stockscorer/internal/reliability"
)

// InitializeServices creates the oracle client and the services built on it.
// The backup service is only created when backups are enabled.
func InitializeServices(ctx context.Context, container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.GeminiClient = gemini.NewClient(cfg.Oracle.ToClientConfig(), log)
	if !container.GeminiClient.Configured() {
		log.Warn().Msg("GOOGLE_API_KEY not set, advisor responses will use fallbacks")
	}

	container.AdvisorService = advisor.NewService(
		container.GeminiClient,
		container.OracleCache,
		cfg.Oracle.CacheTTL,
		log,
	)

	if cfg.Backup == nil || !cfg.Backup.Enabled {
		log.Info().Msg("Remote backups disabled")
		return nil
	}

	s3Cfg := cfg.Backup.ToBackupConfig()
	store, err := reliability.NewS3Client(ctx, s3Cfg)
	if err != nil {
		return fmt.Errorf("failed to create backup client: %w", err)
	}
	container.BackupService = reliability.NewBackupService(store, container.ProjectRepo, s3Cfg.Prefix, log)

	log.Info().Str("bucket", s3Cfg.Bucket).Msg("Remote backups enabled")
	return nil
}
