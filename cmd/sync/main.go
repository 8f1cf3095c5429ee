package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"crm-backend/internal/config"
	"crm-backend/internal/database"
	sync_feature "crm-backend/internal/features/sync"
	"crm-backend/internal/logger"
	"crm-backend/internal/moysklad"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// One-shot sync runner for operators and cron-less deployments:
//
//	sync -mode full
//	sync -mode incremental
func main() {
	mode := flag.String("mode", "incremental", "sync mode: full or incremental")
	flag.Parse()

	if *mode != "full" && *mode != "incremental" {
		fmt.Fprintf(os.Stderr, "unknown mode %q, expected full or incremental\n", *mode)
		os.Exit(2)
	}

	var exitCode int
	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.LoadConfig,
			logger.NewLogger,
			database.NewDatabase,
			sync_feature.NewSyncJobRepository,
			sync_feature.NewIntegrationConfigRepository,
			sync_feature.NewWriter,
			sync_feature.NewResolver,
			newClientFactory,
			sync_feature.NewSyncService,
		),
		fx.Invoke(func(lc fx.Lifecycle, svc sync_feature.SyncService, db *database.PostgresDB, log *zap.Logger, shutdowner fx.Shutdowner) {
			lc.Append(fx.Hook{
				OnStart: func(ctx context.Context) error {
					go func() {
						exitCode = run(context.Background(), *mode, svc, db, log)
						_ = shutdowner.Shutdown()
					}()
					return nil
				},
			})
		}),
	)

	app.Run()
	os.Exit(exitCode)
}

func newClientFactory(cfg *config.Config, log *zap.Logger) sync_feature.ClientFactory {
	return func() (sync_feature.RemoteClient, error) {
		client, err := moysklad.NewClient(moysklad.ClientConfig{
			BaseURL:  cfg.MoySkladBaseURL,
			Token:    cfg.MoySkladToken,
			Username: cfg.MoySkladUsername,
			Password: cfg.MoySkladPassword,
		}, log)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

func run(ctx context.Context, mode string, svc sync_feature.SyncService, db *database.PostgresDB, log *zap.Logger) int {
	if err := db.EnsureSchema(ctx); err != nil {
		log.Error("Failed to ensure database schema", zap.Error(err))
		return 1
	}

	var summary *sync_feature.SyncSummary
	var err error
	if mode == "full" {
		summary, err = svc.RunFullSync(ctx)
	} else {
		summary, err = svc.RunIncrementalSync(ctx)
	}
	if err != nil {
		log.Error("Sync failed", zap.String("mode", mode), zap.Error(err))
		return 1
	}

	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	if len(summary.Errors) > 0 {
		return 1
	}
	return 0
}
