package cron_feature

import (
	"context"
	"fmt"

	"crm-backend/internal/config"
	sync_feature "crm-backend/internal/features/sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Scheduler drives periodic syncs: incremental every configured interval and
// a nightly full refresh. Jobs are skipped while the integration is disabled.
type Scheduler struct {
	cron        *cron.Cron
	syncService sync_feature.SyncService
	config      *config.Config
	log         *zap.Logger
}

func NewScheduler(lc fx.Lifecycle, syncService sync_feature.SyncService, cfg *config.Config, log *zap.Logger) *Scheduler {
	s := &Scheduler{
		cron:        cron.New(),
		syncService: syncService,
		config:      cfg,
		log:         log,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Start()
		},
		OnStop: func(ctx context.Context) error {
			s.Stop()
			return nil
		},
	})
	return s
}

func (s *Scheduler) Start() error {
	interval := s.config.SyncIntervalMinutes
	if interval <= 0 {
		interval = 15
	}

	incrementalSpec := fmt.Sprintf("@every %dm", interval)
	if _, err := s.cron.AddFunc(incrementalSpec, s.runIncremental); err != nil {
		return fmt.Errorf("failed to schedule incremental sync: %w", err)
	}

	// Nightly full refresh at 03:00.
	if _, err := s.cron.AddFunc("0 3 * * *", s.runFull); err != nil {
		return fmt.Errorf("failed to schedule full sync: %w", err)
	}

	s.cron.Start()
	s.log.Info("Sync scheduler started",
		zap.String("incremental", incrementalSpec),
		zap.String("full", "daily at 03:00"))
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("Sync scheduler stopped")
}

func (s *Scheduler) runIncremental() {
	if !s.integrationEnabled() {
		return
	}
	if _, err := s.syncService.TriggerIncrementalSync(context.Background()); err != nil {
		s.log.Warn("Scheduled incremental sync not started", zap.Error(err))
	}
}

func (s *Scheduler) runFull() {
	if !s.integrationEnabled() {
		return
	}
	if _, err := s.syncService.TriggerFullSync(context.Background()); err != nil {
		s.log.Warn("Scheduled full sync not started", zap.Error(err))
	}
}

func (s *Scheduler) integrationEnabled() bool {
	cfg, err := s.syncService.GetConfig(context.Background())
	if err != nil {
		// No stored config yet: fall back to env credentials being present.
		return s.config.MoySkladToken != "" || s.config.MoySkladUsername != ""
	}
	return cfg.IsEnabled
}
