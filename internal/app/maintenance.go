package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"posgate/internal/config"
	"posgate/internal/db/repository"
	"posgate/internal/service/archive"
)

// Maintenance runs the recurring background jobs: audit retention
// pruning and scheduled snapshot exports.
type Maintenance struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// NewMaintenance registers the jobs the config enables. Invalid cron
// expressions are logged and skipped so a typo cannot keep the server
// from starting.
func NewMaintenance(cfg *config.Config, audit *repository.AuditRepo, archiveSvc *archive.Service, logger *slog.Logger) *Maintenance {
	m := &Maintenance{cron: cron.New(), logger: logger}

	if cfg.AuditRetentionDays > 0 {
		retention := time.Duration(cfg.AuditRetentionDays) * 24 * time.Hour
		if _, err := m.cron.AddFunc(cfg.AuditPruneCron, func() {
			cutoff := time.Now().UTC().Add(-retention)
			n, err := audit.DeleteBefore(context.Background(), cutoff)
			if err != nil {
				logger.Warn("audit prune failed", "error", err)
				return
			}
			if n > 0 {
				logger.Info("audit entries pruned", "deleted", n, "cutoff", cutoff)
			}
		}); err != nil {
			logger.Warn("invalid audit prune schedule",
				"schedule", cfg.AuditPruneCron, "error", err)
		}
	}

	if archiveSvc != nil {
		if _, err := m.cron.AddFunc(cfg.Archive.CronSpec, func() {
			if _, err := archiveSvc.Export(context.Background()); err != nil {
				logger.Warn("scheduled snapshot failed", "error", err)
			}
		}); err != nil {
			logger.Warn("invalid snapshot schedule",
				"schedule", cfg.Archive.CronSpec, "error", err)
		}
	}

	return m
}

// Start begins job execution.
func (m *Maintenance) Start() {
	m.cron.Start()
	m.logger.Info("maintenance scheduler started")
}

// Stop gracefully stops the scheduler.
func (m *Maintenance) Stop() {
	m.cron.Stop()
	m.logger.Info("maintenance scheduler stopped")
}
