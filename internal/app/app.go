// Package app provides application-level wiring and dependency
// injection for posgate. main() hands it database pools, config and a
// logger; it hands back the wired services and background maintenance.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"posgate/internal/config"
	"posgate/internal/db/repository"
	"posgate/internal/rbac"
	"posgate/internal/service/archive"
	"posgate/internal/service/directory"
	"posgate/internal/service/store"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create
// itself: database handles, config, and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App holds the fully wired application: the services the routers need
// plus the maintenance scheduler.
type App struct {
	Directory *directory.Service
	APIKeys   *directory.APIKeyService
	Store     *store.Service
	Archive   *archive.Service // nil when no archive destination is configured
	AuditRepo *repository.AuditRepo

	maintenance *Maintenance
}

// New wires repositories, registries and services from the provided
// deps. It loads the persisted directory into the registries, seeds
// the built-in entities and applies the declarative seed tree when one
// is configured.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg

	// Repositories all run on the write pool: directory reads are
	// served from the registries, and store reads are too light to
	// justify splitting. The read pool stays with health checks.
	dirRepo := repository.NewDirectoryRepo(deps.WriteDB)
	auditRepo := repository.NewAuditRepo(deps.WriteDB)
	apiKeyRepo := repository.NewAPIKeyRepo(deps.WriteDB)
	productRepo := repository.NewProductRepo(deps.WriteDB)
	customerRepo := repository.NewCustomerRepo(deps.WriteDB)
	txnRepo := repository.NewTransactionRepo(deps.WriteDB)

	groups := rbac.NewGroupRegistry()
	identities := rbac.NewIdentityRegistry(cfg.LockoutThreshold)

	dirSvc := directory.NewService(groups, identities, dirRepo, auditRepo,
		deps.Logger.With("component", "directory"), cfg.CredentialMaxDays)
	if err := dirSvc.LoadAll(ctx); err != nil {
		return nil, err
	}

	keySvc := directory.NewAPIKeyService(apiKeyRepo, identities, auditRepo,
		deps.Logger.With("component", "apikeys"))
	storeSvc := store.NewService(productRepo, customerRepo, txnRepo, dirSvc,
		auditRepo, deps.Logger.With("component", "store"), cfg.StoreName)

	if err := seedBuiltins(ctx, dirSvc, cfg, deps.Logger); err != nil {
		return nil, fmt.Errorf("seed builtins: %w", err)
	}
	if cfg.SeedDir != "" {
		if err := ApplySeedDir(ctx, dirSvc, cfg.SeedDir); err != nil {
			return nil, fmt.Errorf("apply seed dir %s: %w", cfg.SeedDir, err)
		}
		deps.Logger.Info("declarative seeds applied", "dir", cfg.SeedDir)
	}

	var archiveSvc *archive.Service
	if cfg.Archive.Enabled() {
		cred, err := cfg.Archive.Credential()
		if err != nil {
			return nil, err
		}
		uploader, err := archive.NewUploaderFromCredential(cred)
		if err != nil {
			return nil, fmt.Errorf("archive uploader: %w", err)
		}
		archiveSvc = archive.NewService(dirSvc, uploader, auditRepo,
			deps.Logger.With("component", "archive"), cfg.Archive.Prefix, 0)
		deps.Logger.Info("snapshot archive enabled", "type", cfg.Archive.Type)
	}

	a := &App{
		Directory: dirSvc,
		APIKeys:   keySvc,
		Store:     storeSvc,
		Archive:   archiveSvc,
		AuditRepo: auditRepo,
	}
	a.maintenance = NewMaintenance(cfg, auditRepo, archiveSvc,
		deps.Logger.With("component", "maintenance"))
	return a, nil
}

// StartMaintenance begins the scheduled audit prune and snapshot jobs.
func (a *App) StartMaintenance() {
	a.maintenance.Start()
}

// Close stops background work.
func (a *App) Close() {
	a.maintenance.Stop()
}
