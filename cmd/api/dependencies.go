package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/queuetrace/queuetrace/internal/domain/accounts"
	"github.com/queuetrace/queuetrace/internal/domain/history"
	importservice "github.com/queuetrace/queuetrace/internal/domain/import/service"
	"github.com/queuetrace/queuetrace/internal/server"
	"github.com/queuetrace/queuetrace/internal/store"
	"github.com/queuetrace/queuetrace/pkg/config"
	"github.com/queuetrace/queuetrace/pkg/cron"
	"github.com/queuetrace/queuetrace/pkg/persistence"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config        *config.Config
	Logger        *slog.Logger
	Store         *store.Store
	ImportService *importservice.Service
	Server        *server.Server
	Scheduler     *cron.Scheduler
}

// NewDependencies wires the application: persistence, dataset store with
// history, import pipeline, HTTP surface and the autosave scheduler. The
// stored dataset is loaded (and migrated if needed) before anything serves.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	persist := persistence.New(cfg.Data.Path, logger)
	hist := history.NewManager(history.DefaultLimit)

	st := store.New(persist, hist, logger)
	if err := st.Open(ctx); err != nil {
		return nil, err
	}

	groups, err := config.LoadGroups(cfg.Accounts.GroupsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load account groups: %w", err)
	}

	accountsCfg := accounts.Config{
		JuicePercentMax: cfg.Accounts.JuicePercentMax,
		JuiceAnchorMin:  cfg.Accounts.JuiceAnchorMin,
		Groups:          groups,
	}

	importSvc := importservice.New(st, logger)

	return &Dependencies{
		Config:        cfg,
		Logger:        logger,
		Store:         st,
		ImportService: importSvc,
		Server:        server.New(cfg, st, importSvc, accountsCfg, logger),
		Scheduler:     cron.NewScheduler(st, cfg.Data.AutosaveSchedule, logger),
	}, nil
}
