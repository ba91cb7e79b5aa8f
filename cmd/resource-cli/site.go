package main

import (
	"log/slog"

	"go-resource-admin/internal/admin"
	"go-resource-admin/internal/config"
	"go-resource-admin/internal/delegates"
	"go-resource-admin/internal/logging"
	"go-resource-admin/internal/pagemanager"
	"go-resource-admin/internal/resourcemanager"
	"go-resource-admin/internal/storage"

	"github.com/spf13/afero"
)

// site bundles the stores and managers of one site.
type site struct {
	cfg        *config.AppConfig
	fs         afero.Fs
	logger     *slog.Logger
	drivers    *storage.DriverStore
	db         *storage.SQLiteStore
	resources  *resourcemanager.Manager
	pages      *pagemanager.Manager
	controller *admin.Controller
}

func openSite(cfg *config.AppConfig, fs afero.Fs, logger *slog.Logger) (*site, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	drivers, err := storage.NewDriverStore(fs, cfg.Workspace, logger)
	if err != nil {
		return nil, err
	}
	db, err := storage.OpenSQLite(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	settings, err := config.OpenSettings(fs, cfg.Settings, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	resources := resourcemanager.NewManager(drivers, db, settings, logger)
	pages := pagemanager.NewManager(db, logger)
	return &site{
		cfg:        cfg,
		fs:         fs,
		logger:     logger,
		drivers:    drivers,
		db:         db,
		resources:  resources,
		pages:      pages,
		controller: admin.NewController(resources, pages, delegates.NewRegistry(), fs, cfg.DocRoot, logger),
	}, nil
}

func (s *site) Close() error {
	return s.db.Close()
}
