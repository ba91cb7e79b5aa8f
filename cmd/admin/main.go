package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-resource-admin/internal/admin"
	"go-resource-admin/internal/config"
	"go-resource-admin/internal/delegates"
	"go-resource-admin/internal/logging"
	"go-resource-admin/internal/pagemanager"
	"go-resource-admin/internal/resourcemanager"
	"go-resource-admin/internal/storage"
	"go-resource-admin/internal/templating"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

// adminApplication holds the application-wide dependencies for the admin server.
type adminApplication struct {
	logger     *slog.Logger
	controller *admin.Controller
	engine     *templating.Engine
	flashes    *flashStore
	staticDir  string
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "admin: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// --- Configuration ---
	flags := pflag.NewFlagSet("admin", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		return err
	}
	cfg, err := config.Load(flags)
	if err != nil {
		return err
	}

	// --- Initialize Logger ---
	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
	})
	slog.SetDefault(logger)
	logger.Info("Using site", "docroot", cfg.DocRoot, "workspace", cfg.Workspace)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Initialize Storage ---
	fs := afero.NewOsFs()
	drivers, err := storage.NewDriverStore(fs, cfg.Workspace, logger)
	if err != nil {
		return err
	}
	db, err := storage.OpenSQLite(cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	settings, err := config.OpenSettings(fs, cfg.Settings, logger)
	if err != nil {
		return err
	}
	if err := settings.Watch(ctx); err != nil {
		// Edits made by other processes are only seen after a restart.
		logger.Warn("Not watching settings file", "path", cfg.Settings, "error", err)
	}

	// --- Managers ---
	resources := resourcemanager.NewManager(drivers, db, settings, logger)
	pages := pagemanager.NewManager(db, logger)

	registry := delegates.NewRegistry()
	registry.Subscribe(delegates.CustomActions, delegates.AnyPage, func(c *delegates.Context) {
		logger.Debug("Delegate announced", "delegate", c.Delegate, "page", c.Page, "action", c.Form.Get("with-selected"))
	})

	controller := admin.NewController(resources, pages, registry, fs, cfg.DocRoot, logger)
	resolver := admin.NewTemplateResolver(fs, cfg.Workspace, cfg.Templates)

	app := &adminApplication{
		logger:     logger,
		controller: controller,
		engine:     templating.NewEngine(fs, resolver),
		flashes:    newFlashStore(),
		staticDir:  cfg.Static,
	}

	// --- Start Server ---
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting admin server", "address", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("admin server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down admin server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
