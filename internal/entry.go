// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/dssafford/daylog/internal/api"
	"github.com/dssafford/daylog/internal/entryservice"
	"github.com/dssafford/daylog/internal/inbox"
	"github.com/dssafford/daylog/internal/mcpserver"
	"github.com/dssafford/daylog/internal/source"
	"github.com/dssafford/daylog/internal/state"
	"github.com/dssafford/daylog/internal/storage"
	"github.com/dssafford/daylog/internal/syncer"
)

// newLogger builds the structured JSON logger and installs it as default.
func newLogger(cfg *Config) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// deps bundles the wired collaborators shared by every command.
type deps struct {
	store  *storage.FS
	db     *state.DB
	src    *source.ScriptSource
	writer *syncer.Writer
	syncer *syncer.Syncer
	svc    *entryservice.Service
	logger *slog.Logger
}

// buildDeps wires storage, state, source, writer, syncer, and the entry
// service from configuration. Callers must Close the returned deps.
func buildDeps(cfg *Config, logger *slog.Logger) (*deps, error) {
	store, err := storage.NewFS(cfg.Notes.Dir, cfg.Notes.FileFormat)
	if err != nil {
		return nil, fmt.Errorf("init notes storage: %w", err)
	}

	db, err := state.Open(cfg.State.Path)
	if err != nil {
		return nil, fmt.Errorf("init state store: %w", err)
	}

	src := source.NewScriptSource(cfg.Source.App, cfg.Source.ScriptTimeout, logger)
	writer := syncer.NewWriter(store, cfg.Sync.RetryAttempts, cfg.Sync.RetryDelay, cfg.Sync.SettleDelay, logger)
	sync := syncer.New(cfg.SyncSections(), src, store, db, writer, logger)
	svc := entryservice.New(cfg.NoteSections(), store, writer, logger)

	return &deps{
		store:  store,
		db:     db,
		src:    src,
		writer: writer,
		syncer: sync,
		svc:    svc,
		logger: logger,
	}, nil
}

func (d *deps) Close() {
	if err := d.db.Close(); err != nil {
		d.logger.Warn("close state store", slog.String("error", err.Error()))
	}
}

// Run starts the long-running serve mode: HTTP entry endpoint plus the
// drop-folder watcher, shut down together on signal or failure.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return fmt.Errorf("config is required")
	}
	cfg := app.config

	logger := newLogger(cfg)
	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("notes_dir", cfg.Notes.Dir),
		slog.String("state_path", cfg.State.Path),
		slog.Int("sections", len(cfg.Sections)),
		slog.String("log_level", cfg.App.LogLevel.String()))

	d, err := buildDeps(cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount entry API under /api.
	r.Mount("/api", api.NewRouter(d.svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Drop-folder watcher.
	if len(cfg.Inbox.Dirs) > 0 {
		watcher := inbox.New(cfg.Inbox.Dirs, d.svc, logger)
		g.Go(func() error {
			return watcher.Run(gCtx)
		})
	}

	// HTTP server.
	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Shutdown on signal or group failure.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunSync performs one scheduler-invoked sync pass. targets may be empty
// (resolve the schedule from the current hour), "all", a schedule name, or
// explicit section keys. It returns the summary; callers turn a non-zero
// Failed count into a non-zero exit status.
func RunSync(ctx context.Context, cfg *Config, targets []string, force bool) (syncer.Summary, error) {
	logger := newLogger(cfg)

	d, err := buildDeps(cfg, logger)
	if err != nil {
		return syncer.Summary{}, err
	}
	defer d.Close()

	keys, err := resolveTargets(cfg, targets, time.Now().Hour())
	if err != nil {
		return syncer.Summary{}, err
	}
	if len(keys) == 0 {
		logger.Info("no sections to process")
		return syncer.Summary{}, nil
	}
	if force {
		logger.Info("force mode: ignoring processed state")
	}
	logger.Info("processing sections", slog.Any("sections", keys))

	// Wake the helper app once up front so the first query does not time
	// out against a cold process.
	d.src.Wake(ctx)

	return d.syncer.Run(ctx, keys, force), nil
}

// RunMCP starts the MCP stdio server.
func RunMCP(_ context.Context, cfg *Config) error {
	logger := newLogger(cfg)

	d, err := buildDeps(cfg, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(d.svc, d.syncer, d.store).ServeStdio()
}

// resolveTargets expands command-line sync targets into section keys.
func resolveTargets(cfg *Config, targets []string, hour int) ([]string, error) {
	var keys []string
	switch {
	case len(targets) == 0:
		schedule := cfg.ResolveSchedule(hour)
		keys = cfg.SectionsForSchedule(schedule)
	case targets[0] == "all" && len(targets) == 1:
		keys = cfg.SectionKeys()
	default:
		if len(targets) == 1 {
			if _, ok := cfg.Schedules[targets[0]]; ok || targets[0] == ScheduleAlways {
				keys = cfg.SectionsForSchedule(targets[0])
				sort.Strings(keys)
				return keys, nil
			}
		}
		for _, t := range targets {
			if _, ok := cfg.Sections[t]; !ok {
				return nil, fmt.Errorf("unknown section or schedule: %q", t)
			}
		}
		return targets, nil
	}
	sort.Strings(keys)
	return keys, nil
}
