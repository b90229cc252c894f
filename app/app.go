// Package app assembles aquagrade's components from a Config.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"aquagrade/analyzer"
	"aquagrade/config"
	"aquagrade/database"
	"aquagrade/handlers"
	"aquagrade/logging"
	"aquagrade/store"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	History  *store.History
	API      analyzer.API
	Recorder *analyzer.Recorder

	db *gorm.DB
}

// New opens the configured history slot and loads it. A corrupt or
// unreadable slot is logged and the history starts empty.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	slot, err := a.openSlot()
	if err != nil {
		return nil, err
	}

	a.History = store.NewHistory(slot,
		store.WithCapacity(cfg.Storage.Capacity),
		store.WithLogger(logger.Named("store")))

	entries, err := a.History.Load(ctx)
	switch {
	case errors.Is(err, store.ErrCorruptHistory), errors.Is(err, store.ErrPersist):
		logger.Warn("history unavailable, starting empty", zap.Error(err))
	case err != nil:
		_ = a.Close()
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	logger.Info("history loaded",
		zap.String("backend", cfg.Storage.Backend),
		zap.Int("entries", len(entries)))

	a.API = analyzer.NewClient(cfg.Analysis.BaseURL, cfg.Analysis.Timeout, logger.Named("analyzer"))
	a.Recorder = analyzer.NewRecorder(a.API, a.History, analyzer.Options{
		Debug:           cfg.Analysis.Debug,
		PersistRemotely: cfg.Analysis.PersistRemotely,
	}, logger.Named("recorder"))

	return a, nil
}

func (a *App) openSlot() (store.Slot, error) {
	s := a.Config.Storage
	switch s.Backend {
	case config.BackendSQLite:
		db, err := database.Open(s.DBPath, a.Logger.Named("database"))
		if err != nil {
			return nil, err
		}
		a.db = db
		return database.NewSlotStore(db, s.SlotName), nil
	case config.BackendFile:
		return store.NewFileSlot(s.HistoryFile), nil
	case config.BackendMemory:
		return store.NewMemorySlot(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", s.Backend)
	}
}

// Router builds the gin engine with request logging and every API route.
func (a *App) Router() *gin.Engine {
	if a.Config.Server.GinMode != "" {
		gin.SetMode(a.Config.Server.GinMode)
	}

	r := gin.New()
	r.Use(logging.GinMiddleware(a.Logger.Named("http")), logging.GinRecovery(a.Logger))

	h := handlers.New(a.History, a.API, a.Recorder, handlers.Options{
		UploadDir:      a.Config.Server.UploadDir,
		MaxUploadBytes: int64(a.Config.Server.MaxUploadMB) << 20,
	}, a.Logger.Named("handlers"))
	h.Register(r)
	return r
}

// Serve runs the HTTP server until ctx is canceled, then shuts it down.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.Server.Addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("starting aquagrade server",
			zap.String("addr", srv.Addr),
			zap.String("analysis_api", a.Config.Analysis.BaseURL))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	a.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// Close releases the database connection, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	err := database.Close(a.db)
	a.db = nil
	return err
}
