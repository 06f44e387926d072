package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dori/tasksrus/internal/config"
	"github.com/dori/tasksrus/internal/db"
	"github.com/dori/tasksrus/internal/notify"
	"github.com/gofrs/flock"
)

// ErrAlreadyRunning is returned when another instance holds the lock
var ErrAlreadyRunning = errors.New("another instance of tasksrus is already running")

// App holds the application state and dependencies
type App struct {
	Config     *config.Config
	ConfigPath string
	DB         *db.DB
	Notifier   *notify.Notifier
	Logger     *slog.Logger

	logFile  io.Closer
	lockFile *flock.Flock
}

// Options tweak how New sets things up
type Options struct {
	// Exclusive takes the single-instance lock. The TUI needs it; one-shot
	// subcommands only insert or read and skip it.
	Exclusive bool
}

// New creates a new application instance
func New(cfg *config.Config, configPath string, opts Options) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	a := &App{
		Config:     cfg,
		ConfigPath: configPath,
		Notifier:   notify.NewNotifier(cfg.Notify.WriteFailures),
	}

	if opts.Exclusive {
		if err := a.acquireLock(); err != nil {
			return nil, err
		}
	}

	if err := a.openLog(); err != nil {
		a.releaseLock()
		return nil, err
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	a.DB = database

	a.Logger.Info("started", "db", cfg.DBPath, "pid", os.Getpid())
	return a, nil
}

// acquireLock acquires an exclusive file lock to prevent multiple instances
func (a *App) acquireLock() error {
	lockPath := filepath.Join(a.Config.DataDir, "tasksrus.lock")
	a.lockFile = flock.New(lockPath)

	locked, err := a.lockFile.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}

	if !locked {
		return ErrAlreadyRunning
	}

	return nil
}

// releaseLock releases the file lock
func (a *App) releaseLock() {
	if a.lockFile != nil {
		a.lockFile.Unlock()
	}
}

// openLog points the logger at the log file; the terminal belongs to the TUI
func (a *App) openLog() error {
	f, err := os.OpenFile(a.Config.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	a.logFile = f
	a.Logger = NewLogger(f, a.Config.Log.Level)
	return nil
}

// NewLogger builds a text slog logger at the named level
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: ParseLevel(level),
	}))
}

// ParseLevel maps debug|info|warn|error to a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SaveTheme saves a copy of the config with the theme replaced. It may run
// off the main goroutine, so the shared Config is left untouched.
func (a *App) SaveTheme(name string) error {
	if a.ConfigPath == "" {
		return nil
	}
	cfg := *a.Config
	cfg.Theme = name
	return config.Save(a.ConfigPath, &cfg)
}

// Close cleans up application resources
func (a *App) Close() error {
	var errs []error

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if a.logFile != nil {
		if err := a.logFile.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close log: %w", err))
		}
	}

	a.releaseLock()

	return errors.Join(errs...)
}
