// Package app wires configuration, storage, notifications and the tracker
// into a runnable program.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/sandeepkv93/streakd/internal/config"
	"github.com/sandeepkv93/streakd/internal/notify"
	"github.com/sandeepkv93/streakd/internal/scheduler"
	"github.com/sandeepkv93/streakd/internal/storage"
	"github.com/sandeepkv93/streakd/internal/tracker"
	"github.com/sandeepkv93/streakd/internal/update"
)

const (
	RolloverSpec = "0 0 * * *"
	// Reminders fire from the engine; the sweep only refreshes the overdue
	// banner.
	DefaultOverdueSweepSpec = "*/5 * * * *"

	notificationQueue = 32
)

type Application struct {
	Config  config.RuntimeConfig
	Logger  *log.Logger
	Tracker *tracker.Tracker

	persist  storage.Persistence
	engine   *scheduler.Engine
	notifier *notify.Scheduler
	cron     *cron.Cron
	logFile  io.Closer
}

// New opens the log file and the storage backend and builds the tracker. The
// reminder engine is started so reminders restored from disk are armed.
func New(ctx context.Context, cfg config.RuntimeConfig) (*Application, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	logger, logFile, err := OpenLogger(cfg)
	if err != nil {
		return nil, err
	}

	persist, err := OpenPersistence(ctx, cfg)
	if err != nil {
		logFile.Close()
		return nil, err
	}

	engine := scheduler.NewEngine(cfg.SchedulerBuffer)
	engine.Start()

	capability := BuildCapability(ctx, cfg, logger)
	notifier := notify.NewScheduler(capability, engine, notify.Options{
		Lead:   cfg.ReminderLead(),
		Logger: logger.WithPrefix("notify"),
		Queue:  notificationQueue,
	})

	tr, err := tracker.New(ctx, tracker.Deps{
		Persistence:  persist,
		Notifier:     notifier,
		Location:     time.Local,
		Durations:    cfg.FocusDurations(),
		AutoComplete: cfg.AutoComplete,
		UndoWindow:   cfg.UndoWindow(),
		Logger:       logger.WithPrefix("tracker"),
	})
	if err != nil {
		engine.Stop()
		notifier.Close()
		persist.Close()
		logFile.Close()
		return nil, err
	}

	return &Application{
		Config:   cfg,
		Logger:   logger,
		Tracker:  tr,
		persist:  persist,
		engine:   engine,
		notifier: notifier,
		cron:     cron.New(cron.WithLocation(time.Local), cron.WithLogger(cron.PrintfLogger(logger.StandardLog(log.StandardLogOptions{ForceLevel: log.DebugLevel})))),
		logFile:  logFile,
	}, nil
}

func OpenLogger(cfg config.RuntimeConfig) (*log.Logger, io.Closer, error) {
	path := cfg.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "streakd",
	})
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger, f, nil
}

func OpenPersistence(ctx context.Context, cfg config.RuntimeConfig) (storage.Persistence, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		return storage.OpenSQLite(ctx, cfg.SQLiteFile())
	default:
		return storage.NewFileStore(cfg.DataDir)
	}
}

// BuildCapability picks the notification surfaces enabled in cfg. With none
// enabled the scheduler falls back to a denied capability and reminders stay
// inert.
func BuildCapability(ctx context.Context, cfg config.RuntimeConfig, logger *log.Logger) notify.Capability {
	var caps notify.Multi
	if cfg.DesktopNotifications {
		caps = append(caps, notify.NewDesktop(true))
	}
	if cfg.TelegramToken != "" {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			logger.Warn("telegram notifications disabled", "err", err)
		} else {
			caps = append(caps, tg)
		}
	}
	switch len(caps) {
	case 0:
		return nil
	case 1:
		caps[0].RequestPermission(ctx)
		return caps[0]
	default:
		caps.RequestPermission(ctx)
		return caps
	}
}

// Reminders exposes fired reminder events for the presentation layer.
func (a *Application) Reminders() <-chan scheduler.Event {
	return a.engine.C()
}

// SetupCronJobs registers the wall-clock jobs. send delivers a message into
// the running program.
func (a *Application) SetupCronJobs(send func(tea.Msg)) error {
	if _, err := a.cron.AddFunc(RolloverSpec, func() {
		send(update.RolloverMsg{})
	}); err != nil {
		return fmt.Errorf("schedule rollover: %w", err)
	}
	spec := a.Config.OverdueSweep
	if spec == "" {
		spec = DefaultOverdueSweepSpec
	}
	if _, err := a.cron.AddFunc(spec, func() {
		send(update.OverdueSweepMsg{})
	}); err != nil {
		return fmt.Errorf("schedule overdue sweep %q: %w", spec, err)
	}
	return nil
}

// RunTUI blocks until the user quits or ctx is cancelled.
func (a *Application) RunTUI(ctx context.Context) error {
	model := update.NewModel(a.Tracker, update.Options{
		Reminders: a.Reminders(),
		Logger:    a.Logger.WithPrefix("tui"),
		Context:   ctx,
	})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if err := a.SetupCronJobs(program.Send); err != nil {
		return err
	}
	a.cron.Start()
	a.Logger.Info("tui started", "storage", a.Config.Storage, "data_dir", a.Config.DataDir)
	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (a *Application) Close() error {
	<-a.cron.Stop().Done()
	a.engine.Stop()
	a.notifier.Close()
	var errs []error
	if err := a.persist.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	a.Logger.Info("shutdown complete")
	if err := a.logFile.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
