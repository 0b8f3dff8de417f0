package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/streakd/internal/config"
	"github.com/sandeepkv93/streakd/internal/model"
	"github.com/sandeepkv93/streakd/internal/storage"
	"github.com/sandeepkv93/streakd/internal/update"
)

func testConfig(t *testing.T, backend string) config.RuntimeConfig {
	t.Helper()
	cfg := config.DefaultRuntimeConfig()
	cfg.DataDir = t.TempDir()
	cfg.Storage = backend
	cfg.DesktopNotifications = false
	return cfg
}

func TestOpenPersistenceSelectsBackend(t *testing.T) {
	ctx := context.Background()

	fileCfg := testConfig(t, config.StorageFile)
	p, err := OpenPersistence(ctx, fileCfg)
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	if _, ok := p.(*storage.FileStore); !ok {
		t.Fatalf("expected file store, got %T", p)
	}
	_ = p.Close()

	sqlCfg := testConfig(t, config.StorageSQLite)
	p, err = OpenPersistence(ctx, sqlCfg)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	defer p.Close()
	if _, ok := p.(*storage.SQLiteStore); !ok {
		t.Fatalf("expected sqlite store, got %T", p)
	}
	if _, err := os.Stat(sqlCfg.SQLiteFile()); err != nil {
		t.Fatalf("expected database file: %v", err)
	}
}

func TestBuildCapabilityWithNothingEnabled(t *testing.T) {
	cfg := testConfig(t, config.StorageFile)
	if c := BuildCapability(context.Background(), cfg, log.New(io.Discard)); c != nil {
		t.Fatalf("expected no capability, got %T", c)
	}
}

func TestNewPersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t, config.StorageSQLite)

	a, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	points := 3
	task, err := a.Tracker.Add(ctx, model.Draft{
		Title:    "stretch",
		Category: model.CategoryExercise,
		Date:     a.Tracker.Today(),
		Time:     "07:30",
		Points:   &points,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, _, err := a.Tracker.Toggle(ctx, task.ID); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	got, ok := b.Tracker.Find(task.ID)
	if !ok || !got.Completed {
		t.Fatalf("expected completed task after restart, got %+v ok=%v", got, ok)
	}
	if b.Tracker.Stats().TotalPoints != 3 {
		t.Fatalf("expected 3 points after restart, got %d", b.Tracker.Stats().TotalPoints)
	}
	if _, err := os.Stat(filepath.Join(cfg.DataDir, "streakd.log")); err != nil {
		t.Fatalf("expected log file: %v", err)
	}
}

func TestSetupCronJobs(t *testing.T) {
	cfg := testConfig(t, config.StorageFile)
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	var sent []tea.Msg
	if err := a.SetupCronJobs(func(msg tea.Msg) { sent = append(sent, msg) }); err != nil {
		t.Fatalf("setup cron: %v", err)
	}
	entries := a.cron.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 cron entries, got %d", len(entries))
	}
	entries[0].Job.Run()
	entries[1].Job.Run()
	if len(sent) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(sent))
	}
	if _, ok := sent[0].(update.RolloverMsg); !ok {
		t.Fatalf("expected rollover first, got %T", sent[0])
	}
	if _, ok := sent[1].(update.OverdueSweepMsg); !ok {
		t.Fatalf("expected overdue sweep second, got %T", sent[1])
	}
}

func TestSetupCronJobsRejectsBadSweepSpec(t *testing.T) {
	cfg := testConfig(t, config.StorageFile)
	cfg.OverdueSweep = "every now and then"
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()
	if err := a.SetupCronJobs(func(tea.Msg) {}); err == nil {
		t.Fatal("expected invalid cron spec error")
	}
}
