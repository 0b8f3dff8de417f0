package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRuntimeConfigDefaults(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	if cfg.FocusWorkMinutes != 25 || cfg.FocusShortBreakMinutes != 5 || cfg.FocusLongBreakMinutes != 15 {
		t.Fatalf("unexpected focus defaults: %+v", cfg)
	}
	if cfg.LongBreakEvery != 4 || cfg.SchedulerBuffer != 64 || cfg.Storage != StorageFile {
		t.Fatalf("unexpected runtime defaults: %+v", cfg)
	}
	if cfg.ReminderLead() != 10*time.Minute || cfg.UndoWindow() != 8*time.Second {
		t.Fatalf("unexpected timing defaults: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestRuntimeConfigFromEnv(t *testing.T) {
	t.Setenv("STREAKD_DESKTOP_NOTIFICATIONS", "true")
	t.Setenv("STREAKD_FOCUS_WORK_MINUTES", "30")
	t.Setenv("STREAKD_FOCUS_SHORT_BREAK_MINUTES", "7")
	t.Setenv("STREAKD_LONG_BREAK_EVERY", "3")
	t.Setenv("STREAKD_SCHEDULER_BUFFER", "128")
	t.Setenv("STREAKD_STORAGE", "SQLite")
	t.Setenv("STREAKD_TELEGRAM_CHAT_ID", "12345")
	t.Setenv("STREAKD_AUTO_COMPLETE", "no")
	t.Setenv("STREAKD_UNDO_WINDOW_SECONDS", "abc")

	cfg := RuntimeConfigFromEnv(DefaultRuntimeConfig())
	if !cfg.DesktopNotifications || cfg.AutoComplete {
		t.Fatalf("unexpected boolean overrides: %+v", cfg)
	}
	if cfg.FocusWorkMinutes != 30 || cfg.FocusShortBreakMinutes != 7 || cfg.LongBreakEvery != 3 {
		t.Fatalf("unexpected focus config: %+v", cfg)
	}
	if cfg.SchedulerBuffer != 128 || cfg.Storage != StorageSQLite || cfg.TelegramChatID != 12345 {
		t.Fatalf("unexpected config overrides: %+v", cfg)
	}
	if cfg.UndoWindowSeconds != 8 {
		t.Fatalf("malformed env value should be ignored, got %d", cfg.UndoWindowSeconds)
	}
	d := cfg.FocusDurations()
	if d.Work != 30*time.Minute || d.LongBreakEvery != 3 {
		t.Fatalf("unexpected durations %+v", d)
	}
}

func TestLoadLayersFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "streakd.yaml")
	body := "data_dir: " + dir + "\nstorage: sqlite\nfocus_work_minutes: 50\nauto_complete: true\nlog_level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("STREAKD_FOCUS_WORK_MINUTES", "45")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage != StorageSQLite || !cfg.AutoComplete || cfg.LogLevel != "debug" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.FocusWorkMinutes != 45 {
		t.Fatalf("env should win over file, got %d", cfg.FocusWorkMinutes)
	}
	if cfg.FocusShortBreakMinutes != 5 {
		t.Fatalf("keys missing from the file keep defaults, got %d", cfg.FocusShortBreakMinutes)
	}
	if cfg.SQLiteFile() != filepath.Join(dir, "streakd.db") || cfg.LogPath() != filepath.Join(dir, "streakd.log") {
		t.Fatalf("unexpected derived paths: %s %s", cfg.SQLiteFile(), cfg.LogPath())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("STREAKD_DATA_DIR", t.TempDir())
	t.Setenv("STREAKD_STORAGE", "postgres")
	if _, err := Load(""); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("storage: [file"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(bad, DefaultRuntimeConfig()); err == nil {
		t.Fatal("expected parse error")
	}

	cfg := DefaultRuntimeConfig()
	cfg.TelegramToken = "token"
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected missing chat id error, got %v", err)
	}
}
