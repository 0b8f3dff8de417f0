// Package config resolves runtime settings from defaults, an optional YAML
// file and STREAKD_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sandeepkv93/streakd/internal/focus"
)

const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
)

var ErrInvalidConfig = errors.New("config: invalid value")

type RuntimeConfig struct {
	DataDir                string `yaml:"data_dir"`
	Storage                string `yaml:"storage"`
	SQLitePath             string `yaml:"sqlite_path"`
	FocusWorkMinutes       int    `yaml:"focus_work_minutes"`
	FocusShortBreakMinutes int    `yaml:"focus_short_break_minutes"`
	FocusLongBreakMinutes  int    `yaml:"focus_long_break_minutes"`
	LongBreakEvery         int    `yaml:"long_break_every"`
	AutoComplete           bool   `yaml:"auto_complete"`
	DesktopNotifications   bool   `yaml:"desktop_notifications"`
	TelegramToken          string `yaml:"telegram_token"`
	TelegramChatID         int64  `yaml:"telegram_chat_id"`
	ReminderLeadMinutes    int    `yaml:"reminder_lead_minutes"`
	UndoWindowSeconds      int    `yaml:"undo_window_seconds"`
	SchedulerBuffer        int    `yaml:"scheduler_buffer"`
	OverdueSweep           string `yaml:"overdue_sweep"`
	LogFile                string `yaml:"log_file"`
	LogLevel               string `yaml:"log_level"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DataDir:                defaultDataDir(),
		Storage:                StorageFile,
		FocusWorkMinutes:       25,
		FocusShortBreakMinutes: 5,
		FocusLongBreakMinutes:  15,
		LongBreakEvery:         4,
		AutoComplete:           false,
		DesktopNotifications:   false,
		ReminderLeadMinutes:    10,
		UndoWindowSeconds:      8,
		SchedulerBuffer:        64,
		OverdueSweep:           "*/5 * * * *",
		LogLevel:               "info",
	}
}

func defaultDataDir() string {
	if v := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); v != "" {
		return filepath.Join(v, "streakd")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".streakd")
	}
	return ".streakd"
}

// Load layers the YAML file at path (skipped when empty) and the environment
// over the defaults, then validates the result.
func Load(path string) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()
	if path == "" {
		path = strings.TrimSpace(os.Getenv("STREAKD_CONFIG"))
	}
	if path != "" {
		var err error
		cfg, err = LoadFile(path, cfg)
		if err != nil {
			return RuntimeConfig{}, err
		}
	}
	cfg = RuntimeConfigFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

// LoadFile overlays the keys present in the YAML file onto base.
func LoadFile(path string, base RuntimeConfig) (RuntimeConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return RuntimeConfig{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := base
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("STREAKD_DATA_DIR"); ok {
		cfg.DataDir = v
	}
	if v, ok := getEnvString("STREAKD_STORAGE"); ok {
		cfg.Storage = strings.ToLower(v)
	}
	if v, ok := getEnvString("STREAKD_SQLITE_PATH"); ok {
		cfg.SQLitePath = v
	}
	if v, ok := getEnvInt("STREAKD_FOCUS_WORK_MINUTES"); ok && v > 0 {
		cfg.FocusWorkMinutes = v
	}
	if v, ok := getEnvInt("STREAKD_FOCUS_SHORT_BREAK_MINUTES"); ok && v > 0 {
		cfg.FocusShortBreakMinutes = v
	}
	if v, ok := getEnvInt("STREAKD_FOCUS_LONG_BREAK_MINUTES"); ok && v > 0 {
		cfg.FocusLongBreakMinutes = v
	}
	if v, ok := getEnvInt("STREAKD_LONG_BREAK_EVERY"); ok && v > 0 {
		cfg.LongBreakEvery = v
	}
	if v, ok := getEnvBool("STREAKD_AUTO_COMPLETE"); ok {
		cfg.AutoComplete = v
	}
	if v, ok := getEnvBool("STREAKD_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvString("STREAKD_TELEGRAM_TOKEN"); ok {
		cfg.TelegramToken = v
	}
	if v, ok := getEnvString("STREAKD_TELEGRAM_CHAT_ID"); ok {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.TelegramChatID = id
		}
	}
	if v, ok := getEnvInt("STREAKD_REMINDER_LEAD_MINUTES"); ok && v > 0 {
		cfg.ReminderLeadMinutes = v
	}
	if v, ok := getEnvInt("STREAKD_UNDO_WINDOW_SECONDS"); ok && v > 0 {
		cfg.UndoWindowSeconds = v
	}
	if v, ok := getEnvInt("STREAKD_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvString("STREAKD_OVERDUE_SWEEP"); ok {
		cfg.OverdueSweep = v
	}
	if v, ok := getEnvString("STREAKD_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := getEnvString("STREAKD_LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	return cfg
}

func (c RuntimeConfig) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("%w: data_dir is empty", ErrInvalidConfig)
	}
	switch c.Storage {
	case StorageFile, StorageSQLite:
	default:
		return fmt.Errorf("%w: storage %q (want file or sqlite)", ErrInvalidConfig, c.Storage)
	}
	if c.FocusWorkMinutes <= 0 || c.FocusShortBreakMinutes <= 0 || c.FocusLongBreakMinutes <= 0 {
		return fmt.Errorf("%w: focus durations must be positive", ErrInvalidConfig)
	}
	if c.LongBreakEvery <= 0 {
		return fmt.Errorf("%w: long_break_every must be positive", ErrInvalidConfig)
	}
	if c.TelegramToken != "" && c.TelegramChatID == 0 {
		return fmt.Errorf("%w: telegram_chat_id is required with telegram_token", ErrInvalidConfig)
	}
	return nil
}

func (c RuntimeConfig) FocusDurations() focus.Durations {
	return focus.Durations{
		Work:           time.Duration(c.FocusWorkMinutes) * time.Minute,
		ShortBreak:     time.Duration(c.FocusShortBreakMinutes) * time.Minute,
		LongBreak:      time.Duration(c.FocusLongBreakMinutes) * time.Minute,
		LongBreakEvery: c.LongBreakEvery,
	}
}

func (c RuntimeConfig) ReminderLead() time.Duration {
	return time.Duration(c.ReminderLeadMinutes) * time.Minute
}

func (c RuntimeConfig) UndoWindow() time.Duration {
	return time.Duration(c.UndoWindowSeconds) * time.Second
}

func (c RuntimeConfig) SQLiteFile() string {
	if c.SQLitePath != "" {
		return c.SQLitePath
	}
	return filepath.Join(c.DataDir, "streakd.db")
}

func (c RuntimeConfig) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, "streakd.log")
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	return raw, raw != ""
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
