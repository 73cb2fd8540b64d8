// Package config provides configuration management for corhyn.
// Values come from defaults, an optional config.yaml, and CORHYN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/sadopc/corhyn/internal/logger"
	"github.com/sadopc/corhyn/internal/store"
)

// Config holds all configuration sections.
type Config struct {
	Database DatabaseConfig       `mapstructure:"database"`
	Logging  logger.LoggingConfig `mapstructure:"logging"`
	Pomodoro PomodoroConfig       `mapstructure:"pomodoro"`
	Report   ReportConfig         `mapstructure:"report"`
	Export   ExportConfig         `mapstructure:"export"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// PomodoroConfig holds the default pomodoro plan, in minutes.
type PomodoroConfig struct {
	WorkMinutes       int `mapstructure:"workMinutes"`
	ShortBreakMinutes int `mapstructure:"shortBreakMinutes"`
	LongBreakMinutes  int `mapstructure:"longBreakMinutes"`
	Rounds            int `mapstructure:"rounds"`
}

type ReportConfig struct {
	DailyGoalMinutes int `mapstructure:"dailyGoalMinutes"`
}

type ExportConfig struct {
	Format string `mapstructure:"format"`
}

// Work returns the work phase length.
func (p PomodoroConfig) Work() time.Duration {
	return time.Duration(p.WorkMinutes) * time.Minute
}

func (p PomodoroConfig) ShortBreak() time.Duration {
	return time.Duration(p.ShortBreakMinutes) * time.Minute
}

func (p PomodoroConfig) LongBreak() time.Duration {
	return time.Duration(p.LongBreakMinutes) * time.Minute
}

// DefaultDir returns the directory holding config.yaml and the database.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".corhyn"
	}
	return filepath.Join(dir, "corhyn")
}

func setDefaults(v *viper.Viper) {
	dbPath, err := store.DefaultDBPath()
	if err != nil {
		dbPath = filepath.Join(DefaultDir(), "corhyn.db")
	}
	v.SetDefault("database.path", dbPath)

	// Logging stays on stderr so command output remains pipeable.
	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.outputPath", "stderr")

	v.SetDefault("pomodoro.workMinutes", 25)
	v.SetDefault("pomodoro.shortBreakMinutes", 5)
	v.SetDefault("pomodoro.longBreakMinutes", 15)
	v.SetDefault("pomodoro.rounds", 4)

	v.SetDefault("report.dailyGoalMinutes", 480)

	v.SetDefault("export.format", "csv")
}

// Load reads configuration from the default locations.
func Load() (*Config, error) {
	return LoadWithPath("")
}

// LoadWithPath reads configuration from configPath (a directory) in addition
// to the default locations.
func LoadWithPath(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CORHYN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv does not map camelCase keys to SNAKE_CASE.
	_ = v.BindEnv("database.path", "CORHYN_DB", "CORHYN_DATABASE_PATH")
	_ = v.BindEnv("logging.outputPath", "CORHYN_LOGGING_OUTPUT_PATH")
	_ = v.BindEnv("pomodoro.workMinutes", "CORHYN_POMODORO_WORK_MINUTES")
	_ = v.BindEnv("pomodoro.shortBreakMinutes", "CORHYN_POMODORO_SHORT_BREAK_MINUTES")
	_ = v.BindEnv("pomodoro.longBreakMinutes", "CORHYN_POMODORO_LONG_BREAK_MINUTES")
	_ = v.BindEnv("report.dailyGoalMinutes", "CORHYN_REPORT_DAILY_GOAL_MINUTES")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}
	v.AddConfigPath(".")
	v.AddConfigPath(DefaultDir())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	var errs []string

	if cfg.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(cfg.Logging.Level)] {
		errs = append(errs, "logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true, "console": true}
	if !validFormats[strings.ToLower(cfg.Logging.Format)] {
		errs = append(errs, "logging.format must be one of: json, text, console")
	}

	if cfg.Pomodoro.WorkMinutes <= 0 {
		errs = append(errs, "pomodoro.workMinutes must be positive")
	}
	if cfg.Pomodoro.ShortBreakMinutes < 0 || cfg.Pomodoro.LongBreakMinutes < 0 {
		errs = append(errs, "pomodoro break lengths must not be negative")
	}
	if cfg.Pomodoro.Rounds <= 0 {
		errs = append(errs, "pomodoro.rounds must be positive")
	}
	if cfg.Report.DailyGoalMinutes < 0 {
		errs = append(errs, "report.dailyGoalMinutes must not be negative")
	}

	switch strings.ToLower(cfg.Export.Format) {
	case "csv", "json", "yaml":
	default:
		errs = append(errs, "export.format must be one of: csv, json, yaml")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
