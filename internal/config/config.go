// Package config loads taskdesk settings from a YAML file or the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultPath is where init writes the config file.
const DefaultPath = ".taskdesk/config.yaml"

type Config struct {
	DBPath       string `yaml:"db_path" env:"TASKDESK_DB_PATH" env-default:".taskdesk/taskdesk.db"`
	SnapshotPath string `yaml:"snapshot_path" env:"TASKDESK_SNAPSHOT_PATH" env-default:".taskdesk/snapshot.jsonl"`
	AutoSnapshot bool   `yaml:"auto_snapshot" env:"TASKDESK_AUTO_SNAPSHOT" env-default:"false"`
	LogLevel     string `yaml:"log_level" env:"TASKDESK_LOG_LEVEL" env-default:"INFO"`
	LogPath      string `yaml:"log_path" env:"TASKDESK_LOG_PATH" env-default:".taskdesk/taskdesk.log"`
	WebPort      string `yaml:"web_port" env:"TASKDESK_WEB_PORT" env-default:"8000"`
}

// Load reads configPath if it exists and falls back to the environment
// otherwise. Environment variables override values from the file.
func Load(configPath string) (Config, error) {
	var cfg Config

	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("cannot read env: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return Config{}, fmt.Errorf("cannot read config %q: %w", configPath, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("cannot read env: %w", err)
		}
	}
	return cfg, nil
}

func MustLoad(configPath string) Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// Default returns the built-in settings as YAML, for init to write out.
func Default() string {
	return `db_path: .taskdesk/taskdesk.db
snapshot_path: .taskdesk/snapshot.jsonl
auto_snapshot: false
log_level: INFO
log_path: .taskdesk/taskdesk.log
web_port: "8000"
`
}

// ParseLevel maps DEBUG, INFO, WARN and ERROR to slog levels. Anything else
// is INFO.
func ParseLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func NewLogger(level string, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}
