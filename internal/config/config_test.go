package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ".taskdesk/taskdesk.db", cfg.DBPath)
	assert.Equal(t, ".taskdesk/snapshot.jsonl", cfg.SnapshotPath)
	assert.False(t, cfg.AutoSnapshot)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, ".taskdesk/taskdesk.log", cfg.LogPath)
	assert.Equal(t, "8000", cfg.WebPort)
}

func TestLoad_EmptyPathReadsEnv(t *testing.T) {
	t.Setenv("TASKDESK_DB_PATH", "/tmp/env.db")
	t.Setenv("TASKDESK_AUTO_SNAPSHOT", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env.db", cfg.DBPath)
	assert.True(t, cfg.AutoSnapshot)
	assert.Equal(t, "8000", cfg.WebPort)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `db_path: data/tasks.db
auto_snapshot: true
log_level: DEBUG
web_port: "9090"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "data/tasks.db", cfg.DBPath)
	assert.True(t, cfg.AutoSnapshot)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Equal(t, "9090", cfg.WebPort)
	assert.Equal(t, ".taskdesk/snapshot.jsonl", cfg.SnapshotPath, "unset keys keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "web_port: \"9090\"\n")
	t.Setenv("TASKDESK_WEB_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.WebPort)
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, "db_path: [unclosed\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestDefaultIsLoadable(t *testing.T) {
	cfg, err := Load(writeConfig(t, Default()))
	require.NoError(t, err)

	want, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, want, cfg)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG":   slog.LevelDebug,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" ERROR ": slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "ParseLevel(%q)", in)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger("WARN", &buf)

	log.Info("hidden")
	log.Warn("shown", "id", 7)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=shown")
	assert.Contains(t, out, "id=7")
}
