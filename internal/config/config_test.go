package config

import (
	"path/filepath"
	"testing"
	"time"

	"statdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "6060", cfg.Ops.Port)
	assert.True(t, cfg.Ops.Enabled)
	assert.Equal(t, int64(32<<20), cfg.Data.MaxUploadBytes)
	assert.Equal(t, 4, cfg.Sessions.MaxConcurrentAnalyses)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.IdleTimeout)
	assert.Equal(t, 200, cfg.Sessions.HistoryLimit)
	assert.Empty(t, cfg.Database.URL)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_CONCURRENT_ANALYSES", "8")
	t.Setenv("SESSION_IDLE_TIMEOUT", "5m")
	t.Setenv("DEFAULT_ENCODING", "latin1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 8, cfg.Sessions.MaxConcurrentAnalyses)
	assert.Equal(t, 5*time.Minute, cfg.Sessions.IdleTimeout)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string][2]string{
		"zero concurrency": {"MAX_CONCURRENT_ANALYSES", "0"},
		"bad encoding":     {"DEFAULT_ENCODING", "ebcdic"},
		"port clash":       {"OPS_PORT", "8080"},
		"bad log format":   {"LOG_FORMAT", "xml"},
		"negative rows":    {"MAX_ROWS", "-1"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := Load("")
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestSaveThenLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Server.Port = "7070"
	cfg.Sessions.HistoryLimit = 25

	path := filepath.Join(t.TempDir(), "conf", "statdash.yaml")
	require.NoError(t, Save(cfg, path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", loaded.Server.Port)
	assert.Equal(t, 25, loaded.Sessions.HistoryLimit)
	assert.Equal(t, cfg.Sessions.IdleTimeout, loaded.Sessions.IdleTimeout)
}

func TestLoadMissingFileNamesPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.yaml")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), path)
}
