package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jobsearch/internal/kvstore"
)

func TestLoadConfig_ValidJSON(t *testing.T) {
	content := `{
		"api_url": "https://jobs.example.com/api",
		"stale_time": "30m",
		"debounce_delay": "250ms",
		"page_size": 10,
		"store": "redis",
		"redis_url": "redis://localhost:6379/0",
		"verbose": true
	}`

	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "https://jobs.example.com/api", cfg.APIURL)
	assert.Equal(t, 30*time.Minute, cfg.StaleTime.Std())
	assert.Equal(t, 250*time.Millisecond, cfg.DebounceDelay.Std())
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, "redis", cfg.Store)
	assert.True(t, cfg.Verbose)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_ValidYAML(t *testing.T) {
	content := `
api_url: https://jobs.example.com/api
stale_time: 2h
timeout: 15
page_size: 5
store: file
store_path: /tmp/jobsearch.json
`
	tmpFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(tmpFile, []byte(content), 0644))

	cfg, err := LoadConfig(tmpFile)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Hour, cfg.StaleTime.Std())
	assert.Equal(t, 15*time.Second, cfg.Timeout.Std())
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, "/tmp/jobsearch.json", cfg.StorePath)
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(tmpFile, []byte(`{ invalid json }`), 0644))

	cfg, err := LoadConfig(tmpFile)
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to parse config JSON")
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(tmpFile, []byte("stale_time: soon\n"), 0644))

	_, err := LoadConfig(tmpFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid duration")
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.json")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "config path is empty")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"defaults are valid", Defaults(), ""},
		{"empty is valid", Config{}, ""},
		{"bad url", Config{APIURL: "not a url"}, "api_url"},
		{"negative page size", Config{PageSize: -1}, "page_size"},
		{"unknown store", Config{Store: "etcd"}, "store"},
		{"redis without url", Config{Store: kvstore.BackendRedis}, "redis_url"},
		{"postgres without url", Config{Store: kvstore.BackendPostgres}, "database_url"},
		{"postgres with url", Config{Store: kvstore.BackendPostgres, DatabaseURL: "postgres://localhost/db"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMergeWithDefaults(t *testing.T) {
	partial := Config{
		APIURL:   "https://custom.example.com",
		PageSize: 3,
	}

	merged := partial.MergeWithDefaults(Defaults())

	assert.Equal(t, "https://custom.example.com", merged.APIURL)
	assert.Equal(t, 3, merged.PageSize)
	assert.Equal(t, time.Hour, merged.StaleTime.Std())
	assert.Equal(t, 500*time.Millisecond, merged.DebounceDelay.Std())
	assert.Equal(t, kvstore.BackendFile, merged.Store)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("JOBSEARCH_API_URL", "https://env.example.com")
	t.Setenv("JOBSEARCH_STORE", "postgres")
	t.Setenv("DATABASE_URL", "postgres://env/db")

	cfg := Defaults()
	cfg.ApplyEnv()

	assert.Equal(t, "https://env.example.com", cfg.APIURL)
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, "postgres://env/db", cfg.StoreConfig().DatabaseURL)
	assert.Equal(t, "https://env.example.com", cfg.ClientOptions().BaseURL)
}
