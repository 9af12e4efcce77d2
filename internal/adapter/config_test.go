package adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFrom_Defaults(t *testing.T) {
	cfg, err := LoadConfigFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 10, cfg.Listing.PageSize)
	assert.Equal(t, 50, cfg.Listing.BackendPageSize)
	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.False(t, cfg.IsConfigured())
}

func TestLoadConfigFrom_FileEnvAndDotenv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  url: https://api.learn.example.com
client:
  timeout: 5s
  requests_per_second: 4
listing:
  page_size: 20
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("LUMEN_LISTING_BACKEND_PAGE_SIZE=25\nLUMEN_LOGGING_LEVEL=ERROR\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("LUMEN_LISTING_BACKEND_PAGE_SIZE") })
	t.Setenv("LUMEN_LOGGING_LEVEL", "DEBUG") // the real environment beats .env
	t.Setenv("LUMEN_SERVER_WEB_URL", "https://learn.example.com")

	cfg, err := LoadConfigFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://api.learn.example.com", cfg.Server.URL)
	assert.Equal(t, "https://learn.example.com", cfg.WebBase())
	assert.Equal(t, 5*time.Second, cfg.Client.Timeout)
	assert.InDelta(t, 4.0, cfg.Client.RequestsPerSecond, 1e-9)
	assert.Equal(t, 20, cfg.Listing.PageSize)
	assert.Equal(t, 25, cfg.Listing.BackendPageSize)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestSaveConfigTo_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Server.URL = "https://api.example.com"
	cfg.Client.Timeout = 12 * time.Second
	cfg.Session.Dir = ""
	cfg.Browser.Command = "firefox"

	require.NoError(t, SaveConfigTo(dir, cfg))

	loaded, err := LoadConfigFrom(dir)
	require.NoError(t, err)
	assert.Equal(t, cfg.Server.URL, loaded.Server.URL)
	assert.Equal(t, cfg.WebBase(), loaded.WebBase())
	assert.Equal(t, 12*time.Second, loaded.Client.Timeout)
	assert.Equal(t, "firefox", loaded.Browser.Command)
	assert.Empty(t, loaded.Session.Dir)
}

func TestSetupLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "lumen.log")
	logger, closeLog, err := SetupLogger(&LoggingConfig{File: path, Level: "debug"})
	require.NoError(t, err)

	logger.Debug("hello", "k", "v")
	require.NoError(t, closeLog())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)

	logger, closeLog, err = SetupLogger(&LoggingConfig{})
	require.NoError(t, err)
	assert.NotNil(t, logger)
	assert.NoError(t, closeLog())
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("warning").String())
	assert.Equal(t, "INFO", parseLogLevel("nonsense").String())
}
