package config

import (
	"encoding/base64"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir(), nil)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelInfo, cfg.Level())
	assert.Equal(t, 5*time.Second, cfg.VerifyTimeout)
	assert.Equal(t, 100*time.Millisecond, cfg.PollInterval)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	yaml := "log_level: debug\nverify_timeout: 2s\nport: 9000\nstore: file\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "screengraph.yaml"), []byte(yaml), 0o644))

	t.Setenv("SCREENGRAPH_PORT", "9100")
	t.Setenv("SCREENGRAPH_POLL_INTERVAL", "20ms")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("port", 8080, "")
	fs.String("store", "memory", "")
	require.NoError(t, fs.Parse([]string{"--port", "9200"}))

	cfg, err := Load(dir, fs)
	require.NoError(t, err)

	assert.Equal(t, slog.LevelDebug, cfg.Level(), "from file")
	assert.Equal(t, 2*time.Second, cfg.VerifyTimeout, "from file")
	assert.Equal(t, 20*time.Millisecond, cfg.PollInterval, "from env")
	assert.Equal(t, 9200, cfg.Port, "flag beats env and file")
	assert.Equal(t, StoreFile, cfg.Store, "unset flags do not override the file")
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "screengraph.yaml"), []byte("port: [\n"), 0o644))
		_, err := Load(dir, nil)
		assert.ErrorContains(t, err, "read config")
	})

	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("SCREENGRAPH_STORE", "etcd")
		_, err := Load(t.TempDir(), nil)
		assert.ErrorContains(t, err, `unknown store "etcd"`)
	})

	t.Run("bad level", func(t *testing.T) {
		t.Setenv("SCREENGRAPH_LOG_LEVEL", "loud")
		_, err := Load(t.TempDir(), nil)
		assert.ErrorContains(t, err, "invalid log level")
	})

	t.Run("short key", func(t *testing.T) {
		t.Setenv("SCREENGRAPH_ENCRYPTION_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
		_, err := Load(t.TempDir(), nil)
		assert.ErrorContains(t, err, "want 32 bytes")
	})
}

func TestLoad_Persistence(t *testing.T) {
	dir := t.TempDir()
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	yaml := "encryption_key: " + key + "\nmask_fields: [\"^password$\", token]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "screengraph.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir, nil)
	require.NoError(t, err)

	raw, err := cfg.Key()
	require.NoError(t, err)
	assert.Len(t, raw, 32)
	assert.Equal(t, []string{"^password$", "token"}, cfg.MaskFields)
}
