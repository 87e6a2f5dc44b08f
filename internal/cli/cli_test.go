package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/screengraph/internal/config"
	"github.com/aretw0/screengraph/internal/logging"
	"github.com/aretw0/screengraph/pkg/adapters/file"
	"github.com/aretw0/screengraph/pkg/domain"
	"github.com/aretw0/screengraph/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const firefoxPath = "../../pkg/loader/testdata/firefox.yaml"

func firefox(t *testing.T) *graph.Graph {
	t.Helper()
	g, err := LoadGraph(firefoxPath, nil)
	require.NoError(t, err)
	return g
}

func TestParseSet(t *testing.T) {
	set, err := ParseSet([]string{"isPrivate=true", "url=https://a.b/?q=1", "url=x", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"isPrivate": "true", "url": "x", "empty": ""}, set)

	_, err = ParseSet([]string{"novalue"})
	assert.ErrorContains(t, err, `invalid assignment "novalue"`)
	_, err = ParseSet([]string{"=1"})
	assert.Error(t, err)

	params, err := ParseParams(nil)
	require.NoError(t, err)
	assert.Nil(t, params)
	params, err = ParseParams([]string{"url=example.com"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"url": "example.com"}, params)
}

func TestResolveGraphPath(t *testing.T) {
	createDir := func(t *testing.T, files ...string) string {
		dir := t.TempDir()
		for _, f := range files {
			require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("initial: A"), 0o644))
		}
		return dir
	}

	t.Run("file is used as is", func(t *testing.T) {
		got, err := ResolveGraphPath(firefoxPath)
		require.NoError(t, err)
		assert.Equal(t, firefoxPath, got)
	})

	t.Run("conventional name first", func(t *testing.T) {
		dir := createDir(t, "graph.yaml", "screengraph.graph.yaml")
		got, err := ResolveGraphPath(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "screengraph.graph.yaml"), got)
	})

	t.Run("fallback to directory name", func(t *testing.T) {
		root := t.TempDir()
		dir := filepath.Join(root, "checkout")
		require.NoError(t, os.Mkdir(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "checkout.yaml"), []byte("initial: A"), 0o644))

		got, err := ResolveGraphPath(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "checkout.yaml"), got)
	})

	t.Run("nothing matches", func(t *testing.T) {
		_, err := ResolveGraphPath(createDir(t, "other.yaml"))
		assert.ErrorContains(t, err, "no graph file")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := ResolveGraphPath(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorContains(t, err, "graph not found")
	})
}

func TestValidate(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Validate(&out, firefox(t), true))
	assert.Contains(t, out.String(), "Graph is valid: 12 screens, 4 actions.")
}

func TestPath(t *testing.T) {
	g := firefox(t)

	var out bytes.Buffer
	require.NoError(t, Path(&out, g, "", "SettingsScreen", map[string]string{"showWhatsNew": "true"}))
	assert.Equal(t, "1. FirstRun -[noop]-> BrowserTab\n"+
		"2. BrowserTab -[tap]-> BrowserTabMenu\n"+
		"3. BrowserTabMenu -[tap]-> SettingsScreen\n", out.String())

	out.Reset()
	require.NoError(t, Path(&out, g, "TabTray", "TabTray", nil))
	assert.Equal(t, "Already at TabTray.\n", out.String())

	err := Path(&out, g, "", "SettingsScreen", map[string]string{"showWhatsNew": "true", "isPrivate": "true"})
	assert.ErrorIs(t, err, domain.ErrPathNotFound)

	err = Path(&out, g, "", "SettingsScreen", map[string]string{"isPrivate": "maybe"})
	assert.Error(t, err)
}

func TestActions(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Actions(&out, firefox(t), "TabTray", nil))
	assert.Contains(t, out.String(), "TogglePrivateMode\n")
	assert.Contains(t, out.String(), "CloseAllTabs\n")

	err := Actions(&out, firefox(t), "Nowhere", nil)
	assert.ErrorIs(t, err, domain.ErrUnknownScreen)
}

func TestMermaidAndDescribe(t *testing.T) {
	g := firefox(t)

	var out bytes.Buffer
	Mermaid(&out, g, "TabTray", []string{"FirstRun"})
	assert.Contains(t, out.String(), "graph TD\n")
	assert.Contains(t, out.String(), "TabTray")

	out.Reset()
	require.NoError(t, Describe(&out, g, "Firefox", false))
	assert.Contains(t, out.String(), "# Firefox")
	assert.Contains(t, out.String(), "## TabTray")
}

func TestDryRun(t *testing.T) {
	ctx := context.Background()
	g := firefox(t)

	var out bytes.Buffer
	err := DryRun(ctx, &out, g, DryRunOptions{
		Set:    map[string]string{"showWhatsNew": "true"},
		Action: "TogglePrivateMode",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Position: at TabTray\n")
	assert.Contains(t, out.String(), "  - tap TabTrayController.maskButton\n")
	assert.Contains(t, out.String(), "  isPrivate = true\n")

	out.Reset()
	err = DryRun(ctx, &out, g, DryRunOptions{
		Set:  map[string]string{"showWhatsNew": "true", "isPrivate": "true"},
		To:   "SettingsScreen",
		JSON: true,
	})
	require.ErrorIs(t, err, domain.ErrPathNotFound)

	var report struct {
		Status    string   `json:"status"`
		Performed []string `json:"performed"`
		Error     string   `json:"error"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "at", report.Status)
	assert.Empty(t, report.Performed)
	assert.NotEmpty(t, report.Error)
}

func baseConfig(t *testing.T) *config.Config {
	return &config.Config{
		LogLevel:      "info",
		VerifyTimeout: time.Second,
		PollInterval:  10 * time.Millisecond,
		Store:         config.StoreMemory,
		StoreDir:      t.TempDir(),
		RedisTTL:      time.Hour,
		LockTTL:       5 * time.Second,
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()
	snap := domain.Snapshot{
		SessionID: "s1",
		Current:   "Home",
		Status:    domain.StatusAt,
		Values:    map[string]any{"password": "hunter2", "night": true},
		UpdatedAt: time.Now().UTC(),
	}

	t.Run("file", func(t *testing.T) {
		cfg := baseConfig(t)
		cfg.Store = config.StoreFile
		p, err := OpenStore(cfg, logger)
		require.NoError(t, err)
		assert.Nil(t, p.Locker)

		require.NoError(t, p.Store.Save(ctx, "s1", snap))
		_, err = os.Stat(filepath.Join(cfg.StoreDir, "s1.json"))
		assert.NoError(t, err)
		assert.NoError(t, p.Close())
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		cfg := baseConfig(t)
		cfg.Store = config.StoreRedis
		cfg.RedisAddr = mr.Addr()

		p, err := OpenStore(cfg, logger)
		require.NoError(t, err)
		defer p.Close()
		require.NotNil(t, p.Locker)

		require.NoError(t, p.Store.Save(ctx, "s1", snap))
		got, err := p.Store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "Home", got.Current)

		unlock, err := p.Locker.Lock(ctx, "s1", time.Second)
		require.NoError(t, err)
		require.NoError(t, unlock(ctx))
	})

	t.Run("masked and sealed", func(t *testing.T) {
		cfg := baseConfig(t)
		cfg.MaskFields = []string{"^password$"}
		cfg.EncryptionKey = base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))

		p, err := OpenStore(cfg, logger)
		require.NoError(t, err)
		require.NoError(t, p.Store.Save(ctx, "s1", snap))

		got, err := p.Store.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "***", got.Values["password"])
		assert.Equal(t, true, got.Values["night"])
	})

	t.Run("bad mask", func(t *testing.T) {
		cfg := baseConfig(t)
		cfg.MaskFields = []string{"("}
		_, err := OpenStore(cfg, logger)
		assert.Error(t, err)
	})
}

const driveGraph = `initial: Home
state:
  night: {type: bool, default: false}
screens:
  - name: Home
    on_enter:
      exists: [home]
    edges:
      - tap: menu
        to: Menu
  - name: Menu
    on_enter:
      exists: [menuList]
    back: {tap: cancel}
    edges:
      - tap: night
        actions: [ToggleNight]
        toggle: [night]
`

const driveApp = `#!/bin/sh
state="$(cat screen 2>/dev/null || echo Home)"
case "$1" in
exists)
  case "$state:$SCREENGRAPH_LOCATOR" in
    Home:home|Menu:menuList) echo true ;;
    *) echo false ;;
  esac ;;
perform)
  case "$state:$SCREENGRAPH_LOCATOR" in
    Home:menu) echo Menu > screen ;;
    Menu:cancel) echo Home > screen ;;
    Menu:night) ;;
    *) exit 2 ;;
  esac ;;
esac
`

func TestDrive(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("driver scripts need a POSIX shell")
	}
	ctx := context.Background()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "graph.yaml"), []byte(driveGraph), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.sh"), []byte(driveApp), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "driver.yaml"), []byte(`commands:
  exists:  {command: sh, args: [app.sh, exists]}
  perform: {command: sh, args: [app.sh, perform]}
`), 0o644))

	cfg := baseConfig(t)
	cfg.Store = config.StoreFile
	logger := logging.NewNop()
	base := DriveOptions{GraphPath: dir, DriverPath: filepath.Join(dir, "driver.yaml"), SessionID: "s1"}

	var out bytes.Buffer
	opts := base
	opts.To = "Menu"
	require.NoError(t, Drive(ctx, &out, cfg, logger, opts))
	assert.Contains(t, out.String(), `>>> Session "s1" started at 'Home'.`)
	assert.Contains(t, out.String(), ">>> Finished at 'Menu'.")

	out.Reset()
	opts = base
	opts.Action = "ToggleNight"
	require.NoError(t, Drive(ctx, &out, cfg, logger, opts))
	assert.Contains(t, out.String(), `>>> Resuming session "s1" at 'Menu'.`)

	store := file.New(cfg.StoreDir)
	snap, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Menu", snap.Current)
	assert.Equal(t, true, snap.Values["night"])

	opts = base
	opts.Set = map[string]string{"night": "maybe"}
	assert.Error(t, Drive(ctx, &out, cfg, logger, opts))

	opts = base
	opts.End = true
	require.NoError(t, Drive(ctx, &out, cfg, logger, opts))
	_, err = store.Load(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	cfg := baseConfig(t)
	cfg.Store = config.StoreFile
	p, err := OpenStore(cfg, logging.NewNop())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, ListSessions(ctx, &out, p.Store))
	assert.Equal(t, "No sessions found.\n", out.String())

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, p.Store.Save(ctx, id, domain.Snapshot{SessionID: id, Current: "Home", Status: domain.StatusAt}))
	}

	out.Reset()
	require.NoError(t, ListSessions(ctx, &out, p.Store))
	assert.Contains(t, out.String(), "- b\n")

	out.Reset()
	require.NoError(t, InspectSession(ctx, &out, p.Store, "a"))
	assert.Contains(t, out.String(), `"current": "Home"`)
	assert.ErrorIs(t, InspectSession(ctx, &out, p.Store, "zz"), domain.ErrSessionNotFound)

	out.Reset()
	require.NoError(t, RemoveSessions(ctx, &out, p.Store, []string{"a"}, false))
	assert.Equal(t, "Removed session 'a'\n", out.String())

	require.NoError(t, RemoveSessions(ctx, &out, p.Store, nil, true))
	ids, err := p.Store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
