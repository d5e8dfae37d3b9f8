package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points HOME at a temp dir and clears the variables Load reads.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, name := range []string{EnvAPIURL, EnvStreaming, EnvDataDir, EnvDebug, "XDG_CONFIG_HOME", "XDG_DATA_HOME"} {
		t.Setenv(name, "")
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(home); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return home
}

func TestLoadDefaults(t *testing.T) {
	home := isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.False(t, cfg.Streaming)
	assert.Equal(t, DefaultGreeting, cfg.Greeting)
	assert.Equal(t, filepath.Join(home, ".local", "share", "assistui"), cfg.DataDir())
	require.NotNil(t, cfg.KeyBindings)

	assert.FileExists(t, filepath.Join(home, ".config", "assistui", "settings.toml"))
	assert.FileExists(t, filepath.Join(cfg.DataDir(), "keybindings.toml"))
}

func TestLoadReadsSettingsFile(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "assistui")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.toml"), []byte(`
api_url = "http://shop.internal:9000/"
streaming = true
greeting = "Hi there"
data_directory = "~/assistui-data"
`), 0600))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://shop.internal:9000/", cfg.APIURL)
	assert.Equal(t, "http://shop.internal:9000", cfg.BaseURL())
	assert.True(t, cfg.Streaming)
	assert.Equal(t, "Hi there", cfg.Greeting)
	assert.Equal(t, filepath.Join(home, "assistui-data"), cfg.DataDir())
}

func TestLoadEnvOverridesSettings(t *testing.T) {
	home := isolate(t)
	require.NoError(t, CreateDefaultSettings())

	t.Setenv(EnvAPIURL, "http://env:8000")
	t.Setenv(EnvStreaming, "yes")
	t.Setenv(EnvDataDir, filepath.Join(home, "env-data"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://env:8000", cfg.APIURL)
	assert.True(t, cfg.Streaming)
	assert.Equal(t, filepath.Join(home, "env-data"), cfg.DataDir())
}

func TestLoadDotEnv(t *testing.T) {
	home := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(home, ".env"), []byte("ASSISTUI_API_URL=http://dotenv:8000\n"), 0600))
	// godotenv does not override set variables; an empty value counts as set.
	require.NoError(t, os.Unsetenv(EnvAPIURL))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://dotenv:8000", cfg.APIURL)
	require.NoError(t, os.Unsetenv(EnvAPIURL))
}

func TestLoadRejectsBrokenSettings(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "assistui")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.toml"), []byte("api_url = "), 0600))

	_, err := Load()
	assert.ErrorContains(t, err, "failed to parse settings")
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	isolate(t)

	want := &Settings{APIURL: "https://example.test", Streaming: true, DataDirectory: "~/d"}
	require.NoError(t, SaveSettings(want))

	got, err := LoadSettings()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", " yes ", "on"} {
		assert.True(t, isTruthy(v), v)
	}
	for _, v := range []string{"", "0", "false", "off", "nope"} {
		assert.False(t, isTruthy(v), v)
	}
}

func TestExpandPath(t *testing.T) {
	home := isolate(t)
	t.Setenv("ASSISTUI_TEST_DIR", "sub")

	assert.Equal(t, "", ExpandPath(""))
	assert.Equal(t, filepath.Join(home, "x"), ExpandPath("~/x"))
	assert.Equal(t, filepath.Join("/tmp", "sub"), ExpandPath("/tmp/$ASSISTUI_TEST_DIR"))
}

func TestInitDebugLogDisabled(t *testing.T) {
	home := isolate(t)

	InitDebugLog(home)

	assert.False(t, Debug)
	assert.NoFileExists(t, filepath.Join(home, "debug.log"))
}

func TestXDGDirectories(t *testing.T) {
	isolate(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(xdg, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(xdg, "data"))

	assert.Equal(t, filepath.Join(xdg, "cfg", "assistui", "settings.toml"), GetSettingsFilePath())
	if runtime.GOOS != "windows" {
		assert.Equal(t, filepath.Join(xdg, "data", "assistui"), GetDefaultDataDir())
	}
}
