package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	DefaultAPIURL   = "http://localhost:8000"
	DefaultGreeting = "Hello! I'm your electronics product assistant. I can help you find laptops, headphones, smartphones, and more. What are you looking for today?"
)

const (
	EnvAPIURL    = "ASSISTUI_API_URL"
	EnvStreaming = "ASSISTUI_STREAMING"
	EnvDataDir   = "ASSISTUI_DATA_DIR"
	EnvDebug     = "ASSISTUI_DEBUG"
)

type Settings struct {
	APIURL        string `toml:"api_url"`
	Streaming     bool   `toml:"streaming"`
	Greeting      string `toml:"greeting,omitempty"`
	DataDirectory string `toml:"data_directory"`
}

type Config struct {
	APIURL        string
	Streaming     bool
	Greeting      string
	DataDirectory string
	KeyBindings   *KeyBindingsConfig
}

var Debug = false

// DebugLog is a no-op until InitDebugLog enables it.
var DebugLog = zerolog.Nop()

func (c *Config) BaseURL() string {
	if c.APIURL == "" {
		return DefaultAPIURL
	}
	return strings.TrimRight(c.APIURL, "/")
}

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) applyEnvOverrides() {
	if apiURL := os.Getenv(EnvAPIURL); apiURL != "" {
		c.APIURL = apiURL
	}
	if streaming := os.Getenv(EnvStreaming); streaming != "" {
		c.Streaming = isTruthy(streaming)
	}
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		c.DataDirectory = dataDir
	}
}

func isTruthy(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func CheckDebug() bool {
	return isTruthy(os.Getenv(EnvDebug))
}

// LoadDotEnv reads a .env file from the working directory if one exists.
// Values already present in the environment win.
func LoadDotEnv() {
	if !FileExists(".env") {
		return
	}
	if err := godotenv.Load(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not read .env: %v\n", err)
	}
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	if err := EnsureDir(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create data directory %s: %v\n", dataDir, err)
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: request bodies end up in here
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = zerolog.New(f).With().Timestamp().Caller().Logger().Level(zerolog.DebugLevel)
	DebugLog.Info().Str("debug", os.Getenv(EnvDebug)).Str("path", logPath).Msg("=== Debug logging started ===")
}

// Load resolves configuration from settings.toml, then .env and the process
// environment. Command line flags are applied by the caller on top.
func Load() (*Config, error) {
	cfg := &Config{
		APIURL:        DefaultAPIURL,
		Greeting:      DefaultGreeting,
		DataDirectory: GetDefaultDataDir(),
	}

	settings, err := LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings.APIURL != "" {
		cfg.APIURL = settings.APIURL
	}
	if settings.Greeting != "" {
		cfg.Greeting = settings.Greeting
	}
	if settings.DataDirectory != "" {
		cfg.DataDirectory = settings.DataDirectory
	}
	cfg.Streaming = settings.Streaming

	LoadDotEnv()
	cfg.applyEnvOverrides()

	kb, err := LoadKeybindings(cfg.DataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to load keybindings: %w", err)
	}
	cfg.KeyBindings = kb

	return cfg, nil
}
