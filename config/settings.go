package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// LoadSettings decodes settings.toml over DefaultSettings, writing the
// commented template first if the file does not exist yet.
func LoadSettings() (*Settings, error) {
	settings := DefaultSettings()
	path := GetSettingsFilePath()

	if !FileExists(path) {
		if err := CreateDefaultSettings(); err != nil {
			return nil, fmt.Errorf("failed to create settings: %w", err)
		}
		return settings, nil
	}

	if _, err := toml.DecodeFile(path, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings: %w", err)
	}
	return settings, nil
}

func SaveSettings(settings *Settings) error {
	data, err := toml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	return writeConfigFile(data)
}

// CreateDefaultSettings writes the template unless a settings file exists.
func CreateDefaultSettings() error {
	if FileExists(GetSettingsFilePath()) {
		return nil
	}
	return writeConfigFile([]byte(GenerateSettingsTemplate()))
}

func writeConfigFile(data []byte) error {
	if err := EnsureDir(GetConfigDir()); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(GetSettingsFilePath(), data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}
