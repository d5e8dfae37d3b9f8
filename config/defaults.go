package config

// DefaultSettings is what a fresh settings.toml means. An empty data
// directory resolves to GetDefaultDataDir.
func DefaultSettings() *Settings {
	return &Settings{
		APIURL:    DefaultAPIURL,
		Streaming: false,
	}
}

func GenerateSettingsTemplate() string {
	return `# assistui settings (TOML)
# Environment variables and command line flags take precedence.

# Assistant backend serving /api/chat and /api/chat/stream.
# Overridden by ` + EnvAPIURL + ` or --api-url.
api_url = "` + DefaultAPIURL + `"

# Start with streaming replies on. Toggle at runtime from the chat view.
streaming = false

# Opening assistant message of a new conversation.
# greeting = "Hi! What are you shopping for?"

# Where keybindings.toml and debug.log live.
# data_directory = "~/.local/share/assistui"
`
}
