package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	keybindingsFile = "keybindings.toml"

	defaultPrimary   = "alt"
	defaultSecondary = "alt+shift"
)

// KeyBindingsConfig is keybindings.toml: two modifier slots that most chat
// actions hang off, plus optional literal overrides per action.
type KeyBindingsConfig struct {
	Modifiers ModifierConfig    `toml:"modifiers"`
	Actions   map[string]string `toml:"actions"`
}

type ModifierConfig struct {
	Primary   string `toml:"primary"`
	Secondary string `toml:"secondary"`
}

type modifierSlot int

const (
	noModifier modifierSlot = iota
	primaryModifier
	secondaryModifier
)

type binding struct {
	slot modifierSlot
	key  string
}

// chatActions is every action the chat view binds, with its default key.
var chatActions = map[string]binding{
	"send":        {noModifier, "enter"},
	"newline":     {primaryModifier, "enter"},
	"clear_input": {primaryModifier, "u"},

	"toggle_streaming": {primaryModifier, "s"},
	"help":             {primaryModifier, "h"},

	"scroll_down":       {primaryModifier, "j"},
	"scroll_up":         {primaryModifier, "k"},
	"scroll_down_arrow": {primaryModifier, "down"},
	"scroll_up_arrow":   {primaryModifier, "up"},
	"half_page_down":    {secondaryModifier, "j"},
	"half_page_up":      {secondaryModifier, "k"},
	"page_down":         {noModifier, "pgdown"},
	"page_up":           {noModifier, "pgup"},
	"scroll_to_top":     {primaryModifier, "g"},
	"scroll_to_bottom":  {secondaryModifier, "g"},

	"quit":               {primaryModifier, "q"},
	"yank_last_response": {primaryModifier, "y"},
	"yank_conversation":  {primaryModifier, "c"},
}

// ActionNames lists the bindable actions in a stable order.
func ActionNames() []string {
	names := make([]string, 0, len(chatActions))
	for name := range chatActions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func DefaultKeybindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Modifiers: ModifierConfig{
			Primary:   defaultPrimary,
			Secondary: defaultSecondary,
		},
	}
}

// LoadKeybindings reads keybindings.toml from dataDir, writing the commented
// template there first if the file is missing.
func LoadKeybindings(dataDir string) (*KeyBindingsConfig, error) {
	kb := DefaultKeybindings()
	path := filepath.Join(dataDir, keybindingsFile)

	if !FileExists(path) {
		if err := CreateDefaultKeybindings(dataDir); err != nil {
			return nil, fmt.Errorf("failed to create keybindings: %w", err)
		}
		return kb, nil
	}

	if _, err := toml.DecodeFile(path, kb); err != nil {
		return nil, fmt.Errorf("failed to parse keybindings: %w", err)
	}
	return kb, nil
}

func CreateDefaultKeybindings(dataDir string) error {
	if err := EnsureDir(dataDir); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	path := filepath.Join(dataDir, keybindingsFile)
	if FileExists(path) {
		return nil
	}

	if err := os.WriteFile(path, []byte(GenerateKeybindingsTemplate()), 0600); err != nil {
		return fmt.Errorf("failed to write keybindings: %w", err)
	}
	return nil
}

func GenerateKeybindingsTemplate() string {
	var b strings.Builder
	b.WriteString(`# assistui keybindings (TOML)

[modifiers]
# Most chat actions use one of these two modifiers. Switch primary to
# "ctrl" or "super" if alt clashes with your terminal or window manager.
primary = "` + defaultPrimary + `"
secondary = "` + defaultSecondary + `"

[actions]
# Bind a single action to a literal key, e.g.
#   toggle_streaming = "f2"
#   scroll_down = "ctrl+n"
#
# Actions:
`)
	for _, name := range ActionNames() {
		fmt.Fprintf(&b, "#   %s\n", name)
	}
	return b.String()
}

func (kb *KeyBindingsConfig) Primary() string {
	if kb.Modifiers.Primary == "" {
		return defaultPrimary
	}
	return kb.Modifiers.Primary
}

func (kb *KeyBindingsConfig) Secondary() string {
	if kb.Modifiers.Secondary == "" {
		return defaultSecondary
	}
	return kb.Modifiers.Secondary
}

// GetActionKey returns the bubbletea key string for action, or "" for an
// unknown action. A non-empty override in [actions] wins.
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	if override := kb.Actions[action]; override != "" {
		return override
	}

	def, ok := chatActions[action]
	if !ok {
		return ""
	}

	switch def.slot {
	case primaryModifier:
		return combine(kb.Primary(), def.key)
	case secondaryModifier:
		return combine(kb.Secondary(), def.key)
	default:
		return def.key
	}
}

// combine joins a modifier chord and a key the way bubbletea reports it:
// shift with a single letter arrives as the upper-case letter.
func combine(modifier, key string) string {
	mods := strings.Split(modifier, "+")
	if len(key) == 1 && key[0] >= 'a' && key[0] <= 'z' && slices.ContainsFunc(mods, isShift) {
		mods = slices.DeleteFunc(mods, isShift)
		key = strings.ToUpper(key)
	}

	mods = slices.DeleteFunc(mods, func(m string) bool { return m == "" })
	return strings.Join(append(mods, key), "+")
}

func isShift(part string) bool {
	return strings.EqualFold(part, "shift")
}

// DisplayActionKey renders an action's key for the footer and help screen,
// e.g. "alt+G" as "Alt+Shift+G".
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	key := kb.GetActionKey(action)
	if key == "" {
		return ""
	}

	parts := strings.Split(key, "+")
	hasShift := slices.ContainsFunc(parts, isShift)

	out := make([]string, 0, len(parts)+1)
	for i, part := range parts {
		if part == "" {
			continue
		}
		upperLetter := len(part) == 1 && part[0] >= 'A' && part[0] <= 'Z'
		if upperLetter && i > 0 && !hasShift {
			out = append(out, "Shift")
		}
		out = append(out, strings.ToUpper(part[:1])+part[1:])
	}
	return strings.Join(out, "+")
}

// Validate reports whether the modifiers are usable, plus a warning for
// combinations that work but may be swallowed by the terminal.
func (kb *KeyBindingsConfig) Validate() (bool, string) {
	primary, secondary := kb.Primary(), kb.Secondary()

	if isShift(primary) || isShift(secondary) {
		return false, "Shift alone conflicts with typing"
	}
	if strings.Contains(primary, "ctrl") || strings.Contains(secondary, "ctrl") {
		return true, "Warning: Ctrl may conflict with terminal shortcuts (Ctrl+C, Ctrl+Z, Ctrl+D)"
	}
	return true, ""
}
