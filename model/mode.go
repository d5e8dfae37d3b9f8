package model

import (
	"fmt"
	"strings"
)

// Mode selects how an exchange receives its reply.
type Mode int

const (
	// ModeAtomic waits for one complete reply.
	ModeAtomic Mode = iota
	// ModeIncremental applies reply fragments as they are streamed.
	ModeIncremental
)

func (m Mode) String() string {
	switch m {
	case ModeAtomic:
		return "atomic"
	case ModeIncremental:
		return "incremental"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Toggle flips between atomic and incremental.
func (m Mode) Toggle() Mode {
	if m == ModeIncremental {
		return ModeAtomic
	}
	return ModeIncremental
}

// ModeFromStreaming maps the user-facing streaming switch to a Mode.
func ModeFromStreaming(streaming bool) Mode {
	if streaming {
		return ModeIncremental
	}
	return ModeAtomic
}

// ParseMode accepts "atomic"/"incremental" and the "off"/"on" aliases used by
// the streaming switch.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "atomic", "off", "false":
		return ModeAtomic, nil
	case "incremental", "stream", "streaming", "on", "true":
		return ModeIncremental, nil
	default:
		return ModeAtomic, fmt.Errorf("unknown exchange mode: %q", s)
	}
}
