package ui

import (
	"assistui/backend"
	"assistui/exchange"
)

// transcriptChangedMsg is sent when the conversation changed. Bursts of
// changes are coalesced into one message.
type transcriptChangedMsg struct{}

// exchangeDoneMsg carries the result of a finished Send.
type exchangeDoneMsg struct {
	Outcome exchange.Outcome
}

// markdownRenderedMsg carries the rendered form of an assistant message.
// Source is the content that was rendered; a mismatch means the message has
// changed since and the result is stale.
type markdownRenderedMsg struct {
	Index    int
	Source   string
	Width    int
	Rendered string
}

type healthMsg struct {
	Status *backend.HealthStatus
	Err    error
}

// clearNoticeMsg removes a transient status notice.
type clearNoticeMsg struct {
	id int
}
