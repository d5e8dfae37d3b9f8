package testutil

import (
	"encoding/json"
	"io"

	"assistui/backend"
	"assistui/model"
)

// TextLine returns a complete text-fragment event line.
func TextLine(content string) string {
	return EventLine(backend.Event{Type: backend.EventTypeText, Content: content})
}

// DoneLine returns the end-of-reply event line the stub backend sends.
func DoneLine() string {
	return EventLine(backend.Event{Type: backend.EventTypeDone})
}

// EventLine encodes ev as a "data: " line terminated by a newline.
func EventLine(ev backend.Event) string {
	b, _ := json.Marshal(ev)
	return backend.EventPrefix + string(b) + "\n"
}

// ChunkedBody returns a body whose Read calls yield exactly one chunk each,
// so tests control where transport boundaries fall.
func ChunkedBody(chunks ...string) *Body {
	return &Body{chunks: chunks}
}

// FailingBody yields chunks and then fails with err instead of io.EOF.
func FailingBody(err error, chunks ...string) *Body {
	return &Body{chunks: chunks, err: err}
}

// Body is a scripted io.ReadCloser.
type Body struct {
	chunks []string
	err    error
	Closed bool
}

func (b *Body) Read(p []byte) (int, error) {
	if len(b.chunks) == 0 {
		if b.err != nil {
			return 0, b.err
		}
		return 0, io.EOF
	}

	n := copy(p, b.chunks[0])
	if n < len(b.chunks[0]) {
		b.chunks[0] = b.chunks[0][n:]
	} else {
		b.chunks = b.chunks[1:]
	}
	return n, nil
}

func (b *Body) Close() error {
	b.Closed = true
	return nil
}

// History builds a transcript from alternating role/content pairs.
func History(pairs ...string) []model.Message {
	var messages []model.Message
	for i := 0; i+1 < len(pairs); i += 2 {
		messages = append(messages, model.Message{Role: model.Role(pairs[i]), Content: pairs[i+1]})
	}
	return messages
}
