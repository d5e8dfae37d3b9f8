package backend

import (
	"encoding/json"
	"errors"
	"io"
	"strings"

	"assistui/config"
)

const streamReadSize = 4096

// ParseEventLine decodes a single stream line. ok is false for lines that do
// not carry the event prefix; those are not errors. A prefixed line whose
// payload does not decode returns a *FragmentError.
func ParseEventLine(line string) (ev Event, ok bool, err error) {
	payload, found := strings.CutPrefix(line, EventPrefix)
	if !found {
		return Event{}, false, nil
	}

	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, true, &FragmentError{Line: line, Err: err}
	}
	return ev, true, nil
}

// EventStream reads events from a streaming chat response in arrival order.
// Lines without the event prefix are ignored and malformed payloads are
// skipped, so one bad line never ends the stream.
type EventStream struct {
	body    io.ReadCloser
	decoder LineDecoder
	lines   []string
	buf     []byte
	eof     bool
	skipped int

	// OnMalformed, when set, is told about every skipped line.
	OnMalformed func(*FragmentError)
}

// NewEventStream wraps a response body. Client.OpenStream is the usual way to
// get one; this exists for callers that already hold a body.
func NewEventStream(body io.ReadCloser) *EventStream {
	return &EventStream{
		body: body,
		buf:  make([]byte, streamReadSize),
	}
}

// Recv returns the next event. It returns io.EOF once the body is exhausted;
// any other error is a *RequestError for a broken transport.
func (s *EventStream) Recv() (Event, error) {
	for {
		for len(s.lines) > 0 {
			line := s.lines[0]
			s.lines = s.lines[1:]

			ev, ok, err := ParseEventLine(line)
			if !ok {
				continue
			}
			if err != nil {
				s.skip(err)
				continue
			}
			return ev, nil
		}

		if s.eof {
			return Event{}, io.EOF
		}

		if err := s.fill(); err != nil {
			return Event{}, err
		}
	}
}

// fill reads the next chunk from the body into the line queue.
func (s *EventStream) fill() error {
	n, err := s.body.Read(s.buf)
	if n > 0 {
		s.lines = append(s.lines, s.decoder.Feed(s.buf[:n])...)
	}

	if errors.Is(err, io.EOF) {
		s.eof = true
		if tail, ok := s.decoder.Flush(); ok {
			s.lines = append(s.lines, tail)
		}
		return nil
	}
	if err != nil {
		return &RequestError{Endpoint: StreamPath, Err: err}
	}
	return nil
}

func (s *EventStream) skip(err error) {
	s.skipped++

	var fe *FragmentError
	if !errors.As(err, &fe) {
		return
	}

	config.DebugLog.Debug().Err(fe.Err).Str("line", fe.Line).Msg("skipping malformed stream line")
	if s.OnMalformed != nil {
		s.OnMalformed(fe)
	}
}

// Skipped is the number of malformed lines dropped so far.
func (s *EventStream) Skipped() int {
	return s.skipped
}

// Close releases the response body.
func (s *EventStream) Close() error {
	return s.body.Close()
}
