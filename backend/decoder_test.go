package backend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"assistui/backend"
)

func TestLineDecoderChunkBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		chunks   []string
		expected []string
		tail     string
	}{
		{
			name:     "one chunk, two lines",
			chunks:   []string{"a\nb\n"},
			expected: []string{"a", "b"},
		},
		{
			name:     "line split across chunks",
			chunks:   []string{"da", "ta: x", "\n"},
			expected: []string{"data: x"},
		},
		{
			name:     "newline at start of next chunk",
			chunks:   []string{"first", "\nsecond\n"},
			expected: []string{"first", "second"},
		},
		{
			name:     "crlf terminators",
			chunks:   []string{"a\r\n", "b\r", "\n"},
			expected: []string{"a", "b"},
		},
		{
			name:     "blank lines are kept",
			chunks:   []string{"a\n\nb\n\n"},
			expected: []string{"a", "", "b", ""},
		},
		{
			name:     "unterminated tail",
			chunks:   []string{"a\npart", "ial"},
			expected: []string{"a"},
			tail:     "partial",
		},
		{
			name:     "multibyte rune split across chunks",
			chunks:   []string{"caf\xc3", "\xa9\n"},
			expected: []string{"café"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d backend.LineDecoder
			var got []string
			for _, c := range tt.chunks {
				got = append(got, d.Feed([]byte(c))...)
			}

			assert.Equal(t, tt.expected, got)
			assert.Equal(t, len(tt.tail), d.Pending())

			tail, ok := d.Flush()
			assert.Equal(t, tt.tail != "", ok)
			assert.Equal(t, tt.tail, tail)
			assert.Equal(t, 0, d.Pending())
		})
	}
}

func TestLineDecoderReusesBufferAfterFlush(t *testing.T) {
	var d backend.LineDecoder
	d.Feed([]byte("left"))
	d.Flush()

	assert.Equal(t, []string{"over"}, d.Feed([]byte("over\n")))
}

func TestParseEventLine(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		expected  backend.Event
		expectOK  bool
		malformed bool
	}{
		{
			name:     "text event",
			line:     `data: {"type":"text","content":"Hel"}`,
			expected: backend.Event{Type: "text", Content: "Hel"},
			expectOK: true,
		},
		{
			name:     "done event",
			line:     `data: {"type":"done"}`,
			expected: backend.Event{Type: "done"},
			expectOK: true,
		},
		{
			name:     "unknown type still parses",
			line:     `data: {"type":"tool_call","content":"x"}`,
			expected: backend.Event{Type: "tool_call", Content: "x"},
			expectOK: true,
		},
		{
			name: "no prefix",
			line: `event: message`,
		},
		{
			name: "prefix without space",
			line: `data:{"type":"text","content":"x"}`,
		},
		{
			name: "empty line",
			line: "",
		},
		{
			name:      "malformed json",
			line:      `data: {"type":"text","content":`,
			expectOK:  true,
			malformed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, ok, err := backend.ParseEventLine(tt.line)

			assert.Equal(t, tt.expectOK, ok)
			if tt.malformed {
				assert.ErrorIs(t, err, backend.ErrMalformedFragment)
				var fe *backend.FragmentError
				assert.ErrorAs(t, err, &fe)
				assert.Equal(t, tt.line, fe.Line)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, ev)
		})
	}
}
