package backend

import "bytes"

// LineDecoder splits a byte stream into newline-terminated lines. Transport
// chunks do not line up with lines, so an unterminated tail is kept until a
// later Feed completes it.
type LineDecoder struct {
	buf []byte
}

// Feed appends chunk and returns every line it completed, without the
// trailing "\n" or "\r\n".
func (d *LineDecoder) Feed(chunk []byte) []string {
	d.buf = append(d.buf, chunk...)

	var lines []string
	start := 0
	for {
		i := bytes.IndexByte(d.buf[start:], '\n')
		if i < 0 {
			break
		}
		lines = append(lines, string(trimCR(d.buf[start:start+i])))
		start += i + 1
	}

	if start > 0 {
		n := copy(d.buf, d.buf[start:])
		d.buf = d.buf[:n]
	}
	return lines
}

// Flush returns the unterminated tail, if any, and resets the decoder.
func (d *LineDecoder) Flush() (string, bool) {
	if len(d.buf) == 0 {
		return "", false
	}
	line := string(trimCR(d.buf))
	d.buf = d.buf[:0]
	return line, true
}

// Pending is the number of buffered bytes not yet terminated by a newline.
func (d *LineDecoder) Pending() int {
	return len(d.buf)
}

func trimCR(b []byte) []byte {
	if n := len(b); n > 0 && b[n-1] == '\r' {
		return b[:n-1]
	}
	return b
}
