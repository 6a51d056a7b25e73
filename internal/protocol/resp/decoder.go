package resp

import (
	"bytes"
	"errors"

	"github.com/yndnr/memkv-go/internal/core/domain"
)

// Protocol limits to prevent DoS attacks.
const (
	// MaxArrayLen limits the number of elements in a request array.
	MaxArrayLen = 1024

	// MaxBulkLen limits the size of a single bulk string (512KB).
	MaxBulkLen = 512 * 1024

	// MaxLineLen limits a single unterminated line held in the buffer.
	// It leaves room for a maximal bulk payload plus stray '\r' bytes.
	MaxLineLen = MaxBulkLen + 64
)

var (
	// ErrNeedMore is returned when the buffered bytes hold no complete
	// token. It is not a failure: feed more bytes and call again.
	ErrNeedMore = errors.New("resp: need more data")

	// ErrProtocol is the framing violation error.
	ErrProtocol = domain.ErrProtocol

	// ErrLimitExceeded is returned when a frame exceeds a protocol limit.
	ErrLimitExceeded = domain.ErrProtocolLimit
)

// Decoder splits a byte stream into CRLF-delimited tokens.
//
// Bytes are appended with Feed as they arrive from the connection.
// Next returns one token per line: '\r' bytes are dropped wherever they
// appear and '\n' ends the token. A line with no '\n' yet stays in the
// buffer until more bytes arrive, unless Finish has been called, in which
// case the end of the buffer terminates it.
//
// A Decoder is not safe for concurrent use.
type Decoder struct {
	buf      []byte
	pos      int
	finished bool

	// rawLen is the byte length of the last token's line before '\r'
	// stripping, not counting one '\r' right before the '\n'.
	rawLen int
}

// NewDecoder returns an empty Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends b to the buffer. Consumed bytes are discarded first.
func (d *Decoder) Feed(b []byte) {
	if d.pos > 0 {
		n := copy(d.buf, d.buf[d.pos:])
		d.buf = d.buf[:n]
		d.pos = 0
	}
	d.buf = append(d.buf, b...)
}

// Finish marks the end of the stream. A trailing line without '\n' is
// then returned as the last token.
func (d *Decoder) Finish() {
	d.finished = true
}

// Buffered returns the number of unconsumed bytes.
func (d *Decoder) Buffered() int {
	return len(d.buf) - d.pos
}

// Next returns the next token.
//
// ErrNeedMore means there is nothing left to return yet. A blank line
// yields an empty token with a nil error, so an empty payload and the end
// of the buffer are distinct outcomes.
func (d *Decoder) Next() (string, error) {
	if d.pos >= len(d.buf) {
		return "", ErrNeedMore
	}

	rest := d.buf[d.pos:]
	i := bytes.IndexByte(rest, '\n')

	var line []byte
	switch {
	case i >= 0:
		line = rest[:i]
		d.pos += i + 1
	case d.finished:
		line = rest
		d.pos = len(d.buf)
	default:
		if len(rest) > MaxLineLen {
			return "", ErrLimitExceeded.WithDetailsf("line length exceeds limit %d", MaxLineLen)
		}
		return "", ErrNeedMore
	}

	if len(line) > MaxLineLen {
		return "", ErrLimitExceeded.WithDetailsf("line length exceeds limit %d", MaxLineLen)
	}
	d.rawLen = len(line)
	if d.rawLen > 0 && line[d.rawLen-1] == '\r' {
		d.rawLen--
	}
	return stripCR(line), nil
}

// stripCR copies line into a string without any '\r' bytes.
func stripCR(line []byte) string {
	if bytes.IndexByte(line, '\r') < 0 {
		return string(line)
	}
	out := make([]byte, 0, len(line))
	for _, c := range line {
		if c != '\r' {
			out = append(out, c)
		}
	}
	return string(out)
}
