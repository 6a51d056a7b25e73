package resp

import (
	"errors"
	"strconv"

	"github.com/yndnr/memkv-go/internal/core/domain"
)

// Type sigils.
const (
	SigilSimpleString = '+'
	SigilError        = '-'
	SigilInteger      = ':'
	SigilBulkString   = '$'
	SigilArray        = '*'
)

type parseState uint8

const (
	stateArray parseState = iota
	stateBulkLength
	stateBulkContent
)

func (s parseState) String() string {
	switch s {
	case stateArray:
		return "array"
	case stateBulkLength:
		return "bulk-length"
	case stateBulkContent:
		return "bulk-content"
	default:
		return "unknown"
	}
}

// Parser decodes request frames into commands.
//
// A frame is an array header followed by that many bulk strings. The
// first bulk string is the command name, the rest are its arguments.
// Parser state survives across Feed calls, so a frame may arrive in any
// number of pieces.
//
// Next returns:
//   - a Command and a nil error for every complete, valid frame;
//   - ErrNeedMore when the buffer runs dry (partial frames are kept);
//   - an ErrUnknownCommand or ErrArity error for a complete frame that
//     does not form a command. The frame is consumed and parsing can
//     continue;
//   - an ErrProtocol or ErrLimitExceeded error for a framing violation.
//     The parser is unusable afterwards and keeps returning that error.
type Parser struct {
	dec *Decoder

	state     parseState
	remaining int
	bulkLen   int
	haveName  bool
	name      string
	args      []string

	frames int
	err    error
}

// NewParser returns a Parser with an empty buffer.
func NewParser() *Parser {
	return &Parser{dec: NewDecoder()}
}

// Feed appends bytes read from the connection.
func (p *Parser) Feed(b []byte) {
	p.dec.Feed(b)
}

// Finish marks the end of the input stream.
func (p *Parser) Finish() {
	p.dec.Finish()
}

// Frames returns the number of complete non-empty frames consumed so far,
// whether or not they formed a valid command.
func (p *Parser) Frames() int {
	return p.frames
}

// InFrame reports whether a frame has been started but not completed.
func (p *Parser) InFrame() bool {
	return p.state != stateArray
}

// Buffered returns the number of fed bytes not yet consumed as tokens.
func (p *Parser) Buffered() int {
	return p.dec.Buffered()
}

// Next returns the next command from the buffered input.
func (p *Parser) Next() (domain.Command, error) {
	if p.err != nil {
		return domain.Command{}, p.err
	}

	for {
		tok, err := p.dec.Next()
		if err != nil {
			if !errors.Is(err, ErrNeedMore) {
				p.err = err
			}
			return domain.Command{}, err
		}

		switch p.state {
		case stateArray:
			n, err := parseHeader(tok, SigilArray)
			if err != nil {
				return domain.Command{}, p.fail(err)
			}
			if n < -1 {
				return domain.Command{}, p.fail(ErrProtocol.WithDetails("invalid multibulk length"))
			}
			if n > MaxArrayLen {
				return domain.Command{}, p.fail(ErrLimitExceeded.WithDetailsf("array length %d exceeds limit %d", n, MaxArrayLen))
			}
			if n <= 0 {
				// Empty and null arrays carry no command.
				continue
			}
			p.remaining = n
			p.args = make([]string, 0, n-1)
			p.state = stateBulkLength

		case stateBulkLength:
			n, err := parseHeader(tok, SigilBulkString)
			if err != nil {
				return domain.Command{}, p.fail(err)
			}
			if n < 0 {
				return domain.Command{}, p.fail(ErrProtocol.WithDetails("invalid bulk length"))
			}
			if n > MaxBulkLen {
				return domain.Command{}, p.fail(ErrLimitExceeded.WithDetailsf("bulk length %d exceeds limit %d", n, MaxBulkLen))
			}
			p.bulkLen = n
			p.state = stateBulkContent

		case stateBulkContent:
			// The declared length counts payload bytes on the wire,
			// including any '\r' the token rule drops.
			if p.dec.rawLen != p.bulkLen {
				return domain.Command{}, p.fail(ErrProtocol.WithDetailsf("bulk length mismatch: declared %d, got %d", p.bulkLen, p.dec.rawLen))
			}
			if !p.haveName {
				p.name = tok
				p.haveName = true
			} else {
				p.args = append(p.args, tok)
			}

			p.remaining--
			if p.remaining > 0 {
				p.state = stateBulkLength
				continue
			}

			name, args := p.name, p.args
			p.reset()
			p.frames++
			return BuildCommand(name, args)
		}
	}
}

func (p *Parser) reset() {
	p.state = stateArray
	p.remaining = 0
	p.bulkLen = 0
	p.haveName = false
	p.name = ""
	p.args = nil
}

func (p *Parser) fail(err error) error {
	p.err = err
	return err
}

// parseHeader validates the sigil of an array or bulk header and returns
// its numeric suffix.
func parseHeader(tok string, want byte) (int, error) {
	if tok == "" {
		return 0, ErrProtocol.WithDetailsf("expected '%c', got empty line", want)
	}

	got := tok[0]
	if !isSigil(got) {
		return 0, ErrProtocol.WithDetailsf("unknown type sigil %q", got)
	}
	if got != want {
		return 0, ErrProtocol.WithDetailsf("expected '%c', got '%c'", want, got)
	}

	n, err := strconv.Atoi(tok[1:])
	if err != nil {
		if want == SigilArray {
			return 0, ErrProtocol.WithDetails("invalid multibulk length").WithCause(err)
		}
		return 0, ErrProtocol.WithDetails("invalid bulk length").WithCause(err)
	}
	return n, nil
}

func isSigil(c byte) bool {
	switch c {
	case SigilSimpleString, SigilError, SigilInteger, SigilBulkString, SigilArray:
		return true
	default:
		return false
	}
}
