package connection

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	tresp "github.com/tidwall/resp"

	"github.com/yndnr/memkv-go/internal/protocol/resp"
)

// DefaultTimeout bounds dialing and each request round trip.
const DefaultTimeout = 5 * time.Second

// ErrClosed is returned by Do after Close.
var ErrClosed = errors.New("connection: client closed")

// ServerError is an error reply sent by the server.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	return e.Message
}

// Client is a RESP client. It is not safe for concurrent use.
type Client struct {
	addr    string
	timeout time.Duration
	conn    net.Conn
	bw      *bufio.Writer
	rd      *tresp.Reader
}

// DialOption configures Dial.
type DialOption func(*dialOptions)

type dialOptions struct {
	tls *tls.Config
}

// WithTLS dials with TLS using cfg.
func WithTLS(cfg *tls.Config) DialOption {
	return func(o *dialOptions) {
		o.tls = cfg
	}
}

// Dial connects to a memkv server.
func Dial(ctx context.Context, addr string, timeout time.Duration, opts ...DialOption) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var o dialOptions
	for _, opt := range opts {
		opt(&o)
	}

	d := &net.Dialer{Timeout: timeout}
	var (
		conn net.Conn
		err  error
	)
	if o.tls != nil {
		td := &tls.Dialer{NetDialer: d, Config: o.tls}
		conn, err = td.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = d.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	return &Client{
		addr:    addr,
		timeout: timeout,
		conn:    conn,
		bw:      bufio.NewWriter(conn),
		rd:      tresp.NewReader(conn),
	}, nil
}

// Addr returns the server address.
func (c *Client) Addr() string {
	return c.addr
}

// Do sends one command and reads its reply. An error reply is returned
// alongside a *ServerError.
func (c *Client) Do(ctx context.Context, args ...string) (tresp.Value, error) {
	if c.conn == nil {
		return tresp.Value{}, ErrClosed
	}
	if len(args) == 0 {
		return tresp.Value{}, errors.New("connection: empty command")
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.conn.SetDeadline(deadline); err != nil {
		return tresp.Value{}, err
	}

	if err := resp.WriteCommand(c.bw, args...); err != nil {
		return tresp.Value{}, fmt.Errorf("write command: %w", err)
	}
	if err := c.bw.Flush(); err != nil {
		return tresp.Value{}, fmt.Errorf("write command: %w", err)
	}

	v, _, err := c.rd.ReadValue()
	if err != nil {
		return tresp.Value{}, fmt.Errorf("read reply: %w", err)
	}
	if v.Type() == tresp.Error {
		return v, &ServerError{Message: v.String()}
	}
	return v, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// FormatValue renders a reply the way an interactive client prints it.
func FormatValue(v tresp.Value) string {
	switch v.Type() {
	case tresp.SimpleString:
		return v.String()
	case tresp.Error:
		return "(error) " + v.String()
	case tresp.Integer:
		return fmt.Sprintf("(integer) %d", v.Integer())
	case tresp.BulkString:
		if v.IsNull() {
			return "(nil)"
		}
		return fmt.Sprintf("%q", v.String())
	case tresp.Array:
		if v.IsNull() {
			return "(nil)"
		}
		items := v.Array()
		if len(items) == 0 {
			return "(empty array)"
		}
		var b strings.Builder
		for i, item := range items {
			if i > 0 {
				b.WriteByte('\n')
			}
			fmt.Fprintf(&b, "%d) %s", i+1, FormatValue(item))
		}
		return b.String()
	default:
		return v.String()
	}
}
