package redisserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tresp "github.com/tidwall/resp"

	"github.com/yndnr/memkv-go/internal/core/service"
	"github.com/yndnr/memkv-go/internal/storage/memory"
	"github.com/yndnr/memkv-go/internal/telemetry/metric"
)

// ============================================================
// Helpers
// ============================================================

func startTestServer(t *testing.T, cfg *Config, opts ...Option) *Server {
	t.Helper()
	return startStoreServer(t, memory.New(), cfg, opts...)
}

// startStoreServer is startTestServer over a caller-owned store.
func startStoreServer(t *testing.T, store *memory.Store, cfg *Config, opts ...Option) *Server {
	t.Helper()

	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Addr = "127.0.0.1:0"

	svc := service.NewKVService(store)
	srv := New(cfg, svc, opts...)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})
	return srv
}

type testClient struct {
	t    *testing.T
	conn net.Conn
	rd   *tresp.Reader
}

func dial(t *testing.T, srv *Server) *testClient {
	t.Helper()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return &testClient{t: t, conn: conn, rd: tresp.NewReader(conn)}
}

// send writes raw bytes in a single write.
func (c *testClient) send(raw string) {
	c.t.Helper()
	if _, err := c.conn.Write([]byte(raw)); err != nil {
		c.t.Fatalf("Write error: %v", err)
	}
}

// do sends one command encoded as an array of bulk strings.
func (c *testClient) do(args ...string) tresp.Value {
	c.t.Helper()
	c.send(encode(args...))
	return c.read()
}

func (c *testClient) read() tresp.Value {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	v, _, err := c.rd.ReadValue()
	if err != nil {
		c.t.Fatalf("ReadValue() error = %v", err)
	}
	return v
}

// expectClosed waits for the server to close the connection.
func (c *testClient) expectClosed() {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err := c.rd.ReadValue()
	if err == nil {
		c.t.Fatal("expected connection to be closed, read a value")
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		c.t.Fatal("connection still open after 2s")
	}
}

func encode(args ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%d\r\n", len(args))
	for _, a := range args {
		fmt.Fprintf(&b, "$%d\r\n%s\r\n", len(a), a)
	}
	return b.String()
}

func expectSimple(t *testing.T, v tresp.Value, want string) {
	t.Helper()
	if v.Type() != tresp.SimpleString || v.String() != want {
		t.Errorf("reply = %c %q, want simple string %q", v.Type(), v.String(), want)
	}
}

func expectBulk(t *testing.T, v tresp.Value, want string) {
	t.Helper()
	if v.Type() != tresp.BulkString || v.IsNull() || v.String() != want {
		t.Errorf("reply = %c %q (null=%v), want bulk %q", v.Type(), v.String(), v.IsNull(), want)
	}
}

func expectError(t *testing.T, v tresp.Value, want string) {
	t.Helper()
	if v.Type() != tresp.Error || v.String() != want {
		t.Errorf("reply = %c %q, want error %q", v.Type(), v.String(), want)
	}
}

// ============================================================
// Config
// ============================================================

func TestServer_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Addr != "127.0.0.1:6379" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, "127.0.0.1:6379")
	}
	if cfg.WriteTimeout != 30*time.Second {
		t.Errorf("WriteTimeout = %v, want %v", cfg.WriteTimeout, 30*time.Second)
	}
	if cfg.MaxConnections != 0 || cfg.IdleTimeout != 0 || cfg.RateLimit != 0 {
		t.Error("connection limits should be disabled by default")
	}
}

func TestServer_New(t *testing.T) {
	srv := New(nil, service.NewKVService(memory.New()))
	if srv == nil {
		t.Fatal("New() returned nil")
	}
	if srv.cfg == nil {
		t.Error("cfg should not be nil")
	}
	if srv.handler == nil {
		t.Error("handler should not be nil")
	}
	if srv.limiters != nil {
		t.Error("limiters should be nil when rate limiting is disabled")
	}
	if srv.Addr() != nil {
		t.Error("Addr() should be nil before Start")
	}
}

func TestServer_Shutdown_NotStarted(t *testing.T) {
	srv := New(nil, service.NewKVService(memory.New()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v, want nil", err)
	}
}

func TestServer_Start_AddrInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	srv := New(&Config{Addr: ln.Addr().String()}, service.NewKVService(memory.New()))
	if err := srv.Start(context.Background()); err == nil {
		t.Error("Start() should fail when the address is in use")
	}
}

// ============================================================
// Commands over the wire
// ============================================================

func TestServer_Commands(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dial(t, srv)

	expectSimple(t, c.do("PING"), "PONG")
	expectSimple(t, c.do("ping"), "PONG")
	expectBulk(t, c.do("PING", "hello"), "hello")
	expectBulk(t, c.do("ECHO", "hello", "world"), "hello world")
	expectSimple(t, c.do("SET", "user:1", "alice"), "OK")
	expectBulk(t, c.do("GET", "user:1"), "alice")
	expectSimple(t, c.do("COMMAND"), "no docs yet")
	expectSimple(t, c.do("COMMAND", "DOCS", "GET"), "not supported yet")

	if v := c.do("GET", "missing"); !v.IsNull() {
		t.Errorf("GET missing = %q, want null", v.String())
	}

	info := c.do("INFO", "keyspace")
	if !strings.Contains(info.String(), "keys:1") {
		t.Errorf("INFO keyspace = %q", info.String())
	}
}

func TestServer_Quit(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dial(t, srv)

	expectSimple(t, c.do("QUIT"), "OK")
	c.expectClosed()
}

func TestServer_SetWithTTL(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dial(t, srv)

	expectSimple(t, c.do("SET", "session", "v", "PX", "100"), "OK")
	expectBulk(t, c.do("GET", "session"), "v")

	time.Sleep(150 * time.Millisecond)

	if v := c.do("GET", "session"); !v.IsNull() {
		t.Errorf("GET after expiry = %q, want null", v.String())
	}
}

func TestServer_ExpiredKeyIsEvictedByGet(t *testing.T) {
	store := memory.New()
	srv := startStoreServer(t, store, nil)
	c := dial(t, srv)

	expectSimple(t, c.do("SET", "k", "v", "px", "100"), "OK")
	time.Sleep(150 * time.Millisecond)

	// Nothing reads the key until GET, so it is still stored.
	if !store.Exists("k") {
		t.Fatal("expired key was removed before any read")
	}
	if v := c.do("GET", "k"); !v.IsNull() {
		t.Errorf("GET after expiry = %q, want null", v.String())
	}
	if store.Exists("k") {
		t.Error("GET of an expired key left it in the store")
	}
}

func TestServer_SetNonNumericTTL(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dial(t, srv)

	expectSimple(t, c.do("SET", "k", "v", "PX", "abc"), "OK")
	time.Sleep(50 * time.Millisecond)
	expectBulk(t, c.do("GET", "k"), "v")
}

func TestServer_OverwriteClearsTTL(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dial(t, srv)

	expectSimple(t, c.do("SET", "k", "v1", "PX", "50"), "OK")
	expectSimple(t, c.do("SET", "k", "v2"), "OK")
	time.Sleep(100 * time.Millisecond)
	expectBulk(t, c.do("GET", "k"), "v2")
}

// ============================================================
// Batches
// ============================================================

func TestServer_PipelinedBatch(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dial(t, srv)

	c.send(encode("SET", "a", "1") + encode("SET", "b", "2") + encode("GET", "a") + encode("GET", "b"))

	expectSimple(t, c.read(), "OK")
	expectSimple(t, c.read(), "OK")
	expectBulk(t, c.read(), "1")
	expectBulk(t, c.read(), "2")
}

func TestServer_UnknownCommandInBatch(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dial(t, srv)

	c.send(encode("FOO") + encode("PING"))
	expectSimple(t, c.read(), "PONG")

	// Nothing else was queued for the skipped frame.
	expectBulk(t, c.do("ECHO", "next"), "next")
}

func TestServer_BatchWithNoCommands(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dial(t, srv)

	c.send(encode("FOO", "bar"))
	expectError(t, c.read(), "Error processing message")

	// The connection stays usable.
	expectSimple(t, c.do("PING"), "PONG")
}

func TestServer_EmptyArraysGetNoReply(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dial(t, srv)

	c.send("*0\r\n*-1\r\n")
	time.Sleep(50 * time.Millisecond)

	// The first reply on the wire belongs to PING.
	expectSimple(t, c.do("PING"), "PONG")
}

func TestServer_WrongArity(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dial(t, srv)

	c.send(encode("GET"))
	expectError(t, c.read(), "Error processing message")
}

func TestServer_SplitWrites(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dial(t, srv)

	parts := []string{"*3\r\n$3\r\nSE", "T\r\n$3\r\nkey\r", "\n$5\r\nva", "lue\r\n"}
	for _, p := range parts {
		c.send(p)
		time.Sleep(20 * time.Millisecond)
	}

	expectSimple(t, c.read(), "OK")
	expectBulk(t, c.do("GET", "key"), "value")
}

func TestServer_HalfClose(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dial(t, srv)

	// The final line has no terminator; closing the write side ends it.
	c.send("*1\r\n$4\r\nPING")
	if err := c.conn.(*net.TCPConn).CloseWrite(); err != nil {
		t.Fatalf("CloseWrite() error = %v", err)
	}

	expectSimple(t, c.read(), "PONG")
	c.expectClosed()
}

// ============================================================
// Protocol errors
// ============================================================

func TestServer_ProtocolError(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"wrong sigil", "$3\r\nfoo\r\n", "ERR Protocol error: expected '*', got '$'"},
		{"bad array length", "*x\r\n", "ERR Protocol error: invalid multibulk length"},
		{"length mismatch", "*1\r\n$4\r\nPINGPONG\r\n", "ERR Protocol error: bulk length mismatch: declared 4, got 8"},
		{"inline command", "PING\r\n", "ERR Protocol error: unknown type sigil 'P'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := startTestServer(t, nil)
			c := dial(t, srv)

			c.send(tt.raw)
			expectError(t, c.read(), tt.want)
			c.expectClosed()
		})
	}
}

func TestServer_ProtocolErrorClosesOnlyThatConnection(t *testing.T) {
	srv := startTestServer(t, nil)
	good := dial(t, srv)
	bad := dial(t, srv)

	expectSimple(t, good.do("SET", "k", "v"), "OK")

	bad.send("*1\r\n$-1\r\n")
	if v := bad.read(); v.Type() != tresp.Error {
		t.Fatalf("reply = %q, want protocol error", v.String())
	}
	bad.expectClosed()

	expectBulk(t, good.do("GET", "k"), "v")

	late := dial(t, srv)
	expectSimple(t, late.do("PING"), "PONG")
}

// ============================================================
// Concurrency
// ============================================================

func TestServer_ConcurrentClients(t *testing.T) {
	srv := startTestServer(t, nil)

	const clients = 16
	const ops = 50

	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			conn, err := net.Dial("tcp", srv.Addr().String())
			if err != nil {
				t.Errorf("Dial() error = %v", err)
				return
			}
			defer conn.Close()
			rd := tresp.NewReader(conn)
			_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

			for j := 0; j < ops; j++ {
				key := fmt.Sprintf("c%d:k%d", id, j)
				val := fmt.Sprintf("v%d", j)

				if _, err := conn.Write([]byte(encode("SET", key, val) + encode("GET", key))); err != nil {
					t.Errorf("Write error: %v", err)
					return
				}
				set, _, err := rd.ReadValue()
				if err != nil || set.String() != "OK" {
					t.Errorf("SET %s = %q, %v", key, set.String(), err)
					return
				}
				get, _, err := rd.ReadValue()
				if err != nil || get.String() != val {
					t.Errorf("GET %s = %q, %v; want %q", key, get.String(), err, val)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

// ============================================================
// Connection limits
// ============================================================

func TestServer_MaxConnections(t *testing.T) {
	srv := startTestServer(t, &Config{MaxConnections: 1})

	first := dial(t, srv)
	expectSimple(t, first.do("PING"), "PONG")

	second := dial(t, srv)
	expectError(t, second.read(), "ERR max number of clients reached")
	second.expectClosed()

	expectSimple(t, first.do("PING"), "PONG")
}

func TestServer_RateLimit(t *testing.T) {
	srv := startTestServer(t, &Config{RateLimit: 2})
	c := dial(t, srv)

	c.send(encode("PING") + encode("PING") + encode("PING"))

	expectSimple(t, c.read(), "PONG")
	expectSimple(t, c.read(), "PONG")
	expectError(t, c.read(), "ERR rate limit exceeded")
}

func TestServer_IdleTimeout(t *testing.T) {
	srv := startTestServer(t, &Config{IdleTimeout: 100 * time.Millisecond})
	c := dial(t, srv)

	expectSimple(t, c.do("PING"), "PONG")
	c.expectClosed()
}

func TestServer_ShutdownClosesConnections(t *testing.T) {
	srv := startTestServer(t, nil)
	c := dial(t, srv)
	expectSimple(t, c.do("PING"), "PONG")

	if n := srv.ActiveConnections(); n != 1 {
		t.Errorf("ActiveConnections() = %d, want 1", n)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	c.expectClosed()
	if n := srv.ActiveConnections(); n != 0 {
		t.Errorf("ActiveConnections() = %d after shutdown, want 0", n)
	}
	if _, err := net.DialTimeout("tcp", srv.Addr().String(), 200*time.Millisecond); err == nil {
		t.Error("listener should be closed after shutdown")
	}
}

// ============================================================
// Metrics
// ============================================================

func TestServer_Metrics(t *testing.T) {
	reg := metric.NewRegistry()
	srv := startTestServer(t, nil, WithMetrics(reg))

	c := dial(t, srv)
	expectSimple(t, c.do("PING"), "PONG")
	c.send(encode("NOPE") + encode("PING"))
	expectSimple(t, c.read(), "PONG")

	bad := dial(t, srv)
	bad.send("*z\r\n")
	bad.read()
	bad.expectClosed()

	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	for _, want := range []string{
		"memkv_connections_total 2",
		"memkv_protocol_errors_total 1",
		`memkv_commands_rejected_total{reason="unknown_command"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestClientIP(t *testing.T) {
	addr := &net.TCPAddr{IP: net.ParseIP("10.1.2.3"), Port: 5555}
	if got := clientIP(addr); got != "10.1.2.3" {
		t.Errorf("clientIP() = %q, want 10.1.2.3", got)
	}
}
