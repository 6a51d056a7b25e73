package metric

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T, r *Registry) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.registry == nil {
		t.Error("registry field is nil")
	}
	if r.CommandsTotal == nil || r.CommandDuration == nil {
		t.Error("command metrics are nil")
	}
	if r.ConnectionsActive == nil || r.KeysExpired == nil {
		t.Error("connection/storage metrics are nil")
	}
}

func TestGlobal(t *testing.T) {
	if Global() != Global() {
		t.Error("Global() should return the same instance")
	}
}

func TestHandler_RuntimeMetrics(t *testing.T) {
	body := scrape(t, NewRegistry())

	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected go_goroutines metric")
	}
	if !strings.Contains(body, "process_") {
		t.Error("expected process metrics")
	}
}

func TestCommandMetrics(t *testing.T) {
	r := NewRegistry()

	r.ObserveCommand("GET", time.Microsecond)
	r.ObserveCommand("GET", time.Microsecond)
	r.ObserveCommand("SET", time.Microsecond)
	r.IncCommandRejected("unknown")

	body := scrape(t, r)

	for _, want := range []string{
		`memkv_commands_total{command="GET"} 2`,
		`memkv_commands_total{command="SET"} 1`,
		`memkv_command_duration_seconds_count{command="GET"} 2`,
		`memkv_commands_rejected_total{reason="unknown"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s", want)
		}
	}
}

func TestConnectionMetrics(t *testing.T) {
	r := NewRegistry()

	r.ConnOpened()
	r.ConnOpened()
	r.ConnClosed()
	r.IncConnRejected()
	r.IncProtocolError()
	r.IncKeysExpired()

	body := scrape(t, r)

	for _, want := range []string{
		"memkv_connections_active 1",
		"memkv_connections_total 2",
		"memkv_connections_rejected_total 1",
		"memkv_protocol_errors_total 1",
		"memkv_keys_expired_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s", want)
		}
	}
}

type fakeKeyspace struct {
	n    int
	lens []int
}

func (f fakeKeyspace) Len() int         { return f.n }
func (f fakeKeyspace) Shards() int      { return len(f.lens) }
func (f fakeKeyspace) ShardLens() []int { return f.lens }

func TestCollector(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(NewCollector(fakeKeyspace{n: 7, lens: []int{3, 4}})); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	body := scrape(t, r)
	if !strings.Contains(body, "memkv_keys 7") {
		t.Error("expected memkv_keys 7")
	}
	for _, want := range []string{
		"memkv_storage_shards 2",
		`memkv_storage_shard_keys{shard="0"} 3`,
		`memkv_storage_shard_keys{shard="1"} 4`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s", want)
		}
	}
}
