package benchmark

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"
	"time"

	tresp "github.com/tidwall/resp"

	"github.com/yndnr/memkv-go/internal/core/service"
	"github.com/yndnr/memkv-go/internal/protocol/resp"
	"github.com/yndnr/memkv-go/internal/server/redisserver"
	"github.com/yndnr/memkv-go/internal/storage/memory"
	"github.com/yndnr/memkv-go/internal/telemetry/logger"
)

func startServer(b *testing.B) string {
	b.Helper()

	quiet, err := logger.New(logger.Config{Level: "error", Output: io.Discard})
	if err != nil {
		b.Fatal(err)
	}

	cfg := redisserver.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	srv := redisserver.New(cfg, service.NewKVService(memory.New(memory.WithShards(16))), redisserver.WithLogger(quiet))
	if err := srv.Start(context.Background()); err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

// BenchmarkServer_RoundTrip measures one SET+GET pair over loopback.
func BenchmarkServer_RoundTrip(b *testing.B) {
	addr := startServer(b)

	b.RunParallel(func(pb *testing.PB) {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			b.Error(err)
			return
		}
		defer conn.Close()

		w := bufio.NewWriter(conn)
		rd := tresp.NewReader(conn)
		key := newKey()

		for pb.Next() {
			_ = resp.WriteCommand(w, "SET", key, "value")
			_ = resp.WriteCommand(w, "GET", key)
			if err := w.Flush(); err != nil {
				b.Error(err)
				return
			}
			for i := 0; i < 2; i++ {
				if _, _, err := rd.ReadValue(); err != nil {
					b.Error(err)
					return
				}
			}
		}
	})
}
