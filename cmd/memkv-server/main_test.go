package main

import (
	"testing"

	"github.com/urfave/cli/v2"
)

func captureOverrides(t *testing.T, args ...string) map[string]any {
	t.Helper()
	app := newApp()
	var got map[string]any
	app.Action = func(c *cli.Context) error {
		got = flagOverrides(c)
		return nil
	}
	if err := app.Run(append([]string{"memkv-server"}, args...)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return got
}

func TestFlagOverrides_None(t *testing.T) {
	if got := captureOverrides(t); len(got) != 0 {
		t.Errorf("flagOverrides() = %v, want empty", got)
	}
}

func TestFlagOverrides(t *testing.T) {
	got := captureOverrides(t,
		"--addr", "0.0.0.0:7000",
		"--http-addr", "127.0.0.1:9300",
		"--shards", "4",
		"--log-level", "debug",
		"--log-format", "text",
		"--tls-cert", "/etc/memkv/tls.crt",
		"--tls-key", "/etc/memkv/tls.key",
	)

	want := map[string]any{
		"server.redis.addr":   "0.0.0.0:7000",
		"server.http.enabled": true,
		"server.http.addr":    "127.0.0.1:9300",
		"storage.shards":      4,
		"log.level":           "debug",
		"log.format":          "text",

		"server.redis.tls.cert_file": "/etc/memkv/tls.crt",
		"server.redis.tls.key_file":  "/etc/memkv/tls.key",
	}
	if len(got) != len(want) {
		t.Fatalf("flagOverrides() = %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
}
