package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/memkv-go/internal/core/service"
	"github.com/yndnr/memkv-go/internal/infra/buildinfo"
	"github.com/yndnr/memkv-go/internal/infra/confloader"
	"github.com/yndnr/memkv-go/internal/infra/shutdown"
	"github.com/yndnr/memkv-go/internal/infra/tlsroots"
	"github.com/yndnr/memkv-go/internal/server/config"
	"github.com/yndnr/memkv-go/internal/server/httpserver"
	"github.com/yndnr/memkv-go/internal/server/httpserver/handler"
	"github.com/yndnr/memkv-go/internal/server/redisserver"
	"github.com/yndnr/memkv-go/internal/storage/memory"
	"github.com/yndnr/memkv-go/internal/telemetry/logger"
	"github.com/yndnr/memkv-go/internal/telemetry/metric"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "memkv-server",
		Usage:   "In-memory key-value server speaking RESP",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
				EnvVars: []string{"MEMKV_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "RESP listen address (host:port)",
			},
			&cli.StringFlag{
				Name:  "http-addr",
				Usage: "Enable the metrics/health listener on this address",
			},
			&cli.StringFlag{
				Name:  "tls-cert",
				Usage: "PEM certificate for the RESP listener (requires --tls-key)",
			},
			&cli.StringFlag{
				Name:  "tls-key",
				Usage: "PEM private key for the RESP listener",
			},
			&cli.IntFlag{
				Name:  "shards",
				Usage: "Storage lock shards (power of two)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Log format (json, text)",
			},
		},
		Action: run,
	}
}

// flagOverrides maps explicitly set flags onto configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	o := make(map[string]any)
	if c.IsSet("addr") {
		o["server.redis.addr"] = c.String("addr")
	}
	if c.IsSet("http-addr") {
		o["server.http.enabled"] = true
		o["server.http.addr"] = c.String("http-addr")
	}
	if c.IsSet("tls-cert") {
		o["server.redis.tls.cert_file"] = c.String("tls-cert")
	}
	if c.IsSet("tls-key") {
		o["server.redis.tls.key_file"] = c.String("tls-key")
	}
	if c.IsSet("shards") {
		o["storage.shards"] = c.Int("shards")
	}
	if c.IsSet("log-level") {
		o["log.level"] = c.String("log-level")
	}
	if c.IsSet("log-format") {
		o["log.format"] = c.String("log-format")
	}
	return o
}

func run(c *cli.Context) error {
	configFile := c.String("config")
	overrides := flagOverrides(c)

	cfg, err := config.Load(configFile, overrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)

	bi := buildinfo.Get()
	log.Info("starting memkv-server",
		"version", bi.Version,
		"commit", bi.Commit,
		"config", configFile)
	log.Info("configuration loaded", config.LogAttrs(cfg)...)

	ctx, cancel := context.WithCancelCause(c.Context)
	defer cancel(nil)

	reg := metric.Global()
	store := memory.New(
		memory.WithShards(cfg.Storage.Shards),
		memory.WithExpireHook(func(string) { reg.IncKeysExpired() }),
	)
	if err := reg.Register(metric.NewCollector(store)); err != nil {
		return fmt.Errorf("register keyspace collector: %w", err)
	}

	startedAt := time.Now()
	svc := service.NewKVService(store,
		service.WithMetrics(reg),
		service.WithStartTime(startedAt),
	)

	rcfg := &redisserver.Config{
		Addr:           cfg.Server.Redis.Addr,
		MaxConnections: cfg.Server.Redis.MaxConnections,
		IdleTimeout:    cfg.Server.Redis.IdleTimeout,
		WriteTimeout:   cfg.Server.Redis.WriteTimeout,
		RateLimit:      cfg.Server.Redis.RateLimit,
	}

	// Hooks run in reverse: watchers, HTTP, the RESP listener, then TLS.
	sh := shutdown.NewHandler(cfg.Shutdown.Timeout, shutdown.WithLogger(log))

	if tc := cfg.Server.Redis.TLS; tc.Enabled() {
		kp, err := tlsroots.NewKeyPair(tc.CertFile, tc.KeyFile, tlsroots.WithLogger(log))
		if err != nil {
			return fmt.Errorf("load tls key pair: %w", err)
		}
		if err := kp.StartAsync(); err != nil {
			log.Warn("certificate reload disabled", "error", err)
		}
		sh.OnShutdown("tls-reloader", func(context.Context) error { return kp.Stop() })
		rcfg.TLS = kp.ServerConfig()
	}

	srv := redisserver.New(rcfg, svc,
		redisserver.WithLogger(log),
		redisserver.WithMetrics(reg),
	)

	if err := srv.Start(ctx); err != nil {
		_ = sh.Run()
		return fmt.Errorf("start redis server: %w", err)
	}
	sh.OnShutdown("redis", srv.Shutdown)

	if cfg.Server.HTTP.Enabled {
		router := httpserver.NewRouter(&httpserver.RouterConfig{
			Metrics: reg,
			Ready:   func() bool { return srv.Addr() != nil },
			Stats: func() handler.Stats {
				return handler.Stats{
					UptimeSeconds:     int64(time.Since(startedAt).Seconds()),
					Keys:              store.Len(),
					Shards:            store.Shards(),
					Connections:       srv.ActiveConnections(),
					CommandsProcessed: svc.Processed(),
				}
			},
			Logger: log,
		})
		hs := httpserver.New(cfg.Server.HTTP.Addr, router)
		if err := hs.Start(func(err error) {
			log.Error("http server error", "error", err)
			cancel(err)
		}); err != nil {
			_ = sh.Run()
			return fmt.Errorf("start http server: %w", err)
		}
		log.Info("http server listening", "address", hs.Addr().String())
		sh.OnShutdown("http", hs.Shutdown)
	}

	if configFile != "" {
		w, err := watchConfig(configFile, overrides, log)
		if err != nil {
			log.Warn("config hot reload disabled", "error", err)
		} else {
			sh.OnShutdown("config-watcher", func(context.Context) error { return w.Stop() })
		}
	}

	log.Info("server started, press Ctrl+C to stop")
	if err := sh.Wait(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return context.Cause(ctx)
}

// watchConfig reloads the configuration file on change and applies the
// log level. Other settings need a restart.
func watchConfig(path string, overrides map[string]any, log logger.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		_ = w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := config.Load(path, overrides)
		if err != nil {
			log.Warn("config reload rejected", "error", err)
			return
		}
		if prev := logger.GetLevel(); prev != cfg.Log.Level {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "from", prev, "to", logger.GetLevel())
		}
	})
	w.StartAsync()
	return w, nil
}
