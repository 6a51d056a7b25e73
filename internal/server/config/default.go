package config

import "time"

// Default configuration values.
const (
	DefaultRedisAddr    = "127.0.0.1:6379"
	DefaultWriteTimeout = 30 * time.Second
	DefaultHTTPAddr     = "127.0.0.1:9121"

	DefaultShards = 1

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultShutdownTimeout = 10 * time.Second
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:         DefaultRedisAddr,
				WriteTimeout: DefaultWriteTimeout,
			},
			HTTP: HTTPConfig{
				Enabled: false,
				Addr:    DefaultHTTPAddr,
			},
		},
		Storage: StorageSection{
			Shards: DefaultShards,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Shutdown: ShutdownSection{
			Timeout: DefaultShutdownTimeout,
		},
	}
}

// Keys lists every configuration key. The environment provider uses it
// to map MEMKV_SERVER_REDIS_MAX_CONNECTIONS to server.redis.max_connections.
func Keys() []string {
	return []string{
		"server.redis.addr",
		"server.redis.max_connections",
		"server.redis.idle_timeout",
		"server.redis.write_timeout",
		"server.redis.rate_limit",
		"server.redis.tls.cert_file",
		"server.redis.tls.key_file",
		"server.http.enabled",
		"server.http.addr",
		"storage.shards",
		"log.level",
		"log.format",
		"shutdown.timeout",
	}
}
