package config

// Sanitize returns a copy of the config that is safe to log.
//
// No field is secret today; the copy keeps callers from mutating the live
// config through the logged value.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	return &sanitized
}

// LogAttrs flattens the config into key/value pairs for a log line.
func LogAttrs(cfg *ServerConfig) []any {
	c := Sanitize(cfg)
	return []any{
		"redis_addr", c.Server.Redis.Addr,
		"max_connections", c.Server.Redis.MaxConnections,
		"idle_timeout", c.Server.Redis.IdleTimeout.String(),
		"write_timeout", c.Server.Redis.WriteTimeout.String(),
		"rate_limit", c.Server.Redis.RateLimit,
		"tls_enabled", c.Server.Redis.TLS.Enabled(),
		"http_enabled", c.Server.HTTP.Enabled,
		"http_addr", c.Server.HTTP.Addr,
		"shards", c.Storage.Shards,
		"log_level", c.Log.Level,
		"log_format", c.Log.Format,
		"shutdown_timeout", c.Shutdown.Timeout.String(),
	}
}
