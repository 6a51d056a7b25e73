package httpserver

import (
	"net/http"

	"github.com/yndnr/memkv-go/internal/server/httpserver/handler"
	"github.com/yndnr/memkv-go/internal/telemetry/logger"
	"github.com/yndnr/memkv-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Metrics is the registry exposed on /metrics. Defaults to metric.Global().
	Metrics *metric.Registry

	// Ready reports whether the Redis listener accepts clients.
	Ready func() bool

	// Stats supplies the /status summary. Optional.
	Stats handler.StatsFunc

	// Logger for request logging.
	Logger logger.Logger
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	if cfg == nil {
		cfg = &RouterConfig{}
	}
	l := cfg.Logger
	if l == nil {
		l = logger.Default()
	}
	reg := cfg.Metrics
	if reg == nil {
		reg = metric.Global()
	}

	h := handler.New(l, cfg.Ready, cfg.Stats)

	mux := http.NewServeMux()
	mux.Handle("GET /healthz", h)
	mux.Handle("GET /readyz", h)
	mux.Handle("GET /status", h)
	mux.Handle("GET /metrics", reg.Handler())

	return Chain(mux, Recover(l), RequestID(), AccessLog(l), Instrument(reg))
}
