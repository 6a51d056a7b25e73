package redisserver

import (
	"context"
	"errors"

	"golang.org/x/time/rate"

	"github.com/yndnr/memkv-go/internal/core/domain"
	"github.com/yndnr/memkv-go/internal/protocol/resp"
	"github.com/yndnr/memkv-go/internal/telemetry/logger"
	"github.com/yndnr/memkv-go/internal/telemetry/metric"
)

// Rejection reasons reported to metrics.
const (
	rejectUnknown   = "unknown_command"
	rejectArity     = "wrong_arity"
	rejectRateLimit = "rate_limit"
)

// CommandHandler executes the commands decoded from one read batch.
type CommandHandler struct {
	exec    Executor
	logger  logger.Logger
	metrics *metric.Registry
}

// NewCommandHandler creates a new CommandHandler.
func NewCommandHandler(exec Executor, l logger.Logger, m *metric.Registry) *CommandHandler {
	if l == nil {
		l = logger.Default()
	}
	return &CommandHandler{
		exec:    exec,
		logger:  l,
		metrics: m,
	}
}

// Handle drains p and writes one reply per executed command to the
// connection buffer. It does not flush.
//
// Unknown commands and wrong arity are logged and skipped. If the batch
// completed frames but none of them produced a command, a single
// "Error processing message" reply is written.
//
// Handle returns false when the connection must be closed: after a
// protocol error (the error is replied first), after QUIT, or when a
// write fails.
func (h *CommandHandler) Handle(ctx context.Context, c *Conn, p *resp.Parser, limiter *rate.Limiter, log logger.Logger) bool {
	if log == nil {
		log = h.logger
	}

	framesBefore := p.Frames()
	decoded := 0

	for {
		cmd, err := p.Next()
		if err != nil {
			switch {
			case errors.Is(err, resp.ErrNeedMore):
				if decoded == 0 && p.Frames() > framesBefore {
					return h.write(c, domain.ErrorReply(domain.ErrNoCommands))
				}
				return true

			case errors.Is(err, resp.ErrUnknownCommand):
				log.Warn("skipping unknown command", "code", domain.GetErrorCode(err), "error", err)
				h.reject(rejectUnknown)
				continue

			case errors.Is(err, resp.ErrArity):
				log.Warn("skipping command with wrong arity", "code", domain.GetErrorCode(err), "error", err)
				h.reject(rejectArity)
				continue

			default:
				log.Warn("protocol error, closing connection", "code", domain.GetErrorCode(err), "error", err)
				if h.metrics != nil {
					h.metrics.IncProtocolError()
				}
				h.write(c, domain.ErrorReply(err))
				return false
			}
		}

		decoded++

		if limiter != nil && !limiter.Allow() {
			h.reject(rejectRateLimit)
			if !h.write(c, domain.ErrorReply(domain.ErrRateLimited)) {
				return false
			}
			continue
		}

		if cmd.Kind == domain.KindSet {
			log.Debug("command", "name", cmd.Name(), "key", cmd.Key, "value", cmd.Value, "ttl", cmd.TTL)
		} else {
			log.Debug("command", "name", cmd.Name())
		}

		if !h.write(c, h.exec.Execute(ctx, cmd)) {
			return false
		}
		if cmd.Kind == domain.KindQuit {
			return false
		}
	}
}

func (h *CommandHandler) write(c *Conn, r domain.Reply) bool {
	if err := resp.WriteReply(c.bw, r); err != nil {
		if errors.Is(err, domain.ErrInternal) {
			h.logger.Error("reply encoding failed", "code", domain.GetErrorCode(err), "error", err)
		}
		return false
	}
	return true
}

func (h *CommandHandler) reject(reason string) {
	if h.metrics != nil {
		h.metrics.IncCommandRejected(reason)
	}
}
