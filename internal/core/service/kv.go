package service

import (
	"context"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/yndnr/memkv-go/internal/core/domain"
	"github.com/yndnr/memkv-go/internal/infra/buildinfo"
	"github.com/yndnr/memkv-go/internal/telemetry/metric"
)

// Store is the storage the service executes commands against.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration)
	Get(ctx context.Context, key string) (string, bool)
	Len() int
	Shards() int
}

// Replies with fixed text.
const (
	replyPong            = "PONG"
	replyOK              = "OK"
	replyNoDocs          = "no docs yet"
	replyDocsUnsupported = "not supported yet"
)

// KVService dispatches commands to the store.
type KVService struct {
	store   Store
	metrics *metric.Registry
	started time.Time

	processed atomic.Uint64
}

// Option configures a KVService.
type Option func(*KVService)

// WithMetrics records per-command counters and latency into r.
func WithMetrics(r *metric.Registry) Option {
	return func(s *KVService) {
		s.metrics = r
	}
}

// WithStartTime overrides the start time used for INFO uptime.
func WithStartTime(t time.Time) Option {
	return func(s *KVService) {
		s.started = t
	}
}

// NewKVService creates a KVService over store.
func NewKVService(store Store, opts ...Option) *KVService {
	s := &KVService{
		store:   store,
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Execute runs cmd and returns its reply.
func (s *KVService) Execute(ctx context.Context, cmd domain.Command) domain.Reply {
	start := time.Now()
	reply := s.execute(ctx, cmd)

	s.processed.Add(1)
	if s.metrics != nil {
		s.metrics.ObserveCommand(cmd.Name(), time.Since(start))
	}
	return reply
}

// Processed returns the number of commands executed so far.
func (s *KVService) Processed() uint64 {
	return s.processed.Load()
}

func (s *KVService) execute(ctx context.Context, cmd domain.Command) domain.Reply {
	switch cmd.Kind {
	case domain.KindPing:
		if cmd.HasText {
			return domain.BulkString(cmd.Text)
		}
		return domain.SimpleString(replyPong)

	case domain.KindEcho:
		return domain.BulkString(cmd.Text)

	case domain.KindGet:
		v, ok := s.store.Get(ctx, cmd.Key)
		if !ok {
			return domain.NullBulk()
		}
		return domain.BulkString(v)

	case domain.KindSet:
		s.store.Set(ctx, cmd.Key, cmd.Value, cmd.TTL)
		return domain.SimpleString(replyOK)

	case domain.KindCommandDocs:
		if cmd.Subcommand == "DOCS" {
			return domain.SimpleString(replyDocsUnsupported)
		}
		return domain.SimpleString(replyNoDocs)

	case domain.KindInfo:
		return domain.BulkString(s.info(cmd.Text))

	case domain.KindQuit:
		return domain.SimpleString(replyOK)

	default:
		return domain.ErrorReply(domain.ErrUnknownCommand.WithDetailsf("'%s'", cmd.Name()))
	}
}

// ============================================================================
// INFO
// ============================================================================

type infoSection struct {
	name   string
	fields func(s *KVService) [][2]string
}

var infoSections = []infoSection{
	{"Server", func(s *KVService) [][2]string {
		bi := buildinfo.Get()
		return [][2]string{
			{"memkv_version", bi.Version},
			{"memkv_git_sha1", bi.Commit},
			{"go_version", bi.GoVersion},
			{"os", bi.OS + " " + bi.Arch},
			{"process_id", strconv.Itoa(bi.PID)},
			{"uptime_in_seconds", strconv.FormatInt(int64(time.Since(s.started)/time.Second), 10)},
		}
	}},
	{"Keyspace", func(s *KVService) [][2]string {
		return [][2]string{
			{"keys", strconv.Itoa(s.store.Len())},
			{"shards", strconv.Itoa(s.store.Shards())},
		}
	}},
	{"Stats", func(s *KVService) [][2]string {
		return [][2]string{
			{"total_commands_processed", strconv.FormatUint(s.processed.Load(), 10)},
		}
	}},
}

// info renders the INFO reply body. An unknown section yields an empty body.
func (s *KVService) info(section string) string {
	section = strings.ToLower(section)
	all := section == "" || section == "all" || section == "default" || section == "everything"

	var b strings.Builder
	for _, sec := range infoSections {
		if !all && strings.ToLower(sec.name) != section {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString("# ")
		b.WriteString(sec.name)
		b.WriteString("\r\n")
		for _, kv := range sec.fields(s) {
			b.WriteString(kv[0])
			b.WriteByte(':')
			b.WriteString(kv[1])
			b.WriteString("\r\n")
		}
	}
	return b.String()
}
