package redisserver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yndnr/hashguard/internal/core/domain"
	"github.com/yndnr/hashguard/internal/core/service"
	"github.com/yndnr/hashguard/internal/infra/buildinfo"
	"github.com/yndnr/hashguard/internal/telemetry/logger"
	"github.com/yndnr/hashguard/internal/telemetry/metric"
)

const transport = "redis"

// formatError converts err to a Redis error line. Domain errors keep their
// code so clients can match on it: "ERR HG-KV-4040 key not found".
func formatError(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) {
		msg := "ERR " + de.Code + " " + de.Message
		if de.Details != "" {
			msg += ": " + de.Details
		}
		return msg
	}
	return "ERR " + err.Error()
}

func wrongArity(cmd string) string {
	return fmt.Sprintf("ERR wrong number of arguments for '%s' command", strings.ToLower(cmd))
}

type commandFunc func(ctx context.Context, w *Writer, args [][]byte) error

type command struct {
	// arity follows the Redis convention: positive is exact, negative is a
	// minimum. Both count the command name.
	arity int
	run   commandFunc
}

// CommandHandler executes commands against the cache.
type CommandHandler struct {
	cache    *service.CacheService
	metrics  *metric.Registry
	started  time.Time
	commands map[string]command
}

// NewCommandHandler creates a CommandHandler. metrics may be nil.
func NewCommandHandler(cache *service.CacheService, metrics *metric.Registry) *CommandHandler {
	h := &CommandHandler{
		cache:   cache,
		metrics: metrics,
		started: time.Now(),
	}
	h.commands = map[string]command{
		"PING":    {-1, h.ping},
		"ECHO":    {2, h.echo},
		"GET":     {2, h.get},
		"SET":     {-3, h.set},
		"DEL":     {-2, h.del},
		"EXISTS":  {-2, h.exists},
		"DBSIZE":  {1, h.dbsize},
		"INFO":    {-1, h.info},
		"COMMAND": {-1, h.commandInfo},
	}
	return h
}

// Handle runs one command and writes its reply. It reports whether the
// client asked to close the connection.
func (h *CommandHandler) Handle(ctx context.Context, w *Writer, args [][]byte) (quit bool) {
	name := commandName(args[0])
	if name == "QUIT" {
		w.SimpleString("OK")
		return true
	}

	cmd, ok := h.commands[name]
	if !ok {
		w.Error(fmt.Sprintf("ERR unknown command '%.64s'", args[0]))
		h.record("unknown", "error", 0)
		return false
	}
	if (cmd.arity > 0 && len(args) != cmd.arity) || (cmd.arity < 0 && len(args) < -cmd.arity) {
		w.Error(wrongArity(name))
		h.record(name, "error", 0)
		return false
	}

	start := time.Now()
	err := cmd.run(ctx, w, args[1:])
	status := "ok"
	if err != nil {
		status = "error"
		if code := domain.GetErrorCode(err); code == "" || strings.HasPrefix(code, "HG-SYS-5") {
			logger.L(ctx).Error("redis command failed", "command", name, "error", err)
		}
		w.Error(formatError(err))
	}
	h.record(name, status, time.Since(start))
	return false
}

func (h *CommandHandler) record(op, status string, d time.Duration) {
	if h.metrics == nil {
		return
	}
	op = strings.ToLower(op)
	h.metrics.RecordRequest(transport, op, status)
	if d > 0 {
		h.metrics.ObserveRequestDuration(transport, op, d.Seconds())
	}
}

func (h *CommandHandler) ping(_ context.Context, w *Writer, args [][]byte) error {
	switch len(args) {
	case 0:
		w.SimpleString("PONG")
	case 1:
		w.Bulk(string(args[0]))
	default:
		w.Error(wrongArity("PING"))
	}
	return nil
}

func (h *CommandHandler) echo(_ context.Context, w *Writer, args [][]byte) error {
	w.Bulk(string(args[0]))
	return nil
}

func (h *CommandHandler) get(ctx context.Context, w *Writer, args [][]byte) error {
	v, err := h.cache.Get(ctx, string(args[0]))
	if errors.Is(err, domain.ErrKeyNotFound) {
		w.NullBulk()
		return nil
	}
	if err != nil {
		return err
	}
	w.Bulk(v)
	return nil
}

func (h *CommandHandler) set(ctx context.Context, w *Writer, args [][]byte) error {
	// Expiry and conditional flags are not supported.
	if len(args) != 2 {
		w.Error("ERR syntax error")
		return nil
	}
	if err := h.cache.Set(ctx, string(args[0]), string(args[1])); err != nil {
		return err
	}
	w.SimpleString("OK")
	return nil
}

func (h *CommandHandler) del(ctx context.Context, w *Writer, args [][]byte) error {
	var n int64
	for _, key := range args {
		err := h.cache.Delete(ctx, string(key))
		switch {
		case err == nil:
			n++
		case errors.Is(err, domain.ErrKeyNotFound):
		default:
			return err
		}
	}
	w.Integer(n)
	return nil
}

func (h *CommandHandler) exists(ctx context.Context, w *Writer, args [][]byte) error {
	var n int64
	for _, key := range args {
		ok, err := h.cache.Exists(ctx, string(key))
		if err != nil {
			return err
		}
		if ok {
			n++
		}
	}
	w.Integer(n)
	return nil
}

func (h *CommandHandler) dbsize(ctx context.Context, w *Writer, _ [][]byte) error {
	w.Integer(int64(h.cache.Count(ctx)))
	return nil
}

// commandInfo answers the COMMAND introspection calls redis-cli issues on
// connect with an empty list.
func (h *CommandHandler) commandInfo(_ context.Context, w *Writer, _ [][]byte) error {
	w.ArrayHeader(0)
	return nil
}

func (h *CommandHandler) info(ctx context.Context, w *Writer, args [][]byte) error {
	sections := map[string]bool{}
	for _, a := range args {
		sections[strings.ToLower(string(a))] = true
	}
	all := len(sections) == 0 || sections["all"] || sections["default"] || sections["everything"]
	want := func(name string) bool { return all || sections[name] }

	var b strings.Builder
	if want("server") {
		bi := buildinfo.Get()
		fmt.Fprintf(&b, "# Server\r\n")
		fmt.Fprintf(&b, "hashguard_version:%s\r\n", bi.Version)
		fmt.Fprintf(&b, "hashguard_git_sha1:%s\r\n", bi.Commit)
		fmt.Fprintf(&b, "go_version:%s\r\n", bi.GoVersion)
		fmt.Fprintf(&b, "uptime_in_seconds:%d\r\n", int64(time.Since(h.started).Seconds()))
		b.WriteString("\r\n")
	}
	if want("keyspace") {
		fmt.Fprintf(&b, "# Keyspace\r\n")
		fmt.Fprintf(&b, "db0:keys=%d,expires=0\r\n", h.cache.Count(ctx))
		b.WriteString("\r\n")
	}
	if want("hashguard") {
		st := h.cache.Stats(ctx, false).Totals
		fmt.Fprintf(&b, "# Hashguard\r\n")
		fmt.Fprintf(&b, "size:%d\r\n", st.Size)
		fmt.Fprintf(&b, "capacity:%d\r\n", st.Capacity)
		fmt.Fprintf(&b, "load_factor:%.4f\r\n", st.LoadFactor)
		fmt.Fprintf(&b, "max_chain:%d\r\n", st.MaxChain)
		fmt.Fprintf(&b, "avg_chain:%.4f\r\n", st.AvgChain)
		fmt.Fprintf(&b, "collision_events:%d\r\n", st.CollisionEvents)
		fmt.Fprintf(&b, "collisions_total:%d\r\n", st.CollisionsTotal)
		fmt.Fprintf(&b, "attacks_detected:%d\r\n", st.AttacksDetected)
		fmt.Fprintf(&b, "rehash_count:%d\r\n", st.RehashCount)
		b.WriteString("\r\n")
	}
	w.Bulk(b.String())
	return nil
}
