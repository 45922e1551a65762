package repository

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

const redacted = "[redacted]"

// pgxLogger routes pgx query tracing into zerolog under component=pgx.
type pgxLogger struct {
	logger zerolog.Logger
}

func newPgxLogger(logger zerolog.Logger) *pgxLogger {
	return &pgxLogger{logger: logger.With().Str("component", "pgx").Logger()}
}

// Log implements tracelog.Logger. Statement, arguments and duration become typed
// fields; bcrypt hashes in arguments are never written out.
func (l *pgxLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	ev := l.event(level)
	if ev == nil {
		return
	}
	if s, ok := data["sql"].(string); ok {
		ev = ev.Str("sql", s)
		delete(data, "sql")
	}
	if args, ok := data["args"].([]any); ok {
		ev = ev.Interface("args", redactArgs(args))
		delete(data, "args")
	}
	if d, ok := data["time"].(time.Duration); ok {
		ev = ev.Dur("query_time", d)
		delete(data, "time")
	}
	if len(data) > 0 {
		ev = ev.Fields(data)
	}
	ev.Msg(msg)
}

func (l *pgxLogger) event(level tracelog.LogLevel) *zerolog.Event {
	switch level {
	case tracelog.LogLevelNone:
		return nil
	case tracelog.LogLevelTrace:
		return l.logger.Trace()
	case tracelog.LogLevelDebug:
		return l.logger.Debug()
	case tracelog.LogLevelInfo:
		return l.logger.Info()
	case tracelog.LogLevelWarn:
		return l.logger.Warn()
	case tracelog.LogLevelError:
		return l.logger.Error()
	default:
		return l.logger.Info().Str("pgx_log_level", level.String())
	}
}

func redactArgs(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok && isBcryptHash(s) {
			out[i] = redacted
			continue
		}
		out[i] = a
	}
	return out
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$"))
}
