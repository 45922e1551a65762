package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// NoopSender logs messages instead of delivering them. It is used when no provider key is configured.
type NoopSender struct {
	log zerolog.Logger
}

func NewNoopSender(logger zerolog.Logger) *NoopSender {
	return &NoopSender{log: logger.With().Str("module", "mailer").Str("component", "noop").Logger()}
}

func (s *NoopSender) Send(_ context.Context, msg Message) (Result, error) {
	s.log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("noop email send")
	return Result{MessageID: fmt.Sprintf("noop-%d", time.Now().UnixNano()), SentAt: time.Now()}, nil
}

func (s *NoopSender) SendBatch(_ context.Context, msgs []Message) ([]Result, error) {
	out := make([]Result, len(msgs))
	for i, m := range msgs {
		s.log.Info().Int("index", i).Strs("to", m.To).Str("subject", m.Subject).Msg("noop email batch")
		out[i] = Result{MessageID: fmt.Sprintf("noop-batch-%d-%d", time.Now().UnixNano(), i), SentAt: time.Now()}
	}
	return out, nil
}

var _ Sender = (*NoopSender)(nil)
