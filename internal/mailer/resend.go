package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// ResendSender delivers through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	log    zerolog.Logger
}

func NewResendSender(apiKey, from string, logger zerolog.Logger) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		log:    logger.With().Str("module", "mailer").Str("component", "resend").Logger(),
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) (Result, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, s.request(msg))
	if err != nil {
		s.log.Error().Err(err).Int("recipients", len(msg.To)).Str("subject", msg.Subject).Msg("send failed")
		return Result{}, fmt.Errorf("resend send failed: %w", err)
	}
	s.log.Info().Str("message_id", sent.Id).Int("recipients", len(msg.To)).Str("subject", msg.Subject).Msg("email sent")
	return Result{MessageID: sent.Id, SentAt: time.Now()}, nil
}

func (s *ResendSender) SendBatch(ctx context.Context, msgs []Message) ([]Result, error) {
	if len(msgs) == 0 {
		return nil, nil
	}
	if len(msgs) > MaxBatch {
		return nil, errors.New("batch exceeds provider limit")
	}
	params := make([]*resend.SendEmailRequest, len(msgs))
	for i, m := range msgs {
		params[i] = s.request(m)
	}
	resp, err := s.client.Batch.SendWithContext(ctx, params)
	if err != nil {
		s.log.Error().Err(err).Int("batch_size", len(msgs)).Msg("batch send failed")
		return nil, fmt.Errorf("resend batch send failed: %w", err)
	}
	out := make([]Result, 0, len(resp.Data))
	for _, item := range resp.Data {
		out = append(out, Result{MessageID: item.Id, SentAt: time.Now()})
	}
	s.log.Info().Int("batch_size", len(msgs)).Int("accepted", len(out)).Msg("batch sent")
	return out, nil
}

func (s *ResendSender) request(m Message) *resend.SendEmailRequest {
	from := m.From
	if from == "" {
		from = s.from
	}
	req := &resend.SendEmailRequest{
		From:    from,
		To:      m.To,
		Subject: m.Subject,
		Html:    m.HTML,
	}
	if m.ReplyTo != "" {
		req.ReplyTo = m.ReplyTo
	}
	return req
}

var _ Sender = (*ResendSender)(nil)
