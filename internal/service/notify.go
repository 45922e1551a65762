package service

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/maxviazov/community-hub-service/internal/config"
	"github.com/maxviazov/community-hub-service/internal/mailer"
	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
)

// notifier sends rendered email and keeps the audit log of what went out.
type notifier struct {
	sender  mailer.Sender
	logs    repository.EmailLogRepository
	from    string
	baseURL string
	batch   int
	log     zerolog.Logger
}

func newNotifier(sender mailer.Sender, logs repository.EmailLogRepository, cfg *config.Config, logger zerolog.Logger) notifier {
	batch := cfg.Email.BatchSize
	if batch <= 0 || batch > mailer.MaxBatch {
		batch = mailer.MaxBatch
	}
	return notifier{
		sender:  sender,
		logs:    logs,
		from:    cfg.Email.From,
		baseURL: strings.TrimRight(cfg.App.BaseURL, "/"),
		batch:   batch,
		log:     logger,
	}
}

func (n notifier) eventLink(id objectid.ID) string {
	return n.baseURL + "/events/" + id.Hex()
}

func (n notifier) message(to []string, c mailer.Content) mailer.Message {
	return mailer.Message{To: to, From: n.from, Subject: c.Subject, HTML: c.HTML}
}

// confirm delivers a transactional email; neither the send nor its log entry can fail the caller.
func (n notifier) confirm(ctx context.Context, to string, c mailer.Content, eventID *objectid.ID) {
	res, err := n.sender.Send(ctx, n.message([]string{to}, c))
	if err != nil {
		n.log.Warn().Err(err).Str("subject", c.Subject).Msg("confirmation email not sent")
		return
	}
	entry := model.EmailLog{
		ID:             objectid.New(),
		EventID:        eventID,
		EmailType:      model.EmailTypeConfirmation,
		Trigger:        model.TriggerAuto,
		RecipientCount: 1,
		Subject:        c.Subject,
		ProviderID:     providerID(res),
		SentAt:         model.Now(),
	}
	if err := n.logs.Create(ctx, entry); err != nil {
		n.log.Warn().Err(err).Msg("confirmation email not logged")
	}
}

func providerID(r mailer.Result) *string {
	if r.MessageID == "" {
		return nil
	}
	id := r.MessageID
	return &id
}

// chunk splits items into consecutive groups of at most size.
func chunk[T any](items []T, size int) [][]T {
	var out [][]T
	for len(items) > size {
		out = append(out, items[:size:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}
