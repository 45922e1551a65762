package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/maxviazov/community-hub-service/internal/config"
	"github.com/maxviazov/community-hub-service/internal/mailer"
	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
	"github.com/maxviazov/community-hub-service/internal/serialize"
)

// ErrDeliveryFailed is returned when the provider rejected every message of a send.
var ErrDeliveryFailed = errors.New("email delivery failed")

type BroadcastInput struct {
	Subject string `json:"subject" validate:"required,min=5,max=200"`
	Body    string `json:"body" validate:"required,min=10"`
}

// SendReport summarises one outbound send.
type SendReport struct {
	Recipients int    `json:"recipients"`
	Sent       int    `json:"sent"`
	Failed     int    `json:"failed"`
	MessageID  string `json:"messageId,omitempty"`
}

type EmailDeps struct {
	Events     repository.EventRepository
	Community  repository.CommunityRegistrationRepository
	Attendees  repository.EventRegistrationRepository
	EmailLogs  repository.EmailLogRepository
	Activities repository.ActivityRepository
	Sender     mailer.Sender
}

type emailService struct {
	events    repository.EventRepository
	community repository.CommunityRegistrationRepository
	attendees repository.EventRegistrationRepository
	logs      repository.EmailLogRepository
	notify    notifier
	audit     auditTrail
	log       zerolog.Logger
}

func NewEmailService(deps EmailDeps, cfg *config.Config, logger zerolog.Logger) EmailService {
	l := logger.With().Str("module", "service").Str("component", "email").Logger()
	return &emailService{
		events:    deps.Events,
		community: deps.Community,
		attendees: deps.Attendees,
		logs:      deps.EmailLogs,
		notify:    newNotifier(deps.Sender, deps.EmailLogs, cfg, l),
		audit:     auditTrail{repo: deps.Activities, log: l},
		log:       l,
	}
}

// SendAnnouncement mails the event to every registered community member in one provider call.
func (s *emailService) SendAnnouncement(ctx context.Context, raw string) (SendReport, error) {
	id, err := parseID("eventId", raw)
	if err != nil {
		return SendReport{}, err
	}
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return SendReport{}, err
	}
	to, err := s.members(ctx)
	if err != nil {
		return SendReport{}, err
	}

	content, err := mailer.Announcement(ev, s.notify.eventLink(id))
	if err != nil {
		return SendReport{}, err
	}
	res, err := s.notify.sender.Send(ctx, s.notify.message(to, content))
	if err != nil {
		s.log.Error().Err(err).Str("event_id", id.Hex()).Int("recipients", len(to)).Msg("announcement send failed")
		return SendReport{}, fmt.Errorf("send announcement: %w", err)
	}

	now := model.Now()
	if err := s.events.MarkAnnouncementSent(ctx, id, now); err != nil {
		return SendReport{}, fmt.Errorf("mark announcement sent: %w", err)
	}
	if err := s.logs.Create(ctx, model.EmailLog{
		ID:             objectid.NewWithTime(now),
		EventID:        idRef(id),
		EmailType:      model.EmailTypeAnnouncement,
		Trigger:        model.TriggerManual,
		RecipientCount: len(to),
		Subject:        content.Subject,
		ProviderID:     providerID(res),
		SentAt:         now,
	}); err != nil {
		return SendReport{}, fmt.Errorf("log announcement: %w", err)
	}
	s.audit.note(ctx, newActivity(model.ActionAnnouncementSent,
		fmt.Sprintf("Event announcement sent to %d community members", len(to)), idRef(id), nil))

	s.log.Info().Str("event_id", id.Hex()).Int("recipients", len(to)).Msg("announcement sent")
	return SendReport{Recipients: len(to), Sent: len(to), MessageID: res.MessageID}, nil
}

// SendReminder mails each attendee individually, in provider batches. Only accepted
// messages are counted; the log entry is written only when at least one went out.
func (s *emailService) SendReminder(ctx context.Context, raw, timeFrame string) (SendReport, error) {
	var ferrs []FieldError
	id, err := objectid.Parse(strings.TrimSpace(raw))
	if err != nil {
		ferrs = append(ferrs, FieldError{Field: "eventId", Message: "must be a 24 character hex identifier"})
	}
	tf := model.TimeFrame(strings.TrimSpace(timeFrame))
	if !tf.Valid() {
		ferrs = append(ferrs, FieldError{Field: "timeFrame", Message: "must be one of 1-week, 3-days, tomorrow, today"})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return SendReport{}, err
	}

	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return SendReport{}, err
	}
	sent, err := s.logs.ReminderTimeFrames(ctx, id)
	if err != nil {
		return SendReport{}, err
	}
	for _, done := range sent {
		if done == tf {
			return SendReport{}, conflict(CodeReminderAlreadySent, fmt.Sprintf("Reminder for %q already sent to this event", tf))
		}
	}

	attendees, err := s.attendees.ListByEvent(ctx, id, repository.NewPage(1, repository.Unbounded()))
	if err != nil {
		return SendReport{}, err
	}
	if len(attendees) == 0 {
		return SendReport{}, conflict(CodeNoRecipients, "No attendees are registered for this event")
	}

	link := s.notify.eventLink(id)
	msgs := make([]mailer.Message, 0, len(attendees))
	var subject string
	for _, a := range attendees {
		content, err := mailer.Reminder(a.FirstName, ev, tf, link)
		if err != nil {
			return SendReport{}, err
		}
		subject = content.Subject
		msgs = append(msgs, s.notify.message([]string{a.Email}, content))
	}

	report := SendReport{Recipients: len(msgs)}
	for _, batch := range chunk(msgs, s.notify.batch) {
		results, err := s.notify.sender.SendBatch(ctx, batch)
		if err != nil {
			report.Failed += len(batch)
			s.log.Warn().Err(err).Str("event_id", id.Hex()).Int("batch_size", len(batch)).Msg("reminder batch failed")
			continue
		}
		report.Sent += len(results)
		report.Failed += len(batch) - len(results)
	}
	if report.Sent == 0 {
		s.log.Error().Str("event_id", id.Hex()).Int("failed", report.Failed).Msg("no reminder delivered")
		return report, ErrDeliveryFailed
	}

	now := model.Now()
	if err := s.logs.Create(ctx, model.EmailLog{
		ID:             objectid.NewWithTime(now),
		EventID:        idRef(id),
		EmailType:      model.EmailTypeReminder,
		Trigger:        model.TriggerManual,
		RecipientCount: report.Sent,
		Subject:        subject,
		TimeFrame:      &tf,
		SentAt:         now,
	}); err != nil {
		return report, fmt.Errorf("log reminder: %w", err)
	}
	s.audit.note(ctx, newActivity(model.ActionEventReminderSent,
		fmt.Sprintf("Event reminder (%s) sent to %d attendees", tf, report.Sent), idRef(id), nil))

	s.log.Info().Str("event_id", id.Hex()).Str("time_frame", string(tf)).Int("sent", report.Sent).Int("failed", report.Failed).Msg("reminder sent")
	return report, nil
}

// SendBroadcast renders a Markdown body and mails it to every registered community member.
func (s *emailService) SendBroadcast(ctx context.Context, in BroadcastInput) (SendReport, error) {
	in.Subject = strings.TrimSpace(in.Subject)
	if err := validateInput(in); err != nil {
		return SendReport{}, err
	}
	to, err := s.members(ctx)
	if err != nil {
		return SendReport{}, err
	}
	content, err := mailer.Broadcast(in.Subject, in.Body)
	if err != nil {
		return SendReport{}, err
	}
	res, err := s.notify.sender.Send(ctx, s.notify.message(to, content))
	if err != nil {
		s.log.Error().Err(err).Int("recipients", len(to)).Msg("broadcast send failed")
		return SendReport{}, fmt.Errorf("send broadcast: %w", err)
	}

	now := model.Now()
	htmlLen := len(content.HTML)
	if err := s.logs.Create(ctx, model.EmailLog{
		ID:                objectid.NewWithTime(now),
		EmailType:         model.EmailTypeCustomBroadcast,
		Trigger:           model.TriggerManual,
		RecipientCount:    len(to),
		Subject:           in.Subject,
		ProviderID:        providerID(res),
		HTMLContentLength: &htmlLen,
		SentAt:            now,
	}); err != nil {
		return SendReport{}, fmt.Errorf("log broadcast: %w", err)
	}
	s.audit.note(ctx, newActivity(model.ActionCustomBroadcastSent,
		fmt.Sprintf("Custom broadcast %q sent to %d community members", in.Subject, len(to)), nil, nil))

	return SendReport{Recipients: len(to), Sent: len(to), MessageID: res.MessageID}, nil
}

func (s *emailService) History(ctx context.Context, limit int) ([]serialize.EmailLog, error) {
	if limit < 0 || limit > MaxPageSize {
		return nil, newInvalidInput([]FieldError{{Field: "limit", Message: fmt.Sprintf("must be between 0 and %d", MaxPageSize)}})
	}
	logs, err := s.logs.ListRecent(ctx, repository.LimitFromQuery(limit))
	if err != nil {
		s.log.Error().Err(err).Int("limit", limit).Msg("email history failed")
		return nil, err
	}
	return serialize.Slice(logs, serialize.FromEmailLog), nil
}

// ReminderStatus reports, for every time frame, whether its reminder already went out.
func (s *emailService) ReminderStatus(ctx context.Context, raw string) (map[model.TimeFrame]bool, error) {
	id, err := parseID("eventId", raw)
	if err != nil {
		return nil, err
	}
	sent, err := s.logs.ReminderTimeFrames(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make(map[model.TimeFrame]bool, len(model.TimeFrames))
	for _, tf := range model.TimeFrames {
		out[tf] = false
	}
	for _, tf := range sent {
		out[tf] = true
	}
	return out, nil
}

func (s *emailService) AnnouncementSent(ctx context.Context, raw string) (bool, error) {
	id, err := parseID("eventId", raw)
	if err != nil {
		return false, err
	}
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	return ev.AnnouncementSent, nil
}

// members lists the addresses of registered community members; none is a conflict.
func (s *emailService) members(ctx context.Context) ([]string, error) {
	start := time.Now()
	regs, err := s.community.ListByStatus(ctx, model.StatusRegistered)
	if err != nil {
		return nil, err
	}
	to := make([]string, 0, len(regs))
	for _, r := range regs {
		if r.Email != "" {
			to = append(to, r.Email)
		}
	}
	if len(to) == 0 {
		return nil, conflict(CodeNoRecipients, "No registered community members found")
	}
	s.log.Debug().Int("recipients", len(to)).Dur("took", time.Since(start)).Msg("recipients loaded")
	return to, nil
}
