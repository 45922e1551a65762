package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/rs/zerolog"

	"github.com/maxviazov/community-hub-service/internal/aggregate"
	"github.com/maxviazov/community-hub-service/internal/config"
	"github.com/maxviazov/community-hub-service/internal/mailer"
	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
	"github.com/maxviazov/community-hub-service/internal/serialize"
)

type CommunityRegistrationInput struct {
	FirstName      string `json:"firstName" validate:"required,min=2,max=50"`
	LastName       string `json:"lastName" validate:"required,min=2,max=50"`
	Email          string `json:"email" validate:"required,email,max=255"`
	Department     string `json:"department" validate:"required,min=2,max=100"`
	Level          string `json:"level" validate:"required"`
	Campus         string `json:"campus" validate:"required"`
	TechSkills     string `json:"techSkills" validate:"max=500"`
	AspiringSkills string `json:"aspiringSkills" validate:"max=500"`
	Reason         string `json:"reason" validate:"required,min=20,max=500"`
}

type EventRegistrationInput struct {
	EventID   string `json:"eventId" validate:"required"`
	FirstName string `json:"firstName" validate:"required,min=2,max=50"`
	LastName  string `json:"lastName" validate:"required,min=2,max=50"`
	Email     string `json:"email" validate:"required,email,max=255"`
}

type RegistrationDeps struct {
	Community  repository.CommunityRegistrationRepository
	Attendees  repository.EventRegistrationRepository
	Events     repository.EventRepository
	EmailLogs  repository.EmailLogRepository
	Activities repository.ActivityRepository
	Sender     mailer.Sender
	Tx         repository.TxManager
}

type registrationService struct {
	community repository.CommunityRegistrationRepository
	attendees repository.EventRegistrationRepository
	events    repository.EventRepository
	tx        repository.TxManager
	notify    notifier
	audit     auditTrail
	agg       *aggregate.Aggregator
	cols      config.Collections
	log       zerolog.Logger
}

func NewRegistrationService(deps RegistrationDeps, agg *aggregate.Aggregator, cfg *config.Config, logger zerolog.Logger) RegistrationService {
	l := logger.With().Str("module", "service").Str("component", "registration").Logger()
	return &registrationService{
		community: deps.Community,
		attendees: deps.Attendees,
		events:    deps.Events,
		tx:        deps.Tx,
		notify:    newNotifier(deps.Sender, deps.EmailLogs, cfg, l),
		audit:     auditTrail{repo: deps.Activities, log: l},
		agg:       agg,
		cols:      cfg.Collections,
		log:       l,
	}
}

func (s *registrationService) SubmitCommunity(ctx context.Context, in CommunityRegistrationInput) (serialize.CommunityRegistration, error) {
	start := time.Now()
	in.normalize()
	if err := validateInput(in); err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("community registration validation failed")
		return serialize.CommunityRegistration{}, err
	}

	exists, err := s.community.ExistsByEmail(ctx, in.Email)
	if err != nil {
		s.log.Error().Err(err).Msg("duplicate check failed")
		return serialize.CommunityRegistration{}, err
	}
	if exists {
		return serialize.CommunityRegistration{}, conflict(CodeEmailExists, "This email is already registered")
	}

	now := model.Now()
	reg := model.CommunityRegistration{
		ID:             objectid.NewWithTime(now),
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Department:     in.Department,
		Level:          in.Level,
		Campus:         in.Campus,
		TechSkills:     in.TechSkills,
		AspiringSkills: in.AspiringSkills,
		Reason:         in.Reason,
		Status:         model.StatusRegistered,
		CreatedAt:      now,
	}
	if err := s.community.Create(ctx, reg); err != nil {
		// A concurrent submit can still win the unique index.
		if errors.Is(err, repository.ErrAlreadyExists) {
			return serialize.CommunityRegistration{}, conflict(CodeEmailExists, "This email is already registered")
		}
		s.log.Error().Err(err).Msg("create community registration failed")
		return serialize.CommunityRegistration{}, err
	}

	s.audit.note(ctx, newActivity(model.ActionRegistration, "New community member: "+reg.FirstName+" "+reg.LastName, nil, idRef(reg.ID)))
	if content, err := mailer.Welcome(reg.FirstName); err != nil {
		s.log.Warn().Err(err).Msg("welcome email not rendered")
	} else {
		s.notify.confirm(ctx, reg.Email, content, nil)
	}
	s.log.Info().Dur("took", time.Since(start)).Str("registration_id", reg.ID.Hex()).Msg("community registration created")
	return serialize.FromCommunityRegistration(reg), nil
}

func (s *registrationService) SubmitEvent(ctx context.Context, in EventRegistrationInput) (serialize.EventRegistration, error) {
	in.normalize()
	if err := validateInput(in); err != nil {
		return serialize.EventRegistration{}, err
	}
	eventID, err := parseID("eventId", in.EventID)
	if err != nil {
		return serialize.EventRegistration{}, err
	}

	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return serialize.EventRegistration{}, newInvalidInput([]FieldError{{Field: "eventId", Message: "event does not exist"}})
		}
		return serialize.EventRegistration{}, err
	}

	exists, err := s.attendees.ExistsByEmail(ctx, eventID, in.Email)
	if err != nil {
		s.log.Error().Err(err).Str("event_id", eventID.Hex()).Msg("duplicate check failed")
		return serialize.EventRegistration{}, err
	}
	if exists {
		return serialize.EventRegistration{}, conflict(CodeEmailExists, "You are already registered for this event")
	}

	reg := model.EventRegistration{
		ID:           objectid.New(),
		EventID:      eventID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Status:       model.StatusRegistered,
		RegisteredAt: model.Now(),
	}
	// The event row lock serializes sign-ups for one event, so the capacity
	// count and the insert see the same attendee set.
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		locked, err := s.events.LockByID(ctx, eventID)
		if err != nil {
			return err
		}
		if locked.MaxAttendees != nil {
			n, err := s.agg.Count(ctx, aggregate.CountQuery{
				Label:      "attendees",
				Collection: s.cols.EventRegistrations,
				Filter:     goqu.Ex{"event_id": eventID.Hex()},
			})
			if err != nil {
				return err
			}
			if n >= int64(*locked.MaxAttendees) {
				return conflict(CodeEventFull, "This event is fully booked")
			}
		}
		return s.attendees.Create(ctx, reg)
	})
	if err != nil {
		var ce *ConflictError
		if errors.As(err, &ce) {
			return serialize.EventRegistration{}, err
		}
		if errors.Is(err, repository.ErrAlreadyExists) {
			return serialize.EventRegistration{}, conflict(CodeEmailExists, "You are already registered for this event")
		}
		s.log.Error().Err(err).Str("event_id", eventID.Hex()).Msg("create event registration failed")
		return serialize.EventRegistration{}, err
	}

	s.audit.note(ctx, newActivity(model.ActionRegistration, reg.FirstName+" "+reg.LastName+" registered for "+ev.Title, idRef(eventID), nil))
	if content, err := mailer.EventConfirmation(reg.FirstName, ev, s.notify.eventLink(eventID)); err != nil {
		s.log.Warn().Err(err).Msg("confirmation email not rendered")
	} else {
		s.notify.confirm(ctx, reg.Email, content, idRef(eventID))
	}
	return serialize.FromEventRegistration(reg), nil
}

func (s *registrationService) ListCommunity(ctx context.Context, page, limit int) (repository.PageResult[serialize.CommunityRegistration], error) {
	p, err := pageOf(page, limit)
	if err != nil {
		return repository.PageResult[serialize.CommunityRegistration]{}, err
	}
	res, err := aggregate.Paged(ctx, s.agg, p,
		aggregate.CountQuery{Label: "registrations", Collection: s.cols.Registrations},
		func(ctx context.Context) ([]model.CommunityRegistration, error) { return s.community.List(ctx, p) },
	)
	if err != nil {
		s.log.Error().Err(err).Int("page", page).Int("limit", limit).Msg("list community registrations failed")
		return repository.PageResult[serialize.CommunityRegistration]{}, err
	}
	return repository.MapPageResult(res, serialize.FromCommunityRegistration), nil
}

// ListForEvent rejects a malformed event id before any storage call.
func (s *registrationService) ListForEvent(ctx context.Context, raw string, page, limit int) (repository.PageResult[serialize.EventRegistration], error) {
	eventID, err := parseID("eventId", raw)
	if err != nil {
		return repository.PageResult[serialize.EventRegistration]{}, err
	}
	p, err := pageOf(page, limit)
	if err != nil {
		return repository.PageResult[serialize.EventRegistration]{}, err
	}
	res, err := aggregate.Paged(ctx, s.agg, p,
		aggregate.CountQuery{Label: "attendees", Collection: s.cols.EventRegistrations, Filter: goqu.Ex{"event_id": eventID.Hex()}},
		func(ctx context.Context) ([]model.EventRegistration, error) { return s.attendees.ListByEvent(ctx, eventID, p) },
	)
	if err != nil {
		s.log.Error().Err(err).Str("event_id", eventID.Hex()).Msg("list event registrations failed")
		return repository.PageResult[serialize.EventRegistration]{}, err
	}
	return repository.MapPageResult(res, serialize.FromEventRegistration), nil
}

func (in *CommunityRegistrationInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = normalizeEmail(in.Email)
	in.Department = strings.TrimSpace(in.Department)
	in.Level = strings.TrimSpace(in.Level)
	in.Campus = strings.TrimSpace(in.Campus)
	in.TechSkills = strings.TrimSpace(in.TechSkills)
	in.AspiringSkills = strings.TrimSpace(in.AspiringSkills)
	in.Reason = strings.TrimSpace(in.Reason)
}

func (in *EventRegistrationInput) normalize() {
	in.EventID = strings.TrimSpace(in.EventID)
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = normalizeEmail(in.Email)
}
