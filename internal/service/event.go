package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/maxviazov/community-hub-service/internal/aggregate"
	"github.com/maxviazov/community-hub-service/internal/config"
	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
	"github.com/maxviazov/community-hub-service/internal/serialize"
)

type SpeakerInput struct {
	Name  string `json:"name" validate:"required,min=2"`
	Role  string `json:"role" validate:"required,min=2"`
	Bio   string `json:"bio"`
	Photo string `json:"photo" validate:"omitempty,url"`
}

// EventInput is the body of an event creation. A zero MaxAttendees means no cap.
type EventInput struct {
	Title        string         `json:"title" validate:"required,min=3,max=200"`
	Description  string         `json:"description" validate:"required,min=10"`
	Date         string         `json:"date" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Location     string         `json:"location" validate:"required,min=3"`
	CoverImage   string         `json:"coverImage" validate:"required,url"`
	Duration     string         `json:"duration" validate:"required,min=1"`
	MaxAttendees *int           `json:"maxAttendees" validate:"omitempty,gt=0"`
	Speakers     []SpeakerInput `json:"speakers" validate:"dive"`
}

// EventPatchInput is a partial update; absent fields are left untouched and
// a MaxAttendees of 0 clears the cap.
type EventPatchInput struct {
	Title        *string         `json:"title" validate:"omitempty,min=3,max=200"`
	Description  *string         `json:"description" validate:"omitempty,min=10"`
	Date         *string         `json:"date" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Location     *string         `json:"location" validate:"omitempty,min=3"`
	CoverImage   *string         `json:"coverImage" validate:"omitempty,url"`
	Duration     *string         `json:"duration" validate:"omitempty,min=1"`
	MaxAttendees *int            `json:"maxAttendees" validate:"omitempty,min=0"`
	Speakers     *[]SpeakerInput `json:"speakers" validate:"omitempty,dive"`
}

type eventService struct {
	events repository.EventRepository
	regs   repository.EventRegistrationRepository
	logs   repository.EmailLogRepository
	tx     repository.TxManager
	audit  auditTrail
	agg    *aggregate.Aggregator
	cols   config.Collections
	log    zerolog.Logger
}

type EventDeps struct {
	Events        repository.EventRepository
	Registrations repository.EventRegistrationRepository
	EmailLogs     repository.EmailLogRepository
	Activities    repository.ActivityRepository
	Tx            repository.TxManager
}

func NewEventService(deps EventDeps, agg *aggregate.Aggregator, cols config.Collections, logger zerolog.Logger) EventService {
	l := logger.With().Str("module", "service").Str("component", "event").Logger()
	return &eventService{
		events: deps.Events,
		regs:   deps.Registrations,
		logs:   deps.EmailLogs,
		tx:     deps.Tx,
		audit:  auditTrail{repo: deps.Activities, log: l},
		agg:    agg,
		cols:   cols,
		log:    l,
	}
}

// List returns one page of events, most recent first, each with its registration count.
func (s *eventService) List(ctx context.Context, page, limit int) (repository.PageResult[serialize.EventSummary], error) {
	p, err := pageOf(page, limit)
	if err != nil {
		return repository.PageResult[serialize.EventSummary]{}, err
	}
	res, err := aggregate.Paged(ctx, s.agg, p,
		aggregate.CountQuery{Label: "events", Collection: s.cols.Events},
		func(ctx context.Context) ([]model.Event, error) { return s.events.List(ctx, p) },
	)
	if err != nil {
		s.log.Error().Err(err).Int("page", page).Int("limit", limit).Msg("list events failed")
		return repository.PageResult[serialize.EventSummary]{}, err
	}
	enriched, err := aggregate.Enrich(ctx, s.agg, res.Items, s.registrationCount)
	if err != nil {
		s.log.Error().Err(err).Int("events", len(res.Items)).Msg("registration counts failed")
		return repository.PageResult[serialize.EventSummary]{}, err
	}
	return repository.PageResult[serialize.EventSummary]{
		Items:       serialize.Slice(enriched, serialize.FromEnrichedEvent),
		Total:       res.Total,
		TotalPages:  res.TotalPages,
		CurrentPage: res.CurrentPage,
	}, nil
}

func (s *eventService) registrationCount(e model.Event) aggregate.CountQuery {
	return aggregate.CountQuery{
		Label:      e.ID.Hex(),
		Collection: s.cols.EventRegistrations,
		Filter:     goqu.Ex{"event_id": e.ID.Hex()},
	}
}

// Get loads an event with its registrations and email logs in parallel.
func (s *eventService) Get(ctx context.Context, raw string) (serialize.EventDetail, error) {
	id, err := parseID("id", raw)
	if err != nil {
		return serialize.EventDetail{}, err
	}

	var (
		ev   model.Event
		regs []model.EventRegistration
		logs []model.EmailLog
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ev, err = s.events.GetByID(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		regs, err = s.regs.ListByEvent(gctx, id, repository.NewPage(1, repository.Unbounded()))
		return err
	})
	g.Go(func() (err error) {
		logs, err = s.logs.ListByEvent(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("event_id", id.Hex()).Msg("get event failed")
		}
		return serialize.EventDetail{}, err
	}
	return serialize.FromEventDetail(ev, regs, logs), nil
}

func (s *eventService) Create(ctx context.Context, in EventInput) (serialize.Event, error) {
	start := time.Now()
	in.trim()
	if err := validateInput(in); err != nil {
		s.log.Debug().Interface("field_errors", FieldErrors(err)).Msg("event validation failed")
		return serialize.Event{}, err
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return serialize.Event{}, err
	}

	now := model.Now()
	ev := model.Event{
		ID:          objectid.NewWithTime(now),
		Title:       in.Title,
		Description: in.Description,
		Date:        date,
		Location:    in.Location,
		CoverImage:  in.CoverImage,
		Duration:    in.Duration,
		Speakers:    speakers(in.Speakers),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.MaxAttendees != nil && *in.MaxAttendees > 0 {
		n := *in.MaxAttendees
		ev.MaxAttendees = &n
	}
	if err := s.events.Create(ctx, ev); err != nil {
		s.log.Error().Err(err).Str("title", ev.Title).Msg("create event failed")
		return serialize.Event{}, err
	}
	s.audit.note(ctx, newActivity(model.ActionEventCreated, "Created event: "+ev.Title, idRef(ev.ID), nil))
	s.log.Info().Dur("took", time.Since(start)).Str("event_id", ev.ID.Hex()).Msg("event created")
	return serialize.FromEvent(ev), nil
}

func (s *eventService) Update(ctx context.Context, raw string, in EventPatchInput) (serialize.Event, error) {
	id, err := parseID("id", raw)
	if err != nil {
		return serialize.Event{}, err
	}
	in.trim()
	if err := validateInput(in); err != nil {
		return serialize.Event{}, err
	}

	patch := model.EventPatch{
		Title:        in.Title,
		Description:  in.Description,
		Location:     in.Location,
		CoverImage:   in.CoverImage,
		Duration:     in.Duration,
		MaxAttendees: in.MaxAttendees,
		UpdatedAt:    model.Now(),
	}
	if in.Date != nil {
		date, err := parseDate(*in.Date)
		if err != nil {
			return serialize.Event{}, err
		}
		patch.Date = &date
	}
	if in.Speakers != nil {
		sp := speakers(*in.Speakers)
		patch.Speakers = &sp
	}

	if err := s.events.Update(ctx, id, patch); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("event_id", id.Hex()).Msg("update event failed")
		}
		return serialize.Event{}, err
	}
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return serialize.Event{}, err
	}
	s.audit.note(ctx, newActivity(model.ActionEventUpdated, "Updated event: "+ev.Title, idRef(id), nil))
	return serialize.FromEvent(ev), nil
}

// Delete removes the event together with its registrations and email logs in one transaction.
func (s *eventService) Delete(ctx context.Context, raw string) error {
	id, err := parseID("id", raw)
	if err != nil {
		return err
	}
	ev, err := s.events.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var regs, logs int64
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if regs, err = s.regs.DeleteByEvent(ctx, id); err != nil {
			return fmt.Errorf("delete registrations: %w", err)
		}
		if logs, err = s.logs.DeleteByEvent(ctx, id); err != nil {
			return fmt.Errorf("delete email logs: %w", err)
		}
		if err := s.events.Delete(ctx, id); err != nil {
			return err
		}
		return s.audit.record(ctx, newActivity(model.ActionEventDeleted, "Deleted event: "+ev.Title, idRef(id), nil))
	})
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Err(err).Str("event_id", id.Hex()).Msg("delete event failed")
		}
		return err
	}
	s.log.Info().Str("event_id", id.Hex()).Int64("registrations", regs).Int64("email_logs", logs).Msg("event deleted")
	return nil
}

func (in *EventInput) trim() {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.CoverImage = strings.TrimSpace(in.CoverImage)
	in.Duration = strings.TrimSpace(in.Duration)
}

func (in *EventPatchInput) trim() {
	for _, p := range []*string{in.Title, in.Description, in.Location, in.CoverImage, in.Duration} {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, newInvalidInput([]FieldError{{Field: "date", Message: "must be an RFC 3339 timestamp"}})
	}
	return t.UTC().Truncate(time.Millisecond), nil
}

func speakers(in []SpeakerInput) []model.Speaker {
	out := make([]model.Speaker, len(in))
	for i, sp := range in {
		out[i] = model.Speaker{
			Name:  strings.TrimSpace(sp.Name),
			Role:  strings.TrimSpace(sp.Role),
			Bio:   strings.TrimSpace(sp.Bio),
			Photo: strings.TrimSpace(sp.Photo),
		}
	}
	return out
}
