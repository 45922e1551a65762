package service_test

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/rs/zerolog"

	"github.com/maxviazov/community-hub-service/internal/aggregate"
	"github.com/maxviazov/community-hub-service/internal/config"
	"github.com/maxviazov/community-hub-service/internal/mailer"
	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
	"github.com/maxviazov/community-hub-service/internal/service"
)

var (
	nopLog = zerolog.New(io.Discard)
	errDB  = errors.New("db down")
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "hub", BaseURL: "https://hub.example.com/"},
		Collections: config.Collections{
			Events:             "events",
			EventRegistrations: "event_registrations",
			Registrations:      "registrations",
			CoreTeam:           "core_team",
			EmailLogs:          "email_logs",
			Activities:         "activities",
			Admins:             "admins",
		},
		Email: config.EmailConfig{From: "hub@example.com", BatchSize: 2},
	}
}

// tables is the state of memStore; it is copied whole for transaction rollback.
type tables struct {
	events     map[objectid.ID]model.Event
	attendees  []model.EventRegistration
	community  []model.CommunityRegistration
	team       map[objectid.ID]model.CoreTeamMember
	logs       []model.EmailLog
	activities []model.Activity
	admins     map[string]model.AdminUser
}

func (t tables) clone() tables {
	out := tables{
		events:     make(map[objectid.ID]model.Event, len(t.events)),
		attendees:  append([]model.EventRegistration(nil), t.attendees...),
		community:  append([]model.CommunityRegistration(nil), t.community...),
		team:       make(map[objectid.ID]model.CoreTeamMember, len(t.team)),
		logs:       append([]model.EmailLog(nil), t.logs...),
		activities: append([]model.Activity(nil), t.activities...),
		admins:     make(map[string]model.AdminUser, len(t.admins)),
	}
	for k, v := range t.events {
		out.events[k] = v
	}
	for k, v := range t.team {
		out.team[k] = v
	}
	for k, v := range t.admins {
		out.admins[k] = v
	}
	return out
}

// memStore implements every repository plus the aggregator's Counter over in-memory tables.
type memStore struct {
	mu sync.Mutex
	tables

	// txMu makes units of work run one at a time, like row locks on one event.
	txMu sync.Mutex

	countCalls  int
	countErr    error
	activityErr error
	listErr     error
}

func newMemStore() *memStore {
	return &memStore{tables: tables{
		events: map[objectid.ID]model.Event{},
		team:   map[objectid.ID]model.CoreTeamMember{},
		admins: map[string]model.AdminUser{},
	}}
}

func (m *memStore) aggregator() *aggregate.Aggregator {
	return aggregate.New(m, aggregate.Options{MaxConcurrency: 4, QueryTimeout: time.Second}, nopLog)
}

// Count understands the filters the services build: an event id equality and a time window.
func (m *memStore) Count(_ context.Context, collection string, filter exp.Expression) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countCalls++
	if m.countErr != nil {
		return 0, m.countErr
	}
	var (
		eventID string
		since   *time.Time
	)
	if filter != nil {
		_, args, err := goqu.Dialect("postgres").From(collection).Where(filter).Prepared(true).ToSQL()
		if err != nil {
			return 0, err
		}
		for _, a := range args {
			switch v := a.(type) {
			case string:
				eventID = v
			case time.Time:
				since = &v
			}
		}
	}
	after := func(t time.Time) bool { return since == nil || !t.Before(*since) }

	var n int64
	switch collection {
	case "events":
		for _, e := range m.events {
			if after(e.Date) {
				n++
			}
		}
	case "event_registrations":
		for _, r := range m.attendees {
			if eventID == "" || r.EventID.Hex() == eventID {
				n++
			}
		}
	case "registrations":
		n = int64(len(m.community))
	case "email_logs":
		for _, l := range m.logs {
			if after(l.SentAt) {
				n++
			}
		}
	case "activities":
		n = int64(len(m.activities))
	default:
		return 0, errors.New("unknown collection " + collection)
	}
	return n, nil
}

func window[T any](items []T, p repository.Page) []T {
	skip := p.Skip()
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if take, ok := p.Take(); ok && take < len(items) {
		items = items[:take]
	}
	return items
}

type eventRepo struct{ *memStore }

func (r eventRepo) Create(_ context.Context, e model.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events[e.ID] = e
	return nil
}

func (r eventRepo) GetByID(_ context.Context, id objectid.ID) (model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return model.Event{}, repository.ErrNotFound
	}
	return e, nil
}

func (r eventRepo) LockByID(ctx context.Context, id objectid.ID) (model.Event, error) {
	return r.GetByID(ctx, id)
}

func (r eventRepo) List(_ context.Context, p repository.Page) ([]model.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]model.Event, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return window(out, p), nil
}

func (r eventRepo) Update(_ context.Context, id objectid.ID, patch model.EventPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Date != nil {
		e.Date = *patch.Date
	}
	if patch.Speakers != nil {
		e.Speakers = *patch.Speakers
	}
	if patch.MaxAttendees != nil {
		if *patch.MaxAttendees == 0 {
			e.MaxAttendees = nil
		} else {
			n := *patch.MaxAttendees
			e.MaxAttendees = &n
		}
	}
	e.UpdatedAt = patch.UpdatedAt
	r.events[id] = e
	return nil
}

func (r eventRepo) Delete(_ context.Context, id objectid.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

func (r eventRepo) MarkAnnouncementSent(_ context.Context, id objectid.ID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	e.AnnouncementSent = true
	e.AnnouncementSentAt = &at
	r.events[id] = e
	return nil
}

type attendeeRepo struct{ *memStore }

func (r attendeeRepo) Create(_ context.Context, reg model.EventRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attendees = append(r.attendees, reg)
	return nil
}

func (r attendeeRepo) ExistsByEmail(_ context.Context, eventID objectid.ID, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.attendees {
		if a.EventID == eventID && a.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r attendeeRepo) ListByEvent(_ context.Context, eventID objectid.ID, p repository.Page) ([]model.EventRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.EventRegistration
	for _, a := range r.attendees {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	return window(out, p), nil
}

func (r attendeeRepo) DeleteByEvent(_ context.Context, eventID objectid.ID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.attendees[:0:0]
	for _, a := range r.attendees {
		if a.EventID != eventID {
			kept = append(kept, a)
		}
	}
	n := int64(len(r.attendees) - len(kept))
	r.attendees = kept
	return n, nil
}

type communityRepo struct{ *memStore }

func (r communityRepo) Create(_ context.Context, reg model.CommunityRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.community {
		if c.Email == reg.Email {
			return repository.ErrAlreadyExists
		}
	}
	r.community = append(r.community, reg)
	return nil
}

func (r communityRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.community {
		if c.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r communityRepo) List(_ context.Context, p repository.Page) ([]model.CommunityRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return window(append([]model.CommunityRegistration(nil), r.community...), p), nil
}

func (r communityRepo) ListByStatus(_ context.Context, status string) ([]model.CommunityRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.CommunityRegistration
	for _, c := range r.community {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

type teamRepo struct{ *memStore }

func (r teamRepo) Create(_ context.Context, m model.CoreTeamMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.team[m.ID] = m
	return nil
}

func (r teamRepo) GetByID(_ context.Context, id objectid.ID) (model.CoreTeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.team[id]
	if !ok {
		return model.CoreTeamMember{}, repository.ErrNotFound
	}
	return m, nil
}

func (r teamRepo) ListAll(_ context.Context) ([]model.CoreTeamMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.CoreTeamMember, 0, len(r.team))
	for _, m := range r.team {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r teamRepo) Update(_ context.Context, id objectid.ID, patch model.CoreTeamPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.team[id]
	if !ok {
		return repository.ErrNotFound
	}
	if patch.Name != nil {
		m.Name = *patch.Name
	}
	if patch.Role != nil {
		m.Role = *patch.Role
	}
	if patch.SocialLinks != nil {
		m.SocialLinks = *patch.SocialLinks
	}
	m.UpdatedAt = patch.UpdatedAt
	r.team[id] = m
	return nil
}

func (r teamRepo) Delete(_ context.Context, id objectid.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.team[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.team, id)
	return nil
}

type emailLogRepo struct{ *memStore }

func (r emailLogRepo) Create(_ context.Context, l model.EmailLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, l)
	return nil
}

func (r emailLogRepo) ListByEvent(_ context.Context, eventID objectid.ID) ([]model.EmailLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.EmailLog
	for _, l := range r.logs {
		if l.EventID != nil && *l.EventID == eventID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r emailLogRepo) ListRecent(_ context.Context, limit repository.Limit) ([]model.EmailLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]model.EmailLog(nil), r.logs...)
	sort.Slice(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	return window(out, repository.NewPage(1, limit)), nil
}

func (r emailLogRepo) ReminderTimeFrames(_ context.Context, eventID objectid.ID) ([]model.TimeFrame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.TimeFrame
	for _, l := range r.logs {
		if l.EmailType == model.EmailTypeReminder && l.EventID != nil && *l.EventID == eventID && l.TimeFrame != nil {
			out = append(out, *l.TimeFrame)
		}
	}
	return out, nil
}

func (r emailLogRepo) DeleteByEvent(_ context.Context, eventID objectid.ID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.logs[:0:0]
	for _, l := range r.logs {
		if l.EventID == nil || *l.EventID != eventID {
			kept = append(kept, l)
		}
	}
	n := int64(len(r.logs) - len(kept))
	r.logs = kept
	return n, nil
}

type activityRepo struct{ *memStore }

func (r activityRepo) Create(_ context.Context, a model.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.activityErr != nil {
		return r.activityErr
	}
	r.activities = append(r.activities, a)
	return nil
}

func (r activityRepo) List(_ context.Context, p repository.Page) ([]model.Activity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := append([]model.Activity(nil), r.activities...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, p), nil
}

type adminRepo struct{ *memStore }

func (r adminRepo) Create(_ context.Context, u model.AdminUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.admins[u.Email]; ok {
		return repository.ErrAlreadyExists
	}
	r.admins[u.Email] = u
	return nil
}

func (r adminRepo) GetByEmail(_ context.Context, email string) (model.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.admins[email]
	if !ok {
		return model.AdminUser{}, repository.ErrNotFound
	}
	return u, nil
}

func (r adminRepo) TouchLastLogin(_ context.Context, id objectid.ID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, u := range r.admins {
		if u.ID == id {
			u.LastLogin = &at
			r.admins[k] = u
			return nil
		}
	}
	return repository.ErrNotFound
}

// memTx restores the tables when the unit of work fails.
type memTx struct{ *memStore }

func (t memTx) WithinTx(ctx context.Context, fn repository.TxFunc) error {
	t.txMu.Lock()
	defer t.txMu.Unlock()
	t.mu.Lock()
	snapshot := t.tables.clone()
	t.mu.Unlock()
	if err := fn(ctx); err != nil {
		t.mu.Lock()
		t.tables = snapshot
		t.mu.Unlock()
		return err
	}
	return nil
}

var (
	_ repository.EventRepository                 = eventRepo{}
	_ repository.EventRegistrationRepository     = attendeeRepo{}
	_ repository.CommunityRegistrationRepository = communityRepo{}
	_ repository.CoreTeamRepository              = teamRepo{}
	_ repository.EmailLogRepository              = emailLogRepo{}
	_ repository.ActivityRepository              = activityRepo{}
	_ repository.AdminRepository                 = adminRepo{}
	_ repository.TxManager                       = memTx{}
	_ aggregate.Counter                          = (*memStore)(nil)
)

// recordingSender captures every message; batches listed in failBatches are rejected.
type recordingSender struct {
	mu          sync.Mutex
	sent        []mailer.Message
	batches     int
	failBatches map[int]bool
	sendErr     error
}

func (s *recordingSender) Send(_ context.Context, msg mailer.Message) (mailer.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return mailer.Result{}, s.sendErr
	}
	s.sent = append(s.sent, msg)
	return mailer.Result{MessageID: "msg-1", SentAt: time.Now()}, nil
}

func (s *recordingSender) SendBatch(_ context.Context, msgs []mailer.Message) ([]mailer.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.batches
	s.batches++
	if s.failBatches[idx] {
		return nil, errors.New("provider rejected batch")
	}
	out := make([]mailer.Result, len(msgs))
	for i := range msgs {
		out[i] = mailer.Result{MessageID: "batch", SentAt: time.Now()}
	}
	s.sent = append(s.sent, msgs...)
	return out, nil
}

func seedEvent(m *memStore, title string, date time.Time) model.Event {
	e := model.Event{
		ID:         objectid.New(),
		Title:      title,
		Date:       date.UTC(),
		Location:   "Hall B",
		CoverImage: "https://img.example.com/cover.png",
		Speakers:   []model.Speaker{},
		CreatedAt:  model.Now(),
		UpdatedAt:  model.Now(),
	}
	m.events[e.ID] = e
	return e
}

func seedAttendee(m *memStore, eventID objectid.ID, email string) {
	m.attendees = append(m.attendees, model.EventRegistration{
		ID: objectid.New(), EventID: eventID, FirstName: "Ada", LastName: "L", Email: email,
		Status: model.StatusRegistered, RegisteredAt: model.Now(),
	})
}

func seedMember(m *memStore, email, status string) {
	m.community = append(m.community, model.CommunityRegistration{
		ID: objectid.New(), FirstName: "Grace", LastName: "H", Email: email, Status: status, CreatedAt: model.Now(),
	})
}

// harness wires every service over one memStore.
type harness struct {
	store  *memStore
	sender *recordingSender
	cfg    *config.Config
}

func newHarness() *harness {
	return &harness{store: newMemStore(), sender: &recordingSender{}, cfg: testConfig()}
}

func (h *harness) eventService() service.EventService {
	return service.NewEventService(service.EventDeps{
		Events:        eventRepo{h.store},
		Registrations: attendeeRepo{h.store},
		EmailLogs:     emailLogRepo{h.store},
		Activities:    activityRepo{h.store},
		Tx:            memTx{h.store},
	}, h.store.aggregator(), h.cfg.Collections, nopLog)
}

func (h *harness) registrationService() service.RegistrationService {
	return service.NewRegistrationService(service.RegistrationDeps{
		Community:  communityRepo{h.store},
		Attendees:  attendeeRepo{h.store},
		Events:     eventRepo{h.store},
		EmailLogs:  emailLogRepo{h.store},
		Activities: activityRepo{h.store},
		Sender:     h.sender,
		Tx:         memTx{h.store},
	}, h.store.aggregator(), h.cfg, nopLog)
}

func (h *harness) emailService() service.EmailService {
	return service.NewEmailService(service.EmailDeps{
		Events:     eventRepo{h.store},
		Community:  communityRepo{h.store},
		Attendees:  attendeeRepo{h.store},
		EmailLogs:  emailLogRepo{h.store},
		Activities: activityRepo{h.store},
		Sender:     h.sender,
	}, h.cfg, nopLog)
}

func (h *harness) dashboardService() service.DashboardService {
	return service.NewDashboardService(h.store.aggregator(), activityRepo{h.store}, h.cfg.Collections, nopLog)
}

func (h *harness) coreTeamService() service.CoreTeamService {
	return service.NewCoreTeamService(teamRepo{h.store}, activityRepo{h.store}, nopLog)
}

func fieldNames(err error) []string {
	var out []string
	for _, fe := range service.FieldErrors(err) {
		out = append(out, fe.Field)
	}
	return out
}
