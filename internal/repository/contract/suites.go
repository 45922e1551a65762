// Package contract holds storage-agnostic behaviour suites. Each backend wires them
// to its own factories so every implementation is held to the same rules.
package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
)

// Counter mirrors the aggregator's storage capability without importing it.
type Counter interface {
	Count(ctx context.Context, collection string, filter exp.Expression) (int64, error)
}

type EventFactory func(t *testing.T) (repository.EventRepository, func())

type RegistrationFactory func(t *testing.T) (events repository.EventRepository, regs repository.EventRegistrationRepository, cleanup func())

type CommunityFactory func(t *testing.T) (repository.CommunityRegistrationRepository, func())

type EmailLogFactory func(t *testing.T) (events repository.EventRepository, logs repository.EmailLogRepository, cleanup func())

type CounterFactory func(t *testing.T) (counter Counter, events repository.EventRepository, table string, cleanup func())

type TxFactory func(t *testing.T) (tx repository.TxManager, events repository.EventRepository, cleanup func())

type PingerFactory func(t *testing.T) (repository.Pinger, func())

// NewEvent builds a valid event dated offset from now.
func NewEvent(title string, offset time.Duration) model.Event {
	now := model.Now()
	return model.Event{
		ID:          objectid.New(),
		Title:       title,
		Description: "A community meetup about Go.",
		Date:        now.Add(offset),
		Location:    "Main hall",
		CoverImage:  "https://img.example.com/cover.png",
		Duration:    "2 hours",
		Speakers:    []model.Speaker{{Name: "Ada", Role: "Host"}, {Name: "Linus", Role: "Guest"}},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func RunEventRepositoryContract(t *testing.T, makeRepo EventFactory) {
	t.Helper()

	t.Run("create_and_get", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		ev := NewEvent("Go Night", 24*time.Hour)
		if err := repo.Create(ctx, ev); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		got, err := repo.GetByID(ctx, ev.ID)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if got.ID != ev.ID || got.Title != ev.Title || len(got.Speakers) != 2 || got.Speakers[1].Name != "Linus" {
			t.Fatalf("mismatch: %+v", got)
		}
		if got.MaxAttendees != nil {
			t.Fatalf("expected no attendee cap, got %d", *got.MaxAttendees)
		}
	})

	t.Run("get_not_found", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		_, err := repo.GetByID(context.Background(), objectid.New())
		if !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("list_orders_by_date_desc_and_windows", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			if err := repo.Create(ctx, NewEvent("E-"+string(rune('A'+i)), time.Duration(i)*time.Hour)); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		first, err := repo.List(ctx, repository.NewPage(1, repository.Bounded(2)))
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(first) != 2 || first[0].Title != "E-E" || first[1].Title != "E-D" {
			t.Fatalf("unexpected first page: %+v", first)
		}
		last, err := repo.List(ctx, repository.NewPage(3, repository.Bounded(2)))
		if err != nil {
			t.Fatalf("list3: %v", err)
		}
		if len(last) != 1 || last[0].Title != "E-A" {
			t.Fatalf("unexpected last page: %+v", last)
		}
		all, err := repo.List(ctx, repository.NewPage(1, repository.Unbounded()))
		if err != nil {
			t.Fatalf("list all: %v", err)
		}
		if len(all) != 5 {
			t.Fatalf("expected 5 events, got %d", len(all))
		}
	})

	t.Run("update_partial_and_clear_cap", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		ev := NewEvent("Before", time.Hour)
		limit := 30
		ev.MaxAttendees = &limit
		if err := repo.Create(ctx, ev); err != nil {
			t.Fatalf("seed: %v", err)
		}
		title, zero := "After", 0
		if err := repo.Update(ctx, ev.ID, model.EventPatch{Title: &title, MaxAttendees: &zero, UpdatedAt: model.Now()}); err != nil {
			t.Fatalf("update: %v", err)
		}
		got, err := repo.GetByID(ctx, ev.ID)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if got.Title != "After" || got.Location != ev.Location || got.MaxAttendees != nil {
			t.Fatalf("unexpected event after update: %+v", got)
		}
		if err := repo.Update(ctx, objectid.New(), model.EventPatch{Title: &title, UpdatedAt: model.Now()}); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("mark_announcement_and_delete", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		ev := NewEvent("Announce", time.Hour)
		if err := repo.Create(ctx, ev); err != nil {
			t.Fatalf("seed: %v", err)
		}
		if err := repo.MarkAnnouncementSent(ctx, ev.ID, model.Now()); err != nil {
			t.Fatalf("mark: %v", err)
		}
		got, err := repo.GetByID(ctx, ev.ID)
		if err != nil || !got.AnnouncementSent || got.AnnouncementSentAt == nil {
			t.Fatalf("expected announcement flag, got %+v err=%v", got, err)
		}
		if err := repo.Delete(ctx, ev.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if err := repo.Delete(ctx, ev.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound on second delete, got %v", err)
		}
	})
}

func RunEventRegistrationContract(t *testing.T, makeRepo RegistrationFactory) {
	t.Helper()

	t.Run("create_list_exists_delete", func(t *testing.T) {
		events, regs, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		ev := NewEvent("Workshop", time.Hour)
		if err := events.Create(ctx, ev); err != nil {
			t.Fatalf("seed event: %v", err)
		}
		base := model.Now()
		for i, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
			reg := model.EventRegistration{
				ID: objectid.New(), EventID: ev.ID, FirstName: "Reg", LastName: "User",
				Email: email, Status: model.StatusRegistered, RegisteredAt: base.Add(time.Duration(i) * time.Minute),
			}
			if err := regs.Create(ctx, reg); err != nil {
				t.Fatalf("seed registration: %v", err)
			}
		}
		ok, err := regs.ExistsByEmail(ctx, ev.ID, "b@example.com")
		if err != nil || !ok {
			t.Fatalf("expected registration to exist, ok=%v err=%v", ok, err)
		}
		page, err := regs.ListByEvent(ctx, ev.ID, repository.NewPage(1, repository.Bounded(2)))
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(page) != 2 || page[0].Email != "c@example.com" {
			t.Fatalf("unexpected page: %+v", page)
		}
		n, err := regs.DeleteByEvent(ctx, ev.ID)
		if err != nil || n != 3 {
			t.Fatalf("expected 3 deleted, got %d err=%v", n, err)
		}
	})

	t.Run("duplicate_email_per_event", func(t *testing.T) {
		events, regs, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		ev := NewEvent("Dup", time.Hour)
		if err := events.Create(ctx, ev); err != nil {
			t.Fatalf("seed event: %v", err)
		}
		reg := model.EventRegistration{ID: objectid.New(), EventID: ev.ID, FirstName: "A", LastName: "B", Email: "dup@example.com", Status: model.StatusRegistered, RegisteredAt: model.Now()}
		if err := regs.Create(ctx, reg); err != nil {
			t.Fatalf("seed: %v", err)
		}
		reg.ID = objectid.New()
		if err := regs.Create(ctx, reg); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})

	t.Run("unknown_event_is_conflict", func(t *testing.T) {
		_, regs, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		reg := model.EventRegistration{ID: objectid.New(), EventID: objectid.New(), FirstName: "A", LastName: "B", Email: "x@example.com", Status: model.StatusRegistered, RegisteredAt: model.Now()}
		if err := regs.Create(context.Background(), reg); !errors.Is(err, repository.ErrConflict) {
			t.Fatalf("expected ErrConflict, got %v", err)
		}
	})
}

func RunCommunityRegistrationContract(t *testing.T, makeRepo CommunityFactory) {
	t.Helper()

	t.Run("create_list_by_status_duplicate", func(t *testing.T) {
		repo, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		reg := model.CommunityRegistration{
			ID: objectid.New(), FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com",
			Department: "Computing", Level: "400", Campus: "North",
			Reason: "I want to meet other builders in the community.", Status: model.StatusRegistered, CreatedAt: model.Now(),
		}
		if err := repo.Create(ctx, reg); err != nil {
			t.Fatalf("create: %v", err)
		}
		exists, err := repo.ExistsByEmail(ctx, "grace@example.com")
		if err != nil || !exists {
			t.Fatalf("expected email to exist, ok=%v err=%v", exists, err)
		}
		members, err := repo.ListByStatus(ctx, model.StatusRegistered)
		if err != nil || len(members) != 1 {
			t.Fatalf("expected one member, got %d err=%v", len(members), err)
		}
		all, err := repo.List(ctx, repository.NewPage(1, repository.Unbounded()))
		if err != nil || len(all) != 1 {
			t.Fatalf("expected one row, got %d err=%v", len(all), err)
		}
		reg.ID = objectid.New()
		if err := repo.Create(ctx, reg); !errors.Is(err, repository.ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}

func RunEmailLogContract(t *testing.T, makeRepo EmailLogFactory) {
	t.Helper()

	t.Run("reminder_time_frames_and_recent", func(t *testing.T) {
		events, logs, cleanup := makeRepo(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		ev := NewEvent("Reminders", 72*time.Hour)
		if err := events.Create(ctx, ev); err != nil {
			t.Fatalf("seed event: %v", err)
		}
		tf := model.TimeFrameThreeDay
		for i, l := range []model.EmailLog{
			{EmailType: model.EmailTypeAnnouncement, Subject: "New event"},
			{EmailType: model.EmailTypeReminder, Subject: "Soon", TimeFrame: &tf},
		} {
			l.ID = objectid.New()
			l.EventID = &ev.ID
			l.Trigger = model.TriggerManual
			l.RecipientCount = 3
			l.SentAt = model.Now().Add(time.Duration(i) * time.Second)
			if err := logs.Create(ctx, l); err != nil {
				t.Fatalf("seed log: %v", err)
			}
		}
		frames, err := logs.ReminderTimeFrames(ctx, ev.ID)
		if err != nil || len(frames) != 1 || frames[0] != model.TimeFrameThreeDay {
			t.Fatalf("unexpected frames %v err=%v", frames, err)
		}
		recent, err := logs.ListRecent(ctx, repository.Bounded(1))
		if err != nil || len(recent) != 1 || recent[0].EmailType != model.EmailTypeReminder {
			t.Fatalf("unexpected recent %+v err=%v", recent, err)
		}
		byEvent, err := logs.ListByEvent(ctx, ev.ID)
		if err != nil || len(byEvent) != 2 {
			t.Fatalf("expected 2 logs, got %d err=%v", len(byEvent), err)
		}
		n, err := logs.DeleteByEvent(ctx, ev.ID)
		if err != nil || n != 2 {
			t.Fatalf("expected 2 deleted, got %d err=%v", n, err)
		}
	})
}

func RunCounterContract(t *testing.T, makeCounter CounterFactory) {
	t.Helper()

	t.Run("count_all_and_filtered", func(t *testing.T) {
		counter, events, table, cleanup := makeCounter(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		for i, offset := range []time.Duration{-48 * time.Hour, 24 * time.Hour, 48 * time.Hour} {
			if err := events.Create(ctx, NewEvent("C-"+string(rune('A'+i)), offset)); err != nil {
				t.Fatalf("seed: %v", err)
			}
		}
		all, err := counter.Count(ctx, table, nil)
		if err != nil || all != 3 {
			t.Fatalf("expected 3, got %d err=%v", all, err)
		}
		upcoming, err := counter.Count(ctx, table, goqu.C("date").Gte(time.Now()))
		if err != nil || upcoming != 2 {
			t.Fatalf("expected 2 upcoming, got %d err=%v", upcoming, err)
		}
		none, err := counter.Count(ctx, table, goqu.C("title").Eq("missing"))
		if err != nil || none != 0 {
			t.Fatalf("expected 0, got %d err=%v", none, err)
		}
	})
}

func RunTxManagerContract(t *testing.T, makeTx TxFactory) {
	t.Helper()

	t.Run("commit_on_nil_error", func(t *testing.T) {
		tx, events, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		ev := NewEvent("TxCommit", time.Hour)
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			return events.Create(ctx, ev)
		})
		if err != nil {
			t.Fatalf("WithinTx: %v", err)
		}
		if _, err := events.GetByID(ctx, ev.ID); err != nil {
			t.Fatalf("expected committed row visible, got err=%v", err)
		}
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		tx, events, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		ev := NewEvent("TxRollback", time.Hour)
		errMarker := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := events.Create(ctx, ev); err != nil {
				return err
			}
			return errMarker
		})
		if !errors.Is(err, errMarker) {
			t.Fatalf("expected marker error, got %v", err)
		}
		if _, err := events.GetByID(ctx, ev.ID); !errors.Is(err, repository.ErrNotFound) {
			t.Fatalf("expected ErrNotFound after rollback, got %v", err)
		}
	})

	t.Run("lock_by_id_blocks_second_tx", func(t *testing.T) {
		tx, events, cleanup := makeTx(t)
		t.Cleanup(cleanup)
		ctx := context.Background()
		ev := NewEvent("TxLock", time.Hour)
		if err := events.Create(ctx, ev); err != nil {
			t.Fatalf("seed: %v", err)
		}

		locked := make(chan struct{})
		release := make(chan struct{})
		first := make(chan error, 1)
		go func() {
			first <- tx.WithinTx(ctx, func(ctx context.Context) error {
				if _, err := events.LockByID(ctx, ev.ID); err != nil {
					return err
				}
				close(locked)
				<-release
				return nil
			})
		}()
		<-locked

		second := make(chan error, 1)
		go func() {
			second <- tx.WithinTx(ctx, func(ctx context.Context) error {
				_, err := events.LockByID(ctx, ev.ID)
				return err
			})
		}()
		select {
		case err := <-second:
			t.Fatalf("second lock acquired while first tx held it (err=%v)", err)
		case <-time.After(200 * time.Millisecond):
		}

		close(release)
		if err := <-first; err != nil {
			t.Fatalf("first tx: %v", err)
		}
		if err := <-second; err != nil {
			t.Fatalf("second tx: %v", err)
		}
	})
}

func RunPingerContract(t *testing.T, makePinger PingerFactory) {
	t.Helper()
	t.Run("ping_ok", func(t *testing.T) {
		p, cleanup := makePinger(t)
		t.Cleanup(cleanup)
		if err := p.Ping(context.Background()); err != nil {
			t.Fatalf("expected ping ok, got %v", err)
		}
	})
}
