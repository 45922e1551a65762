package service_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
	"github.com/maxviazov/community-hub-service/internal/service"
)

func validEventInput() service.EventInput {
	return service.EventInput{
		Title:       "  Go Night  ",
		Description: "Talks, pizza and a live coding session",
		Date:        "2030-05-01T18:00:00.250+02:00",
		Location:    "Hall B",
		CoverImage:  "https://img.example.com/go.png",
		Duration:    "3 hours",
		Speakers:    []service.SpeakerInput{{Name: "Ada", Role: "Host"}},
	}
}

func TestEventService_List_EnrichesCountsInOrder(t *testing.T) {
	h := newHarness()
	base := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	older := seedEvent(h.store, "older", base)
	newer := seedEvent(h.store, "newer", base.Add(48*time.Hour))
	seedAttendee(h.store, older.ID, "a@example.com")
	seedAttendee(h.store, older.ID, "b@example.com")
	seedAttendee(h.store, older.ID, "c@example.com")

	res, err := h.eventService().List(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, newer.ID.Hex(), res.Items[0].ID)
	assert.EqualValues(t, 0, res.Items[0].RegistrationCount)
	assert.Equal(t, older.ID.Hex(), res.Items[1].ID)
	assert.EqualValues(t, 3, res.Items[1].RegistrationCount)
	assert.EqualValues(t, 2, res.Total)
	assert.Equal(t, 1, res.TotalPages)
	assert.Equal(t, 1, res.CurrentPage)
}

func TestEventService_List_PastLastPage(t *testing.T) {
	h := newHarness()
	for i := 0; i < 3; i++ {
		seedEvent(h.store, "e", time.Now().Add(time.Duration(i)*time.Hour))
	}
	res, err := h.eventService().List(context.Background(), 5, 2)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.NotNil(t, res.Items)
	assert.EqualValues(t, 3, res.Total)
	assert.Equal(t, 2, res.TotalPages)
	assert.Equal(t, 5, res.CurrentPage)
}

func TestEventService_List_RejectsBadPaging(t *testing.T) {
	h := newHarness()
	svc := h.eventService()
	cases := []struct {
		name        string
		page, limit int
		field       string
	}{
		{"page zero", 0, 10, "page"},
		{"negative limit", 1, -1, "limit"},
		{"limit too large", 1, 101, "limit"},
		{"offset overflows", math.MaxInt/50, 100, "page"},
		{"max int page", math.MaxInt, 2, "page"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.List(context.Background(), tc.page, tc.limit)
			require.ErrorIs(t, err, service.ErrInvalidInput)
			assert.Contains(t, fieldNames(err), tc.field)
		})
	}
	assert.Zero(t, h.store.countCalls)
}

func TestEventService_List_LargestAddressablePage(t *testing.T) {
	h := newHarness()
	seedEvent(h.store, "only", time.Now())
	svc := h.eventService()

	res, err := svc.List(context.Background(), math.MaxInt/100, 100)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, math.MaxInt/100, res.CurrentPage)

	res, err = svc.List(context.Background(), math.MaxInt, 0)
	require.NoError(t, err)
	assert.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.CurrentPage)
}

func TestEventService_List_CountFailureFailsWholeRead(t *testing.T) {
	h := newHarness()
	seedEvent(h.store, "e", time.Now())
	h.store.countErr = errDB

	_, err := h.eventService().List(context.Background(), 1, 10)
	require.ErrorIs(t, err, errDB)
}

func TestEventService_Get(t *testing.T) {
	h := newHarness()
	svc := h.eventService()
	ev := seedEvent(h.store, "Go Night", time.Now())
	seedAttendee(h.store, ev.ID, "a@example.com")
	seedAttendee(h.store, ev.ID, "b@example.com")
	tf := model.TimeFrameTomorrow
	h.store.logs = append(h.store.logs, model.EmailLog{
		ID: objectid.New(), EventID: &ev.ID, EmailType: model.EmailTypeReminder, TimeFrame: &tf, SentAt: model.Now(),
	})

	t.Run("malformed id", func(t *testing.T) {
		_, err := svc.Get(context.Background(), "not-an-id")
		require.ErrorIs(t, err, service.ErrInvalidInput)
		assert.Equal(t, []string{"id"}, fieldNames(err))
	})
	t.Run("not found", func(t *testing.T) {
		_, err := svc.Get(context.Background(), objectid.New().Hex())
		require.ErrorIs(t, err, repository.ErrNotFound)
	})
	t.Run("detail", func(t *testing.T) {
		out, err := svc.Get(context.Background(), ev.ID.Hex())
		require.NoError(t, err)
		assert.Equal(t, "Go Night", out.Event.Title)
		assert.Len(t, out.Registrations, 2)
		assert.EqualValues(t, 2, out.RegistrationCount)
		require.Len(t, out.Reminders, 1)
		assert.Equal(t, "tomorrow", out.Reminders[0].TimeFrame)
	})
}

func TestEventService_Create(t *testing.T) {
	h := newHarness()
	out, err := h.eventService().Create(context.Background(), validEventInput())
	require.NoError(t, err)

	assert.Equal(t, "Go Night", out.Title)
	assert.Equal(t, "2030-05-01T16:00:00.250Z", out.Date)
	assert.Nil(t, out.MaxAttendees)
	assert.False(t, out.AnnouncementSent)
	require.True(t, objectid.IsValid(out.ID))

	require.Len(t, h.store.activities, 1)
	assert.Equal(t, model.ActionEventCreated, h.store.activities[0].Action)
	assert.Equal(t, out.ID, h.store.activities[0].EventID.Hex())
}

func TestEventService_Create_Validation(t *testing.T) {
	svc := newHarness().eventService()
	in := validEventInput()
	in.Title = "Go"
	in.Date = "next tuesday"
	in.CoverImage = "not a url"
	bad := -3
	in.MaxAttendees = &bad
	in.Speakers = []service.SpeakerInput{{Name: "A", Role: "Host", Photo: "nope"}}

	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, service.ErrInvalidInput)
	assert.ElementsMatch(t,
		[]string{"title", "date", "coverImage", "maxAttendees", "speakers[0].name", "speakers[0].photo"},
		fieldNames(err))
}

func TestEventService_Create_ActivityFailureDoesNotFail(t *testing.T) {
	h := newHarness()
	h.store.activityErr = errDB
	_, err := h.eventService().Create(context.Background(), validEventInput())
	require.NoError(t, err)
	assert.Len(t, h.store.events, 1)
}

func TestEventService_Update_ClearsCap(t *testing.T) {
	h := newHarness()
	ev := seedEvent(h.store, "Go Night", time.Now())
	limit := 50
	ev.MaxAttendees = &limit
	h.store.events[ev.ID] = ev

	zero := 0
	title := "  Go Night II "
	out, err := h.eventService().Update(context.Background(), ev.ID.Hex(), service.EventPatchInput{Title: &title, MaxAttendees: &zero})
	require.NoError(t, err)
	assert.Equal(t, "Go Night II", out.Title)
	assert.Nil(t, out.MaxAttendees)
	assert.Equal(t, model.ActionEventUpdated, h.store.activities[0].Action)
}

func TestEventService_Update_NotFound(t *testing.T) {
	title := "Something"
	_, err := newHarness().eventService().Update(context.Background(), objectid.New().Hex(), service.EventPatchInput{Title: &title})
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestEventService_Delete_CascadesInOneUnit(t *testing.T) {
	h := newHarness()
	ev := seedEvent(h.store, "Go Night", time.Now())
	other := seedEvent(h.store, "Other", time.Now())
	seedAttendee(h.store, ev.ID, "a@example.com")
	seedAttendee(h.store, other.ID, "b@example.com")
	h.store.logs = append(h.store.logs, model.EmailLog{ID: objectid.New(), EventID: &ev.ID, EmailType: model.EmailTypeAnnouncement})

	require.NoError(t, h.eventService().Delete(context.Background(), ev.ID.Hex()))
	assert.NotContains(t, h.store.events, ev.ID)
	assert.Contains(t, h.store.events, other.ID)
	require.Len(t, h.store.attendees, 1)
	assert.Equal(t, other.ID, h.store.attendees[0].EventID)
	assert.Empty(t, h.store.logs)
	require.Len(t, h.store.activities, 1)
	assert.Equal(t, model.ActionEventDeleted, h.store.activities[0].Action)
}

func TestEventService_Delete_RollsBackOnFailure(t *testing.T) {
	h := newHarness()
	ev := seedEvent(h.store, "Go Night", time.Now())
	seedAttendee(h.store, ev.ID, "a@example.com")
	h.store.activityErr = errDB

	err := h.eventService().Delete(context.Background(), ev.ID.Hex())
	require.True(t, errors.Is(err, errDB))
	assert.Contains(t, h.store.events, ev.ID)
	assert.Len(t, h.store.attendees, 1)
}
