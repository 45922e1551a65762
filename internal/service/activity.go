package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
)

// auditTrail appends entries to the dashboard activity feed.
type auditTrail struct {
	repo repository.ActivityRepository
	log  zerolog.Logger
}

func newActivity(action, details string, eventID, memberID *objectid.ID) model.Activity {
	return model.Activity{
		ID:        objectid.New(),
		Action:    action,
		EventID:   eventID,
		MemberID:  memberID,
		Details:   details,
		CreatedAt: model.Now(),
	}
}

// record writes the entry now and fails with the caller.
func (a auditTrail) record(ctx context.Context, act model.Activity) error {
	return a.repo.Create(ctx, act)
}

// note writes the entry after the main write has already succeeded; a failure is only logged.
func (a auditTrail) note(ctx context.Context, act model.Activity) {
	if err := a.repo.Create(ctx, act); err != nil {
		a.log.Warn().Err(err).Str("action", act.Action).Msg("activity not recorded")
	}
}

func idRef(id objectid.ID) *objectid.ID { return &id }
