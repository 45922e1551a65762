package repository

import (
	"context"
	"time"

	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
)

// Pinger represents a minimal readiness probe capability.
// I use it to decouple health checks from storage implementation details.
type Pinger interface {
	Ping(ctx context.Context) error
}

// TxFunc is the unit of work executed within a transaction boundary.
// I pass context through so nested calls can honor cancellations and deadlines.
type TxFunc func(ctx context.Context) error

// TxManager abstracts transactional execution for repositories that support it.
// I prefer a single entry point to keep transaction boundaries explicit and testable.
type TxManager interface {
	WithinTx(ctx context.Context, fn TxFunc) error
}

// EventRepository declares persistence operations for events.
// List only fetches the window; totals and per-event counts go through the aggregator.
type EventRepository interface {
	Create(ctx context.Context, e model.Event) error
	GetByID(ctx context.Context, id objectid.ID) (model.Event, error)
	// LockByID reads the event and holds a row lock until the surrounding
	// transaction ends; outside a transaction it behaves like GetByID.
	LockByID(ctx context.Context, id objectid.ID) (model.Event, error)
	List(ctx context.Context, p Page) ([]model.Event, error)
	Update(ctx context.Context, id objectid.ID, patch model.EventPatch) error
	Delete(ctx context.Context, id objectid.ID) error
	MarkAnnouncementSent(ctx context.Context, id objectid.ID, at time.Time) error
}

// EventRegistrationRepository declares persistence operations for event attendees.
type EventRegistrationRepository interface {
	Create(ctx context.Context, r model.EventRegistration) error
	ExistsByEmail(ctx context.Context, eventID objectid.ID, email string) (bool, error)
	ListByEvent(ctx context.Context, eventID objectid.ID, p Page) ([]model.EventRegistration, error)
	DeleteByEvent(ctx context.Context, eventID objectid.ID) (int64, error)
}

// CommunityRegistrationRepository declares persistence operations for community members.
type CommunityRegistrationRepository interface {
	Create(ctx context.Context, r model.CommunityRegistration) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, p Page) ([]model.CommunityRegistration, error)
	ListByStatus(ctx context.Context, status string) ([]model.CommunityRegistration, error)
}

// CoreTeamRepository declares persistence operations for core team members.
type CoreTeamRepository interface {
	Create(ctx context.Context, m model.CoreTeamMember) error
	GetByID(ctx context.Context, id objectid.ID) (model.CoreTeamMember, error)
	ListAll(ctx context.Context) ([]model.CoreTeamMember, error)
	Update(ctx context.Context, id objectid.ID, patch model.CoreTeamPatch) error
	Delete(ctx context.Context, id objectid.ID) error
}

// EmailLogRepository declares persistence operations for the email audit log.
type EmailLogRepository interface {
	Create(ctx context.Context, l model.EmailLog) error
	ListByEvent(ctx context.Context, eventID objectid.ID) ([]model.EmailLog, error)
	ListRecent(ctx context.Context, limit Limit) ([]model.EmailLog, error)
	ReminderTimeFrames(ctx context.Context, eventID objectid.ID) ([]model.TimeFrame, error)
	DeleteByEvent(ctx context.Context, eventID objectid.ID) (int64, error)
}

// ActivityRepository declares persistence operations for the dashboard feed.
type ActivityRepository interface {
	Create(ctx context.Context, a model.Activity) error
	List(ctx context.Context, p Page) ([]model.Activity, error)
}

// AdminRepository declares persistence operations for dashboard accounts.
type AdminRepository interface {
	Create(ctx context.Context, u model.AdminUser) error
	GetByEmail(ctx context.Context, email string) (model.AdminUser, error)
	TouchLastLogin(ctx context.Context, id objectid.ID, at time.Time) error
}
