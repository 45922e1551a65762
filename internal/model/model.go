// Package model contains domain entities used across layers.
// I keep it lean and focused on data shapes without behavior; the transport
// projections live in the serialize package.
package model

import (
	"time"

	"github.com/maxviazov/community-hub-service/internal/objectid"
)

// Registration and account statuses.
const (
	StatusRegistered = "registered"
	RoleAdmin        = "admin"
)

// Speaker is stored inline on an event as JSONB.
type Speaker struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Bio   string `json:"bio,omitempty"`
	Photo string `json:"photo,omitempty"`
}

// Event is a community meetup or workshop.
type Event struct {
	ID                 objectid.ID `db:"id"`
	Title              string      `db:"title"`
	Description        string      `db:"description"`
	Date               time.Time   `db:"date"`
	Location           string      `db:"location"`
	CoverImage         string      `db:"cover_image"`
	Duration           string      `db:"duration"`
	Speakers           []Speaker   `db:"speakers"`
	MaxAttendees       *int        `db:"max_attendees"`
	AnnouncementSent   bool        `db:"announcement_sent"`
	AnnouncementSentAt *time.Time  `db:"announcement_sent_at"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

// EventPatch carries a partial event update; nil fields are left untouched.
// A MaxAttendees value of 0 clears the cap.
type EventPatch struct {
	Title        *string
	Description  *string
	Date         *time.Time
	Location     *string
	CoverImage   *string
	Duration     *string
	Speakers     *[]Speaker
	MaxAttendees *int
	UpdatedAt    time.Time
}

// EventRegistration is an attendee signed up for one event.
type EventRegistration struct {
	ID           objectid.ID `db:"id"`
	EventID      objectid.ID `db:"event_id"`
	FirstName    string      `db:"first_name"`
	LastName     string      `db:"last_name"`
	Email        string      `db:"email"`
	Status       string      `db:"status"`
	RegisteredAt time.Time   `db:"registered_at"`
}

// CommunityRegistration is a member joining the community itself.
type CommunityRegistration struct {
	ID             objectid.ID `db:"id"`
	FirstName      string      `db:"first_name"`
	LastName       string      `db:"last_name"`
	Email          string      `db:"email"`
	Department     string      `db:"department"`
	Level          string      `db:"level"`
	Campus         string      `db:"campus"`
	TechSkills     string      `db:"tech_skills"`
	AspiringSkills string      `db:"aspiring_skills"`
	Reason         string      `db:"reason"`
	Status         string      `db:"status"`
	CreatedAt      time.Time   `db:"created_at"`
}

// SocialLinks is stored inline on a core team member as JSONB.
type SocialLinks struct {
	GitHub   string `json:"github,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

// CoreTeamMember is shown on the public biography page.
type CoreTeamMember struct {
	ID           objectid.ID `db:"id"`
	Name         string      `db:"name"`
	Role         string      `db:"role"`
	About        string      `db:"about"`
	ProfileImage string      `db:"profile_image"`
	SocialLinks  SocialLinks `db:"social_links"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

// CoreTeamPatch carries a partial member update; nil fields are left untouched.
type CoreTeamPatch struct {
	Name         *string
	Role         *string
	About        *string
	ProfileImage *string
	SocialLinks  *SocialLinks
	UpdatedAt    time.Time
}

// Email log types, triggers and reminder time frames.
const (
	EmailTypeAnnouncement    = "announcement"
	EmailTypeReminder        = "reminder"
	EmailTypeCustomBroadcast = "custom-broadcast"
	EmailTypeConfirmation    = "confirmation"

	TriggerManual = "manual"
	TriggerAuto   = "auto"
)

// TimeFrame names when a reminder is sent relative to the event.
type TimeFrame string

const (
	TimeFrameOneWeek  TimeFrame = "1-week"
	TimeFrameThreeDay TimeFrame = "3-days"
	TimeFrameTomorrow TimeFrame = "tomorrow"
	TimeFrameToday    TimeFrame = "today"
)

// TimeFrames lists every reminder slot in display order.
var TimeFrames = []TimeFrame{TimeFrameOneWeek, TimeFrameThreeDay, TimeFrameTomorrow, TimeFrameToday}

// Valid reports whether tf is one of the known reminder slots.
func (tf TimeFrame) Valid() bool {
	for _, known := range TimeFrames {
		if tf == known {
			return true
		}
	}
	return false
}

// EmailLog is the audit record of a provider send.
type EmailLog struct {
	ID                objectid.ID  `db:"id"`
	EventID           *objectid.ID `db:"event_id"`
	EmailType         string       `db:"email_type"`
	Trigger           string       `db:"trigger"`
	RecipientCount    int          `db:"recipient_count"`
	Subject           string       `db:"subject"`
	ProviderID        *string      `db:"provider_id"`
	TimeFrame         *TimeFrame   `db:"time_frame"`
	HTMLContentLength *int         `db:"html_content_length"`
	SentAt            time.Time    `db:"sent_at"`
}

// Activity actions recorded for the dashboard feed.
const (
	ActionEventCreated          = "event_created"
	ActionEventUpdated          = "event_updated"
	ActionEventDeleted          = "event_deleted"
	ActionRegistration          = "registration"
	ActionAnnouncementSent      = "event_announcement_sent"
	ActionEventReminderSent     = "event_reminder_sent"
	ActionCustomBroadcastSent   = "custom_broadcast_sent"
	ActionAdminRegistered       = "admin_registered"
	ActionCoreTeamMemberCreated = "core_team_member_created"
	ActionCoreTeamMemberUpdated = "core_team_member_updated"
	ActionCoreTeamMemberDeleted = "core_team_member_deleted"
)

// Activity is one entry of the admin activity feed.
type Activity struct {
	ID        objectid.ID  `db:"id"`
	Action    string       `db:"action"`
	EventID   *objectid.ID `db:"event_id"`
	MemberID  *objectid.ID `db:"member_id"`
	Details   string       `db:"details"`
	CreatedAt time.Time    `db:"created_at"`
}

// AdminUser can sign in to the dashboard.
type AdminUser struct {
	ID           objectid.ID `db:"id"`
	Email        string      `db:"email"`
	PasswordHash string      `db:"password_hash"`
	Role         string      `db:"role"`
	IsActive     bool        `db:"is_active"`
	LastLogin    *time.Time  `db:"last_login"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

// DashboardStats is the summary block on the admin home page.
// It is computed at read time and never persisted.
type DashboardStats struct {
	TotalEvents         int64 `json:"totalEvents"`
	UpcomingEvents      int64 `json:"upcomingEvents"`
	TotalRegistrations  int64 `json:"totalRegistrations"`
	EmailsSentLast7Days int64 `json:"emailsSentLast7Days"`
}

// Now returns the current time in the precision every stored timestamp uses.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}
