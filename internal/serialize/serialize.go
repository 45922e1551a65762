// Package serialize projects storage records into transport records: identifiers become
// 24-hex strings, timestamps become UTC ISO-8601 strings with millisecond precision and
// absent optional fields are omitted. Every function here is pure.
package serialize

import (
	"time"

	"github.com/maxviazov/community-hub-service/internal/aggregate"
	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/objectid"
)

// TimeLayout is the wire format of every timestamp.
const TimeLayout = "2006-01-02T15:04:05.000Z"

type Speaker struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Bio   string `json:"bio,omitempty"`
	Photo string `json:"photo,omitempty"`
}

type Event struct {
	ID                 string    `json:"_id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Date               string    `json:"date"`
	Location           string    `json:"location"`
	CoverImage         string    `json:"coverImage"`
	Duration           string    `json:"duration,omitempty"`
	Speakers           []Speaker `json:"speakers"`
	MaxAttendees       *int      `json:"maxAttendees,omitempty"`
	CreatedAt          string    `json:"createdAt"`
	UpdatedAt          string    `json:"updatedAt"`
	AnnouncementSent   bool      `json:"announcementSent"`
	AnnouncementSentAt string    `json:"announcementSentAt,omitempty"`
}

// EventSummary is a listed event with its registration count attached.
type EventSummary struct {
	Event
	RegistrationCount int64 `json:"registrationCount"`
}

type EventDetail struct {
	Event             Event               `json:"event"`
	Registrations     []EventRegistration `json:"registrations"`
	Reminders         []EmailLog          `json:"reminders"`
	RegistrationCount int64               `json:"registrationCount"`
}

type EventRegistration struct {
	ID           string `json:"_id"`
	EventID      string `json:"eventId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	RegisteredAt string `json:"registeredAt"`
	Status       string `json:"status"`
}

type CommunityRegistration struct {
	ID             string `json:"_id"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Department     string `json:"department"`
	Level          string `json:"level"`
	Campus         string `json:"campus,omitempty"`
	TechSkills     string `json:"techSkills,omitempty"`
	AspiringSkills string `json:"aspiringSkills,omitempty"`
	Reason         string `json:"reason,omitempty"`
	CreatedAt      string `json:"createdAt"`
	Status         string `json:"status"`
}

type SocialLinks struct {
	GitHub   string `json:"github,omitempty"`
	Twitter  string `json:"twitter,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
}

type CoreTeamMember struct {
	ID           string       `json:"_id"`
	Name         string       `json:"name"`
	Role         string       `json:"role"`
	About        string       `json:"about"`
	ProfileImage string       `json:"profileImage"`
	SocialLinks  *SocialLinks `json:"socialLinks,omitempty"`
	CreatedAt    string       `json:"createdAt"`
	UpdatedAt    string       `json:"updatedAt"`
}

type EmailLog struct {
	ID                string `json:"_id"`
	EventID           string `json:"eventId,omitempty"`
	EmailType         string `json:"emailType"`
	Trigger           string `json:"trigger"`
	RecipientCount    int    `json:"recipientCount"`
	SentAt            string `json:"sentAt"`
	Subject           string `json:"subject"`
	ResendID          string `json:"resendId,omitempty"`
	TimeFrame         string `json:"timeFrame,omitempty"`
	HTMLContentLength *int   `json:"htmlContentLength,omitempty"`
}

type Activity struct {
	ID        string `json:"_id"`
	Action    string `json:"action"`
	EventID   string `json:"eventId,omitempty"`
	MemberID  string `json:"memberId,omitempty"`
	Details   string `json:"details"`
	CreatedAt string `json:"createdAt"`
}

// Admin is the public view of an account; the password hash never leaves the service.
type Admin struct {
	ID        string `json:"_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsActive  bool   `json:"isActive"`
	LastLogin string `json:"lastLogin,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// Timestamp renders t in UTC at millisecond precision.
func Timestamp(t time.Time) string {
	return t.UTC().Truncate(time.Millisecond).Format(TimeLayout)
}

// OptionalTimestamp renders t, or "" (omitted on the wire) when t is nil.
func OptionalTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Timestamp(*t)
}

// OptionalID renders id, or "" when id is nil.
func OptionalID(id *objectid.ID) string {
	if id == nil {
		return ""
	}
	return id.Hex()
}

func FromEvent(e model.Event) Event {
	speakers := make([]Speaker, len(e.Speakers))
	for i, s := range e.Speakers {
		speakers[i] = Speaker(s)
	}
	var maxAttendees *int
	if e.MaxAttendees != nil {
		n := *e.MaxAttendees
		maxAttendees = &n
	}
	return Event{
		ID:                 e.ID.Hex(),
		Title:              e.Title,
		Description:        e.Description,
		Date:               Timestamp(e.Date),
		Location:           e.Location,
		CoverImage:         e.CoverImage,
		Duration:           e.Duration,
		Speakers:           speakers,
		MaxAttendees:       maxAttendees,
		CreatedAt:          Timestamp(e.CreatedAt),
		UpdatedAt:          Timestamp(e.UpdatedAt),
		AnnouncementSent:   e.AnnouncementSent,
		AnnouncementSentAt: OptionalTimestamp(e.AnnouncementSentAt),
	}
}

// FromEnrichedEvent flattens an event and its registration count.
func FromEnrichedEvent(e aggregate.Enriched[model.Event]) EventSummary {
	return EventSummary{Event: FromEvent(e.Record), RegistrationCount: e.Count}
}

func FromEventDetail(e model.Event, regs []model.EventRegistration, logs []model.EmailLog) EventDetail {
	return EventDetail{
		Event:             FromEvent(e),
		Registrations:     Slice(regs, FromEventRegistration),
		Reminders:         Slice(logs, FromEmailLog),
		RegistrationCount: int64(len(regs)),
	}
}

func FromEventRegistration(r model.EventRegistration) EventRegistration {
	return EventRegistration{
		ID:           r.ID.Hex(),
		EventID:      r.EventID.Hex(),
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		RegisteredAt: Timestamp(r.RegisteredAt),
		Status:       r.Status,
	}
}

func FromCommunityRegistration(r model.CommunityRegistration) CommunityRegistration {
	return CommunityRegistration{
		ID:             r.ID.Hex(),
		FirstName:      r.FirstName,
		LastName:       r.LastName,
		Email:          r.Email,
		Department:     r.Department,
		Level:          r.Level,
		Campus:         r.Campus,
		TechSkills:     r.TechSkills,
		AspiringSkills: r.AspiringSkills,
		Reason:         r.Reason,
		CreatedAt:      Timestamp(r.CreatedAt),
		Status:         r.Status,
	}
}

func FromCoreTeamMember(m model.CoreTeamMember) CoreTeamMember {
	out := CoreTeamMember{
		ID:           m.ID.Hex(),
		Name:         m.Name,
		Role:         m.Role,
		About:        m.About,
		ProfileImage: m.ProfileImage,
		CreatedAt:    Timestamp(m.CreatedAt),
		UpdatedAt:    Timestamp(m.UpdatedAt),
	}
	if m.SocialLinks != (model.SocialLinks{}) {
		links := SocialLinks(m.SocialLinks)
		out.SocialLinks = &links
	}
	return out
}

func FromEmailLog(l model.EmailLog) EmailLog {
	out := EmailLog{
		ID:             l.ID.Hex(),
		EventID:        OptionalID(l.EventID),
		EmailType:      l.EmailType,
		Trigger:        l.Trigger,
		RecipientCount: l.RecipientCount,
		SentAt:         Timestamp(l.SentAt),
		Subject:        l.Subject,
	}
	if l.ProviderID != nil {
		out.ResendID = *l.ProviderID
	}
	if l.TimeFrame != nil {
		out.TimeFrame = string(*l.TimeFrame)
	}
	if l.HTMLContentLength != nil {
		n := *l.HTMLContentLength
		out.HTMLContentLength = &n
	}
	return out
}

func FromActivity(a model.Activity) Activity {
	return Activity{
		ID:        a.ID.Hex(),
		Action:    a.Action,
		EventID:   OptionalID(a.EventID),
		MemberID:  OptionalID(a.MemberID),
		Details:   a.Details,
		CreatedAt: Timestamp(a.CreatedAt),
	}
}

func FromAdmin(u model.AdminUser) Admin {
	return Admin{
		ID:        u.ID.Hex(),
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		LastLogin: OptionalTimestamp(u.LastLogin),
		CreatedAt: Timestamp(u.CreatedAt),
	}
}

// Slice projects every element in order; nil input yields an empty slice.
func Slice[T, U any](in []T, fn func(T) U) []U {
	out := make([]U, len(in))
	for i, v := range in {
		out[i] = fn(v)
	}
	return out
}
