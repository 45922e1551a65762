// Package service holds business logic orchestration across repositories and handlers.
// Kept intentionally lean: only use-case coordination, validation and domain error shaping.
// Every read returns transport records from the serialize package so the handlers never
// touch storage types.
package service

import (
	"context"
	"errors"
	"io"

	"github.com/maxviazov/community-hub-service/internal/auth"
	"github.com/maxviazov/community-hub-service/internal/model"
	"github.com/maxviazov/community-hub-service/internal/repository"
	"github.com/maxviazov/community-hub-service/internal/serialize"
)

// ErrInvalidInput is the marker error for aggregated validation failures (maps to HTTP 400).
// Field-level details are retrieved via FieldErrors(err).
var ErrInvalidInput = errors.New("invalid input")

// ErrUnauthorized means the caller could not be authenticated (maps to HTTP 401).
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden means the caller is authenticated but lacks the role (maps to HTTP 403).
var ErrForbidden = errors.New("forbidden")

// FieldError describes a single invalid field in a client request.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// invalidInputError aggregates multiple FieldError instances and unwraps to ErrInvalidInput.
type invalidInputError struct {
	fields []FieldError
}

func (e *invalidInputError) Error() string        { return ErrInvalidInput.Error() }
func (e *invalidInputError) Unwrap() error        { return ErrInvalidInput }
func (e *invalidInputError) Fields() []FieldError { return e.fields }

// newInvalidInput builds an aggregated validation error if any field errors are present.
func newInvalidInput(fe []FieldError) error {
	if len(fe) == 0 { // protective case
		return nil
	}
	return &invalidInputError{fields: fe}
}

// FieldErrors extracts field errors from an aggregated validation error.
func FieldErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var v interface{ Fields() []FieldError }
	if errors.As(err, &v) && errors.Is(err, ErrInvalidInput) {
		return v.Fields()
	}
	return nil
}

// Conflict codes clients can branch on.
const (
	CodeEmailExists         = "EMAIL_EXISTS"
	CodeReminderAlreadySent = "REMINDER_ALREADY_SENT"
	CodeNoRecipients        = "NO_RECIPIENTS"
	CodeEventFull           = "EVENT_FULL"
)

// ConflictError is a business rule rejection (maps to HTTP 409). It unwraps to
// repository.ErrConflict so callers that only care about the class can use errors.Is.
type ConflictError struct {
	Code    string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
func (e *ConflictError) Unwrap() error { return repository.ErrConflict }

func conflict(code, msg string) error { return &ConflictError{Code: code, Message: msg} }

// DashboardService serves the admin home page.
type DashboardService interface {
	Stats(ctx context.Context) (model.DashboardStats, error)
	ActivityFeed(ctx context.Context, page, limit int) (repository.PageResult[serialize.Activity], error)
}

// EventService defines event use cases.
type EventService interface {
	List(ctx context.Context, page, limit int) (repository.PageResult[serialize.EventSummary], error)
	Get(ctx context.Context, id string) (serialize.EventDetail, error)
	Create(ctx context.Context, in EventInput) (serialize.Event, error)
	Update(ctx context.Context, id string, in EventPatchInput) (serialize.Event, error)
	Delete(ctx context.Context, id string) error
}

// RegistrationService defines community and event sign-up use cases.
type RegistrationService interface {
	SubmitCommunity(ctx context.Context, in CommunityRegistrationInput) (serialize.CommunityRegistration, error)
	SubmitEvent(ctx context.Context, in EventRegistrationInput) (serialize.EventRegistration, error)
	ListCommunity(ctx context.Context, page, limit int) (repository.PageResult[serialize.CommunityRegistration], error)
	ListForEvent(ctx context.Context, eventID string, page, limit int) (repository.PageResult[serialize.EventRegistration], error)
}

// CoreTeamService defines core team biography use cases.
type CoreTeamService interface {
	List(ctx context.Context) (repository.PageResult[serialize.CoreTeamMember], error)
	Get(ctx context.Context, id string) (serialize.CoreTeamMember, error)
	Create(ctx context.Context, in CoreTeamInput) (serialize.CoreTeamMember, error)
	Update(ctx context.Context, id string, in CoreTeamPatchInput) (serialize.CoreTeamMember, error)
	Delete(ctx context.Context, id string) error
}

// EmailService defines outbound email use cases and their audit views.
type EmailService interface {
	SendAnnouncement(ctx context.Context, eventID string) (SendReport, error)
	SendReminder(ctx context.Context, eventID, timeFrame string) (SendReport, error)
	SendBroadcast(ctx context.Context, in BroadcastInput) (SendReport, error)
	History(ctx context.Context, limit int) ([]serialize.EmailLog, error)
	ReminderStatus(ctx context.Context, eventID string) (map[model.TimeFrame]bool, error)
	AnnouncementSent(ctx context.Context, eventID string) (bool, error)
}

// AuthService defines admin account use cases.
type AuthService interface {
	Login(ctx context.Context, in LoginInput) (Session, error)
	RegisterAdmin(ctx context.Context, in AdminSignupInput) (serialize.Admin, error)
	Authenticate(token string) (auth.Claims, error)
}

// UploadService stores event images.
type UploadService interface {
	UploadImage(ctx context.Context, filename, contentType string, size int64, body io.Reader) (string, error)
}
