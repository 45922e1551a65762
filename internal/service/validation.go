package service

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/maxviazov/community-hub-service/internal/objectid"
	"github.com/maxviazov/community-hub-service/internal/repository"
)

// MaxPageSize caps every bounded listing.
const MaxPageSize = 100

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their wire name so clients can map errors back to inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		var upper, lower, digit bool
		for _, r := range fl.Field().String() {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			}
		}
		return upper && lower && digit
	}); err != nil {
		panic(fmt.Errorf("register password validation: %w", err))
	}
	return v
}

// validateInput runs struct tags and converts the failures into FieldErrors.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	ferrs := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		ferrs = append(ferrs, FieldError{Field: fieldPath(fe), Message: fieldMessage(fe)})
	}
	return newInvalidInput(ferrs)
}

// fieldPath drops the struct name from the namespace: "EventInput.speakers[0].name" -> "speakers[0].name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	text := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if text {
			return fmt.Sprintf("length must be at least %s", fe.Param())
		}
		return fmt.Sprintf("must be >= %s", fe.Param())
	case "max":
		if text {
			return fmt.Sprintf("length must be at most %s", fe.Param())
		}
		return fmt.Sprintf("must be <= %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be > %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url", "http_url":
		return "must be a valid URL"
	case "datetime":
		return "must be an RFC 3339 timestamp"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "password":
		return "must contain an uppercase letter, a lowercase letter and a digit"
	default:
		return "is invalid"
	}
}

// parseID validates a 24-hex identifier before any storage call is made.
func parseID(field, raw string) (objectid.ID, error) {
	id, err := objectid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return objectid.Nil, newInvalidInput([]FieldError{{Field: field, Message: "must be a 24 character hex identifier"}})
	}
	return id, nil
}

// pageOf validates transport paging parameters. A limit of 0 means every item.
func pageOf(number, limit int) (repository.Page, error) {
	var ferrs []FieldError
	switch {
	case number < 1:
		ferrs = append(ferrs, FieldError{Field: "page", Message: "must be >= 1"})
	case limit > 0 && number-1 > math.MaxInt/limit:
		// (page-1)*limit must not overflow the offset
		ferrs = append(ferrs, FieldError{Field: "page", Message: "is out of range"})
	}
	if limit < 0 || limit > MaxPageSize {
		ferrs = append(ferrs, FieldError{Field: "limit", Message: fmt.Sprintf("must be between 0 and %d", MaxPageSize)})
	}
	if err := newInvalidInput(ferrs); err != nil {
		return repository.Page{}, err
	}
	return repository.NewPage(number, repository.LimitFromQuery(limit)), nil
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
