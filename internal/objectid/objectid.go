// Package objectid is the 12-byte document identifier used by every
// collection. Generation and hex parsing come from the BSON ObjectID; this
// package adds the CHAR(24) column mapping and the JSON text form.
package objectid

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ErrInvalid is returned when a string is not a 24-hex-character identifier.
var ErrInvalid = errors.New("invalid object id")

// ID is a document identifier. The zero value is Nil.
type ID bson.ObjectID

// Nil is the zero identifier.
var Nil = ID(bson.NilObjectID)

// New returns a fresh identifier stamped with the current time.
func New() ID { return ID(bson.NewObjectID()) }

// NewWithTime returns a fresh identifier stamped with t.
func NewWithTime(t time.Time) ID { return ID(bson.NewObjectIDFromTimestamp(t)) }

// Parse decodes the canonical hex form. Anything that is not exactly 24 hex
// characters is rejected with ErrInvalid.
func Parse(s string) (ID, error) {
	oid, err := bson.ObjectIDFromHex(s)
	if err != nil {
		return Nil, fmt.Errorf("%w: %q", ErrInvalid, s)
	}
	return ID(oid), nil
}

// IsValid reports whether s is a well-formed identifier.
func IsValid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Hex returns the canonical 24-character lowercase form.
func (id ID) Hex() string { return bson.ObjectID(id).Hex() }

func (id ID) String() string { return id.Hex() }

// IsZero reports whether id is Nil.
func (id ID) IsZero() bool { return bson.ObjectID(id).IsZero() }

// Timestamp returns the creation second encoded in the identifier, in UTC.
func (id ID) Timestamp() time.Time { return bson.ObjectID(id).Timestamp().UTC() }

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) { return []byte(id.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Value stores the identifier as its hex form (CHAR(24) columns).
func (id ID) Value() (driver.Value, error) { return id.Hex(), nil }

// Scan reads an identifier back from a CHAR(24) column.
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return id.UnmarshalText([]byte(v))
	case []byte:
		return id.UnmarshalText(v)
	case nil:
		return errors.New("objectid: cannot scan NULL into ID")
	default:
		return fmt.Errorf("objectid: cannot scan %T", src)
	}
}
