package models

import (
	"fmt"
	"strings"
	"time"

	dErrors "emargement/pkg/domain-errors"
	keys "emargement/pkg/platform/strings"
)

// Display placeholders and synthetic key prefixes.
const (
	UnnamedContact    = "Invité sans nom"
	ImportedKeyPrefix = "QR"
	ManualKeyPrefix   = "MANU"
)

// DisplayTimeFormat is how check-in and scan times are shown to door staff.
const DisplayTimeFormat = "02/01/2006 15:04:05"

// FormatDisplayTime renders t in loc with DisplayTimeFormat.
func FormatDisplayTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DisplayTimeFormat)
}

// Guest is one registration on an event's guest list.
//
// Invariants:
//   - RegistrationID is non-empty and unique within its Event after NormalizeKey
//   - PresentAt is nil while Present is false
//   - PresentAt, once set, never changes
//
// Guest is a value: attendance changes produce a new Guest (see MarkPresent)
// so snapshots handed to readers never change underneath them.
type Guest struct {
	RegistrationID   string     `json:"registration_id"`
	Contact          string     `json:"contact"`
	Role             string     `json:"role"`
	EventName        string     `json:"event_name"`
	CreatedAt        string     `json:"created_at"`
	Manager          string     `json:"manager"`
	Email            string     `json:"email"`
	ContactCreatedAt string     `json:"contact_created_at"`
	Present          bool       `json:"present"`
	PresentAt        *time.Time `json:"present_at,omitempty"`
}

// Key returns the normalized registration id used for every comparison.
func (g Guest) Key() string {
	return keys.NormalizeKey(g.RegistrationID)
}

// MarkPresent returns a copy of g checked in at at. A guest already present
// keeps the time of the first check-in.
func (g Guest) MarkPresent(at time.Time) Guest {
	if g.Present && g.PresentAt != nil {
		return g
	}
	t := at
	g.Present = true
	g.PresentAt = &t
	return g
}

// SearchText is the normalized text free-text search runs against.
func (g Guest) SearchText() string {
	return keys.NormalizeKey(strings.Join([]string{g.RegistrationID, g.Contact, g.Email, g.Role}, " "))
}

// ImportedKey synthesizes the registration id of an imported row that has none.
func ImportedKey(now time.Time, index int) string {
	return fmt.Sprintf("%s-%d-%d", ImportedKeyPrefix, now.UnixMilli(), index)
}

// ManualKey synthesizes the registration id of a guest added at the door.
func ManualKey(now time.Time) string {
	return fmt.Sprintf("%s-%d", ManualKeyPrefix, now.UnixMilli())
}

// NewManualGuest builds an absent guest from a first and last name.
func NewManualGuest(registrationID, firstName, lastName string) (Guest, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" {
		return Guest{}, dErrors.New(dErrors.CodeValidation, "first name is required")
	}
	if lastName == "" {
		return Guest{}, dErrors.New(dErrors.CodeValidation, "last name is required")
	}
	if strings.TrimSpace(registrationID) == "" {
		return Guest{}, dErrors.New(dErrors.CodeInvariantViolation, "registration id cannot be empty")
	}
	return Guest{
		RegistrationID: registrationID,
		Contact:        strings.TrimSpace(firstName + " " + lastName),
	}, nil
}
