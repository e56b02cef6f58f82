package models

import (
	"time"
	"unicode/utf8"

	registrymodels "emargement/internal/registry/models"
)

type Status string

const (
	StatusMatched   Status = "matched"
	StatusUnmatched Status = "unmatched"
)

// Reason distinguishes the unmatched cases. Matched outcomes carry none.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnknownCode     Reason = "unknown_code"
	ReasonNoEventSelected Reason = "no_event_selected"
)

// Labels and placeholders shown at the door.
const (
	LabelMatched         = "Émargement validé"
	LabelUnknownCode     = "QR code inconnu"
	LabelInvalidCode     = "QR Code invalide"
	LabelNoEventSelected = "Aucun événement sélectionné"

	GuestNotFound    = "Invité introuvable"
	NoGuest          = "—"
	UnrecognizedCode = "QR non reconnu"

	// maxDisplayCode bounds how much of a raw code is echoed back.
	maxDisplayCode = 60
)

// ScanOutcome records one scan attempt. It is created once and never
// modified; ID is assigned when the outcome enters the history.
type ScanOutcome struct {
	ID             int64     `json:"id"`
	Status         Status    `json:"status"`
	Reason         Reason    `json:"reason,omitempty"`
	Label          string    `json:"label"`
	GuestName      string    `json:"guest_name"`
	RawCode        string    `json:"raw_code"`
	RegistrationID string    `json:"registration_id,omitempty"`
	EventID        string    `json:"event_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

func (o ScanOutcome) Matched() bool {
	return o.Status == StatusMatched
}

// FormatTimestamp renders the scan time in loc for display.
func (o ScanOutcome) FormatTimestamp(loc *time.Location) string {
	return registrymodels.FormatDisplayTime(o.Timestamp, loc)
}

// DisplayCode is RawCode cut to a displayable length. Cameras sometimes
// decode URLs or whole vCards.
func (o ScanOutcome) DisplayCode() string {
	if utf8.RuneCountInString(o.RawCode) <= maxDisplayCode {
		return o.RawCode
	}
	runes := []rune(o.RawCode)
	return string(runes[:maxDisplayCode]) + "..."
}
