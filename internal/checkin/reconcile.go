// Package checkin resolves scanned codes against the active event's guest
// list and records every attempt.
package checkin

import (
	"strings"
	"time"

	"emargement/internal/checkin/models"
	registrymodels "emargement/internal/registry/models"
)

// Reconcile decides the outcome of one scan. It does not touch the event:
// for a matched outcome the caller marks RegistrationID present.
// The returned outcome has no ID yet.
func Reconcile(code string, event *registrymodels.Event, now time.Time) models.ScanOutcome {
	raw := strings.TrimSpace(code)
	blank := raw == ""
	if blank {
		raw = models.UnrecognizedCode
	}
	outcome := models.ScanOutcome{
		Status:    models.StatusUnmatched,
		RawCode:   raw,
		Timestamp: now,
	}

	if event == nil {
		outcome.Reason = models.ReasonNoEventSelected
		outcome.Label = models.LabelNoEventSelected
		outcome.GuestName = models.NoGuest
		return outcome
	}
	outcome.EventID = event.ID

	_, guest, ok := event.FindByKey(code)
	if !ok {
		outcome.Reason = models.ReasonUnknownCode
		outcome.Label = models.LabelUnknownCode
		if blank {
			outcome.Label = models.LabelInvalidCode
		}
		outcome.GuestName = models.GuestNotFound
		return outcome
	}

	outcome.Status = models.StatusMatched
	outcome.Label = models.LabelMatched
	outcome.GuestName = guest.Contact
	outcome.RegistrationID = guest.RegistrationID
	return outcome
}
