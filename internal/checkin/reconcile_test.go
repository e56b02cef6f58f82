package checkin

import (
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emargement/internal/checkin/models"
	registrymodels "emargement/internal/registry/models"
)

var scanTime = time.Date(2025, 6, 12, 19, 0, 0, 0, time.UTC)

func gala(t *testing.T) *registrymodels.Event {
	t.Helper()
	ev, _, err := registrymodels.NewEvent("evt-1", "Gala", "2025-06-12", []registrymodels.Guest{
		{RegistrationID: "ABC-123", Contact: "Alice Martin"},
		{RegistrationID: "Q2", Contact: "Bob Durand"},
	}, scanTime)
	require.NoError(t, err)
	return ev
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name  string
		code  string
		event func(t *testing.T) *registrymodels.Event
		want  models.ScanOutcome
	}{
		{
			name:  "match after normalization",
			code:  "  abc-123 ",
			event: gala,
			want: models.ScanOutcome{
				Status:         models.StatusMatched,
				Label:          models.LabelMatched,
				GuestName:      "Alice Martin",
				RawCode:        "abc-123",
				RegistrationID: "ABC-123",
				EventID:        "evt-1",
				Timestamp:      scanTime,
			},
		},
		{
			name:  "unknown code",
			code:  "XYZ",
			event: gala,
			want: models.ScanOutcome{
				Status:    models.StatusUnmatched,
				Reason:    models.ReasonUnknownCode,
				Label:     models.LabelUnknownCode,
				GuestName: models.GuestNotFound,
				RawCode:   "XYZ",
				EventID:   "evt-1",
				Timestamp: scanTime,
			},
		},
		{
			name:  "near miss is not a match",
			code:  "ABC123",
			event: gala,
			want: models.ScanOutcome{
				Status:    models.StatusUnmatched,
				Reason:    models.ReasonUnknownCode,
				Label:     models.LabelUnknownCode,
				GuestName: models.GuestNotFound,
				RawCode:   "ABC123",
				EventID:   "evt-1",
				Timestamp: scanTime,
			},
		},
		{
			name:  "no event selected",
			code:  " anything ",
			event: func(*testing.T) *registrymodels.Event { return nil },
			want: models.ScanOutcome{
				Status:    models.StatusUnmatched,
				Reason:    models.ReasonNoEventSelected,
				Label:     models.LabelNoEventSelected,
				GuestName: models.NoGuest,
				RawCode:   "anything",
				Timestamp: scanTime,
			},
		},
		{
			name:  "empty code without event",
			code:  "   ",
			event: func(*testing.T) *registrymodels.Event { return nil },
			want: models.ScanOutcome{
				Status:    models.StatusUnmatched,
				Reason:    models.ReasonNoEventSelected,
				Label:     models.LabelNoEventSelected,
				GuestName: models.NoGuest,
				RawCode:   models.UnrecognizedCode,
				Timestamp: scanTime,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reconcile(tt.code, tt.event(t), scanTime))
		})
	}
}

func TestReconcile_DoesNotMutateEvent(t *testing.T) {
	ev := gala(t)
	out := Reconcile("ABC-123", ev, scanTime)
	require.True(t, out.Matched())
	assert.False(t, ev.Attendees[0].Present)
}

func TestReconcile_EmptyCodeNeverMatches(t *testing.T) {
	ev := gala(t)
	ev.Attendees = append(ev.Attendees, registrymodels.Guest{RegistrationID: " ", Contact: "Blank"})
	out := Reconcile("", ev, scanTime)
	assert.Equal(t, models.ReasonUnknownCode, out.Reason)
	assert.Equal(t, models.LabelInvalidCode, out.Label)
	assert.Equal(t, models.UnrecognizedCode, out.RawCode)
}

func TestScanOutcomeDisplay(t *testing.T) {
	out := models.ScanOutcome{RawCode: strings.Repeat("é", 61), Timestamp: scanTime}
	assert.Equal(t, strings.Repeat("é", 60)+"...", out.DisplayCode())

	out.RawCode = "ABC-123"
	assert.Equal(t, "ABC-123", out.DisplayCode())

	paris, err := time.LoadLocation("Europe/Paris")
	require.NoError(t, err)
	assert.Equal(t, "12/06/2025 21:00:00", out.FormatTimestamp(paris))
	assert.Equal(t, "12/06/2025 19:00:00", out.FormatTimestamp(time.UTC))

	checkedIn := registrymodels.Guest{RegistrationID: "Q1"}.MarkPresent(scanTime)
	assert.Equal(t, registrymodels.FormatDisplayTime(*checkedIn.PresentAt, paris), out.FormatTimestamp(paris),
		"scan and check-in times share one display format")
}
