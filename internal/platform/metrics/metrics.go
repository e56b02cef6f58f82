package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the registry and check-in paths.
type Metrics struct {
	EventsCreated          prometheus.Counter
	GuestsImported         prometheus.Counter
	ManualGuestsAdded      prometheus.Counter
	DuplicateGuestsDropped prometheus.Counter
	ImportFailures         prometheus.Counter
	CheckinsRecorded       prometheus.Counter
	Scans                  *prometheus.CounterVec
	ScanDuration           prometheus.Histogram
}

// New creates the metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer in main and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EventsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "emargement_events_created_total",
			Help: "Total number of events created from a guest list import",
		}),
		GuestsImported: f.NewCounter(prometheus.CounterOpts{
			Name: "emargement_guests_imported_total",
			Help: "Total number of guests registered through spreadsheet imports",
		}),
		ManualGuestsAdded: f.NewCounter(prometheus.CounterOpts{
			Name: "emargement_manual_guests_added_total",
			Help: "Total number of guests added by hand at the door",
		}),
		DuplicateGuestsDropped: f.NewCounter(prometheus.CounterOpts{
			Name: "emargement_duplicate_guests_dropped_total",
			Help: "Imported rows dropped because their registration id was already taken",
		}),
		ImportFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "emargement_import_failures_total",
			Help: "Guest list imports rejected because the file could not be decoded",
		}),
		CheckinsRecorded: f.NewCounter(prometheus.CounterOpts{
			Name: "emargement_checkins_recorded_total",
			Help: "Guests transitioning from absent to present",
		}),
		Scans: f.NewCounterVec(prometheus.CounterOpts{
			Name: "emargement_scans_total",
			Help: "Scan attempts by outcome status and reason",
		}, []string{"status", "reason"}),
		ScanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "emargement_scan_duration_seconds",
			Help:    "Duration of a scan reconciliation including the attendance update",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
	}
}

func (m *Metrics) IncrementEventsCreated(guests int) {
	m.EventsCreated.Inc()
	m.GuestsImported.Add(float64(guests))
}

func (m *Metrics) IncrementManualGuestsAdded() {
	m.ManualGuestsAdded.Inc()
}

func (m *Metrics) AddDuplicateGuestsDropped(n int) {
	m.DuplicateGuestsDropped.Add(float64(n))
}

func (m *Metrics) IncrementImportFailures() {
	m.ImportFailures.Inc()
}

func (m *Metrics) IncrementCheckinsRecorded() {
	m.CheckinsRecorded.Inc()
}

// ObserveScan records one scan attempt. Call with time.Now() taken at the
// start of the reconciliation.
func (m *Metrics) ObserveScan(status, reason string, start time.Time) {
	if reason == "" {
		reason = "none"
	}
	m.Scans.WithLabelValues(status, reason).Inc()
	m.ScanDuration.Observe(time.Since(start).Seconds())
}
