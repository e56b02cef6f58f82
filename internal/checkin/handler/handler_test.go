package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"emargement/internal/checkin/models"
	"emargement/internal/platform/logger"
	"emargement/internal/scanner"
	dErrors "emargement/pkg/domain-errors"
	"emargement/pkg/testutil"
)

var scanTime = time.Date(2025, 6, 12, 19, 0, 0, 0, time.UTC)

type stubService struct {
	outcome models.ScanOutcome
	err     error
	codes   []string
	history []models.ScanOutcome
}

func (s *stubService) Scan(_ context.Context, code string) (models.ScanOutcome, error) {
	s.codes = append(s.codes, code)
	return s.outcome, s.err
}

func (s *stubService) History(context.Context) []models.ScanOutcome {
	return s.history
}

type stubScanner struct {
	state scanner.State
}

func (s *stubScanner) Start()               { s.state = scanner.Scanning }
func (s *stubScanner) Stop()                { s.state = scanner.Idle }
func (s *stubScanner) State() scanner.State { return s.state }

func newRouter(svc Service, sc ScannerControl) http.Handler {
	r := chi.NewRouter()
	New(svc, sc, logger.Discard(), time.UTC).Register(r)
	return r
}

func TestScan(t *testing.T) {
	t.Run("unknown code is a 200 outcome", func(t *testing.T) {
		svc := &stubService{outcome: models.ScanOutcome{
			ID:        7,
			Status:    models.StatusUnmatched,
			Reason:    models.ReasonUnknownCode,
			Label:     models.LabelUnknownCode,
			GuestName: models.GuestNotFound,
			RawCode:   "XYZ",
			Timestamp: scanTime,
		}}
		rr := testutil.DoRequest(newRouter(svc, nil),
			testutil.NewJSONRequest(t, http.MethodPost, "/scans", ScanRequest{Code: "XYZ"}))

		testutil.AssertStatus(t, rr, http.StatusOK)
		got := testutil.UnmarshalResponse[OutcomeResponse](t, rr)
		assert.Equal(t, int64(7), got.ID)
		assert.Equal(t, models.ReasonUnknownCode, got.Reason)
		assert.Equal(t, "12/06/2025 19:00:00", got.DisplayTime)
		assert.Equal(t, []string{"XYZ"}, svc.codes)
	})

	t.Run("long codes are truncated for display", func(t *testing.T) {
		long := strings.Repeat("x", 80)
		svc := &stubService{outcome: models.ScanOutcome{RawCode: long, Timestamp: scanTime}}
		rr := testutil.DoRequest(newRouter(svc, nil),
			testutil.NewJSONRequest(t, http.MethodPost, "/scans", ScanRequest{Code: long}))
		got := testutil.UnmarshalResponse[OutcomeResponse](t, rr)
		assert.Equal(t, long, got.RawCode)
		assert.Equal(t, strings.Repeat("x", 60)+"...", got.DisplayCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodPost, "/scans")
		rr := testutil.DoRequest(newRouter(&stubService{}, nil), req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
	})

	t.Run("failed attendance update", func(t *testing.T) {
		svc := &stubService{err: dErrors.Wrap(errors.New("boom"), dErrors.CodeInternal, "failed to record check-in")}
		rr := testutil.DoRequest(newRouter(svc, nil),
			testutil.NewJSONRequest(t, http.MethodPost, "/scans", ScanRequest{Code: "ABC"}))
		testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
	})
}

func TestHistory(t *testing.T) {
	svc := &stubService{history: []models.ScanOutcome{
		{ID: 2, Status: models.StatusMatched, RawCode: "B", Timestamp: scanTime},
		{ID: 1, Status: models.StatusUnmatched, RawCode: "A", Timestamp: scanTime},
	}}
	rr := testutil.DoRequest(newRouter(svc, nil), testutil.NewRequest(t, http.MethodGet, "/scans/history"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	got := testutil.UnmarshalResponse[HistoryResponse](t, rr)
	require.Len(t, got.Outcomes, 2)
	assert.Equal(t, int64(2), got.Outcomes[0].ID)
}

func TestScannerControl(t *testing.T) {
	t.Run("without a scanner", func(t *testing.T) {
		rr := testutil.DoRequest(newRouter(&stubService{}, nil), testutil.NewRequest(t, http.MethodGet, "/scanner"))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
	})

	t.Run("start and stop", func(t *testing.T) {
		router := newRouter(&stubService{}, &stubScanner{})

		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/scanner/start"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.Equal(t, "scanning", testutil.UnmarshalResponse[ScannerResponse](t, rr).State)

		rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodPost, "/scanner/stop"))
		assert.Equal(t, "idle", testutil.UnmarshalResponse[ScannerResponse](t, rr).State)

		rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/scanner"))
		assert.Equal(t, "idle", testutil.UnmarshalResponse[ScannerResponse](t, rr).State)
	})
}
