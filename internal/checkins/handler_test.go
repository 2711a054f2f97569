package checkins

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/2beens/raceplan/internal/telemetry/metrics"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func float64Ptr(v float64) *float64 {
	return &v
}

func intPtr(v int) *int {
	return &v
}

func checkinRequest(t *testing.T, input CheckInInput) *http.Request {
	t.Helper()
	var body bytes.Buffer
	require.NoError(t, json.NewEncoder(&body).Encode(input))
	req := httptest.NewRequest("POST", "/checkins", &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandler_Upsert(t *testing.T) {
	handler := NewHandler(NewTestRepo(), metrics.NewTestManager())

	rr := httptest.NewRecorder()
	handler.HandleUpsert(rr, checkinRequest(t, CheckInInput{
		Date:       "2026-02-10",
		WeightKg:   float64Ptr(82.5),
		SleepHours: float64Ptr(7.5),
		Energy:     intPtr(8),
	}))
	require.Equal(t, http.StatusCreated, rr.Code)

	var created CheckIn
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "2026-02-10", created.Date)
	require.NotNil(t, created.WeightKg)
	assert.Equal(t, 82.5, *created.WeightKg)

	// same date again: values overwritten, id and created_at survive
	rr = httptest.NewRecorder()
	handler.HandleUpsert(rr, checkinRequest(t, CheckInInput{
		Date:     "2026-02-10",
		WeightKg: float64Ptr(82.1),
	}))
	require.Equal(t, http.StatusCreated, rr.Code)

	var overwritten CheckIn
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &overwritten))
	assert.Equal(t, created.ID, overwritten.ID)
	assert.Equal(t, created.CreatedAt.Unix(), overwritten.CreatedAt.Unix())
	require.NotNil(t, overwritten.WeightKg)
	assert.Equal(t, 82.1, *overwritten.WeightKg)
	assert.Nil(t, overwritten.Energy)
}

func TestHandler_Upsert_invalidInput(t *testing.T) {
	handler := NewHandler(NewTestRepo(), metrics.NewTestManager())

	testCases := []struct {
		name  string
		input CheckInInput
	}{
		{name: "bad date", input: CheckInInput{Date: "10.02.2026"}},
		{name: "energy too high", input: CheckInInput{Date: "2026-02-10", Energy: intPtr(11)}},
		{name: "energy zero", input: CheckInInput{Date: "2026-02-10", Energy: intPtr(0)}},
		{name: "pain negative", input: CheckInInput{Date: "2026-02-10", Pain: intPtr(-1)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.HandleUpsert(rr, checkinRequest(t, tc.input))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}
}

func TestHandler_ListAndGet(t *testing.T) {
	repo := NewTestRepo()
	handler := NewHandler(repo, metrics.NewTestManager())

	for _, date := range []string{"2026-02-10", "2026-02-12", "2026-02-11"} {
		rr := httptest.NewRecorder()
		handler.HandleUpsert(rr, checkinRequest(t, CheckInInput{Date: date}))
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := httptest.NewRecorder()
	handler.HandleList(rr, httptest.NewRequest("GET", "/checkins", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var listResp ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listResp))
	require.Equal(t, 3, listResp.Total)
	// newest first
	assert.Equal(t, "2026-02-12", listResp.CheckIns[0].Date)
	assert.Equal(t, "2026-02-10", listResp.CheckIns[2].Date)

	req := mux.SetURLVars(
		httptest.NewRequest("GET", "/checkins/2026-02-11", nil),
		map[string]string{"date": "2026-02-11"},
	)
	rr = httptest.NewRecorder()
	handler.HandleGetByDate(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = mux.SetURLVars(
		httptest.NewRequest("GET", "/checkins/2026-03-01", nil),
		map[string]string{"date": "2026-03-01"},
	)
	rr = httptest.NewRecorder()
	handler.HandleGetByDate(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_Delete(t *testing.T) {
	repo := NewTestRepo()
	handler := NewHandler(repo, metrics.NewTestManager())

	rr := httptest.NewRecorder()
	handler.HandleUpsert(rr, checkinRequest(t, CheckInInput{Date: "2026-02-10"}))
	require.Equal(t, http.StatusCreated, rr.Code)

	req := mux.SetURLVars(
		httptest.NewRequest("DELETE", "/checkins/2026-02-10", nil),
		map[string]string{"date": "2026-02-10"},
	)
	rr = httptest.NewRecorder()
	handler.HandleDelete(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deletedDate": "2026-02-10"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	handler.HandleDelete(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
