package workouts

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*Handler, *TestRepo) {
	t.Helper()
	m, repo := newTestManager(t)
	return NewHandler(m), repo
}

func jsonRequest(t *testing.T, method, target string, payload any) *http.Request {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, target, &body)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestHandler_List(t *testing.T) {
	handler, repo := newTestHandler(t)
	addWorkout(t, repo, "w1", "2026-02-10", IntensityEasy, StatusPlanned)
	addWorkout(t, repo, "w2", "2026-02-12", IntensityEasy, StatusCompleted)

	rr := httptest.NewRecorder()
	handler.HandleList(rr, httptest.NewRequest("GET", "/workouts", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var listResp ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listResp))
	assert.Equal(t, 2, listResp.Total)
	require.Len(t, listResp.Workouts, 2)
	assert.Equal(t, "w1", listResp.Workouts[0].ID)
	assert.Equal(t, "w2", listResp.Workouts[1].ID)
}

func TestHandler_List_empty(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := httptest.NewRecorder()
	handler.HandleList(rr, httptest.NewRequest("GET", "/workouts", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"workouts": [], "total": 0}`, rr.Body.String())
}

func TestHandler_Get(t *testing.T) {
	handler, repo := newTestHandler(t)
	addWorkout(t, repo, "w1", "2026-02-10", IntensityEasy, StatusPlanned)

	req := mux.SetURLVars(httptest.NewRequest("GET", "/workouts/w1", nil), map[string]string{"id": "w1"})
	rr := httptest.NewRecorder()
	handler.HandleGet(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var workout WorkoutDay
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &workout))
	assert.Equal(t, "w1", workout.ID)

	req = mux.SetURLVars(httptest.NewRequest("GET", "/workouts/ghost", nil), map[string]string{"id": "ghost"})
	rr = httptest.NewRecorder()
	handler.HandleGet(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_Create(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := httptest.NewRecorder()
	handler.HandleCreate(rr, jsonRequest(t, "POST", "/workouts", WorkoutDayInput{
		Date:      "2026-02-10",
		Title:     "Evening run",
		Intensity: IntensityEasy,
	}))
	require.Equal(t, http.StatusCreated, rr.Code)

	var created WorkoutDay
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Evening run", created.Title)
	assert.Equal(t, StatusPlanned, created.Status)
}

func TestHandler_Create_invalidInput(t *testing.T) {
	handler, _ := newTestHandler(t)

	testCases := []struct {
		name  string
		input WorkoutDayInput
	}{
		{name: "empty title", input: WorkoutDayInput{Date: "2026-02-10", Intensity: IntensityEasy}},
		{name: "bad date", input: WorkoutDayInput{Date: "10.02.2026", Title: "run", Intensity: IntensityEasy}},
		{name: "bad intensity", input: WorkoutDayInput{Date: "2026-02-10", Title: "run", Intensity: "XXL"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			handler.HandleCreate(rr, jsonRequest(t, "POST", "/workouts", tc.input))
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		})
	}

	// missing content type
	rr := httptest.NewRecorder()
	req := jsonRequest(t, "POST", "/workouts", WorkoutDayInput{Date: "2026-02-10", Title: "run", Intensity: IntensityEasy})
	req.Header.Del("Content-Type")
	handler.HandleCreate(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Update(t *testing.T) {
	handler, repo := newTestHandler(t)
	addWorkout(t, repo, "w1", "2026-02-10", IntensityEasy, StatusPlanned)

	newTitle := "Renamed run"
	req := mux.SetURLVars(
		jsonRequest(t, "PUT", "/workouts/w1", WorkoutUpdate{Title: &newTitle}),
		map[string]string{"id": "w1"},
	)
	rr := httptest.NewRecorder()
	handler.HandleUpdate(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var updated WorkoutDay
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "Renamed run", updated.Title)
	assert.Equal(t, "2026-02-10", updated.Date)

	req = mux.SetURLVars(
		jsonRequest(t, "PUT", "/workouts/ghost", WorkoutUpdate{Title: &newTitle}),
		map[string]string{"id": "ghost"},
	)
	rr = httptest.NewRecorder()
	handler.HandleUpdate(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_Move(t *testing.T) {
	handler, repo := newTestHandler(t)
	addWorkout(t, repo, "w1", "2026-02-10", IntensityEasy, StatusPlanned)
	addWorkout(t, repo, "w2", "2026-02-11", IntensityEasy, StatusPlanned)

	req := mux.SetURLVars(
		jsonRequest(t, "POST", "/workouts/w1/move", MoveRequest{NewDate: "2026-02-14"}),
		map[string]string{"id": "w1"},
	)
	rr := httptest.NewRecorder()
	handler.HandleMove(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var moved WorkoutDay
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &moved))
	assert.Equal(t, "2026-02-14", moved.Date)
	assert.Equal(t, StatusRescheduled, moved.Status)
	require.NotNil(t, moved.MovedFromDate)
	assert.Equal(t, "2026-02-10", *moved.MovedFromDate)

	// target date taken by w2
	req = mux.SetURLVars(
		jsonRequest(t, "POST", "/workouts/w1/move", MoveRequest{NewDate: "2026-02-11"}),
		map[string]string{"id": "w1"},
	)
	rr = httptest.NewRecorder()
	handler.HandleMove(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), "2026-02-11")

	req = mux.SetURLVars(
		jsonRequest(t, "POST", "/workouts/ghost/move", MoveRequest{NewDate: "2026-02-20"}),
		map[string]string{"id": "ghost"},
	)
	rr = httptest.NewRecorder()
	handler.HandleMove(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandler_Status(t *testing.T) {
	handler, repo := newTestHandler(t)
	addWorkout(t, repo, "w1", "2026-02-10", IntensityEasy, StatusPlanned)

	req := mux.SetURLVars(
		jsonRequest(t, "POST", "/workouts/w1/status", StatusRequest{Status: StatusCompleted}),
		map[string]string{"id": "w1"},
	)
	rr := httptest.NewRecorder()
	handler.HandleStatus(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var updated WorkoutDay
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, StatusCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)

	req = mux.SetURLVars(
		jsonRequest(t, "POST", "/workouts/w1/status", StatusRequest{Status: "torn"}),
		map[string]string{"id": "w1"},
	)
	rr = httptest.NewRecorder()
	handler.HandleStatus(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Undo(t *testing.T) {
	handler, repo := newTestHandler(t)
	addWorkout(t, repo, "w1", "2026-02-10", IntensityEasy, StatusPlanned)

	// empty stack: a no-op, not an error
	rr := httptest.NewRecorder()
	handler.HandleUndo(rr, httptest.NewRequest("POST", "/workouts/undo", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"undone": false, "undoStackSize": 0}`, rr.Body.String())

	req := mux.SetURLVars(
		jsonRequest(t, "POST", "/workouts/w1/status", StatusRequest{Status: StatusCompleted}),
		map[string]string{"id": "w1"},
	)
	handler.HandleStatus(httptest.NewRecorder(), req)

	rr = httptest.NewRecorder()
	handler.HandleUndo(rr, httptest.NewRequest("POST", "/workouts/undo", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"undone": true, "undoStackSize": 0}`, rr.Body.String())

	restored, err := repo.Get(req.Context(), "w1")
	require.NoError(t, err)
	assert.Equal(t, StatusPlanned, restored.Status)
	assert.Nil(t, restored.CompletedAt)
}

func TestHandler_InitializePlan(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := httptest.NewRecorder()
	handler.HandleInitializePlan(rr, jsonRequest(t, "POST", "/workouts/plan", InitializePlanRequest{}))
	require.Equal(t, http.StatusCreated, rr.Code)

	var initResp ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &initResp))
	assert.Equal(t, 3, initResp.Total)
	assert.Equal(t, "2026-01-02", initResp.Workouts[0].Date)

	// re-initializing a non-empty plan is rejected
	rr = httptest.NewRecorder()
	handler.HandleInitializePlan(rr, jsonRequest(t, "POST", "/workouts/plan", InitializePlanRequest{}))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestHandler_InitializePlan_customStartDate(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := httptest.NewRecorder()
	handler.HandleInitializePlan(rr, jsonRequest(t, "POST", "/workouts/plan", InitializePlanRequest{
		StartDate: "2026-03-09",
	}))
	require.Equal(t, http.StatusCreated, rr.Code)

	var initResp ListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &initResp))
	assert.Equal(t, "2026-03-09", initResp.Workouts[0].Date)

	rr = httptest.NewRecorder()
	handler.HandleInitializePlan(rr, jsonRequest(t, "POST", "/workouts/plan", InitializePlanRequest{
		StartDate: "not-a-date",
	}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_DeleteAndDeleteAll(t *testing.T) {
	handler, repo := newTestHandler(t)
	addWorkout(t, repo, "w1", "2026-02-10", IntensityEasy, StatusPlanned)
	addWorkout(t, repo, "w2", "2026-02-12", IntensityEasy, StatusPlanned)

	req := mux.SetURLVars(httptest.NewRequest("DELETE", "/workouts/w1", nil), map[string]string{"id": "w1"})
	rr := httptest.NewRecorder()
	handler.HandleDelete(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deletedId": "w1"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	handler.HandleDeleteAll(rr, httptest.NewRequest("DELETE", "/workouts", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	count, err := repo.Count(req.Context())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestHandler_Stats(t *testing.T) {
	handler, repo := newTestHandler(t)
	addWorkout(t, repo, "w1", "2026-02-10", IntensityEasy, StatusCompleted)
	addWorkout(t, repo, "r1", "2026-02-11", IntensityRest, StatusPlanned)

	rr := httptest.NewRecorder()
	handler.HandleStats(rr, httptest.NewRequest("GET", "/workouts/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var stats OverallStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalWorkouts)
	assert.Equal(t, 1, stats.CompletedWorkouts)
}

func TestHandler_WeeklyStats(t *testing.T) {
	handler, repo := newTestHandler(t)
	w := addWorkout(t, repo, "w1", "2026-02-10", IntensityEasy, StatusCompleted)
	w.Week = 2
	require.NoError(t, repo.Update(httptest.NewRequest("GET", "/", nil).Context(), w))

	req := mux.SetURLVars(httptest.NewRequest("GET", "/workouts/stats/week/2", nil), map[string]string{"week": "2"})
	rr := httptest.NewRecorder()
	handler.HandleWeeklyStats(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)

	var stats WeeklyStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.Week)
	assert.Equal(t, 1, stats.CompletedRuns)

	req = mux.SetURLVars(httptest.NewRequest("GET", "/workouts/stats/week/9", nil), map[string]string{"week": "9"})
	rr = httptest.NewRecorder()
	handler.HandleWeeklyStats(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req = mux.SetURLVars(httptest.NewRequest("GET", "/workouts/stats/week/x", nil), map[string]string{"week": "x"})
	rr = httptest.NewRecorder()
	handler.HandleWeeklyStats(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_History(t *testing.T) {
	handler, repo := newTestHandler(t)
	addWorkout(t, repo, "w1", "2026-02-10", IntensityEasy, StatusPlanned)

	req := mux.SetURLVars(
		jsonRequest(t, "POST", "/workouts/w1/status", StatusRequest{Status: StatusCompleted}),
		map[string]string{"id": "w1"},
	)
	handler.HandleStatus(httptest.NewRecorder(), req)

	rr := httptest.NewRecorder()
	handler.HandleHistory(rr, httptest.NewRequest("GET", "/workouts/history", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var historyResp HistoryResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &historyResp))
	require.Equal(t, 1, historyResp.Total)
	assert.Equal(t, HistoryActionStatusChanged, historyResp.Entries[0].Action)

	rr = httptest.NewRecorder()
	handler.HandleHistory(rr, httptest.NewRequest("GET", "/workouts/history?limit=bad", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
