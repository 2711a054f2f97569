package internal

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/raceplan/internal/auth"
	"github.com/2beens/raceplan/internal/backup"
	"github.com/2beens/raceplan/internal/checkins"
	"github.com/2beens/raceplan/internal/plan"
	"github.com/2beens/raceplan/internal/telemetry/metrics"
	"github.com/2beens/raceplan/internal/workouts"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	workoutsRepo := workouts.NewTestRepo()
	checkinsRepo := checkins.NewTestRepo()
	metricsManager, promRegistry := metrics.NewTestManagerAndRegistry()

	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	t.Cleanup(func() {
		require.NoError(t, rdb.Close())
	})

	return &Server{
		versionInfo:   "test-version",
		planStartDate: plan.DefaultStartDate,
		openMode:      true,
		workoutsManager: workouts.NewManager(
			workoutsRepo,
			plan.Generate,
			plan.DefaultStartDate,
			metricsManager,
		),
		checkinsHandler: checkins.NewHandler(checkinsRepo, metricsManager),
		backupService:   backup.NewService(workoutsRepo, checkinsRepo),
		redisClient:     rdb,
		authService:     auth.NewAuthService("", auth.DefaultTTL, rdb),
		loginChecker:    auth.NewLoginChecker(auth.DefaultTTL, rdb),
		metricsManager:  metricsManager,
		promRegistry:    promRegistry,
	}
}

func TestServer_routerSetup(t *testing.T) {
	server := newTestServer(t)
	router := server.routerSetup()

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{name: "root", method: "GET", path: "/", expectedStatus: http.StatusOK},
		{name: "version", method: "GET", path: "/version", expectedStatus: http.StatusOK},
		{name: "list workouts", method: "GET", path: "/workouts", expectedStatus: http.StatusOK},
		{name: "workout stats", method: "GET", path: "/stats", expectedStatus: http.StatusOK},
		{name: "workout history", method: "GET", path: "/history", expectedStatus: http.StatusOK},
		{name: "missing workout", method: "GET", path: "/workouts/ghost", expectedStatus: http.StatusNotFound},
		{name: "plan metadata", method: "GET", path: "/plan/metadata", expectedStatus: http.StatusOK},
		{name: "list checkins", method: "GET", path: "/checkins", expectedStatus: http.StatusOK},
		{name: "backup export", method: "GET", path: "/export/json", expectedStatus: http.StatusOK},
		{name: "ical export", method: "GET", path: "/export/ical", expectedStatus: http.StatusOK},
		{name: "unknown path", method: "GET", path: "/certainly-not-here", expectedStatus: http.StatusNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, tc.expectedStatus, rr.Code, rr.Body.String())
		})
	}
}

func TestServer_routerSetup_planInitThenStats(t *testing.T) {
	server := newTestServer(t)
	router := server.routerSetup()

	req := httptest.NewRequest("POST", "/workouts/plan/initialize", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/stats", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	// second init attempt on a non-empty plan is rejected
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("POST", "/workouts/plan/initialize", nil))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestServer_connStateMetrics(t *testing.T) {
	server := newTestServer(t)

	server.connStateMetrics(nil, http.StateNew)
	server.connStateMetrics(nil, http.StateActive)
	server.connStateMetrics(nil, http.StateNew)
	server.connStateMetrics(nil, http.StateClosed)

	// 2 new, 1 closed
	assert.Equal(t, 1.0, currentRequestsGauge(t, server))
}

func currentRequestsGauge(t *testing.T, server *Server) float64 {
	t.Helper()
	metricFamilies, err := server.promRegistry.Gather()
	require.NoError(t, err)
	for _, mf := range metricFamilies {
		if mf.GetName() == "raceplan_test_server_current_requests" {
			require.Len(t, mf.GetMetric(), 1)
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatal("current_requests gauge not found")
	return 0
}
