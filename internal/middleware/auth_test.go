package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/raceplan/internal/middleware"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
)

func TestAuthMiddlewareHandler_AuthCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoginChecker := NewMockLoginChecker(ctrl)
	authMiddleware := middleware.NewAuthMiddlewareHandler(false, mockLoginChecker)

	testCases := []struct {
		name               string
		path               string
		method             string
		token              string
		expectedStatusCode int
		mockIsLogged       bool
		mockIsLoggedErr    error
	}{
		{
			name:               "ReadWithoutToken",
			path:               "/workouts",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "StatsReadWithoutToken",
			path:               "/stats",
			method:             "GET",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "LoginWithoutToken",
			path:               "/a/login",
			method:             "POST",
			expectedStatusCode: http.StatusOK,
		},
		{
			name:               "MutationWithoutToken",
			path:               "/workouts/undo",
			method:             "POST",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "MutationValidToken",
			path:               "/workouts/undo",
			method:             "POST",
			token:              "valid-token",
			expectedStatusCode: http.StatusOK,
			mockIsLogged:       true,
		},
		{
			name:               "MutationInvalidToken",
			path:               "/workouts/undo",
			method:             "POST",
			token:              "invalid-token",
			expectedStatusCode: http.StatusUnauthorized,
			mockIsLogged:       false,
		},
		{
			name:               "DeleteWithoutToken",
			path:               "/workouts/w1",
			method:             "DELETE",
			expectedStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := http.NewRequest(tc.method, tc.path, nil)
			assert.NoError(t, err)
			if tc.token != "" {
				req.Header.Add("X-RACEPLAN-TOKEN", tc.token)
			}

			if tc.token != "" {
				mockLoginChecker.EXPECT().
					IsLogged(gomock.Any(), tc.token).
					Return(tc.mockIsLogged, tc.mockIsLoggedErr).AnyTimes()
			}

			rr := httptest.NewRecorder()
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
			authMiddleware.AuthCheck()(handler).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatusCode, rr.Code)
		})
	}
}

func TestAuthMiddlewareHandler_AuthCheck_openMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLoginChecker := NewMockLoginChecker(ctrl)
	authMiddleware := middleware.NewAuthMiddlewareHandler(true, mockLoginChecker)

	req, err := http.NewRequest("POST", "/workouts/undo", nil)
	assert.NoError(t, err)

	rr := httptest.NewRecorder()
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	authMiddleware.AuthCheck()(handler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
