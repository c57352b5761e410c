package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeHealthChecker struct {
	err error
}

func (f *fakeHealthChecker) HealthCheck(ctx context.Context) error {
	return f.err
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		checkErr   error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "database reachable",
			checkErr:   nil,
			wantStatus: http.StatusOK,
			wantBody:   "healthy",
		},
		{
			name:       "database down",
			checkErr:   errors.New("connection refused"),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", healthHandler(&fakeHealthChecker{err: tt.checkErr}))

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}
