package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dan9191/fee-reminder/internal/billing"
	"github.com/Dan9191/fee-reminder/internal/models"
	"github.com/Dan9191/fee-reminder/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) RunDailyAudit(ctx context.Context, today billing.Date) (*service.Report, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Report), args.Error(1)
}

func (m *MockAuditService) PreviewDue(ctx context.Context, today billing.Date) (*service.Report, error) {
	args := m.Called(ctx, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Report), args.Error(1)
}

func (m *MockAuditService) RunState(ctx context.Context) (*models.RunState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RunState), args.Error(1)
}

func setupRouter(t *testing.T) (*mux.Router, *MockAuditService) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	svc := new(MockAuditService)
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	h := NewHandler(svc, loc, logger)
	// 20:00 UTC is already the next day in Kolkata
	h.now = func() time.Time { return time.Date(2024, time.February, 14, 20, 0, 0, 0, time.UTC) }

	r := mux.NewRouter()
	h.Routes(r)
	return r, svc
}

func serve(r http.Handler, method, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(method, target, nil))
	return rr
}

func TestHandler_Health(t *testing.T) {
	r, _ := setupRouter(t)

	rr := serve(r, "GET", "/health")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestHandler_RunAudit_DefaultsToLocalToday(t *testing.T) {
	r, svc := setupRouter(t)
	today := billing.NewDate(2024, time.February, 15)
	svc.On("RunDailyAudit", mock.Anything, today).Return(&service.Report{RunID: "run-1", Today: today}, nil)

	rr := serve(r, "POST", "/audit/run")

	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "run-1", body["run_id"])
	assert.Equal(t, "2024-02-15", body["today"])
	svc.AssertExpectations(t)
}

func TestHandler_RunAudit_ExplicitDate(t *testing.T) {
	r, svc := setupRouter(t)
	today := billing.NewDate(2024, time.March, 1)
	svc.On("RunDailyAudit", mock.Anything, today).Return(&service.Report{Today: today, Skipped: true}, nil)

	rr := serve(r, "POST", "/audit/run?date=2024-03-01")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"skipped":true`)
}

func TestHandler_RunAudit_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"store", errors.Join(service.ErrStore, errors.New("connection refused")), http.StatusInternalServerError},
		{"cancelled", context.Canceled, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, svc := setupRouter(t)
			svc.On("RunDailyAudit", mock.Anything, mock.Anything).Return(nil, tt.err)

			rr := serve(r, "POST", "/audit/run")

			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestHandler_InvalidDate(t *testing.T) {
	r, svc := setupRouter(t)

	requests := []struct{ method, target string }{
		{"POST", "/audit/run?date=yesterday"},
		{"GET", "/audit/due?date=2024-02-30"},
	}
	for _, req := range requests {
		rr := serve(r, req.method, req.target)
		assert.Equal(t, http.StatusBadRequest, rr.Code, req.target)
	}
	svc.AssertNotCalled(t, "RunDailyAudit", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "PreviewDue", mock.Anything, mock.Anything)
}

func TestHandler_PreviewDue(t *testing.T) {
	r, svc := setupRouter(t)
	today := billing.NewDate(2024, time.February, 15)
	svc.On("PreviewDue", mock.Anything, today).Return(&service.Report{
		Today:  today,
		DryRun: true,
		Due:    []billing.DueRecord{{AccountID: "R1", DueDate: today}},
	}, nil)

	rr := serve(r, "GET", "/audit/due?date=15/02/2024")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"dry_run":true`)
	assert.Contains(t, rr.Body.String(), `"R1"`)
}

func TestHandler_RunState(t *testing.T) {
	t.Run("recorded", func(t *testing.T) {
		r, svc := setupRouter(t)
		svc.On("RunState", mock.Anything).Return(&models.RunState{
			LastRunDate:  time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC),
			LastRunCount: 2,
		}, nil)

		rr := serve(r, "GET", "/audit/state")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"last_run_date":"2024-02-15"`)
		assert.Contains(t, rr.Body.String(), `"last_run_count":2`)
	})

	t.Run("never ran", func(t *testing.T) {
		r, svc := setupRouter(t)
		svc.On("RunState", mock.Anything).Return(nil, nil)

		rr := serve(r, "GET", "/audit/state")

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
