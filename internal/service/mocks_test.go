package service

import (
	"context"

	"github.com/Dan9191/fee-reminder/internal/billing"
	"github.com/Dan9191/fee-reminder/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockAccountSource is a mock implementation of AccountSource
type MockAccountSource struct {
	mock.Mock
}

func (m *MockAccountSource) ListAccounts(ctx context.Context) ([]*models.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Account), args.Error(1)
}

// MockGuard is a mock implementation of Guard
type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) ShouldRun(ctx context.Context, today billing.Date) (bool, error) {
	args := m.Called(ctx, today)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuard) RecordRun(ctx context.Context, today billing.Date, count int) error {
	args := m.Called(ctx, today, count)
	return args.Error(0)
}

func (m *MockGuard) State(ctx context.Context) (*models.RunState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RunState), args.Error(1)
}

// MockDispatcher is a mock implementation of notify.Dispatcher
type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) SendReminder(ctx context.Context, r models.Reminder) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockDispatcher) SendSummary(ctx context.Context, s models.Summary) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
