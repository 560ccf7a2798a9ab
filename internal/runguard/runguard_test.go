package runguard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dan9191/fee-reminder/internal/billing"
	"github.com/Dan9191/fee-reminder/internal/models"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryStore is an in-memory Store for tests
type memoryStore struct {
	state  *models.RunState
	getErr error
	putErr error
	puts   int
}

func (m *memoryStore) GetRunState(ctx context.Context) (*models.RunState, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.state, nil
}

func (m *memoryStore) PutRunState(ctx context.Context, state *models.RunState) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.puts++
	m.state = state
	return nil
}

func TestGuard_EnforceSkipsSameDay(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	store := &memoryStore{}
	guard := NewGuard(store, ModeEnforce, logger)
	today := billing.NewDate(2024, time.February, 15)

	ok, err := guard.ShouldRun(ctx, today)
	require.NoError(t, err)
	assert.True(t, ok, "first run of the day")

	require.NoError(t, guard.RecordRun(ctx, today, 3))

	ok, err = guard.ShouldRun(ctx, today)
	require.NoError(t, err)
	assert.False(t, ok, "same day")

	ok, err = guard.ShouldRun(ctx, today.AddDays(1))
	require.NoError(t, err)
	assert.True(t, ok, "next day")
}

func TestGuard_BypassAlwaysRunsButRecords(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	store := &memoryStore{getErr: errors.New("must not be read")}
	guard := NewGuard(store, ModeBypass, logger)
	today := billing.NewDate(2024, time.February, 15)

	for i := 0; i < 2; i++ {
		ok, err := guard.ShouldRun(ctx, today)
		require.NoError(t, err)
		assert.True(t, ok)
		require.NoError(t, guard.RecordRun(ctx, today, i))
	}

	assert.Equal(t, 2, store.puts)
	assert.Equal(t, 1, store.state.LastRunCount)
	assert.Equal(t, today.Time(), store.state.LastRunDate)
}

func TestGuard_StoreFailures(t *testing.T) {
	ctx := context.Background()
	logger, _ := test.NewNullLogger()
	boom := errors.New("connection refused")
	today := billing.NewDate(2024, time.February, 15)

	guard := NewGuard(&memoryStore{getErr: boom}, ModeEnforce, logger)
	ok, err := guard.ShouldRun(ctx, today)
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)

	guard = NewGuard(&memoryStore{putErr: boom}, ModeEnforce, logger)
	assert.ErrorIs(t, guard.RecordRun(ctx, today, 1), boom)
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("enforce")
	require.NoError(t, err)
	assert.Equal(t, ModeEnforce, mode)

	mode, err = ParseMode("bypass")
	require.NoError(t, err)
	assert.Equal(t, ModeBypass, mode)

	_, err = ParseMode("")
	assert.Error(t, err)
	_, err = ParseMode("sometimes")
	assert.Error(t, err)
}
