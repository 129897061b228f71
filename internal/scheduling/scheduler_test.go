package scheduling

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/relayline/callback-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleCallbacksDefaults(t *testing.T) {
	engine := newTestEngine(testConfig(), plainContact("c1"))
	engine.setNow(mondayAt(8, 0))

	result, err := engine.scheduler.ScheduleCallbacks(context.Background(), "c1")
	require.NoError(t, err)

	// Two callbacks per day over the seven-day horizon.
	assert.Equal(t, 14, result.Created)
	require.Len(t, result.Callbacks, 14)

	perDay := make(map[string]int)
	seenRank := make(map[string]bool)
	for _, callback := range result.Callbacks {
		assert.Equal(t, "c1", callback.ContactID)
		assert.Equal(t, domain.CallbackStatusScheduled, callback.Status)
		assert.GreaterOrEqual(t, callback.PredictedScore, 30.0)
		assert.Equal(t, domain.ConfidenceForScore(callback.PredictedScore), callback.Confidence)
		assert.GreaterOrEqual(t, callback.ScheduledTime.Hour(), 9)
		assert.Less(t, callback.ScheduledTime.Hour(), 17)

		day := callback.ScheduledTime.Format("2006-01-02")
		perDay[day]++
		key := fmt.Sprintf("%s#%d", day, callback.DayRank)
		assert.Falsef(t, seenRank[key], "duplicate rank on %s", day)
		seenRank[key] = true
	}
	assert.Len(t, perDay, 7)
	for day, count := range perDay {
		assert.LessOrEqualf(t, count, 2, "too many callbacks on %s", day)
	}

	// The persisted rows match what the scheduler reported.
	assert.Len(t, engine.callbacks.all(), 14)
}

func TestScheduleCallbacksDropsBelowFloor(t *testing.T) {
	engine := newTestEngine(testConfig(), plainContact("c1"))
	now := mondayAt(8, 0)
	engine.setNow(now)

	// Five attempts in the trailing day push every slot under the floor:
	// the best slot scores 70 * 0.8^5 ~= 22.9.
	for i := 1; i <= 5; i++ {
		attempt := attemptAt("c1", now.Add(-time.Duration(i)*time.Hour), domain.OutcomeNoAnswer)
		require.NoError(t, engine.attempts.Create(context.Background(), attempt))
	}

	result, err := engine.scheduler.ScheduleCallbacks(context.Background(), "c1")
	require.NoError(t, err)

	assert.Equal(t, 0, result.Created)
	assert.Empty(t, result.Callbacks)
	// Sub-floor candidates are dropped before persistence, not stored.
	assert.Empty(t, engine.callbacks.all())
}

func TestScheduleCallbacksWithOptions(t *testing.T) {
	engine := newTestEngine(testConfig(), plainContact("c1"))
	engine.setNow(mondayAt(8, 0))

	result, err := engine.scheduler.ScheduleCallbacksWithOptions(context.Background(), "c1", 1, 3)
	require.NoError(t, err)

	require.Equal(t, 3, result.Created)
	for _, callback := range result.Callbacks {
		assert.Equal(t, 1, callback.DayRank)
		assert.Equal(t, 10, callback.ScheduledTime.Hour()) // best default-profile hour
	}
}

func TestScheduleCallbacksSlotFilter(t *testing.T) {
	engine := newTestEngine(testConfig(), plainContact("c1"))
	engine.setNow(mondayAt(8, 0))

	engine.scheduler.WithSlotFilter(func(ctx context.Context, from, until time.Time) (SlotFilter, error) {
		return func(t time.Time) bool { return t.Hour() != 10 }, nil
	})

	result, err := engine.scheduler.ScheduleCallbacks(context.Background(), "c1")
	require.NoError(t, err)

	// Hour 10 tops every day; with it filtered out only the second-ranked
	// slot of each day survives.
	assert.Equal(t, 7, result.Created)
	for _, callback := range result.Callbacks {
		assert.NotEqual(t, 10, callback.ScheduledTime.Hour())
	}
}

func TestScheduleCallbacksFilterProviderFailureIsAdvisory(t *testing.T) {
	engine := newTestEngine(testConfig(), plainContact("c1"))
	engine.setNow(mondayAt(8, 0))

	engine.scheduler.WithSlotFilter(func(ctx context.Context, from, until time.Time) (SlotFilter, error) {
		return nil, errors.New("calendar upstream down")
	})

	result, err := engine.scheduler.ScheduleCallbacks(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, 14, result.Created)
}
