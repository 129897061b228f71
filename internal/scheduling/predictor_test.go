package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/relayline/callback-service/internal/domain"
	"github.com/relayline/callback-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainContact has no classification cues, so it lands in the default
// segment: preferred hours 10, 11, 14, 15 and avoided hour 12.
func plainContact(id string) *domain.Contact {
	return &domain.Contact{ID: id, Name: "Plain", PhoneNumber: "+15550101"}
}

func TestBundlesRanksPerDay(t *testing.T) {
	engine := newTestEngine(testConfig(), plainContact("c1"))
	engine.setNow(mondayAt(8, 0)) // before opening, so the whole day is live

	days, err := engine.predictor.PredictBestTimes(context.Background(), "c1", 1)
	require.NoError(t, err)
	require.Len(t, days, 1)

	day := days[0]
	assert.Equal(t, mondayAt(0, 0), day.Date)
	require.Len(t, day.AllSlots, 8) // hours 9 through 16

	// Preferred hours score 70, plain hours 50, the avoided hour 35.
	// Ties keep generation order, so the earliest preferred hour ranks first.
	require.Len(t, day.TopSlots, 3)
	assert.Equal(t, []int{10, 11, 14}, []int{day.TopSlots[0].Hour, day.TopSlots[1].Hour, day.TopSlots[2].Hour})

	for i, slot := range day.AllSlots {
		assert.Equal(t, i+1, slot.Rank)
		if i > 0 {
			assert.GreaterOrEqual(t, day.AllSlots[i-1].Score, slot.Score)
		}
		assert.GreaterOrEqual(t, slot.Hour, 9)
		assert.Less(t, slot.Hour, 17)
	}
	assert.Equal(t, day.AllSlots[:3], day.TopSlots)
	assert.Equal(t, 12, day.AllSlots[len(day.AllSlots)-1].Hour)
}

func TestBundlesSkipsElapsedHoursToday(t *testing.T) {
	engine := newTestEngine(testConfig(), plainContact("c1"))
	engine.setNow(mondayAt(11, 30)) // the 11:00 slot has already started

	days, err := engine.predictor.PredictBestTimes(context.Background(), "c1", 1)
	require.NoError(t, err)
	require.Len(t, days, 1)

	var hours []int
	for _, slot := range days[0].AllSlots {
		hours = append(hours, slot.Hour)
	}
	assert.ElementsMatch(t, []int{12, 13, 14, 15, 16}, hours)
}

func TestBundlesSkipsClosedDay(t *testing.T) {
	engine := newTestEngine(testConfig(), plainContact("c1"))
	engine.setNow(mondayAt(18, 0)) // after close, nothing left today

	days, err := engine.predictor.PredictBestTimes(context.Background(), "c1", 3)
	require.NoError(t, err)
	require.Len(t, days, 2)
	assert.Equal(t, mondayAt(0, 0).AddDate(0, 0, 1), days[0].Date)
	assert.Equal(t, mondayAt(0, 0).AddDate(0, 0, 2), days[1].Date)
}

func TestBundlesHorizonBounds(t *testing.T) {
	engine := newTestEngine(testConfig(), plainContact("c1"))
	engine.setNow(mondayAt(8, 0))

	tests := map[string]struct {
		horizonDays  int
		expectedDays int
	}{
		"ZeroUsesDefault":     {horizonDays: 0, expectedDays: 3},
		"NegativeUsesDefault": {horizonDays: -5, expectedDays: 3},
		"CappedAtMax":         {horizonDays: 30, expectedDays: 14},
		"WithinBounds":        {horizonDays: 7, expectedDays: 7},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			days, err := engine.predictor.PredictBestTimes(context.Background(), "c1", tc.horizonDays)
			require.NoError(t, err)
			assert.Len(t, days, tc.expectedDays)
		})
	}
}

func TestBundlesRestartable(t *testing.T) {
	engine := newTestEngine(testConfig(), plainContact("c1"))
	now := mondayAt(9, 15)
	engine.setNow(now)

	require.NoError(t, engine.attempts.Create(context.Background(), attemptAt("c1", now.Add(-3*time.Hour), domain.OutcomeVoicemail)))

	seq := engine.predictor.Bundles(context.Background(), "c1", 5)

	var first, second []DayPrediction
	for bundle, err := range seq {
		require.NoError(t, err)
		first = append(first, bundle)
	}
	for bundle, err := range seq {
		require.NoError(t, err)
		second = append(second, bundle)
	}

	assert.Equal(t, first, second)
}

func TestBundlesUnknownContact(t *testing.T) {
	engine := newTestEngine(testConfig())
	engine.setNow(mondayAt(8, 0))

	_, err := engine.predictor.PredictBestTimes(context.Background(), "missing", 3)
	assert.ErrorIs(t, err, repository.ErrContactNotFound)
}
