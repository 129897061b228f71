package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/relayline/callback-service/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreSlot(t *testing.T) {
	cfg := testConfig()
	scorer := NewSlotScorer(nil, NewKeywordClassifier(), nil, nil, cfg)

	monday10 := mondayAt(10, 0) // preferred hour for the default profile
	monday12 := mondayAt(12, 0) // avoided hour for the default profile
	monday8 := mondayAt(8, 0)   // before business hours
	saturday10 := time.Date(2025, 6, 7, 10, 0, 0, 0, time.UTC)

	tests := map[string]struct {
		sc       ScoringContext
		slot     time.Time
		expected float64
	}{
		"BaseOnly": {
			sc:       ScoringContext{Profile: flatProfile()},
			slot:     monday10,
			expected: 50,
		},
		"PreferredHourBonus": {
			sc:       ScoringContext{Profile: cfg.Segments[SegmentDefault]},
			slot:     monday10,
			expected: 70,
		},
		"AvoidedHourPenalty": {
			sc:       ScoringContext{Profile: cfg.Segments[SegmentDefault]},
			slot:     monday12,
			expected: 35,
		},
		// (50 + 20) * 1.1 for a residential contact on a Saturday.
		"WeekendMultiplier": {
			sc:       ScoringContext{Profile: cfg.Segments[SegmentResidential]},
			slot:     saturday10,
			expected: 77,
		},
		"PersonalRate": {
			sc: ScoringContext{
				Profile:        flatProfile(),
				PersonalHourly: map[int]float64{10: 0.8},
			},
			slot:     monday10,
			expected: 74, // 50 + 0.8*30
		},
		"GlobalRates": {
			sc: ScoringContext{
				Profile:       flatProfile(),
				GlobalHourly:  map[int]float64{10: 0.5},
				GlobalWeekday: map[time.Weekday]float64{time.Monday: 0.4},
			},
			slot:     monday10,
			expected: 61.5, // 50 + 0.5*15 + 0.4*10
		},
		"OutsideBusinessHours": {
			sc:       ScoringContext{Profile: flatProfile()},
			slot:     monday8,
			expected: 15, // 50 * 0.3
		},
		// The weekend multiplier scales only the hour-preference terms;
		// history rates are added afterwards.
		"WeekendBeforePersonal": {
			sc: ScoringContext{
				Profile:        cfg.Segments[SegmentResidential],
				PersonalHourly: map[int]float64{10: 0.5},
			},
			slot:     saturday10,
			expected: 92, // (50+20)*1.1 + 0.5*30
		},
		// The outside-hours penalty scales the whole accumulated score,
		// history evidence included.
		"OutsideHoursAfterPersonal": {
			sc: ScoringContext{
				Profile:        flatProfile(),
				PersonalHourly: map[int]float64{8: 1.0},
			},
			slot:     monday8,
			expected: 24, // (50+30) * 0.3
		},
		"RecencyDecay": {
			sc: ScoringContext{
				Profile:        flatProfile(),
				RecentAttempts: 3,
			},
			slot:     monday10,
			expected: 25.6, // 50 * 0.8^3
		},
		"ClampedAt100": {
			sc: ScoringContext{
				Profile:        cfg.Segments[SegmentDefault],
				PersonalHourly: map[int]float64{10: 1.0},
				GlobalHourly:   map[int]float64{10: 1.0},
				GlobalWeekday:  map[time.Weekday]float64{time.Monday: 1.0},
			},
			slot:     monday10,
			expected: 100, // 50+20+30+15+10 = 125, clamped
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, scorer.ScoreSlot(&tc.sc, tc.slot), 1e-9)
		})
	}
}

func TestScoreSlotRecencyStrictlyDecreasing(t *testing.T) {
	cfg := testConfig()
	scorer := NewSlotScorer(nil, NewKeywordClassifier(), nil, nil, cfg)
	slot := mondayAt(10, 0)

	prev := scorer.ScoreSlot(&ScoringContext{Profile: flatProfile()}, slot)
	for attempts := 1; attempts <= 5; attempts++ {
		sc := ScoringContext{Profile: flatProfile(), RecentAttempts: attempts}
		score := scorer.ScoreSlot(&sc, slot)
		assert.Lessf(t, score, prev, "score with %d recent attempts should drop", attempts)
		prev = score
	}
}

func TestBuildContext(t *testing.T) {
	cfg := testConfig()
	now := mondayAt(11, 30)

	engine := newTestEngine(cfg, residentialContact("c1"))
	engine.setNow(now)

	// One attempt inside the recency window, one outside it.
	require.NoError(t, engine.attempts.Create(context.Background(), attemptAt("c1", now.Add(-2*time.Hour), "no_answer")))
	require.NoError(t, engine.attempts.Create(context.Background(), attemptAt("c1", now.Add(-30*time.Hour), "answered")))

	sc, err := engine.scorer.BuildContext(context.Background(), "c1", now)
	require.NoError(t, err)

	assert.Equal(t, SegmentResidential, sc.Segment)
	assert.Equal(t, cfg.Segments[SegmentResidential], sc.Profile)
	assert.Equal(t, 1, sc.RecentAttempts)
	// Both attempts feed the personal rate: 1 success of 1 at hour 5,
	// 0 of 1 at hour 9.
	assert.InDelta(t, 1.0, sc.PersonalHourly[now.Add(-30*time.Hour).Hour()], 1e-9)
	assert.InDelta(t, 0.0, sc.PersonalHourly[now.Add(-2*time.Hour).Hour()], 1e-9)
}

func TestBuildContextUnknownContact(t *testing.T) {
	engine := newTestEngine(testConfig())

	_, err := engine.scorer.BuildContext(context.Background(), "missing", mondayAt(10, 0))
	assert.ErrorIs(t, err, repository.ErrContactNotFound)
}
