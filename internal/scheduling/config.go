package scheduling

import (
	"time"

	"github.com/relayline/callback-service/internal/domain"
)

// Config carries every tunable constant of the scheduling engine. The
// defaults mirror production values; deployments override them through
// the environment (see internal/config). None of the weights or penalty
// multipliers are calibrated against outcome data yet, which is why they
// live here instead of being hard-coded in the scorer.
type Config struct {
	// Business window, whole hours, [Start, End) in Timezone.
	BusinessHourStart int
	BusinessHourEnd   int
	Timezone          *time.Location

	// Additive scoring terms.
	BaseScore               float64
	PreferredHourBonus      float64
	AvoidedHourPenalty      float64
	PersonalRateWeight      float64
	GlobalHourRateWeight    float64
	GlobalWeekdayRateWeight float64

	// Multiplicative penalties. OutsideHoursPenalty scales slots outside
	// the business window; RecencyDecay compounds once per attempt in the
	// trailing RecencyWindow.
	OutsideHoursPenalty float64
	RecencyDecay        float64
	RecencyWindow       time.Duration

	// Scheduling limits.
	MinScoreFloor       float64
	TopSlotsPerDay      int
	MaxCallbacksPerDay  int
	PredictHorizonDays  int
	ScheduleHorizonDays int
	MaxHorizonDays      int

	// GlobalLookback bounds the attempt history read by the global
	// pattern aggregation so its cost stays linear in recent history.
	GlobalLookback  time.Duration
	PatternCacheTTL time.Duration

	Weights       domain.OutcomeWeights
	RetryEligible map[domain.Outcome]bool
	Segments      map[Segment]SegmentProfile
}

// DefaultWeights is the production outcome desirability table.
func DefaultWeights() domain.OutcomeWeights {
	return domain.OutcomeWeights{
		domain.OutcomeAnswered:          100,
		domain.OutcomeAppointmentBooked: 150,
		domain.OutcomeCallbackRequested: 80,
		domain.OutcomeVoicemail:         20,
		domain.OutcomeBusy:              0,
		domain.OutcomeNoAnswer:          -10,
		domain.OutcomeNotInterested:     -50,
		domain.OutcomeWrongNumber:       -100,
	}
}

// DefaultRetryEligible is the set of outcomes allowed to generate new
// callbacks. Anything else terminates the retry loop for that attempt.
func DefaultRetryEligible() map[domain.Outcome]bool {
	return map[domain.Outcome]bool{
		domain.OutcomeNoAnswer:          true,
		domain.OutcomeVoicemail:         true,
		domain.OutcomeBusy:              true,
		domain.OutcomeCallbackRequested: true,
	}
}

// DefaultSegments returns the static per-segment calling heuristics.
func DefaultSegments() map[Segment]SegmentProfile {
	return map[Segment]SegmentProfile{
		SegmentResidential: {
			PreferredHours:    []int{10, 11, 14, 15, 16},
			AvoidedHours:      []int{9, 12, 13},
			WeekendMultiplier: 1.1,
		},
		SegmentBusiness: {
			PreferredHours:    []int{9, 10, 11, 14, 15},
			AvoidedHours:      []int{12, 13, 16},
			WeekendMultiplier: 0.5,
		},
		SegmentTradesperson: {
			PreferredHours:    []int{9, 10, 15, 16},
			AvoidedHours:      []int{11, 12, 13},
			WeekendMultiplier: 0.8,
		},
		SegmentDefault: {
			PreferredHours:    []int{10, 11, 14, 15},
			AvoidedHours:      []int{12},
			WeekendMultiplier: 1.0,
		},
	}
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		BusinessHourStart:       9,
		BusinessHourEnd:         17,
		Timezone:                time.Local,
		BaseScore:               50,
		PreferredHourBonus:      20,
		AvoidedHourPenalty:      15,
		PersonalRateWeight:      30,
		GlobalHourRateWeight:    15,
		GlobalWeekdayRateWeight: 10,
		OutsideHoursPenalty:     0.3,
		RecencyDecay:            0.2,
		RecencyWindow:           24 * time.Hour,
		MinScoreFloor:           30,
		TopSlotsPerDay:          3,
		MaxCallbacksPerDay:      2,
		PredictHorizonDays:      3,
		ScheduleHorizonDays:     7,
		MaxHorizonDays:          14,
		GlobalLookback:          90 * 24 * time.Hour,
		PatternCacheTTL:         5 * time.Minute,
		Weights:                 DefaultWeights(),
		RetryEligible:           DefaultRetryEligible(),
		Segments:                DefaultSegments(),
	}
}

// SegmentProfileFor returns the heuristic profile for a segment, falling
// back to the default segment when the segment has no configured profile.
func (c Config) SegmentProfileFor(seg Segment) SegmentProfile {
	if profile, ok := c.Segments[seg]; ok {
		return profile
	}
	return c.Segments[SegmentDefault]
}

// InBusinessHours reports whether an hour falls inside the business window.
func (c Config) InBusinessHours(hour int) bool {
	return hour >= c.BusinessHourStart && hour < c.BusinessHourEnd
}
