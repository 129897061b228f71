package scheduling

import (
	"context"
	"fmt"
	"math"
	"time"
)

// ScoringContext carries everything the scorer needs to rate candidate
// slots for one contact. Building it is the only part of scoring that
// touches the store; ScoreSlot itself is pure, so a prediction run builds
// the context once and rates every candidate against it.
type ScoringContext struct {
	ContactID      string
	Segment        Segment
	Profile        SegmentProfile
	PersonalHourly map[int]float64
	GlobalHourly   map[int]float64
	GlobalWeekday  map[time.Weekday]float64
	// RecentAttempts counts attempts in the trailing recency window as of
	// context build time. Each one compounds the recency decay.
	RecentAttempts int
}

// SlotScorer rates candidate contact times on a 0-100 desirability scale.
type SlotScorer struct {
	analyzer   *Analyzer
	classifier Classifier
	contacts   ContactStore
	attempts   AttemptStore
	cfg        Config
}

// NewSlotScorer creates a time-slot scorer.
func NewSlotScorer(analyzer *Analyzer, classifier Classifier, contacts ContactStore, attempts AttemptStore, cfg Config) *SlotScorer {
	return &SlotScorer{
		analyzer:   analyzer,
		classifier: classifier,
		contacts:   contacts,
		attempts:   attempts,
		cfg:        cfg,
	}
}

// BuildContext gathers segment, personal, global and recency inputs for a
// contact as of now. A contact with no attempt history gets empty pattern
// maps, which simply contribute nothing to the score. A missing contact
// row is an error, not a default-scored contact.
func (s *SlotScorer) BuildContext(ctx context.Context, contactID string, now time.Time) (*ScoringContext, error) {
	contact, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		return nil, err
	}

	segment := s.classifier.Classify(contact)

	personal, err := s.analyzer.PersonalHourlyRates(ctx, contactID)
	if err != nil {
		return nil, err
	}

	global, err := s.analyzer.GlobalPatterns(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.attempts.GetInWindow(ctx, contactID, now.Add(-s.cfg.RecencyWindow), now)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent attempts: %w", err)
	}

	return &ScoringContext{
		ContactID:      contactID,
		Segment:        segment,
		Profile:        s.cfg.SegmentProfileFor(segment),
		PersonalHourly: personal,
		GlobalHourly:   global.HourlyRates,
		GlobalWeekday:  global.WeekdayRates,
		RecentAttempts: len(recent),
	}, nil
}

// ScoreSlot rates one candidate time. Additive terms are independent
// positive evidence; the business-hours and recency factors multiply so
// they scale down everything else instead of merely subtracting, which
// keeps a strongly-evidenced slot from ranking high when it violates a
// hard constraint. The result is clamped to [0, 100] at the end only.
func (s *SlotScorer) ScoreSlot(sc *ScoringContext, t time.Time) float64 {
	hour := t.Hour()
	score := s.cfg.BaseScore

	if sc.Profile.Prefers(hour) {
		score += s.cfg.PreferredHourBonus
	}
	if sc.Profile.Avoids(hour) {
		score -= s.cfg.AvoidedHourPenalty
	}

	if isWeekend(t) {
		score *= sc.Profile.WeekendMultiplier
	}

	if rate, ok := sc.PersonalHourly[hour]; ok {
		score += rate * s.cfg.PersonalRateWeight
	}
	if rate, ok := sc.GlobalHourly[hour]; ok {
		score += rate * s.cfg.GlobalHourRateWeight
	}
	if rate, ok := sc.GlobalWeekday[t.Weekday()]; ok {
		score += rate * s.cfg.GlobalWeekdayRateWeight
	}

	if !s.cfg.InBusinessHours(hour) {
		score *= s.cfg.OutsideHoursPenalty
	}

	if sc.RecentAttempts > 0 {
		score *= math.Pow(1-s.cfg.RecencyDecay, float64(sc.RecentAttempts))
	}

	return clampScore(score)
}

// Score is a convenience wrapper that builds a fresh context and rates a
// single slot. Prediction runs use BuildContext + ScoreSlot directly.
func (s *SlotScorer) Score(ctx context.Context, contactID string, t, now time.Time) (float64, error) {
	sc, err := s.BuildContext(ctx, contactID, now)
	if err != nil {
		return 0, err
	}
	return s.ScoreSlot(sc, t), nil
}

func isWeekend(t time.Time) bool {
	weekday := t.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

func clampScore(score float64) float64 {
	return math.Min(100, math.Max(0, score))
}
