package scheduling

import (
	"context"
	"time"

	"github.com/relayline/callback-service/internal/domain"
	"github.com/relayline/callback-service/pkg/logger"
	"go.uber.org/zap"
)

// ScheduleResult reports the callbacks a scheduling run actually
// persisted. Candidates below the minimum score floor are dropped before
// ever reaching the store, so scheduling nothing is a normal result.
type ScheduleResult struct {
	Callbacks []*domain.ScheduledCallback `json:"callbacks"`
	Created   int                         `json:"created"`
}

// SlotFilter rejects candidate slot times, e.g. ones overlapping agent
// calendar busy windows.
type SlotFilter func(t time.Time) bool

// SlotFilterProvider builds a filter covering one scheduling run's
// horizon. It is called once per run so implementations can batch their
// upstream queries.
type SlotFilterProvider func(ctx context.Context, from, until time.Time) (SlotFilter, error)

// Scheduler persists the top-ranked predicted slots as pending callbacks,
// capped per day and gated on the minimum confidence floor.
type Scheduler struct {
	predictor    *Predictor
	callbacks    CallbackStore
	filterSource SlotFilterProvider
	cfg          Config
	now          func() time.Time
}

// NewScheduler creates a callback scheduler.
func NewScheduler(predictor *Predictor, callbacks CallbackStore, cfg Config) *Scheduler {
	return &Scheduler{
		predictor: predictor,
		callbacks: callbacks,
		cfg:       cfg,
		now:       time.Now,
	}
}

// WithSlotFilter attaches an availability filter and returns the
// scheduler. Filtering is advisory: a provider failure is logged and the
// run proceeds unfiltered.
func (s *Scheduler) WithSlotFilter(provider SlotFilterProvider) *Scheduler {
	s.filterSource = provider
	return s
}

// ScheduleCallbacks runs with the configured per-day cap and schedule
// horizon.
func (s *Scheduler) ScheduleCallbacks(ctx context.Context, contactID string) (*ScheduleResult, error) {
	return s.ScheduleCallbacksWithOptions(ctx, contactID, s.cfg.MaxCallbacksPerDay, s.cfg.ScheduleHorizonDays)
}

// ScheduleCallbacksWithOptions takes the first maxPerDay top slots of each
// predicted day and persists those at or above the minimum score floor as
// pending callbacks.
func (s *Scheduler) ScheduleCallbacksWithOptions(ctx context.Context, contactID string, maxPerDay, horizonDays int) (*ScheduleResult, error) {
	if maxPerDay <= 0 {
		maxPerDay = s.cfg.MaxCallbacksPerDay
	}
	if horizonDays <= 0 {
		horizonDays = s.cfg.ScheduleHorizonDays
	}

	var filter SlotFilter
	if s.filterSource != nil {
		now := s.now().In(s.cfg.Timezone)
		var err error
		filter, err = s.filterSource(ctx, now, now.AddDate(0, 0, horizonDays))
		if err != nil {
			logger.Base().Warn("slot filter unavailable, scheduling unfiltered",
				zap.String("contact_id", contactID), zap.Error(err))
			filter = nil
		}
	}

	result := &ScheduleResult{}
	for bundle, err := range s.predictor.Bundles(ctx, contactID, horizonDays) {
		if err != nil {
			return nil, err
		}

		take := maxPerDay
		if take > len(bundle.TopSlots) {
			take = len(bundle.TopSlots)
		}
		for _, slot := range bundle.TopSlots[:take] {
			if filter != nil && !filter(slot.Time) {
				continue
			}
			if slot.Score < s.cfg.MinScoreFloor {
				// Below the confidence floor: better no callback than a
				// low-confidence one.
				continue
			}

			callback := &domain.ScheduledCallback{
				ContactID:      contactID,
				ScheduledTime:  slot.Time,
				PredictedScore: slot.Score,
				Confidence:     domain.ConfidenceForScore(slot.Score),
				Status:         domain.CallbackStatusScheduled,
				DayRank:        slot.Rank,
			}
			if err := s.callbacks.Create(ctx, callback); err != nil {
				return nil, err
			}
			result.Callbacks = append(result.Callbacks, callback)
			result.Created++
		}
	}

	logger.Base().Info("scheduled callbacks",
		zap.String("contact_id", contactID),
		zap.Int("created", result.Created),
		zap.Int("horizon_days", horizonDays))

	return result, nil
}
