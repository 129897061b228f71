package scheduling

import (
	"context"
	"iter"
	"sort"
	"time"
)

// TimeSlot is one scored candidate contact time.
type TimeSlot struct {
	Time  time.Time `json:"time"`
	Hour  int       `json:"hour"`
	Score float64   `json:"score"`
	Rank  int       `json:"rank"`
}

// DayPrediction bundles the ranked candidates for one calendar day. Top
// slots are what the scheduler consumes; the full ranked list is kept for
// introspection and analytics.
type DayPrediction struct {
	Date     time.Time  `json:"date"`
	TopSlots []TimeSlot `json:"top_slots"`
	AllSlots []TimeSlot `json:"all_slots"`
}

// Predictor enumerates candidate slots over a day horizon and ranks them
// per day via the slot scorer.
type Predictor struct {
	scorer *SlotScorer
	cfg    Config
	now    func() time.Time
}

// NewPredictor creates an optimal-time predictor.
func NewPredictor(scorer *SlotScorer, cfg Config) *Predictor {
	return &Predictor{
		scorer: scorer,
		now:    time.Now,
		cfg:    cfg,
	}
}

// clampHorizon applies the default and maximum horizon bounds.
func (p *Predictor) clampHorizon(horizonDays int) int {
	if horizonDays <= 0 {
		horizonDays = p.cfg.PredictHorizonDays
	}
	if p.cfg.MaxHorizonDays > 0 && horizonDays > p.cfg.MaxHorizonDays {
		horizonDays = p.cfg.MaxHorizonDays
	}
	return horizonDays
}

// Bundles returns a lazy per-day sequence of prediction bundles. The
// horizon bounds it, so it always terminates; re-ranging over it restarts
// prediction from a fresh scoring context. Scoring is a pure function of
// the history at context build time, so two runs with no intervening
// writes rank identically.
func (p *Predictor) Bundles(ctx context.Context, contactID string, horizonDays int) iter.Seq2[DayPrediction, error] {
	horizonDays = p.clampHorizon(horizonDays)

	return func(yield func(DayPrediction, error) bool) {
		now := p.now().In(p.cfg.Timezone)

		sc, err := p.scorer.BuildContext(ctx, contactID, now)
		if err != nil {
			yield(DayPrediction{}, err)
			return
		}

		for offset := 0; offset < horizonDays; offset++ {
			day := now.AddDate(0, 0, offset)

			// Nothing left to schedule today once the window has closed.
			if offset == 0 && now.Hour() >= p.cfg.BusinessHourEnd {
				continue
			}

			var slots []TimeSlot
			for hour := p.cfg.BusinessHourStart; hour < p.cfg.BusinessHourEnd; hour++ {
				// A slot at the top of an already-started hour is unreachable.
				if offset == 0 && hour <= now.Hour() {
					continue
				}
				slotTime := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, p.cfg.Timezone)
				slots = append(slots, TimeSlot{
					Time:  slotTime,
					Hour:  hour,
					Score: p.scorer.ScoreSlot(sc, slotTime),
				})
			}
			if len(slots) == 0 {
				continue
			}

			// Stable sort keeps generation order (earliest hour first) as
			// the tie-break for equal scores.
			sort.SliceStable(slots, func(i, j int) bool {
				return slots[i].Score > slots[j].Score
			})
			for i := range slots {
				slots[i].Rank = i + 1
			}

			topCount := p.cfg.TopSlotsPerDay
			if topCount > len(slots) {
				topCount = len(slots)
			}

			bundle := DayPrediction{
				Date:     time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, p.cfg.Timezone),
				TopSlots: slots[:topCount],
				AllSlots: slots,
			}
			if !yield(bundle, nil) {
				return
			}
		}
	}
}

// PredictBestTimes collects the full horizon of prediction bundles.
func (p *Predictor) PredictBestTimes(ctx context.Context, contactID string, horizonDays int) ([]DayPrediction, error) {
	var days []DayPrediction
	for bundle, err := range p.Bundles(ctx, contactID, horizonDays) {
		if err != nil {
			return nil, err
		}
		days = append(days, bundle)
	}
	return days, nil
}
