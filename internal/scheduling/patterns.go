package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/relayline/callback-service/pkg/logger"
	"go.uber.org/zap"
)

// GlobalPatterns aggregates success rates across all contacts' attempts.
// It is a weak prior: every contact contributes, so it smooths out the
// absence of personal history for new leads.
type GlobalPatterns struct {
	// HourlyRates maps hour-of-day to success rate among attempts made
	// at that hour. Hours with no attempts are absent.
	HourlyRates map[int]float64 `json:"hourly_rates"`
	// WeekdayRates maps weekday to success rate among attempts made on
	// that weekday.
	WeekdayRates map[time.Weekday]float64 `json:"weekday_rates"`
	SampleSize   int                      `json:"sample_size"`
}

// PatternCache is an optional read-through cache for global aggregates.
// Correctness never depends on it: a miss or a cache failure falls back
// to recomputing from the attempt log.
type PatternCache interface {
	Get(ctx context.Context, key string, out interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

const globalPatternsCacheKey = "patterns:global"

// Analyzer computes success-rate aggregations over the append-only
// attempt log. Everything is recomputed on demand; the optional cache
// only spares repeated scans within its TTL.
type Analyzer struct {
	attempts AttemptStore
	cache    PatternCache
	cfg      Config
	now      func() time.Time
}

// NewAnalyzer creates a pattern analyzer over the attempt log.
func NewAnalyzer(attempts AttemptStore, cfg Config) *Analyzer {
	return &Analyzer{
		attempts: attempts,
		cfg:      cfg,
		now:      time.Now,
	}
}

// WithCache attaches a pattern cache and returns the analyzer.
func (a *Analyzer) WithCache(cache PatternCache) *Analyzer {
	a.cache = cache
	return a
}

// GlobalPatterns computes success-rate-by-hour and success-rate-by-weekday
// across all contacts within the configured lookback window.
func (a *Analyzer) GlobalPatterns(ctx context.Context) (*GlobalPatterns, error) {
	if a.cache != nil {
		var cached GlobalPatterns
		hit, err := a.cache.Get(ctx, globalPatternsCacheKey, &cached)
		if err != nil {
			logger.Base().Warn("pattern cache read failed, recomputing",
				zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	now := a.now()
	attempts, err := a.attempts.GetInWindow(ctx, "", now.Add(-a.cfg.GlobalLookback), now)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts for global patterns: %w", err)
	}

	hourTotals := make(map[int]int)
	hourSuccesses := make(map[int]int)
	weekdayTotals := make(map[time.Weekday]int)
	weekdaySuccesses := make(map[time.Weekday]int)

	for _, attempt := range attempts {
		hour := attempt.HourOfDay
		weekday := time.Weekday(attempt.Weekday)
		hourTotals[hour]++
		weekdayTotals[weekday]++
		if a.cfg.Weights.IsSuccess(attempt.Outcome) {
			hourSuccesses[hour]++
			weekdaySuccesses[weekday]++
		}
	}

	patterns := &GlobalPatterns{
		HourlyRates:  make(map[int]float64, len(hourTotals)),
		WeekdayRates: make(map[time.Weekday]float64, len(weekdayTotals)),
		SampleSize:   len(attempts),
	}
	for hour, total := range hourTotals {
		patterns.HourlyRates[hour] = float64(hourSuccesses[hour]) / float64(total)
	}
	for weekday, total := range weekdayTotals {
		patterns.WeekdayRates[weekday] = float64(weekdaySuccesses[weekday]) / float64(total)
	}

	if a.cache != nil {
		if err := a.cache.Set(ctx, globalPatternsCacheKey, patterns, a.cfg.PatternCacheTTL); err != nil {
			logger.Base().Warn("pattern cache write failed", zap.Error(err))
		}
	}

	return patterns, nil
}

// PersonalHourlyRates computes success-rate-by-hour from a single
// contact's own attempt history. It is a strong prior once history
// exists; an empty map means no history and contributes nothing to
// scoring.
func (a *Analyzer) PersonalHourlyRates(ctx context.Context, contactID string) (map[int]float64, error) {
	attempts, err := a.attempts.GetByContactID(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("failed to load attempts for personal patterns: %w", err)
	}

	totals := make(map[int]int)
	successes := make(map[int]int)
	for _, attempt := range attempts {
		totals[attempt.HourOfDay]++
		if a.cfg.Weights.IsSuccess(attempt.Outcome) {
			successes[attempt.HourOfDay]++
		}
	}

	rates := make(map[int]float64, len(totals))
	for hour, total := range totals {
		rates[hour] = float64(successes[hour]) / float64(total)
	}
	return rates, nil
}
