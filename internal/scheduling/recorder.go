package scheduling

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/relayline/callback-service/internal/domain"
	"github.com/relayline/callback-service/pkg/logger"
	"go.uber.org/zap"
)

// RecordRequest carries the fields of one concluded contact attempt.
type RecordRequest struct {
	ContactID       string
	Outcome         domain.Outcome
	AttemptedAt     time.Time
	DurationSeconds int
	Notes           string
}

// ProcessResult reports what happened to a recorded attempt: whether its
// outcome was retry-eligible and, if so, which callbacks were scheduled.
type ProcessResult struct {
	Attempt   *domain.ContactAttempt      `json:"attempt"`
	Eligible  bool                        `json:"eligible"`
	Callbacks []*domain.ScheduledCallback `json:"callbacks,omitempty"`
	Created   int                         `json:"created"`
}

// ReconcileResult reports the accuracy of a completed prediction.
type ReconcileResult struct {
	Callback    *domain.ScheduledCallback `json:"callback"`
	ActualScore float64                   `json:"actual_score"`
	Accuracy    float64                   `json:"accuracy"`
}

// Recorder is the single write path for the attempt log and the learner
// that reconciles predictions against real outcomes.
type Recorder struct {
	attempts  AttemptStore
	callbacks CallbackStore
	scheduler *Scheduler
	cfg       Config
	now       func() time.Time
}

// NewRecorder creates an outcome recorder.
func NewRecorder(attempts AttemptStore, callbacks CallbackStore, scheduler *Scheduler, cfg Config) *Recorder {
	return &Recorder{
		attempts:  attempts,
		callbacks: callbacks,
		scheduler: scheduler,
		cfg:       cfg,
		now:       time.Now,
	}
}

// RecordAttempt appends one attempt to the log. Weekday, hour and the
// attempt number are derived here, at write time. A storage failure is
// returned to the caller: a silently lost attempt would corrupt every
// future aggregation.
func (r *Recorder) RecordAttempt(ctx context.Context, req RecordRequest) (*domain.ContactAttempt, error) {
	if req.ContactID == "" {
		return nil, fmt.Errorf("contact ID cannot be empty")
	}
	if !req.Outcome.IsKnown() {
		return nil, fmt.Errorf("unknown outcome %q", req.Outcome)
	}

	attemptedAt := req.AttemptedAt
	if attemptedAt.IsZero() {
		attemptedAt = r.now()
	}
	attemptedAt = attemptedAt.In(r.cfg.Timezone)

	duration := req.DurationSeconds
	if duration < 0 {
		duration = 0
	}

	count, err := r.attempts.CountByContactID(ctx, req.ContactID)
	if err != nil {
		return nil, err
	}

	attempt := &domain.ContactAttempt{
		ContactID:       req.ContactID,
		AttemptedAt:     attemptedAt,
		Outcome:         req.Outcome,
		DurationSeconds: duration,
		Weekday:         int(attemptedAt.Weekday()),
		HourOfDay:       attemptedAt.Hour(),
		AttemptNumber:   int(count) + 1,
		Notes:           req.Notes,
	}
	if err := r.attempts.Create(ctx, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// ProcessForCallbacks records an attempt and, only when its outcome is in
// the retry-eligible set, schedules new callbacks. Non-eligible outcomes
// are a hard rule: they never generate callbacks, and that is success
// with zero created, not an error.
func (r *Recorder) ProcessForCallbacks(ctx context.Context, req RecordRequest) (*ProcessResult, error) {
	attempt, err := r.RecordAttempt(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{Attempt: attempt}
	if !r.cfg.RetryEligible[req.Outcome] {
		logger.Base().Debug("outcome not retry-eligible, no callbacks scheduled",
			zap.String("contact_id", req.ContactID),
			zap.String("outcome", string(req.Outcome)))
		return result, nil
	}

	result.Eligible = true
	scheduled, err := r.scheduler.ScheduleCallbacks(ctx, req.ContactID)
	if err != nil {
		return nil, err
	}
	result.Callbacks = scheduled.Callbacks
	result.Created = scheduled.Created
	return result, nil
}

// Reconcile resolves a previously scheduled callback against its real
// outcome. The signed outcome weight is recentered onto the 0-100
// prediction scale via weight+50 and clamped explicitly, since weights
// outside [-50, +50] exist in the table. Accuracy is stored for offline
// tuning of the weights; the engine does not auto-tune itself.
func (r *Recorder) Reconcile(ctx context.Context, callbackID string, actualOutcome domain.Outcome) (*ReconcileResult, error) {
	if !actualOutcome.IsKnown() {
		return nil, fmt.Errorf("unknown outcome %q", actualOutcome)
	}

	callback, err := r.callbacks.GetByID(ctx, callbackID)
	if err != nil {
		return nil, err
	}

	actualScore := clampScore(float64(r.cfg.Weights.WeightFor(actualOutcome)) + 50)
	accuracy := 100 - math.Abs(callback.PredictedScore-actualScore)

	completed, err := r.callbacks.Complete(ctx, callbackID, domain.CallbackCompletion{
		ActualOutcome:      actualOutcome,
		ActualScore:        actualScore,
		PredictionAccuracy: accuracy,
		CompletedAt:        r.now(),
	})
	if err != nil {
		return nil, err
	}

	logger.Base().Info("reconciled scheduled callback",
		zap.String("callback_id", callbackID),
		zap.String("actual_outcome", string(actualOutcome)),
		zap.Float64("predicted_score", callback.PredictedScore),
		zap.Float64("actual_score", actualScore),
		zap.Float64("accuracy", accuracy))

	return &ReconcileResult{
		Callback:    completed,
		ActualScore: actualScore,
		Accuracy:    accuracy,
	}, nil
}
