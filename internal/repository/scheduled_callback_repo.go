package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/relayline/callback-service/internal/domain"
	"gorm.io/gorm"
)

// ScheduledCallbackRepository handles database operations for scheduled
// callbacks. Rows transition scheduled -> completed exactly once and are
// never deleted.
type ScheduledCallbackRepository struct {
	db *gorm.DB
}

// NewScheduledCallbackRepository creates a new scheduled callback repository
func NewScheduledCallbackRepository(db *gorm.DB) *ScheduledCallbackRepository {
	return &ScheduledCallbackRepository{db: db}
}

// Create creates a new scheduled callback
func (r *ScheduledCallbackRepository) Create(ctx context.Context, callback *domain.ScheduledCallback) error {
	if callback.ID == "" {
		callback.ID = uuid.New().String()
	}
	if callback.CreatedAt.IsZero() {
		callback.CreatedAt = time.Now()
	}
	callback.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Create(callback).Error; err != nil {
		return fmt.Errorf("failed to create scheduled callback: %w", err)
	}
	return nil
}

// GetByID retrieves a scheduled callback by ID
func (r *ScheduledCallbackRepository) GetByID(ctx context.Context, id string) (*domain.ScheduledCallback, error) {
	var callback domain.ScheduledCallback
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&callback).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCallbackNotFound
		}
		return nil, fmt.Errorf("failed to get scheduled callback: %w", err)
	}
	return &callback, nil
}

// GetByContactID retrieves all callbacks for a contact, soonest first
func (r *ScheduledCallbackRepository) GetByContactID(ctx context.Context, contactID string) ([]*domain.ScheduledCallback, error) {
	var callbacks []*domain.ScheduledCallback
	if err := r.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("scheduled_time ASC").
		Find(&callbacks).Error; err != nil {
		return nil, fmt.Errorf("failed to get scheduled callbacks: %w", err)
	}
	return callbacks, nil
}

// ListDue retrieves callbacks still in scheduled status whose scheduled
// time is at or before the given instant. The external dispatcher polls
// this to pick work; the service itself never triggers calls.
func (r *ScheduledCallbackRepository) ListDue(ctx context.Context, until time.Time, limit int) ([]*domain.ScheduledCallback, error) {
	query := r.db.WithContext(ctx).
		Where("status = ? AND scheduled_time <= ?", domain.CallbackStatusScheduled, until).
		Order("scheduled_time ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var callbacks []*domain.ScheduledCallback
	if err := query.Find(&callbacks).Error; err != nil {
		return nil, fmt.Errorf("failed to list due callbacks: %w", err)
	}
	return callbacks, nil
}

// Complete performs the single scheduled -> completed transition. The
// update is guarded on status still being scheduled so a duplicate
// reconciliation (or a racing one) surfaces as ErrCallbackCompleted
// instead of silently overwriting the first result.
func (r *ScheduledCallbackRepository) Complete(ctx context.Context, id string, completion domain.CallbackCompletion) (*domain.ScheduledCallback, error) {
	updates := map[string]interface{}{
		"status":              domain.CallbackStatusCompleted,
		"actual_outcome":      completion.ActualOutcome,
		"actual_score":        completion.ActualScore,
		"prediction_accuracy": completion.PredictionAccuracy,
		"completed_at":        completion.CompletedAt,
		"updated_at":          time.Now(),
	}

	result := r.db.WithContext(ctx).
		Model(&domain.ScheduledCallback{}).
		Where("id = ? AND status = ?", id, domain.CallbackStatusScheduled).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to complete scheduled callback: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		// Distinguish a missing row from one that already completed.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrCallbackCompleted
	}

	return r.GetByID(ctx, id)
}

// CountScheduledOnDay counts pending callbacks for a contact on a calendar day
func (r *ScheduledCallbackRepository) CountScheduledOnDay(ctx context.Context, contactID string, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.ScheduledCallback{}).
		Where("contact_id = ? AND status = ? AND scheduled_time >= ? AND scheduled_time < ?",
			contactID, domain.CallbackStatusScheduled, start, end).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count scheduled callbacks: %w", err)
	}
	return count, nil
}
