package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/relayline/callback-service/internal/domain"
	"gorm.io/gorm"
)

// ContactAttemptRepository handles database operations for the append-only
// contact attempt log. There is no update or delete path: attempts are the
// ground truth for pattern learning and must never be rewritten.
type ContactAttemptRepository struct {
	db *gorm.DB
}

// NewContactAttemptRepository creates a new contact attempt repository
func NewContactAttemptRepository(db *gorm.DB) *ContactAttemptRepository {
	return &ContactAttemptRepository{db: db}
}

// Create appends a new contact attempt
func (r *ContactAttemptRepository) Create(ctx context.Context, attempt *domain.ContactAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}

	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return fmt.Errorf("failed to create contact attempt: %w", err)
	}
	return nil
}

// GetByContactID retrieves all attempts for a contact, newest first
func (r *ContactAttemptRepository) GetByContactID(ctx context.Context, contactID string) ([]*domain.ContactAttempt, error) {
	var attempts []*domain.ContactAttempt
	if err := r.db.WithContext(ctx).
		Where("contact_id = ?", contactID).
		Order("attempted_at DESC").
		Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to get contact attempts: %w", err)
	}
	return attempts, nil
}

// GetInWindow retrieves attempts within a time window, newest first.
// An empty contactID matches attempts across all contacts, which is how
// the global pattern aggregation reads the log.
func (r *ContactAttemptRepository) GetInWindow(ctx context.Context, contactID string, since, until time.Time) ([]*domain.ContactAttempt, error) {
	query := r.db.WithContext(ctx).
		Where("attempted_at >= ? AND attempted_at <= ?", since, until)
	if contactID != "" {
		query = query.Where("contact_id = ?", contactID)
	}

	var attempts []*domain.ContactAttempt
	if err := query.Order("attempted_at DESC").Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("failed to get attempts in window: %w", err)
	}
	return attempts, nil
}

// CountByContactID returns the number of attempts recorded for a contact
func (r *ContactAttemptRepository) CountByContactID(ctx context.Context, contactID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&domain.ContactAttempt{}).
		Where("contact_id = ?", contactID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count contact attempts: %w", err)
	}
	return count, nil
}
