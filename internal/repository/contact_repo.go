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

// ContactRepository handles database operations for contacts. Contacts are
// owned by the external CRM; this table is a local read model refreshed by
// the sync endpoint.
type ContactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) *ContactRepository {
	return &ContactRepository{db: db}
}

// Create creates a new contact
func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	if contact.ID == "" {
		contact.ID = uuid.New().String()
	}
	if contact.CreatedAt.IsZero() {
		contact.CreatedAt = time.Now()
	}
	contact.UpdatedAt = time.Now()

	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	return nil
}

// Update updates an existing contact
func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	contact.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(contact).Error; err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	return nil
}

// GetByID retrieves a contact by ID
func (r *ContactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	var contact domain.Contact
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return &contact, nil
}

// GetByExternalID retrieves a contact by its CRM identifier
func (r *ContactRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.Contact, error) {
	var contact domain.Contact
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&contact).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to get contact by external id: %w", err)
	}
	return &contact, nil
}

// Upsert creates the contact if its external ID is unknown, otherwise
// updates the existing row in place and returns it.
func (r *ContactRepository) Upsert(ctx context.Context, contact *domain.Contact) (*domain.Contact, error) {
	if contact.ExternalID == "" {
		return nil, fmt.Errorf("external ID cannot be empty")
	}

	existing, err := r.GetByExternalID(ctx, contact.ExternalID)
	if err != nil && !errors.Is(err, ErrContactNotFound) {
		return nil, err
	}
	if existing != nil {
		contact.ID = existing.ID
		contact.CreatedAt = existing.CreatedAt
		if err := r.Update(ctx, contact); err != nil {
			return nil, err
		}
		return contact, nil
	}

	if err := r.Create(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// Exists checks if a contact exists by ID
func (r *ContactRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.Contact{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check contact existence: %w", err)
	}
	return count > 0, nil
}
