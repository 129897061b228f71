package repository

import (
	"context"

	"gorm.io/gorm"
)

// RepositoryManager combines all repositories
type RepositoryManager interface {
	Contact() *ContactRepository
	ContactAttempt() *ContactAttemptRepository
	ScheduledCallback() *ScheduledCallbackRepository

	// Transaction support
	WithTx(ctx context.Context, fn func(ctx context.Context, repos RepositoryManager) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connection
	Close() error
}

// GormRepositoryManager implements RepositoryManager using GORM
type GormRepositoryManager struct {
	db           *gorm.DB
	contactRepo  *ContactRepository
	attemptRepo  *ContactAttemptRepository
	callbackRepo *ScheduledCallbackRepository
}

// NewGormRepositoryManager creates a new GORM repository manager
func NewGormRepositoryManager(db *gorm.DB) *GormRepositoryManager {
	return &GormRepositoryManager{
		db:           db,
		contactRepo:  NewContactRepository(db),
		attemptRepo:  NewContactAttemptRepository(db),
		callbackRepo: NewScheduledCallbackRepository(db),
	}
}

// Contact returns the contact repository
func (m *GormRepositoryManager) Contact() *ContactRepository {
	return m.contactRepo
}

// ContactAttempt returns the contact attempt repository
func (m *GormRepositoryManager) ContactAttempt() *ContactAttemptRepository {
	return m.attemptRepo
}

// ScheduledCallback returns the scheduled callback repository
func (m *GormRepositoryManager) ScheduledCallback() *ScheduledCallbackRepository {
	return m.callbackRepo
}

// WithTx executes a function within a database transaction
func (m *GormRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos RepositoryManager) error) error {
	return m.db.Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewGormRepositoryManager(tx))
	})
}

// Ping checks the database connection
func (m *GormRepositoryManager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (m *GormRepositoryManager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
