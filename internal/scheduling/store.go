package scheduling

import (
	"context"
	"time"

	"github.com/relayline/callback-service/internal/domain"
)

// AttemptStore is the slice of the history repository the engine needs
// for the append-only attempt log. internal/repository's GORM types
// satisfy these interfaces; tests use in-memory fakes.
type AttemptStore interface {
	Create(ctx context.Context, attempt *domain.ContactAttempt) error
	GetByContactID(ctx context.Context, contactID string) ([]*domain.ContactAttempt, error)
	// GetInWindow returns attempts within [since, until]; an empty
	// contactID spans all contacts.
	GetInWindow(ctx context.Context, contactID string, since, until time.Time) ([]*domain.ContactAttempt, error)
	CountByContactID(ctx context.Context, contactID string) (int64, error)
}

// CallbackStore persists scheduled callbacks and performs their single
// scheduled -> completed transition.
type CallbackStore interface {
	Create(ctx context.Context, callback *domain.ScheduledCallback) error
	GetByID(ctx context.Context, id string) (*domain.ScheduledCallback, error)
	Complete(ctx context.Context, id string, completion domain.CallbackCompletion) (*domain.ScheduledCallback, error)
}

// ContactStore reads contacts. The engine never writes them.
type ContactStore interface {
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
}
