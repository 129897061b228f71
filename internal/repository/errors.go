package repository

import "errors"

// Domain-level repository error sentinels. Callers match these with
// errors.Is; everything else is a storage failure and must be propagated,
// since a silently lost attempt row corrupts all future learning.
var (
	// Contact errors
	ErrContactNotFound = errors.New("contact not found")

	// Scheduled callback errors
	ErrCallbackNotFound  = errors.New("scheduled callback not found")
	ErrCallbackCompleted = errors.New("scheduled callback already completed")
)
