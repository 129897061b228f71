package scheduling

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/relayline/callback-service/internal/domain"
	"github.com/relayline/callback-service/internal/repository"
)

// memAttemptStore is an in-memory AttemptStore for tests.
type memAttemptStore struct {
	mu       sync.Mutex
	attempts []*domain.ContactAttempt
	err      error
}

func (s *memAttemptStore) Create(ctx context.Context, attempt *domain.ContactAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if attempt.ID == "" {
		attempt.ID = uuid.New().String()
	}
	s.attempts = append(s.attempts, attempt)
	return nil
}

func (s *memAttemptStore) GetByContactID(ctx context.Context, contactID string) ([]*domain.ContactAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []*domain.ContactAttempt
	for _, a := range s.attempts {
		if a.ContactID == contactID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AttemptedAt.After(out[j].AttemptedAt) })
	return out, nil
}

func (s *memAttemptStore) GetInWindow(ctx context.Context, contactID string, since, until time.Time) ([]*domain.ContactAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []*domain.ContactAttempt
	for _, a := range s.attempts {
		if contactID != "" && a.ContactID != contactID {
			continue
		}
		if a.AttemptedAt.Before(since) || a.AttemptedAt.After(until) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (s *memAttemptStore) CountByContactID(ctx context.Context, contactID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	var count int64
	for _, a := range s.attempts {
		if a.ContactID == contactID {
			count++
		}
	}
	return count, nil
}

// memCallbackStore is an in-memory CallbackStore for tests.
type memCallbackStore struct {
	mu        sync.Mutex
	callbacks map[string]*domain.ScheduledCallback
	order     []string
}

func newMemCallbackStore() *memCallbackStore {
	return &memCallbackStore{callbacks: make(map[string]*domain.ScheduledCallback)}
}

func (s *memCallbackStore) Create(ctx context.Context, callback *domain.ScheduledCallback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if callback.ID == "" {
		callback.ID = uuid.New().String()
	}
	clone := *callback
	s.callbacks[callback.ID] = &clone
	s.order = append(s.order, callback.ID)
	return nil
}

func (s *memCallbackStore) GetByID(ctx context.Context, id string) (*domain.ScheduledCallback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	callback, ok := s.callbacks[id]
	if !ok {
		return nil, repository.ErrCallbackNotFound
	}
	clone := *callback
	return &clone, nil
}

func (s *memCallbackStore) Complete(ctx context.Context, id string, completion domain.CallbackCompletion) (*domain.ScheduledCallback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	callback, ok := s.callbacks[id]
	if !ok {
		return nil, repository.ErrCallbackNotFound
	}
	if callback.Status != domain.CallbackStatusScheduled {
		return nil, repository.ErrCallbackCompleted
	}
	callback.Status = domain.CallbackStatusCompleted
	callback.ActualOutcome = completion.ActualOutcome
	actualScore := completion.ActualScore
	accuracy := completion.PredictionAccuracy
	completedAt := completion.CompletedAt
	callback.ActualScore = &actualScore
	callback.PredictionAccuracy = &accuracy
	callback.CompletedAt = &completedAt
	clone := *callback
	return &clone, nil
}

func (s *memCallbackStore) all() []*domain.ScheduledCallback {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.ScheduledCallback, 0, len(s.order))
	for _, id := range s.order {
		clone := *s.callbacks[id]
		out = append(out, &clone)
	}
	return out
}

// memContactStore is an in-memory ContactStore for tests.
type memContactStore struct {
	mu       sync.Mutex
	contacts map[string]*domain.Contact
}

func newMemContactStore(contacts ...*domain.Contact) *memContactStore {
	s := &memContactStore{contacts: make(map[string]*domain.Contact)}
	for _, c := range contacts {
		s.contacts[c.ID] = c
	}
	return s
}

func (s *memContactStore) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, ok := s.contacts[id]
	if !ok {
		return nil, repository.ErrContactNotFound
	}
	return contact, nil
}

// memPatternCache is an in-memory PatternCache for tests.
type memPatternCache struct {
	mu      sync.Mutex
	entries map[string]*GlobalPatterns
	getErr  error
	sets    int
}

func newMemPatternCache() *memPatternCache {
	return &memPatternCache{entries: make(map[string]*GlobalPatterns)}
}

func (c *memPatternCache) Get(ctx context.Context, key string, out interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return false, c.getErr
	}
	entry, ok := c.entries[key]
	if !ok {
		return false, nil
	}
	*(out.(*GlobalPatterns)) = *entry
	return true, nil
}

func (c *memPatternCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	clone := *(value.(*GlobalPatterns))
	c.entries[key] = &clone
	c.sets++
	return nil
}

// testEngine wires the full scheduling pipeline over in-memory stores with
// a controllable clock.
type testEngine struct {
	attempts  *memAttemptStore
	callbacks *memCallbackStore
	contacts  *memContactStore
	analyzer  *Analyzer
	scorer    *SlotScorer
	predictor *Predictor
	scheduler *Scheduler
	recorder  *Recorder
}

func newTestEngine(cfg Config, contacts ...*domain.Contact) *testEngine {
	e := &testEngine{
		attempts:  &memAttemptStore{},
		callbacks: newMemCallbackStore(),
		contacts:  newMemContactStore(contacts...),
	}
	e.analyzer = NewAnalyzer(e.attempts, cfg)
	e.scorer = NewSlotScorer(e.analyzer, NewKeywordClassifier(), e.contacts, e.attempts, cfg)
	e.predictor = NewPredictor(e.scorer, cfg)
	e.scheduler = NewScheduler(e.predictor, e.callbacks, cfg)
	e.recorder = NewRecorder(e.attempts, e.callbacks, e.scheduler, cfg)
	return e
}

// setNow pins the clock of every engine component.
func (e *testEngine) setNow(t time.Time) {
	e.analyzer.now = func() time.Time { return t }
	e.predictor.now = func() time.Time { return t }
	e.scheduler.now = func() time.Time { return t }
	e.recorder.now = func() time.Time { return t }
}

// testConfig returns the default config pinned to UTC so slot times are
// deterministic regardless of the host timezone.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Timezone = time.UTC
	return cfg
}

// flatProfile has no hour preferences, so every business-hour weekday
// slot scores the same.
func flatProfile() SegmentProfile {
	return SegmentProfile{WeekendMultiplier: 1.0}
}

// Monday 2025-06-02 in UTC; the following Saturday is 2025-06-07.
func mondayAt(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 0, 0, time.UTC)
}

func attemptAt(contactID string, at time.Time, outcome domain.Outcome) *domain.ContactAttempt {
	return &domain.ContactAttempt{
		ContactID:   contactID,
		AttemptedAt: at,
		Outcome:     outcome,
		Weekday:     int(at.Weekday()),
		HourOfDay:   at.Hour(),
	}
}

func residentialContact(id string) *domain.Contact {
	return &domain.Contact{
		ID:          id,
		ExternalID:  "crm-" + id,
		Name:        "Test Contact",
		PhoneNumber: "+15550100",
		ProjectType: "kitchen renovation",
	}
}
