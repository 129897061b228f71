package callback

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	httpadapter "github.com/relayline/callback-service/internal/adapters/http"
	"github.com/relayline/callback-service/internal/config"
	"github.com/relayline/callback-service/internal/domain"
	"github.com/relayline/callback-service/internal/repository"
	"github.com/relayline/callback-service/internal/scheduling"
	"github.com/relayline/callback-service/pkg/logger"
	"github.com/relayline/callback-service/pkg/pubsub"
	"github.com/relayline/callback-service/pkg/twilio"
	"go.uber.org/zap"
)

// Service wires the scheduling engine to its external collaborators: the
// repository, the CRM, the calendar provider, phone lookup and the event
// publisher. Handlers talk to this service, never to the engine directly.
type Service struct {
	repos     repository.RepositoryManager
	recorder  *scheduling.Recorder
	predictor *scheduling.Predictor
	scheduler *scheduling.Scheduler
	events    *pubsub.PubSubService
	crm       *httpadapter.CRMClient
	lookup    *twilio.PhoneLookupService
	cfg       *config.AppConfig
}

// Options carries the optional collaborators of the service. Any nil
// field simply disables that integration.
type Options struct {
	PatternCache scheduling.PatternCache
	Events       *pubsub.PubSubService
	CRM          *httpadapter.CRMClient
	Calendar     *httpadapter.CalendarClient
	Lookup       *twilio.PhoneLookupService
}

// NewService assembles the scheduling engine from the repository and the
// configured collaborators.
func NewService(cfg *config.AppConfig, repos repository.RepositoryManager, opts Options) *Service {
	schedCfg := cfg.Scheduling

	analyzer := scheduling.NewAnalyzer(repos.ContactAttempt(), schedCfg)
	if opts.PatternCache != nil {
		analyzer = analyzer.WithCache(opts.PatternCache)
	}

	scorer := scheduling.NewSlotScorer(
		analyzer,
		scheduling.NewKeywordClassifier(),
		repos.Contact(),
		repos.ContactAttempt(),
		schedCfg,
	)
	predictor := scheduling.NewPredictor(scorer, schedCfg)

	scheduler := scheduling.NewScheduler(predictor, repos.ScheduledCallback(), schedCfg)
	if opts.Calendar != nil {
		scheduler = scheduler.WithSlotFilter(calendarSlotFilter(opts.Calendar))
	}

	recorder := scheduling.NewRecorder(repos.ContactAttempt(), repos.ScheduledCallback(), scheduler, schedCfg)

	return &Service{
		repos:     repos,
		recorder:  recorder,
		predictor: predictor,
		scheduler: scheduler,
		events:    opts.Events,
		crm:       opts.CRM,
		lookup:    opts.Lookup,
		cfg:       cfg,
	}
}

// RecordAndMaybeSchedule records a concluded attempt and schedules new
// callbacks when the outcome is retry-eligible.
func (s *Service) RecordAndMaybeSchedule(ctx context.Context, req scheduling.RecordRequest) (*scheduling.ProcessResult, error) {
	result, err := s.recorder.ProcessForCallbacks(ctx, req)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, pubsub.SchedulingEvent{
		Type:      pubsub.EventAttemptRecorded,
		ContactID: req.ContactID,
		Outcome:   string(req.Outcome),
	})
	for _, cb := range result.Callbacks {
		scheduledAt := cb.ScheduledTime
		score := cb.PredictedScore
		s.publish(ctx, pubsub.SchedulingEvent{
			Type:        pubsub.EventCallbackScheduled,
			ContactID:   cb.ContactID,
			CallbackID:  cb.ID,
			Score:       &score,
			ScheduledAt: &scheduledAt,
		})
	}

	return result, nil
}

// Predict returns the ranked per-day slot bundles for a contact.
func (s *Service) Predict(ctx context.Context, contactID string, horizonDays int) ([]scheduling.DayPrediction, error) {
	return s.predictor.PredictBestTimes(ctx, contactID, horizonDays)
}

// Schedule runs a manual scheduling pass for a contact.
func (s *Service) Schedule(ctx context.Context, contactID string, maxPerDay, horizonDays int) (*scheduling.ScheduleResult, error) {
	return s.scheduler.ScheduleCallbacksWithOptions(ctx, contactID, maxPerDay, horizonDays)
}

// Reconcile resolves a scheduled callback against its real outcome.
func (s *Service) Reconcile(ctx context.Context, callbackID string, outcome domain.Outcome) (*scheduling.ReconcileResult, error) {
	result, err := s.recorder.Reconcile(ctx, callbackID, outcome)
	if err != nil {
		return nil, err
	}

	accuracy := result.Accuracy
	s.publish(ctx, pubsub.SchedulingEvent{
		Type:       pubsub.EventCallbackCompleted,
		ContactID:  result.Callback.ContactID,
		CallbackID: result.Callback.ID,
		Outcome:    string(outcome),
		Accuracy:   &accuracy,
	})

	return result, nil
}

// SyncContact pulls a lead from the CRM, validates its phone number when
// lookup is configured, and upserts the local read model.
func (s *Service) SyncContact(ctx context.Context, externalID string) (*domain.Contact, error) {
	if s.crm == nil {
		return nil, fmt.Errorf("CRM client is not configured")
	}

	crmContact, err := s.crm.GetContact(ctx, externalID)
	if err != nil {
		return nil, err
	}

	contact := &domain.Contact{}
	if err := copier.Copy(contact, crmContact); err != nil {
		return nil, fmt.Errorf("failed to map CRM contact: %w", err)
	}
	contact.ExternalID = crmContact.ID
	if len(crmContact.Custom) > 0 {
		contact.Metadata = domain.JSONB(crmContact.Custom)
	}

	if s.lookup != nil && contact.PhoneNumber != "" {
		result, err := s.lookup.Lookup(contact.PhoneNumber)
		if err != nil {
			// Validation is best-effort; the CRM's number is kept.
			logger.Base().Warn("phone lookup failed during contact sync",
				zap.String("external_id", externalID), zap.Error(err))
		} else {
			contact.PhoneNumber = result.PhoneNumber
			contact.PhoneLineType = result.LineType
			if !result.Valid {
				logger.Base().Warn("contact phone number failed validation",
					zap.String("external_id", externalID),
					zap.String("phone_number", result.PhoneNumber))
			}
		}
	}

	return s.repos.Contact().Upsert(ctx, contact)
}

// Repos exposes the repository manager for handlers that only read.
func (s *Service) Repos() repository.RepositoryManager {
	return s.repos
}

// publish sends a scheduling event when the publisher is configured.
// Event delivery is best-effort and never fails the request.
func (s *Service) publish(ctx context.Context, event pubsub.SchedulingEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logger.Base().Warn("failed to publish scheduling event",
			zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

// calendarSlotFilter batches one busy-window query per scheduling run and
// rejects slots overlapping any returned window.
func calendarSlotFilter(client *httpadapter.CalendarClient) scheduling.SlotFilterProvider {
	return func(ctx context.Context, from, until time.Time) (scheduling.SlotFilter, error) {
		windows, err := client.GetBusyWindows(ctx, from, until)
		if err != nil {
			return nil, err
		}
		return func(t time.Time) bool {
			for _, w := range windows {
				if w.Covers(t) {
					return false
				}
			}
			return true
		}, nil
	}
}
