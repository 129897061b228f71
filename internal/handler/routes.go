package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	httpadapter "github.com/relayline/callback-service/internal/adapters/http"
	"github.com/relayline/callback-service/internal/config"
	"github.com/relayline/callback-service/internal/repository"
	"github.com/relayline/callback-service/internal/services/callback"
	"github.com/relayline/callback-service/pkg/logger"
	"github.com/relayline/callback-service/pkg/pubsub"
	"github.com/relayline/callback-service/pkg/redis"
	"github.com/relayline/callback-service/pkg/twilio"
	"go.uber.org/zap"
)

// HandlerManager manages all handlers and their initialization
type HandlerManager struct {
	config      *config.AppConfig
	repoManager repository.RepositoryManager
	service     *callback.Service

	outcomeHandler    *OutcomeWebhookHandler
	schedulingHandler *SchedulingHandler
	contactHandler    *ContactHandler
}

// NewHandlerManager creates and initializes all handlers and services
func NewHandlerManager(cfg *config.AppConfig) (*HandlerManager, error) {
	// Initialize database connection
	repoManager, err := repository.NewRepositoryManager()
	if err != nil {
		logger.Base().Error("failed to connect to database", zap.Error(err))
		return nil, err
	}

	opts := callback.Options{}

	// Optional Redis pattern cache
	if cfg.RedisEnabled {
		redisService, err := redis.NewRedisService(&redis.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Base().Warn("Redis unavailable, pattern cache disabled", zap.Error(err))
		} else {
			opts.PatternCache = redisService
		}
	}

	// Optional Pub/Sub event publisher
	if cfg.PubSubProjectID != "" {
		events, err := pubsub.NewPubSubService(context.Background(), &pubsub.PubSubConfig{
			ProjectID: cfg.PubSubProjectID,
			TopicName: cfg.PubSubTopic,
			PubID:     cfg.PubSubPubID,
		})
		if err != nil {
			logger.Base().Warn("Pub/Sub unavailable, event publishing disabled", zap.Error(err))
		} else {
			opts.Events = events
		}
	}

	// Optional external collaborators
	if cfg.CRMBaseURL != "" {
		opts.CRM = httpadapter.NewCRMClient(cfg.CRMBaseURL, cfg.CRMAPIKey, cfg.CRMRequestsPerSecond)
	}
	if cfg.CalendarBaseURL != "" {
		opts.Calendar = httpadapter.NewCalendarClient(cfg.CalendarBaseURL, cfg.CalendarAPIKey)
	}
	opts.Lookup = twilio.NewPhoneLookupService(cfg.TwilioAccountSID, cfg.TwilioAuthToken)

	service := callback.NewService(cfg, repoManager, opts)

	return &HandlerManager{
		config:            cfg,
		repoManager:       repoManager,
		service:           service,
		outcomeHandler:    NewOutcomeWebhookHandler(service),
		schedulingHandler: NewSchedulingHandler(service),
		contactHandler:    NewContactHandler(service),
	}, nil
}

// SetupAllRoutes registers every route on the router
func (m *HandlerManager) SetupAllRoutes(router *mux.Router) {
	router.Use(CORSMiddleware)
	router.Use(LoggingMiddleware)

	router.HandleFunc("/health", m.HandleHealth).Methods("GET")

	// Webhooks from the voice provider / external dispatcher
	webhooks := router.PathPrefix("/webhooks").Subrouter()
	webhooks.Use(ValidationMiddleware)
	webhooks.HandleFunc("/call-outcome", m.outcomeHandler.HandleCallOutcome).Methods("POST")
	webhooks.HandleFunc("/callback-result", m.outcomeHandler.HandleCallbackResult).Methods("POST")

	// Operator / dispatcher API
	api := router.PathPrefix("/api").Subrouter()
	api.Use(ValidationMiddleware)
	api.Use(AuthMiddleware(m.config.APIAuthSecret))
	api.HandleFunc("/contacts/sync", m.contactHandler.SyncContact).Methods("POST")
	api.HandleFunc("/contacts/{id}", m.contactHandler.GetContact).Methods("GET")
	api.HandleFunc("/contacts/{id}/predictions", m.schedulingHandler.GetPredictions).Methods("GET")
	api.HandleFunc("/contacts/{id}/schedule", m.schedulingHandler.TriggerSchedule).Methods("POST")
	api.HandleFunc("/contacts/{id}/attempts", m.schedulingHandler.GetAttempts).Methods("GET")
	api.HandleFunc("/contacts/{id}/callbacks", m.schedulingHandler.GetContactCallbacks).Methods("GET")
	api.HandleFunc("/callbacks/due", m.schedulingHandler.GetDueCallbacks).Methods("GET")
	api.HandleFunc("/callbacks/{id}", m.schedulingHandler.GetCallback).Methods("GET")
}

// HandleHealth reports service and database health
func (m *HandlerManager) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := m.repoManager.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetService returns the callback service (used by the server for shutdown hooks)
func (m *HandlerManager) GetService() *callback.Service {
	return m.service
}

// Close releases the repository connection
func (m *HandlerManager) Close() error {
	return m.repoManager.Close()
}
