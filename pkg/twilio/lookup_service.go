package twilio

import (
	"fmt"

	"github.com/relayline/callback-service/pkg/logger"
	"github.com/twilio/twilio-go"
	lookups "github.com/twilio/twilio-go/rest/lookups/v2"
	"go.uber.org/zap"
)

// PhoneLookupService validates contact phone numbers against Twilio
// Lookup during CRM sync. If credentials are missing the service is
// disabled and lookups pass numbers through unchanged.
type PhoneLookupService struct {
	client  *twilio.RestClient
	enabled bool
}

// LookupResult holds the normalized number and line metadata for a lookup.
type LookupResult struct {
	PhoneNumber string
	Valid       bool
	LineType    string
}

// NewPhoneLookupService creates a phone lookup service.
// If accountSID or authToken is empty, the service will be disabled.
func NewPhoneLookupService(accountSID, authToken string) *PhoneLookupService {
	if accountSID == "" || authToken == "" {
		logger.Base().Warn("Twilio credentials not provided, phone lookup disabled")
		return &PhoneLookupService{enabled: false}
	}

	return &PhoneLookupService{
		client:  twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken}),
		enabled: true,
	}
}

// Enabled reports whether lookups will actually hit Twilio.
func (s *PhoneLookupService) Enabled() bool {
	return s.enabled
}

// Lookup validates a phone number and fetches its line type. When the
// service is disabled the number is returned as-is and marked valid, so
// sync never depends on Twilio availability.
func (s *PhoneLookupService) Lookup(phoneNumber string) (*LookupResult, error) {
	if !s.enabled {
		return &LookupResult{PhoneNumber: phoneNumber, Valid: true}, nil
	}

	params := &lookups.FetchPhoneNumberParams{}
	params.SetFields("line_type_intelligence")

	resp, err := s.client.LookupsV2.FetchPhoneNumber(phoneNumber, params)
	if err != nil {
		return nil, fmt.Errorf("failed to look up phone number: %w", err)
	}

	result := &LookupResult{PhoneNumber: phoneNumber}
	if resp.PhoneNumber != nil {
		result.PhoneNumber = *resp.PhoneNumber
	}
	if resp.Valid != nil {
		result.Valid = *resp.Valid
	}
	if resp.LineTypeIntelligence != nil {
		if lineType, ok := (*resp.LineTypeIntelligence)["type"].(string); ok {
			result.LineType = lineType
		}
	}

	logger.Base().Debug("phone lookup completed",
		zap.String("phone_number", result.PhoneNumber),
		zap.Bool("valid", result.Valid),
		zap.String("line_type", result.LineType))

	return result, nil
}
