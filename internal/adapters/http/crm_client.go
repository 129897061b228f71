package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/relayline/callback-service/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CRMClient pulls lead records from the external CRM. The CRM stays the
// system of record for contacts; the service only syncs a local read
// model from it. Requests are rate limited so bulk syncs never trip the
// CRM's API quota.
type CRMClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	limiter    *rate.Limiter
}

// CRMContact is the lead payload returned by the CRM API.
type CRMContact struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	PhoneNumber    string                 `json:"phone_number"`
	ProjectType    string                 `json:"project_type"`
	Classification string                 `json:"classification"`
	Notes          string                 `json:"notes"`
	Custom         map[string]interface{} `json:"custom,omitempty"`
}

// NewCRMClient creates a new CRM API client. requestsPerSecond bounds the
// outbound request rate; zero or negative disables the limit.
func NewCRMClient(baseURL, apiKey string, requestsPerSecond float64) *CRMClient {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}

	return &CRMClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// GetContact fetches one lead by its CRM identifier.
func (c *CRMClient) GetContact(ctx context.Context, externalID string) (*CRMContact, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/leads/%s", c.BaseURL, externalID)
	logger.Base().Debug("Fetching contact from CRM", zap.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("contact %s not found in CRM", externalID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("CRM returned status %d: %s", resp.StatusCode, string(body))
	}

	var contact CRMContact
	if err := json.NewDecoder(resp.Body).Decode(&contact); err != nil {
		return nil, fmt.Errorf("failed to decode CRM response: %w", err)
	}

	return &contact, nil
}
