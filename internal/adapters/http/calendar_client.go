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
)

// CalendarClient queries the external calendar-availability provider for
// agent busy windows. It is optional: when no calendar is configured the
// scheduler persists predicted slots unfiltered.
type CalendarClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

// BusyWindow is one interval during which no human agent is available.
type BusyWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Covers reports whether t falls inside the busy window.
func (w BusyWindow) Covers(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// NewCalendarClient creates a new calendar availability client
func NewCalendarClient(baseURL, apiKey string) *CalendarClient {
	return &CalendarClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetBusyWindows fetches busy windows overlapping [from, until].
func (c *CalendarClient) GetBusyWindows(ctx context.Context, from, until time.Time) ([]BusyWindow, error) {
	url := fmt.Sprintf("%s/api/v1/availability/busy?from=%s&until=%s",
		c.BaseURL, from.UTC().Format(time.RFC3339), until.UTC().Format(time.RFC3339))
	logger.Base().Debug("Fetching busy windows from calendar", zap.String("url", url))

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

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("calendar returned status %d: %s", resp.StatusCode, string(body))
	}

	var windows []BusyWindow
	if err := json.NewDecoder(resp.Body).Decode(&windows); err != nil {
		return nil, fmt.Errorf("failed to decode calendar response: %w", err)
	}

	return windows, nil
}
