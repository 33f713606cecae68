// Package remote reports playback progress to the companion media server.
// Reporting is best-effort: a failed report is logged by the caller and
// retried on the next scheduled flush, never surfaced to the user.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const userAgent = "ribbon/1.0 (https://github.com/llehouerou/ribbon)"

// TicksPerMillisecond is the server's position unit: one tick is 100 ns.
const TicksPerMillisecond = 10000

// MsToTicks converts milliseconds to server ticks.
func MsToTicks(ms int64) int64 { return ms * TicksPerMillisecond }

// TicksToMs converts server ticks to milliseconds.
func TicksToMs(ticks int64) int64 { return ticks / TicksPerMillisecond }

// ProgressReport is one position snapshot.
type ProgressReport struct {
	ItemID        string `json:"ItemId"`
	MediaSourceID string `json:"MediaSourceId"`
	PositionTicks int64  `json:"PositionTicks"`
	IsPaused      bool   `json:"IsPaused"`
	PlaySessionID string `json:"PlaySessionId"`
}

// Reporter pushes progress snapshots to the companion server.
type Reporter interface {
	Report(ctx context.Context, report ProgressReport) error
}

// Client is an HTTP progress reporter.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// Verify Client implements Reporter at compile time.
var _ Reporter = (*Client)(nil)

// New creates a reporter for the given server.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Report sends one progress snapshot.
func (c *Client) Report(ctx context.Context, report ProgressReport) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	reqURL := c.baseURL + "/Sessions/Playing/Progress"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf(`MediaBrowser Token="%s"`, c.token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("report progress: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("report progress: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// Nop is a reporter that does nothing, used when no server is configured.
type Nop struct{}

var _ Reporter = Nop{}

// Report discards the snapshot.
func (Nop) Report(_ context.Context, _ ProgressReport) error { return nil }
