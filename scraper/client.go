package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const requestTimeout = 10 * time.Second

const userAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1"

// Client is the shared HTTP client for all platform adapters. One fixed
// timeout covers the whole request, connection included.
type Client struct {
	http *http.Client
}

func NewClient() *Client {
	return &Client{
		http: &http.Client{Timeout: requestTimeout},
	}
}

// GetJSON issues a GET and decodes the JSON body into out. Timeouts surface
// as ErrTimeout, other network failures as wrapped transport errors and
// undecodable bodies as MalformedResponseError. Non-2xx statuses with a
// decodable JSON body are left to the caller, platform payloads carry their
// own error field.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		if os.IsTimeout(err) || ctx.Err() == context.DeadlineExceeded {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("transport error: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		if os.IsTimeout(err) {
			return fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		if res.StatusCode >= 400 {
			// No JSON to blame the upstream with, report the status instead
			return &UpstreamError{Code: res.StatusCode, Message: http.StatusText(res.StatusCode)}
		}
		return &MalformedResponseError{Err: err}
	}

	return nil
}
