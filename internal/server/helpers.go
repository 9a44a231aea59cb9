package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// WaitForHealthy polls baseURL's /health endpoint until it answers 200 OK or
// ctx is done. baseURL is the server's HTTP root, e.g. "http://localhost:3000".
func WaitForHealthy(ctx context.Context, baseURL string) error {
	healthURL, err := url.JoinPath(baseURL, "health")
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	client := &http.Client{Timeout: time.Second}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
