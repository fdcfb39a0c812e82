package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const awaitPollInterval = time.Millisecond * 100

// AwaitService polls the base URL until the service answers with any HTTP response, or until
// the timeout elapses. Progress dots are written to output.
func (c *Client) AwaitService(ctx context.Context, timeout time.Duration, output io.Writer) error {
	if c.baseURL == nil {
		return fmt.Errorf("cannot wait for service: no base URL was configured")
	}
	target := c.BaseURL()
	fmt.Fprintf(output, "Connecting to API at %s", target)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ticker := time.NewTicker(awaitPollInterval)
	defer ticker.Stop()
	for {
		fmt.Fprintf(output, ".")
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
		if err != nil {
			fmt.Fprintln(output)
			return err
		}
		resp, err := c.httpClient.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			fmt.Fprintln(output)
			fmt.Fprintf(output, "API responded with status %d\n", resp.StatusCode)
			return nil
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(output)
			return fmt.Errorf("timed out, result of last query was: %w", err)
		case <-ticker.C:
		}
	}
}
