package remote

import (
	"bytes"
	"io"
	"net/http"
	"time"
)

const defaultMaxAttempts = 4

// isRetryableStatus reports whether an HTTP status is worth retrying:
// throttling and server-side failures. Client errors, auth failures
// included, are terminal.
func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

// retryDo executes an HTTP request with exponential backoff, retrying
// network errors and retryable statuses. Request bodies are buffered so they
// can be replayed. Context cancellation cuts the wait short.
func retryDo(client *http.Client, req *http.Request, maxAttempts int) (*http.Response, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
	}

	var lastResp *http.Response
	var lastErr error
	backoff := 500 * time.Millisecond

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-req.Context().Done():
				return nil, req.Context().Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		if body != nil {
			req.Body = io.NopCloser(bytes.NewReader(body))
			req.ContentLength = int64(len(body))
		}

		resp, err := client.Do(req)
		if err != nil {
			lastErr = err
			lastResp = nil
			continue
		}
		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		lastResp = resp
		lastErr = nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	// The retryable body was drained; hand back an empty one so callers
	// can read and close uniformly.
	lastResp.Body = io.NopCloser(bytes.NewReader(nil))
	return lastResp, nil
}
