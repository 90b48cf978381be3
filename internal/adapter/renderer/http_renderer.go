package renderer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/iho/facturier/internal/domain"
	"github.com/iho/facturier/internal/usecase"
)

// HTTPRenderer talks to the external render service over HTTP. Transient
// failures (network errors, 5xx) are retried with exponential backoff;
// a 4xx response is treated as permanent.
type HTTPRenderer struct {
	baseURL string
	client  *http.Client

	maxRetries      int
	initialInterval time.Duration
	maxElapsedTime  time.Duration
}

// NewHTTPRenderer creates a renderer client for the service at baseURL.
func NewHTTPRenderer(baseURL string, timeout time.Duration) *HTTPRenderer {
	return &HTTPRenderer{
		baseURL:         baseURL,
		client:          &http.Client{Timeout: timeout},
		maxRetries:      3,
		initialInterval: 100 * time.Millisecond,
		maxElapsedTime:  30 * time.Second,
	}
}

// Render submits a render request and returns the produced file location.
func (r *HTTPRenderer) Render(ctx context.Context, req usecase.RenderRequest) (*usecase.RenderResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode render request: %v", domain.ErrRenderFailure, err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxElapsedTime = r.maxElapsedTime

	var result *usecase.RenderResult
	retryCount := 0

	err = backoff.Retry(func() error {
		res, err := r.doRender(ctx, body)
		if err == nil {
			result = res
			return nil
		}
		if permanent, ok := err.(*permanentError); ok {
			return backoff.Permanent(permanent.err)
		}
		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(err)
		}
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRenderFailure, err)
	}

	return result, nil
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }

func (r *HTTPRenderer) doRender(ctx context.Context, body []byte) (*usecase.RenderResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, &permanentError{err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("render service returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &permanentError{err: fmt.Errorf("render service returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))}
	}

	var result usecase.RenderResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &permanentError{err: fmt.Errorf("decode render response: %w", err)}
	}
	if result.FilePath == "" {
		return nil, &permanentError{err: fmt.Errorf("render response missing file path")}
	}

	return &result, nil
}
