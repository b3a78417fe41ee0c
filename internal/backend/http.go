package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/omaradly/transmem/internal/translation"
)

// HTTPBackend posts batches as JSON to a translation service.
type HTTPBackend struct {
	url    string
	model  string
	client *http.Client
}

// NewHTTPBackend creates an HTTP backend for the given endpoint URL.
// timeout bounds each call independently of the caller's context.
func NewHTTPBackend(url, model string, timeout time.Duration) *HTTPBackend {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPBackend{
		url:    url,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

func (b *HTTPBackend) Name() string { return "http" }

func (b *HTTPBackend) Translate(ctx context.Context, batch Batch) (*BatchResult, error) {
	for i := range batch.Segments {
		if batch.Segments[i].Model == "" {
			batch.Segments[i].Model = b.model
		}
	}

	payload, err := json.Marshal(batch)
	if err != nil {
		return nil, translation.WrapError(translation.KindHandlerError, "encoding batch", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(payload))
	if err != nil {
		return nil, translation.WrapError(translation.KindHandlerError, "building request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		if isDeadline(ctx, err) {
			return nil, translation.WrapError(translation.KindTimeout, "translation call exceeded deadline", err)
		}
		return nil, translation.WrapError(translation.KindNetworkError, "translation call failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, translation.WrapError(translation.KindNetworkError,
			fmt.Sprintf("translation service returned %d", resp.StatusCode),
			errors.New(string(body)))
	}

	var result BatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, translation.WrapError(translation.KindNetworkError, "decoding response", err)
	}
	return &result, nil
}

// isDeadline distinguishes a deliberate timeout from a transport failure.
func isDeadline(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
