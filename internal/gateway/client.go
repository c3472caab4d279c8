package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Querier performs the synchronous transaction status round-trip.
type Querier interface {
	Query(ctx context.Context, params map[string]string) (map[string]string, error)
}

type httpQuerier struct {
	url    string
	client *http.Client
}

// NewHTTPQuerier posts signed JSON to url. Every call is bounded by timeout.
func NewHTTPQuerier(url string, timeout time.Duration) Querier {
	return &httpQuerier{url: url, client: &http.Client{Timeout: timeout}}
}

func (q *httpQuerier) Query(ctx context.Context, params map[string]string) (map[string]string, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := q.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("query gateway: unexpected status %d", resp.StatusCode)
	}

	out := map[string]string{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	return out, nil
}
