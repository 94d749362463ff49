package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/sanad/internal/models"
)

// errNotFound marks a 404 from Qdrant.
var errNotFound = errors.New("not found")

// QdrantConfig configures the Qdrant REST client.
type QdrantConfig struct {
	URL        string // base URL, e.g. http://localhost:6333
	APIKey     string
	Collection string
	Timeout    time.Duration
	MaxRetries int
}

// QdrantStore is a minimal REST client for one Qdrant collection using cosine distance.
type QdrantStore struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
}

// NewQdrantStore creates a Qdrant client. Nothing is sent until the first call.
func NewQdrantStore(cfg QdrantConfig) *QdrantStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	retries := cfg.MaxRetries
	if retries == 0 {
		retries = 3
	}
	return &QdrantStore{
		url:        strings.TrimRight(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
		maxRetries: retries,
		baseDelay:  200 * time.Millisecond,
	}
}

func (s *QdrantStore) collectionURL(suffix string) string {
	return s.url + "/collections/" + url.PathEscape(s.collection) + suffix
}

// EnsureCollection creates the collection with cosine distance unless it already exists.
func (s *QdrantStore) EnsureCollection(ctx context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("dimensions must be positive")
	}
	err := s.do(ctx, http.MethodGet, s.collectionURL(""), nil, nil)
	if err == nil {
		return nil
	}
	if !errors.Is(err, errNotFound) {
		return fmt.Errorf("get collection %s: %w", s.collection, err)
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	if err := s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil); err != nil {
		return fmt.Errorf("create collection %s: %w", s.collection, err)
	}
	return nil
}

type qdrantPoint struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload models.Payload `json:"payload"`
}

// Upsert writes points and waits for them to be applied.
func (s *QdrantStore) Upsert(ctx context.Context, points []models.Point) error {
	if len(points) == 0 {
		return nil
	}
	body := struct {
		Points []qdrantPoint `json:"points"`
	}{Points: make([]qdrantPoint, len(points))}
	for i, p := range points {
		body.Points[i] = qdrantPoint{ID: p.ID, Vector: p.Vector, Payload: p.Payload}
	}
	if err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), body, nil); err != nil {
		return fmt.Errorf("upsert points: %w", err)
	}
	return nil
}

// Search returns the k nearest points with payload.
func (s *QdrantStore) Search(ctx context.Context, vector []float32, k int) ([]models.ScoredPoint, error) {
	if k <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      any            `json:"id"`
			Score   float64        `json:"score"`
			Payload models.Payload `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, fmt.Errorf("search points: %w", err)
	}
	out := make([]models.ScoredPoint, len(resp.Result))
	for i, r := range resp.Result {
		out[i] = models.ScoredPoint{ID: fmt.Sprint(r.ID), Score: r.Score, Payload: r.Payload}
	}
	return out, nil
}

// Count returns the exact number of points in the collection.
func (s *QdrantStore) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/count"), map[string]any{"exact": true}, &resp); err != nil {
		return 0, fmt.Errorf("count points: %w", err)
	}
	return resp.Result.Count, nil
}

// Close releases idle connections.
func (s *QdrantStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

// do sends a JSON request, retrying transport errors, 429 and 5xx responses with
// exponential backoff. A Retry-After header in seconds overrides the backoff.
func (s *QdrantStore) do(ctx context.Context, method, endpoint string, body, out any) error {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, s.retryDelay(attempt-1, lastErr)); err != nil {
				return err
			}
		}
		var reader io.Reader
		if data != nil {
			reader = bytes.NewReader(data)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if err != nil {
			return err
		}
		if data != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if s.apiKey != "" {
			req.Header.Set("api-key", s.apiKey)
		}
		resp, err := s.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			continue
		}
		payload, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusNotFound:
			return fmt.Errorf("qdrant %s %s: %w", method, endpoint, errNotFound)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			lastErr = &retryAfterError{status: resp.Status, after: parseRetryAfter(resp.Header.Get("Retry-After"))}
			continue
		case resp.StatusCode >= 300:
			return fmt.Errorf("qdrant %s %s failed: %s: %s", method, endpoint, resp.Status, strings.TrimSpace(string(payload)))
		}
		if readErr != nil {
			lastErr = readErr
			continue
		}
		if out != nil {
			if err := json.Unmarshal(payload, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
		}
		return nil
	}
	return fmt.Errorf("qdrant %s %s: giving up after %d attempts: %w", method, endpoint, s.maxRetries+1, lastErr)
}

type retryAfterError struct {
	status string
	after  time.Duration
}

func (e *retryAfterError) Error() string { return "server returned " + e.status }

func (s *QdrantStore) retryDelay(attempt int, lastErr error) time.Duration {
	var ra *retryAfterError
	if errors.As(lastErr, &ra) && ra.after > 0 {
		return ra.after
	}
	d := s.baseDelay << attempt
	if d > 5*time.Second {
		d = 5 * time.Second
	}
	return d
}

func parseRetryAfter(v string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
