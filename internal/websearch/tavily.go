// Package websearch fetches scholar opinions from a whitelist of trusted sites
// through the Tavily search API.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/sanad/internal/models"
	"github.com/hyperjump/sanad/pkg/utils"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultMaxResults is the number of web results requested when the caller passes <= 0.
const DefaultMaxResults = 3

// Default request rate toward the search API, shared by all concurrent asks.
const (
	DefaultRequestsPerSecond = 2.0
	DefaultBurst             = 5
)

// SynthesisFilename labels the provider's synthesized answer in citations.
const SynthesisFilename = "Tavily synthesis from scholar domains"

// Searcher returns scholar_web passages for a question. Implementations never fail;
// any problem yields an empty slice.
type Searcher interface {
	SearchScholarWeb(ctx context.Context, query string, maxResults int) []models.RetrievedChunk
}

// Config configures the Tavily client.
type Config struct {
	APIKey  string
	BaseURL string // default https://api.tavily.com
	Domains []string
	Timeout time.Duration
}

// Client is a Tavily search client restricted to Config.Domains.
type Client struct {
	apiKey  string
	baseURL string
	domains []string
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger for search diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = utils.OrNop(l) }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit sets the sustained request rate and burst size.
func WithRateLimit(requestsPerSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst) }
}

// NewClient creates a Tavily client. An empty APIKey disables searching.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.tavily.com"
	}
	c := &Client{
		apiKey:  cfg.APIKey,
		baseURL: base,
		domains: append([]string(nil), cfg.Domains...),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), DefaultBurst),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	IncludeDomains []string `json:"include_domains,omitempty"`
	MaxResults     int      `json:"max_results"`
	SearchDepth    string   `json:"search_depth"`
	IncludeAnswer  bool     `json:"include_answer"`
}

type searchResponse struct {
	Answer  *string `json:"answer"`
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

// SearchScholarWeb searches the whitelisted domains. A synthesized answer, when
// present, comes first with score 1.0; each result with content follows with
// its provider score rounded to 4 decimals and its URL as filename.
func (c *Client) SearchScholarWeb(ctx context.Context, query string, maxResults int) []models.RetrievedChunk {
	if c.apiKey == "" {
		c.logger.Info("TAVILY_API_KEY not set, skipping web search")
		return nil
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	resp, err := c.search(ctx, searchRequest{
		APIKey:         c.apiKey,
		Query:          query,
		IncludeDomains: c.domains,
		MaxResults:     maxResults,
		SearchDepth:    "advanced",
		IncludeAnswer:  true,
	})
	if err != nil {
		c.logger.Warn("web search failed", zap.Error(err))
		return nil
	}

	var chunks []models.RetrievedChunk
	if resp.Answer != nil {
		if answer := strings.TrimSpace(*resp.Answer); answer != "" {
			chunks = append(chunks, models.RetrievedChunk{
				Text:       answer,
				Score:      1.0,
				SourceType: models.SourceScholarWeb,
				Filename:   SynthesisFilename,
			})
		}
	}
	for _, r := range resp.Results {
		content := strings.TrimSpace(r.Content)
		if content == "" {
			continue
		}
		chunks = append(chunks, models.RetrievedChunk{
			Text:       content,
			Score:      utils.RoundScore(r.Score),
			SourceType: models.SourceScholarWeb,
			Filename:   r.URL,
		})
	}

	c.logger.Info("retrieved web results", zap.Int("count", len(chunks)))
	for i, ch := range chunks {
		c.logger.Debug("web result",
			zap.Int("rank", i+1),
			zap.String("source", ch.Filename),
			zap.String("preview", utils.Truncate(ch.Text, 300)))
	}
	return chunks
}

func (c *Client) search(ctx context.Context, body searchRequest) (*searchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tavily returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &out, nil
}
