// Package pokeapi fetches catalog resources from a PokeAPI-compatible REST
// endpoint.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/heartmarshall/pokecatalog/internal/config"
	"github.com/heartmarshall/pokecatalog/internal/domain"
	"github.com/heartmarshall/pokecatalog/internal/observe"
	"github.com/heartmarshall/pokecatalog/pkg/ctxutil"
)

const (
	kindIndex    = "index"
	kindResource = "resource"

	defaultRetryDelay = 500 * time.Millisecond
	maxBodyBytes      = 8 << 20
)

// ErrUnexpectedStatus is wrapped by errors for non-200, non-404 responses.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Client fetches raw resources. It is safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
	metrics    *observe.Metrics
	log        *slog.Logger
}

// NewClient creates a Client from cfg. metrics may be nil.
func NewClient(cfg config.FetchConfig, logger *slog.Logger, metrics *observe.Metrics) *Client {
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}
	if metrics == nil {
		metrics = observe.Nop()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		limiter:    rate.NewLimiter(limit, burst),
		retryDelay: defaultRetryDelay,
		metrics:    metrics,
		log:        logger.With("adapter", "pokeapi"),
	}
}

// FetchIndex fetches one page of the root-entity index.
func (c *Client) FetchIndex(ctx context.Context, offset, limit int) (domain.Index, error) {
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	q.Set("limit", strconv.Itoa(limit))
	reqURL := c.baseURL + "/pokemon?" + q.Encode()

	body, err := c.get(ctx, kindIndex, reqURL)
	if err != nil {
		return domain.Index{}, err
	}

	var idx domain.Index
	if err := json.Unmarshal(body, &idx); err != nil {
		return domain.Index{}, fmt.Errorf("pokeapi: decode index: %w", err)
	}
	return idx, nil
}

// FetchRaw fetches any resource and returns its undecoded JSON body.
func (c *Client) FetchRaw(ctx context.Context, rawURL string) (json.RawMessage, error) {
	return c.get(ctx, kindResource, c.resolve(rawURL))
}

// resolve makes API-relative paths absolute.
func (c *Client) resolve(rawURL string) string {
	if strings.HasPrefix(rawURL, "/") {
		return c.baseURL + rawURL
	}
	return rawURL
}

func (c *Client) get(ctx context.Context, kind, reqURL string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("pokeapi: throttle: %w", err)
	}

	start := time.Now()
	c.log.DebugContext(ctx, "pokeapi request", slog.String("kind", kind), slog.String("url", reqURL))

	resp, err := c.doWithRetry(ctx, reqURL)
	if err != nil {
		c.metrics.RecordFetch(ctx, kind, "error", time.Since(start))
		c.log.ErrorContext(ctx, "pokeapi request failed", slog.String("url", reqURL), slog.String("error", err.Error()), runAttr(ctx))
		return nil, fmt.Errorf("pokeapi: request %s: %w", reqURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.metrics.RecordFetch(ctx, kind, "not_found", time.Since(start))
		return nil, fmt.Errorf("pokeapi: %s: %w", reqURL, domain.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordFetch(ctx, kind, "error", time.Since(start))
		return nil, fmt.Errorf("pokeapi: %s: %w %d", reqURL, ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.metrics.RecordFetch(ctx, kind, "error", time.Since(start))
		return nil, fmt.Errorf("pokeapi: read body: %w", err)
	}
	if !json.Valid(body) {
		c.metrics.RecordFetch(ctx, kind, "error", time.Since(start))
		return nil, fmt.Errorf("pokeapi: %s: invalid json body", reqURL)
	}

	c.metrics.RecordFetch(ctx, kind, "ok", time.Since(start))
	c.log.DebugContext(ctx, "pokeapi response",
		slog.String("url", reqURL),
		slog.Int("bytes", len(body)),
		slog.Duration("took", time.Since(start)),
	)
	return body, nil
}

// doWithRetry executes a GET with a single retry on 5xx or network errors.
func (c *Client) doWithRetry(ctx context.Context, reqURL string) (*http.Response, error) {
	resp, err := c.do(ctx, reqURL)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry {
		return resp, err
	}

	// Don't retry if context is already cancelled.
	if ctx.Err() != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, ctx.Err()
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.WarnContext(ctx, "pokeapi retry", slog.String("url", reqURL), slog.String("reason", reason), runAttr(ctx))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	timer := time.NewTimer(c.retryDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
	}

	return c.do(ctx, reqURL)
}

func (c *Client) do(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.httpClient.Do(req)
}

// runAttr tags a log line with the aggregation run that issued the request.
func runAttr(ctx context.Context) slog.Attr {
	if id, ok := ctxutil.RunIDFromCtx(ctx); ok {
		return slog.String("run_id", id.String())
	}
	return slog.Attr{}
}
