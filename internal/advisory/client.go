// internal/advisory/client.go
package advisory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"moodbrew/internal/common/config"
	httpclient "moodbrew/internal/common/http"
	"moodbrew/internal/common/logger"
	"moodbrew/internal/common/metrics"
	"moodbrew/internal/models"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
)

const generatePath = "/api/ai/generate"

// ErrUnavailable is the only error the client returns. Missing credentials,
// transport failures, non-2xx answers, timeouts, an open breaker and
// unusable answers all wrap it.
var ErrUnavailable = errors.New("ADVISORY_UNAVAILABLE")

// errUnusable marks a 2xx answer that could not be turned into a result.
var errUnusable = errors.New("unusable answer")

// Advisor produces personalised results from the external advisory service.
type Advisor interface {
	RequestMoodRecommendations(ctx context.Context, mood string, candidates []models.Product) (models.MoodRecommendationResult, error)
	RequestCafeRanking(ctx context.Context, cafes []models.Cafe, filter string) (models.CafeRankingResult, error)
	RequestReviewSummary(ctx context.Context, reviews []models.Review) (models.ReviewSummaryResult, error)
}

type Config struct {
	BaseURL            string
	APIKey             string
	Timeout            time.Duration
	MaxRetries         int
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
}

// ConfigFrom maps the application config section onto Config.
func ConfigFrom(cfg config.AdvisoryConfig) Config {
	return Config{
		BaseURL:            strings.TrimRight(cfg.BaseURL, "/"),
		APIKey:             cfg.APIKey,
		Timeout:            config.GetDuration(cfg.Timeout),
		MaxRetries:         cfg.MaxRetries,
		BreakerMaxFailures: uint32(cfg.Breaker.MaxFailures),
		BreakerOpenTimeout: config.GetDuration(cfg.Breaker.OpenTimeout),
	}
}

// Configured reports whether both the endpoint and the credential are set.
func (c Config) Configured() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

type Client struct {
	cfg     Config
	http    *httpclient.Client
	breaker *gobreaker.CircuitBreaker[string]
	logger  logger.Logger
}

var _ Advisor = (*Client)(nil)

func NewClient(cfg Config, log logger.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BreakerMaxFailures == 0 {
		cfg.BreakerMaxFailures = 5
	}
	if cfg.BreakerOpenTimeout <= 0 {
		cfg.BreakerOpenTimeout = 30 * time.Second
	}

	log = log.WithFields(map[string]interface{}{"component": "advisory"})

	breaker := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        "advisory",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("advisory circuit breaker state changed", map[string]interface{}{
				"from": from.String(),
				"to":   to.String(),
			})
		},
	})

	return &Client{
		cfg:     cfg,
		http:    httpclient.NewClient(cfg.Timeout),
		breaker: breaker,
		logger:  log,
	}
}

// BreakerState exposes the breaker state for readiness reporting.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

func (c *Client) RequestMoodRecommendations(ctx context.Context, mood string, candidates []models.Product) (models.MoodRecommendationResult, error) {
	p := moodPrompt(mood, candidates)
	text, err := c.generate(ctx, models.KindRecommendations, p)
	if err != nil {
		return models.MoodRecommendationResult{}, err
	}

	result, how, err := parseRecommendations(text, candidates)
	return result, c.settle(models.KindRecommendations, how, err)
}

func (c *Client) RequestCafeRanking(ctx context.Context, cafes []models.Cafe, filter string) (models.CafeRankingResult, error) {
	p := rankingPrompt(cafes, filter)
	text, err := c.generate(ctx, models.KindRankings, p)
	if err != nil {
		return models.CafeRankingResult{}, err
	}

	result, how, err := parseRanking(text, cafes)
	return result, c.settle(models.KindRankings, how, err)
}

func (c *Client) RequestReviewSummary(ctx context.Context, reviews []models.Review) (models.ReviewSummaryResult, error) {
	p := summaryPrompt(reviews)
	text, err := c.generate(ctx, models.KindSummaries, p)
	if err != nil {
		return models.ReviewSummaryResult{}, err
	}

	result, how, err := parseSummary(text, reviews)
	return result, c.settle(models.KindSummaries, how, err)
}

func (c *Client) settle(kind models.Kind, how string, err error) error {
	if err != nil {
		metrics.AdvisoryCalls.WithLabelValues(string(kind), "unusable").Inc()
		c.logger.Warn("advisory answer unusable", map[string]interface{}{
			"kind":  kind,
			"error": err,
		})
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	metrics.AdvisoryCalls.WithLabelValues(string(kind), how).Inc()
	return nil
}

type generateRequest struct {
	SystemPrompt string  `json:"systemPrompt"`
	UserPrompt   string  `json:"userPrompt"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"maxTokens"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// generate sends one prompt through the breaker and returns the raw answer text.
func (c *Client) generate(ctx context.Context, kind models.Kind, p prompt) (string, error) {
	if !c.cfg.Configured() {
		metrics.AdvisoryCalls.WithLabelValues(string(kind), "unconfigured").Inc()
		return "", fmt.Errorf("%w: advisory base URL or API key not configured", ErrUnavailable)
	}

	start := time.Now()
	text, err := c.breaker.Execute(func() (string, error) {
		return c.call(ctx, p)
	})
	metrics.AdvisoryDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())

	if err != nil {
		result := "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "breaker_open"
		}
		metrics.AdvisoryCalls.WithLabelValues(string(kind), result).Inc()
		c.logger.Warn("advisory call failed", map[string]interface{}{
			"kind":    kind,
			"error":   err,
			"elapsed": time.Since(start).String(),
		})
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	c.logger.Debug("advisory call completed", map[string]interface{}{
		"kind":    kind,
		"elapsed": time.Since(start).String(),
		"chars":   len(text),
	})
	return text, nil
}

// call performs the HTTP exchange with exponential backoff on transport
// errors and 5xx answers.
func (c *Client) call(ctx context.Context, p prompt) (string, error) {
	body := generateRequest{
		SystemPrompt: p.system,
		UserPrompt:   p.user,
		Temperature:  p.temperature,
		MaxTokens:    p.maxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, retryable, err := c.once(ctx, headers, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable || ctx.Err() != nil {
			break
		}
	}
	return "", lastErr
}

func (c *Client) once(ctx context.Context, headers map[string]string, body generateRequest) (string, bool, error) {
	resp, err := c.http.PostJSON(ctx, c.cfg.BaseURL+generatePath, headers, body)
	if err != nil {
		return "", true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return "", resp.StatusCode >= http.StatusInternalServerError, fmt.Errorf("advisory service returned status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, fmt.Errorf("decode advisory response: %w", err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", false, fmt.Errorf("advisory response has no text")
	}
	return out.Text, false, nil
}
