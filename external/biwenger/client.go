// Package biwenger is the client for the primary fantasy-football data
// source. It serves two API surfaces: the public CDN with competition
// data (no auth) and the account-scoped API with the user's private
// league, market and squad data (bearer token plus league headers).
package biwenger

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/dani537/fantasy-crew/internal/platform/cache"
	"github.com/dani537/fantasy-crew/internal/platform/logging"
	"github.com/dani537/fantasy-crew/internal/platform/resilience"
	"github.com/dani537/fantasy-crew/internal/usecase"
)

const (
	defaultCDNBaseURL = "https://cf.biwenger.com/api/v2"
	defaultAppBaseURL = "https://biwenger.as.com/api/v2"

	competitionPath = "/competitions/la-liga/data"
	roundsPath      = "/rounds/la-liga"
	loginPath       = "/auth/login"
	accountPath     = "/account"
	leaguePath      = "/league"
	marketPath      = "/market"

	defaultScoreType = 1

	competitionCacheTTL = 5 * time.Minute
)

var bearerTokenRegex = regexp.MustCompile(`Bearer\s+[^\s"']+`)
var errBiwengerTransient = crerr.New("biwenger transient failure")

type ClientConfig struct {
	HTTPClient *http.Client
	CDNBaseURL string
	AppBaseURL string

	// Credentials for Login. Token may be set directly instead.
	Email    string
	Password string
	Token    string

	LeagueID int64
	UserID   int64

	ScoreType      int
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

type Client struct {
	httpClient *http.Client
	cdnBaseURL string
	appBaseURL string

	email    string
	password string
	token    string
	leagueID int64
	userID   int64

	scoreType      int
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
	cache          *cache.Store
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 20 * time.Second
	}

	cdnBaseURL := strings.TrimRight(strings.TrimSpace(cfg.CDNBaseURL), "/")
	if cdnBaseURL == "" {
		cdnBaseURL = defaultCDNBaseURL
	}
	appBaseURL := strings.TrimRight(strings.TrimSpace(cfg.AppBaseURL), "/")
	if appBaseURL == "" {
		appBaseURL = defaultAppBaseURL
	}
	scoreType := cfg.ScoreType
	if scoreType <= 0 {
		scoreType = defaultScoreType
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		cdnBaseURL:     cdnBaseURL,
		appBaseURL:     appBaseURL,
		email:          strings.TrimSpace(cfg.Email),
		password:       cfg.Password,
		token:          strings.TrimSpace(cfg.Token),
		leagueID:       cfg.LeagueID,
		userID:         cfg.UserID,
		scoreType:      scoreType,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
		cache:          cache.NewStore(competitionCacheTTL),
	}
}

// doJSON runs one GET against fullURL, deduplicated across concurrent
// identical calls, and decodes the body into target. authenticated
// attaches the bearer token and league headers.
func (c *Client) doJSON(ctx context.Context, fullURL string, authenticated bool, target any) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "biwenger circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: primary data source is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, http.MethodGet, fullURL, nil, authenticated)
		if c.circuitEnabled {
			if reqErr != nil && crerr.Is(reqErr, errBiwengerTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}
	return raw, nil
}

func (c *Client) executeRequest(ctx context.Context, method, fullURL string, body io.Reader, authenticated bool) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json, text/plain, */*")
		if body != nil {
			req.Header.Set("content-type", "application/json")
		}
		if authenticated {
			req.Header.Set("authorization", "Bearer "+c.token)
			req.Header.Set("x-league", fmt.Sprintf("%d", c.leagueID))
			req.Header.Set("x-user", fmt.Sprintf("%d", c.userID))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errBiwengerTransient, c.sanitize(err.Error()))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errBiwengerTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: provider status=%d body=%s", errBiwengerTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "biwenger request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func (c *Client) sanitize(value string) string {
	value = strings.TrimSpace(value)
	if c.token != "" {
		value = strings.ReplaceAll(value, c.token, "REDACTED")
	}
	return bearerTokenRegex.ReplaceAllString(value, "Bearer REDACTED")
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func abbreviateBody(raw []byte) string {
	const limit = 256
	body := strings.TrimSpace(string(raw))
	if len(body) > limit {
		return body[:limit] + "..."
	}
	return body
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}
