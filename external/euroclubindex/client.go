// Package euroclubindex is the client for the match-odds provider. Team
// names in its payloads follow the provider's own naming scheme and must
// be resolved before the odds are joinable.
package euroclubindex

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/dani537/fantasy-crew/internal/domain/odds"
	"github.com/dani537/fantasy-crew/internal/platform/logging"
)

const (
	defaultBaseURL  = "https://www.euroclubindex.com"
	matchOddsPath   = "/wp-json/happyhorizon/v1/get-module-match-odds/"
	defaultLeagueID = 67
)

var errOddsTransient = crerr.New("euroclubindex transient failure")

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	LeagueID   int
	Timeout    time.Duration
	MaxRetries int
	Logger     *logging.Logger
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	leagueID   int
	maxRetries int
	logger     *logging.Logger
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
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	leagueID := cfg.LeagueID
	if leagueID <= 0 {
		leagueID = defaultLeagueID
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		leagueID:   leagueID,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

type matchOddsEnvelope struct {
	MatchOdds []struct {
		Date       string   `json:"d_Date"`
		HomeTeam   string   `json:"c_HomeTeam"`
		AwayTeam   string   `json:"c_Awayteam"`
		OddHomeWin float64  `json:"n_OddHomeWin"`
		OddDraw    float64  `json:"n_OddDraw"`
		OddAwayWin float64  `json:"n_OddAwayWin"`
		HomeGoals  *float64 `json:"n_HomeGoals"`
		AwayGoals  *float64 `json:"n_AwayGoals"`
	} `json:"matchOdds"`
}

// MatchOdds fetches the provider's quoted fixtures for the configured
// league. Played fixtures come back too, identified by their recorded
// goal counts.
func (c *Client) MatchOdds(ctx context.Context) ([]odds.Fixture, error) {
	fullURL := fmt.Sprintf("%s%s?selected_league=%d", c.baseURL, matchOddsPath, c.leagueID)

	raw, err := c.executeRequest(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch match odds: %w", err)
	}

	var envelope matchOddsEnvelope
	if err := sonic.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode match odds payload: %w", err)
	}

	fixtures := make([]odds.Fixture, 0, len(envelope.MatchOdds))
	for _, m := range envelope.MatchOdds {
		fixtures = append(fixtures, odds.Fixture{
			Date:      m.Date,
			HomeName:  m.HomeTeam,
			AwayName:  m.AwayTeam,
			HomeWin:   m.OddHomeWin,
			Draw:      m.OddDraw,
			AwayWin:   m.OddAwayWin,
			HomeGoals: goalCount(m.HomeGoals),
			AwayGoals: goalCount(m.AwayGoals),
		})
	}

	c.logger.InfoContext(ctx, "match odds fetched", "fixtures", len(fixtures))
	return fixtures, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "*/*")
		req.Header.Set("x-requested-with", "XMLHttpRequest")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errOddsTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errOddsTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				lastErr = fmt.Errorf("%w: provider status=%d", errOddsTransient, resp.StatusCode)
			default:
				return nil, fmt.Errorf("provider status=%d", resp.StatusCode)
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
	c.logger.WarnContext(ctx, "match odds request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func goalCount(v *float64) *int {
	if v == nil {
		return nil
	}
	n := int(*v)
	return &n
}
