// Package comuniate scrapes probable lineups from the external lineup
// site. The site has no API: the current round and the club map come
// from the homepage markup, and each club's lineup is an HTML fragment
// served by a form-encoded AJAX endpoint.
package comuniate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	ants "github.com/panjf2000/ants/v2"

	"github.com/dani537/fantasy-crew/internal/domain/lineup"
	"github.com/dani537/fantasy-crew/internal/platform/logging"
)

const (
	defaultBaseURL    = "https://www.comuniate.com"
	lineupPath        = "/ajax/pintar_alineacion.php"
	defaultMode       = "clasico"
	defaultPoolSize   = 4
	teamAltTextPrefix = "Alineación y plantilla de "
)

var errComuniateTransient = crerr.New("comuniate transient failure")

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Mode       string

	// PoolSize bounds the concurrent per-team lineup fetches.
	PoolSize   int
	Timeout    time.Duration
	MaxRetries int
	Logger     *logging.Logger
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	mode       string
	poolSize   int
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
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	mode := strings.TrimSpace(cfg.Mode)
	if mode == "" {
		mode = defaultMode
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = defaultPoolSize
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		mode:       mode,
		poolSize:   poolSize,
		maxRetries: cfg.MaxRetries,
		logger:     logger,
	}
}

// Signals loads the site metadata, then fetches and parses every club's
// probable lineup through a bounded worker pool. Clubs whose fetch or
// parse fails are skipped with a warning; the remaining signals are
// still an answer. The whole call fails only when the metadata load
// does, since no club can be fetched without it.
func (c *Client) Signals(ctx context.Context) ([]lineup.Signal, error) {
	meta, err := c.loadSiteMeta(ctx)
	if err != nil {
		return nil, fmt.Errorf("load lineup site metadata: %w", err)
	}

	teamIDs := make([]int64, 0, len(meta.TeamNames))
	for id := range meta.TeamNames {
		teamIDs = append(teamIDs, id)
	}
	sort.Slice(teamIDs, func(i, j int) bool { return teamIDs[i] < teamIDs[j] })

	pool, err := ants.NewPool(c.poolSize)
	if err != nil {
		return nil, fmt.Errorf("create lineup worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu         sync.Mutex
		wg         sync.WaitGroup
		byTeam     = make(map[int64][]lineup.Signal, len(teamIDs))
		failedSite int
	)
	for _, teamID := range teamIDs {
		teamID := teamID
		teamName := meta.TeamNames[teamID]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			signals, fetchErr := c.teamSignals(ctx, meta.Round, teamID, teamName)
			mu.Lock()
			defer mu.Unlock()
			if fetchErr != nil {
				failedSite++
				c.logger.WarnContext(ctx, "skipping club lineup", "team", teamName, "error", fetchErr)
				return
			}
			byTeam[teamID] = signals
		})
		if submitErr != nil {
			wg.Done()
			return nil, fmt.Errorf("submit lineup fetch: %w", submitErr)
		}
	}
	wg.Wait()

	out := make([]lineup.Signal, 0, len(teamIDs)*11)
	for _, teamID := range teamIDs {
		out = append(out, byTeam[teamID]...)
	}

	c.logger.InfoContext(ctx, "lineup scrape finished",
		"round", meta.Round, "clubs", len(teamIDs), "failed", failedSite, "signals", len(out))
	return out, nil
}

func (c *Client) teamSignals(ctx context.Context, round int, teamID int64, teamName string) ([]lineup.Signal, error) {
	form := url.Values{}
	form.Set("id_jornada", strconv.Itoa(round))
	form.Set("id_equipo", strconv.FormatInt(teamID, 10))
	form.Set("modo", c.mode)

	fragment, err := c.post(ctx, c.baseURL+lineupPath, form)
	if err != nil {
		return nil, err
	}

	signals, err := ParseLineupFragment(fragment)
	if err != nil {
		return nil, err
	}
	for i := range signals {
		signals[i].TeamName = teamName
		signals[i].TeamID = teamID
	}
	return signals, nil
}

func (c *Client) get(ctx context.Context, fullURL string) (string, error) {
	return c.request(ctx, http.MethodGet, fullURL, nil)
}

func (c *Client) post(ctx context.Context, fullURL string, form url.Values) (string, error) {
	return c.request(ctx, http.MethodPost, fullURL, form)
}

func (c *Client) request(ctx context.Context, method, fullURL string, form url.Values) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		var body io.Reader
		if form != nil {
			body = strings.NewReader(form.Encode())
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
		if err != nil {
			return "", fmt.Errorf("build request: %w", err)
		}
		if form != nil {
			req.Header.Set("content-type", "application/x-www-form-urlencoded")
		}
		req.Header.Set("accept", "text/html,*/*")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errComuniateTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errComuniateTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return string(raw), nil
			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				lastErr = fmt.Errorf("%w: site status=%d", errComuniateTransient, resp.StatusCode)
			default:
				return "", fmt.Errorf("site status=%d", resp.StatusCode)
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * 2 * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("site request failed")
	}
	return "", lastErr
}
