// Package jornadaperfecta pulls the fantasy news RSS feed and trims each
// entry down for downstream report briefs.
package jornadaperfecta

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/dani537/fantasy-crew/internal/domain/news"
	"github.com/dani537/fantasy-crew/internal/platform/logging"
)

const (
	defaultFeedURL = "https://www.jornadaperfecta.com/feed/"

	// summaryLimit caps the cleaned summary length in runes; downstream
	// consumers pay per character.
	summaryLimit = 300
)

var htmlTagRegex = regexp.MustCompile(`<[^>]+>`)

type ClientConfig struct {
	HTTPClient *http.Client
	FeedURL    string
	Timeout    time.Duration
	Logger     *logging.Logger
}

type Client struct {
	parser  *gofeed.Parser
	feedURL string
	logger  *logging.Logger
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

	parser := gofeed.NewParser()
	parser.Client = httpClient

	feedURL := strings.TrimSpace(cfg.FeedURL)
	if feedURL == "" {
		feedURL = defaultFeedURL
	}

	return &Client{parser: parser, feedURL: feedURL, logger: logger}
}

// Latest fetches the feed and returns its entries cleaned: HTML stripped
// from the summary, whitespace collapsed, the summary truncated, tags
// kept as a list, and the publication timestamp reformatted when it
// parses.
func (c *Client) Latest(ctx context.Context) ([]news.Item, error) {
	feed, err := c.parser.ParseURLWithContext(c.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch news feed: %w", err)
	}

	items := make([]news.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		items = append(items, news.Item{
			Published: cleanPublished(entry),
			Title:     strings.TrimSpace(entry.Title),
			Summary:   CleanSummary(entry.Description),
			Link:      entry.Link,
			Tags:      entry.Categories,
		})
	}

	c.logger.InfoContext(ctx, "news feed fetched", "items", len(items))
	return items, nil
}

func cleanPublished(entry *gofeed.Item) string {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC().Format("2006-01-02 15:04")
	}
	return strings.TrimSpace(entry.Published)
}

// CleanSummary strips markup, collapses whitespace and truncates overly
// long text with an ellipsis.
func CleanSummary(raw string) string {
	text := htmlTagRegex.ReplaceAllString(raw, "")
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) > summaryLimit {
		return string(runes[:summaryLimit-3]) + "..."
	}
	return text
}
