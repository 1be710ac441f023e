package imagesearch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"

	"coverkeep/internal/logging"
	"coverkeep/internal/services"
)

const (
	defaultTimeout = 30 * time.Second
	maxResults     = 10
)

// Config configures the Custom Search client.
type Config struct {
	APIKey   string
	EngineID string
	Timeout  time.Duration
	// Endpoint and HTTPClient override the API transport, mainly for tests.
	Endpoint   string
	HTTPClient *http.Client
}

// Client searches the web for cover images through the Custom Search JSON API.
type Client struct {
	svc      *customsearch.Service
	engineID string
	timeout  time.Duration
	logger   *slog.Logger
}

// New constructs a search client.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.EngineID) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "search", "init client",
			"search api_key and engine_id are required; set them in config.toml or COVERKEEP_SEARCH_API_KEY/COVERKEEP_SEARCH_ENGINE_ID", nil)
	}
	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "search", "init client", "failed to create custom search service", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		svc:      svc,
		engineID: cfg.EngineID,
		timeout:  timeout,
		logger:   logging.NewComponentLogger(logger, "imagesearch"),
	}, nil
}

// Query builds the search text for a title, optional author and category
// suffix: "<title> by <author> <suffix>".
func Query(title, author, suffix string) string {
	q := strings.TrimSpace(title)
	if author = strings.TrimSpace(author); author != "" {
		q += " by " + author
	}
	if suffix = strings.TrimSpace(suffix); suffix != "" {
		q += " " + suffix
	}
	return q
}

// SearchImages returns up to n image URLs for query.
func (c *Client) SearchImages(ctx context.Context, query string, n int) ([]string, error) {
	if n <= 0 {
		n = 1
	}
	if n > maxResults {
		n = maxResults
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.svc.Cse.List().
		Cx(c.engineID).
		Q(query).
		SearchType("image").
		Num(int64(n)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "search", "image query", fmt.Sprintf("search %q failed", query), err)
	}

	urls := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item == nil || strings.TrimSpace(item.Link) == "" {
			continue
		}
		urls = append(urls, item.Link)
	}
	logging.WithContext(ctx, c.logger).Debug("image search completed",
		logging.String("query", query),
		logging.Int("results", len(urls)),
		logging.Duration("elapsed", time.Since(start)))
	return urls, nil
}
