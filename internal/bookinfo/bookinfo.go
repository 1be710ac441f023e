package bookinfo

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	books "google.golang.org/api/books/v1"
	"google.golang.org/api/option"

	"coverkeep/internal/logging"
	"coverkeep/internal/metadata"
	"coverkeep/internal/services"
)

const defaultTimeout = 15 * time.Second

// Config configures the volume lookup client.
type Config struct {
	APIKey     string
	Timeout    time.Duration
	Endpoint   string
	HTTPClient *http.Client
}

// Client suggests metadata records from the Google Books volumes API.
type Client struct {
	svc     *books.Service
	timeout time.Duration
	logger  *slog.Logger
}

// New constructs a client. The API key is optional for volume searches.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	var opts []option.ClientOption
	switch {
	case cfg.HTTPClient != nil:
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	case strings.TrimSpace(cfg.APIKey) != "":
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	default:
		opts = append(opts, option.WithoutAuthentication())
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	svc, err := books.NewService(ctx, opts...)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "bookinfo", "init client", "failed to create books service", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{svc: svc, timeout: timeout, logger: logging.NewComponentLogger(logger, "bookinfo")}, nil
}

// VolumeQuery builds an intitle/inauthor query.
func VolumeQuery(title, author string) string {
	parts := []string{fmt.Sprintf("intitle:%s", strings.TrimSpace(title))}
	if author = strings.TrimSpace(author); author != "" {
		parts = append(parts, fmt.Sprintf("inauthor:%s", author))
	}
	return strings.Join(parts, " ")
}

// Suggest returns a record built from the best matching volume. ok is false
// when nothing matched. The suggested title and author are the caller's
// input so the record keeps its composite key.
func (c *Client) Suggest(ctx context.Context, title, author string) (metadata.Record, bool, error) {
	if strings.TrimSpace(title) == "" {
		return metadata.Record{}, false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.svc.Volumes.List(VolumeQuery(title, author)).
		MaxResults(1).
		PrintType("books").
		Context(ctx).
		Do()
	if err != nil {
		return metadata.Record{}, false, services.Wrap(services.ErrExternalTool, "bookinfo", "volume query", title, err)
	}
	if resp == nil || len(resp.Items) == 0 || resp.Items[0].VolumeInfo == nil {
		c.logger.Debug("no volume found", logging.String("title", title))
		return metadata.Record{}, false, nil
	}
	info := resp.Items[0].VolumeInfo
	rec := recordFromVolume(title, author, info)
	c.logger.Debug("volume suggestion",
		logging.String("title", title),
		logging.String("volume_title", info.Title),
		logging.String("publication_date", rec.PublicationDate))
	return rec, true, nil
}

func recordFromVolume(title, author string, info *books.VolumeInfo) metadata.Record {
	rec := metadata.Record{
		Title:           strings.TrimSpace(title),
		Author:          strings.TrimSpace(author),
		PublicationDate: publicationYear(info.PublishedDate),
		Genres:          []string{},
	}
	if rec.Author == "" {
		rec.Author = strings.Join(info.Authors, ", ")
	}
	if info.PageCount > 0 {
		rec.PageCount = strconv.FormatInt(info.PageCount, 10)
	}
	for _, c := range info.Categories {
		if c = strings.TrimSpace(c); c != "" {
			rec.Genres = append(rec.Genres, c)
		}
	}
	return rec
}

// publicationYear keeps the leading year of dates like "1965-08-01" so the
// value parses in year filters.
func publicationYear(date string) string {
	date = strings.TrimSpace(date)
	if len(date) >= 4 {
		if _, err := strconv.Atoi(date[:4]); err == nil {
			return date[:4]
		}
	}
	return date
}
