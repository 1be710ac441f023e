package imagesearch

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	_ "golang.org/x/image/webp"

	"coverkeep/internal/fileutil"
	"coverkeep/internal/logging"
	"coverkeep/internal/services"
)

const maxImageBytes = 25 << 20

// Downloader fetches image URLs to disk.
type Downloader struct {
	HTTPClient *http.Client
	logger     *slog.Logger
}

// NewDownloader creates a downloader with the given request timeout.
func NewDownloader(timeout time.Duration, logger *slog.Logger) *Downloader {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Downloader{
		HTTPClient: &http.Client{Timeout: timeout},
		logger:     logging.NewComponentLogger(logger, "downloader"),
	}
}

// Download saves the image at url to dest. The body must decode as an image;
// anything else is rejected without touching dest.
func (d *Downloader) Download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return services.Wrap(services.ErrValidation, "download", "build request", url, err)
	}
	req.Header.Set("User-Agent", "coverkeep/1.0")

	resp, err := d.HTTPClient.Do(req)
	if err != nil {
		return services.Wrap(services.ErrTransient, "download", "fetch", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return services.Wrap(services.ErrExternalTool, "download", "fetch", fmt.Sprintf("%s returned status %d", url, resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return services.Wrap(services.ErrTransient, "download", "read body", url, err)
	}
	if len(data) > maxImageBytes {
		return services.Wrap(services.ErrValidation, "download", "read body", fmt.Sprintf("%s exceeds %d bytes", url, maxImageBytes), nil)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return services.Wrap(services.ErrValidation, "download", "decode", fmt.Sprintf("%s is not a supported image", url), err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "download", "ensure directory", filepath.Dir(dest), err)
	}
	if err := fileutil.WriteFileAtomic(dest, data, 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "download", "write", dest, err)
	}

	logging.WithContext(ctx, d.logger).Debug("image downloaded",
		logging.String("url", url),
		logging.String("dest", dest),
		logging.String("format", format),
		logging.Int("width", cfg.Width),
		logging.Int("height", cfg.Height))
	return nil
}
