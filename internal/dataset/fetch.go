package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"grimm.is/georules/internal/brand"
	"grimm.is/georules/internal/clock"
	"grimm.is/georules/internal/logging"
)

// maxArchiveSize bounds a downloaded archive.
const maxArchiveSize = 512 * 1024 * 1024

// Fetcher downloads dataset archives into a local cache directory.
type Fetcher struct {
	cacheDir string
	maxAge   time.Duration
	client   *http.Client
	retry    RetryConfig
	fs       afero.Fs
	clock    clock.Clock
	logger   *logging.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient replaces the default 5 minute timeout client.
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = c }
}

// WithMaxAge sets how long a cached archive is reused. Zero always downloads.
func WithMaxAge(d time.Duration) FetcherOption {
	return func(f *Fetcher) { f.maxAge = d }
}

// WithRetry overrides the retry policy.
func WithRetry(cfg RetryConfig) FetcherOption {
	return func(f *Fetcher) { f.retry = cfg }
}

// WithFs sets the filesystem the cache lives on.
func WithFs(fs afero.Fs) FetcherOption {
	return func(f *Fetcher) { f.fs = fs }
}

// WithClock sets the clock used for cache ageing.
func WithClock(c clock.Clock) FetcherOption {
	return func(f *Fetcher) { f.clock = c }
}

// NewFetcher creates a Fetcher caching into cacheDir.
func NewFetcher(cacheDir string, logger *logging.Logger, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		cacheDir: cacheDir,
		maxAge:   24 * time.Hour,
		client:   &http.Client{Timeout: 5 * time.Minute},
		retry:    DefaultRetryConfig(),
		fs:       afero.NewOsFs(),
		clock:    clock.RealClock{},
		logger:   logging.OrDefault(logger).WithComponent("fetch"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// cacheMetadata is stored next to each cached archive.
type cacheMetadata struct {
	URL      string    `json:"url"`
	CachedAt time.Time `json:"cached_at"`
	ETag     string    `json:"etag,omitempty"`
	Size     int64     `json:"size"`
	Checksum string    `json:"checksum"`
}

// Fetch returns the local path of the archive at rawURL, downloading it
// unless a valid cached copy younger than the max age exists.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("invalid dataset url %q", rawURL)
	}

	archivePath, metaPath := f.cachePaths(u)

	if f.maxAge > 0 {
		err := f.validateCache(rawURL, archivePath, metaPath)
		if err == nil {
			f.logger.Info("Using cached dataset", "path", archivePath)
			return archivePath, nil
		}
		f.logger.Debug("Cache unusable", "url", rawURL, "reason", err)
	}

	if err := f.fs.MkdirAll(f.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}

	f.logger.Info("Downloading dataset", "url", rawURL)
	meta, err := RetryWithResult(ctx, f.retry, func() (*cacheMetadata, error) {
		return f.download(ctx, rawURL, archivePath)
	})
	if err != nil {
		return "", fmt.Errorf("failed to download %s: %w", rawURL, err)
	}

	data, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cache metadata: %w", err)
	}
	if err := afero.WriteFile(f.fs, metaPath, data, 0644); err != nil {
		// The archive itself is usable; only the next run loses the cache.
		f.logger.Warn("Failed to write cache metadata", "path", metaPath, "error", err)
	}

	f.logger.Info("Downloaded dataset", "path", archivePath, "bytes", meta.Size)
	return archivePath, nil
}

// cachePaths derives stable cache file names from the URL. The archive keeps
// the URL's extension so the extractor can see what it got.
func (f *Fetcher) cachePaths(u *url.URL) (archive, meta string) {
	sum := sha256.Sum256([]byte(u.String()))
	key := hex.EncodeToString(sum[:8])
	base := key + "-" + sanitizeBase(path.Base(u.Path))
	archive = filepath.Join(f.cacheDir, base)
	return archive, archive + ".meta"
}

func sanitizeBase(name string) string {
	if name == "" || name == "." || name == "/" {
		return "dataset"
	}
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func (f *Fetcher) download(ctx context.Context, rawURL, dest string) (*cacheMetadata, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", brand.UserAgent(brand.Version))

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, WrapTemporary(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("unexpected status %d", resp.StatusCode)
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return nil, WrapTemporary(statusErr)
		}
		return nil, statusErr
	}

	tmp := dest + ".tmp"
	out, err := f.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	hash := sha256.New()
	n, copyErr := io.Copy(io.MultiWriter(out, hash), io.LimitReader(resp.Body, maxArchiveSize+1))
	closeErr := out.Close()
	switch {
	case copyErr != nil:
		f.fs.Remove(tmp)
		return nil, WrapTemporary(fmt.Errorf("failed to read response: %w", copyErr))
	case closeErr != nil:
		f.fs.Remove(tmp)
		return nil, fmt.Errorf("failed to write %s: %w", tmp, closeErr)
	case n > maxArchiveSize:
		f.fs.Remove(tmp)
		return nil, fmt.Errorf("archive exceeds %d bytes", maxArchiveSize)
	}

	if err := f.fs.Rename(tmp, dest); err != nil {
		return nil, fmt.Errorf("failed to move archive into place: %w", err)
	}

	return &cacheMetadata{
		URL:      rawURL,
		CachedAt: f.clock.Now(),
		ETag:     resp.Header.Get("ETag"),
		Size:     n,
		Checksum: hex.EncodeToString(hash.Sum(nil)),
	}, nil
}

// validateCache checks that a cached archive exists, belongs to rawURL, is
// younger than the max age and still matches its checksum.
func (f *Fetcher) validateCache(rawURL, archivePath, metaPath string) error {
	raw, err := afero.ReadFile(f.fs, metaPath)
	if err != nil {
		return fmt.Errorf("cache metadata miss")
	}

	var meta cacheMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return fmt.Errorf("invalid cache metadata: %w", err)
	}
	if meta.URL != rawURL {
		return fmt.Errorf("cache belongs to %s", meta.URL)
	}
	if age := f.clock.Since(meta.CachedAt); age > f.maxAge {
		return fmt.Errorf("cache expired (%s old)", age.Round(time.Second))
	}

	file, err := f.fs.Open(archivePath)
	if err != nil {
		return fmt.Errorf("cache miss")
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return fmt.Errorf("failed to read cached archive: %w", err)
	}
	if hex.EncodeToString(hash.Sum(nil)) != meta.Checksum {
		return fmt.Errorf("cache checksum mismatch")
	}
	return nil
}

// ClearCache removes every cached archive.
func (f *Fetcher) ClearCache() error {
	if f.cacheDir == "" {
		return nil
	}
	return f.fs.RemoveAll(f.cacheDir)
}
