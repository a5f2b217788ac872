package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/opencontainers/go-digest"
	"go.uber.org/zap"

	"github.com/yourusername/ncea-extract-go/internal/domain"
)

// HTTPFetcher implements domain.Fetcher over plain HTTP GET
type HTTPFetcher struct {
	client    *http.Client
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger
}

// NewHTTPFetcher creates a fetcher. The client is shared by all workers.
func NewHTTPFetcher(config *domain.DownloadConfig, logger *zap.Logger) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConnsPerHost: config.ConcurrentLimit,
		IdleConnTimeout:     90 * time.Second,
	}
	return &HTTPFetcher{
		client:    &http.Client{Transport: transport},
		timeout:   config.RequestTimeout,
		userAgent: config.UserAgent,
		logger:    logger,
	}
}

// Fetch downloads url into destPath. The body is streamed to a sibling
// ".part" file which is renamed into place once complete, so destPath only
// ever exists with a full body.
func (f *HTTPFetcher) Fetch(ctx context.Context, url, destPath string) domain.Outcome {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Failed(domain.ReasonTransport, "create request: %v", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return transportFailure(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		f.logger.Debug("Fetch rejected",
			zap.String("url", url),
			zap.Int("status", resp.StatusCode))
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			return domain.Failed(domain.ReasonNotFound, "status code %d", resp.StatusCode)
		}
		return domain.Failed(domain.ReasonHTTPStatus, "status code %d", resp.StatusCode)
	}

	n, dgst, err := writeAtomically(destPath, resp.Body)
	if err != nil {
		if isTimeout(err) {
			return domain.Failed(domain.ReasonTimeout, "%v", err)
		}
		if errors.Is(err, errBodyRead) {
			return domain.Failed(domain.ReasonTransport, "%v", err)
		}
		return domain.Failed(domain.ReasonWrite, "%v", err)
	}

	f.logger.Debug("Fetched file",
		zap.String("url", url),
		zap.String("path", destPath),
		zap.Int64("bytes", n))

	return domain.Downloaded(destPath, n, dgst.String())
}

var errBodyRead = errors.New("read response body")

// writeAtomically streams r into path via a temporary file and returns the
// byte count and sha256 digest of the content.
func writeAtomically(path string, r io.Reader) (int64, digest.Digest, error) {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		return 0, "", err
	}

	tmp := path + PartSuffix
	file, err := os.Create(tmp)
	if err != nil {
		return 0, "", fmt.Errorf("create %s: %w", tmp, err)
	}

	digester := digest.Canonical.Digester()
	n, err := io.Copy(io.MultiWriter(file, digester.Hash()), readerFunc(func(p []byte) (int, error) {
		n, err := r.Read(p)
		if err != nil && err != io.EOF {
			err = fmt.Errorf("%w: %w", errBodyRead, err)
		}
		return n, err
	}))
	if err == nil {
		err = file.Sync()
	}
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		os.Remove(tmp)
		return 0, "", err
	}

	return n, digester.Digest(), nil
}

type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) {
	return f(p)
}

func transportFailure(err error) domain.Outcome {
	if isTimeout(err) {
		return domain.Failed(domain.ReasonTimeout, "%v", err)
	}
	return domain.Failed(domain.ReasonTransport, "%v", err)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
