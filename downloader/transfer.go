package downloader

import (
	"context"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

const (
	// DefaultConnectTimeout is the fixed, short timeout for establishing a
	// connection to the remote server.
	DefaultConnectTimeout = 30 * time.Second

	// DefaultReadTimeout bounds the whole transfer. It is sized for large
	// files streamed over slow links.
	DefaultReadTimeout = 30 * time.Minute

	// DefaultChunkSize is the streaming chunk size (8 KiB).
	DefaultChunkSize = 8192

	// probeTimeout bounds the metadata probe independently of the main
	// transfer. Probe failure is never fatal.
	probeTimeout = 10 * time.Second
)

// EngineOptions configures the transfer engine. Zero values fall back to the
// package defaults.
type EngineOptions struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	ChunkSize      int
	TempDir        string
}

// Engine performs streaming HTTP downloads to local storage, reporting
// progress as whole percentages and classifying every failure.
type Engine struct {
	opts   EngineOptions
	client *http.Client
	probe  *http.Client
	logger *log.Logger
}

// NewEngine creates a transfer engine with the given options
func NewEngine(opts EngineOptions, logger *log.Logger) *Engine {
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if logger == nil {
		logger = log.Default()
	}

	dialer := &net.Dialer{Timeout: opts.ConnectTimeout}
	transport := &http.Transport{
		DialContext:       dialer.DialContext,
		ForceAttemptHTTP2: true,
	}

	return &Engine{
		opts: opts,
		// The read timeout is applied per request via context deadline,
		// not as a client-wide Timeout.
		client: &http.Client{Transport: transport},
		probe:  &http.Client{Transport: transport, Timeout: probeTimeout},
		logger: logger,
	}
}

// probeMetadata issues a HEAD request to learn the declared content length
// and a header-derived filename. Any failure degrades to an unknown size and
// a URL-derived name.
func (e *Engine) probeMetadata(ctx context.Context, rawURL string) (filename string, totalSize int64) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return "", 0
	}

	resp, err := e.probe.Do(req)
	if err != nil {
		e.logger.Printf("HEAD probe failed for %s, proceeding with GET: %v", rawURL, err)
		return "", 0
	}
	defer resp.Body.Close()

	filename = FilenameFromHeader(resp.Header.Get("Content-Disposition"))
	if resp.ContentLength > 0 {
		totalSize = resp.ContentLength
	}
	return filename, totalSize
}

// Download fetches req.URL to a file under the engine's temp directory,
// streaming the body in fixed-size chunks and invoking onProgress with
// strictly increasing whole percentages (at most 101 calls per job). When
// the total size is unknown, no progress is reported at all.
//
// The artifact lives in a per-job subdirectory named after jobID, so
// concurrent jobs never collide on a shared filename. On every failure the
// partial artifact is removed before the classified error is returned; on
// success the caller owns the artifact and is responsible for removing it
// (see RemoveArtifact).
func (e *Engine) Download(ctx context.Context, jobID string, req Request, onProgress ProgressFunc) (string, error) {
	e.logger.Printf("Starting download %s: %s", jobID, req.URL)

	filename, totalSize := e.probeMetadata(ctx, req.URL)
	if filename == "" {
		filename = FilenameFromURL(req.URL)
	}
	if totalSize == 0 {
		totalSize = req.SizeHint
	}

	jobDir := filepath.Join(e.opts.TempDir, jobID)
	if err := os.MkdirAll(jobDir, 0o755); err != nil {
		return "", ClassifyWriteError(err)
	}
	localPath := filepath.Join(jobDir, filename)

	readTimeout := e.opts.ReadTimeout
	if req.ReadTimeout > 0 {
		readTimeout = req.ReadTimeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, req.URL, nil)
	if err != nil {
		e.cleanup(jobDir)
		return "", NewDownloadErrorWithCause(ErrorRequest, "failed to build download request", err)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		e.cleanup(jobDir)
		return "", ClassifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.cleanup(jobDir)
		return "", NewHTTPError(resp.StatusCode, resp.Status)
	}

	if totalSize == 0 && resp.ContentLength > 0 {
		totalSize = resp.ContentLength
	}

	file, err := os.Create(localPath)
	if err != nil {
		e.cleanup(jobDir)
		return "", ClassifyWriteError(err)
	}

	var received int64
	lastPercent := -1
	buf := make([]byte, e.opts.ChunkSize)

	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := file.Write(buf[:n]); writeErr != nil {
				file.Close()
				e.cleanup(jobDir)
				return "", ClassifyWriteError(writeErr)
			}
			received += int64(n)

			if onProgress != nil && totalSize > 0 {
				percent := int(received * 100 / totalSize)
				if percent > 100 {
					percent = 100
				}
				if percent > lastPercent {
					onProgress(percent)
					lastPercent = percent
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			file.Close()
			e.cleanup(jobDir)
			return "", ClassifyTransportError(readErr)
		}
	}

	if err := file.Close(); err != nil {
		e.cleanup(jobDir)
		return "", ClassifyWriteError(err)
	}

	// Integer rounding can stop the loop short of 100 when the size was
	// known; callers must always observe completion.
	if onProgress != nil && totalSize > 0 && lastPercent < 100 {
		onProgress(100)
	}

	e.logger.Printf("Download %s complete: %s (%d bytes)", jobID, localPath, received)
	return localPath, nil
}

// cleanup removes a job's temp directory and everything in it
func (e *Engine) cleanup(jobDir string) {
	if err := os.RemoveAll(jobDir); err != nil {
		e.logger.Printf("Failed to remove partial artifact dir %s: %v", jobDir, err)
	}
}

// RemoveArtifact deletes a completed artifact together with its per-job
// directory. Called by the owner of a successful download after handoff.
func RemoveArtifact(localPath string) error {
	if localPath == "" {
		return nil
	}
	return os.RemoveAll(filepath.Dir(localPath))
}
