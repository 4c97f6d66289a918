package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"go-leech-bot/config"
	"go-leech-bot/downloader"
	"go-leech-bot/storage"
)

// LeechHandler implements CommandHandler for the /leech command. It also
// serves as the default handler, so a bare download link sent to the bot
// runs the same flow.
//
// The flow is: validate, rate-limit, start status tracking, submit to the
// pool, await the result, enforce the size cap, upload to the dump channel,
// forward to the user, record history and clean up the artifact. Every
// terminal state edits the status message exactly once.
type LeechHandler struct {
	client   *TelegramBot
	pool     *downloader.Pool
	registry *ReporterRegistry
	limiter  *RateLimiter
	uploader Uploader
	history  *storage.HistoryStore
	cfg      *config.BotConfig
	logger   *log.Logger
}

// NewLeechHandler creates a new LeechHandler instance
func NewLeechHandler(
	client *TelegramBot,
	pool *downloader.Pool,
	registry *ReporterRegistry,
	limiter *RateLimiter,
	uploader Uploader,
	history *storage.HistoryStore,
	cfg *config.BotConfig,
	logger *log.Logger,
) *LeechHandler {
	return &LeechHandler{
		client:   client,
		pool:     pool,
		registry: registry,
		limiter:  limiter,
		uploader: uploader,
		history:  history,
		cfg:      cfg,
		logger:   logger,
	}
}

// Command returns the command string this handler processes
func (h *LeechHandler) Command() string {
	return "leech"
}

// Handle processes a download request end to end
func (h *LeechHandler) Handle(ctx context.Context, cmdCtx *CommandContext) error {
	h.logger.Printf("Processing leech request for user %d in chat %d", cmdCtx.UserID, cmdCtx.ChatID)

	rawURL, asVideo, err := parseLeechArgs(cmdCtx.Args)
	if err != nil {
		return err
	}

	if err := ValidateURL(rawURL); err != nil {
		return err
	}

	if err := h.limiter.Check(cmdCtx.UserID); err != nil {
		return err
	}

	// The status message starts with the URL-derived name. The engine may
	// discover a better one from response headers, so the final filename
	// comes from the job result.
	displayName := downloader.FilenameFromURL(rawURL)

	reporter := downloader.NewStatusReporter(h.client.GetClient().API())
	if err := reporter.StartTracking(ctx, cmdCtx.ChatID, displayName); err != nil {
		return err
	}

	handle, err := h.pool.Submit(downloader.Request{URL: rawURL})
	if err != nil {
		// The status message becomes the single outcome message
		busy := "I'm at capacity right now, please try again in a few minutes"
		if !errors.Is(err, downloader.ErrQueueFull) {
			busy = "I can't accept downloads right now, please try again later"
		}
		if reportErr := reporter.ReportError(downloader.NewDownloadError(downloader.ErrorUnknown, busy)); reportErr != nil {
			h.logger.Printf("Failed to edit status for rejected request: %v", reportErr)
		}
		reporter.Stop()
		h.logger.Printf("Rejected leech request for user %d: %v", cmdCtx.UserID, err)
		return nil
	}

	h.registry.Register(handle.ID, reporter)
	defer func() {
		h.registry.Deregister(handle.ID)
		reporter.Stop()
	}()

	h.logger.Printf("Job %s submitted for user %d: %s", handle.ID, cmdCtx.UserID, rawURL)

	result := <-handle.Done

	if result.Err != nil {
		h.reportFailure(reporter, cmdCtx, handle.ID, rawURL, displayName, result.Err)
		return nil
	}

	h.deliver(ctx, reporter, cmdCtx, handle.ID, rawURL, result.Path, asVideo)
	return nil
}

// deliver handles the post-download half of the flow: size cap, upload,
// forward, history and cleanup
func (h *LeechHandler) deliver(
	ctx context.Context,
	reporter *downloader.StatusReporter,
	cmdCtx *CommandContext,
	jobID, rawURL, path string,
	asVideo bool,
) {
	filename := filepath.Base(path)

	info, err := os.Stat(path)
	if err != nil {
		h.reportFailure(reporter, cmdCtx, jobID, rawURL, filename, downloader.ClassifyWriteError(err))
		downloader.RemoveArtifact(path)
		return
	}
	size := info.Size()

	if maxSize := h.cfg.Download.MaxFileSize; size > maxSize {
		h.reportFailure(reporter, cmdCtx, jobID, rawURL, filename,
			downloader.NewDownloadError(downloader.ErrorValidation,
				fmt.Sprintf("file is too large: %s (limit %s)",
					humanize.IBytes(uint64(size)), humanize.IBytes(uint64(maxSize)))))
		downloader.RemoveArtifact(path)
		return
	}

	if err := reporter.ReportUploading(); err != nil {
		h.logger.Printf("Failed to update status for job %s: %v", jobID, err)
	}

	messageID, err := h.uploader.Upload(ctx, &UploadRequest{
		Path:     path,
		Filename: filename,
		Caption:  filename,
		AsVideo:  asVideo,
	})
	if err != nil {
		h.reportFailure(reporter, cmdCtx, jobID, rawURL, filename,
			downloader.NewDownloadErrorWithCause(downloader.ErrorConnection, "failed to upload file to Telegram", err))
		downloader.RemoveArtifact(path)
		return
	}

	// The artifact lives in the dump channel now, the local copy can go
	downloader.RemoveArtifact(path)

	if cmdCtx.ChatID != h.cfg.DumpChannelID {
		if err := h.uploader.Forward(ctx, messageID, cmdCtx.ChatID); err != nil {
			h.reportFailure(reporter, cmdCtx, jobID, rawURL, filename,
				downloader.NewDownloadErrorWithCause(downloader.ErrorConnection, "failed to deliver the file to this chat", err))
			return
		}
	}

	if err := reporter.ReportComplete(size); err != nil {
		h.logger.Printf("Failed to send completion status for job %s: %v", jobID, err)
	}

	h.recordHistory(cmdCtx, jobID, rawURL, filename, size, storage.OutcomeCompleted, "")
	h.logger.Printf("Job %s delivered to user %d: %s (%s)",
		jobID, cmdCtx.UserID, filename, humanize.IBytes(uint64(size)))
}

// reportFailure edits the status message with the error and records the
// failed outcome
func (h *LeechHandler) reportFailure(
	reporter *downloader.StatusReporter,
	cmdCtx *CommandContext,
	jobID, rawURL, filename string,
	cause error,
) {
	if err := reporter.ReportError(cause); err != nil {
		h.logger.Printf("Failed to send error status for job %s: %v", jobID, err)
	}

	errorKind := "unknown"
	var dlErr *downloader.DownloadError
	if errors.As(cause, &dlErr) {
		errorKind = dlErr.Type.String()
	}

	h.recordHistory(cmdCtx, jobID, rawURL, filename, 0, storage.OutcomeFailed, errorKind)
	h.logger.Printf("Job %s failed for user %d: %v", jobID, cmdCtx.UserID, cause)
}

// recordHistory persists a terminal outcome, logging rather than failing on
// storage errors
func (h *LeechHandler) recordHistory(
	cmdCtx *CommandContext,
	jobID, rawURL, filename string,
	size int64,
	outcome storage.Outcome,
	errorKind string,
) {
	if h.history == nil {
		return
	}

	record := &storage.DownloadRecord{
		JobID:     jobID,
		UserID:    cmdCtx.UserID,
		ChatID:    cmdCtx.ChatID,
		URL:       rawURL,
		Filename:  filename,
		SizeBytes: size,
		Outcome:   outcome,
		ErrorKind: errorKind,
		CreatedAt: time.Now(),
	}

	if err := h.history.Record(record); err != nil {
		h.logger.Printf("Failed to record history for job %s: %v", jobID, err)
	}
}

// parseLeechArgs splits the command arguments into the URL and the optional
// video flag
func parseLeechArgs(args string) (string, bool, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return "", false, downloader.NewDownloadError(downloader.ErrorValidation,
			"no URL provided, usage: /leech <url> [video]")
	}

	rawURL := fields[0]
	asVideo := false
	for _, flag := range fields[1:] {
		if strings.EqualFold(flag, "video") {
			asVideo = true
		}
	}

	return rawURL, asVideo, nil
}
