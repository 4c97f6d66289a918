// Package downloader provides the streaming download engine used by the
// leech bot, together with its concurrency and progress-reporting glue.
//
// The package defines the building blocks for fetching a file from an
// arbitrary HTTP(S) URL:
//   - Engine: chunked streaming transfer with a HEAD probe, two-tier
//     timeouts, progress callbacks and a classified failure taxonomy
//   - Bridge: channel-based throttling of progress events across the
//     worker/caller boundary
//   - Pool: bounded worker pool executing transfer jobs concurrently
//   - Filename resolution and sanitization helpers
//   - Structured DownloadError types for every terminal failure kind
//
// This package is designed to be used with the Telegram bot system to
// provide real-time progress updates during download and upload operations.
package downloader
