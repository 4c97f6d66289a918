package bot

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"go-leech-bot/downloader"
)

// ValidateURL checks that raw is a well-formed http(s) URL a download can be
// attempted against. It returns a validation error describing the first
// problem found.
func ValidateURL(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return downloader.NewDownloadError(downloader.ErrorValidation, "no URL provided")
	}

	if strings.ContainsAny(raw, "<>\"'") {
		return downloader.NewDownloadError(downloader.ErrorValidation, "URL contains invalid characters")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return downloader.NewDownloadErrorWithCause(downloader.ErrorValidation, "URL could not be parsed", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return downloader.NewDownloadError(downloader.ErrorValidation, "only http and https URLs are supported")
	}

	if parsed.Host == "" {
		return downloader.NewDownloadError(downloader.ErrorValidation, "URL has no host")
	}

	return nil
}

// RateLimiter enforces a per-user cooldown between download requests. The
// check-and-mark is a single atomic step so concurrent requests from the
// same user cannot both pass.
type RateLimiter struct {
	mu       sync.Mutex
	lastSeen map[int64]time.Time
	cooldown time.Duration
	now      func() time.Time
}

// NewRateLimiter creates a rate limiter with the given per-user cooldown
func NewRateLimiter(cooldown time.Duration) *RateLimiter {
	return &RateLimiter{
		lastSeen: make(map[int64]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Check records an attempt by userID. It returns nil if the attempt is
// allowed, or an ErrorRateLimited error carrying the remaining wait in whole
// seconds (rounded up, at least 1). Allowed attempts start a new cooldown
// window; denied attempts do not extend it.
func (rl *RateLimiter) Check(userID int64) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	last, seen := rl.lastSeen[userID]
	if seen {
		elapsed := now.Sub(last)
		if elapsed < rl.cooldown {
			remaining := rl.cooldown - elapsed
			waitSeconds := int((remaining + time.Second - 1) / time.Second)
			if waitSeconds < 1 {
				waitSeconds = 1
			}
			return downloader.NewRateLimitedError(waitSeconds)
		}
	}

	rl.lastSeen[userID] = now
	return nil
}

// Reap drops entries older than maxAge so the map does not grow without
// bound over the lifetime of the process
func (rl *RateLimiter) Reap(maxAge time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-maxAge)
	removed := 0
	for userID, last := range rl.lastSeen {
		if last.Before(cutoff) {
			delete(rl.lastSeen, userID)
			removed++
		}
	}
	return removed
}

// Size returns the number of tracked users
func (rl *RateLimiter) Size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.lastSeen)
}
