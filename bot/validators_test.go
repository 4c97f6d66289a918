package bot

import (
	"errors"
	"testing"
	"time"

	"go-leech-bot/downloader"
)

func TestValidateURL(t *testing.T) {
	testCases := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{
			name:    "Valid HTTPS URL",
			url:     "https://example.org/files/archive.zip",
			wantErr: false,
		},
		{
			name:    "Valid HTTP URL",
			url:     "http://example.org/file.bin",
			wantErr: false,
		},
		{
			name:    "URL with query string",
			url:     "https://example.org/report.pdf?token=xyz",
			wantErr: false,
		},
		{
			name:    "Leading and trailing whitespace",
			url:     "  https://example.org/file.bin  ",
			wantErr: false,
		},
		{
			name:    "Empty string",
			url:     "",
			wantErr: true,
		},
		{
			name:    "Only whitespace",
			url:     "   ",
			wantErr: true,
		},
		{
			name:    "FTP scheme rejected",
			url:     "ftp://example.org/file.bin",
			wantErr: true,
		},
		{
			name:    "File scheme rejected",
			url:     "file:///etc/passwd",
			wantErr: true,
		},
		{
			name:    "No scheme",
			url:     "example.org/file.bin",
			wantErr: true,
		},
		{
			name:    "No host",
			url:     "https:///file.bin",
			wantErr: true,
		},
		{
			name:    "Angle brackets rejected",
			url:     "https://example.org/<script>",
			wantErr: true,
		},
		{
			name:    "Quotes rejected",
			url:     `https://example.org/file".bin`,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateURL(tc.url)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error for %q, got nil", tc.url)
				} else if !downloader.IsDownloadError(err, downloader.ErrorValidation) {
					t.Errorf("Expected validation error for %q, got: %v", tc.url, err)
				}
			} else if err != nil {
				t.Errorf("Unexpected error for %q: %v", tc.url, err)
			}
		})
	}
}

func newTestLimiter(cooldown time.Duration) (*RateLimiter, *time.Time) {
	limiter := NewRateLimiter(cooldown)
	current := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }
	return limiter, &current
}

func TestRateLimiter_CooldownWindow(t *testing.T) {
	limiter, current := newTestLimiter(10 * time.Second)

	// First request is always allowed
	if err := limiter.Check(42); err != nil {
		t.Fatalf("First request should be allowed, got: %v", err)
	}

	// Immediate retry is denied with the full wait
	err := limiter.Check(42)
	if err == nil {
		t.Fatal("Expected rate limit error, got nil")
	}
	var dlErr *downloader.DownloadError
	if !errors.As(err, &dlErr) || !dlErr.IsType(downloader.ErrorRateLimited) {
		t.Fatalf("Expected rate limited error, got: %v", err)
	}
	if dlErr.WaitSeconds() != 10 {
		t.Errorf("Expected 10 second wait, got %d", dlErr.WaitSeconds())
	}

	// Partway through the window the wait shrinks, rounded up
	*current = current.Add(7500 * time.Millisecond)
	err = limiter.Check(42)
	if !errors.As(err, &dlErr) {
		t.Fatalf("Expected rate limit error, got: %v", err)
	}
	if dlErr.WaitSeconds() != 3 {
		t.Errorf("Expected 3 second wait (rounded up), got %d", dlErr.WaitSeconds())
	}

	// After the window a request is allowed again
	*current = current.Add(3 * time.Second)
	if err := limiter.Check(42); err != nil {
		t.Errorf("Request after cooldown should be allowed, got: %v", err)
	}
}

func TestRateLimiter_DeniedAttemptsDoNotExtend(t *testing.T) {
	limiter, current := newTestLimiter(10 * time.Second)

	if err := limiter.Check(1); err != nil {
		t.Fatalf("First request should be allowed, got: %v", err)
	}

	// Hammering during the window must not push the window out
	for i := 0; i < 5; i++ {
		*current = current.Add(time.Second)
		if err := limiter.Check(1); err == nil {
			t.Fatalf("Request at +%ds should be denied", i+1)
		}
	}

	*current = current.Add(5 * time.Second) // 10s since the allowed request
	if err := limiter.Check(1); err != nil {
		t.Errorf("Request at cooldown boundary should be allowed, got: %v", err)
	}
}

func TestRateLimiter_UsersIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(10 * time.Second)

	if err := limiter.Check(1); err != nil {
		t.Fatalf("User 1 first request should be allowed, got: %v", err)
	}
	if err := limiter.Check(2); err != nil {
		t.Errorf("User 2 should not be affected by user 1's cooldown, got: %v", err)
	}
	if err := limiter.Check(1); err == nil {
		t.Error("User 1 retry should be denied")
	}
}

func TestRateLimiter_Reap(t *testing.T) {
	limiter, current := newTestLimiter(10 * time.Second)

	limiter.Check(1)
	*current = current.Add(time.Hour)
	limiter.Check(2)

	removed := limiter.Reap(30 * time.Minute)
	if removed != 1 {
		t.Errorf("Expected 1 reaped entry, got %d", removed)
	}
	if limiter.Size() != 1 {
		t.Errorf("Expected 1 tracked user after reap, got %d", limiter.Size())
	}

	// The reaped user starts fresh
	if err := limiter.Check(1); err != nil {
		t.Errorf("Reaped user should be allowed immediately, got: %v", err)
	}
}
