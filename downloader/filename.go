package downloader

import (
	"path"
	"regexp"
	"strings"
)

// DefaultFilename is used when no usable name can be derived from the
// response headers or the URL.
const DefaultFilename = "downloaded_file"

// maxFilenameBytes is the length limit enforced by most filesystems.
const maxFilenameBytes = 255

var (
	illegalFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

	// RE2 has no backreferences, so quoted and bare values are spelled out
	// as separate alternatives.
	dispositionFilename = regexp.MustCompile(`filename\*?=(?:"([^"]*)"|'([^']*)'|([^;]+))`)
)

// SanitizeFilename strips characters that are illegal on common filesystems,
// replacing them with underscores, and enforces the 255-byte name limit
// while preserving the extension. The result is never empty and the function
// is idempotent.
func SanitizeFilename(filename string) string {
	filename = illegalFilenameChars.ReplaceAllString(filename, "_")
	filename = strings.Trim(filename, ". ")

	if filename == "" {
		return DefaultFilename
	}

	if len(filename) > maxFilenameBytes {
		ext := path.Ext(filename)
		if len(ext) >= maxFilenameBytes {
			ext = ""
		}
		base := filename[:len(filename)-len(ext)]
		keep := maxFilenameBytes - len(ext)
		if keep > len(base) {
			keep = len(base)
		}
		filename = base[:keep] + ext
		filename = strings.Trim(filename, ". ")
		if filename == "" {
			return DefaultFilename
		}
	}

	return filename
}

// FilenameFromURL derives a sanitized filename from the last path segment of
// the URL, with any query string stripped.
func FilenameFromURL(rawURL string) string {
	parts := strings.Split(rawURL, "/")
	filename := ""
	if len(parts) > 0 {
		filename = parts[len(parts)-1]
	}

	// Drop query parameters
	if idx := strings.IndexByte(filename, '?'); idx != -1 {
		filename = filename[:idx]
	}

	if filename == "" {
		filename = DefaultFilename
	}

	return SanitizeFilename(filename)
}

// FilenameFromHeader extracts a sanitized filename from a Content-Disposition
// header value. It understands both filename= and filename*= attributes and
// strips the RFC 5987 charset prefix (e.g. UTF-8'') from the latter.
// Returns the empty string when the header carries no filename.
func FilenameFromHeader(contentDisposition string) string {
	if contentDisposition == "" {
		return ""
	}

	matches := dispositionFilename.FindStringSubmatch(contentDisposition)
	if matches == nil {
		return ""
	}

	// One of the three alternatives captured the value
	filename := matches[1]
	if filename == "" {
		filename = matches[2]
	}
	if filename == "" {
		filename = strings.TrimSpace(matches[3])
	}

	if idx := strings.Index(filename, "''"); idx != -1 {
		filename = filename[idx+2:]
	}
	if filename == "" {
		return ""
	}

	return SanitizeFilename(filename)
}
