package bot

import (
	"testing"

	"github.com/gotd/td/tg"
)

func TestExtractUploadedMessageID(t *testing.T) {
	testCases := []struct {
		name    string
		updates tg.UpdatesClass
		want    int
	}{
		{
			name:    "Short sent message",
			updates: &tg.UpdateShortSentMessage{ID: 42},
			want:    42,
		},
		{
			name: "Channel message update",
			updates: &tg.Updates{
				Updates: []tg.UpdateClass{
					&tg.UpdateNewChannelMessage{Message: &tg.Message{ID: 77}},
				},
			},
			want: 77,
		},
		{
			name: "Plain message update",
			updates: &tg.Updates{
				Updates: []tg.UpdateClass{
					&tg.UpdateNewMessage{Message: &tg.Message{ID: 13}},
				},
			},
			want: 13,
		},
		{
			name: "Message ID update",
			updates: &tg.Updates{
				Updates: []tg.UpdateClass{
					&tg.UpdateMessageID{ID: 99},
				},
			},
			want: 99,
		},
		{
			name:    "Empty update set",
			updates: &tg.Updates{},
			want:    0,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractUploadedMessageID(tc.updates); got != tc.want {
				t.Errorf("Expected message ID %d, got %d", tc.want, got)
			}
		})
	}
}

func TestMimeForFilename(t *testing.T) {
	testCases := []struct {
		filename string
		want     string
	}{
		{filename: "report.pdf", want: "application/pdf"},
		{filename: "archive.zip", want: "application/zip"},
		{filename: "noextension", want: "application/octet-stream"},
		{filename: "data.unknownext", want: "application/octet-stream"},
	}

	for _, tc := range testCases {
		t.Run(tc.filename, func(t *testing.T) {
			if got := mimeForFilename(tc.filename); got != tc.want {
				t.Errorf("Expected %q for %s, got %q", tc.want, tc.filename, got)
			}
		})
	}
}

func TestParseLeechArgs(t *testing.T) {
	testCases := []struct {
		name      string
		args      string
		wantURL   string
		wantVideo bool
		wantErr   bool
	}{
		{
			name:    "Bare URL",
			args:    "https://example.org/file.bin",
			wantURL: "https://example.org/file.bin",
		},
		{
			name:      "URL with video flag",
			args:      "https://example.org/movie.mkv video",
			wantURL:   "https://example.org/movie.mkv",
			wantVideo: true,
		},
		{
			name:      "Video flag case insensitive",
			args:      "https://example.org/movie.mkv VIDEO",
			wantURL:   "https://example.org/movie.mkv",
			wantVideo: true,
		},
		{
			name:    "Unknown trailing words ignored",
			args:    "https://example.org/file.bin please",
			wantURL: "https://example.org/file.bin",
		},
		{
			name:    "Empty args",
			args:    "",
			wantErr: true,
		},
		{
			name:    "Whitespace only",
			args:    "   ",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			url, video, err := parseLeechArgs(tc.args)
			if tc.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if url != tc.wantURL {
				t.Errorf("Expected URL %q, got %q", tc.wantURL, url)
			}
			if video != tc.wantVideo {
				t.Errorf("Expected video=%v, got %v", tc.wantVideo, video)
			}
		})
	}
}
