package bot

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/gotd/td/tg"

	"go-leech-bot/downloader"
)

// stubTelegramAPI satisfies downloader.TelegramAPI and counts the calls made
// through a status reporter
type stubTelegramAPI struct {
	mu        sync.Mutex
	sendCalls int
	editCalls int
}

func (s *stubTelegramAPI) MessagesSendMessage(ctx context.Context, request *tg.MessagesSendMessageRequest) (tg.UpdatesClass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendCalls++
	return &tg.UpdateShortSentMessage{ID: 100 + s.sendCalls}, nil
}

func (s *stubTelegramAPI) MessagesEditMessage(ctx context.Context, request *tg.MessagesEditMessageRequest) (tg.UpdatesClass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editCalls++
	return &tg.UpdateShortSentMessage{}, nil
}

func (s *stubTelegramAPI) edits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editCalls
}

func TestReporterRegistry_RoutesEventsToRegisteredJob(t *testing.T) {
	registry := NewReporterRegistry(log.New(io.Discard, "", 0))
	sink := registry.Sink()

	api := &stubTelegramAPI{}
	reporter := downloader.NewStatusReporter(api)
	if err := reporter.StartTracking(context.Background(), 42, "file.bin"); err != nil {
		t.Fatalf("StartTracking failed: %v", err)
	}

	registry.Register("job-1", reporter)

	sink(downloader.ProgressEvent{JobID: "job-1", Percent: 50})
	if api.edits() != 1 {
		t.Fatalf("Expected 1 edit for registered job, got %d", api.edits())
	}

	// Events for unknown jobs are dropped silently
	sink(downloader.ProgressEvent{JobID: "job-2", Percent: 50})
	if api.edits() != 1 {
		t.Errorf("Unknown job should not trigger edits, got %d", api.edits())
	}
}

func TestReporterRegistry_DeregisterDropsLateEvents(t *testing.T) {
	registry := NewReporterRegistry(log.New(io.Discard, "", 0))
	sink := registry.Sink()

	api := &stubTelegramAPI{}
	reporter := downloader.NewStatusReporter(api)
	if err := reporter.StartTracking(context.Background(), 42, "file.bin"); err != nil {
		t.Fatalf("StartTracking failed: %v", err)
	}

	registry.Register("job-1", reporter)
	registry.Deregister("job-1")

	sink(downloader.ProgressEvent{JobID: "job-1", Percent: 99})
	if api.edits() != 0 {
		t.Errorf("Deregistered job should not trigger edits, got %d", api.edits())
	}
	if registry.Size() != 0 {
		t.Errorf("Expected empty registry, got size %d", registry.Size())
	}
}
