package downloader

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/gotd/td/tg"
)

// MockTelegramAPI is a mock implementation of TelegramAPI for testing
type MockTelegramAPI struct {
	mu        sync.Mutex
	sendCalls []*tg.MessagesSendMessageRequest
	editCalls []*tg.MessagesEditMessageRequest
	nextID    int
	failSend  bool
	failEdit  bool
}

func NewMockTelegramAPI() *MockTelegramAPI {
	return &MockTelegramAPI{nextID: 100}
}

func (m *MockTelegramAPI) MessagesSendMessage(ctx context.Context, request *tg.MessagesSendMessageRequest) (tg.UpdatesClass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendCalls = append(m.sendCalls, request)
	if m.failSend {
		return nil, errors.New("mock send failure")
	}
	m.nextID++
	return &tg.UpdateShortSentMessage{ID: m.nextID}, nil
}

func (m *MockTelegramAPI) MessagesEditMessage(ctx context.Context, request *tg.MessagesEditMessageRequest) (tg.UpdatesClass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.editCalls = append(m.editCalls, request)
	if m.failEdit {
		return nil, errors.New("mock edit failure")
	}
	return &tg.UpdateShortSentMessage{}, nil
}

func (m *MockTelegramAPI) EditCalls() []*tg.MessagesEditMessageRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]*tg.MessagesEditMessageRequest, len(m.editCalls))
	copy(calls, m.editCalls)
	return calls
}

func TestStatusReporter_StartTracking(t *testing.T) {
	api := NewMockTelegramAPI()
	reporter := NewStatusReporter(api)

	if err := reporter.StartTracking(context.Background(), 12345, "report.pdf"); err != nil {
		t.Fatalf("StartTracking failed: %v", err)
	}

	if !reporter.IsActive() {
		t.Error("Reporter should be active after StartTracking")
	}
	if len(api.sendCalls) != 1 {
		t.Fatalf("Expected 1 send call, got %d", len(api.sendCalls))
	}
	if !strings.Contains(api.sendCalls[0].Message, "report.pdf") {
		t.Errorf("Initial message should name the file, got %q", api.sendCalls[0].Message)
	}

	// Double start is rejected
	if err := reporter.StartTracking(context.Background(), 12345, "other.bin"); err == nil {
		t.Error("Second StartTracking should fail")
	}
}

func TestStatusReporter_StartTrackingSendFailure(t *testing.T) {
	api := NewMockTelegramAPI()
	api.failSend = true
	reporter := NewStatusReporter(api)

	err := reporter.StartTracking(context.Background(), 12345, "report.pdf")
	if err == nil {
		t.Fatal("Expected StartTracking to fail")
	}
	if reporter.IsActive() {
		t.Error("Reporter should not be active after a failed start")
	}
}

func TestStatusReporter_UpdateProgress(t *testing.T) {
	api := NewMockTelegramAPI()
	reporter := NewStatusReporter(api)

	if err := reporter.StartTracking(context.Background(), 12345, "report.pdf"); err != nil {
		t.Fatalf("StartTracking failed: %v", err)
	}

	if err := reporter.UpdateProgress(45); err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	edits := api.EditCalls()
	if len(edits) != 1 {
		t.Fatalf("Expected 1 edit call, got %d", len(edits))
	}
	if !strings.Contains(edits[0].Message, "45%") {
		t.Errorf("Edit should carry the percent, got %q", edits[0].Message)
	}
	if !strings.Contains(edits[0].Message, "█") || !strings.Contains(edits[0].Message, "░") {
		t.Errorf("Edit should carry a progress bar, got %q", edits[0].Message)
	}
}

func TestStatusReporter_InactiveNoOps(t *testing.T) {
	api := NewMockTelegramAPI()
	reporter := NewStatusReporter(api)

	if err := reporter.UpdateProgress(50); err != nil {
		t.Errorf("UpdateProgress on inactive reporter should be a no-op, got %v", err)
	}
	if err := reporter.ReportError(errors.New("boom")); err != nil {
		t.Errorf("ReportError on inactive reporter should be a no-op, got %v", err)
	}
	if err := reporter.ReportComplete(42); err != nil {
		t.Errorf("ReportComplete on inactive reporter should be a no-op, got %v", err)
	}
	if len(api.EditCalls()) != 0 {
		t.Error("Inactive reporter must not call the API")
	}
}

func TestStatusReporter_ReportError(t *testing.T) {
	api := NewMockTelegramAPI()
	reporter := NewStatusReporter(api)

	if err := reporter.StartTracking(context.Background(), 12345, "report.pdf"); err != nil {
		t.Fatalf("StartTracking failed: %v", err)
	}

	cause := NewHTTPError(404, "404 Not Found")
	if err := reporter.ReportError(cause); err != nil {
		t.Fatalf("ReportError failed: %v", err)
	}

	edits := api.EditCalls()
	if len(edits) != 1 {
		t.Fatalf("Expected 1 edit call, got %d", len(edits))
	}
	if !strings.Contains(edits[0].Message, "404") {
		t.Errorf("Error edit should carry the failure message, got %q", edits[0].Message)
	}
}

func TestStatusReporter_StopClearsState(t *testing.T) {
	api := NewMockTelegramAPI()
	reporter := NewStatusReporter(api)

	if err := reporter.StartTracking(context.Background(), 12345, "report.pdf"); err != nil {
		t.Fatalf("StartTracking failed: %v", err)
	}

	reporter.Stop()
	if reporter.IsActive() {
		t.Error("Reporter should be inactive after Stop")
	}

	// And reusable
	if err := reporter.StartTracking(context.Background(), 678, "next.bin"); err != nil {
		t.Errorf("StartTracking after Stop failed: %v", err)
	}
}

func TestRenderProgressBar(t *testing.T) {
	testCases := []struct {
		name    string
		percent int
		filled  int
	}{
		{name: "Zero", percent: 0, filled: 0},
		{name: "Half", percent: 50, filled: 10},
		{name: "Full", percent: 100, filled: 20},
		{name: "Clamped below", percent: -5, filled: 0},
		{name: "Clamped above", percent: 150, filled: 20},
		{name: "Floor division", percent: 47, filled: 9},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			bar := renderProgressBar(tc.percent, 20)
			filled := strings.Count(bar, "█")
			empty := strings.Count(bar, "░")
			if filled != tc.filled {
				t.Errorf("Expected %d filled cells, got %d", tc.filled, filled)
			}
			if filled+empty != 20 {
				t.Errorf("Expected 20 cells total, got %d", filled+empty)
			}
		})
	}
}
