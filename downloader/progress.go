package downloader

import (
	"sync"
	"time"
)

// DefaultMinForwardInterval is the minimum time between forwarded progress
// updates for a single job. Completion (100%) is never suppressed.
const DefaultMinForwardInterval = 2 * time.Second

// bridgeCapacity bounds the event channel. Emits beyond capacity are dropped
// rather than blocking the worker.
const bridgeCapacity = 64

// Sink consumes throttled progress events on the bridge's consumer goroutine
type Sink func(event ProgressEvent)

// bridgeMessage is the internal channel payload. finish markers carry an ack
// channel so Finish can wait for the consumer to drain everything queued
// before the marker.
type bridgeMessage struct {
	event  ProgressEvent
	finish bool
	ack    chan struct{}
}

// Bridge converts the high-frequency stream of progress events produced on
// worker goroutines into a throttled stream delivered to a single sink on
// the bridge's own consumer goroutine. Workers never block: when the bridge
// is stopped or its channel is full, events are silently dropped.
type Bridge struct {
	minInterval time.Duration
	sink        Sink
	now         func() time.Time

	mu        sync.Mutex
	isRunning bool
	events    chan bridgeMessage
	stopChan  chan struct{}
	doneChan  chan struct{}

	// lastForwarded is owned by the consumer goroutine
	lastForwarded map[string]time.Time
}

// NewBridge creates a progress bridge with the default 2-second throttle
func NewBridge(sink Sink) *Bridge {
	return NewBridgeWithInterval(sink, DefaultMinForwardInterval)
}

// NewBridgeWithInterval creates a progress bridge with a custom minimum
// forwarding interval
func NewBridgeWithInterval(sink Sink, interval time.Duration) *Bridge {
	return &Bridge{
		minInterval: interval,
		sink:        sink,
		now:         time.Now,
	}
}

// Start launches the consumer goroutine
func (b *Bridge) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.isRunning {
		return NewDownloadError(ErrorUnknown, "progress bridge is already running")
	}

	b.events = make(chan bridgeMessage, bridgeCapacity)
	b.stopChan = make(chan struct{})
	b.doneChan = make(chan struct{})
	b.lastForwarded = make(map[string]time.Time)
	b.isRunning = true

	go b.consumeLoop()
	return nil
}

// Stop shuts the consumer down and waits for it to exit. Events emitted
// after Stop are dropped.
func (b *Bridge) Stop() {
	b.mu.Lock()
	if !b.isRunning {
		b.mu.Unlock()
		return
	}
	b.isRunning = false
	close(b.stopChan)
	done := b.doneChan
	b.mu.Unlock()

	<-done
}

// Emit queues a progress event for throttled delivery. Never blocks: when
// the bridge is stopped or the channel is full the event is dropped.
func (b *Bridge) Emit(jobID string, percent int) {
	b.mu.Lock()
	if !b.isRunning {
		b.mu.Unlock()
		return
	}
	events := b.events
	stop := b.stopChan
	b.mu.Unlock()

	msg := bridgeMessage{event: ProgressEvent{JobID: jobID, Percent: percent}}
	select {
	case events <- msg:
	case <-stop:
	default:
	}
}

// ProgressFunc returns a ProgressFunc bound to jobID, suitable for passing
// straight into Engine.Download.
func (b *Bridge) ProgressFunc(jobID string) ProgressFunc {
	return func(percent int) {
		b.Emit(jobID, percent)
	}
}

// Finish marks a job as terminated. It removes the job's throttle state and
// blocks until the consumer has drained every event queued for the job
// before this call, which guarantees the job's result is only observed after
// all of its progress events. Returns immediately if the bridge is stopped.
func (b *Bridge) Finish(jobID string) {
	b.mu.Lock()
	if !b.isRunning {
		b.mu.Unlock()
		return
	}
	events := b.events
	stop := b.stopChan
	b.mu.Unlock()

	msg := bridgeMessage{
		event:  ProgressEvent{JobID: jobID},
		finish: true,
		ack:    make(chan struct{}),
	}

	select {
	case events <- msg:
	case <-stop:
		return
	}

	select {
	case <-msg.ack:
	case <-stop:
	}
}

// consumeLoop is the single consumer draining, throttling and forwarding
// events. It owns lastForwarded exclusively.
func (b *Bridge) consumeLoop() {
	defer close(b.doneChan)

	for {
		select {
		case <-b.stopChan:
			return

		case msg := <-b.events:
			if msg.finish {
				delete(b.lastForwarded, msg.event.JobID)
				close(msg.ack)
				continue
			}
			b.forward(msg.event)
		}
	}
}

// forward applies the throttling rule: an update goes through when at least
// minInterval has elapsed since the last forwarded update for the job (a
// never-seen job always qualifies), or when the percent is 100.
func (b *Bridge) forward(event ProgressEvent) {
	now := b.now()
	last, seen := b.lastForwarded[event.JobID]

	if event.Percent < 100 && seen && now.Sub(last) < b.minInterval {
		return
	}

	b.lastForwarded[event.JobID] = now
	if b.sink != nil {
		b.sink(event)
	}
}

// IsRunning reports whether the consumer goroutine is active
func (b *Bridge) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isRunning
}
