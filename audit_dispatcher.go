package wsession

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// auditDispatcher stamps engine events and fans them out to the configured
// AuditSink on a dedicated goroutine, so sink latency never blocks the
// login or verify paths. A nil dispatcher (audit disabled) is safe to call.
type auditDispatcher struct {
	cfg   AuditConfig
	sink  AuditSink
	clock func() time.Time

	queue chan AuditEvent
	stop  chan struct{}
	wg    sync.WaitGroup

	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink, clock func() time.Time) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}
	if clock == nil {
		clock = time.Now
	}

	d := &auditDispatcher{
		cfg:   cfg,
		sink:  sink,
		clock: clock,
		queue: make(chan AuditEvent, cfg.BufferSize),
		stop:  make(chan struct{}),
	}

	d.wg.Add(1)
	go d.pump()

	return d
}

func (d *auditDispatcher) pump() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		case <-d.stop:
			d.drain()
			return
		}
	}
}

// drain flushes events already buffered at shutdown so a Close right after
// a login does not lose its trail.
func (d *auditDispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Record stamps a session event with the dispatcher's clock and a fresh
// event ID, then enqueues it. eventType is one of the session.* constants.
//
// Record does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *auditDispatcher) Record(ctx context.Context, eventType, username, ip string, success bool, errMsg string) {
	if d == nil || d.closed.Load() {
		return
	}

	d.enqueue(ctx, AuditEvent{
		Timestamp: d.clock().UTC(),
		EventID:   uuid.NewString(),
		EventType: eventType,
		Username:  username,
		IP:        ip,
		Success:   success,
		Error:     errMsg,
	})
}

// enqueue hands the event to the pump goroutine. With DropIfFull set a full
// buffer increments the drop counter instead of blocking the caller;
// otherwise the caller blocks until there is room or its context ends.
func (d *auditDispatcher) enqueue(ctx context.Context, event AuditEvent) {
	if ctx == nil {
		ctx = context.Background()
	}

	if d.cfg.DropIfFull {
		select {
		case d.queue <- event:
		case <-d.stop:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.stop:
	}
}

// Close describes the close operation and its observable behavior.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.stop)
		d.wg.Wait()
	})
}

// Dropped describes the dropped operation and its observable behavior.
//
// Dropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
