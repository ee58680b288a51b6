package locate

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"safemap/internal/debug"
)

var (
	// ErrNoFix is reported when no position arrives within the acquisition timeout
	ErrNoFix = errors.New("locate: no position fix")
	// ErrStreamClosed is reported when the position source ends
	ErrStreamClosed = errors.New("locate: position stream closed")
	// ErrNoSource is reported when tracking starts without a configured source
	ErrNoSource = errors.New("locate: no position source configured")
)

// Event is a position update or a failure for one watch session
type Event struct {
	Session uint64
	Fix     Fix
	Err     error
}

// Failed reports whether the event ends its session
func (e Event) Failed() bool {
	return e.Err != nil
}

// Tracker watches a position source. It is idle or watching; each Start opens a new
// session and every event carries its session number.
type Tracker struct {
	source         Source
	parser         *NMEAParser
	acquireTimeout time.Duration
	events         chan Event

	mu       sync.Mutex
	session  uint64
	watching bool
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewTracker creates a tracker over source. A nil source fails every session with ErrNoSource.
// acquireTimeout bounds the wait for the first fix of a session (default: 30s)
func NewTracker(source Source, acquireTimeout time.Duration) *Tracker {
	if acquireTimeout == 0 {
		acquireTimeout = 30 * time.Second
	}

	return &Tracker{
		source:         source,
		parser:         NewNMEAParser(),
		acquireTimeout: acquireTimeout,
		events:         make(chan Event, 16),
	}
}

// Events returns the channel of fixes and failures for all sessions
func (t *Tracker) Events() <-chan Event {
	return t.events
}

// Watching reports whether a session is active
func (t *Tracker) Watching() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.watching
}

// Start begins a watch session and returns its number. Starting while watching
// returns the current session.
func (t *Tracker) Start() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.watching {
		return t.session
	}

	// A session that ended on its own has already exited
	if t.cancel != nil {
		t.cancel()
	}

	t.session++
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})
	t.watching = true

	go t.watch(ctx, t.session, t.done)

	debug.Log("locate: session %d started", t.session)
	return t.session
}

// Stop cancels the active session and returns once its read loop has exited.
// Stop is idempotent.
func (t *Tracker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.watching = false
	t.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-done
}

// watch reads one session until it is cancelled or fails
func (t *Tracker) watch(ctx context.Context, session uint64, done chan struct{}) {
	defer close(done)

	err := t.read(ctx, session)
	if ctx.Err() != nil {
		// Stopped by the caller, nothing to report
		return
	}

	t.mu.Lock()
	if t.session == session {
		t.watching = false
	}
	t.mu.Unlock()

	debug.Log("locate: session %d failed: %v", session, err)
	t.emit(ctx, Event{Session: session, Err: err})
}

func (t *Tracker) read(ctx context.Context, session uint64) error {
	if t.source == nil {
		return ErrNoSource
	}

	rc, err := t.source.Open(ctx)
	if err != nil {
		return err
	}
	defer rc.Close()

	// Closing the stream unblocks the scanner on cancel or acquisition timeout
	stop := context.AfterFunc(ctx, func() { rc.Close() })
	defer stop()

	var timedOut atomic.Bool
	timer := time.AfterFunc(t.acquireTimeout, func() {
		timedOut.Store(true)
		rc.Close()
	})
	defer timer.Stop()

	acquired := false
	scanner := bufio.NewScanner(rc)
	for scanner.Scan() {
		fix, err := t.parser.Parse(scanner.Text())
		if err != nil {
			// Skip malformed sentences silently
			continue
		}
		if fix == nil {
			continue
		}

		if !acquired {
			acquired = timer.Stop()
			if !acquired {
				break
			}
		}
		if !t.emit(ctx, Event{Session: session, Fix: *fix}) {
			return ctx.Err()
		}
	}

	if timedOut.Load() {
		return fmt.Errorf("%w within %v", ErrNoFix, t.acquireTimeout)
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("%w: %v", ErrStreamClosed, err)
	}
	return ErrStreamClosed
}

// emit delivers an event unless the session is cancelled first
func (t *Tracker) emit(ctx context.Context, ev Event) bool {
	select {
	case t.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
