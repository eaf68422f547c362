package ftracez

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
)

// Recorder is an in-process MarkerWriter that buffers markers for later
// export. It stands in for the kernel sink in tests and lets applications
// capture the marker stream on hosts without tracefs.
// Safe for concurrent use by multiple goroutines.
//
//nolint:govet // Field alignment optimized for readability over memory efficiency
type Recorder struct {
	markers      []Marker
	markersCh    chan Marker
	stopCh       chan struct{}
	done         chan struct{}
	droppedCount atomic.Int64
	clock        clockz.Clock
	mu           sync.Mutex
	closed       atomic.Bool
	syncMode     bool // Bypass channel for deterministic tests.
}

// NewRecorder creates a recorder with the specified channel buffer size.
func NewRecorder(bufferSize int) *Recorder {
	return newRecorder(bufferSize, clockz.RealClock)
}

// NewRecorderWithClock creates a recorder using the specified clock for
// marker timestamps. Enables clock injection for deterministic testing.
func NewRecorderWithClock(bufferSize int, clock clockz.Clock) *Recorder {
	return newRecorder(bufferSize, clock)
}

func newRecorder(bufferSize int, clock clockz.Clock) *Recorder {
	r := &Recorder{
		markers:   make([]Marker, 0, 8), // Start with small capacity.
		markersCh: make(chan Marker, bufferSize),
		stopCh:    make(chan struct{}),
		done:      make(chan struct{}),
		clock:     clock,
	}
	go r.start()
	return r
}

// Begin records a begin marker carrying label.
func (r *Recorder) Begin(label string) {
	r.record(Marker{Kind: BeginMarker, Label: label, Time: r.clock.Now()})
}

// End records a bare end marker.
func (r *Recorder) End() {
	r.record(Marker{Kind: EndMarker, Time: r.clock.Now()})
}

// record buffers a marker with backpressure protection. If the internal
// channel is full the marker is dropped and the drop counter incremented;
// a sink never blocks its callers.
func (r *Recorder) record(m Marker) {
	if r.syncMode {
		if r.closed.Load() {
			r.droppedCount.Add(1)
			return
		}
		r.mu.Lock()
		r.buffer(m)
		r.mu.Unlock()
		return
	}

	select {
	case r.markersCh <- m:
		// Successfully queued.
	default:
		// Channel full - drop marker to prevent blocking.
		r.droppedCount.Add(1)
	}
}

// start runs the recorder's drain loop, receiving markers from the channel.
func (r *Recorder) start() {
	defer close(r.done)

	for {
		select {
		case <-r.stopCh:
			// Drain remaining markers before shutdown.
			for {
				select {
				case m := <-r.markersCh:
					r.mu.Lock()
					r.buffer(m)
					r.mu.Unlock()
				default:
					return // Clean shutdown.
				}
			}
		case m := <-r.markersCh:
			r.mu.Lock()
			r.buffer(m)
			r.mu.Unlock()
		}
	}
}

// buffer appends a marker to the internal slice. Callers hold r.mu.
func (r *Recorder) buffer(m Marker) {
	if len(r.markers) >= cap(r.markers) {
		// Double small buffers, grow large ones by 50% to bound waste.
		currentCap := cap(r.markers)
		newCap := currentCap * 2
		if currentCap >= 1024 {
			newCap = currentCap + currentCap/2
		}
		if newCap < 32 {
			newCap = 32
		}
		grown := make([]Marker, len(r.markers), newCap)
		copy(grown, r.markers)
		r.markers = grown
	}
	r.markers = append(r.markers, m)
}

// Export returns a copy of all buffered markers and clears the buffer.
// The returned slice is safe to modify without affecting the recorder.
func (r *Recorder) Export() []Marker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.markers) == 0 {
		return nil
	}

	result := make([]Marker, len(r.markers))
	copy(result, r.markers)

	// Only shrink very oversized buffers to avoid allocation churn.
	if cap(r.markers) > 256 && len(r.markers) < cap(r.markers)/8 {
		newCap := cap(r.markers) / 4
		if newCap < 32 {
			newCap = 32
		}
		r.markers = make([]Marker, 0, newCap)
	} else {
		r.markers = r.markers[:0] // Keep capacity, reset length.
	}

	return result
}

// Count returns the current number of buffered markers.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.markers)
}

// DroppedCount returns the total number of markers dropped under
// backpressure or after close.
func (r *Recorder) DroppedCount() int64 {
	return r.droppedCount.Load()
}

// SetSyncMode enables synchronous recording for testing. When enabled,
// markers are buffered directly without the channel, making tests
// deterministic by eliminating async behavior.
func (r *Recorder) SetSyncMode(sync bool) {
	r.syncMode = sync
}

// Close shuts down the recorder's drain loop. Buffered markers stay
// available through Export; new markers are dropped.
func (r *Recorder) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	close(r.stopCh)
	select {
	case <-r.done:
		// Clean shutdown completed.
	case <-time.After(100 * time.Millisecond):
		// Timeout - drain loop is wedged, give up waiting.
	}
	return nil
}
