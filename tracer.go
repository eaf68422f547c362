package ftracez

import (
	"context"
	"runtime"
	"sync"

	"github.com/zoobzio/clockz"
)

// contextBundle holds both tracer and span to reduce context allocations.
type contextBundle struct {
	tracer *Tracer
	span   *ActiveSpan
}

// bundleKeyType is a private type for context keys to avoid collisions.
type bundleKeyType string

const (
	bundleKey bundleKeyType = "ftracez"
)

// Tracer is the front end of the marker pipeline: it assigns span ids and
// delivers lifecycle callbacks to a SpanObserver in the order the observer
// contract requires.
// Safe for concurrent use by multiple goroutines.
type Tracer struct {
	observer SpanObserver
	clock    clockz.Clock
	pool     *idPool
	errHook  func(error)
	hookLock sync.RWMutex
	poolOnce sync.Once
}

// NewTracer creates a tracer delivering callbacks to observer.
// Uses the real clock for production behavior.
func NewTracer(observer SpanObserver) *Tracer {
	return &Tracer{
		observer: observer,
		clock:    clockz.RealClock,
	}
}

// WithClock returns a new tracer with the specified clock.
// Enables clock injection for deterministic testing.
func (t *Tracer) WithClock(clock clockz.Clock) *Tracer {
	return &Tracer{
		observer: t.observer,
		clock:    clock,
	}
}

// SetErrorHook sets a function called when the observer reports a
// lifecycle-contract violation. Without a hook the tracer panics: a
// contract violation is a bug in the instrumentation, not a condition to
// drop silently.
func (t *Tracer) SetErrorHook(hook func(error)) {
	t.hookLock.Lock()
	defer t.hookLock.Unlock()
	t.errHook = hook
}

// contractError routes an observer error to the hook, or panics.
func (t *Tracer) contractError(err error) {
	t.hookLock.RLock()
	hook := t.errHook
	t.hookLock.RUnlock()

	if hook != nil {
		hook(err)
		return
	}
	panic(err)
}

// ensurePool initializes the span id pool if not already created.
func (t *Tracer) ensurePool() {
	t.poolOnce.Do(func() {
		// Pool size based on number of CPUs for contention balance.
		t.pool = newIDPool(runtime.NumCPU()*100, t.clock)
	})
}

// StartSpan creates a new span with the given name and initial fields and
// registers it with the observer. The returned context carries the span;
// SpanFromContext recovers it in child operations.
func (t *Tracer) StartSpan(ctx context.Context, name string, fields ...Field) (context.Context, *ActiveSpan) {
	if ctx == nil {
		ctx = context.Background()
	}

	t.ensurePool()

	span := &ActiveSpan{
		tracer:    t,
		id:        t.pool.get(),
		name:      name,
		fields:    append([]Field(nil), fields...),
		startTime: t.clock.Now(),
	}

	if err := t.observer.OnNewSpan(span.id, name, span.fields); err != nil {
		t.contractError(err)
	}

	bundle := &contextBundle{tracer: t, span: span}
	return context.WithValue(ctx, bundleKey, bundle), span
}

// Event reports a point event with the given fields. Events are not tied
// to any span lifecycle and emit an instantaneous begin/end marker pair.
func (t *Tracer) Event(fields ...Field) {
	t.observer.OnEvent(fields)
}

// Close shuts down the tracer and releases its id pool. Spans started
// before Close remain usable; no new spans should be started after.
func (t *Tracer) Close() {
	if t.pool != nil {
		t.pool.close()
	}
}

// SpanFromContext extracts the current span from a context.
// Returns nil if no span is present.
func SpanFromContext(ctx context.Context) *ActiveSpan {
	if ctx == nil {
		return nil
	}

	if bundle, ok := ctx.Value(bundleKey).(*contextBundle); ok {
		return bundle.span
	}

	return nil
}
