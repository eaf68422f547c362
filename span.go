package ftracez

import (
	"context"
	"sync"
	"time"
)

// ActiveSpan is a handle for an ongoing span. It owns the authoritative
// field snapshot the observer contract requires on record, and serializes
// its own lifecycle calls so callbacks for one span id never race.
// Safe for concurrent use by multiple goroutines.
type ActiveSpan struct {
	tracer    *Tracer
	id        SpanID
	name      string
	fields    []Field
	startTime time.Time
	mu        sync.Mutex
	finished  bool
}

// ID returns the span's identifier.
func (a *ActiveSpan) ID() SpanID {
	return a.id
}

// Name returns the span's declared name.
func (a *ActiveSpan) Name() string {
	return a.name
}

// StartTime returns when the span was created.
func (a *ActiveSpan) StartTime() time.Time {
	return a.startTime
}

// Record merges fields into the span's snapshot and re-delivers the full
// current set to the observer. A field replaces an earlier one with the
// same name in place; new names append, preserving presentation order.
// No-op if the span is already finished.
func (a *ActiveSpan) Record(fields ...Field) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finished {
		return
	}

	for _, field := range fields {
		a.mergeLocked(field)
	}

	if err := a.tracer.observer.OnRecord(a.id, a.name, a.fields); err != nil {
		a.tracer.contractError(err)
	}
}

// mergeLocked applies one field to the snapshot. Callers hold a.mu.
func (a *ActiveSpan) mergeLocked(field Field) {
	for i := range a.fields {
		if a.fields[i].Name == field.Name {
			a.fields[i].Value = field.Value
			return
		}
	}
	a.fields = append(a.fields, field)
}

// Enter marks the span as running: a begin marker with the span's current
// label is emitted. A span may be entered and exited many times across
// suspension points before it finishes.
// No-op if the span is already finished.
func (a *ActiveSpan) Enter() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finished {
		return
	}

	if err := a.tracer.observer.OnEnter(a.id); err != nil {
		a.tracer.contractError(err)
	}
}

// Exit marks the span as suspended: a bare end marker is emitted and the
// kernel sink pairs it with the most recent unmatched begin.
// No-op if the span is already finished.
func (a *ActiveSpan) Exit() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finished {
		return
	}

	a.tracer.observer.OnExit(a.id)
}

// Finish closes the span and retires its context entry.
// Safe to call multiple times - subsequent calls are no-ops.
func (a *ActiveSpan) Finish() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.finished {
		return
	}
	a.finished = true

	if err := a.tracer.observer.OnClose(a.id); err != nil {
		a.tracer.contractError(err)
	}
}

// Context creates a new context with this span embedded.
func (a *ActiveSpan) Context(parent context.Context) context.Context {
	bundle := &contextBundle{tracer: a.tracer, span: a}
	return context.WithValue(parent, bundleKey, bundle)
}
