package ftracez

// SpanObserver receives span lifecycle and event callbacks.
//
// Callers must deliver callbacks in lifecycle-consistent order per span id:
// OnNewSpan before any OnRecord/OnEnter/OnClose for that id, OnClose
// exactly once and last. Callbacks for the same id must not run
// concurrently; callbacks for different ids may.
type SpanObserver interface {
	// OnNewSpan registers a span under id with its initial field set.
	OnNewSpan(id SpanID, name string, fields []Field) error
	// OnRecord re-renders the span label from the full current field set.
	OnRecord(id SpanID, name string, fields []Field) error
	// OnEvent reports a point event carrying fields.
	OnEvent(fields []Field)
	// OnEnter marks the span as running on the calling thread of work.
	OnEnter(id SpanID) error
	// OnExit marks the most recently entered span as suspended.
	OnExit(id SpanID)
	// OnClose retires id; no further callbacks may reference it.
	OnClose(id SpanID) error
}

// Layer bridges span callbacks to a kernel marker sink. It formats span
// and event labels, keeps each live span's current label in a context
// table, and emits paired begin/end markers.
// Safe for concurrent use by multiple goroutines.
type Layer struct {
	sink   MarkerWriter
	format formatter
	store  spanStore
}

// NewLayer constructs a layer writing to the kernel trace buffer.
// Returns an error wrapping ErrUnsupported when the kernel tracing
// facility is unavailable on this platform.
func NewLayer() (*Layer, error) {
	sink, err := newTraceMarker()
	if err != nil {
		return nil, err
	}
	return &Layer{
		sink:   sink,
		format: newFormatter(),
	}, nil
}

// NewLayerWithSink constructs a layer writing to an explicit sink, such as
// a Recorder. No platform probe is performed.
func NewLayerWithSink(sink MarkerWriter) *Layer {
	return &Layer{
		sink:   sink,
		format: newFormatter(),
	}
}

// WithDataField selects which field name is rendered bare in labels
// instead of the default message field.
func (l *Layer) WithDataField(name string) *Layer {
	l.format.dataField = name
	return l
}

// WithLogFieldSkip enables or disables dropping of log-compatibility
// metadata fields (names starting with LogFieldPrefix). Enabled by
// default; disable it when no log bridge is installed.
func (l *Layer) WithLogFieldSkip(enabled bool) *Layer {
	if enabled {
		l.format.skip = skipLogFields
	} else {
		l.format.skip = nil
	}
	return l
}

// WithFieldSkip installs an arbitrary skip predicate, replacing the
// default log-metadata rule. A nil fn disables skipping entirely.
func (l *Layer) WithFieldSkip(fn SkipFunc) *Layer {
	l.format.skip = fn
	return l
}

// OnNewSpan formats the initial span label and stores it under id.
func (l *Layer) OnNewSpan(id SpanID, name string, fields []Field) error {
	return l.store.create(id, l.format.spanLabel(name, fields))
}

// OnRecord recomputes the label from the current field set and replaces
// the stored one only if the text changed.
func (l *Layer) OnRecord(id SpanID, name string, fields []Field) error {
	return l.store.update(id, l.format.spanLabel(name, fields))
}

// OnEvent emits an event as an instantaneous begin/end marker pair.
func (l *Layer) OnEvent(fields []Field) {
	l.sink.Begin(l.format.eventLabel(fields))
	l.sink.End()
}

// OnEnter emits a begin marker carrying the span's current label.
// Fails if no context exists for id: that is a lifecycle-contract
// violation by the caller, never a condition to paper over.
func (l *Layer) OnEnter(id SpanID) error {
	label, err := l.store.get(id)
	if err != nil {
		return err
	}
	l.sink.Begin(label)
	return nil
}

// OnExit emits a bare end marker. The id is deliberately not validated:
// the kernel sink pairs the end with the most recent unmatched begin by
// its own stack discipline.
func (l *Layer) OnExit(SpanID) {
	l.sink.End()
}

// OnClose removes the span's context entry. Fails if none exists, same
// contract policy as OnEnter.
func (l *Layer) OnClose(id SpanID) error {
	return l.store.remove(id)
}

// Close releases the underlying sink if it holds resources.
func (l *Layer) Close() error {
	if c, ok := l.sink.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
