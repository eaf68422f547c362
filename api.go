// Package ftracez logs application spans and events to the Linux kernel
// trace buffer (trace_marker).
//
// ftracez turns span lifecycle callbacks into flat textual begin/end
// markers so kernel-side trace timelines (ftrace, perfetto, systrace
// viewers) can be correlated with application spans. It does not parse or
// aggregate kernel output and it does not guarantee marker delivery.
//
// Core Components:.
//   - Layer: Receives span/event callbacks and emits markers.
//   - Tracer: Owns span ids and delivers lifecycle callbacks to a Layer.
//   - ActiveSpan: Thread-safe handle for an ongoing span.
//   - Recorder: In-process marker sink for tests and capture.
//
// Basic Usage:.
//
//	layer, err := ftracez.NewLayer()
//	if err != nil {
//		// Kernel tracing is unavailable on this platform.
//	}
//	tracer := ftracez.NewTracer(layer)
//	defer tracer.Close()
//
//	ctx, span := tracer.StartSpan(ctx, "handle-request", ftracez.F("id", 42))
//	span.Enter()
//	// ... traced work ...
//	span.Exit()
//	span.Finish()
//
// Marker Pairing:.
//
// Enter emits a begin marker carrying the span's current label; Exit emits
// a bare end marker. The kernel sink pairs end markers with the most recent
// unmatched begin by its own per-thread stack discipline - this layer
// performs no nesting validation of its own.
//
// Thread Safety:.
//
// Layer and Tracer are safe for concurrent use by multiple goroutines.
// Callbacks for the same span id must not race each other; ActiveSpan
// serializes its own operations to uphold that contract.
package ftracez

// SpanID identifies a span for the lifetime of its context entry.
type SpanID = string

const (
	// MessageField is the default field rendered bare, without a key prefix.
	MessageField = "message"

	// LogFieldPrefix marks metadata injected by the log-compatibility shim.
	// Fields carrying it are skipped to avoid duplicate reporting.
	LogFieldPrefix = "log."

	// TaskField tags a span with the identity of an instrumented task.
	TaskField = "__task"
)
