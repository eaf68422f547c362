package ftracez

import (
	"errors"
	"strings"
	"testing"
)

// newTestLayer wires a layer to a synchronous recorder.
func newTestLayer() (*Layer, *Recorder) {
	recorder := NewRecorder(16)
	recorder.SetSyncMode(true)
	return NewLayerWithSink(recorder), recorder
}

func TestLayerEnterEmitsBegin(t *testing.T) {
	layer, recorder := newTestLayer()
	defer recorder.Close()

	if err := layer.OnNewSpan("s1", "span_a", []Field{{Name: "x", Value: "1"}}); err != nil {
		t.Fatalf("Expected OnNewSpan to succeed, got %v", err)
	}
	if err := layer.OnEnter("s1"); err != nil {
		t.Fatalf("Expected OnEnter to succeed, got %v", err)
	}

	markers := recorder.Export()
	if len(markers) != 1 {
		t.Fatalf("Expected exactly one marker, got %d", len(markers))
	}
	if markers[0].Kind != BeginMarker {
		t.Errorf("Expected begin marker, got kind %d", markers[0].Kind)
	}
	if markers[0].Label != "span_a,x=1" {
		t.Errorf("Expected label 'span_a,x=1', got %q", markers[0].Label)
	}
}

func TestLayerExitEmitsBareEnd(t *testing.T) {
	layer, recorder := newTestLayer()
	defer recorder.Close()

	// Exit never looks up the id - even one that was never created.
	layer.OnExit("never-created")

	markers := recorder.Export()
	if len(markers) != 1 {
		t.Fatalf("Expected exactly one marker, got %d", len(markers))
	}
	if markers[0].Kind != EndMarker {
		t.Errorf("Expected end marker, got kind %d", markers[0].Kind)
	}
	if markers[0].Label != "" {
		t.Errorf("Expected empty payload, got %q", markers[0].Label)
	}
}

func TestLayerEnterUnknownSpan(t *testing.T) {
	layer, recorder := newTestLayer()
	defer recorder.Close()

	err := layer.OnEnter("missing")
	if !errors.Is(err, ErrUnknownSpan) {
		t.Errorf("Expected ErrUnknownSpan, got %v", err)
	}
	if recorder.Count() != 0 {
		t.Errorf("Expected no markers for failed enter, got %d", recorder.Count())
	}
}

func TestLayerRecordUpdatesLabel(t *testing.T) {
	layer, recorder := newTestLayer()
	defer recorder.Close()

	if err := layer.OnNewSpan("s1", "req", []Field{{Name: "id", Value: "42"}}); err != nil {
		t.Fatalf("Expected OnNewSpan to succeed, got %v", err)
	}
	if err := layer.OnRecord("s1", "req", []Field{
		{Name: "id", Value: "42"},
		{Name: "user", Value: "bob"},
	}); err != nil {
		t.Fatalf("Expected OnRecord to succeed, got %v", err)
	}
	if err := layer.OnEnter("s1"); err != nil {
		t.Fatalf("Expected OnEnter to succeed, got %v", err)
	}

	markers := recorder.Export()
	if len(markers) != 1 || markers[0].Label != "req,id=42,user=bob" {
		t.Errorf("Expected recorded label, got %+v", markers)
	}
}

func TestLayerRecordUnknownSpan(t *testing.T) {
	layer, recorder := newTestLayer()
	defer recorder.Close()

	err := layer.OnRecord("missing", "req", nil)
	if !errors.Is(err, ErrUnknownSpan) {
		t.Errorf("Expected ErrUnknownSpan, got %v", err)
	}
}

func TestLayerEventEmitsPair(t *testing.T) {
	layer, recorder := newTestLayer()
	defer recorder.Close()

	layer.OnEvent([]Field{Msg("hello"), {Name: "n", Value: "3"}})

	markers := recorder.Export()
	if len(markers) != 2 {
		t.Fatalf("Expected begin/end pair, got %d markers", len(markers))
	}
	if markers[0].Kind != BeginMarker || markers[0].Label != "hello n=3" {
		t.Errorf("Expected begin 'hello n=3', got %+v", markers[0])
	}
	if markers[1].Kind != EndMarker || markers[1].Label != "" {
		t.Errorf("Expected bare end, got %+v", markers[1])
	}
}

func TestLayerCloseRemovesContext(t *testing.T) {
	layer, recorder := newTestLayer()
	defer recorder.Close()

	if err := layer.OnNewSpan("s1", "req", nil); err != nil {
		t.Fatalf("Expected OnNewSpan to succeed, got %v", err)
	}
	if err := layer.OnClose("s1"); err != nil {
		t.Fatalf("Expected OnClose to succeed, got %v", err)
	}

	if err := layer.OnEnter("s1"); !errors.Is(err, ErrUnknownSpan) {
		t.Errorf("Expected ErrUnknownSpan after close, got %v", err)
	}
	if err := layer.OnClose("s1"); !errors.Is(err, ErrUnknownSpan) {
		t.Errorf("Expected ErrUnknownSpan on double close, got %v", err)
	}
}

func TestLayerDuplicateNewSpan(t *testing.T) {
	layer, recorder := newTestLayer()
	defer recorder.Close()

	if err := layer.OnNewSpan("s1", "req", nil); err != nil {
		t.Fatalf("Expected OnNewSpan to succeed, got %v", err)
	}
	if err := layer.OnNewSpan("s1", "req", nil); !errors.Is(err, ErrSpanExists) {
		t.Errorf("Expected ErrSpanExists, got %v", err)
	}
}

func TestLayerWithDataField(t *testing.T) {
	recorder := NewRecorder(16)
	recorder.SetSyncMode(true)
	defer recorder.Close()
	layer := NewLayerWithSink(recorder).WithDataField("payload")

	if err := layer.OnNewSpan("s1", "req", []Field{{Name: "payload", Value: "0xbeef"}}); err != nil {
		t.Fatalf("Expected OnNewSpan to succeed, got %v", err)
	}
	if err := layer.OnEnter("s1"); err != nil {
		t.Fatalf("Expected OnEnter to succeed, got %v", err)
	}

	markers := recorder.Export()
	if len(markers) != 1 || markers[0].Label != "req,0xbeef" {
		t.Errorf("Expected bare payload label, got %+v", markers)
	}
}

func TestLayerWithLogFieldSkipDisabled(t *testing.T) {
	recorder := NewRecorder(16)
	recorder.SetSyncMode(true)
	defer recorder.Close()
	layer := NewLayerWithSink(recorder).WithLogFieldSkip(false)

	layer.OnEvent([]Field{{Name: "log.target", Value: "app"}})

	markers := recorder.Export()
	if len(markers) != 2 || markers[0].Label != "log.target=app" {
		t.Errorf("Expected log field kept, got %+v", markers)
	}
}

func TestLayerWithFieldSkip(t *testing.T) {
	recorder := NewRecorder(16)
	recorder.SetSyncMode(true)
	defer recorder.Close()
	layer := NewLayerWithSink(recorder).WithFieldSkip(func(name string) bool {
		return strings.HasPrefix(name, "internal.")
	})

	layer.OnEvent([]Field{
		{Name: "internal.seq", Value: "9"},
		{Name: "n", Value: "3"},
	})

	markers := recorder.Export()
	if len(markers) != 2 || markers[0].Label != "n=3" {
		t.Errorf("Expected custom skip rule applied, got %+v", markers)
	}
}

func TestLayerEndToEnd(t *testing.T) {
	layer, recorder := newTestLayer()
	defer recorder.Close()

	if err := layer.OnNewSpan("req-1", "req", []Field{{Name: "id", Value: "42"}}); err != nil {
		t.Fatalf("new span: %v", err)
	}
	if err := layer.OnEnter("req-1"); err != nil {
		t.Fatalf("enter: %v", err)
	}
	layer.OnExit("req-1")
	if err := layer.OnClose("req-1"); err != nil {
		t.Fatalf("close: %v", err)
	}

	markers := recorder.Export()
	if len(markers) != 2 {
		t.Fatalf("Expected begin and end, got %d markers", len(markers))
	}
	if markers[0].Kind != BeginMarker || markers[0].Label != "req,id=42" {
		t.Errorf("Expected begin 'req,id=42', got %+v", markers[0])
	}
	if markers[1].Kind != EndMarker || markers[1].Label != "" {
		t.Errorf("Expected bare end, got %+v", markers[1])
	}

	// The context is gone: a later enter is a contract violation.
	if err := layer.OnEnter("req-1"); !errors.Is(err, ErrUnknownSpan) {
		t.Errorf("Expected ErrUnknownSpan after close, got %v", err)
	}
}
