package ftracez

import (
	"errors"
	"time"
)

// ErrUnsupported reports that the kernel tracing facility is unavailable
// on the current platform.
var ErrUnsupported = errors.New("kernel trace marker unavailable")

// MarkerKind distinguishes the two marker shapes.
type MarkerKind int

const (
	// BeginMarker opens a slice and carries a label payload.
	BeginMarker MarkerKind = iota
	// EndMarker closes the most recent unmatched begin; no payload.
	EndMarker
)

// Marker is one record written to a sink. Label is empty for EndMarker.
type Marker struct {
	Time  time.Time
	Label string
	Kind  MarkerKind
}

// MarkerWriter is the sink contract for kernel marker emission.
//
// Begin must deliver the full label in a single atomic write so concurrent
// writers cannot interleave partial text into the kernel buffer. End takes
// no payload; the kernel pairs it with the most recent unmatched begin.
// Write failures are the sink's concern - callers neither retry nor
// observe them.
type MarkerWriter interface {
	Begin(label string)
	End()
}
