package ftracez

import (
	"fmt"
	"strconv"

	"golang.org/x/sys/unix"
)

// markerPaths are the trace_marker locations probed at construction, in
// order: the tracefs mount first, then the legacy debugfs location.
var markerPaths = []string{
	"/sys/kernel/tracing/trace_marker",
	"/sys/kernel/debug/tracing/trace_marker",
}

// traceMarker writes markers to the kernel trace buffer. Each Begin or End
// is one write(2) on the shared fd, so concurrent writers never interleave
// partial labels. Safe for concurrent use.
type traceMarker struct {
	pid string
	fd  int
}

// newTraceMarker probes the known trace_marker paths and opens the first
// one available. Availability is a runtime property (tracefs may not be
// mounted, or the process may lack permission), so this is checked here
// rather than at build time.
func newTraceMarker() (*traceMarker, error) {
	var lastErr error
	for _, path := range markerPaths {
		m, err := openTraceMarker(path)
		if err == nil {
			return m, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupported, lastErr)
}

// openTraceMarker opens a marker file at an explicit path.
func openTraceMarker(path string) (*traceMarker, error) {
	fd, err := unix.Open(path, unix.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &traceMarker{
		fd:  fd,
		pid: strconv.Itoa(unix.Getpid()),
	}, nil
}

// Begin writes a begin marker carrying label.
func (m *traceMarker) Begin(label string) {
	// B|pid|label - the systrace form the kernel-side tooling expects.
	buf := make([]byte, 0, 3+len(m.pid)+len(label))
	buf = append(buf, 'B', '|')
	buf = append(buf, m.pid...)
	buf = append(buf, '|')
	buf = append(buf, label...)
	// Failures are deliberately dropped: marker delivery is best-effort
	// and the trace buffer may reject writes at any time.
	_, _ = unix.Write(m.fd, buf)
}

// End writes a bare end marker.
func (m *traceMarker) End() {
	_, _ = unix.Write(m.fd, []byte{'E'})
}

// Close releases the marker fd. Markers written after Close are dropped
// by the failed write, not by any state check here.
func (m *traceMarker) Close() error {
	return unix.Close(m.fd)
}
