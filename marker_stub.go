//go:build !linux

package ftracez

import "fmt"

// newTraceMarker always fails off Linux: there is no kernel trace buffer
// to write to. The rest of the package still compiles so callers can keep
// a single code path and branch on the returned error.
func newTraceMarker() (MarkerWriter, error) {
	return nil, fmt.Errorf("%w: not a linux system", ErrUnsupported)
}
