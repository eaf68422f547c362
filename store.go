package ftracez

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrSpanExists reports a create for a span id that is already live.
	ErrSpanExists = errors.New("span context already exists")

	// ErrUnknownSpan reports an operation on a span id with no live context.
	// It indicates the caller violated the span lifecycle contract.
	ErrUnknownSpan = errors.New("unknown span")
)

// spanStore maps live span ids to their current formatted label.
// An entry exists from create until remove; entries for different ids are
// independently mutable. Callbacks for the same id are serialized by the
// caller, so per-entry operations need no lock of their own beyond the
// map's insert/remove atomicity.
type spanStore struct {
	entries sync.Map // SpanID -> string
}

// create inserts the initial label for id.
func (s *spanStore) create(id SpanID, label string) error {
	if _, loaded := s.entries.LoadOrStore(id, label); loaded {
		return fmt.Errorf("%w: id %s", ErrSpanExists, id)
	}
	return nil
}

// update replaces the stored label only when the text changed, so an
// unchanged record never touches the map.
func (s *spanStore) update(id SpanID, label string) error {
	current, ok := s.entries.Load(id)
	if !ok {
		return fmt.Errorf("%w: id %s", ErrUnknownSpan, id)
	}
	if current.(string) == label {
		return nil
	}
	s.entries.Store(id, label)
	return nil
}

// get returns the current label for id.
func (s *spanStore) get(id SpanID) (string, error) {
	label, ok := s.entries.Load(id)
	if !ok {
		return "", fmt.Errorf("%w: id %s", ErrUnknownSpan, id)
	}
	return label.(string), nil
}

// remove deletes the entry for id.
func (s *spanStore) remove(id SpanID) error {
	if _, ok := s.entries.LoadAndDelete(id); !ok {
		return fmt.Errorf("%w: id %s", ErrUnknownSpan, id)
	}
	return nil
}
