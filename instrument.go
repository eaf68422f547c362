package ftracez

import "fmt"

// Instrument attaches the span to a unit of asynchronous work: the
// returned function runs fn between Enter and Exit, and the span is tagged
// with a TaskField identifying this attachment. When several concurrent
// tasks share one span, their TaskField values disambiguate them in the
// kernel timeline.
//
//	go span.Instrument(func() { worker(ctx) })()
func (a *ActiveSpan) Instrument(fn func()) func() {
	// A fresh heap token gives each attachment a unique identity.
	token := new(byte)
	a.Record(F(TaskField, fmt.Sprintf("%p", token)))

	return func() {
		a.Enter()
		defer a.Exit()
		fn()
	}
}
