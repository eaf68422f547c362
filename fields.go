package ftracez

import (
	"fmt"
	"strings"
)

// Field is a named value attached to a span or event.
// Value holds the debug-rendered text; Fields are not retained across
// callbacks, so construction is cheap by design of the callers.
type Field struct {
	Name  string
	Value string
}

// F renders value with fmt and pairs it with name.
func F(name string, value interface{}) Field {
	return Field{Name: name, Value: fmt.Sprint(value)}
}

// Msg creates the reserved message field, rendered bare in labels.
func Msg(text string) Field {
	return Field{Name: MessageField, Value: text}
}

// SkipFunc reports whether a field name should be excluded from labels.
type SkipFunc func(name string) bool

// skipLogFields is the default skip rule: drop log-compatibility metadata.
func skipLogFields(name string) bool {
	return strings.HasPrefix(name, LogFieldPrefix)
}

// formatter turns field sets into marker labels. The zero value uses the
// message field and no skip rule. Deterministic: the same input sequence
// always yields the same text.
type formatter struct {
	dataField string
	skip      SkipFunc
}

func newFormatter() formatter {
	return formatter{
		dataField: MessageField,
		skip:      skipLogFields,
	}
}

// spanLabel renders the span-label mode: the span name followed by each
// kept field, comma-prefixed, in presented order. The data field is
// rendered bare; everything else as name=value.
func (f formatter) spanLabel(name string, fields []Field) string {
	var buf strings.Builder
	buf.WriteString(name)
	for _, field := range fields {
		if f.skip != nil && f.skip(field.Name) {
			continue
		}
		buf.WriteByte(',')
		if field.Name == f.dataField {
			buf.WriteString(sanitize(field.Value))
			continue
		}
		buf.WriteString(field.Name)
		buf.WriteByte('=')
		buf.WriteString(sanitize(field.Value))
	}
	return buf.String()
}

// eventLabel renders the event-marker mode: kept fields joined by single
// spaces, no span name. An empty or fully-skipped field set yields "".
func (f formatter) eventLabel(fields []Field) string {
	var buf strings.Builder
	for _, field := range fields {
		if f.skip != nil && f.skip(field.Name) {
			continue
		}
		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		if field.Name == f.dataField {
			buf.WriteString(sanitize(field.Value))
			continue
		}
		buf.WriteString(field.Name)
		buf.WriteByte('=')
		buf.WriteString(sanitize(field.Value))
	}
	return buf.String()
}

// sanitize keeps marker payloads on a single line. The kernel buffer
// treats a newline as end of marker.
func sanitize(value string) string {
	if !strings.ContainsRune(value, '\n') {
		return value
	}
	return strings.ReplaceAll(value, "\n", " ")
}
