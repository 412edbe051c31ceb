// Package logging builds consistent completion events for long-running CLI
// operations such as container writes and S3 transfers.
package logging

import (
	"time"

	"github.com/eunmann/ccf/pkg/humanfmt"
	"github.com/rs/zerolog"
)

type field struct {
	key string
	val any
}

// CompletionEvent collects fields for a single "operation finished" log line.
// With human set, byte, count and duration fields get a readable "_h"
// companion.
type CompletionEvent struct {
	log     zerolog.Logger
	event   string
	elapsed time.Duration
	human   bool
	fields  []field
}

// NewCompletionEvent creates a completion event builder.
func NewCompletionEvent(log zerolog.Logger, event string, elapsed time.Duration, human bool) *CompletionEvent {
	return &CompletionEvent{log: log, event: event, elapsed: elapsed, human: human}
}

// FileWritten starts a "file_written" event.
func FileWritten(log zerolog.Logger, elapsed time.Duration, human bool) *CompletionEvent {
	return NewCompletionEvent(log, "file_written", elapsed, human)
}

// TransferComplete starts a "transfer_completed" event.
func TransferComplete(log zerolog.Logger, elapsed time.Duration, human bool) *CompletionEvent {
	return NewCompletionEvent(log, "transfer_completed", elapsed, human)
}

func (ce *CompletionEvent) add(key string, val any) *CompletionEvent {
	ce.fields = append(ce.fields, field{key, val})
	return ce
}

// Str adds a string field.
func (ce *CompletionEvent) Str(key, val string) *CompletionEvent {
	return ce.add(key, val)
}

// Int adds an int field.
func (ce *CompletionEvent) Int(key string, val int) *CompletionEvent {
	return ce.add(key, val)
}

// Bytes adds a byte count.
func (ce *CompletionEvent) Bytes(key string, n int64) *CompletionEvent {
	ce.add(key, n)
	if ce.human {
		ce.add(key+"_h", humanfmt.Bytes(n))
	}
	return ce
}

// Count adds a row or item count.
func (ce *CompletionEvent) Count(key string, n int64) *CompletionEvent {
	ce.add(key, n)
	if ce.human {
		ce.add(key+"_h", humanfmt.Count(n))
	}
	return ce
}

// Throughput adds the rate of moving n bytes over the event's elapsed time.
func (ce *CompletionEvent) Throughput(n int64) *CompletionEvent {
	if ce.elapsed <= 0 {
		return ce
	}
	ce.add("throughput_bps", float64(n)/ce.elapsed.Seconds())
	if ce.human {
		ce.add("throughput_h", humanfmt.Throughput(n, ce.elapsed))
	}
	return ce
}

// Log emits the event at info level.
func (ce *CompletionEvent) Log(msg string) {
	ce.emit(ce.log.Info(), msg)
}

// LogDebug emits the event at debug level.
func (ce *CompletionEvent) LogDebug(msg string) {
	ce.emit(ce.log.Debug(), msg)
}

func (ce *CompletionEvent) emit(e *zerolog.Event, msg string) {
	e = e.Str("event", ce.event).Int64("duration_ms", ce.elapsed.Milliseconds())
	if ce.human {
		e = e.Str("duration_h", humanfmt.Duration(ce.elapsed))
	}
	for _, f := range ce.fields {
		e = e.Interface(f.key, f.val)
	}
	e.Msg(msg)
}
