package core

import "time"

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// Event captures one acquisition step for post-mortem analysis
type Event struct {
	Type   uint8  // Event type code
	Clock  uint32 // Microseconds since boot
	Value1 uint32 // Context-dependent value
	Value2 uint32 // Context-dependent value
}

// Event type codes
const (
	EvtInit       = 1 // controller initialized (v1 = channel count)
	EvtTrigger    = 2 // conversion armed
	EvtNotReady   = 3 // poll found no result (v1 = consecutive polls)
	EvtSample     = 4 // sample delivered (v1 = code)
	EvtStateError = 5 // protocol violation (v1 = state, v2 = site)
	EvtAbort      = 6 // pending conversion abandoned
	EvtTimeout    = 7 // no completion in time (v1 = polls)
)

const (
	EventRingSize = 32 // Keep last 32 events
)

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled controls whether DebugPrintln produces output
	debugEnabled bool

	eventRing     [EventRingSize]Event
	eventRingHead uint8
	bootTime      = time.Now()
)

// SetDebugWriter sets the platform-specific debug output function
// This allows platforms to redirect debug output to UART, USB, etc.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// IsDebugEnabled returns whether debug output is enabled
func IsDebugEnabled() bool {
	return debugEnabled
}

// DebugPrintln writes a debug message using the platform-specific writer
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// RecordEvent appends an event to the ring. Runs of not-ready polls are
// folded into one entry so a long wait does not flush the history.
func RecordEvent(eventType uint8, value1, value2 uint32) {
	clock := uint32(time.Since(bootTime).Microseconds())

	state := disableInterrupts()
	defer restoreInterrupts(state)

	if eventType == EvtNotReady {
		last := &eventRing[(eventRingHead+EventRingSize-1)%EventRingSize]
		if last.Type == EvtNotReady {
			last.Value1++
			last.Clock = clock
			return
		}
		value1 = 1
	}
	eventRing[eventRingHead] = Event{
		Type:   eventType,
		Clock:  clock,
		Value1: value1,
		Value2: value2,
	}
	eventRingHead = (eventRingHead + 1) % EventRingSize
}

// Events returns the recorded events, oldest first.
func Events() []Event {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	out := make([]Event, 0, EventRingSize)
	for i := uint8(0); i < EventRingSize; i++ {
		evt := eventRing[(eventRingHead+i)%EventRingSize]
		if evt.Type == 0 {
			continue // Empty slot
		}
		out = append(out, evt)
	}
	return out
}

// EventName returns a short label for an event type code.
func EventName(eventType uint8) string {
	switch eventType {
	case EvtInit:
		return "INIT"
	case EvtTrigger:
		return "TRIGGER"
	case EvtNotReady:
		return "NOT_READY"
	case EvtSample:
		return "SAMPLE"
	case EvtStateError:
		return "STATE_ERR!"
	case EvtAbort:
		return "ABORT"
	case EvtTimeout:
		return "TIMEOUT!"
	default:
		return "UNKNOWN"
	}
}

// DumpEvents writes the event ring through the debug writer
// (call after a timeout or on a fault)
func DumpEvents() {
	if debugPrintln == nil {
		return
	}
	debugPrintln("[ADC] === Event Dump ===")
	for _, evt := range Events() {
		debugPrintln("[ADC] " + EventName(evt.Type) +
			" t=" + utoa(evt.Clock) +
			" v1=" + utoa(evt.Value1) +
			" v2=" + utoa(evt.Value2))
	}
	debugPrintln("[ADC] === End Dump ===")
}

// ClearEvents clears the event ring
func ClearEvents() {
	state := disableInterrupts()
	defer restoreInterrupts(state)
	for i := range eventRing {
		eventRing[i] = Event{}
	}
	eventRingHead = 0
}
