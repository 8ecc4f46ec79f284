package core

// IRQLatch is a single-slot readiness flag shared between a conversion-complete
// interrupt handler and the task that polls for the result. A newer signal
// replaces one that was never taken.
type IRQLatch struct {
	done  Completion
	ready bool
}

// Signal latches a completion. Safe to call from interrupt context.
func (l *IRQLatch) Signal(c Completion) {
	state := disableInterrupts()
	l.done = c
	l.ready = true
	restoreInterrupts(state)
}

// Take returns the latched completion, if any, and clears the flag.
func (l *IRQLatch) Take() (Completion, bool) {
	state := disableInterrupts()
	c, ok := l.done, l.ready
	l.done = Completion{}
	l.ready = false
	restoreInterrupts(state)
	return c, ok
}

// Clear drops any latched completion.
func (l *IRQLatch) Clear() {
	state := disableInterrupts()
	l.done = Completion{}
	l.ready = false
	restoreInterrupts(state)
}
