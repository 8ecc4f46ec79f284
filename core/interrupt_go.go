//go:build !tinygo

package core

import "sync"

// State is a placeholder for interrupt state on regular Go
type State uintptr

// On the host, simulated interrupt handlers run on their own goroutines, so
// the critical section is a plain mutex. Sections must not nest.
var irqMu sync.Mutex

// disableInterrupts enters the critical section shared with simulated ISRs
func disableInterrupts() State {
	irqMu.Lock()
	return 0
}

// restoreInterrupts leaves the critical section
func restoreInterrupts(state State) {
	irqMu.Unlock()
}
