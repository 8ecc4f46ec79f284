//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts masks interrupts so an ISR cannot observe a half-written latch
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
