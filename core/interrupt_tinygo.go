//go:build tinygo

package core

import "runtime/interrupt"

// disableInterrupts masks interrupts and returns the previous state.
// Foreground slot mutations are bracketed by this so the tick interrupt
// never reads a half-updated slot.
func disableInterrupts() interrupt.State {
	return interrupt.Disable()
}

// restoreInterrupts restores the interrupt state.
func restoreInterrupts(state interrupt.State) {
	interrupt.Restore(state)
}
