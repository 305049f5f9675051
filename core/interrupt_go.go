//go:build !tinygo

package core

// State is a placeholder for saved interrupt state on regular Go builds.
type State uintptr

// disableInterrupts is a no-op on regular Go. Host tests drive Tick from
// ordinary goroutine context, so there is nothing to mask.
func disableInterrupts() State {
	return 0
}

// restoreInterrupts is a no-op on regular Go.
func restoreInterrupts(state State) {
}
