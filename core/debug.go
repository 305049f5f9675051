package core

// DebugWriter is a function type for writing debug messages.
type DebugWriter func(string)

// FireEvent captures one callback dispatch for post-mortem analysis.
type FireEvent struct {
	Slot uint8  // slot index that fired
	Tick uint64 // multiplexer tick count at dispatch
}

const (
	// FireRingSize is how many dispatches the ring keeps. Power of two so
	// the wrap is a mask.
	FireRingSize = 32
)

var (
	// debugPrintln is the global debug print function, redirected by
	// platform code to UART, USB CDC, etc. No-op by default.
	debugPrintln DebugWriter = func(s string) {}

	// debugEnabled gates DebugPrintln output.
	debugEnabled bool

	// Fire capture ring. Disabled by default: recording costs a few
	// cycles per dispatch inside the tick interrupt.
	fireRing     [FireRingSize]FireEvent
	fireRingHead uint8
	fireCapture  bool
)

// SetDebugWriter sets the platform-specific debug output function.
func SetDebugWriter(writer DebugWriter) {
	debugPrintln = writer
}

// SetDebugEnabled enables or disables debug output.
func SetDebugEnabled(enabled bool) {
	debugEnabled = enabled
}

// SetFireCapture enables or disables fire-event recording.
func SetFireCapture(enabled bool) {
	fireCapture = enabled
}

// DebugPrintln writes a debug message using the platform-specific writer.
// Not for use inside timer callbacks on slow sinks.
func DebugPrintln(msg string) {
	if debugEnabled && debugPrintln != nil {
		debugPrintln(msg)
	}
}

// recordFire captures a dispatch in the ring. Non-blocking, called from
// inside Tick with interrupts already masked.
func recordFire(slotIdx uint8, tick uint64) {
	if !fireCapture {
		return
	}
	fireRing[fireRingHead] = FireEvent{Slot: slotIdx, Tick: tick}
	fireRingHead = (fireRingHead + 1) % FireRingSize
}

// DumpFireRing writes the captured dispatches, oldest first. Call from
// foreground code after stopping the trigger, not from a callback.
func DumpFireRing() {
	if debugPrintln == nil {
		return
	}
	debugPrintln("[FIRES] === dispatch ring ===")
	start := fireRingHead
	for i := uint8(0); i < FireRingSize; i++ {
		evt := &fireRing[(start+i)%FireRingSize]
		if evt.Tick == 0 {
			continue // empty entry
		}
		debugPrintln("[FIRES] slot=" + utoa(uint32(evt.Slot)) + " tick=" + u64toa(evt.Tick))
	}
	debugPrintln("[FIRES] === end ===")
}

// ClearFireRing empties the ring.
func ClearFireRing() {
	for i := range fireRing {
		fireRing[i] = FireEvent{}
	}
	fireRingHead = 0
}
