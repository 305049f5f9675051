package core

// StatLine renders the multiplexer state as a single line:
//
//	stat tick=<ticks> used=<n> slot<i>=<fires> ...
//
// One slot<i> field per occupied slot, ascending index. The host monitor
// (host/monitor) parses these lines from the firmware's serial output.
// Foreground use only; it allocates.
func (m *Mux) StatLine() string {
	// Snapshot under the critical section, format outside it so no
	// allocation happens with interrupts masked.
	var (
		fires [MaxTimers]uint32
		used  [MaxTimers]bool
	)
	state := disableInterrupts()
	ticks := m.ticks
	numUsed := m.numUsed
	for i := range m.slots {
		used[i] = m.slots[i].used
		fires[i] = m.slots[i].fires
	}
	restoreInterrupts(state)

	line := "stat tick=" + u64toa(ticks) + " used=" + itoa(int(numUsed))
	for i := range used {
		if !used[i] {
			continue
		}
		line += " slot" + itoa(i) + "=" + utoa(fires[i])
	}
	return line
}
