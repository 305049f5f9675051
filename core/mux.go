// Soft-timer multiplexer
// Services up to 16 logical timers from a single hardware timer interrupt.
// The hardware side (see trigger_hal.go) invokes Tick once per period; Tick
// scans the slot table in index order and fires every due callback
// synchronously, still in interrupt context.
package core

import (
	"sync/atomic"

	"tickmux/errcode"
)

// MaxTimers is the fixed slot-table capacity. It is a compile-time constant
// so the table lives in a flat array with no heap churn in interrupt paths.
const MaxTimers = 16

// Kind selects the post-firing behavior of a slot.
type Kind uint8

const (
	KindOnce         Kind = iota // fire once, then free the slot
	KindRepeat                   // fire every period, forever
	KindFiniteRepeat             // fire a fixed number of times, then free
)

// RunForever is the runsLeft sentinel for KindRepeat slots.
const RunForever int32 = -1

// SlotID identifies a logical timer. The low byte is the slot index, the
// high byte a generation tag bumped on every allocation, so an id held past
// its slot's deletion is rejected instead of touching the new occupant.
// The zero SlotID is never valid (generations start at 1).
type SlotID uint16

func makeSlotID(idx int, gen uint8) SlotID {
	return SlotID(uint16(gen)<<8 | uint16(idx))
}

func (id SlotID) index() int { return int(id & 0xff) }
func (id SlotID) gen() uint8 { return uint8(id >> 8) }

// Index returns the slot index named by the id. Diagnostic use only; the
// full id, not the bare index, is what control operations validate.
func (id SlotID) Index() int { return id.index() }

type slot struct {
	period    uint32 // configured interval in ticks
	remaining uint32 // countdown to next firing, in [0, period]
	runsLeft  int32  // invocations left, or RunForever
	fires     uint32 // total invocations since creation

	cb    func()
	cbArg func(any)
	param any

	kind    Kind
	gen     uint8
	used    bool
	enabled bool
}

func (s *slot) invoke() {
	s.fires++
	if s.cbArg != nil {
		s.cbArg(s.param)
		return
	}
	s.cb()
}

// Mux is one soft-timer multiplexer instance. One Mux is driven by exactly
// one hardware periodic trigger; independent instances share no state.
//
// Every mutating operation takes an interrupt-suppressed critical section,
// so foreground code and the tick interrupt never observe a half-updated
// slot. On host builds the critical sections are no-ops.
type Mux struct {
	slots   [MaxTimers]slot
	numUsed int8
	ticks   uint64 // total Tick calls, read atomically from foreground
}

// NewMux returns an empty multiplexer.
func NewMux() *Mux {
	return &Mux{}
}

// SetInterval creates a repeat-forever timer firing every periodTicks ticks.
func (m *Mux) SetInterval(periodTicks uint32, cb func()) (SlotID, error) {
	return m.create(periodTicks, cb, nil, nil, KindRepeat, RunForever)
}

// SetIntervalArg is SetInterval with an opaque parameter passed through
// unchanged to the callback on every firing.
func (m *Mux) SetIntervalArg(periodTicks uint32, cb func(any), param any) (SlotID, error) {
	return m.create(periodTicks, nil, cb, param, KindRepeat, RunForever)
}

// SetTimeout creates a timer that fires once after periodTicks ticks and
// then frees its slot.
func (m *Mux) SetTimeout(periodTicks uint32, cb func()) (SlotID, error) {
	return m.create(periodTicks, cb, nil, nil, KindOnce, 1)
}

// SetTimeoutArg is the parameterized variant of SetTimeout.
func (m *Mux) SetTimeoutArg(periodTicks uint32, cb func(any), param any) (SlotID, error) {
	return m.create(periodTicks, nil, cb, param, KindOnce, 1)
}

// SetTimer creates a timer that fires every periodTicks ticks, count times,
// then frees its slot.
func (m *Mux) SetTimer(periodTicks uint32, cb func(), count int32) (SlotID, error) {
	return m.create(periodTicks, cb, nil, nil, KindFiniteRepeat, count)
}

// SetTimerArg is the parameterized variant of SetTimer.
func (m *Mux) SetTimerArg(periodTicks uint32, cb func(any), param any, count int32) (SlotID, error) {
	return m.create(periodTicks, nil, cb, param, KindFiniteRepeat, count)
}

func (m *Mux) create(periodTicks uint32, cb func(), cbArg func(any), param any, kind Kind, count int32) (SlotID, error) {
	if periodTicks == 0 {
		return 0, errcode.InvalidPeriod
	}
	if kind == KindFiniteRepeat && count <= 0 {
		return 0, errcode.InvalidCount
	}
	// A nil callback would panic at dispatch time, in interrupt context.
	if cb == nil && cbArg == nil {
		return 0, errcode.InvalidCallback
	}

	state := disableInterrupts()
	defer restoreInterrupts(state)

	idx := m.findFreeSlot()
	if idx < 0 {
		return 0, errcode.Full
	}

	s := &m.slots[idx]
	s.gen = nextGen(s.gen)
	s.period = periodTicks
	s.remaining = periodTicks
	s.runsLeft = count
	s.fires = 0
	s.cb = cb
	s.cbArg = cbArg
	s.param = param
	s.kind = kind
	s.used = true
	s.enabled = true
	m.numUsed++

	return makeSlotID(idx, s.gen), nil
}

func (m *Mux) findFreeSlot() int {
	for i := range m.slots {
		if !m.slots[i].used {
			return i
		}
	}
	return -1
}

// nextGen advances a generation tag, skipping 0 so the zero SlotID stays
// permanently invalid.
func nextGen(g uint8) uint8 {
	g++
	if g == 0 {
		g = 1
	}
	return g
}

// lookup resolves an id to its live slot, or nil for out-of-range, freed,
// or stale ids. Callers must hold the critical section.
func (m *Mux) lookup(id SlotID) *slot {
	idx := id.index()
	if idx >= MaxTimers {
		return nil
	}
	s := &m.slots[idx]
	if !s.used || s.gen != id.gen() {
		return nil
	}
	return s
}

// Delete frees the slot. Invalid, stale, and already-freed ids are no-ops;
// there is no safe way to signal an error from interrupt-adjacent callers.
// Safe to call from a callback during the current Tick, including a slot
// deleting itself.
func (m *Mux) Delete(id SlotID) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	s := m.lookup(id)
	if s == nil {
		return
	}
	m.free(s)
}

// free must be called with the critical section held.
func (m *Mux) free(s *slot) {
	s.used = false
	s.enabled = false
	s.cb = nil
	s.cbArg = nil
	s.param = nil
	m.numUsed--
}

// Enable re-admits the slot to dispatch. The countdown resumes where
// Disable left it; it is NOT reloaded. Use Restart to reload.
func (m *Mux) Enable(id SlotID) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if s := m.lookup(id); s != nil {
		s.enabled = true
	}
}

// Disable removes the slot from dispatch without losing configuration or
// countdown phase.
func (m *Mux) Disable(id SlotID) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if s := m.lookup(id); s != nil {
		s.enabled = false
	}
}

// Toggle flips the enabled state.
func (m *Mux) Toggle(id SlotID) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if s := m.lookup(id); s != nil {
		s.enabled = !s.enabled
	}
}

// Restart reloads the countdown to the full period, re-synchronizing the
// slot's phase. Enabled state is unchanged.
func (m *Mux) Restart(id SlotID) {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if s := m.lookup(id); s != nil {
		s.remaining = s.period
	}
}

// IsEnabled reports whether the id names a live, enabled slot.
func (m *Mux) IsEnabled(id SlotID) bool {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	s := m.lookup(id)
	return s != nil && s.enabled
}

// FireCount returns how many times the slot has fired, or 0 for invalid ids.
func (m *Mux) FireCount(id SlotID) uint32 {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	if s := m.lookup(id); s != nil {
		return s.fires
	}
	return 0
}

// NumTimers returns the number of occupied slots.
func (m *Mux) NumTimers() int {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	return int(m.numUsed)
}

// TickCount returns the total number of Tick calls since creation or the
// last Reset.
func (m *Mux) TickCount() uint64 {
	return atomic.LoadUint64(&m.ticks)
}

// Reset frees every slot and zeroes the tick counter. Outstanding ids
// become stale.
func (m *Mux) Reset() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	for i := range m.slots {
		if m.slots[i].used {
			m.free(&m.slots[i])
		}
	}
	atomic.StoreUint64(&m.ticks, 0)
}

// Tick advances every enabled slot by one tick and fires the due ones, in
// ascending slot-index order. It is intended to be called only by the
// hardware periodic trigger's interrupt handler, once per period.
//
// Callbacks run synchronously, back to back, still in interrupt context:
// they must not block, sleep, or wait on other interrupts. A callback may
// create, enable, disable, delete, or restart any slot, including its own.
func (m *Mux) Tick() {
	state := disableInterrupts()
	defer restoreInterrupts(state)

	atomic.AddUint64(&m.ticks, 1)

	for i := range m.slots {
		s := &m.slots[i]
		if !s.used || !s.enabled {
			continue
		}
		if s.remaining > 0 {
			s.remaining--
		}
		if s.remaining != 0 {
			continue
		}

		// The callback may delete this slot or any other. Deletion only
		// marks the array entry free, so the index scan itself stays
		// valid; the generation check below keeps the post-fire
		// bookkeeping off a slot the callback freed or replaced.
		gen := s.gen
		s.invoke()
		recordFire(uint8(i), m.ticks)
		if !s.used || s.gen != gen {
			continue
		}

		switch s.kind {
		case KindRepeat:
			s.remaining = s.period
		case KindFiniteRepeat:
			s.runsLeft--
			if s.runsLeft > 0 {
				s.remaining = s.period
			} else {
				m.free(s)
			}
		case KindOnce:
			m.free(s)
		}
	}
}
