//go:build rp2040

package main

// RP2040 hardware periodic trigger backed by the TIMER peripheral.
//
// The TIMER block is a free-running 64-bit microsecond counter with four
// ALARM comparators, each wired to its own IRQ line. An alarm fires once
// when the low 32 counter bits match, so the interrupt handler re-arms the
// next absolute deadline before dispatching the callback; scheduling by
// absolute deadline keeps callback runtime out of the period (no drift).

import (
	"device/rp"
	"runtime/interrupt"
	"runtime/volatile"

	"tickmux/core"
	"tickmux/errcode"
)

// NumAlarms is how many independent triggers the TIMER peripheral offers.
const NumAlarms = 4

// Static owner table: exactly one AlarmTrigger per hardware alarm. The
// interrupt handlers index it by alarm number.
var alarmOwners [NumAlarms]*AlarmTrigger

// AlarmTrigger implements core.TriggerDriver on one TIMER alarm.
type AlarmTrigger struct {
	alarm      uint8
	intervalUS uint32
	next       uint32 // next absolute deadline, in raw counter µs
	cb         func()
	running    bool
}

// NewAlarmTrigger returns the trigger for the given alarm (0..3). Panics on
// an out-of-range alarm number; this is a board wiring error, caught at
// setup time.
func NewAlarmTrigger(alarm uint8) *AlarmTrigger {
	if alarm >= NumAlarms {
		panic("alarm number out of range")
	}
	return &AlarmTrigger{alarm: alarm}
}

// rawTime reads the low 32 bits of the free-running microsecond counter.
func rawTime() uint32 {
	return rp.TIMER.TIMERAWL.Get()
}

// AttachInterval arms the alarm to call cb every intervalUS microseconds.
func (t *AlarmTrigger) AttachInterval(intervalUS uint32, cb func()) error {
	if intervalUS == 0 {
		return errcode.Unachievable
	}
	if owner := alarmOwners[t.alarm]; owner != nil && owner != t {
		return errcode.InUse
	}

	state := interrupt.Disable()
	alarmOwners[t.alarm] = t
	t.intervalUS = intervalUS
	t.cb = cb
	t.running = true
	t.next = rawTime() + intervalUS
	t.arm()
	rp.TIMER.INTE.SetBits(1 << t.alarm)
	interrupt.Restore(state)

	enableAlarmIRQ(t.alarm)
	return nil
}

// AttachFrequency arms the alarm at the given frequency in Hz.
func (t *AlarmTrigger) AttachFrequency(hz float32, cb func()) error {
	if hz <= 0 {
		return errcode.Unachievable
	}
	us := uint32(1000000.0/hz + 0.5)
	if us == 0 {
		return errcode.Unachievable
	}
	return t.AttachInterval(us, cb)
}

// Start resumes a stopped trigger. The first period is measured from now.
func (t *AlarmTrigger) Start() {
	if t.intervalUS == 0 || t.running {
		return
	}
	state := interrupt.Disable()
	t.running = true
	t.next = rawTime() + t.intervalUS
	t.arm()
	interrupt.Restore(state)
}

// Stop pauses the trigger without releasing the alarm.
func (t *AlarmTrigger) Stop() {
	state := interrupt.Disable()
	t.running = false
	rp.TIMER.ARMED.Set(1 << t.alarm) // write-1 disarms
	interrupt.Restore(state)
}

// Restart resets the period phase and resumes.
func (t *AlarmTrigger) Restart() {
	t.Stop()
	t.Start()
}

// Detach stops the trigger and releases the alarm for another owner.
func (t *AlarmTrigger) Detach() {
	t.Stop()
	state := interrupt.Disable()
	rp.TIMER.INTE.ClearBits(1 << t.alarm)
	alarmOwners[t.alarm] = nil
	t.cb = nil
	t.intervalUS = 0
	interrupt.Restore(state)
}

// TickPeriodUS returns the armed period, 0 when detached.
func (t *AlarmTrigger) TickPeriodUS() uint32 {
	return t.intervalUS
}

// arm writes the next deadline. Interrupts must be masked.
func (t *AlarmTrigger) arm() {
	alarmReg(t.alarm).Set(t.next)
}

func alarmReg(n uint8) *volatile.Register32 {
	switch n {
	case 0:
		return &rp.TIMER.ALARM0
	case 1:
		return &rp.TIMER.ALARM1
	case 2:
		return &rp.TIMER.ALARM2
	default:
		return &rp.TIMER.ALARM3
	}
}

// serviceAlarm runs in interrupt context for alarm n.
func serviceAlarm(n uint8) {
	rp.TIMER.INTR.Set(1 << n) // write-1 clears the latched interrupt

	t := alarmOwners[n]
	if t == nil || !t.running {
		return
	}

	// Re-arm first so a slow callback delays its own work, not the tick
	// train. If the callback overran a whole period, resync the phase
	// instead of firing a burst of catch-up ticks.
	next := t.next + t.intervalUS
	if now := rawTime(); int32(next-now) <= 0 {
		next = now + t.intervalUS
	}
	t.next = next
	t.arm()

	if t.cb != nil {
		t.cb()
	}
}

// One handler per IRQ line. interrupt.New needs compile-time constant
// arguments, hence the explicit four-way split.
func handleAlarm0(interrupt.Interrupt) { serviceAlarm(0) }
func handleAlarm1(interrupt.Interrupt) { serviceAlarm(1) }
func handleAlarm2(interrupt.Interrupt) { serviceAlarm(2) }
func handleAlarm3(interrupt.Interrupt) { serviceAlarm(3) }

func enableAlarmIRQ(alarm uint8) {
	switch alarm {
	case 0:
		interrupt.New(rp.IRQ_TIMER_IRQ_0, handleAlarm0).Enable()
	case 1:
		interrupt.New(rp.IRQ_TIMER_IRQ_1, handleAlarm1).Enable()
	case 2:
		interrupt.New(rp.IRQ_TIMER_IRQ_2, handleAlarm2).Enable()
	case 3:
		interrupt.New(rp.IRQ_TIMER_IRQ_3, handleAlarm3).Enable()
	}
}

var _ core.TriggerDriver = (*AlarmTrigger)(nil)
