//go:build tinygo && cortexm

// Package systick implements the hardware periodic trigger on the Cortex-M
// SysTick timer. SysTick is a single 24-bit down-counter built into every
// Cortex-M core (SAMD, nRF52, STM32, RP2040 alike), so this driver covers
// any ARM board at the cost of sharing the counter with nothing else.
package systick

import (
	"device/arm"
	"machine"
	"runtime/interrupt"

	"tickmux/core"
	"tickmux/errcode"
)

// SysTick is singular per core: at most one Trigger owns it.
var owner *Trigger

// Trigger implements core.TriggerDriver on the SysTick counter.
type Trigger struct {
	intervalUS uint32
	reload     uint32 // counter reload value for the armed period
	cb         func()
	running    bool
}

// New returns an unattached SysTick trigger.
func New() *Trigger {
	return &Trigger{}
}

// AttachInterval arms SysTick to call cb every intervalUS microseconds.
// The 24-bit counter bounds the period: at 125 MHz the ceiling is about
// 134 ms. Longer logical periods belong in multiplexer slots, not here.
func (t *Trigger) AttachInterval(intervalUS uint32, cb func()) error {
	if owner != nil && owner != t {
		return errcode.InUse
	}
	cycles := uint64(machine.CPUFrequency()) * uint64(intervalUS) / 1000000
	if cycles == 0 || cycles > 0xffffff {
		return errcode.Unachievable
	}

	state := interrupt.Disable()
	owner = t
	t.intervalUS = intervalUS
	t.reload = uint32(cycles)
	t.cb = cb
	t.running = true
	interrupt.Restore(state)

	if err := arm.SetupSystemTimer(t.reload); err != nil {
		t.Detach()
		return errcode.Unachievable
	}
	return nil
}

// AttachFrequency arms SysTick at the given frequency in Hz.
func (t *Trigger) AttachFrequency(hz float32, cb func()) error {
	if hz <= 0 {
		return errcode.Unachievable
	}
	us := uint32(1000000.0/hz + 0.5)
	if us == 0 {
		return errcode.Unachievable
	}
	return t.AttachInterval(us, cb)
}

// Start resumes a stopped trigger.
func (t *Trigger) Start() {
	if t.reload == 0 || t.running {
		return
	}
	t.running = true
	arm.SYST.SYST_CSR.SetBits(arm.SYST_CSR_ENABLE_Msk)
}

// Stop pauses the counter; no ticks fire until Start or Restart.
func (t *Trigger) Stop() {
	t.running = false
	arm.SYST.SYST_CSR.ClearBits(arm.SYST_CSR_ENABLE_Msk)
}

// Restart resets the count so the next tick is one full period away, then
// resumes.
func (t *Trigger) Restart() {
	t.Stop()
	arm.SYST.SYST_CVR.Set(0)
	t.Start()
}

// Detach releases SysTick.
func (t *Trigger) Detach() {
	t.Stop()
	state := interrupt.Disable()
	owner = nil
	t.cb = nil
	t.intervalUS = 0
	t.reload = 0
	interrupt.Restore(state)
}

// TickPeriodUS returns the armed period, 0 when detached.
func (t *Trigger) TickPeriodUS() uint32 {
	return t.intervalUS
}

//go:export SysTick_Handler
func handleSysTick() {
	t := owner
	if t == nil || !t.running || t.cb == nil {
		return
	}
	t.cb()
}

var _ core.TriggerDriver = (*Trigger)(nil)
