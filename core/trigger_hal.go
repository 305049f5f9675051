package core

// TriggerDriver is the abstract hardware periodic trigger: one physical
// timer peripheral programmed to invoke a zero-argument callback at a fixed
// period, from interrupt context. Platform code under targets/ implements
// it; the multiplexer only ever sees this interface.
//
// One driver instance owns exactly one physical timer. Start, Stop and
// Restart act on the whole hardware timer, which is distinct from enabling
// or disabling individual multiplexer slots.
type TriggerDriver interface {
	// AttachInterval arms the timer to call cb every intervalUS
	// microseconds. Fails with errcode.Unachievable when the period is
	// outside the hardware's representable range and errcode.InUse when
	// the peripheral already has an owner.
	AttachInterval(intervalUS uint32, cb func()) error

	// AttachFrequency arms the timer at the given frequency in Hz.
	AttachFrequency(hz float32, cb func()) error

	// Start resumes a stopped timer without changing its phase.
	Start()

	// Stop pauses the timer; the callback stops firing until Start or
	// Restart.
	Stop()

	// Restart resets the period phase and resumes.
	Restart()

	// Detach stops the timer and releases the peripheral for another
	// owner.
	Detach()

	// TickPeriodUS returns the armed period in microseconds, 0 when
	// detached.
	TickPeriodUS() uint32
}

// Default board trigger, registered by target-specific code for sketches
// that do not care which peripheral backs it.
var triggerDriver TriggerDriver

// SetTriggerDriver is called by target-specific code to register the board
// default trigger.
func SetTriggerDriver(d TriggerDriver) {
	triggerDriver = d
}

// MustTrigger returns the default trigger or panics if none is registered.
// Setup-time use only; never call from interrupt context.
func MustTrigger() TriggerDriver {
	if triggerDriver == nil {
		panic("trigger driver not configured")
	}
	return triggerDriver
}

// Bind arms the driver with this multiplexer's Tick at the given period.
// After a successful Bind every hardware period advances the slot table by
// one tick.
func (m *Mux) Bind(d TriggerDriver, intervalUS uint32) error {
	return d.AttachInterval(intervalUS, m.Tick)
}
