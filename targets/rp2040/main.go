//go:build rp2040

// Demo firmware: one TIMER alarm at a 1 ms period drives a 16-slot soft
// timer multiplexer. The main loop only prints stat lines; all periodic
// work happens at interrupt priority, so it stays on schedule no matter
// what the foreground is doing. Pair with host/cmd/tickmux-mon to watch
// the stat stream from a PC.
package main

import (
	"machine"
	"time"

	"tickmux/core"
)

// Hardware tick period. Every soft-timer period below is a multiple of
// this; per-slot jitter is bounded by one tick.
const tickPeriodUS = 1000

var mux = core.NewMux()

func main() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	aux := machine.GP15
	aux.Configure(machine.PinConfig{Mode: machine.PinOutput})

	core.SetDebugWriter(func(s string) { println(s) })
	core.SetDebugEnabled(true)

	trigger := NewAlarmTrigger(0)
	core.SetTriggerDriver(trigger)

	// Heartbeat: 500 ms LED toggle, repeat forever.
	if _, err := mux.SetInterval(500, func() { led.Set(!led.Get()) }); err != nil {
		core.DebugPrintln("heartbeat: " + err.Error())
	}

	// Boot indicator: 10 fast pulses on the aux pin, then the slot frees
	// itself.
	if _, err := mux.SetTimer(50, func() { aux.Set(!aux.Get()) }, 10); err != nil {
		core.DebugPrintln("boot pulses: " + err.Error())
	}

	// One-shot: report once the boot pulses are done.
	booted := false
	if _, err := mux.SetTimeout(1000, func() { booted = true }); err != nil {
		core.DebugPrintln("boot timeout: " + err.Error())
	}

	if err := mux.Bind(core.MustTrigger(), tickPeriodUS); err != nil {
		core.DebugPrintln("trigger attach: " + err.Error())
		return
	}

	announced := false
	for {
		time.Sleep(time.Second)
		if booted && !announced {
			announced = true
			core.DebugPrintln("boot sequence complete")
		}
		println(mux.StatLine())
	}
}
