//go:build rp2040

// Package pio provides a hardware-timed pulse output for soft-timer
// consumers. A multiplexer callback only pushes one word into the PIO TX
// FIFO; the state machine shapes the pulse itself, so the pulse width is
// cycle-exact no matter how long the rest of the tick's callbacks run.
package pio

import (
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"
)

// PIO program: one pulse per FIFO word, word = pulse width in PIO cycles.
//
//  1. Pull a 32-bit width from the FIFO
//  2. Raise the pin
//  3. Count the width down in X
//  4. Drop the pin
//
// buildPulseProgram assembles it with AssemblerV0.
func buildPulseProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),          // 0: pull block
		asm.Out(rp2pio.OutDestX, 32).Encode(),   // 1: out x, 32 (width)
		asm.Set(rp2pio.SetDestPins, 1).Encode(), // 2: set pins, 1
		// high_loop:
		asm.Jmp(3, rp2pio.JmpXNZeroDec).Encode(), // 3: jmp x--, 3
		asm.Set(rp2pio.SetDestPins, 0).Encode(),  // 4: set pins, 0
		// .wrap
	}
}

const pulsePIOOrigin = 0 // load at offset 0 for correct jump addresses

// PulseOutput drives one GPIO pin from one PIO state machine.
type PulseOutput struct {
	pio    *rp2pio.PIO
	sm     rp2pio.StateMachine
	pin    machine.Pin
	offset uint8
}

// NewPulseOutput binds PIO pioNum (0 or 1), state machine smNum (0..3).
func NewPulseOutput(pioNum, smNum uint8) *PulseOutput {
	pioHW := rp2pio.PIO0
	if pioNum != 0 {
		pioHW = rp2pio.PIO1
	}
	return &PulseOutput{
		pio: pioHW,
		sm:  pioHW.StateMachine(smNum),
	}
}

// Init claims the state machine and points it at the pulse pin.
func (p *PulseOutput) Init(pin machine.Pin) error {
	p.pin = pin
	p.sm.TryClaim()

	program := buildPulseProgram()
	offset, err := p.pio.AddProgram(program, pulsePIOOrigin)
	if err != nil {
		return err
	}
	p.offset = offset

	p.pin.Configure(machine.PinConfig{Mode: p.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()
	cfg.SetSetPins(p.pin, 1)
	cfg.SetOutShift(true, false, 32)
	cfg.SetWrap(offset+uint8(len(program))-1, offset)
	cfg.SetClkDivIntFrac(1, 0) // full speed, program counts cycles itself

	p.sm.Init(offset, cfg)
	p.sm.SetPindirsConsecutive(p.pin, 1, true)
	p.sm.SetPinsConsecutive(p.pin, 1, false)
	p.sm.SetEnabled(true)
	return nil
}

// Pulse emits one pulse of widthCycles PIO cycles. Non-blocking when FIFO
// space is free, which is the normal case for timer-paced callers; safe to
// call from a soft-timer callback.
func (p *PulseOutput) Pulse(widthCycles uint32) {
	if p.sm.IsTxFIFOFull() {
		return // caller is outpacing the hardware; drop rather than block
	}
	p.sm.TxPut(widthCycles)
}

// Stop halts and flushes the state machine.
func (p *PulseOutput) Stop() {
	p.sm.SetEnabled(false)
	p.sm.ClearFIFOs()
	p.sm.Restart()
	p.sm.SetEnabled(true)
}
