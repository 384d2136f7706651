//go:build rp2040

// Package refclock drives the synthesizer's reference input with a
// PIO-generated square wave. The program is two set-pin instructions, so the
// pin toggles once per state machine cycle and the output frequency is half
// the state machine rate.
package refclock

import (
	"machine"

	pio "github.com/tinygo-org/pio/rp2-pio"
)

//go:generate pioasm -o go squarewave.pio squarewave_pio.go

// Start claims a state machine on PIO0 and runs the square wave on pin at
// smHz/2. The state machine free-runs until power-off; there is no state to
// manage afterwards.
func Start(pin machine.Pin, smHz uint32) error {
	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		return err
	}

	offset, err := sm.PIO().AddProgram(squarewaveInstructions, squarewaveOrigin)
	if err != nil {
		return err
	}

	pin.Configure(machine.PinConfig{Mode: sm.PIO().PinMode()})

	whole, frac, err := pio.ClkDivFromFrequency(smHz, machine.CPUFrequency())
	if err != nil {
		return err
	}

	cfg := squarewaveProgramDefaultConfig(offset)
	cfg.SetSetPins(pin, 1)
	cfg.SetClkDivIntFrac(whole, frac)

	sm.Init(offset, cfg)
	sm.SetPindirsConsecutive(pin, 1, true)
	sm.SetEnabled(true)
	return nil
}
